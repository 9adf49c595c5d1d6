// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDBLPProvider_SearchByTitleSingleAuthor(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"hits":{"hit":[
			{"info":{"title":"A Paper.","venue":"CACM","year":"2019","doi":"10.1/p","authors":{"author":"Jane Doe"}}}
		]}}}`))
	}))
	defer ts.Close()

	old := dblpAPIBase
	dblpAPIBase = ts.URL
	defer func() { dblpAPIBase = old }()

	p := &DBLPProvider{Client: ts.Client()}
	entries, err := p.SearchByTitle(context.Background(), "a paper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Title != "A Paper" {
		t.Errorf("Title = %q, want trailing period stripped", entries[0].Title)
	}
	if entries[0].Year != 2019 {
		t.Errorf("Year = %d, want 2019", entries[0].Year)
	}
	if len(entries[0].Authors) != 1 || entries[0].Authors[0] != "Jane Doe" {
		t.Errorf("Authors = %v", entries[0].Authors)
	}
}

func TestDBLPProvider_SearchByTitleMultipleAuthors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"hits":{"hit":[
			{"info":{"title":"Another Paper","year":"2020","authors":{"author":["Alice","Bob"]}}}
		]}}}`))
	}))
	defer ts.Close()

	old := dblpAPIBase
	dblpAPIBase = ts.URL
	defer func() { dblpAPIBase = old }()

	p := &DBLPProvider{Client: ts.Client()}
	entries, err := p.SearchByTitle(context.Background(), "another paper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries[0].Authors) != 2 {
		t.Fatalf("len(Authors) = %d, want 2", len(entries[0].Authors))
	}
}

func TestDBLPProvider_SearchByDOIFiltersMatchingResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"hits":{"hit":[
			{"info":{"title":"Wrong Paper","year":"2018","doi":"10.1/other"}},
			{"info":{"title":"Right Paper","year":"2019","doi":"10.1/target"}}
		]}}}`))
	}))
	defer ts.Close()

	old := dblpAPIBase
	dblpAPIBase = ts.URL
	defer func() { dblpAPIBase = old }()

	p := &DBLPProvider{Client: ts.Client()}
	entry, err := p.SearchByDOI(context.Background(), "10.1/target")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry == nil || entry.Title != "Right Paper" {
		t.Fatalf("entry = %+v, want Right Paper", entry)
	}
}

func TestDBLPProvider_SearchByTitleRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	old := dblpAPIBase
	dblpAPIBase = ts.URL
	defer func() { dblpAPIBase = old }()

	p := &DBLPProvider{Client: ts.Client()}
	_, err := p.SearchByTitle(context.Background(), "x")
	if err != ErrRateLimited {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}
