// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"time"

	"github.com/pdiddy/bibval/internal/httpx"
)

func init() {
	// Avoid real sleeps when exercising the 429 retry path in tests.
	httpx.RetryBaseDelay = 1 * time.Millisecond
}
