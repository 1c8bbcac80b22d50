// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import "time"

// Timeout constants define minimum and default values for the LLM call.
//
// These constants prevent accidental infinite hangs by ensuring the only
// blocking operation in the loop has a reasonable bound even if
// misconfigured.
const (
	// MinRequestTimeout is the absolute minimum for a fix request.
	MinRequestTimeout = 5 * time.Second

	// DefaultRequestTimeout is the standard bound for a fix request.
	DefaultRequestTimeout = 2 * time.Minute
)

// EnforceMinTimeout returns at least the minimum timeout.
//
// If the requested timeout is zero, negative, or below the minimum,
// returns the minimum instead.
func EnforceMinTimeout(requested, minimum time.Duration) time.Duration {
	if requested < minimum {
		return minimum
	}
	return requested
}
