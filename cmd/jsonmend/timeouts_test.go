// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"testing"
	"time"
)

func TestEnforceMinTimeout(t *testing.T) {
	tests := []struct {
		name      string
		requested time.Duration
		minimum   time.Duration
		want      time.Duration
	}{
		{"above minimum", 30 * time.Second, MinRequestTimeout, 30 * time.Second},
		{"below minimum", time.Second, MinRequestTimeout, MinRequestTimeout},
		{"zero", 0, MinRequestTimeout, MinRequestTimeout},
		{"negative", -time.Second, MinRequestTimeout, MinRequestTimeout},
		{"exactly minimum", MinRequestTimeout, MinRequestTimeout, MinRequestTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnforceMinTimeout(tt.requested, tt.minimum); got != tt.want {
				t.Errorf("EnforceMinTimeout(%v, %v) = %v, want %v", tt.requested, tt.minimum, got, tt.want)
			}
		})
	}
}
