// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookshelfie/shelfie/pkg/progress"
)

/*
TestPercent_Rounding verifies the round(100*current/total) contract.
*/
func TestPercent_Rounding(t *testing.T) {
	tests := []struct {
		name        string
		currentPage int
		totalPages  int
		want        int
	}{
		{"quarter_read", 45, 180, 25},
		{"half_read", 164, 328, 50},
		{"rounds_up", 1, 3, 33},
		{"rounds_half_up", 1, 8, 13},
		{"not_started", 0, 250, 0},
		{"finished", 250, 250, 100},
		{"single_page", 1, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progress.Percent(tt.currentPage, tt.totalPages, 0))
		})
	}
}

/*
TestPercent_Clamping verifies that out-of-range input never escapes [0, 100].
*/
func TestPercent_Clamping(t *testing.T) {
	tests := []struct {
		name        string
		currentPage int
		totalPages  int
		want        int
	}{
		{"over_read", 400, 328, 100},
		{"way_over_read", 10000, 100, 100},
		{"negative_page", -5, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progress.Percent(tt.currentPage, tt.totalPages, 0))
		})
	}
}

/*
TestPercent_Fallback verifies behavior when the page count is unknown.
*/
func TestPercent_Fallback(t *testing.T) {
	// Unknown total: trust the stored percentage.
	assert.Equal(t, 40, progress.Percent(120, 0, 40))

	// Unknown total and no stored value: zero state.
	assert.Equal(t, 0, progress.Percent(120, 0, 0))

	// Stored value is clamped too.
	assert.Equal(t, 100, progress.Percent(0, 0, 250))
	assert.Equal(t, 0, progress.Percent(0, -1, -7))
}
