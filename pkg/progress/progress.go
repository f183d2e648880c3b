// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package progress computes reading-progress percentages.

Every surface that renders a progress bar (book cards, the friends feed, the
widget payload, share cards) goes through this single function so that the
same (current_page, total_pages) pair can never display two different numbers.

Rules:

  - total_pages > 0: percent = round(100 * current_page / total_pages).
  - total_pages <= 0: percent = the stored fallback value, or 0 if none.
  - The result is always clamped to [0, 100].

The function is total: it never returns an error, even for garbage input.
*/
package progress

import "math"

// Percent returns the integer progress percentage for a book.
//
// # Clamping
//
// A reader can report a current page beyond the book's total (re-reads,
// appendices, bad data entry). Downstream progress bars assume 0-100, so the
// result is clamped rather than propagated out of range. Negative pages clamp
// to 0 for the same reason.
func Percent(currentPage, totalPages, fallback int) int {
	if totalPages <= 0 {
		// Page count unknown: trust the caller-supplied stored percentage.
		return clamp(fallback)
	}

	percent := int(math.Round(100 * float64(currentPage) / float64(totalPages)))
	return clamp(percent)
}

// clamp bounds a percentage to the [0, 100] range.
func clamp(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
