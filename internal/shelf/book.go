// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package shelf implements the core reading tracker.

It manages each member's bookshelf: the books they are currently reading,
their page-level progress, and their finished history. Progress percentages
computed here are the single source of truth for the web app, the friends
feed, and the home-screen widget.

# Architecture

  - Entities: Book with derived progress.
  - Limits: Free-tier members hold at most a fixed number of active books.
  - Concurrency: Progress updates are last-write-wins; a reader's own devices
    racing each other resolve to the most recent update.
*/
package shelf

import (
	"context"
	"time"

	"github.com/bookshelfie/shelfie/pkg/pagination"
	"github.com/bookshelfie/shelfie/pkg/progress"
)

// # Domain Entities

// BookStatus enumerates the lifecycle states of a shelf entry.
type BookStatus string

const (
	// StatusReading marks a book the member is actively reading.
	StatusReading BookStatus = "reading"
	// StatusFinished marks a completed book.
	StatusFinished BookStatus = "finished"
)

// Book represents a single entry on a member's shelf.
type Book struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Author      string     `json:"author,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	OpenLibID   string     `json:"openlib_id,omitempty"`
	TotalPages  int        `json:"total_pages"`
	CurrentPage int        `json:"current_page"`
	// Percentage is an explicit override set by readers who track progress
	// by percent instead of pages (audiobooks, e-readers without page counts).
	Percentage *int       `json:"percentage,omitempty"`
	Status     BookStatus `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// ProgressPercent is derived, never stored. See [Book.ComputeProgress].
	ProgressPercent int `json:"progress_percent"`
}

// ComputeProgress refreshes the derived ProgressPercent field.
//
// The explicit Percentage override wins when present; otherwise the percent
// is derived from the page position. Entries without a usable page count and
// without an override render as zero.
func (book *Book) ComputeProgress() {
	if book.Percentage != nil {
		book.ProgressPercent = progress.Percent(0, 0, *book.Percentage)
		return
	}
	book.ProgressPercent = progress.Percent(book.CurrentPage, book.TotalPages, 0)
}

// # Field Identifiers

const (
	FieldTitle       = "title"
	FieldAuthor      = "author"
	FieldCoverURL    = "cover_url"
	FieldTotalPages  = "total_pages"
	FieldCurrentPage = "current_page"
	FieldPercentage  = "percentage"
)

// # Repository Contracts

// BookRepository defines the persistence contract for shelf entries.
type BookRepository interface {

	/*
		Create persists a new shelf entry.

		Parameters:
		  - context: context.Context
		  - book: *Book

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, book *Book) error

	/*
		FindByID retrieves a shelf entry by its ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Book: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Book, error)

	/*
		Update persists progress and lifecycle changes to an entry.

		Parameters:
		  - context: context.Context
		  - book: *Book

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, book *Book) error

	/*
		Delete removes a shelf entry permanently.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		ListByUser returns a paginated page of a member's shelf, optionally
		filtered by status, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - status: BookStatus (empty string returns all)
		  - page: pagination.Params

		Returns:
		  - []Book: The page of entries
		  - int: Total matching entries
		  - error: Retrieval failures
	*/
	ListByUser(context context.Context, userID string, status BookStatus, page pagination.Params) ([]Book, int, error)

	/*
		ListReadingByUser returns up to limit actively-read books, most
		recently updated first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - limit: int

		Returns:
		  - []Book: Active entries
		  - error: Retrieval failures
	*/
	ListReadingByUser(context context.Context, userID string, limit int) ([]Book, error)

	/*
		CountReadingByUser reports the number of active entries for the
		free-tier gate.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int: Active entry count
		  - error: Retrieval failures
	*/
	CountReadingByUser(context context.Context, userID string) (int, error)
}
