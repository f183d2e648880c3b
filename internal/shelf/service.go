// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package shelf

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/pkg/pagination"
	"github.com/bookshelfie/shelfie/pkg/slug"
	"github.com/bookshelfie/shelfie/pkg/uuid"
)

// # Contracts & Types

// PlanResolver reports whether a user currently has a paid plan.
//
// Unlike the JWT premium claim, this hits the billing store directly: the
// shelf cap is a revenue gate, so it must not honor a stale token.
type PlanResolver interface {
	HasActiveSubscription(context context.Context, userID string) (bool, error)
}

// Service orchestrates business logic for the reading tracker.
type Service struct {
	bookRepository BookRepository
	planResolver   PlanResolver
	freeTierLimit  int
	logger         *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	bookRepo BookRepository,
	planResolver PlanResolver,
	freeTierLimit int,
	logger *slog.Logger,
) *Service {
	return &Service{
		bookRepository: bookRepo,
		planResolver:   planResolver,
		freeTierLimit:  freeTierLimit,
		logger:         logger,
	}
}

// # Shelf Management

// AddBookInput holds the data required to start tracking a book.
type AddBookInput struct {
	Title      string
	Author     string
	CoverURL   string
	OpenLibID  string
	TotalPages int
}

/*
AddBook starts tracking a new book on the member's shelf.

Description: Enforces the free-tier active-book cap before inserting. The cap
counts only actively-read books, so finishing a book frees a slot.

Parameters:
  - context: context.Context
  - userID: string
  - input: AddBookInput

Returns:
  - *Book: Created entry at 0% progress
  - error: apperr.LimitExceeded when the free-tier cap is hit, or storage failures
*/
func (service *Service) AddBook(context context.Context, userID string, input AddBookInput) (*Book, error) {

	// Revenue gate: free members hold a limited number of active books.
	premium, err := service.planResolver.HasActiveSubscription(context, userID)
	if err != nil {
		// Billing outage: treat the member as free tier rather than fail.
		premium = false
	}

	if !premium {
		activeCount, err := service.bookRepository.CountReadingByUser(context, userID)
		if err != nil {
			return nil, fmt.Errorf("shelf_service_count_failed: %w", err)
		}
		if activeCount >= service.freeTierLimit {
			return nil, apperr.LimitExceeded(
				fmt.Sprintf("Free plan is limited to %d active books. Upgrade to add more.", service.freeTierLimit),
			)
		}
	}

	book := &Book{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Author:      input.Author,
		CoverURL:    input.CoverURL,
		OpenLibID:   input.OpenLibID,
		TotalPages:  input.TotalPages,
		CurrentPage: 0,
		Status:      StatusReading,
		StartedAt:   time.Now(),
	}

	if err := service.bookRepository.Create(context, book); err != nil {
		return nil, fmt.Errorf("shelf_service_add_failed: %w", err)
	}

	book.ComputeProgress()

	service.logger.Info("shelf_book_added",
		slog.String("user_id", userID),
		slog.String("book_id", book.ID),
	)

	return book, nil
}

// UpdateProgressInput defines a progress report from one of the member's devices.
type UpdateProgressInput struct {
	CurrentPage *int
	Percentage  *int
}

/*
UpdateProgress records a new reading position for a book.

Description: Last-write-wins. Two devices racing each other simply resolve to
whichever report lands last; no version check is performed because a reader's
own position is not worth a conflict dialog.

Parameters:
  - context: context.Context
  - userID: string (Ownership check)
  - bookID: string
  - input: UpdateProgressInput

Returns:
  - *Book: Updated entry with recomputed progress
  - error: NotFound, Forbidden, or storage failures
*/
func (service *Service) UpdateProgress(context context.Context, userID, bookID string, input UpdateProgressInput) (*Book, error) {

	book, err := service.findOwned(context, userID, bookID)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.CurrentPage != nil {
		book.CurrentPage = *input.CurrentPage
	}

	// Apply delta updates. Setting a percentage switches the entry to
	// override mode until the book is completed.
	if input.Percentage != nil {
		book.Percentage = input.Percentage
	}

	if err := service.bookRepository.Update(context, book); err != nil {
		return nil, fmt.Errorf("shelf_service_update_progress_failed: %w", err)
	}

	book.ComputeProgress()

	return book, nil
}

/*
CompleteBook marks a book as finished.

Description: Sets the status, stamps the finish time, and pins progress to
100% so the history view never shows a finished book at 97%.

Parameters:
  - context: context.Context
  - userID: string
  - bookID: string

Returns:
  - *Book: Finished entry
  - error: NotFound, Forbidden, or storage failures
*/
func (service *Service) CompleteBook(context context.Context, userID, bookID string) (*Book, error) {

	book, err := service.findOwned(context, userID, bookID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	full := 100
	book.Status = StatusFinished
	book.FinishedAt = &now
	book.Percentage = &full
	if book.TotalPages > 0 {
		book.CurrentPage = book.TotalPages
	}

	if err := service.bookRepository.Update(context, book); err != nil {
		return nil, fmt.Errorf("shelf_service_complete_failed: %w", err)
	}

	book.ComputeProgress()

	service.logger.Info("shelf_book_finished",
		slog.String("user_id", userID),
		slog.String("book_id", book.ID),
	)

	return book, nil
}

/*
RemoveBook deletes a shelf entry permanently.

Parameters:
  - context: context.Context
  - userID: string
  - bookID: string

Returns:
  - error: NotFound, Forbidden, or storage failures
*/
func (service *Service) RemoveBook(context context.Context, userID, bookID string) error {

	if _, err := service.findOwned(context, userID, bookID); err != nil {
		return err
	}

	if err := service.bookRepository.Delete(context, bookID); err != nil {
		return fmt.Errorf("shelf_service_remove_failed: %w", err)
	}

	return nil
}

// # Shelf Views

/*
ListShelf returns a paginated view of the member's shelf.

Parameters:
  - context: context.Context
  - userID: string
  - status: BookStatus (empty returns all entries)
  - page: pagination.Params

Returns:
  - []Book: Page of entries with derived progress
  - pagination.Meta: Navigation metadata
  - error: Retrieval failures
*/
func (service *Service) ListShelf(context context.Context, userID string, status BookStatus, page pagination.Params) ([]Book, pagination.Meta, error) {

	books, total, err := service.bookRepository.ListByUser(context, userID, status, page)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("shelf_service_list_failed: %w", err)
	}

	for index := range books {
		books[index].ComputeProgress()
	}

	return books, pagination.NewMeta(page.Page, page.Limit, total), nil
}

/*
ListReading returns the member's actively-read books, most recent first.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int

Returns:
  - []Book: Active entries with derived progress
  - error: Retrieval failures
*/
func (service *Service) ListReading(context context.Context, userID string, limit int) ([]Book, error) {

	books, err := service.bookRepository.ListReadingByUser(context, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("shelf_service_list_reading_failed: %w", err)
	}

	for index := range books {
		books[index].ComputeProgress()
	}

	return books, nil
}

// # Share Cards

// ShareCard is the payload backing the social share-card renderer.
type ShareCard struct {
	Title           string `json:"title"`
	Author          string `json:"author,omitempty"`
	CoverURL        string `json:"cover_url,omitempty"`
	ProgressPercent int    `json:"progress_percent"`
	Slug            string `json:"slug"`
}

/*
BuildShareCard produces the share payload for a shelf entry.

Description: The slug is derived from the book title and used as the
human-readable path segment of the shared link.

Parameters:
  - context: context.Context
  - userID: string
  - bookID: string

Returns:
  - *ShareCard: Render-ready payload
  - error: NotFound, Forbidden, or storage failures
*/
func (service *Service) BuildShareCard(context context.Context, userID, bookID string) (*ShareCard, error) {

	book, err := service.findOwned(context, userID, bookID)
	if err != nil {
		return nil, err
	}

	book.ComputeProgress()

	return &ShareCard{
		Title:           book.Title,
		Author:          book.Author,
		CoverURL:        book.CoverURL,
		ProgressPercent: book.ProgressPercent,
		Slug:            slug.From(book.Title),
	}, nil
}

// # Internals

// findOwned loads a book and verifies the caller owns it.
func (service *Service) findOwned(context context.Context, userID, bookID string) (*Book, error) {
	book, err := service.bookRepository.FindByID(context, bookID)
	if err != nil {
		return nil, fmt.Errorf("shelf_service_lookup_failed: %w", err)
	}

	if book.UserID != userID {
		// Do not leak the entry's existence to non-owners.
		return nil, apperr.NotFound("Book")
	}

	return book, nil
}
