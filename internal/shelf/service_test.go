// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package shelf_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/internal/shelf"
	"github.com/bookshelfie/shelfie/pkg/pointer"
)

// # Test Doubles

type mockBookRepo struct {
	shelf.BookRepository

	books        map[string]*shelf.Book
	readingCount int
	countErr     error
	created      *shelf.Book
	updated      *shelf.Book
}

func newMockBookRepo() *mockBookRepo {
	return &mockBookRepo{books: map[string]*shelf.Book{}}
}

func (m *mockBookRepo) Create(ctx context.Context, book *shelf.Book) error {
	m.created = book
	m.books[book.ID] = book
	return nil
}

func (m *mockBookRepo) FindByID(ctx context.Context, id string) (*shelf.Book, error) {
	book, ok := m.books[id]
	if !ok {
		return nil, apperr.NotFound("Book")
	}
	clone := *book
	return &clone, nil
}

func (m *mockBookRepo) Update(ctx context.Context, book *shelf.Book) error {
	m.updated = book
	m.books[book.ID] = book
	return nil
}

func (m *mockBookRepo) CountReadingByUser(ctx context.Context, userID string) (int, error) {
	return m.readingCount, m.countErr
}

type stubPlanResolver struct {
	premium bool
	err     error
}

func (s *stubPlanResolver) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	return s.premium, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// # Free-Tier Gate

/*
TestAddBook_FreeTierCap verifies the active-book cap for free members.
*/
func TestAddBook_FreeTierCap(t *testing.T) {
	tests := []struct {
		name         string
		readingCount int
		premium      bool
		wantBlocked  bool
	}{
		{"free_under_cap", 4, false, false},
		{"free_at_cap", 5, false, true},
		{"free_over_cap", 6, false, true},
		{"premium_ignores_cap", 50, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockBookRepo()
			repo.readingCount = tt.readingCount

			service := shelf.NewService(repo, &stubPlanResolver{premium: tt.premium}, 5, discardLogger())

			book, err := service.AddBook(context.Background(), "user-1", shelf.AddBookInput{Title: "Dune"})

			if tt.wantBlocked {
				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "LIMIT_EXCEEDED", ae.Code)
				assert.Nil(t, repo.created)
			} else {
				require.NoError(t, err)
				assert.Equal(t, shelf.StatusReading, book.Status)
				assert.Equal(t, 0, book.ProgressPercent)
			}
		})
	}
}

/*
TestAddBook_BillingOutage verifies the gate degrades to free tier when the
entitlement check fails, rather than waving everyone through.
*/
func TestAddBook_BillingOutage(t *testing.T) {
	repo := newMockBookRepo()
	repo.readingCount = 5

	resolver := &stubPlanResolver{premium: true, err: errors.New("stripe mirror unavailable")}
	service := shelf.NewService(repo, resolver, 5, discardLogger())

	_, err := service.AddBook(context.Background(), "user-1", shelf.AddBookInput{Title: "Dune"})
	require.Error(t, err)
	assert.Equal(t, "LIMIT_EXCEEDED", apperr.As(err).Code)
}

// # Progress Tracking

/*
TestUpdateProgress verifies page reports, percentage overrides, and the
last-write-wins merge of partial input.
*/
func TestUpdateProgress(t *testing.T) {
	repo := newMockBookRepo()
	repo.books["book-1"] = &shelf.Book{
		ID:         "book-1",
		UserID:     "user-1",
		Title:      "1984",
		TotalPages: 328,
		Status:     shelf.StatusReading,
	}

	service := shelf.NewService(repo, &stubPlanResolver{}, 5, discardLogger())

	// Page report derives the percentage.
	book, err := service.UpdateProgress(context.Background(), "user-1", "book-1",
		shelf.UpdateProgressInput{CurrentPage: pointer.To(164)})
	require.NoError(t, err)
	assert.Equal(t, 164, book.CurrentPage)
	assert.Equal(t, 50, book.ProgressPercent)

	// Percentage override wins over pages.
	book, err = service.UpdateProgress(context.Background(), "user-1", "book-1",
		shelf.UpdateProgressInput{Percentage: pointer.To(80)})
	require.NoError(t, err)
	assert.Equal(t, 80, book.ProgressPercent)
	assert.Equal(t, 164, book.CurrentPage, "unreported fields keep their last value")
}

/*
TestUpdateProgress_ForeignBook verifies another member's book reads as
missing, not forbidden.
*/
func TestUpdateProgress_ForeignBook(t *testing.T) {
	repo := newMockBookRepo()
	repo.books["book-1"] = &shelf.Book{ID: "book-1", UserID: "owner", TotalPages: 100}

	service := shelf.NewService(repo, &stubPlanResolver{}, 5, discardLogger())

	_, err := service.UpdateProgress(context.Background(), "intruder", "book-1",
		shelf.UpdateProgressInput{CurrentPage: pointer.To(10)})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestCompleteBook verifies completion pins progress to 100% regardless of the
recorded position.
*/
func TestCompleteBook(t *testing.T) {
	repo := newMockBookRepo()
	repo.books["book-1"] = &shelf.Book{
		ID:          "book-1",
		UserID:      "user-1",
		Title:       "1984",
		TotalPages:  328,
		CurrentPage: 290,
		Status:      shelf.StatusReading,
	}

	service := shelf.NewService(repo, &stubPlanResolver{}, 5, discardLogger())

	book, err := service.CompleteBook(context.Background(), "user-1", "book-1")
	require.NoError(t, err)

	assert.Equal(t, shelf.StatusFinished, book.Status)
	assert.Equal(t, 100, book.ProgressPercent)
	assert.Equal(t, 328, book.CurrentPage)
	require.NotNil(t, book.FinishedAt)
}

// # Derived Progress

/*
TestComputeProgress exercises the progress derivation rules on the entity.
*/
func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name     string
		book     shelf.Book
		expected int
	}{
		{"halfway", shelf.Book{TotalPages: 328, CurrentPage: 164}, 50},
		{"rounds_to_nearest", shelf.Book{TotalPages: 3, CurrentPage: 1}, 33},
		{"rounds_up", shelf.Book{TotalPages: 3, CurrentPage: 2}, 67},
		{"clamps_overrun", shelf.Book{TotalPages: 100, CurrentPage: 150}, 100},
		{"zero_total", shelf.Book{TotalPages: 0, CurrentPage: 42}, 0},
		{"override_wins", shelf.Book{TotalPages: 100, CurrentPage: 10, Percentage: pointer.To(75)}, 75},
		{"override_clamped", shelf.Book{Percentage: pointer.To(140)}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.book.ComputeProgress()
			assert.Equal(t, tt.expected, tt.book.ProgressPercent)
		})
	}
}
