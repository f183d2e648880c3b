// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package shelf (Postgres) implements the storage layer for the reading tracker.

# Schema Table Mapping
  - shelf.book: One row per tracked book per member.
*/
package shelf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/internal/platform/database/schema"
	"github.com/bookshelfie/shelfie/internal/platform/dberr"
	"github.com/bookshelfie/shelfie/pkg/pagination"
)

// # Repository Implementations

// PostgresBookRepository implements [BookRepository] using pgx.
type PostgresBookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository creates a new Postgres implementation for shelf entries.
func NewBookRepository(pool *pgxpool.Pool) *PostgresBookRepository {
	return &PostgresBookRepository{pool: pool}
}

// bookSelectColumns builds the canonical column list shared by read queries.
func bookSelectColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		schema.ShelfBook.ID, schema.ShelfBook.UserID, schema.ShelfBook.Title,
		schema.ShelfBook.Author, schema.ShelfBook.CoverURL, schema.ShelfBook.OpenLibID,
		schema.ShelfBook.TotalPages, schema.ShelfBook.CurrentPage, schema.ShelfBook.Percentage,
		schema.ShelfBook.Status, schema.ShelfBook.StartedAt, schema.ShelfBook.FinishedAt,
		schema.ShelfBook.CreatedAt, schema.ShelfBook.UpdatedAt,
	)
}

// scanBook hydrates a [Book] from a row.
func scanBook(row pgx.Row) (*Book, error) {
	book := &Book{}
	err := row.Scan(
		&book.ID,
		&book.UserID,
		&book.Title,
		&book.Author,
		&book.CoverURL,
		&book.OpenLibID,
		&book.TotalPages,
		&book.CurrentPage,
		&book.Percentage,
		&book.Status,
		&book.StartedAt,
		&book.FinishedAt,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Book")
		}
		return nil, fmt.Errorf("postgres_book_repo_scan_failed: %w", err)
	}
	return book, nil
}

// # BookRepository Methods

/*
Create persists a new shelf entry.

Parameters:
  - context: context.Context
  - book: *Book

Returns:
  - error: apperr.Conflict or execution failures
*/
func (repository *PostgresBookRepository) Create(context context.Context, book *Book) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s, %s`,
		schema.ShelfBook.Table,
		schema.ShelfBook.ID, schema.ShelfBook.UserID, schema.ShelfBook.Title,
		schema.ShelfBook.Author, schema.ShelfBook.CoverURL, schema.ShelfBook.OpenLibID,
		schema.ShelfBook.TotalPages, schema.ShelfBook.CurrentPage, schema.ShelfBook.Percentage,
		schema.ShelfBook.Status, schema.ShelfBook.StartedAt,
		schema.ShelfBook.CreatedAt, schema.ShelfBook.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		book.ID,
		book.UserID,
		book.Title,
		book.Author,
		book.CoverURL,
		book.OpenLibID,
		book.TotalPages,
		book.CurrentPage,
		book.Percentage,
		book.Status,
		book.StartedAt,
	).Scan(&book.CreatedAt, &book.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "Book")
	}

	return nil
}

/*
FindByID retrieves a shelf entry by its ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Book: Hydrated entity
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresBookRepository) FindByID(context context.Context, id string) (*Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		bookSelectColumns(), schema.ShelfBook.Table, schema.ShelfBook.ID,
	)

	return scanBook(repository.pool.QueryRow(context, query, id))
}

/*
Update persists progress and lifecycle changes to an entry.

Description: Last-write-wins. The row is overwritten with the caller's state
without a version check.

Parameters:
  - context: context.Context
  - book: *Book

Returns:
  - error: Update failures
*/
func (repository *PostgresBookRepository) Update(context context.Context, book *Book) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6
		WHERE %s = $1`,
		schema.ShelfBook.Table,
		schema.ShelfBook.CurrentPage, schema.ShelfBook.Percentage, schema.ShelfBook.Status,
		schema.ShelfBook.FinishedAt, schema.ShelfBook.UpdatedAt,
		schema.ShelfBook.ID,
	)

	_, err := repository.pool.Exec(context, query,
		book.ID,
		book.CurrentPage,
		book.Percentage,
		book.Status,
		book.FinishedAt,
		time.Now(),
	)

	// If the update fails, return an error
	if err != nil {
		return fmt.Errorf("postgres_book_repo_update_failed: %w", err)
	}

	return nil
}

/*
Delete removes a shelf entry permanently.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution failures
*/
func (repository *PostgresBookRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.ShelfBook.Table, schema.ShelfBook.ID)
	_, err := repository.pool.Exec(context, query, id)
	return err
}

/*
ListByUser returns a paginated page of a member's shelf, newest first.

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
func (repository *PostgresBookRepository) ListByUser(context context.Context, userID string, status BookStatus, page pagination.Params) ([]Book, int, error) {

	statusFilter := ""
	args := []interface{}{userID}
	if status != "" {
		statusFilter = fmt.Sprintf(" AND %s = $2", schema.ShelfBook.Status)
		args = append(args, status)
	}

	// Count first for pagination metadata.
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1%s`,
		schema.ShelfBook.Table, schema.ShelfBook.UserID, statusFilter)

	var total int
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_book_repo_count_failed: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1%s
		ORDER BY %s DESC
		LIMIT %d OFFSET %d`,
		bookSelectColumns(), schema.ShelfBook.Table, schema.ShelfBook.UserID, statusFilter,
		schema.ShelfBook.UpdatedAt, page.Limit, page.Offset(),
	)

	rows, err := repository.pool.Query(context, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_book_repo_list_failed: %w", err)
	}
	defer rows.Close()

	books, err := collectBooks(rows)
	if err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

/*
ListReadingByUser returns up to limit actively-read books, most recently
updated first.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int

Returns:
  - []Book: Active entries
  - error: Retrieval failures
*/
func (repository *PostgresBookRepository) ListReadingByUser(context context.Context, userID string, limit int) ([]Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s = $2
		ORDER BY %s DESC
		LIMIT %d`,
		bookSelectColumns(), schema.ShelfBook.Table,
		schema.ShelfBook.UserID, schema.ShelfBook.Status,
		schema.ShelfBook.UpdatedAt, limit,
	)

	rows, err := repository.pool.Query(context, query, userID, StatusReading)
	if err != nil {
		return nil, fmt.Errorf("postgres_book_repo_list_reading_failed: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

/*
CountReadingByUser reports the number of active entries for the free-tier gate.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int: Active entry count
  - error: Retrieval failures
*/
func (repository *PostgresBookRepository) CountReadingByUser(context context.Context, userID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s = $2`,
		schema.ShelfBook.Table, schema.ShelfBook.UserID, schema.ShelfBook.Status)

	var count int
	if err := repository.pool.QueryRow(context, query, userID, StatusReading).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_book_repo_count_reading_failed: %w", err)
	}

	return count, nil
}

// collectBooks drains a row set into a slice of [Book].
func collectBooks(rows pgx.Rows) ([]Book, error) {
	var books []Book
	for rows.Next() {
		var book Book
		err := rows.Scan(
			&book.ID,
			&book.UserID,
			&book.Title,
			&book.Author,
			&book.CoverURL,
			&book.OpenLibID,
			&book.TotalPages,
			&book.CurrentPage,
			&book.Percentage,
			&book.Status,
			&book.StartedAt,
			&book.FinishedAt,
			&book.CreatedAt,
			&book.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_book_repo_scan_failed: %w", err)
		}
		books = append(books, book)
	}

	return books, rows.Err()
}
