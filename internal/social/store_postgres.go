// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package social (Postgres) implements the storage layer for friendships.

# Schema Table Mapping
  - social.friendship: One undirected edge per member pair.
  - shelf.book + users.account: Joined for the friends-reading feed.
*/
package social

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
)

// # Repository Implementations

// PostgresFriendshipRepository implements [FriendshipRepository] using pgx.
type PostgresFriendshipRepository struct {
	pool *pgxpool.Pool
}

// NewFriendshipRepository creates a new Postgres implementation for friendship edges.
func NewFriendshipRepository(pool *pgxpool.Pool) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{pool: pool}
}

// PostgresFriendReadingRepository implements [FriendReadingRepository] using pgx.
type PostgresFriendReadingRepository struct {
	pool *pgxpool.Pool
}

// NewFriendReadingRepository creates a new Postgres implementation for the feed fan-out.
func NewFriendReadingRepository(pool *pgxpool.Pool) *PostgresFriendReadingRepository {
	return &PostgresFriendReadingRepository{pool: pool}
}

// # FriendshipRepository Methods

/*
Create persists a new pending friendship request.

Description: The unique pair index on (LEAST(requester, addressee),
GREATEST(requester, addressee)) rejects a duplicate edge in either
orientation at the database level.

Parameters:
  - context: context.Context
  - friendship: *Friendship

Returns:
  - error: apperr.Conflict on duplicate pairs or execution failures
*/
func (repository *PostgresFriendshipRepository) Create(context context.Context, friendship *Friendship) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s`,
		schema.SocialFriendship.Table,
		schema.SocialFriendship.ID, schema.SocialFriendship.RequesterID,
		schema.SocialFriendship.AddresseeID, schema.SocialFriendship.Status,
		schema.SocialFriendship.CreatedAt, schema.SocialFriendship.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		friendship.ID,
		friendship.RequesterID,
		friendship.AddresseeID,
		friendship.Status,
	).Scan(&friendship.CreatedAt, &friendship.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "Friendship")
	}

	return nil
}

/*
FindByID retrieves a friendship row by its ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Friendship: Hydrated entity
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresFriendshipRepository) FindByID(context context.Context, id string) (*Friendship, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.SocialFriendship.ID, schema.SocialFriendship.RequesterID,
		schema.SocialFriendship.AddresseeID, schema.SocialFriendship.Status,
		schema.SocialFriendship.CreatedAt, schema.SocialFriendship.UpdatedAt,
		schema.SocialFriendship.Table, schema.SocialFriendship.ID,
	)

	return scanFriendship(repository.pool.QueryRow(context, query, id))
}

/*
FindBetween retrieves the edge between two members in either orientation.

Parameters:
  - context: context.Context
  - userA: string
  - userB: string

Returns:
  - *Friendship: Hydrated entity
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresFriendshipRepository) FindBetween(context context.Context, userA, userB string) (*Friendship, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE (%s = $1 AND %s = $2) OR (%s = $2 AND %s = $1)`,
		schema.SocialFriendship.ID, schema.SocialFriendship.RequesterID,
		schema.SocialFriendship.AddresseeID, schema.SocialFriendship.Status,
		schema.SocialFriendship.CreatedAt, schema.SocialFriendship.UpdatedAt,
		schema.SocialFriendship.Table,
		schema.SocialFriendship.RequesterID, schema.SocialFriendship.AddresseeID,
		schema.SocialFriendship.RequesterID, schema.SocialFriendship.AddresseeID,
	)

	return scanFriendship(repository.pool.QueryRow(context, query, userA, userB))
}

/*
UpdateStatus transitions a friendship to a new status.

Parameters:
  - context: context.Context
  - id: string
  - status: FriendshipStatus

Returns:
  - error: Update failures
*/
func (repository *PostgresFriendshipRepository) UpdateStatus(context context.Context, id string, status FriendshipStatus) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.SocialFriendship.Table, schema.SocialFriendship.Status,
		schema.SocialFriendship.UpdatedAt, schema.SocialFriendship.ID)

	_, err := repository.pool.Exec(context, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_friendship_repo_update_status_failed: %w", err)
	}

	return nil
}

/*
Delete removes a friendship edge permanently.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution failures
*/
func (repository *PostgresFriendshipRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.SocialFriendship.Table, schema.SocialFriendship.ID)
	_, err := repository.pool.Exec(context, query, id)
	return err
}

/*
ListFriendIDs returns the IDs of all accepted friends of a member.

Description: The edge is undirected, so the friend is whichever side of the
row is not the member.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []string: Friend IDs (possibly empty)
  - error: Retrieval failures
*/
func (repository *PostgresFriendshipRepository) ListFriendIDs(context context.Context, userID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT CASE WHEN %s = $1 THEN %s ELSE %s END
		FROM %s
		WHERE (%s = $1 OR %s = $1) AND %s = $2`,
		schema.SocialFriendship.RequesterID, schema.SocialFriendship.AddresseeID,
		schema.SocialFriendship.RequesterID,
		schema.SocialFriendship.Table,
		schema.SocialFriendship.RequesterID, schema.SocialFriendship.AddresseeID,
		schema.SocialFriendship.Status,
	)

	rows, err := repository.pool.Query(context, query, userID, StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("postgres_friendship_repo_list_ids_failed: %w", err)
	}
	defer rows.Close()

	var friendIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres_friendship_repo_scan_id_failed: %w", err)
		}
		friendIDs = append(friendIDs, id)
	}

	return friendIDs, rows.Err()
}

/*
ListIncoming returns pending requests addressed to a member, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []FriendRequest: Pending requests with requester profiles
  - error: Retrieval failures
*/
func (repository *PostgresFriendshipRepository) ListIncoming(context context.Context, userID string) ([]FriendRequest, error) {
	query := fmt.Sprintf(`
		SELECT f.%s, f.%s, a.%s, a.%s, a.%s
		FROM %s f
		JOIN %s a ON a.%s = f.%s
		WHERE f.%s = $1 AND f.%s = $2 AND a.%s IS NULL
		ORDER BY f.%s DESC`,
		schema.SocialFriendship.ID, schema.SocialFriendship.CreatedAt,
		schema.UserAccount.ID, schema.UserAccount.DisplayName, schema.UserAccount.AvatarConfig,
		schema.SocialFriendship.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.SocialFriendship.RequesterID,
		schema.SocialFriendship.AddresseeID, schema.SocialFriendship.Status, schema.UserAccount.DeletedAt,
		schema.SocialFriendship.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("postgres_friendship_repo_incoming_failed: %w", err)
	}
	defer rows.Close()

	var requests []FriendRequest
	for rows.Next() {
		var request FriendRequest
		err := rows.Scan(
			&request.FriendshipID,
			&request.CreatedAt,
			&request.Requester.ID,
			&request.Requester.DisplayName,
			&request.Requester.AvatarConfig,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_friendship_repo_incoming_scan_failed: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

/*
ListFriends returns accepted friends of a member as public profiles.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []Member: Friend profiles
  - error: Retrieval failures
*/
func (repository *PostgresFriendshipRepository) ListFriends(context context.Context, userID string) ([]Member, error) {
	query := fmt.Sprintf(`
		SELECT a.%s, a.%s, a.%s
		FROM %s f
		JOIN %s a ON a.%s = CASE WHEN f.%s = $1 THEN f.%s ELSE f.%s END
		WHERE (f.%s = $1 OR f.%s = $1) AND f.%s = $2 AND a.%s IS NULL
		ORDER BY a.%s ASC`,
		schema.UserAccount.ID, schema.UserAccount.DisplayName, schema.UserAccount.AvatarConfig,
		schema.SocialFriendship.Table,
		schema.UserAccount.Table, schema.UserAccount.ID,
		schema.SocialFriendship.RequesterID, schema.SocialFriendship.AddresseeID, schema.SocialFriendship.RequesterID,
		schema.SocialFriendship.RequesterID, schema.SocialFriendship.AddresseeID, schema.SocialFriendship.Status,
		schema.UserAccount.DeletedAt,
		schema.UserAccount.DisplayName,
	)

	rows, err := repository.pool.Query(context, query, userID, StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("postgres_friendship_repo_friends_failed: %w", err)
	}
	defer rows.Close()

	var friends []Member
	for rows.Next() {
		var friend Member
		if err := rows.Scan(&friend.ID, &friend.DisplayName, &friend.AvatarConfig); err != nil {
			return nil, fmt.Errorf("postgres_friendship_repo_friends_scan_failed: %w", err)
		}
		friends = append(friends, friend)
	}

	return friends, rows.Err()
}

// scanFriendship hydrates a [Friendship] from a single-row result.
func scanFriendship(row pgx.Row) (*Friendship, error) {
	friendship := &Friendship{}
	err := row.Scan(
		&friendship.ID,
		&friendship.RequesterID,
		&friendship.AddresseeID,
		&friendship.Status,
		&friendship.CreatedAt,
		&friendship.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Friendship")
		}
		return nil, fmt.Errorf("postgres_friendship_repo_scan_failed: %w", err)
	}
	return friendship, nil
}

// # FriendReadingRepository Methods

/*
ListReadingByFriends returns actively-read books for the given friend IDs.

Description: One query joins the friends' shelves with their public identity.
pgx expands the UUID slice into an ANY($1) parameter, so the friend set never
touches the SQL text.

Parameters:
  - context: context.Context
  - friendIDs: []string (non-empty; callers short-circuit the empty set)
  - limit: int

Returns:
  - []FriendBook: Feed rows, most recent shelf activity first
  - error: Retrieval failures
*/
func (repository *PostgresFriendReadingRepository) ListReadingByFriends(context context.Context, friendIDs []string, limit int) ([]FriendBook, error) {
	query := fmt.Sprintf(`
		SELECT a.%s, a.%s, a.%s,
		       b.%s, b.%s, b.%s, b.%s, b.%s, b.%s, b.%s
		FROM %s b
		JOIN %s a ON a.%s = b.%s
		WHERE b.%s = ANY($1) AND b.%s = $2 AND a.%s IS NULL
		ORDER BY b.%s DESC
		LIMIT %d`,
		schema.UserAccount.ID, schema.UserAccount.DisplayName, schema.UserAccount.AvatarConfig,
		schema.ShelfBook.ID, schema.ShelfBook.Title, schema.ShelfBook.Author,
		schema.ShelfBook.CoverURL, schema.ShelfBook.TotalPages, schema.ShelfBook.CurrentPage,
		schema.ShelfBook.Percentage,
		schema.ShelfBook.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.ShelfBook.UserID,
		schema.ShelfBook.UserID, schema.ShelfBook.Status, schema.UserAccount.DeletedAt,
		schema.ShelfBook.UpdatedAt, limit,
	)

	rows, err := repository.pool.Query(context, query, friendIDs, StatusReadingBook)
	if err != nil {
		return nil, fmt.Errorf("postgres_friend_reading_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var feed []FriendBook
	for rows.Next() {
		var row FriendBook
		err := rows.Scan(
			&row.FriendID,
			&row.FriendName,
			&row.FriendAvatar,
			&row.BookID,
			&row.Title,
			&row.Author,
			&row.CoverURL,
			&row.TotalPages,
			&row.CurrentPage,
			&row.Percentage,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_friend_reading_repo_scan_failed: %w", err)
		}
		feed = append(feed, row)
	}

	return feed, rows.Err()
}

// StatusReadingBook mirrors the shelf package's active status without
// importing it; the two packages share the shelf.book table, not Go types.
const StatusReadingBook = "reading"
