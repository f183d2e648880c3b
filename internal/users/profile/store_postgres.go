// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package profile (Postgres) implements the storage layer for user profiles.

# Schema Table Mapping
  - users.account: Master identity and profile data.
*/
package profile

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
	"github.com/bookshelfie/shelfie/internal/users/auth"
)

// # Repository Implementations

// PostgresProfileRepository implements [ProfileRepository] using pgx.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new Postgres implementation for profile management.
func NewProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// # ProfileRepository Methods

/*
FindByID retrieves a user record from the users.account table.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *auth.User: Hydrated identity entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresProfileRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.UserAccount.ID, schema.UserAccount.Phone, schema.UserAccount.Email,
		schema.UserAccount.Password, schema.UserAccount.DisplayName, schema.UserAccount.AvatarConfig,
		schema.UserAccount.IsActive, schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	user := &auth.User{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.Phone,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.AvatarConfig,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_profile_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
Update modifies the mutable profile metadata of a user.

Description: This method specifically syncs the DisplayName, Email, and
AvatarConfig fields, while refreshing the updatedat timestamp.

Parameters:
  - context: context.Context
  - user: *auth.User

Returns:
  - error: Update failures
*/
func (repository *PostgresProfileRepository) Update(context context.Context, user *auth.User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NULLIF($3, ''), %s = $4, %s = $5
		WHERE %s = $1 AND %s IS NULL`,
		schema.UserAccount.Table,
		schema.UserAccount.DisplayName, schema.UserAccount.Email,
		schema.UserAccount.AvatarConfig, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.DisplayName,
		user.Email,
		user.AvatarConfig,
		time.Now(),
	)

	// If the update fails, return an error
	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	return nil
}

/*
SoftDelete flags a user account as logically destroyed.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution failures
*/
func (repository *PostgresProfileRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.DeletedAt, schema.UserAccount.ID)
	_, err := repository.pool.Exec(context, query, id)
	return err
}

/*
FindPublicByPhone resolves a member's public projection by phone number.

Parameters:
  - context: context.Context
  - phone: string (Normalized E.164)

Returns:
  - *PublicProfile: Privacy-safe projection
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresProfileRepository) FindPublicByPhone(context context.Context, phone string) (*PublicProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.UserAccount.ID, schema.UserAccount.DisplayName, schema.UserAccount.AvatarConfig,
		schema.UserAccount.Table, schema.UserAccount.Phone, schema.UserAccount.DeletedAt,
	)

	return scanPublicProfile(repository.pool.QueryRow(context, query, phone))
}

/*
FindPublicByID resolves a member's public projection by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *PublicProfile: Privacy-safe projection
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresProfileRepository) FindPublicByID(context context.Context, id string) (*PublicProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.UserAccount.ID, schema.UserAccount.DisplayName, schema.UserAccount.AvatarConfig,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	return scanPublicProfile(repository.pool.QueryRow(context, query, id))
}

// scanPublicProfile hydrates a [PublicProfile] from a single-row result.
func scanPublicProfile(row pgx.Row) (*PublicProfile, error) {
	member := &PublicProfile{}
	err := row.Scan(&member.ID, &member.DisplayName, &member.AvatarConfig)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Member")
		}
		return nil, fmt.Errorf("postgres_profile_repo_public_scan_failed: %w", err)
	}
	return member, nil
}
