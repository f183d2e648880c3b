// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package profile handles user profile management and the member directory.

It provides functionalities for users to view and update their private identity
data, configure their shelf avatar, and look up other members by phone number
when sending friend requests.

# Architecture

  - Entities: AvatarConfig, PublicProfile (DTO).
  - Domain: This package depends on the auth package for the User entity.
  - Privacy: Directory lookups only ever expose the public projection.
*/
package profile

import (
	"context"
	"encoding/json"

	"github.com/bookshelfie/shelfie/internal/users/auth"
)

// # Domain Entities

// AvatarConfig represents the customizable shelf avatar for a user.
//
// Avatars are generated client-side: either a color/gradient combination or
// an uploaded photo URL. Exactly one rendering path is used at a time; when
// Photo is set it takes precedence over the generated style.
type AvatarConfig struct {
	Color    string `json:"color,omitempty"`    // e.g. "#F97316"
	Gradient string `json:"gradient,omitempty"` // e.g. "sunset", "ocean"
	Photo    string `json:"photo,omitempty"`    // Absolute https URL
}

// PublicProfile is the privacy-safe projection of a member exposed to other
// users (directory lookups, friend lists, widget payloads).
type PublicProfile struct {
	ID           string          `json:"id"`
	DisplayName  string          `json:"display_name"`
	AvatarConfig json.RawMessage `json:"avatar_config,omitempty"`
}

// # Field Identifiers

const (
	FieldDisplayName  = "display_name"
	FieldEmail        = "email"
	FieldAvatarConfig = "avatar_config"
	FieldPhone        = "phone"
)

// # Repository Contracts

// ProfileRepository defines the persistence contract for user profiles.
type ProfileRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update modifies the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		SoftDelete flags an account as logically deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	SoftDelete(context context.Context, id string) error

	/*
		FindPublicByPhone resolves a member's public projection by phone number.

		Parameters:
		  - context: context.Context
		  - phone: string (Normalized E.164)

		Returns:
		  - *PublicProfile: Privacy-safe projection
		  - error: apperr.NotFound or storage failures
	*/
	FindPublicByPhone(context context.Context, phone string) (*PublicProfile, error)

	/*
		FindPublicByID resolves a member's public projection by ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *PublicProfile: Privacy-safe projection
		  - error: apperr.NotFound or storage failures
	*/
	FindPublicByID(context context.Context, id string) (*PublicProfile, error)
}

// SessionRevoker is the slice of the auth session contract needed for the
// global sign-out that accompanies account deletion.
type SessionRevoker interface {
	RevokeAll(context context.Context, userID string) error
}
