// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bookshelfie/shelfie/internal/users/auth"
	"github.com/bookshelfie/shelfie/pkg/pointer"
)

// # Service Layer

// Service orchestrates business logic for user profiles and directory lookups.
type Service struct {
	profileRepository ProfileRepository
	sessionRevoker    SessionRevoker
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	profileRepo ProfileRepository,
	sessionRevoker SessionRevoker,
	logger *slog.Logger,
) *Service {
	return &Service{
		profileRepository: profileRepo,
		sessionRevoker:    sessionRevoker,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.profileRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("profile_service_get_failed: %w", err)
	}
	return user, nil
}

// UpdateProfileInput defines the mutable subset of user profile fields.
type UpdateProfileInput struct {
	DisplayName  *string
	Email        *string
	AvatarConfig *AvatarConfig
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Description: Fetches the existing user state, overrides provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {

	user, err := service.profileRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("profile_service_update_lookup_failed: %w", err)
	}

	// Apply delta updates; absent fields keep their stored values.
	user.DisplayName = pointer.Fallback(input.DisplayName, user.DisplayName)
	user.Email = pointer.Fallback(input.Email, user.Email)

	if input.AvatarConfig != nil {
		encoded, err := json.Marshal(input.AvatarConfig)
		if err != nil {
			return nil, fmt.Errorf("profile_service_avatar_encode_failed: %w", err)
		}
		user.AvatarConfig = encoded
	}

	// Persist changes
	if err := service.profileRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("profile_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

/*
DeleteAccount performs an idempotent soft-deletion of a user account.

Description: Flags the account as deleted and immediately terminates all active
security sessions to force a global sign-out.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution failures
*/
func (service *Service) DeleteAccount(context context.Context, userID string) error {

	if err := service.profileRepository.SoftDelete(context, userID); err != nil {
		return fmt.Errorf("profile_service_delete_failed: %w", err)
	}

	// Force global revocation of sessions for the deleted account
	_ = service.sessionRevoker.RevokeAll(context, userID)

	service.logger.Warn("user_account_deleted", slog.String("user_id", userID))

	return nil
}

// # Member Directory

/*
LookupByPhone resolves another member's public profile for friend requests.

Description: Only the public projection is returned, so a phone number can
never be used to scrape private account data.

Parameters:
  - context: context.Context
  - phone: string (Normalized E.164)

Returns:
  - *PublicProfile: Privacy-safe projection
  - error: apperr.NotFound or storage failures
*/
func (service *Service) LookupByPhone(context context.Context, phone string) (*PublicProfile, error) {
	member, err := service.profileRepository.FindPublicByPhone(context, phone)
	if err != nil {
		return nil, fmt.Errorf("profile_service_lookup_failed: %w", err)
	}
	return member, nil
}

/*
GetPublic resolves a member's public profile by ID.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *PublicProfile: Privacy-safe projection
  - error: apperr.NotFound or storage failures
*/
func (service *Service) GetPublic(context context.Context, userID string) (*PublicProfile, error) {
	member, err := service.profileRepository.FindPublicByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("profile_service_get_public_failed: %w", err)
	}
	return member, nil
}
