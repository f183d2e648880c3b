// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package auth implements the core identity and access management (IAM) system.

It handles everything from user registration and secure password hashing to session
lifecycle management via JWT and Refresh tokens, plus phone-based one-time codes.

Architecture:

  - Service: Orchestrates business logic (Register, Login, OTP sign-in).
  - Repository: Abstracted interfaces for Postgres (Users, Sessions) and Redis (Codes).
  - Security: Leverages Bcrypt and RSA-signed JWTs.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/internal/platform/ctxutil"
	"github.com/bookshelfie/shelfie/internal/platform/sec"
	"github.com/bookshelfie/shelfie/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - displayName: The display name embedded in the token.
	//   - premium: Whether the account has an active subscription.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, displayName string, premium bool, timeToLive time.Duration) (string, error)
}

// SubscriptionChecker reports whether a user currently has a paid plan.
//
// # Why an interface?
//
// The billing package owns subscription state. Auth only needs a yes/no answer
// at token-issuance time, so this narrow contract keeps the packages decoupled.
type SubscriptionChecker interface {
	HasActiveSubscription(context context.Context, userID string) (bool, error)
}

// CodeSender delivers a sign-in code to a member's phone.
type CodeSender interface {
	SendSignInCode(context context.Context, phone, code string) error
}

// LogCodeSender writes sign-in codes to the debug log instead of a real
// SMS gateway.
//
// TODO: Replace with a Twilio-backed sender once the account is provisioned.
// Until then operators read codes from the debug log.
type LogCodeSender struct{}

// SendSignInCode implements [CodeSender].
func (LogCodeSender) SendSignInCode(context context.Context, phone, code string) error {
	ctxutil.GetLogger(context).Debug("otp_code_issued",
		slog.String("phone", phone),
		slog.String("code", code),
	)
	return nil
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed carefully.
type Service struct {
	userRepository      UserRepository
	sessionRepository   SessionRepository
	otpCodeRepository   OTPCodeRepository
	codeSender          CodeSender
	subscriptionChecker SubscriptionChecker
	tokenProvider       TokenProvider
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	otpRepo OTPCodeRepository,
	codeSender CodeSender,
	subChecker SubscriptionChecker,
	tokenProv TokenProvider,
) *Service {
	return &Service{
		userRepository:      userRepo,
		sessionRepository:   sessionRepo,
		otpCodeRepository:   otpRepo,
		codeSender:          codeSender,
		subscriptionChecker: subChecker,
		tokenProvider:       tokenProv,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Phone       string
	Email       string
	Password    string
	DisplayName string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member keyed by phone number, handling
password hashing and the initial empty-shelf profile state.

Parameters:
  - context: context.Context
  - input: RegisterInput (Phone must already be normalized)

Returns:
  - *User: Created entity
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify phone uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByPhone(context, input.Phone)
	if err == nil {
		return nil, apperr.Conflict("Phone number is already registered")
	}

	// Verify email uniqueness when one is provided.
	if input.Email != "" {
		_, err = service.userRepository.FindByEmail(context, input.Email)
		if err == nil {
			return nil, apperr.Conflict("Email is already registered")
		}
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Phone:        input.Phone,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  input.DisplayName,
		IsActive:     true,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login     string // Can be Phone or Email
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity, performs constant-time password comparison,
and initializes a new session with rotated security tokens.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	var user *User
	var err error
	// Flexible login: look up by Phone or Email
	user, err = service.userRepository.FindByPhone(context, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByEmail(context, input.Login)
	}

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.issueSession(context, user, input.UserAgent, input.IPAddress)
}

// # One-Time Code Sign-In

/*
RequestSignInCode generates and stores a short-lived SMS sign-in code.

Description: Looks up the account by phone, generates a numeric code, and
stores it in Redis keyed by the phone number. A new request overwrites any
previous code.

Parameters:
  - context: context.Context
  - phone: string (Normalized E.164)

Returns:
  - err: Generation or storage failures

NOTE: Returns nil even when no account matches the phone number, to prevent
account enumeration via the sign-in form.
*/
func (service *Service) RequestSignInCode(context context.Context, phone string) error {

	// Silently succeed for unknown numbers.
	if _, err := service.userRepository.FindByPhone(context, phone); err != nil {
		return nil
	}

	code, err := sec.GenerateOTPCode(OTPCodeDigits)
	if err != nil {
		return fmt.Errorf("auth_service_generate_otp_failed: %w", err)
	}

	if err := service.otpCodeRepository.Set(context, phone, code, OTPCodeTTL); err != nil {
		return fmt.Errorf("auth_service_save_otp_failed: %w", err)
	}

	if err := service.codeSender.SendSignInCode(context, phone, code); err != nil {
		return fmt.Errorf("auth_service_send_otp_failed: %w", err)
	}

	return nil
}

/*
VerifySignInCode exchanges a valid SMS code for a full session.

Description: Compares the submitted code against the stored one, enforces the
attempt budget, and issues rotated tokens on success. The code is single-use.

Parameters:
  - context: context.Context
  - phone: string (Normalized E.164)
  - code: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: Unauthorized or storage failures
*/
func (service *Service) VerifySignInCode(context context.Context, phone, code, userAgent, ipAddress string) (*LoginSession, error) {

	storedCode, err := service.otpCodeRepository.Get(context, phone)
	if err != nil {
		return nil, apperr.Unauthorized("Sign-in code is invalid or expired")
	}

	if storedCode != code {
		// Burn the code after too many wrong guesses.
		attempts, _ := service.otpCodeRepository.IncrementAttempts(context, phone)
		if attempts >= OTPMaxAttempts {
			_ = service.otpCodeRepository.Delete(context, phone)
		}
		return nil, apperr.Unauthorized("Sign-in code is invalid or expired")
	}

	// Single-use: delete before issuing tokens.
	_ = service.otpCodeRepository.Delete(context, phone)

	user, err := service.userRepository.FindByPhone(context, phone)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.issueSession(context, user, userAgent, ipAddress)
}

/*
Logout permanently revokes the user's active session.

Description: Ensures that a tracked refresh token can never be used again.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	// Hash the refresh token
	tokenHash := sec.HashToken(refreshToken)

	// Find the session by token hash
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) session is already gone or invalid, we consider logout successful (idempotent operation).
	if err != nil {
		return nil
	}

	// If (err == nil) Revoke the session
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Verifies the existing refresh token, revokes it to prevent reuse
(replay attack mitigation), and issues a fresh pair of rotated tokens.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - err: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {

	// Hash the incoming refresh token to look it up
	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) the token is either expired, already revoked, or completely invalid.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: Revoke the old session to prevent replay attacks
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// Fetch the user associated with this session
	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	return service.issueSession(context, user, userAgent, ipAddress)
}

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password and then rotates all OTHER refresh sessions
to ensure high security across devices.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string
  - currentRefreshToken: string

Returns:
  - err: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword, currentRefreshToken string) error {

	// Fetch user by ID
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	// Security Side Effect: Revoke all other sessions to force re-login on other devices
	tokenHash := sec.HashToken(currentRefreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)
	if err == nil {
		_ = service.sessionRepository.RevokeOthers(context, userID, session.ID)
	}

	return nil
}

// # Internals

/*
issueSession creates the access/refresh token pair shared by every sign-in path.

Description: Resolves the premium flag, signs a fresh access token, and
persists a tracked refresh session.

Parameters:
  - context: context.Context
  - user: *User
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - err: Token or storage failures
*/
func (service *Service) issueSession(context context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {

	// Resolve the subscription state for the JWT premium claim.
	// A billing outage must not block sign-in, so failures degrade to free-tier.
	premium, err := service.subscriptionChecker.HasActiveSubscription(context, user.ID)
	if err != nil {
		premium = false
	}

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.DisplayName, premium, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived Refresh Token
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Create and persist the tracking session
	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	_ = service.userRepository.TouchLastLogin(context, user.ID)

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}
