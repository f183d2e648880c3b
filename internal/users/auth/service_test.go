// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/internal/users/auth"
)

// # Test Doubles

type mockUserRepo struct {
	auth.UserRepository

	byPhone map[string]*auth.User
	touched bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byPhone: map[string]*auth.User{}}
}

func (m *mockUserRepo) FindByPhone(ctx context.Context, phone string) (*auth.User, error) {
	user, ok := m.byPhone[phone]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	return user, nil
}

func (m *mockUserRepo) TouchLastLogin(ctx context.Context, userID string) error {
	m.touched = true
	return nil
}

type mockSessionRepo struct {
	auth.SessionRepository

	created *auth.Session
}

func (m *mockSessionRepo) Create(ctx context.Context, session *auth.Session) error {
	m.created = session
	return nil
}

// mockOTPRepo keeps one code per phone with an attempt counter, mirroring
// the Redis layout.
type mockOTPRepo struct {
	codes    map[string]string
	attempts map[string]int
}

func newMockOTPRepo() *mockOTPRepo {
	return &mockOTPRepo{codes: map[string]string{}, attempts: map[string]int{}}
}

func (m *mockOTPRepo) Set(ctx context.Context, phone, code string, ttl time.Duration) error {
	m.codes[phone] = code
	m.attempts[phone] = 0
	return nil
}

func (m *mockOTPRepo) Get(ctx context.Context, phone string) (string, error) {
	code, ok := m.codes[phone]
	if !ok {
		return "", apperr.NotFound("SignInCode")
	}
	return code, nil
}

func (m *mockOTPRepo) Delete(ctx context.Context, phone string) error {
	delete(m.codes, phone)
	delete(m.attempts, phone)
	return nil
}

func (m *mockOTPRepo) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	m.attempts[phone]++
	return m.attempts[phone], nil
}

// stubCodeSender records the last delivery instead of sending SMS.
type stubCodeSender struct {
	phone string
	code  string
	err   error
}

func (s *stubCodeSender) SendSignInCode(ctx context.Context, phone, code string) error {
	s.phone = phone
	s.code = code
	return s.err
}

type stubChecker struct {
	premium bool
	err     error
}

func (s *stubChecker) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	return s.premium, s.err
}

type stubTokenProvider struct {
	premiumClaim bool
}

func (s *stubTokenProvider) GenerateAccessToken(userID, displayName string, premium bool, ttl time.Duration) (string, error) {
	s.premiumClaim = premium
	return "signed." + userID, nil
}

const testPhone = "+4915112345678"

func newAuthService(users *mockUserRepo, sessions *mockSessionRepo, otps *mockOTPRepo, checker *stubChecker, tokens *stubTokenProvider) *auth.Service {
	return auth.NewService(users, sessions, otps, &stubCodeSender{}, checker, tokens)
}

// # One-Time Code Sign-In

/*
TestRequestSignInCode_UnknownPhone verifies the enumeration guard: unknown
numbers succeed silently and store nothing.
*/
func TestRequestSignInCode_UnknownPhone(t *testing.T) {
	otps := newMockOTPRepo()
	service := newAuthService(newMockUserRepo(), &mockSessionRepo{}, otps, &stubChecker{}, &stubTokenProvider{})

	err := service.RequestSignInCode(context.Background(), testPhone)
	require.NoError(t, err)
	assert.Empty(t, otps.codes)
}

/*
TestRequestSignInCode_DeliversCode verifies the stored code is handed to the
delivery seam, and that a delivery failure surfaces instead of leaving the
member waiting for an SMS that never comes.
*/
func TestRequestSignInCode_DeliversCode(t *testing.T) {
	users := newMockUserRepo()
	users.byPhone[testPhone] = &auth.User{ID: "user-1", Phone: testPhone}

	otps := newMockOTPRepo()
	sender := &stubCodeSender{}
	service := auth.NewService(users, &mockSessionRepo{}, otps, sender, &stubChecker{}, &stubTokenProvider{})

	require.NoError(t, service.RequestSignInCode(context.Background(), testPhone))
	assert.Equal(t, testPhone, sender.phone)
	assert.Equal(t, otps.codes[testPhone], sender.code)

	failing := &stubCodeSender{err: assert.AnError}
	service = auth.NewService(users, &mockSessionRepo{}, otps, failing, &stubChecker{}, &stubTokenProvider{})
	require.Error(t, service.RequestSignInCode(context.Background(), testPhone))
}

/*
TestVerifySignInCode_Success verifies the full exchange: correct code issues
a session and burns the code.
*/
func TestVerifySignInCode_Success(t *testing.T) {
	users := newMockUserRepo()
	users.byPhone[testPhone] = &auth.User{ID: "user-1", Phone: testPhone, DisplayName: "Mika"}

	sessions := &mockSessionRepo{}
	otps := newMockOTPRepo()
	service := newAuthService(users, sessions, otps, &stubChecker{}, &stubTokenProvider{})

	require.NoError(t, service.RequestSignInCode(context.Background(), testPhone))
	code := otps.codes[testPhone]
	require.NotEmpty(t, code)

	session, err := service.VerifySignInCode(context.Background(), testPhone, code, "test-agent", "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, "signed.user-1", session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	require.NotNil(t, sessions.created)
	assert.Equal(t, "user-1", sessions.created.UserID)
	assert.True(t, users.touched)

	// Single-use: the code is gone after a successful exchange.
	_, err = service.VerifySignInCode(context.Background(), testPhone, code, "test-agent", "127.0.0.1")
	require.Error(t, err)
}

/*
TestVerifySignInCode_WrongCode verifies the attempt budget: repeated wrong
guesses burn the code entirely.
*/
func TestVerifySignInCode_WrongCode(t *testing.T) {
	users := newMockUserRepo()
	users.byPhone[testPhone] = &auth.User{ID: "user-1", Phone: testPhone}

	otps := newMockOTPRepo()
	service := newAuthService(users, &mockSessionRepo{}, otps, &stubChecker{}, &stubTokenProvider{})

	require.NoError(t, service.RequestSignInCode(context.Background(), testPhone))
	correct := otps.codes[testPhone]

	for attempt := 0; attempt < auth.OTPMaxAttempts; attempt++ {
		_, err := service.VerifySignInCode(context.Background(), testPhone, "000000", "", "")
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	}

	// The budget is spent; even the correct code is refused now.
	_, err := service.VerifySignInCode(context.Background(), testPhone, correct, "", "")
	require.Error(t, err)
}

/*
TestIssueSession_PremiumClaim verifies the premium claim reflects the live
entitlement check, and that billing outages degrade the claim to free.
*/
func TestIssueSession_PremiumClaim(t *testing.T) {
	tests := []struct {
		name        string
		checker     *stubChecker
		wantPremium bool
	}{
		{"premium_member", &stubChecker{premium: true}, true},
		{"free_member", &stubChecker{premium: false}, false},
		{"billing_outage", &stubChecker{premium: true, err: assert.AnError}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newMockUserRepo()
			users.byPhone[testPhone] = &auth.User{ID: "user-1", Phone: testPhone}

			otps := newMockOTPRepo()
			tokens := &stubTokenProvider{}
			service := newAuthService(users, &mockSessionRepo{}, otps, tt.checker, tokens)

			require.NoError(t, service.RequestSignInCode(context.Background(), testPhone))

			_, err := service.VerifySignInCode(context.Background(), testPhone, otps.codes[testPhone], "", "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPremium, tokens.premiumClaim)
		})
	}
}

/*
TestVerifySignInCode_WrongCodeOnce verifies a single typo does not burn a
code that still has budget left.
*/
func TestVerifySignInCode_WrongCodeOnce(t *testing.T) {
	users := newMockUserRepo()
	users.byPhone[testPhone] = &auth.User{ID: "user-1", Phone: testPhone}

	otps := newMockOTPRepo()
	service := newAuthService(users, &mockSessionRepo{}, otps, &stubChecker{}, &stubTokenProvider{})

	require.NoError(t, service.RequestSignInCode(context.Background(), testPhone))
	correct := otps.codes[testPhone]

	_, err := service.VerifySignInCode(context.Background(), testPhone, "000000", "", "")
	require.Error(t, err)

	_, err = service.VerifySignInCode(context.Background(), testPhone, correct, "", "")
	require.NoError(t, err)
}
