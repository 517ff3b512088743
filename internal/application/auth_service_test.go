package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jolivares/cuaderno/pkg/tokens"
)

const (
	testEmail    = "ana@example.com"
	testPassword = "shhh-secret-123"
)

func newAuthService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeSessions) {
	t.Helper()
	users := newFakeUserRepo()
	sessions := newFakeSessions()
	svc := NewAuthService(
		users,
		&fakeCreds{},
		sessions,
		tokens.NewVerifyManager("test-secret", time.Hour),
		nil, // audit recorder is optional and nil-safe
		testLogger(),
		LockoutPolicy{Threshold: 5, Duration: 30 * time.Minute},
	)
	return svc, users, sessions
}

func registerTestUser(t *testing.T, svc *AuthService) string {
	t.Helper()
	u, err := svc.Register(context.Background(), "Ana", testEmail, testPassword, AuthMeta{})
	require.NoError(t, err)
	return u.ID
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, users, _ := newAuthService(t)
	uid := registerTestUser(t, svc)

	stored, err := users.GetByID(context.Background(), uid)
	require.NoError(t, err)
	assert.NotEqual(t, testPassword, stored.PasswordHash)
	assert.True(t, svc.Creds.Verify(testPassword, stored.PasswordHash))
	assert.True(t, stored.IsActive)
	assert.False(t, stored.EmailVerified)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)
	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), "Otra Ana", "Ana@Example.com", "otra-clave-larga", AuthMeta{})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name     string
		inName   string
		email    string
		password string
		badField string
	}{
		{"all valid", "Ana", "a@b.com", "12345678", ""},
		{"short password", "Ana", "a@b.com", "abc", "password"},
		{"missing name", "  ", "a@b.com", "12345678", "nombre"},
		{"missing email", "Ana", "", "12345678", "email"},
		{"malformed email", "Ana", "not-an-email", "12345678", "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateSignup(tt.inName, tt.email, tt.password)
			if tt.badField == "" {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Contains(t, verr.Details(), tt.badField)
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, users, sessions := newAuthService(t)
	uid := registerTestUser(t, svc)

	u, sid, err := svc.Login(context.Background(), testEmail, testPassword, AuthMeta{IP: "10.0.0.9"})
	require.NoError(t, err)
	assert.Equal(t, uid, u.ID)
	assert.Equal(t, uid, sessions.sessions[sid])

	stored, _ := users.GetByID(context.Background(), uid)
	require.NotNil(t, stored.LastLogin)
	assert.Equal(t, 0, stored.LoginAttempts)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, _, err := svc.Login(context.Background(), "nadie@example.com", "whatever-pass", AuthMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// An unknown account still pays a verification against the dummy digest,
	// so the response time does not reveal whether the email exists.
	creds := svc.Creds.(*fakeCreds)
	require.Len(t, creds.verified, 1)
	assert.Equal(t, creds.DummyDigest(), creds.verified[0])
	assert.NotEmpty(t, creds.verified[0])
}

func TestLoginInactiveAccountLooksUnknown(t *testing.T) {
	svc, users, _ := newAuthService(t)
	uid := registerTestUser(t, svc)
	require.NoError(t, users.Deactivate(context.Background(), uid))

	_, _, err := svc.Login(context.Background(), testEmail, testPassword, AuthMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newAuthService(t)
	registerTestUser(t, svc)

	_, _, err := svc.Login(context.Background(), "ANA@EXAMPLE.COM", testPassword, AuthMeta{})
	assert.NoError(t, err)
}

func TestLockoutAfterThresholdFailures(t *testing.T) {
	svc, users, _ := newAuthService(t)
	uid := registerTestUser(t, svc)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, err := svc.Login(ctx, testEmail, "wrong-password", AuthMeta{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Equal(t, 5, users.attempts(uid))

	// The 6th attempt with the CORRECT password is still rejected as locked,
	// and does not consume another failed-attempt increment.
	_, _, err := svc.Login(ctx, testEmail, testPassword, AuthMeta{})
	assert.ErrorIs(t, err, ErrAccountLocked)
	assert.Equal(t, 5, users.attempts(uid))

	// Nor does a wrong password while locked.
	_, _, err = svc.Login(ctx, testEmail, "wrong-password", AuthMeta{})
	assert.ErrorIs(t, err, ErrAccountLocked)
	assert.Equal(t, 5, users.attempts(uid))
}

func TestLockExpiryResetsOnSuccess(t *testing.T) {
	svc, users, _ := newAuthService(t)
	uid := registerTestUser(t, svc)

	users.lockUser(uid, time.Now().Add(-time.Minute), 5)

	_, _, err := svc.Login(context.Background(), testEmail, testPassword, AuthMeta{})
	require.NoError(t, err)

	stored, _ := users.GetByID(context.Background(), uid)
	assert.Equal(t, 0, stored.LoginAttempts)
	assert.Nil(t, stored.LockUntil)
}

func TestLogoutSwallowsDestroyFailure(t *testing.T) {
	svc, _, sessions := newAuthService(t)
	uid := registerTestUser(t, svc)

	_, sid, err := svc.Login(context.Background(), testEmail, testPassword, AuthMeta{})
	require.NoError(t, err)

	sessions.destroyErr = errRedisDown
	// Logout has no error to return: invalidation failures are logged only.
	svc.Logout(context.Background(), sid, uid, AuthMeta{})
	assert.Contains(t, sessions.destroyedOf, sid)
}

func TestConfirmEmail(t *testing.T) {
	svc, users, _ := newAuthService(t)
	uid := registerTestUser(t, svc)

	tok, err := svc.Verify.Generate(uid)
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmEmail(context.Background(), tok))
	stored, _ := users.GetByID(context.Background(), uid)
	assert.True(t, stored.EmailVerified)
}

func TestConfirmEmailBadToken(t *testing.T) {
	svc, _, _ := newAuthService(t)
	err := svc.ConfirmEmail(context.Background(), "garbage-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserSkipsDeactivated(t *testing.T) {
	svc, users, _ := newAuthService(t)
	uid := registerTestUser(t, svc)

	_, err := svc.GetUser(context.Background(), uid)
	require.NoError(t, err)

	require.NoError(t, users.Deactivate(context.Background(), uid))
	_, err = svc.GetUser(context.Background(), uid)
	assert.ErrorIs(t, err, ErrNotFound)
}
