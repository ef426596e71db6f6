package auth

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/favorite-movies-api/internal/logging"
	"github.com/redmonkez12/favorite-movies-api/internal/user"
	"github.com/redmonkez12/favorite-movies-api/internal/validation"
)

type serviceFixture struct {
	svc    *Service
	users  *user.MemoryRepository
	mailer *recordingMailer
	tokens TokenService
}

func newServiceFixture(t *testing.T, google IDTokenVerifier) *serviceFixture {
	t.Helper()
	tokens, err := NewPasetoService(testPasetoKey)
	require.NoError(t, err)

	users := user.NewMemoryRepository()
	mailer := newRecordingMailer()
	svc := NewService(users, tokens, mailer, google, logging.Discard(), Config{
		ResetURL: func(token string) string {
			return "http://localhost:5173/reset-password?token=" + token
		},
	})
	return &serviceFixture{svc: svc, users: users, mailer: mailer, tokens: tokens}
}

func TestService_RegisterAndLogin(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "secret1", Name: " Alice "})
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.User.Name)

	claims, err := f.tokens.VerifyToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt, 5*time.Second)

	stored, err := f.users.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", *stored.PasswordHash)

	login, err := f.svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestService_RegisterValidation(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.svc.Register(context.Background(), RegisterRequest{Email: "not-an-email", Password: "123", Name: ""})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "email")
	assert.Contains(t, verrs, "password")
	assert.Contains(t, verrs, "name")
}

func TestService_DuplicateEmailAndUniformLoginErrors(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "secret2", Name: "B"})
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)

	_, wrongPassword := f.svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "nope123"})
	_, unknownEmail := f.svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "nope123"})
	require.Error(t, wrongPassword)
	assert.Equal(t, wrongPassword, unknownEmail)
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
}

func TestService_LoginGoogleOnlyAccount(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	_, err := f.users.CreateWithGoogle(ctx, "g@example.com", "sub-1", "G")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "g@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_GoogleLoginUpsert(t *testing.T) {
	verifier := new(mockVerifier)
	f := newServiceFixture(t, verifier)
	ctx := context.Background()

	existing, err := f.svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)

	verifier.On("Verify", mock.Anything, "link-cred").
		Return(&GoogleIdentity{Subject: "sub-a", Email: "a@example.com", Name: "Alice G"}, nil)
	verifier.On("Verify", mock.Anything, "new-cred").
		Return(&GoogleIdentity{Subject: "sub-b", Email: "bob@example.com"}, nil)
	verifier.On("Verify", mock.Anything, "bad-cred").
		Return(nil, ErrInvalidGoogleToken)

	// links by email
	linked, err := f.svc.GoogleLogin(ctx, "link-cred")
	require.NoError(t, err)
	assert.Equal(t, existing.User.ID, linked.User.ID)

	// then resolves by google id
	again, err := f.svc.GoogleLogin(ctx, "link-cred")
	require.NoError(t, err)
	assert.Equal(t, existing.User.ID, again.User.ID)

	// creates with a name derived from the email
	created, err := f.svc.GoogleLogin(ctx, "new-cred")
	require.NoError(t, err)
	assert.Equal(t, "bob", created.User.Name)

	_, err = f.svc.GoogleLogin(ctx, "bad-cred")
	assert.ErrorIs(t, err, ErrInvalidGoogleToken)

	verifier.AssertExpectations(t)
}

func TestService_GoogleDisabled(t *testing.T) {
	f := newServiceFixture(t, nil)
	_, err := f.svc.GoogleLogin(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrGoogleDisabled)
}

func TestService_PasswordResetFlow(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, ForgotPasswordRequest{Email: "a@example.com"}))
	require.NoError(t, f.svc.RequestPasswordReset(ctx, ForgotPasswordRequest{Email: "ghost@example.com"}))
	f.svc.WaitForMail()

	_, sentToGhost := f.mailer.link("ghost@example.com")
	assert.False(t, sentToGhost)

	link, ok := f.mailer.link("a@example.com")
	require.True(t, ok)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", u.Path)
	token := u.Query().Get("token")
	require.Len(t, token, 64)

	stored, err := f.users.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.ResetTokenHash)
	assert.NotEqual(t, token, *stored.ResetTokenHash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *stored.ResetTokenExpiry, 5*time.Second)

	require.NoError(t, f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "brandnew"}))
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "another1"}), ErrInvalidResetToken)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "brandnew"})
	assert.NoError(t, err)
	_, err = f.svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_ResetPasswordMissingToken(t *testing.T) {
	f := newServiceFixture(t, nil)
	err := f.svc.ResetPassword(context.Background(), ResetPasswordRequest{Password: "brandnew"})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestService_MailFailureKeepsToken(t *testing.T) {
	tokens, err := NewPasetoService(testPasetoKey)
	require.NoError(t, err)
	users := user.NewMemoryRepository()
	mailer := new(mockMailer)
	mailer.On("SendPasswordReset", mock.Anything, "a@example.com", mock.Anything).
		Return(errors.New("smtp down"))

	svc := NewService(users, tokens, mailer, nil, logging.Discard(), Config{})
	ctx := context.Background()

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, ForgotPasswordRequest{Email: "a@example.com"}))
	svc.WaitForMail()

	stored, err := users.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.NotNil(t, stored.ResetTokenHash)
	mailer.AssertExpectations(t)
}

func TestService_Profile(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	p, err := f.svc.Profile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", p.Email)
}
