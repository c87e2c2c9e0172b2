package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookshelf/internal/apperror"
	"bookshelf/internal/config"
	"bookshelf/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret-test-secret-test-secret!",
		TokenTTL:  7 * 24 * time.Hour,
	}
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

func TestSignup_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := NewAuthService(userRepo, mailer, testConfig())

	userRepo.On("FindByEmail", mock.Anything, "bob@x.com").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	userRepo.On("UpdateToken", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	user, token, err := svc.Signup(context.Background(), "Bob", "bob@x.com", "secret1")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Bob", user.Name)
	assert.Equal(t, "bob@x.com", user.Email)

	// Stored password must be a hash, never the plaintext.
	assert.NotEqual(t, "secret1", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))

	// The issued token is snapshotted on the user record.
	assert.NotNil(t, user.Token)
	assert.Equal(t, token, *user.Token)

	userRepo.AssertExpectations(t)
}

func TestSignup_EmailInUse(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockMailer), testConfig())

	userRepo.On("FindByEmail", mock.Anything, "bob@x.com").
		Return(&models.User{ID: "u1", Email: "bob@x.com"}, nil)

	_, _, err := svc.Signup(context.Background(), "Bob", "bob@x.com", "secret1")

	assert.ErrorIs(t, err, apperror.ErrConflict)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_TokenClaims(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockMailer), testConfig())

	userRepo.On("FindByEmail", mock.Anything, "bob@x.com").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	userRepo.On("UpdateToken", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	user, token, err := svc.Signup(context.Background(), "Bob", "bob@x.com", "secret1")
	assert.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "bob@x.com", claims.Email)
	assert.Contains(t, claims.Audience, TokenAudience)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockMailer), testConfig())

	stored := &models.User{ID: "u1", Name: "Bob", Email: "bob@x.com", Password: hashOf(t, "secret1")}
	userRepo.On("FindByEmail", mock.Anything, "bob@x.com").Return(stored, nil)

	user, token, err := svc.Login(context.Background(), "bob@x.com", "secret1")

	assert.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.NotEmpty(t, token)
	// Login does not rotate the persisted token field.
	userRepo.AssertNotCalled(t, "UpdateToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_UniformFailure(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockMailer), testConfig())

	stored := &models.User{ID: "u1", Email: "bob@x.com", Password: hashOf(t, "secret1")}
	userRepo.On("FindByEmail", mock.Anything, "bob@x.com").Return(stored, nil)
	userRepo.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, gorm.ErrRecordNotFound)

	_, _, wrongPassword := svc.Login(context.Background(), "bob@x.com", "wrong")
	_, _, unknownEmail := svc.Login(context.Background(), "nobody@x.com", "whatever")

	// Wrong password and unknown email must be indistinguishable.
	assert.ErrorIs(t, wrongPassword, apperror.ErrAuth)
	assert.ErrorIs(t, unknownEmail, apperror.ErrAuth)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestChangePassword_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockMailer), testConfig())

	stored := &models.User{ID: "u1", Email: "bob@x.com", Password: hashOf(t, "old-pass")}
	userRepo.On("FindByEmail", mock.Anything, "bob@x.com").Return(stored, nil)
	userRepo.On("UpdatePassword", mock.Anything, "u1", mock.AnythingOfType("string")).Return(nil)

	err := svc.ChangePassword(context.Background(), "bob@x.com", "old-pass", "new-pass")

	assert.NoError(t, err)
	userRepo.AssertCalled(t, "UpdatePassword", mock.Anything, "u1", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-pass")) == nil
	}))
}

func TestChangePassword_UserNotFound(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockMailer), testConfig())

	userRepo.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, gorm.ErrRecordNotFound)

	err := svc.ChangePassword(context.Background(), "nobody@x.com", "old", "new")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockMailer), testConfig())

	stored := &models.User{ID: "u1", Email: "bob@x.com", Password: hashOf(t, "old-pass")}
	userRepo.On("FindByEmail", mock.Anything, "bob@x.com").Return(stored, nil)

	err := svc.ChangePassword(context.Background(), "bob@x.com", "wrong", "new-pass")

	assert.ErrorIs(t, err, apperror.ErrAuth)
	userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_SamePasswordRejected(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockMailer), testConfig())

	stored := &models.User{ID: "u1", Email: "bob@x.com", Password: hashOf(t, "same-pass")}
	userRepo.On("FindByEmail", mock.Anything, "bob@x.com").Return(stored, nil)

	err := svc.ChangePassword(context.Background(), "bob@x.com", "same-pass", "same-pass")

	// Rejected without touching the stored hash.
	assert.ErrorIs(t, err, apperror.ErrConflict)
	userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_PersistsThenMails(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := NewAuthService(userRepo, mailer, testConfig())

	stored := &models.User{ID: "u1", Name: "Bob", Email: "bob@x.com", Password: hashOf(t, "forgotten")}
	userRepo.On("FindByEmail", mock.Anything, "bob@x.com").Return(stored, nil)
	userRepo.On("UpdatePassword", mock.Anything, "u1", mock.AnythingOfType("string")).Return(nil)
	mailer.On("SendPasswordReset", "bob@x.com", "Bob", "fresh-pass").Return(nil)

	err := svc.ResetPassword(context.Background(), "bob@x.com", "fresh-pass")

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestResetPassword_NoVerificationOfOldPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := NewAuthService(userRepo, mailer, testConfig())

	stored := &models.User{ID: "u1", Name: "Bob", Email: "bob@x.com", Password: hashOf(t, "unknown-to-caller")}
	userRepo.On("FindByEmail", mock.Anything, "bob@x.com").Return(stored, nil)
	userRepo.On("UpdatePassword", mock.Anything, "u1", mock.Anything).Return(nil)
	mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// The self-service flow accepts the new password with no possession proof.
	err := svc.ResetPassword(context.Background(), "bob@x.com", "attacker-chosen")
	assert.NoError(t, err)
}

func TestResetPassword_MailFailure(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := NewAuthService(userRepo, mailer, testConfig())

	stored := &models.User{ID: "u1", Name: "Bob", Email: "bob@x.com", Password: hashOf(t, "forgotten")}
	userRepo.On("FindByEmail", mock.Anything, "bob@x.com").Return(stored, nil)
	userRepo.On("UpdatePassword", mock.Anything, "u1", mock.Anything).Return(nil)
	mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	err := svc.ResetPassword(context.Background(), "bob@x.com", "fresh-pass")

	// The hash is persisted before delivery is attempted; the caller still
	// sees the failure.
	assert.ErrorIs(t, err, apperror.ErrStorage)
	userRepo.AssertCalled(t, "UpdatePassword", mock.Anything, "u1", mock.Anything)
}

func TestValidateToken_Invalid(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), new(MockMailer), testConfig())

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, apperror.ErrAuth)

	otherCfg := testConfig()
	otherCfg.JWTSecret = "another-secret-another-secret-another"
	otherSvc := NewAuthService(new(MockUserRepository), new(MockMailer), otherCfg)

	userRepo := new(MockUserRepository)
	userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(&models.User{
		ID: "u1", Email: "bob@x.com", Password: hashOf(t, "secret1"),
	}, nil)
	signer := NewAuthService(userRepo, new(MockMailer), testConfig())
	_, token, err := signer.Login(context.Background(), "bob@x.com", "secret1")
	assert.NoError(t, err)

	_, err = otherSvc.ValidateToken(token)
	assert.ErrorIs(t, err, apperror.ErrAuth)
}
