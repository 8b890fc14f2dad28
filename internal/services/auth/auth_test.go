package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adblockpro/backend/internal/lib/jwt"
	"github.com/adblockpro/backend/internal/lib/password"
	"github.com/adblockpro/backend/internal/models"
	"github.com/adblockpro/backend/internal/storage/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func (m *MockUserRepository) SetResetPasswordToken(ctx context.Context, userUID, token string, expire time.Time) error {
	args := m.Called(ctx, userUID, token, expire)
	return args.Error(0)
}

func (m *MockUserRepository) ResetPasswordByToken(ctx context.Context, resetToken, passwordHash string) error {
	args := m.Called(ctx, resetToken, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) VerifyEmailByToken(ctx context.Context, verificationToken string) (*models.User, error) {
	args := m.Called(ctx, verificationToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationEmail(to, name, verificationToken string) {
	m.Called(to, name, verificationToken)
}

func (m *MockMailer) SendPasswordResetEmail(to, name, resetToken string) {
	m.Called(to, name, resetToken)
}

func (m *MockMailer) SendWelcomeEmail(to, name string) {
	m.Called(to, name)
}

func newTestService(repo *MockUserRepository, mailer *MockMailer) *Service {
	maker := jwt.NewMaker("access-secret", 15*time.Minute, "refresh-secret", 7*24*time.Hour)
	return New(repo, maker, mailer, bcrypt.MinCost)
}

func TestService_Register(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestService(repo, mailer)

	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "alice@example.com" &&
			u.Role == models.RoleUser &&
			u.Plan == models.PlanFree &&
			u.VerificationToken != nil &&
			u.PasswordHash != "password123"
	})).Return("uid-1", nil).Once()
	mailer.On("SendVerificationEmail", "alice@example.com", "Alice", mock.Anything).Once()

	user, pair, err := svc.Register(context.Background(), "Alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.UID)
	assert.NotEmpty(t, pair.Token)
	assert.NotEmpty(t, pair.RefreshToken)

	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestService(repo, mailer)

	repo.On("CreateUser", mock.Anything, mock.Anything).
		Return("", repository.ErrEmailTaken).Once()

	_, _, err := svc.Register(context.Background(), "Alice", "alice@example.com", "password123")
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
	mailer.AssertNotCalled(t, "SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Login_EnumerationResistance(t *testing.T) {
	hash, err := password.GetHash("right-password", bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name       string
		email      string
		pass       string
		setupMocks func(*MockUserRepository)
	}{
		{
			name:  "unknown email",
			email: "nobody@example.com",
			pass:  "whatever",
			setupMocks: func(r *MockUserRepository) {
				r.On("GetUserByEmail", mock.Anything, "nobody@example.com").
					Return(nil, repository.ErrUserNotFound).Once()
			},
		},
		{
			name:  "wrong password",
			email: "alice@example.com",
			pass:  "wrong-password",
			setupMocks: func(r *MockUserRepository) {
				r.On("GetUserByEmail", mock.Anything, "alice@example.com").
					Return(&models.User{UID: "uid-1", Email: "alice@example.com", PasswordHash: hash}, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMocks(repo)
			svc := newTestService(repo, new(MockMailer))

			_, _, err := svc.Login(context.Background(), tt.email, tt.pass)
			// both failure modes collapse to the same error
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login_Success(t *testing.T) {
	hash, err := password.GetHash("right-password", bcrypt.MinCost)
	require.NoError(t, err)

	repo := new(MockUserRepository)
	repo.On("GetUserByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{UID: "uid-1", Email: "alice@example.com", PasswordHash: hash, Role: models.RoleUser}, nil).Once()
	repo.On("UpdateLastLogin", mock.Anything, "uid-1").Return(nil).Once()
	svc := newTestService(repo, new(MockMailer))

	user, pair, err := svc.Login(context.Background(), "alice@example.com", "right-password")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.UID)
	assert.NotNil(t, user.LastLogin)
	assert.NotEmpty(t, pair.Token)
	repo.AssertExpectations(t)
}

func TestService_Refresh(t *testing.T) {
	maker := jwt.NewMaker("access-secret", 15*time.Minute, "refresh-secret", 7*24*time.Hour)

	repo := new(MockUserRepository)
	repo.On("GetUser", mock.Anything, "uid-1").
		Return(&models.User{UID: "uid-1", Role: models.RoleUser}, nil).Once()
	svc := New(repo, maker, new(MockMailer), bcrypt.MinCost)

	refreshToken, err := maker.GenerateRefreshToken("uid-1")
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), refreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Token)

	// the new access token carries the identity
	claims, err := maker.ParseAccessToken(pair.Token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserUID)
}

func TestService_Refresh_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		token      func(maker jwt.Maker) string
		setupMocks func(*MockUserRepository)
	}{
		{
			name:       "garbage token",
			token:      func(jwt.Maker) string { return "not-a-token" },
			setupMocks: func(*MockUserRepository) {},
		},
		{
			name: "deleted user",
			token: func(maker jwt.Maker) string {
				tok, _ := maker.GenerateRefreshToken("uid-gone")
				return tok
			},
			setupMocks: func(r *MockUserRepository) {
				r.On("GetUser", mock.Anything, "uid-gone").
					Return(nil, repository.ErrUserNotFound).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maker := jwt.NewMaker("access-secret", 15*time.Minute, "refresh-secret", 7*24*time.Hour)
			repo := new(MockUserRepository)
			tt.setupMocks(repo)
			svc := New(repo, maker, new(MockMailer), bcrypt.MinCost)

			_, err := svc.Refresh(context.Background(), tt.token(maker))
			assert.ErrorIs(t, err, ErrInvalidRefreshToken)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_ForgotPassword(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)

	repo.On("GetUserByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{UID: "uid-1", Email: "alice@example.com", Name: "Alice"}, nil).Once()
	repo.On("SetResetPasswordToken", mock.Anything, "uid-1", mock.Anything, mock.MatchedBy(func(expire time.Time) bool {
		remaining := time.Until(expire)
		return remaining > 29*time.Minute && remaining <= 30*time.Minute
	})).Return(nil).Once()
	mailer.On("SendPasswordResetEmail", "alice@example.com", "Alice", mock.Anything).Once()

	svc := newTestService(repo, mailer)
	err := svc.ForgotPassword(context.Background(), "alice@example.com")
	require.NoError(t, err)

	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestService_ForgotPassword_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetUserByEmail", mock.Anything, "nobody@example.com").
		Return(nil, repository.ErrUserNotFound).Once()
	svc := newTestService(repo, new(MockMailer))

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestService_ResetPassword(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ResetPasswordByToken", mock.Anything, "reset-token", mock.MatchedBy(func(hash string) bool {
		return password.CompareHash(hash, "new-password") == nil
	})).Return(nil).Once()
	svc := newTestService(repo, new(MockMailer))

	err := svc.ResetPassword(context.Background(), "reset-token", "new-password")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_ResetPassword_ExpiredToken(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ResetPasswordByToken", mock.Anything, "stale-token", mock.Anything).
		Return(repository.ErrTokenNotFound).Once()
	svc := newTestService(repo, new(MockMailer))

	err := svc.ResetPassword(context.Background(), "stale-token", "new-password")
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
}

func TestService_VerifyEmail(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	repo.On("VerifyEmailByToken", mock.Anything, "verify-token").
		Return(&models.User{UID: "uid-1", Email: "alice@example.com", Name: "Alice", IsVerified: true}, nil).Once()
	mailer.On("SendWelcomeEmail", "alice@example.com", "Alice").Once()

	svc := newTestService(repo, mailer)
	err := svc.VerifyEmail(context.Background(), "verify-token")
	require.NoError(t, err)

	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestService_VerifyEmail_BadToken(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	repo.On("VerifyEmailByToken", mock.Anything, "bad-token").
		Return(nil, repository.ErrTokenNotFound).Once()

	svc := newTestService(repo, mailer)
	err := svc.VerifyEmail(context.Background(), "bad-token")
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
	mailer.AssertNotCalled(t, "SendWelcomeEmail", mock.Anything, mock.Anything)
}
