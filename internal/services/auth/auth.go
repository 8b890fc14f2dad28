// Package auth contains the business logic for registration, login and the
// token, verification and password-reset flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adblockpro/backend/internal/lib/jwt"
	"github.com/adblockpro/backend/internal/lib/password"
	"github.com/adblockpro/backend/internal/lib/token"
	"github.com/adblockpro/backend/internal/models"
)

// Reset tokens are valid for 30 minutes from issue.
const resetTokenTTL = 30 * time.Minute

var (
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password, so responses do not reveal whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken covers bad signature, expiry and deleted users.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// UserRepository is the persistence contract the auth flows need.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userUID string) error
	SetResetPasswordToken(ctx context.Context, userUID, token string, expire time.Time) error
	ResetPasswordByToken(ctx context.Context, resetToken, passwordHash string) error
	VerifyEmailByToken(ctx context.Context, verificationToken string) (*models.User, error)
}

// Mailer sends account emails. Delivery is fire-and-forget: implementations
// must not fail the calling flow.
type Mailer interface {
	SendVerificationEmail(to, name, verificationToken string)
	SendPasswordResetEmail(to, name, resetToken string)
	SendWelcomeEmail(to, name string)
}

// TokenPair is an access/refresh token pair issued together.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Service implements the auth flows over the repository.
type Service struct {
	users      UserRepository
	jwtMaker   jwt.Maker
	mailer     Mailer
	bcryptCost int
}

// New creates an auth Service.
func New(users UserRepository, jwtMaker jwt.Maker, mailer Mailer, bcryptCost int) *Service {
	return &Service{
		users:      users,
		jwtMaker:   jwtMaker,
		mailer:     mailer,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) issuePair(userUID, role string) (*TokenPair, error) {
	accessToken, err := s.jwtMaker.GenerateAccessToken(userUID, role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtMaker.GenerateRefreshToken(userUID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Token: accessToken, RefreshToken: refreshToken}, nil
}

// Register creates a new account with role "user" and plan "free", mails a
// verification link and issues a token pair immediately. The account is
// usable before verification completes.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string) (*models.User, *TokenPair, error) {
	const op = "auth.Register"

	hash, err := password.GetHash(rawPassword, s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	verificationToken, err := token.New()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:             email,
		Name:              name,
		PasswordHash:      hash,
		Role:              models.RoleUser,
		Plan:              models.PlanFree,
		VerificationToken: &verificationToken,
		Stats:             models.DefaultStats(),
		Settings:          models.DefaultSettings(),
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	user.UID = uid
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	s.mailer.SendVerificationEmail(email, name, verificationToken)

	pair, err := s.issuePair(uid, user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, pair, nil
}

// Login verifies the credentials and issues a fresh token pair. Unknown
// email and wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.User, *TokenPair, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := s.users.UpdateLastLogin(ctx, user.UID); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	now := time.Now().UTC()
	user.LastLogin = &now

	pair, err := s.issuePair(user.UID, user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, pair, nil
}

// Refresh rotates a valid refresh token into a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	const op = "auth.Refresh"

	userUID, err := s.jwtMaker.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}
	pair, err := s.issuePair(user.UID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// ForgotPassword stores a reset token with a 30-minute expiry and mails the
// reset link. Propagates the not-found error from the repository.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	resetToken, err := token.New()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	expire := time.Now().UTC().Add(resetTokenTTL)
	if err := s.users.SetResetPasswordToken(ctx, user.UID, resetToken, expire); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mailer.SendPasswordResetEmail(user.Email, user.Name, resetToken)
	return nil
}

// ResetPassword consumes an unexpired reset token and replaces the password.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	const op = "auth.ResetPassword"

	hash, err := password.GetHash(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.ResetPasswordByToken(ctx, resetToken, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// VerifyEmail consumes a verification token and welcomes the user.
func (s *Service) VerifyEmail(ctx context.Context, verificationToken string) error {
	const op = "auth.VerifyEmail"

	user, err := s.users.VerifyEmailByToken(ctx, verificationToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.mailer.SendWelcomeEmail(user.Email, user.Name)
	return nil
}

// Me returns the current user by uid.
func (s *Service) Me(ctx context.Context, userUID string) (*models.User, error) {
	const op = "auth.Me"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
