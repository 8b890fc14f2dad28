package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adblockpro/backend/internal/models"
)

const userColumns = `uid, email, name, password_hash, avatar, role, plan, is_verified,
		verification_token, reset_password_token, reset_password_expire, last_login,
		ads_blocked, trackers_blocked, data_saved, time_saved,
		notifications, privacy, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var (
		avatar, verificationToken, resetToken sql.NullString
		resetExpire, lastLogin                sql.NullTime
		notifications, privacy                []byte
	)
	if err := row.Scan(&u.UID, &u.Email, &u.Name, &u.PasswordHash, &avatar, &u.Role, &u.Plan,
		&u.IsVerified, &verificationToken, &resetToken, &resetExpire, &lastLogin,
		&u.Stats.AdsBlocked, &u.Stats.TrackersBlocked, &u.Stats.DataSaved, &u.Stats.TimeSaved,
		&notifications, &privacy, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	if verificationToken.Valid {
		u.VerificationToken = &verificationToken.String
	}
	if resetToken.Valid {
		u.ResetPasswordToken = &resetToken.String
	}
	if resetExpire.Valid {
		u.ResetPasswordExpire = &resetExpire.Time
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	if err := json.Unmarshal(notifications, &u.Settings.Notifications); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(privacy, &u.Settings.Privacy); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser stores a new user and returns the generated uid.
// Returns ErrEmailTaken when the email (case-insensitive) already exists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"

	newID := uuid.New().String()
	query := `INSERT INTO users (uid, email, name, password_hash, role, plan, verification_token)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := s.DB.ExecContext(ctx, query,
		newID, user.Email, user.Name, user.PasswordHash, user.Role, user.Plan,
		user.VerificationToken); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUser returns a user by uid.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail returns a user matched case-insensitively by email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateLastLogin stamps the last successful login.
func (s *Storage) UpdateLastLogin(ctx context.Context, userUID string) error {
	const op = "storage.UpdateLastLogin"

	query := `UPDATE users SET last_login = now(), updated_at = now() WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetResetPasswordToken stores a reset token with its expiry.
func (s *Storage) SetResetPasswordToken(ctx context.Context, userUID, token string, expire time.Time) error {
	const op = "storage.SetResetPasswordToken"

	query := `UPDATE users
			  SET reset_password_token = $2, reset_password_expire = $3, updated_at = now()
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID, token, expire); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetPasswordByToken replaces the password hash of the user holding an
// unexpired reset token and clears the token fields. The token match and the
// update are one statement, so a token is usable exactly once.
func (s *Storage) ResetPasswordByToken(ctx context.Context, resetToken, passwordHash string) error {
	const op = "storage.ResetPasswordByToken"

	query := `UPDATE users
			  SET password_hash = $2, reset_password_token = NULL,
			      reset_password_expire = NULL, updated_at = now()
			  WHERE reset_password_token = $1 AND reset_password_expire > now()`
	result, err := s.DB.ExecContext(ctx, query, resetToken, passwordHash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrTokenNotFound)
	}
	return nil
}

// VerifyEmailByToken marks the account verified and consumes the token.
func (s *Storage) VerifyEmailByToken(ctx context.Context, verificationToken string) (*models.User, error) {
	const op = "storage.VerifyEmailByToken"

	query := `UPDATE users
			  SET is_verified = TRUE, verification_token = NULL, updated_at = now()
			  WHERE verification_token = $1
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, verificationToken))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateProfile updates the provided profile fields, keeping the rest.
func (s *Storage) UpdateProfile(ctx context.Context, userUID string, name, email, avatar *string) (*models.User, error) {
	const op = "storage.UpdateProfile"

	query := `UPDATE users
			  SET name = COALESCE($2, name),
			      email = COALESCE($3, email),
			      avatar = COALESCE($4, avatar),
			      updated_at = now()
			  WHERE uid = $1
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID, name, email, avatar))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// MergeSettings shallow-merges the provided JSON patches into the settings
// blocks. Pass nil to leave a block unchanged. The merge happens in a single
// statement, so concurrent patches of different fields both survive.
func (s *Storage) MergeSettings(ctx context.Context, userUID string, notifications, privacy []byte) (*models.Settings, error) {
	const op = "storage.MergeSettings"

	if notifications == nil {
		notifications = []byte(`{}`)
	}
	if privacy == nil {
		privacy = []byte(`{}`)
	}
	query := `UPDATE users
			  SET notifications = notifications || $2::jsonb,
			      privacy = privacy || $3::jsonb,
			      updated_at = now()
			  WHERE uid = $1
			  RETURNING notifications, privacy`
	var rawNotifications, rawPrivacy []byte
	err := s.DB.QueryRowContext(ctx, query, userUID, notifications, privacy).
		Scan(&rawNotifications, &rawPrivacy)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var settings models.Settings
	if err := json.Unmarshal(rawNotifications, &settings.Notifications); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(rawPrivacy, &settings.Privacy); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &settings, nil
}

// AddStats adds the reported deltas to the counters and overwrites the
// display strings when provided. Single statement, so concurrent reports
// from several browser instances all land.
func (s *Storage) AddStats(ctx context.Context, userUID string, adsBlocked, trackersBlocked int64, dataSaved, timeSaved *string) (*models.Stats, error) {
	const op = "storage.AddStats"

	query := `UPDATE users
			  SET ads_blocked = ads_blocked + $2,
			      trackers_blocked = trackers_blocked + $3,
			      data_saved = COALESCE($4, data_saved),
			      time_saved = COALESCE($5, time_saved),
			      updated_at = now()
			  WHERE uid = $1
			  RETURNING ads_blocked, trackers_blocked, data_saved, time_saved`
	var stats models.Stats
	err := s.DB.QueryRowContext(ctx, query, userUID, adsBlocked, trackersBlocked, dataSaved, timeSaved).
		Scan(&stats.AdsBlocked, &stats.TrackersBlocked, &stats.DataSaved, &stats.TimeSaved)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}

// UpdateUserPlan sets the plan field, driven by webhook events.
func (s *Storage) UpdateUserPlan(ctx context.Context, userUID, plan string) error {
	const op = "storage.UpdateUserPlan"

	query := `UPDATE users SET plan = $2, updated_at = now() WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID, plan); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteUser hard-deletes the account row. Subscriptions and invoices are
// kept for billing history.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) error {
	const op = "storage.DeleteUser"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// AdminUpdateUser overrides plan, role or the verified flag.
func (s *Storage) AdminUpdateUser(ctx context.Context, userUID string, plan, role *string, verified *bool) (*models.User, error) {
	const op = "storage.AdminUpdateUser"

	query := `UPDATE users
			  SET plan = COALESCE($2, plan),
			      role = COALESCE($3, role),
			      is_verified = COALESCE($4, is_verified),
			      updated_at = now()
			  WHERE uid = $1
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID, plan, role, verified))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers returns a page of users matching the filter and the total count.
// Search is a case-insensitive substring over name and email.
func (s *Storage) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error) {
	const op = "storage.ListUsers"

	var conditions []string
	var args []any
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", n, n))
	}
	if filter.Plan != "" {
		args = append(args, filter.Plan)
		conditions = append(conditions, fmt.Sprintf("plan = $%d", len(args)))
	}
	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		conditions = append(conditions, fmt.Sprintf("is_verified = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}
