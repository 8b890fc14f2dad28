// Package user contains the self-service profile, settings and usage-stats
// logic.
package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adblockpro/backend/internal/models"
)

// Repository is the persistence contract for the self-service surface.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userUID string, name, email, avatar *string) (*models.User, error)
	MergeSettings(ctx context.Context, userUID string, notifications, privacy []byte) (*models.Settings, error)
	AddStats(ctx context.Context, userUID string, adsBlocked, trackersBlocked int64, dataSaved, timeSaved *string) (*models.Stats, error)
	DeleteUser(ctx context.Context, userUID string) error
}

// ProfileUpdate carries the optional profile fields; nil leaves a field as is.
type ProfileUpdate struct {
	Name   *string
	Email  *string
	Avatar *string
}

// NotificationsPatch is a partial update of the notification toggles.
// Only non-nil fields overwrite the stored value.
type NotificationsPatch struct {
	Email        *bool `json:"email,omitempty"`
	Browser      *bool `json:"browser,omitempty"`
	WeeklyReport *bool `json:"weeklyReport,omitempty"`
}

// PrivacyPatch is a partial update of the privacy toggles.
type PrivacyPatch struct {
	BlockTrackers      *bool `json:"blockTrackers,omitempty"`
	HideReferrers      *bool `json:"hideReferrers,omitempty"`
	BlockWebRTC        *bool `json:"blockWebRTC,omitempty"`
	FingerprintDefense *bool `json:"fingerprintDefense,omitempty"`
}

// StatsUpdate carries client-reported usage deltas. AdsBlocked and
// TrackersBlocked are added to the stored counters; DataSaved and TimeSaved
// replace the stored strings when provided.
type StatsUpdate struct {
	AdsBlocked      int64
	TrackersBlocked int64
	DataSaved       *string
	TimeSaved       *string
}

// Service implements the self-service operations.
type Service struct {
	repo Repository
}

// New creates a user Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Profile returns the user's own record.
func (s *Service) Profile(ctx context.Context, userUID string) (*models.User, error) {
	return s.repo.GetUser(ctx, userUID)
}

// UpdateProfile applies the provided profile fields.
func (s *Service) UpdateProfile(ctx context.Context, userUID string, update ProfileUpdate) (*models.User, error) {
	return s.repo.UpdateProfile(ctx, userUID, update.Name, update.Email, update.Avatar)
}

// UpdateSettings merges the provided patches into the settings blocks.
// Fields the client did not send keep their stored values.
func (s *Service) UpdateSettings(ctx context.Context, userUID string, notifications *NotificationsPatch, privacy *PrivacyPatch) (*models.Settings, error) {
	const op = "user.UpdateSettings"

	var rawNotifications, rawPrivacy []byte
	var err error
	if notifications != nil {
		rawNotifications, err = json.Marshal(notifications)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if privacy != nil {
		rawPrivacy, err = json.Marshal(privacy)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	settings, err := s.repo.MergeSettings(ctx, userUID, rawNotifications, rawPrivacy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return settings, nil
}

// UpdateStats adds the reported deltas to the running counters.
func (s *Service) UpdateStats(ctx context.Context, userUID string, update StatsUpdate) (*models.Stats, error) {
	return s.repo.AddStats(ctx, userUID, update.AdsBlocked, update.TrackersBlocked, update.DataSaved, update.TimeSaved)
}

// Stats returns the user's usage block.
func (s *Service) Stats(ctx context.Context, userUID string) (*models.Stats, error) {
	const op = "user.Stats"

	u, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u.Stats, nil
}

// DeleteAccount hard-deletes the account. Billing records are retained.
func (s *Service) DeleteAccount(ctx context.Context, userUID string) error {
	return s.repo.DeleteUser(ctx, userUID)
}
