// Package models contains the domain structures shared between the business
// logic and the storage layer.
package models

import "time"

// User roles. The admin surface is open to admin and superadmin.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Plans sold on the pricing page.
const (
	PlanFree  = "free"
	PlanPro   = "pro"
	PlanTeams = "teams"
)

// User represents a registered account. The password hash and the one-time
// tokens never leave the server.
type User struct {
	UID                 string     `json:"id"`
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	PasswordHash        string     `json:"-"`
	Avatar              *string    `json:"avatar"`
	Role                string     `json:"role"`
	Plan                string     `json:"plan"`
	IsVerified          bool       `json:"isVerified"`
	VerificationToken   *string    `json:"-"`
	ResetPasswordToken  *string    `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	LastLogin           *time.Time `json:"lastLogin"`
	Stats               Stats      `json:"stats"`
	Settings            Settings   `json:"settings"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Stats is the usage block reported by the extension. AdsBlocked and
// TrackersBlocked are monotonically increasing counters fed by client
// deltas; DataSaved and TimeSaved are display strings, last write wins.
type Stats struct {
	AdsBlocked      int64  `json:"adsBlocked"`
	TrackersBlocked int64  `json:"trackersBlocked"`
	DataSaved       string `json:"dataSaved"`
	TimeSaved       string `json:"timeSaved"`
}

// NotificationSettings are the per-user notification toggles.
type NotificationSettings struct {
	Email        bool `json:"email"`
	Browser      bool `json:"browser"`
	WeeklyReport bool `json:"weeklyReport"`
}

// PrivacySettings are the per-user blocking toggles.
type PrivacySettings struct {
	BlockTrackers      bool `json:"blockTrackers"`
	HideReferrers      bool `json:"hideReferrers"`
	BlockWebRTC        bool `json:"blockWebRTC"`
	FingerprintDefense bool `json:"fingerprintDefense"`
}

// Settings groups both settings blocks.
type Settings struct {
	Notifications NotificationSettings `json:"notifications"`
	Privacy       PrivacySettings      `json:"privacy"`
}

// DefaultStats returns the stats block of a fresh account.
func DefaultStats() Stats {
	return Stats{DataSaved: "0 MB", TimeSaved: "0 hours"}
}

// DefaultSettings returns the settings block of a fresh account.
func DefaultSettings() Settings {
	return Settings{
		Notifications: NotificationSettings{Email: true, Browser: true, WeeklyReport: true},
		Privacy:       PrivacySettings{BlockTrackers: true, HideReferrers: true, FingerprintDefense: true},
	}
}

// GlobalStats is the public aggregate shown on the marketing page.
type GlobalStats struct {
	TotalAdsBlocked      int64 `json:"totalAdsBlocked"`
	TotalTrackersBlocked int64 `json:"totalTrackersBlocked"`
	TotalUsers           int64 `json:"totalUsers"`
}

// AdminStats is the admin dashboard aggregate.
type AdminStats struct {
	TotalUsers         int64   `json:"totalUsers"`
	ActiveUsers        int64   `json:"activeUsers"`
	NewUsersToday      int64   `json:"newUsersToday"`
	TotalSubscriptions int64   `json:"totalSubscriptions"`
	MonthlyRevenue     float64 `json:"monthlyRevenue"`
}

// UserFilter describes the admin user listing query: pagination plus
// case-insensitive substring search over name/email and optional filters.
type UserFilter struct {
	Page     int
	Limit    int
	Search   string
	Plan     string
	Verified *bool
}
