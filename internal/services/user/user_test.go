package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adblockpro/backend/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, userUID string, name, email, avatar *string) (*models.User, error) {
	args := m.Called(ctx, userUID, name, email, avatar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) MergeSettings(ctx context.Context, userUID string, notifications, privacy []byte) (*models.Settings, error) {
	args := m.Called(ctx, userUID, notifications, privacy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

func (m *MockRepository) AddStats(ctx context.Context, userUID string, adsBlocked, trackersBlocked int64, dataSaved, timeSaved *string) (*models.Stats, error) {
	args := m.Called(ctx, userUID, adsBlocked, trackersBlocked, dataSaved, timeSaved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

func (m *MockRepository) DeleteUser(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func TestUpdateSettings_OnlySentTogglesSerialized(t *testing.T) {
	repo := new(MockRepository)
	svc := New(repo)

	emailOff := false
	repo.On("MergeSettings", mock.Anything, "uid-1",
		[]byte(`{"email":false}`), []byte(nil)).
		Return(&models.Settings{}, nil).Once()

	_, err := svc.UpdateSettings(context.Background(), "uid-1",
		&NotificationsPatch{Email: &emailOff}, nil)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateSettings_BothBlocks(t *testing.T) {
	repo := new(MockRepository)
	svc := New(repo)

	on := true
	repo.On("MergeSettings", mock.Anything, "uid-1",
		[]byte(`{"weeklyReport":true}`), []byte(`{"blockWebRTC":true}`)).
		Return(&models.Settings{}, nil).Once()

	_, err := svc.UpdateSettings(context.Background(), "uid-1",
		&NotificationsPatch{WeeklyReport: &on}, &PrivacyPatch{BlockWebRTC: &on})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestStats_ReadsFromUser(t *testing.T) {
	repo := new(MockRepository)
	svc := New(repo)

	repo.On("GetUser", mock.Anything, "uid-1").
		Return(&models.User{UID: "uid-1", Stats: models.Stats{AdsBlocked: 42, DataSaved: "1.2 MB"}}, nil).Once()

	stats, err := svc.Stats(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.AdsBlocked)
	assert.Equal(t, "1.2 MB", stats.DataSaved)
}
