package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/adblockpro/backend/internal/lib/logger"
	"github.com/adblockpro/backend/internal/models"
)

const testSecret = "whsec_test"

type MockService struct {
	mock.Mock
}

func (m *MockService) ProcessWebhookEvent(ctx context.Context, event *models.StripeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func sign(secret string, body []byte, ts time.Time) string {
	t := fmt.Sprintf("%d", ts.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(t + "." + string(body)))
	return fmt.Sprintf("t=%s,v1=%s", t, hex.EncodeToString(mac.Sum(nil)))
}

func TestHandler_ValidSignature(t *testing.T) {
	now := time.Now()
	body := `{"id":"evt_1","type":"customer.subscription.deleted","data":{"object":{"id":"sub_1"}}}`

	service := new(MockService)
	service.On("ProcessWebhookEvent", mock.Anything, mock.MatchedBy(func(ev *models.StripeEvent) bool {
		return ev.ID == "evt_1" && ev.Type == models.EventSubscriptionDeleted
	})).Return(nil).Once()

	handler := New(logger.Discard(), service, testSecret)
	handler.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	req.Header.Set("stripe-signature", sign(testSecret, []byte(body), now))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestHandler_RejectsBeforeParsing(t *testing.T) {
	now := time.Now()
	body := `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`

	tests := []struct {
		name      string
		signature string
	}{
		{name: "missing header", signature: ""},
		{name: "wrong secret", signature: sign("whsec_other", []byte(body), now)},
		{name: "tampered body", signature: sign(testSecret, []byte(body+" "), now)},
		{name: "garbage header", signature: "t=abc,v1=zzz"},
		{name: "stale timestamp", signature: sign(testSecret, []byte(body), now.Add(-time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			handler := New(logger.Discard(), service, testSecret)
			handler.now = func() time.Time { return now }

			req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
			if tt.signature != "" {
				req.Header.Set("stripe-signature", tt.signature)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			service.AssertNotCalled(t, "ProcessWebhookEvent", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_ServiceError(t *testing.T) {
	now := time.Now()
	body := `{"id":"evt_1","type":"invoice.payment_succeeded","data":{"object":{"id":"in_1"}}}`

	service := new(MockService)
	service.On("ProcessWebhookEvent", mock.Anything, mock.Anything).
		Return(errors.New("db down")).Once()

	handler := New(logger.Discard(), service, testSecret)
	handler.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	req.Header.Set("stripe-signature", sign(testSecret, []byte(body), now))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// a 5xx makes the processor retry the delivery
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	service.AssertExpectations(t)
}

func TestVerifySignature(t *testing.T) {
	now := time.Now()
	body := []byte("payload")

	assert.True(t, verifySignature(testSecret, body, sign(testSecret, body, now), now))
	assert.False(t, verifySignature(testSecret, body, sign(testSecret, body, now.Add(-6*time.Minute)), now))
	assert.False(t, verifySignature(testSecret, body, "v1=deadbeef", now))
	assert.False(t, verifySignature(testSecret, body, "t=123", now))
	assert.False(t, verifySignature(testSecret, body, "", now))
}
