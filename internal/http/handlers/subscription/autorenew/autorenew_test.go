package autorenew

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/entitlement-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
	"github.com/magabrotheeeer/entitlement-gateway/internal/plans"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/reconciler"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/session"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) ToggleAutoRenew(ctx context.Context, identity models.UserIdentity, enabled bool) (models.EntitlementSnapshot, error) {
	args := m.Called(ctx, identity, enabled)
	return args.Get(0).(models.EntitlementSnapshot), args.Error(1)
}

func snapshot(autoRenew bool, source models.SnapshotSource) models.EntitlementSnapshot {
	return models.BuildSnapshot(models.SubscriptionRecord{
		PlanID:    "monthly_premium",
		Status:    models.StatusActive,
		EndDate:   time.Now().AddDate(0, 1, 0),
		AutoRenew: autoRenew,
	}, source, time.Now())
}

func TestAutoRenewHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := plans.New(nil)
	require.NoError(t, err)
	identity := models.UserIdentity{UID: "U1"}

	tests := []struct {
		name           string
		body           string
		setupMock      func(sm *ServiceMock)
		expectedStatus int
		expectedBody   string
		wantAutoRenew  *bool
	}{
		{
			name: "disable",
			body: `{"auto_renew":false}`,
			setupMock: func(sm *ServiceMock) {
				sm.On("ToggleAutoRenew", mock.Anything, identity, false).Return(snapshot(false, models.SourceRemote), nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"action":"toggle-auto-renew"`,
			wantAutoRenew:  boolPtr(false),
		},
		{
			name: "fallback record reports requested value",
			body: `{"auto_renew":true}`,
			setupMock: func(sm *ServiceMock) {
				sm.On("ToggleAutoRenew", mock.Anything, identity, true).Return(snapshot(false, models.SourceFallback), nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"success":true`,
			wantAutoRenew:  boolPtr(true),
		},
		{
			name:           "missing field",
			body:           `{}`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field AutoRenew is a required field`,
		},
		{
			name:           "wrong type",
			body:           `{"auto_renew":"yes"}`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name: "unavailable",
			body: `{"auto_renew":true}`,
			setupMock: func(sm *ServiceMock) {
				sm.On("ToggleAutoRenew", mock.Anything, identity, true).Return(models.EntitlementSnapshot{}, &reconciler.MutationError{
					Action: reconciler.ActionToggleAutoRenew, Kind: reconciler.KindUnavailable, Message: "try later",
				}).Once()
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"kind":"unavailable"`,
		},
		{
			name: "unexpected error",
			body: `{"auto_renew":true}`,
			setupMock: func(sm *ServiceMock) {
				sm.On("ToggleAutoRenew", mock.Anything, identity, true).Return(models.EntitlementSnapshot{}, assert.AnError).Once()
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `"kind":"internal"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := session.NewManager(catalog, log)
			sm := new(ServiceMock)
			tt.setupMock(sm)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/subscriptions/auto-renew", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), identity))
			w := httptest.NewRecorder()
			New(log, sessions, sm).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			if tt.wantAutoRenew != nil {
				var b struct {
					Data Data `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
				assert.Equal(t, *tt.wantAutoRenew, b.Data.AutoRenew)
			}
			sm.AssertExpectations(t)
		})
	}
}

func boolPtr(b bool) *bool { return &b }
