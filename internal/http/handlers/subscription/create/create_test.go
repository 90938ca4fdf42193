package create

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

	"github.com/magabrotheeeer/entitlement-gateway/internal/functions"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
	"github.com/magabrotheeeer/entitlement-gateway/internal/plans"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/reconciler"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/session"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) CreateSubscription(ctx context.Context, identity models.UserIdentity, planID, paymentMethodID string) (models.EntitlementSnapshot, error) {
	args := m.Called(ctx, identity, planID, paymentMethodID)
	return args.Get(0).(models.EntitlementSnapshot), args.Error(1)
}

type result struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Data   struct {
		reconciler.Result
		Entitlement *struct {
			IsPremium   bool   `json:"is_premium"`
			CurrentPlan string `json:"current_plan"`
		} `json:"entitlement"`
		Inner *reconciler.Result `json:"result"`
	} `json:"data"`
}

func TestCreateHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := plans.New(nil)
	require.NoError(t, err)
	identity := models.UserIdentity{UID: "U2", Email: "u2@example.com"}

	declined := &reconciler.MutationError{
		Action:  reconciler.ActionCreate,
		Kind:    reconciler.KindInvalidArgument,
		Message: "Your card was declined.",
		Err:     functions.ErrInvalidArgument,
	}

	tests := []struct {
		name           string
		identity       *models.UserIdentity
		body           string
		setupMock      func(sm *ServiceMock, sessions *session.Manager)
		expectedStatus int
		check          func(t *testing.T, res result, sessions *session.Manager)
	}{
		{
			name:     "success",
			identity: &identity,
			body:     `{"plan_id":"monthly_basic","payment_method_id":"pm_card_visa"}`,
			setupMock: func(sm *ServiceMock, sessions *session.Manager) {
				sm.On("CreateSubscription", mock.Anything, identity, "monthly_basic", "pm_card_visa").
					Run(func(_ mock.Arguments) {
						st, ok := sessions.Store("U2")
						require.True(t, ok)
						st.Replace(models.BuildSnapshot(models.SubscriptionRecord{
							PlanID: "monthly_basic", Status: models.StatusActive, EndDate: time.Now().AddDate(0, 1, 0),
						}, models.SourceRemote, time.Now()))
					}).
					Return(models.EntitlementSnapshot{IsPremiumUser: true}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, res result, _ *session.Manager) {
				assert.Equal(t, "OK", res.Status)
				require.NotNil(t, res.Data.Inner)
				assert.True(t, res.Data.Inner.Success)
				assert.Equal(t, reconciler.ActionCreate, res.Data.Inner.Action)
				require.NotNil(t, res.Data.Entitlement)
				assert.True(t, res.Data.Entitlement.IsPremium)
				assert.Equal(t, "monthly_basic", res.Data.Entitlement.CurrentPlan)
			},
		},
		{
			name:     "card declined",
			identity: &identity,
			body:     `{"plan_id":"monthly_basic","payment_method_id":"pm_bad"}`,
			setupMock: func(sm *ServiceMock, _ *session.Manager) {
				sm.On("CreateSubscription", mock.Anything, identity, "monthly_basic", "pm_bad").
					Return(models.EntitlementSnapshot{}, declined).Once()
			},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, res result, _ *session.Manager) {
				assert.Equal(t, "Error", res.Status)
				assert.Equal(t, "Your card was declined.", res.Error)
				assert.False(t, res.Data.Success)
				assert.Equal(t, reconciler.KindInvalidArgument, res.Data.Kind)
				assert.Equal(t, "Your card was declined.", res.Data.Error)
			},
		},
		{
			name:     "remote unavailable",
			identity: &identity,
			body:     `{"plan_id":"monthly_basic","payment_method_id":"pm_card_visa"}`,
			setupMock: func(sm *ServiceMock, _ *session.Manager) {
				sm.On("CreateSubscription", mock.Anything, identity, "monthly_basic", "pm_card_visa").
					Return(models.EntitlementSnapshot{}, &reconciler.MutationError{
						Action: reconciler.ActionCreate, Kind: reconciler.KindUnavailable, Message: "service unavailable",
					}).Once()
			},
			expectedStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, res result, _ *session.Manager) {
				assert.Equal(t, reconciler.KindUnavailable, res.Data.Kind)
			},
		},
		{
			name:           "missing payment method",
			identity:       &identity,
			body:           `{"plan_id":"monthly_basic"}`,
			setupMock:      func(_ *ServiceMock, _ *session.Manager) {},
			expectedStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, res result, sessions *session.Manager) {
				assert.Equal(t, "field PaymentMethodID is a required field", res.Error)
				assert.Equal(t, 0, sessions.Count())
			},
		},
		{
			name:           "invalid json",
			identity:       &identity,
			body:           `plan=monthly_basic`,
			setupMock:      func(_ *ServiceMock, _ *session.Manager) {},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, res result, _ *session.Manager) {
				assert.Equal(t, "invalid request body", res.Error)
			},
		},
		{
			name:           "no identity",
			body:           `{"plan_id":"monthly_basic","payment_method_id":"pm_card_visa"}`,
			setupMock:      func(_ *ServiceMock, _ *session.Manager) {},
			expectedStatus: http.StatusUnauthorized,
			check: func(t *testing.T, res result, _ *session.Manager) {
				assert.Equal(t, "user identification missing", res.Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := session.NewManager(catalog, log)
			sm := new(ServiceMock)
			tt.setupMock(sm, sessions)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", strings.NewReader(tt.body))
			if tt.identity != nil {
				req = req.WithContext(middlewarectx.WithIdentity(req.Context(), *tt.identity))
			}
			w := httptest.NewRecorder()
			New(log, sessions, sm).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var res result
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			tt.check(t, res, sessions)
			sm.AssertExpectations(t)
		})
	}
}
