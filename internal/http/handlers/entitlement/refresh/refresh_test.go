package refresh

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/entitlement-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
	"github.com/magabrotheeeer/entitlement-gateway/internal/plans"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/session"
)

type ReconcilerMock struct{ mock.Mock }

func (m *ReconcilerMock) Reconcile(ctx context.Context, identity models.UserIdentity) models.EntitlementSnapshot {
	return m.Called(ctx, identity).Get(0).(models.EntitlementSnapshot)
}

func TestRefreshHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := plans.New(nil)
	require.NoError(t, err)
	identity := models.UserIdentity{UID: "U1", Email: "u1@example.com"}

	t.Run("reopens session and reconciles", func(t *testing.T) {
		sessions := session.NewManager(catalog, log)
		snap := models.BuildSnapshot(models.SubscriptionRecord{
			PlanID:    "monthly_premium",
			Status:    models.StatusCanceled,
			EndDate:   time.Now().AddDate(0, 0, 3),
			AutoRenew: false,
		}, models.SourceFallback, time.Now())

		rm := new(ReconcilerMock)
		rm.On("Reconcile", mock.Anything, identity).Run(func(_ mock.Arguments) {
			st, ok := sessions.Store("U1")
			require.True(t, ok)
			st.Replace(snap)
		}).Return(snap).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/entitlements/refresh", nil)
		req = req.WithContext(middlewarectx.WithIdentity(req.Context(), identity))
		w := httptest.NewRecorder()
		New(log, sessions, rm).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var b struct {
			Data Data `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
		assert.Equal(t, models.SourceFallback, b.Data.Source)
		assert.True(t, b.Data.Entitlement.IsPremium)
		assert.Equal(t, "monthly_premium", b.Data.Entitlement.CurrentPlan)
		assert.Equal(t, "canceled", b.Data.Status)
		assert.False(t, b.Data.AutoRenew)
		assert.Equal(t, 1, sessions.Count())
		rm.AssertExpectations(t)
	})

	t.Run("no identity", func(t *testing.T) {
		sessions := session.NewManager(catalog, log)
		rm := new(ReconcilerMock)
		w := httptest.NewRecorder()
		New(log, sessions, rm).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/entitlements/refresh", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		rm.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
		assert.Equal(t, 0, sessions.Count())
	})
}
