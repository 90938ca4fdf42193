package signin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/credentials"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
	"github.com/magabrotheeeer/entitlement-gateway/internal/plans"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/session"
)

type ReconcilerMock struct{ mock.Mock }

func (m *ReconcilerMock) Reconcile(ctx context.Context, identity models.UserIdentity) models.EntitlementSnapshot {
	return m.Called(ctx, identity).Get(0).(models.EntitlementSnapshot)
}

type TokenMakerMock struct{ mock.Mock }

func (m *TokenMakerMock) GenerateToken(identity models.UserIdentity, providerToken string) (string, error) {
	args := m.Called(identity, providerToken)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func providerToken(t *testing.T, uid string) string {
	t.Helper()
	claims := jwtlib.MapClaims{"sub": uid, "email": "u1@example.com", "exp": time.Now().Add(time.Hour).Unix()}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("provider"))
	require.NoError(t, err)
	return signed
}

func TestSignInHandler(t *testing.T) {
	idToken := providerToken(t, "U1")
	identity := models.UserIdentity{UID: "U1", Email: "u1@example.com"}

	tests := []struct {
		name           string
		body           string
		setupMocks     func(rm *ReconcilerMock, tm *TokenMakerMock, sessions *session.Manager)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success premium",
			body: `{"id_token":"` + idToken + `"}`,
			setupMocks: func(rm *ReconcilerMock, tm *TokenMakerMock, sessions *session.Manager) {
				rm.On("Reconcile", mock.MatchedBy(func(ctx context.Context) bool {
					tok, ok := credentials.Token(ctx)
					return ok && tok == idToken
				}), identity).Run(func(_ mock.Arguments) {
					st, ok := sessions.Store("U1")
					require.True(t, ok, "session must be open before reconcile")
					st.Replace(models.BuildSnapshot(models.SubscriptionRecord{
						PlanID: "monthly_premium", Status: models.StatusActive, EndDate: time.Now().AddDate(0, 1, 0),
					}, models.SourceRemote, time.Now()))
				}).Return(models.EntitlementSnapshot{IsPremiumUser: true, Source: models.SourceRemote}).Once()
				tm.On("GenerateToken", identity, idToken).Return("session-token", nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"session-token"`,
		},
		{
			name:           "invalid json",
			body:           `{`,
			setupMocks:     func(_ *ReconcilerMock, _ *TokenMakerMock, _ *session.Manager) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "missing token",
			body:           `{}`,
			setupMocks:     func(_ *ReconcilerMock, _ *TokenMakerMock, _ *session.Manager) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field IDToken is a required field`,
		},
		{
			name:           "garbage token",
			body:           `{"id_token":"garbage"}`,
			setupMocks:     func(_ *ReconcilerMock, _ *TokenMakerMock, _ *session.Manager) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"invalid id token"`,
		},
		{
			name: "token generation failure",
			body: `{"id_token":"` + idToken + `"}`,
			setupMocks: func(rm *ReconcilerMock, tm *TokenMakerMock, _ *session.Manager) {
				rm.On("Reconcile", mock.Anything, identity).Return(models.EntitlementSnapshot{}).Once()
				tm.On("GenerateToken", identity, idToken).Return("", errors.New("sign failed")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to open session"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := plans.New(nil)
			require.NoError(t, err)
			sessions := session.NewManager(catalog, newNoopLogger())
			rm := new(ReconcilerMock)
			tm := new(TokenMakerMock)
			tt.setupMocks(rm, tm, sessions)

			handler := New(newNoopLogger(), sessions, rm, tm)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			rm.AssertExpectations(t)
			tm.AssertExpectations(t)
		})
	}
}

func TestSignInHandler_ResponseShape(t *testing.T) {
	idToken := providerToken(t, "U1")
	catalog, err := plans.New(nil)
	require.NoError(t, err)
	sessions := session.NewManager(catalog, newNoopLogger())

	rm := new(ReconcilerMock)
	rm.On("Reconcile", mock.Anything, mock.Anything).Return(models.NoEntitlement(models.SourceNone, time.Now())).Once()
	tm := new(TokenMakerMock)
	tm.On("GenerateToken", mock.Anything, idToken).Return("t", nil).Once()

	w := httptest.NewRecorder()
	New(newNoopLogger(), sessions, rm, tm).ServeHTTP(w,
		httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{"id_token":"`+idToken+`"}`)))

	var body struct {
		Status string `json:"status"`
		Data   Data   `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, "U1", body.Data.UID)
	assert.False(t, body.Data.Entitlement.IsPremium)
	assert.Equal(t, 1, sessions.Count())
}
