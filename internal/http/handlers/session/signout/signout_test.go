package signout

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/entitlement-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

type SessionsMock struct{ mock.Mock }

func (m *SessionsMock) Close(userUID string) bool {
	return m.Called(userUID).Bool(0)
}

func TestSignOutHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("closes session", func(t *testing.T) {
		sessions := new(SessionsMock)
		sessions.On("Close", "U1").Return(true).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil)
		req = req.WithContext(middlewarectx.WithIdentity(req.Context(), models.UserIdentity{UID: "U1"}))
		w := httptest.NewRecorder()
		New(log, sessions).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"signed_out":true`)
		sessions.AssertExpectations(t)
	})

	t.Run("no identity", func(t *testing.T) {
		sessions := new(SessionsMock)
		w := httptest.NewRecorder()
		New(log, sessions).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		sessions.AssertNotCalled(t, "Close", mock.Anything)
	})
}
