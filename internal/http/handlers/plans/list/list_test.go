package list

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/entitlement-gateway/internal/plans"
)

func TestListHandler(t *testing.T) {
	catalog, err := plans.New(nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), catalog).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var b struct {
		Status string `json:"status"`
		Data   []Plan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	require.Len(t, b.Data, 3)

	assert.Equal(t, "monthly_basic", b.Data[0].ID)
	assert.Equal(t, int64(299), b.Data[0].PriceMinorUnits)
	assert.Equal(t, "monthly_premium", b.Data[1].ID)
	assert.Equal(t, int64(499), b.Data[1].PriceMinorUnits)
	assert.Equal(t, "yearly_premium", b.Data[2].ID)
	assert.Equal(t, 12, b.Data[2].DurationMonths)
	assert.Contains(t, b.Data[2].Features, plans.FeaturePrayerBoardPlus)
}
