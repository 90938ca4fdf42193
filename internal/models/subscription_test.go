package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRecord_Entitled(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name    string
		status  SubscriptionStatus
		endDate time.Time
		want    bool
	}{
		{"active future", StatusActive, future, true},
		{"active ends now", StatusActive, now, true},
		{"active past", StatusActive, past, false},
		{"canceled future", StatusCanceled, future, true},
		{"canceled past", StatusCanceled, past, false},
		{"expired future", StatusExpired, future, false},
		{"expired past", StatusExpired, past, false},
		{"unknown status", SubscriptionStatus("paused"), future, false},
		{"active without end date", StatusActive, time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := SubscriptionRecord{PlanID: "monthly_premium", Status: tt.status, EndDate: tt.endDate}
			assert.Equal(t, tt.want, rec.Entitled(now))
		})
	}
}

func TestSubscriptionRecord_EffectiveStatus(t *testing.T) {
	now := time.Now()
	stale := SubscriptionRecord{Status: StatusActive, EndDate: now.Add(-time.Minute)}
	assert.True(t, stale.IsStale(now))
	assert.Equal(t, StatusExpired, stale.EffectiveStatus(now))

	canceled := SubscriptionRecord{Status: StatusCanceled, EndDate: now.Add(-time.Minute)}
	assert.False(t, canceled.IsStale(now))
	assert.Equal(t, StatusCanceled, canceled.EffectiveStatus(now))
}

func TestBuildSnapshot(t *testing.T) {
	now := time.Now()
	rec := SubscriptionRecord{PlanID: "monthly_premium", Status: StatusActive, EndDate: now.Add(time.Hour)}

	snap := BuildSnapshot(rec, SourceRemote, now)
	assert.True(t, snap.IsPremiumUser)
	require.NotNil(t, snap.PremiumExpiry)
	assert.Equal(t, rec.EndDate, *snap.PremiumExpiry)

	rec.PlanID = "changed"
	assert.Equal(t, "monthly_premium", snap.Record.PlanID)

	expired := BuildSnapshot(SubscriptionRecord{Status: StatusExpired, EndDate: now.Add(time.Hour)}, SourceFallback, now)
	assert.False(t, expired.IsPremiumUser)
	assert.Nil(t, expired.PremiumExpiry)
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	now := time.Now()
	snap := BuildSnapshot(SubscriptionRecord{PlanID: "a", Status: StatusActive, EndDate: now.Add(time.Hour)}, SourceRemote, now)
	clone := snap.Clone()
	clone.Record.PlanID = "b"
	*clone.PremiumExpiry = now

	assert.Equal(t, "a", snap.Record.PlanID)
	assert.NotEqual(t, now, *snap.PremiumExpiry)
}
