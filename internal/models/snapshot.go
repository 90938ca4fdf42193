package models

import "time"

// SnapshotSource показывает, откуда получено состояние снимка.
type SnapshotSource string

const (
	// SourceRemote - ответ удалённого валидатора.
	SourceRemote SnapshotSource = "remote"
	// SourceFallback - последняя синхронизированная запись из хранилища.
	SourceFallback SnapshotSource = "fallback"
	// SourceAnonymous - пользователь не аутентифицирован.
	SourceAnonymous SnapshotSource = "anonymous"
	// SourceNone - ни один источник не дал ответа либо записи нет.
	SourceNone SnapshotSource = "none"
)

// EntitlementSnapshot - производное представление прав доступа для сессии.
// Строится целиком при каждой сверке и никогда не дополняется частично.
type EntitlementSnapshot struct {
	Record        *SubscriptionRecord `json:"record,omitempty"`
	IsPremiumUser bool                `json:"is_premium_user"`
	PremiumExpiry *time.Time          `json:"premium_expiry,omitempty"`
	Source        SnapshotSource      `json:"source"`
	ReconciledAt  time.Time           `json:"reconciled_at"`
}

// NoEntitlement возвращает снимок без премиум-доступа.
func NoEntitlement(source SnapshotSource, now time.Time) EntitlementSnapshot {
	return EntitlementSnapshot{Source: source, ReconciledAt: now}
}

// BuildSnapshot строит снимок по записи. Запись копируется, поэтому
// дальнейшие изменения исходной записи на снимок не влияют.
func BuildSnapshot(rec SubscriptionRecord, source SnapshotSource, now time.Time) EntitlementSnapshot {
	snap := EntitlementSnapshot{
		Record:       &rec,
		Source:       source,
		ReconciledAt: now,
	}
	if rec.Entitled(now) {
		expiry := rec.EndDate
		snap.IsPremiumUser = true
		snap.PremiumExpiry = &expiry
	}
	return snap
}

// Clone возвращает глубокую копию снимка.
func (s EntitlementSnapshot) Clone() EntitlementSnapshot {
	out := s
	if s.Record != nil {
		rec := *s.Record
		out.Record = &rec
	}
	if s.PremiumExpiry != nil {
		expiry := *s.PremiumExpiry
		out.PremiumExpiry = &expiry
	}
	return out
}
