// Package gate отвечает на вопрос «разрешена ли функция сейчас», читая только
// Store. Пакет не выполняет сетевых вызовов: сверку запускает вызывающий код.
package gate

import (
	"time"

	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// Reader - источник снимка, обычно *store.Store.
type Reader interface {
	Read() (models.EntitlementSnapshot, bool)
}

// Catalog ищет тариф по ID.
type Catalog interface {
	Lookup(id string) (models.SubscriptionPlan, bool)
}

// Gate - синхронные чтения без побочных эффектов.
type Gate struct {
	store   Reader
	catalog Catalog
}

// New создаёт Gate поверх Store и каталога тарифов.
func New(store Reader, catalog Catalog) *Gate {
	return &Gate{store: store, catalog: catalog}
}

// IsPremium возвращает закэшированный признак премиума; нет снимка - false.
func (g *Gate) IsPremium() bool {
	snap, ok := g.store.Read()
	return ok && snap.IsPremiumUser
}

// CurrentPlan возвращает ID тарифа, дающего доступ сейчас.
func (g *Gate) CurrentPlan() (string, bool) {
	snap, ok := g.store.Read()
	if !ok || !snap.IsPremiumUser || snap.Record == nil {
		return "", false
	}
	return snap.Record.PlanID, true
}

// ExpiresAt возвращает момент окончания премиум-доступа.
func (g *Gate) ExpiresAt() (time.Time, bool) {
	snap, ok := g.store.Read()
	if !ok || !snap.IsPremiumUser || snap.PremiumExpiry == nil {
		return time.Time{}, false
	}
	return *snap.PremiumExpiry, true
}

// Permits разрешает функцию, только если пользователь премиум и функция
// входит в его тариф. Неизвестный тариф ничего не открывает.
func (g *Gate) Permits(feature string) bool {
	planID, ok := g.CurrentPlan()
	if !ok {
		return false
	}
	plan, ok := g.catalog.Lookup(planID)
	if !ok {
		return false
	}
	return plan.HasFeature(feature)
}

// Features возвращает список функций текущего тарифа.
func (g *Gate) Features() []string {
	planID, ok := g.CurrentPlan()
	if !ok {
		return nil
	}
	plan, ok := g.catalog.Lookup(planID)
	if !ok {
		return nil
	}
	return plan.Features
}
