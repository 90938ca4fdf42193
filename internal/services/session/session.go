// Package session связывает пользователя с Store его сессии. Store
// создаётся при входе и очищается при выходе; глобального Store нет.
package session

import (
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/entitlement-gateway/internal/entitlement/gate"
	"github.com/magabrotheeeer/entitlement-gateway/internal/entitlement/store"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/reconciler"
)

// Manager - реестр открытых сессий. Устройства одного пользователя
// разделяют один Store.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*store.Store
	catalog  gate.Catalog
	log      *slog.Logger
}

// NewManager создает пустой реестр.
func NewManager(catalog gate.Catalog, log *slog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*store.Store),
		catalog:  catalog,
		log:      log,
	}
}

// Open возвращает Store сессии пользователя, создавая его при первом
// обращении. Повторный вызов возвращает тот же Store.
func (m *Manager) Open(userUID string) *store.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[userUID]
	if !ok {
		st = store.New()
		m.sessions[userUID] = st
		m.log.Info("session opened", sl.UID(userUID))
	}
	return st
}

// Close очищает Store и удаляет сессию. Возвращает false, если сессии не было.
func (m *Manager) Close(userUID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[userUID]
	if !ok {
		return false
	}
	st.Clear()
	delete(m.sessions, userUID)
	m.log.Info("session closed", sl.UID(userUID))
	return true
}

// Store возвращает Store открытой сессии.
func (m *Manager) Store(userUID string) (reconciler.Writer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sessions[userUID]
	if !ok {
		return nil, false
	}
	return st, true
}

// Gate возвращает Gate сессии. Без открытой сессии Gate читает пустой
// Store и ничего не разрешает.
func (m *Manager) Gate(userUID string) *gate.Gate {
	m.mu.RLock()
	st, ok := m.sessions[userUID]
	m.mu.RUnlock()
	if !ok {
		st = store.New()
	}
	return gate.New(st, m.catalog)
}

// Count возвращает число пользователей с открытой сессией.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
