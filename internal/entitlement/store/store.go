// Package store хранит снимок прав доступа текущей сессии.
//
// Store не является источником истины и живёт только в памяти процесса.
// Единственная точка изменения - Replace; читатели никогда не видят
// смесь полей старого и нового снимка.
package store

import (
	"sync/atomic"

	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

type entry struct {
	snapshot   models.EntitlementSnapshot
	generation uint64
}

// Store - локальный кэш снимка прав доступа одной сессии.
type Store struct {
	current    atomic.Pointer[entry]
	generation atomic.Uint64
}

// New создаёт пустой Store.
func New() *Store {
	return &Store{}
}

// Read возвращает копию текущего снимка. Не блокирует.
func (s *Store) Read() (models.EntitlementSnapshot, bool) {
	e := s.current.Load()
	if e == nil {
		return models.EntitlementSnapshot{}, false
	}
	return e.snapshot.Clone(), true
}

// Replace целиком заменяет снимок и возвращает номер поколения записи.
func (s *Store) Replace(snapshot models.EntitlementSnapshot) uint64 {
	gen := s.generation.Add(1)
	s.current.Store(&entry{snapshot: snapshot.Clone(), generation: gen})
	return gen
}

// Clear возвращает Store в состояние до первого входа пользователя.
func (s *Store) Clear() {
	s.current.Store(nil)
}

// Generation возвращает поколение текущего снимка, 0 если снимка нет.
func (s *Store) Generation() uint64 {
	e := s.current.Load()
	if e == nil {
		return 0
	}
	return e.generation
}
