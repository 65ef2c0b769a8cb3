package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
)

// DefaultSessionTTL — срок жизни сессии без активности.
const DefaultSessionTTL = 48 * time.Hour

type sessionEntry struct {
	session   *domain.Session
	expiresAt time.Time
}

// SessionRepository: in-memory хранилище сессий для одного инстанса витрины.
type SessionRepository struct {
	mu    sync.RWMutex
	items map[string]sessionEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionRepository создаёт хранилище с заданным TTL (<=0 даёт значение по умолчанию).
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRepository{
		items: make(map[string]sessionEntry),
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Get возвращает копию сессии или ErrSessionNotFound.
func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}

	r.mu.RLock()
	entry, ok := r.items[id]
	r.mu.RUnlock()

	if !ok || !entry.expiresAt.After(r.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return entry.session.Clone(), nil
}

// Save сохраняет копию сессии и продлевает TTL.
func (r *SessionRepository) Save(_ context.Context, session *domain.Session) error {
	if session == nil || strings.TrimSpace(session.ID) == "" {
		return domain.ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Копия, чтобы вызывающий код не мутировал хранимое состояние.
	r.items[session.ID] = sessionEntry{
		session:   session.Clone(),
		expiresAt: r.now().Add(r.ttl),
	}
	return nil
}

// Delete удаляет сессию.
func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

// DeleteExpired удаляет истёкшие сессии, не больше limit за вызов (если >0).
func (r *SessionRepository) DeleteExpired(_ context.Context, limit int) (int, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.items {
		if entry.expiresAt.After(now) {
			continue
		}
		delete(r.items, id)
		removed++
		if limit > 0 && removed >= limit {
			break
		}
	}
	return removed, nil
}

// Count возвращает число живых сессий.
func (r *SessionRepository) Count(context.Context) (int, error) {
	now := r.now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, entry := range r.items {
		if entry.expiresAt.After(now) {
			n++
		}
	}
	return n, nil
}

// Ping всегда успешен: хранилище в памяти процесса.
func (r *SessionRepository) Ping(context.Context) error {
	return nil
}

var _ domain.SessionRepository = (*SessionRepository)(nil)
