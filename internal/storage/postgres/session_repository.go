package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
)

// DefaultSessionTTL — срок жизни сессии без активности.
const DefaultSessionTTL = 48 * time.Hour

// SessionRepository хранит сессию JSONB-документом со сроком истечения.
// Истёкшие строки невидимы для Get и Count и удаляются через DeleteExpired.
type SessionRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSessionRepository создаёт репозиторий поверх открытого Store.
func NewSessionRepository(store *Store, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRepository{
		db:  store.DB(),
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}

	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var data []byte
	err := r.db.QueryRowContext(queryCtx, `
		SELECT data
		FROM storefront_sessions
		WHERE id = $1 AND expires_at > $2
	`, id, r.now()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || strings.TrimSpace(session.ID) == "" {
		return domain.ErrSessionNotFound
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := r.now()
	_, err = r.db.ExecContext(queryCtx, `
		INSERT INTO storefront_sessions (id, data, updated_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at
	`, session.ID, string(data), now, now.Add(r.ttl))
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(queryCtx, `DELETE FROM storefront_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// DeleteExpired удаляет до limit истёкших сессий (limit<=0 удаляет все).
func (r *SessionRepository) DeleteExpired(ctx context.Context, limit int) (int, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		res sql.Result
		err error
	)
	if limit > 0 {
		res, err = r.db.ExecContext(queryCtx, `
			DELETE FROM storefront_sessions
			WHERE id IN (
				SELECT id
				FROM storefront_sessions
				WHERE expires_at <= $1
				ORDER BY expires_at ASC
				LIMIT $2
			)
		`, r.now(), limit)
	} else {
		res, err = r.db.ExecContext(queryCtx,
			`DELETE FROM storefront_sessions WHERE expires_at <= $1`, r.now())
	}
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for expired sessions: %w", err)
	}
	return int(affected), nil
}

// Count возвращает число неистёкших сессий.
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var n int
	if err := r.db.QueryRowContext(queryCtx,
		`SELECT COUNT(*) FROM storefront_sessions WHERE expires_at > $1`, r.now(),
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

var _ domain.SessionRepository = (*SessionRepository)(nil)
