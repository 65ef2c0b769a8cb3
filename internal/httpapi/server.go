// Package httpapi отдаёт браузеру JSON API витрины.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
	"github.com/vladislavdragonenkov/lessonshop/internal/storefront"
)

// defaultSessionTTL совпадает с TTL хранилищ сессий по умолчанию.
const defaultSessionTTL = 48 * time.Hour

// Server обслуживает API поверх сервиса витрины и хранилища сессий.
type Server struct {
	svc      *storefront.Service
	sessions domain.SessionRepository
	logger   *log.Entry
	locks    sessionLocks
	ttl      time.Duration
	now      func() time.Time
}

// Option настраивает Server.
type Option func(*Server)

// WithSessionTTL задаёт срок жизни cookie сессии; он должен совпадать с TTL хранилища.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewServer создаёт API-сервер.
func NewServer(svc *storefront.Service, sessions domain.SessionRepository, logger *log.Entry, opts ...Option) *Server {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}
	s := &Server{
		svc:      svc,
		sessions: sessions,
		logger:   logger,
		ttl:      defaultSessionTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler собирает роутер с middleware: логирование, cookie сессии, трассировка.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.withSession(s.state)).Methods(http.MethodGet)
	api.HandleFunc("/lessons/reload", s.withSession(s.reload)).Methods(http.MethodPost)
	api.HandleFunc("/search", s.withSession(s.search)).Methods(http.MethodGet)
	api.HandleFunc("/sort", s.withSession(s.sort)).Methods(http.MethodPost)
	api.HandleFunc("/cart", s.withSession(s.addToCart)).Methods(http.MethodPost)
	api.HandleFunc("/cart/toggle", s.withSession(s.toggleCart)).Methods(http.MethodPost)
	api.HandleFunc("/cart/{lineId}", s.withSession(s.removeFromCart)).Methods(http.MethodDelete)
	api.HandleFunc("/contact", s.withSession(s.setContact)).Methods(http.MethodPut)
	api.HandleFunc("/checkout", s.withSession(s.checkout)).Methods(http.MethodPost)
	api.HandleFunc("/confirmation/dismiss", s.withSession(s.dismissConfirmation)).Methods(http.MethodPost)
	r.HandleFunc("/_healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	var handler http.Handler = r
	handler = &logHandler{log: s.logger, next: handler}
	handler = ensureSessionID(handler, s.ttl)
	handler = otelhttp.NewHandler(handler, "storefront")
	return handler
}

// result — итог операции над сессией.
type result struct {
	status int
	notice string
}

type sessionHandler func(r *http.Request, session *domain.Session) (result, error)

// withSession загружает сессию, выполняет операцию под локом сессии,
// сохраняет состояние и отвечает пересчитанным представлением.
func (s *Server) withSession(fn sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(r, s.logger)
		id := sessionID(r)

		unlock := s.locks.lock(id)
		defer unlock()

		session, err := s.loadSession(r.Context(), id)
		if err != nil {
			renderHTTPError(logger, w, errors.Wrap(err, "load session"), http.StatusInternalServerError)
			return
		}

		res, err := fn(r, session)
		if err != nil {
			code := res.status
			if code == 0 {
				code = statusFor(err)
			}
			renderHTTPError(logger, w, err, code)
			return
		}

		if err := s.sessions.Save(r.Context(), session); err != nil {
			renderHTTPError(logger, w, errors.Wrap(err, "save session"), http.StatusInternalServerError)
			return
		}

		status := res.status
		if status == 0 {
			status = http.StatusOK
		}
		view := storefront.BuildView(session)
		view.Notice = res.notice
		writeJSON(w, status, view)
	}
}

func (s *Server) loadSession(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.NewSession(id, s.now()), nil
	}
	return session, err
}
