package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	cookiePrefix    = "lessonshop_"
	cookieSessionID = cookiePrefix + "session-id"
)

type ctxKeySessionID struct{}

type ctxKeyLog struct{}

type ctxKeyRequestID struct{}

type responseRecorder struct {
	b      int
	status int
	w      http.ResponseWriter
}

func (r *responseRecorder) Header() http.Header { return r.w.Header() }

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.w.Write(p)
	r.b += n
	return n, err
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.w.WriteHeader(statusCode)
}

// logHandler кладёт в контекст логгер запроса и пишет итог обработки.
type logHandler struct {
	log  *log.Entry
	next http.Handler
}

func (lh *logHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := uuid.NewString()
	ctx = context.WithValue(ctx, ctxKeyRequestID{}, requestID)

	start := time.Now()
	rr := &responseRecorder{w: w}
	logger := lh.log.WithFields(log.Fields{
		"http.req.path":   r.URL.Path,
		"http.req.method": r.Method,
		"http.req.id":     requestID,
	})
	if v, ok := ctx.Value(ctxKeySessionID{}).(string); ok {
		logger = logger.WithField("session", v)
	}
	logger.Debug("request started")
	defer func() {
		logger.WithFields(log.Fields{
			"http.resp.took_ms": int64(time.Since(start) / time.Millisecond),
			"http.resp.status":  rr.status,
			"http.resp.bytes":   rr.b,
		}).Debug("request complete")
	}()

	ctx = context.WithValue(ctx, ctxKeyLog{}, logger)
	lh.next.ServeHTTP(rr, r.WithContext(ctx))
}

// ensureSessionID выдаёт cookie сессии при первом визите. Cookie живёт
// столько же, сколько сессия в хранилище.
func ensureSessionID(next http.Handler, ttl time.Duration) http.HandlerFunc {
	maxAge := int(ttl / time.Second)
	return func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		c, err := r.Cookie(cookieSessionID)
		if err == nil && c.Value != "" {
			sessionID = c.Value
		} else {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     cookieSessionID,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   maxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), ctxKeySessionID{}, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func sessionID(r *http.Request) string {
	v, _ := r.Context().Value(ctxKeySessionID{}).(string)
	return v
}

func requestLogger(r *http.Request, fallback *log.Entry) *log.Entry {
	if logger, ok := r.Context().Value(ctxKeyLog{}).(*log.Entry); ok {
		return logger
	}
	return fallback
}
