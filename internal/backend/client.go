package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
	"github.com/vladislavdragonenkov/lessonshop/internal/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	// maxErrorBody ограничивает кусок тела ответа, попадающий в ошибку и логи.
	maxErrorBody = 512

	opFetchLessons  = "fetch_lessons"
	opSearchLessons = "search_lessons"
	opSubmitOrder   = "submit_order"
	opUpdateSpaces  = "update_spaces"
)

// Client — HTTP-клиент удалённого бэкенда занятий.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	orderFormat domain.OrderFormat
	logger      *log.Entry
	metrics     *metrics.StorefrontMetrics
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент (тесты, собственный транспорт).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout задаёт таймаут одного запроса.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithOrderFormat задаёт форму тела POST /order.
func WithOrderFormat(format domain.OrderFormat) Option {
	return func(c *Client) {
		if format.Valid() {
			c.orderFormat = format
		}
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics подключает метрики длительности запросов.
func WithMetrics(m *metrics.StorefrontMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient создаёт клиент для бэкенда по базовому адресу.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		orderFormat: domain.OrderFormatQuantities,
		logger:      log.WithField("component", "backend-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchLessons запрашивает весь каталог.
func (c *Client) FetchLessons(ctx context.Context) ([]domain.Lesson, error) {
	var lessons []domain.Lesson
	if err := c.do(ctx, opFetchLessons, http.MethodGet, "/data", nil, &lessons); err != nil {
		return nil, err
	}
	return normalize(lessons), nil
}

// SearchLessons передаёт поиск бэкенду; сопоставление выполняет он.
func (c *Client) SearchLessons(ctx context.Context, query string) ([]domain.Lesson, error) {
	path := "/search?" + url.Values{"query": []string{query}}.Encode()
	var lessons []domain.Lesson
	if err := c.do(ctx, opSearchLessons, http.MethodGet, path, nil, &lessons); err != nil {
		return nil, err
	}
	return normalize(lessons), nil
}

// SubmitOrder отправляет заказ в настроенном формате.
func (c *Client) SubmitOrder(ctx context.Context, order domain.Order) error {
	return c.do(ctx, opSubmitOrder, http.MethodPost, "/order", order.Payload(c.orderFormat), nil)
}

// UpdateSpaces записывает количество мест занятия.
func (c *Client) UpdateSpaces(ctx context.Context, id domain.LessonID, spaces int) error {
	body := domain.CapacityUpdate{UpdateFields: domain.CapacityFields{Spaces: spaces}}
	return c.do(ctx, opUpdateSpaces, http.MethodPut, "/update/"+url.PathEscape(id.String()), body, nil)
}

// Ping проверяет доступность бэкенда для readiness.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.FetchLessons(ctx)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeError
		}
		c.metrics.RecordBackendRequest(op, outcome, time.Since(start))
	}()

	var body io.Reader
	if in != nil {
		payload, mErr := json.Marshal(in)
		if mErr != nil {
			return fmt.Errorf("%s: encode request: %w", op, mErr)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w: %w", op, domain.ErrBackendUnavailable, ctxErr)
		}
		return fmt.Errorf("%s: %w: %v", op, domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.WithFields(log.Fields{
			"op":     op,
			"status": resp.StatusCode,
		}).Debug("backend request completed")
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: %w: empty body", op, domain.ErrMalformedResponse)
		}
		return fmt.Errorf("%s: %w: %v", op, domain.ErrMalformedResponse, err)
	}

	c.logger.WithFields(log.Fields{
		"op":       op,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("backend request completed")
	return nil
}

// normalize превращает null-ответ в пустой список.
func normalize(lessons []domain.Lesson) []domain.Lesson {
	if lessons == nil {
		return []domain.Lesson{}
	}
	return lessons
}

var _ domain.CatalogBackend = (*Client)(nil)
