package storefront

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
	"github.com/vladislavdragonenkov/lessonshop/internal/metrics"
)

// Источники загрузки каталога для метрик.
const (
	sourceData   = "data"
	sourceSearch = "search"
	sourceLocal  = "local"
)

// Options задаёт поведение витрины из конфигурации.
type Options struct {
	SearchMode domain.SearchMode
	// PushCapacityUpdates включает PUT /update/<id> после принятого заказа.
	PushCapacityUpdates bool
}

// DefaultOptions возвращает рекомендуемое поведение: поиск на бэкенде, обновление мест включено.
func DefaultOptions() Options {
	return Options{
		SearchMode:          domain.SearchModeBackend,
		PushCapacityUpdates: true,
	}
}

// Service объединяет загрузчик каталога и менеджер корзины. Состояние покупателя
// хранится в domain.Session и передаётся в каждый вызов явно.
type Service struct {
	catalog   domain.CatalogBackend
	publisher domain.EventPublisher
	metrics   *metrics.StorefrontMetrics
	logger    *log.Entry
	opts      Options

	newLineID func() string
	now       func() time.Time
}

// NewService создаёт сервис витрины.
func NewService(
	catalog domain.CatalogBackend,
	publisher domain.EventPublisher,
	m *metrics.StorefrontMetrics,
	logger *log.Entry,
	opts Options,
) *Service {
	if publisher == nil {
		publisher = domain.NoopPublisher{}
	}
	if logger == nil {
		logger = log.WithField("component", "storefront")
	}
	if !opts.SearchMode.Valid() {
		opts.SearchMode = domain.SearchModeBackend
	}
	return &Service{
		catalog:   catalog,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		opts:      opts,
		newLineID: uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// LoadAll загружает весь каталог. При ошибке прежний список остаётся,
// ошибка пишется в лог и возвращается вызывающему.
func (s *Service) LoadAll(ctx context.Context, session *domain.Session) error {
	lessons, err := s.catalog.FetchLessons(ctx)
	if err != nil {
		s.metrics.RecordCatalogLoad(sourceData, metrics.OutcomeError)
		s.logger.WithError(err).WithField("session_id", session.ID).Error("error loading lessons")
		return err
	}
	s.metrics.RecordCatalogLoad(sourceData, metrics.OutcomeSuccess)
	s.replaceLessons(session, lessons)
	return nil
}

// Search ищет занятия. Пустой запрос эквивалентен LoadAll. Запрос запоминается
// в сессии только вместе с результатом, на котором он выполнен.
func (s *Service) Search(ctx context.Context, session *domain.Session, query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		if err := s.LoadAll(ctx, session); err != nil {
			return err
		}
		session.SearchQuery = query
		return nil
	}

	var (
		lessons []domain.Lesson
		err     error
		source  string
	)
	switch s.opts.SearchMode {
	case domain.SearchModeLocal:
		source = sourceLocal
		lessons, err = s.catalog.FetchLessons(ctx)
		if err == nil {
			lessons = domain.FilterLessons(lessons, trimmed)
		}
	default:
		source = sourceSearch
		lessons, err = s.catalog.SearchLessons(ctx, trimmed)
	}
	if err != nil {
		s.metrics.RecordCatalogLoad(source, metrics.OutcomeError)
		s.logger.WithError(err).WithFields(log.Fields{
			"session_id": session.ID,
			"query":      trimmed,
		}).Error("error fetching search results")
		return err
	}

	s.metrics.RecordCatalogLoad(source, metrics.OutcomeSuccess)
	s.replaceLessons(session, lessons)
	session.SearchQuery = query
	return nil
}

// Refresh повторяет текущий поиск (или полную загрузку при пустом запросе).
func (s *Service) Refresh(ctx context.Context, session *domain.Session) error {
	return s.Search(ctx, session, session.SearchQuery)
}

// replaceLessons заменяет рабочий список целиком и вычитает места, уже
// удерживаемые корзиной этого покупателя.
func (s *Service) replaceLessons(session *domain.Session, lessons []domain.Lesson) {
	held := domain.HeldByLesson(session.Cart)
	adjusted := make([]domain.Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		if n := held[lesson.ID.Key()]; n > 0 {
			lesson.Spaces -= n
			if lesson.Spaces < 0 {
				s.logger.WithFields(log.Fields{
					"session_id": session.ID,
					"lesson_id":  lesson.ID.String(),
					"held":       n,
				}).Warn("cart holds more places than backend reports, clamping to zero")
				lesson.Spaces = 0
			}
		}
		adjusted = append(adjusted, lesson)
	}
	session.Lessons = adjusted
	session.CatalogLoaded = true
	session.UpdatedAt = s.now()
}

// AddToCart берёт одно место занятия. При нуле мест возвращает ErrNoSpacesLeft без изменений.
func (s *Service) AddToCart(session *domain.Session, id domain.LessonID) (domain.CartLine, error) {
	idx := session.FindLesson(id)
	if idx < 0 {
		s.metrics.RecordCartAddRejected("not_found")
		return domain.CartLine{}, domain.ErrLessonNotFound
	}

	lesson := &session.Lessons[idx]
	if !lesson.Available() {
		s.metrics.RecordCartAddRejected("no_spaces")
		s.logger.WithFields(log.Fields{
			"session_id": session.ID,
			"lesson_id":  id.String(),
			"held":       domain.CountHeld(session.Cart, id),
		}).Info("add to cart rejected: no spaces left")
		return domain.CartLine{}, domain.ErrNoSpacesLeft
	}

	// Снимок берётся до списания места.
	line := domain.NewCartLine(s.newLineID(), *lesson, s.now())
	lesson.Spaces--
	session.Cart = append(session.Cart, line)
	session.UpdatedAt = line.AddedAt

	s.metrics.RecordCartLineAdded()
	return line, nil
}

// RemoveFromCart удаляет ровно одну строку по lineId и возвращает место занятию,
// если оно ещё есть в рабочем списке.
func (s *Service) RemoveFromCart(session *domain.Session, lineID string) error {
	idx := session.FindLine(lineID)
	if idx < 0 {
		return domain.ErrCartLineNotFound
	}

	removed := session.Cart[idx]
	cart := make([]domain.CartLine, 0, len(session.Cart)-1)
	cart = append(cart, session.Cart[:idx]...)
	cart = append(cart, session.Cart[idx+1:]...)
	session.Cart = cart

	if li := session.FindLesson(removed.Lesson.ID); li >= 0 {
		session.Lessons[li].Spaces++
	}
	session.UpdatedAt = s.now()

	s.metrics.RecordCartLineRemoved()
	return nil
}

// SubmitOrder оформляет заказ. При любой ошибке корзина и контакты не меняются.
func (s *Service) SubmitOrder(ctx context.Context, session *domain.Session) error {
	logger := s.logger.WithField("session_id", session.ID)

	order, errs := domain.NewOrder(session.Name, session.Phone, session.Cart)
	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.metrics.RecordOrderFailed("validation")
		logger.WithError(err).Info("order rejected by validation")
		return err
	}

	total := domain.CartTotal(session.Cart)
	if err := s.catalog.SubmitOrder(ctx, order); err != nil {
		s.metrics.RecordOrderFailed("backend")
		logger.WithError(err).Error("error submitting order")
		s.publish(ctx, domain.OrderEvent{
			Type:      domain.OrderEventFailed,
			SessionID: session.ID,
			Lines:     order.Lines,
			Total:     total,
			Reason:    err.Error(),
			At:        s.now(),
		})
		return err
	}

	s.metrics.RecordOrderSubmitted()
	logger.WithFields(log.Fields{
		"lines":    len(order.Lines),
		"quantity": order.Quantity(),
	}).Info("order submitted")

	if s.opts.PushCapacityUpdates {
		s.pushCapacity(ctx, session, order, logger)
	}

	session.CompleteOrder()
	session.UpdatedAt = s.now()

	s.publish(ctx, domain.OrderEvent{
		Type:      domain.OrderEventSubmitted,
		SessionID: session.ID,
		Lines:     order.Lines,
		Total:     total,
		At:        s.now(),
	})

	// Ошибка перезагрузки уже залогирована; заказ принят, каталог останется прежним.
	_ = s.Refresh(ctx, session)
	return nil
}

// pushCapacity отправляет бэкенду оставшиеся места: снимок первой строки корзины
// по занятию минус заказанное количество. Ошибки не отменяют принятый заказ.
func (s *Service) pushCapacity(ctx context.Context, session *domain.Session, order domain.Order, logger *log.Entry) {
	snapshots := make(map[string]domain.Lesson, len(order.Lines))
	for _, line := range session.Cart {
		key := line.Lesson.ID.Key()
		if _, ok := snapshots[key]; !ok {
			snapshots[key] = line.Lesson
		}
	}

	for _, line := range order.Lines {
		snapshot, ok := snapshots[line.LessonID.Key()]
		if !ok {
			continue
		}
		spaces := snapshot.Spaces - line.Quantity
		if spaces < 0 {
			spaces = 0
		}
		if err := s.catalog.UpdateSpaces(ctx, line.LessonID, spaces); err != nil {
			s.metrics.RecordCapacityUpdateFailed()
			logger.WithError(err).WithField("lesson_id", line.LessonID.String()).Error("error updating lesson spaces")
			continue
		}
		logger.WithFields(log.Fields{
			"lesson_id": line.LessonID.String(),
			"spaces":    spaces,
		}).Debug("lesson spaces updated")
	}
}

func (s *Service) publish(ctx context.Context, event domain.OrderEvent) {
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event_type", string(event.Type)).Warn("failed to publish order event")
	}
}
