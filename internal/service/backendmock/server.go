// Package backendmock реализует эталонный бэкенд занятий в памяти для локального запуска и тестов.
package backendmock

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
)

// Endpoint именует эндпоинт для принудительных отказов.
type Endpoint string

const (
	EndpointData   Endpoint = "data"
	EndpointSearch Endpoint = "search"
	EndpointOrder  Endpoint = "order"
	EndpointUpdate Endpoint = "update"
)

// ReceivedOrder — заказ в том виде, в каком его прислал клиент.
type ReceivedOrder struct {
	Name      string             `json:"name"`
	Phone     string             `json:"phone"`
	Lessons   []domain.OrderLine `json:"lessons,omitempty"`
	LessonIDs []domain.LessonID  `json:"lessonIds,omitempty"`
}

// SpacesUpdate — принятое обновление мест.
type SpacesUpdate struct {
	LessonID string
	Spaces   int
}

// Server хранит каталог и принятые запросы.
type Server struct {
	mu       sync.RWMutex
	lessons  []domain.Lesson
	orders   []ReceivedOrder
	updates  []SpacesUpdate
	failures map[Endpoint]int
	logger   *log.Entry
}

// NewServer создаёт бэкенд с переданным каталогом или каталогом по умолчанию при nil.
func NewServer(lessons []domain.Lesson, logger *log.Entry) *Server {
	if lessons == nil {
		lessons = SeedLessons()
	}
	if logger == nil {
		logger = log.WithField("component", "lesson-backend")
	}
	return &Server{
		lessons:  append([]domain.Lesson(nil), lessons...),
		failures: make(map[Endpoint]int),
		logger:   logger,
	}
}

// Handler возвращает роутер с эндпоинтами бэкенда.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/data", s.handleData).Methods(http.MethodGet)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/order", s.handleOrder).Methods(http.MethodPost)
	r.HandleFunc("/update/{id}", s.handleUpdate).Methods(http.MethodPut)
	return r
}

// FailWith заставляет эндпоинт отвечать status; 0 снимает отказ.
func (s *Server) FailWith(endpoint Endpoint, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, endpoint)
		return
	}
	s.failures[endpoint] = status
}

// Lessons возвращает копию каталога.
func (s *Server) Lessons() []domain.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Lesson(nil), s.lessons...)
}

// Orders возвращает принятые заказы.
func (s *Server) Orders() []ReceivedOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ReceivedOrder(nil), s.orders...)
}

// Updates возвращает принятые обновления мест.
func (s *Server) Updates() []SpacesUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]SpacesUpdate(nil), s.updates...)
}

// SetSpaces меняет места занятия напрямую, как это сделал бы другой покупатель.
func (s *Server) SetSpaces(id domain.LessonID, spaces int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lessons {
		if s.lessons[i].ID.Equal(id) {
			s.lessons[i].Spaces = spaces
			return true
		}
	}
	return false
}

func (s *Server) failure(endpoint Endpoint) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failures[endpoint]
}

func (s *Server) handleData(w http.ResponseWriter, _ *http.Request) {
	if status := s.failure(EndpointData); status != 0 {
		http.Error(w, "lessons are unavailable", status)
		return
	}
	writeJSON(w, http.StatusOK, s.Lessons())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if status := s.failure(EndpointSearch); status != 0 {
		http.Error(w, "search is unavailable", status)
		return
	}

	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	result := make([]domain.Lesson, 0)
	for _, lesson := range s.Lessons() {
		if query == "" ||
			strings.Contains(strings.ToLower(lesson.Title), query) ||
			strings.Contains(strings.ToLower(lesson.Location), query) {
			result = append(result, lesson)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if status := s.failure(EndpointOrder); status != 0 {
		http.Error(w, "order was not saved", status)
		return
	}

	var order ReceivedOrder
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		http.Error(w, "invalid order body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(order.Name) == "" || strings.TrimSpace(order.Phone) == "" {
		http.Error(w, "name and phone are required", http.StatusBadRequest)
		return
	}
	if len(order.Lessons) == 0 && len(order.LessonIDs) == 0 {
		http.Error(w, "order has no lessons", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.orders = append(s.orders, order)
	s.mu.Unlock()

	s.logger.WithFields(log.Fields{
		"name":    order.Name,
		"lessons": len(order.Lessons) + len(order.LessonIDs),
	}).Info("order saved")
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Order saved"})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if status := s.failure(EndpointUpdate); status != 0 {
		http.Error(w, "lesson was not updated", status)
		return
	}

	id := domain.ParseLessonID(mux.Vars(r)["id"])
	var body domain.CapacityUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid update body", http.StatusBadRequest)
		return
	}
	if body.UpdateFields.Spaces < 0 {
		http.Error(w, "spaces must not be negative", http.StatusBadRequest)
		return
	}

	if !s.SetSpaces(id, body.UpdateFields.Spaces) {
		http.Error(w, "lesson not found", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	s.updates = append(s.updates, SpacesUpdate{LessonID: id.String(), Spaces: body.UpdateFields.Spaces})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Lesson updated"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
