package domain

import "time"

// Session — явное состояние витрины одного покупателя. Принадлежит HTTP-слою,
// передаётся в загрузчик каталога и корзину по указателю.
type Session struct {
	ID string `json:"id"`
	// Lessons — рабочий список занятий; заменяется целиком при каждой загрузке.
	Lessons       []Lesson      `json:"lessons"`
	CatalogLoaded bool          `json:"catalogLoaded"`
	Cart          []CartLine    `json:"cart"`
	SearchQuery   string        `json:"searchQuery"`
	SortKey       SortKey       `json:"sortKey"`
	SortDirection SortDirection `json:"sortDirection"`
	IsCartPage    bool          `json:"isCartPage"`
	Name          string        `json:"name"`
	Phone         string        `json:"phone"`
	// ShowConfirmation выставляется после успешного заказа до явного закрытия.
	ShowConfirmation bool      `json:"showConfirmation"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NewSession возвращает состояние по умолчанию.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Lessons:   []Lesson{},
		Cart:      []CartLine{},
		UpdatedAt: now,
	}
}

// Clone возвращает глубокую копию, чтобы хранилища не делили срезы с вызывающим кодом.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Lessons = append([]Lesson(nil), s.Lessons...)
	out.Cart = append([]CartLine(nil), s.Cart...)
	return &out
}

// FindLesson возвращает индекс занятия в рабочем списке или -1.
func (s *Session) FindLesson(id LessonID) int {
	for i := range s.Lessons {
		if s.Lessons[i].ID.Equal(id) {
			return i
		}
	}
	return -1
}

// FindLine возвращает индекс строки корзины по lineId или -1.
func (s *Session) FindLine(lineID string) int {
	for i := range s.Cart {
		if s.Cart[i].LineID == lineID {
			return i
		}
	}
	return -1
}

// CanCheckout истинно, когда имя и телефон валидны и в корзине есть хотя бы одна строка.
func (s *Session) CanCheckout() bool {
	return ValidateName(s.Name) && ValidatePhone(s.Phone) && len(s.Cart) > 0
}

// SortBy запоминает сортировку; применяется при пересчёте представления.
func (s *Session) SortBy(key SortKey, dir SortDirection) error {
	if !key.Valid() {
		return ErrInvalidSortKey
	}
	if !dir.Valid() {
		return ErrInvalidSortDirection
	}
	s.SortKey = key
	s.SortDirection = dir
	return nil
}

// SetContact сохраняет контактные данные как есть; проверка выполняется при оформлении.
func (s *Session) SetContact(name, phone string) {
	s.Name = name
	s.Phone = phone
}

// ToggleCartPage переключает страницу корзины, только если корзина не пуста
// или корзина уже открыта.
func (s *Session) ToggleCartPage() {
	if len(s.Cart) > 0 || s.IsCartPage {
		s.IsCartPage = !s.IsCartPage
	}
}

// DismissConfirmation скрывает подтверждение заказа.
func (s *Session) DismissConfirmation() {
	s.ShowConfirmation = false
}

// CompleteOrder сбрасывает корзину и контакты после принятого заказа.
func (s *Session) CompleteOrder() {
	s.Cart = []CartLine{}
	s.Name = ""
	s.Phone = ""
	s.ShowConfirmation = true
	s.IsCartPage = false
}
