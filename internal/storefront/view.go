package storefront

import "github.com/vladislavdragonenkov/lessonshop/internal/domain"

// LessonView — занятие с производными полями для отображения.
type LessonView struct {
	domain.Lesson
	Stars  []domain.Star `json:"stars"`
	CanAdd bool          `json:"canAdd"`
}

// View — производное представление сессии. Пересчитывается явно после каждой
// изменяющей операции, а не хранится.
type View struct {
	Lessons          []LessonView         `json:"lessons"`
	Cart             []domain.CartLine    `json:"cart"`
	CartTotal        float64              `json:"cartTotal"`
	CartItemCount    int                  `json:"cartItemCount"`
	CanCheckout      bool                 `json:"canCheckout"`
	NameValid        bool                 `json:"nameValid"`
	PhoneValid       bool                 `json:"phoneValid"`
	IsCartPage       bool                 `json:"isCartPage"`
	ShowConfirmation bool                 `json:"showConfirmation"`
	SearchQuery      string               `json:"searchQuery"`
	SortKey          domain.SortKey       `json:"sortKey"`
	SortDirection    domain.SortDirection `json:"sortDirection"`
	Name             string               `json:"name"`
	Phone            string               `json:"phone"`
	Notice           string               `json:"notice,omitempty"`
}

// BuildView пересчитывает представление из состояния сессии.
func BuildView(session *domain.Session) View {
	sorted := domain.SortLessons(session.Lessons, session.SortKey, session.SortDirection)
	lessons := make([]LessonView, 0, len(sorted))
	for _, lesson := range sorted {
		lessons = append(lessons, LessonView{
			Lesson: lesson,
			Stars:  domain.Stars(lesson.Rating),
			CanAdd: lesson.Available(),
		})
	}

	cart := session.Cart
	if cart == nil {
		cart = []domain.CartLine{}
	}

	return View{
		Lessons:          lessons,
		Cart:             cart,
		CartTotal:        domain.CartTotal(session.Cart),
		CartItemCount:    len(session.Cart),
		CanCheckout:      session.CanCheckout(),
		NameValid:        domain.ValidateName(session.Name),
		PhoneValid:       domain.ValidatePhone(session.Phone),
		IsCartPage:       session.IsCartPage,
		ShowConfirmation: session.ShowConfirmation,
		SearchQuery:      session.SearchQuery,
		SortKey:          session.SortKey,
		SortDirection:    session.SortDirection,
		Name:             session.Name,
		Phone:            session.Phone,
	}
}
