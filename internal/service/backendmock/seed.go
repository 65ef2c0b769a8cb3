package backendmock

import "github.com/vladislavdragonenkov/lessonshop/internal/domain"

// SeedLessons возвращает каталог занятий по умолчанию.
func SeedLessons() []domain.Lesson {
	return []domain.Lesson{
		{ID: domain.NumericLessonID(1), Title: "Math", Location: "Hendon", Price: 100, Spaces: 5, Rating: 4.5, Icon: "fa-calculator"},
		{ID: domain.NumericLessonID(2), Title: "English", Location: "Colindale", Price: 80, Spaces: 5, Rating: 4, Icon: "fa-book"},
		{ID: domain.NumericLessonID(3), Title: "Science", Location: "Brent Cross", Price: 90, Spaces: 5, Rating: 3.5, Icon: "fa-flask"},
		{ID: domain.NumericLessonID(4), Title: "Music", Location: "Golders Green", Price: 70, Spaces: 5, Rating: 5, Icon: "fa-music"},
		{ID: domain.NumericLessonID(5), Title: "Art", Location: "Hendon", Price: 60, Spaces: 5, Rating: 3, Icon: "fa-palette"},
		{ID: domain.NumericLessonID(6), Title: "History", Location: "Mill Hill", Price: 75, Spaces: 5, Rating: 4, Icon: "fa-landmark"},
		{ID: domain.NumericLessonID(7), Title: "Geography", Location: "Colindale", Price: 65, Spaces: 5, Rating: 2.5, Icon: "fa-globe"},
		{ID: domain.NumericLessonID(8), Title: "Coding", Location: "Brent Cross", Price: 120, Spaces: 5, Rating: 5, Icon: "fa-laptop-code"},
		{ID: domain.NumericLessonID(9), Title: "Drama", Location: "Golders Green", Price: 55, Spaces: 5, Rating: 3.5, Icon: "fa-masks-theater"},
		{ID: domain.NumericLessonID(10), Title: "Chess", Location: "Mill Hill", Price: 50, Spaces: 5, Rating: 4.5, Icon: "fa-chess"},
	}
}
