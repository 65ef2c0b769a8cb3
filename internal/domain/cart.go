package domain

import "time"

// CartLine — одна выбранная позиция корзины. Каждая строка соответствует
// ровно одному месту, списанному с занятия в момент добавления.
type CartLine struct {
	// LineID генерируется на клиенте и отличает одинаковые строки друг от друга.
	LineID string `json:"lineId"`
	// Lesson — снимок занятия до списания места.
	Lesson  Lesson    `json:"lesson"`
	AddedAt time.Time `json:"addedAt"`
}

// NewCartLine снимает копию занятия для корзины.
func NewCartLine(lineID string, lesson Lesson, now time.Time) CartLine {
	return CartLine{
		LineID:  lineID,
		Lesson:  lesson,
		AddedAt: now,
	}
}

// CountHeld возвращает, сколько строк корзины ссылаются на занятие.
func CountHeld(lines []CartLine, id LessonID) int {
	held := 0
	for _, line := range lines {
		if line.Lesson.ID.Equal(id) {
			held++
		}
	}
	return held
}

// HeldByLesson группирует строки корзины по занятию.
func HeldByLesson(lines []CartLine) map[string]int {
	held := make(map[string]int, len(lines))
	for _, line := range lines {
		held[line.Lesson.ID.Key()]++
	}
	return held
}

// CartTotal суммирует цены строк корзины.
func CartTotal(lines []CartLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.Lesson.Price
	}
	return total
}
