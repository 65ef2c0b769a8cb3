package domain

import (
	"regexp"
)

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z\s]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// ValidateName проверяет, что имя состоит только из латинских букв и пробелов.
func ValidateName(name string) bool {
	return namePattern.MatchString(name)
}

// ValidatePhone проверяет, что телефон состоит ровно из 10 цифр.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// OrderFormat задаёт форму тела запроса POST /order.
type OrderFormat string

const (
	// OrderFormatQuantities — {name, phone, lessons:[{lessonId, quantity}]}.
	OrderFormatQuantities OrderFormat = "quantities"
	// OrderFormatIDs — {name, phone, lessonIds:[...]}, один id на каждое место.
	OrderFormatIDs OrderFormat = "ids"
)

// Valid проверяет, что формат поддерживается.
func (f OrderFormat) Valid() bool {
	switch f {
	case OrderFormatQuantities, OrderFormatIDs:
		return true
	default:
		return false
	}
}

// OrderLine — количество мест по одному занятию.
type OrderLine struct {
	LessonID LessonID `json:"lessonId"`
	Quantity int      `json:"quantity"`
}

// Order собирается только в момент оформления и не хранится после запроса.
type Order struct {
	Name  string
	Phone string
	Lines []OrderLine
}

// NewOrder проверяет контактные данные и корзину, агрегирует строки по занятию.
// Возвращает все найденные нарушения сразу.
func NewOrder(name, phone string, cart []CartLine) (Order, []error) {
	var errs []error

	if !ValidateName(name) {
		errs = append(errs, ErrInvalidName)
	}
	if !ValidatePhone(phone) {
		errs = append(errs, ErrInvalidPhone)
	}
	if len(cart) == 0 {
		errs = append(errs, ErrCartEmpty)
	}
	if len(errs) > 0 {
		return Order{}, errs
	}

	return Order{
		Name:  name,
		Phone: phone,
		Lines: AggregateLines(cart),
	}, nil
}

// AggregateLines считает количество мест на каждое занятие в порядке первого появления.
func AggregateLines(cart []CartLine) []OrderLine {
	index := make(map[string]int, len(cart))
	lines := make([]OrderLine, 0, len(cart))
	for _, item := range cart {
		key := item.Lesson.ID.Key()
		if i, ok := index[key]; ok {
			lines[i].Quantity++
			continue
		}
		index[key] = len(lines)
		lines = append(lines, OrderLine{LessonID: item.Lesson.ID, Quantity: 1})
	}
	return lines
}

// Quantity возвращает суммарное количество мест в заказе.
func (o Order) Quantity() int {
	total := 0
	for _, line := range o.Lines {
		total += line.Quantity
	}
	return total
}

type orderWithQuantities struct {
	Name    string      `json:"name"`
	Phone   string      `json:"phone"`
	Lessons []OrderLine `json:"lessons"`
}

type orderWithIDs struct {
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	LessonIDs []LessonID `json:"lessonIds"`
}

// Payload формирует тело запроса в выбранном формате.
func (o Order) Payload(format OrderFormat) any {
	if format == OrderFormatIDs {
		ids := make([]LessonID, 0, o.Quantity())
		for _, line := range o.Lines {
			for i := 0; i < line.Quantity; i++ {
				ids = append(ids, line.LessonID)
			}
		}
		return orderWithIDs{Name: o.Name, Phone: o.Phone, LessonIDs: ids}
	}
	return orderWithQuantities{Name: o.Name, Phone: o.Phone, Lessons: o.Lines}
}

// CapacityUpdate — тело PUT /update/<id>.
type CapacityUpdate struct {
	UpdateFields CapacityFields `json:"updateFields"`
}

// CapacityFields — изменяемые поля занятия.
type CapacityFields struct {
	Spaces int `json:"spaces"`
}
