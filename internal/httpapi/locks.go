package httpapi

import "sync"

// sessionLocks сериализует запросы одной сессии: состояние читается,
// меняется и сохраняется целиком. У каждой сессии свой мьютекс, поэтому
// медленный запрос к бэкенду одного покупателя не задерживает других.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// lock захватывает мьютекс сессии id и возвращает функцию освобождения.
// Запись удаляется из таблицы, когда на неё больше никто не ссылается.
func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
