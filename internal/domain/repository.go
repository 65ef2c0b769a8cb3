package domain

import "context"

// SessionRepository описывает требования к хранилищу сессий витрины.
type SessionRepository interface {
	// Get возвращает копию сессии или ErrSessionNotFound, если её нет или она истекла.
	Get(ctx context.Context, id string) (*Session, error)
	// Save сохраняет копию сессии, продлевая её срок жизни.
	Save(ctx context.Context, session *Session) error
	// Delete удаляет сессию; отсутствие сессии ошибкой не считается.
	Delete(ctx context.Context, id string) error
}
