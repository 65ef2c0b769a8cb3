package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleSession(id string) *domain.Session {
	s := domain.NewSession(id, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Lessons = []domain.Lesson{
		{ID: domain.NewLessonID("65a1"), Title: "Math", Price: 100, Spaces: 4},
	}
	s.Cart = []domain.CartLine{
		domain.NewCartLine("line-1", domain.Lesson{ID: domain.NumericLessonID(7), Title: "Art", Spaces: 2}, s.UpdatedAt),
	}
	s.SearchQuery = "ma"
	s.SortKey = domain.SortKeyPrice
	s.SortDirection = domain.SortDesc
	s.Name = "Jane"
	return s
}

func TestSessionRepository_RoundTrip(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewSessionRepository(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSession("abc")))
	assert.True(t, mr.Exists(KeyPrefix+"abc"))
	assert.Equal(t, time.Hour, mr.TTL(KeyPrefix+"abc"))

	stored, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Jane", stored.Name)
	assert.Equal(t, domain.SortKeyPrice, stored.SortKey)
	require.Len(t, stored.Lessons, 1)
	assert.True(t, stored.Lessons[0].ID.Equal(domain.NewLessonID("65a1")))
	require.Len(t, stored.Cart, 1)
	assert.Equal(t, "line-1", stored.Cart[0].LineID)
	assert.Equal(t, "7", stored.Cart[0].Lesson.ID.String())
}

func TestSessionRepository_Missing(t *testing.T) {
	_, client := setupRedis(t)
	repo := NewSessionRepository(client, time.Hour)

	_, err := repo.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestSessionRepository_Expires(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewSessionRepository(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSession("abc")))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, "abc")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestSessionRepository_CorruptValue(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewSessionRepository(client, time.Hour)
	require.NoError(t, mr.Set(KeyPrefix+"bad", "{not json"))

	_, err := repo.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestSessionRepository_DeleteAndCount(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewSessionRepository(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSession("a")))
	require.NoError(t, repo.Save(ctx, sampleSession("b")))
	require.NoError(t, mr.Set("other:key", "x"))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.Delete(ctx, "a"))
	require.NoError(t, repo.Delete(ctx, "a"))
	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSessionRepository_PingFailsWhenDown(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewSessionRepository(client, 0)
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))
	mr.Close()
	assert.Error(t, repo.Ping(ctx))
}

func TestNewClient(t *testing.T) {
	mr, _ := setupRedis(t)
	addr := mr.Addr()

	client, err := NewClient(context.Background(), addr)
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = NewClient(context.Background(), addr)
	assert.Error(t, err)
}
