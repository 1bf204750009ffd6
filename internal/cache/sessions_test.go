package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/repository"
	"github.com/FilipposDe/shopify-fields-app/internal/repository/memory"
)

func newCached(t *testing.T) (*SessionRepository, *countingRepo) {
	t.Helper()
	counting := &countingRepo{next: memory.NewRepositories().Session}
	repo, err := NewSessionRepository(counting, DefaultConfig(time.Minute), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repo, counting
}

func TestSessionRepository_LoadIsCached(t *testing.T) {
	repo, counting := newCached(t)
	ctx := context.Background()

	session := &domain.Session{ID: "offline_a.myshopify.com", Shop: "a.myshopify.com", AccessToken: "tok"}
	require.NoError(t, repo.Store(ctx, session))

	first, err := repo.Load(ctx, session.ID)
	require.NoError(t, err)
	repo.Wait()

	second, err := repo.Load(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, "tok", first.AccessToken)
	assert.Equal(t, "tok", second.AccessToken)
	assert.Equal(t, 1, counting.loadCount())
}

func TestSessionRepository_StoreInvalidates(t *testing.T) {
	repo, counting := newCached(t)
	ctx := context.Background()

	session := &domain.Session{ID: "offline_a.myshopify.com", Shop: "a.myshopify.com", AccessToken: "old"}
	require.NoError(t, repo.Store(ctx, session))
	_, err := repo.Load(ctx, session.ID)
	require.NoError(t, err)
	repo.Wait()

	session.AccessToken = "new"
	require.NoError(t, repo.Store(ctx, session))

	loaded, err := repo.Load(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", loaded.AccessToken)
	assert.Equal(t, 2, counting.loadCount())
}

func TestSessionRepository_DeleteByShop(t *testing.T) {
	repo, _ := newCached(t)
	ctx := context.Background()

	session := &domain.Session{ID: "offline_a.myshopify.com", Shop: "a.myshopify.com", AccessToken: "tok"}
	require.NoError(t, repo.Store(ctx, session))
	_, err := repo.Load(ctx, session.ID)
	require.NoError(t, err)
	repo.Wait()

	require.NoError(t, repo.DeleteByShop(ctx, "a.myshopify.com"))
	_, err = repo.Load(ctx, session.ID)
	assert.Error(t, err)
}

func TestSessionRepository_ReturnsCopies(t *testing.T) {
	repo, _ := newCached(t)
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, &domain.Session{ID: "s", Shop: "a.myshopify.com", AccessToken: "tok"}))
	loaded, err := repo.Load(ctx, "s")
	require.NoError(t, err)
	repo.Wait()

	loaded.AccessToken = "mutated"
	again, err := repo.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "tok", again.AccessToken)
}

type countingRepo struct {
	next  repository.SessionRepository
	mu    sync.Mutex
	loads int
}

func (c *countingRepo) Store(ctx context.Context, s *domain.Session) error { return c.next.Store(ctx, s) }
func (c *countingRepo) Delete(ctx context.Context, id string) error       { return c.next.Delete(ctx, id) }
func (c *countingRepo) DeleteByShop(ctx context.Context, shop string) error {
	return c.next.DeleteByShop(ctx, shop)
}

func (c *countingRepo) Load(ctx context.Context, id string) (*domain.Session, error) {
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	return c.next.Load(ctx, id)
}

func (c *countingRepo) loadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}
