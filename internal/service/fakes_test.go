package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/metrics"
	"github.com/FilipposDe/shopify-fields-app/internal/repository"
	"github.com/FilipposDe/shopify-fields-app/internal/repository/memory"
	"github.com/FilipposDe/shopify-fields-app/internal/shopify"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

const testShop = "a.myshopify.com"

// fakeAdmin keeps one product's app metafields in memory
type fakeAdmin struct {
	mu        sync.Mutex
	title     string
	records   map[string]domain.RemoteMetafield
	nextID    int
	calls     []string
	failOn    string
	block     chan struct{}
	entered   chan struct{}
	webhooks  []string
	forwarded []byte
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{title: "Shirt", records: map[string]domain.RemoteMetafield{}}
}

func (f *fakeAdmin) record(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	fail := f.failOn == call
	f.mu.Unlock()
	if fail {
		return &errors.ErrRemote{Op: call, Err: fmt.Errorf("boom")}
	}
	return nil
}

func (f *fakeAdmin) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAdmin) ProductMetafields(ctx context.Context, productGID string) (*domain.Product, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if err := f.record("read"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	metafields := make(map[string]domain.RemoteMetafield, len(f.records))
	for k, v := range f.records {
		metafields[k] = v
	}
	return &domain.Product{ID: productGID, Title: f.title, Metafields: metafields}, nil
}

func (f *fakeAdmin) ListProducts(ctx context.Context, first int, after, query string) (*domain.ProductPage, error) {
	if err := f.record(fmt.Sprintf("list:%d:%s:%s", first, after, query)); err != nil {
		return nil, err
	}
	return &domain.ProductPage{Products: []domain.Product{{ID: "gid://shopify/Product/1", Title: f.title}}}, nil
}

func (f *fakeAdmin) UpdateMetafields(ctx context.Context, productGID string, updates []domain.MetafieldUpdate) error {
	if err := f.record("update"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range updates {
		for k, r := range f.records {
			if r.ID == u.ID {
				r.Value = u.Value
				f.records[k] = r
			}
		}
	}
	return nil
}

func (f *fakeAdmin) CreateMetafields(ctx context.Context, productGID string, creates []domain.MetafieldCreate) error {
	if err := f.record("create"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range creates {
		f.nextID++
		f.records[c.Key] = domain.RemoteMetafield{
			ID:        fmt.Sprintf("new-%d", f.nextID),
			Key:       c.Key,
			Value:     c.Value,
			ValueType: c.ValueType,
			Namespace: c.Namespace,
		}
	}
	return nil
}

func (f *fakeAdmin) DeleteMetafield(ctx context.Context, id string) error {
	if err := f.record("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, r := range f.records {
		if r.ID == id {
			delete(f.records, k)
		}
	}
	return nil
}

func (f *fakeAdmin) RegisterWebhook(ctx context.Context, topic, callbackURL string) (string, error) {
	if err := f.record("webhook"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webhooks = append(f.webhooks, topic+" "+callbackURL)
	return "gid://shopify/WebhookSubscription/1", nil
}

func (f *fakeAdmin) Forward(ctx context.Context, body []byte) (int, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwarded = body
	return 200, []byte(`{"data":{}}`), nil
}

func (f *fakeAdmin) factory() AdminAPIFactory {
	return func(*domain.Session) AdminAPI { return f }
}

type fixture struct {
	repos   *repository.Repositories
	admin   *fakeAdmin
	metrics *metrics.Metrics
	session *domain.Session
	shop    *domain.Shop
}

func newFixture(t *testing.T, fields ...*domain.Field) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewRepositories()

	session := &domain.Session{ID: domain.OfflineSessionID(testShop), Shop: testShop, AccessToken: "tok"}
	require.NoError(t, repos.Session.Store(ctx, session))
	require.NoError(t, repos.Shop.SetActive(ctx, testShop, true))
	shop, err := repos.Shop.GetByDomain(ctx, testShop)
	require.NoError(t, err)

	for _, f := range fields {
		require.NoError(t, repos.Field.Create(ctx, shop.ID, f))
	}

	return &fixture{
		repos:   repos,
		admin:   newFakeAdmin(),
		metrics: metrics.New(),
		session: session,
		shop:    shop,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Host: "https://app.example.com",
		Shopify: config.ShopifyConfig{
			APIKey:     "key",
			APISecret:  "secret",
			Scopes:     []string{"read_products", "write_products"},
			APIVersion: "2021-04",
		},
	}
}

var _ TokenExchanger = (*shopify.OAuthClient)(nil)

var nopLogger = zap.NewNop()
