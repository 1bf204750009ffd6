package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	apperrors "github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

var testShopifyConfig = config.ShopifyConfig{APIKey: "key", APISecret: "secret", APIVersion: "2021-04"}

func testRetry() RetryPolicy {
	return NewBackoffPolicy(config.RetryConfig{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}, zap.NewNop())
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(testShopifyConfig, "a.myshopify.com", "tok", zap.NewNop(),
		WithBaseURL(srv.URL), WithRetryPolicy(testRetry()))
}

func decodeRequest(t *testing.T, r *http.Request) GraphQLRequest {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var req GraphQLRequest
	require.NoError(t, json.Unmarshal(body, &req))
	return req
}

func TestClient_ProductMetafieldsFiltersNamespace(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2021-04/graphql.json", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get("X-Shopify-Access-Token"))
		req := decodeRequest(t, r)
		assert.Equal(t, domain.AppMetafieldNamespace, req.Variables["namespace"])

		_, _ = io.WriteString(w, `{"data":{"product":{"id":"gid://shopify/Product/1","title":"Shirt","metafields":{"edges":[
			{"node":{"id":"m1","key":"Color","value":"Red","valueType":"STRING","namespace":"custom-fields-shop"}},
			{"node":{"id":"m2","key":"Color","value":"Blue","valueType":"STRING","namespace":"other"}}
		]}}}}`)
	})

	product, err := client.ProductMetafields(context.Background(), "gid://shopify/Product/1")
	require.NoError(t, err)
	assert.Equal(t, "Shirt", product.Title)
	require.Len(t, product.Metafields, 1)
	assert.Equal(t, "m1", product.Metafields["Color"].ID)
}

func TestClient_ProductMetafieldsLimit(t *testing.T) {
	edges := make([]map[string]interface{}, domain.MaxProductMetafields)
	for i := range edges {
		edges[i] = map[string]interface{}{"node": map[string]interface{}{
			"id": "m", "key": "k", "value": "v", "valueType": "STRING", "namespace": domain.AppMetafieldNamespace,
		}}
	}
	payload, err := json.Marshal(map[string]interface{}{"data": map[string]interface{}{
		"product": map[string]interface{}{"id": "p", "title": "t", "metafields": map[string]interface{}{"edges": edges}},
	}})
	require.NoError(t, err)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})

	_, err = client.ProductMetafields(context.Background(), "gid://shopify/Product/1")
	var limit *apperrors.ErrMetafieldLimit
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, "Product exceeded number of metafields.", err.Error())
}

func TestClient_ProductNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"product":null}}`)
	})

	_, err := client.ProductMetafields(context.Background(), "gid://shopify/Product/9")
	var notFound *apperrors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestClient_QueryRetriesTransientFailures(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"products":{"pageInfo":{"hasNextPage":true},"edges":[
			{"cursor":"c1","node":{"id":"p1","title":"One","images":{"edges":[{"node":{"originalSrc":"https://img/1","altText":"alt"}}]}}},
			{"cursor":"c2","node":{"id":"p2","title":"Two","images":{"edges":[]}}}
		]}}}`)
	})

	page, err := client.ListProducts(context.Background(), 10, "", "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.True(t, page.HasNextPage)
	assert.Equal(t, "c2", page.EndCursor)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "https://img/1", page.Products[0].ImageURL)
	assert.Empty(t, page.Products[1].ImageURL)
}

func TestClient_QueryGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListProducts(context.Background(), 10, "", "")
	var remote *apperrors.ErrRemote
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_QueryDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListProducts(context.Background(), 10, "", "")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_MutationsAreNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.DeleteMetafield(context.Background(), "m1")
	var remote *apperrors.ErrRemote
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "metafieldDelete", remote.Op)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_CreateMetafieldsSendsNamespacedInputs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		input := req.Variables["input"].(map[string]interface{})
		assert.Equal(t, "gid://shopify/Product/1", input["id"])
		metafields := input["metafields"].([]interface{})
		require.Len(t, metafields, 1)
		m := metafields[0].(map[string]interface{})
		assert.Equal(t, "Color", m["key"])
		assert.Equal(t, domain.AppMetafieldNamespace, m["namespace"])
		assert.Equal(t, "STRING", m["valueType"])
		_, _ = io.WriteString(w, `{"data":{"productUpdate":{"product":{"id":"gid://shopify/Product/1"},"userErrors":[]}}}`)
	})

	err := client.CreateMetafields(context.Background(), "gid://shopify/Product/1", []domain.MetafieldCreate{
		{Key: "Color", Value: "Red", ValueType: "STRING", Namespace: domain.AppMetafieldNamespace},
	})
	require.NoError(t, err)
}

func TestClient_UserErrorsFailMutation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"productUpdate":{"product":null,"userErrors":[{"field":["metafields"],"message":"Value is invalid"}]}}}`)
	})

	err := client.UpdateMetafields(context.Background(), "gid://shopify/Product/1", []domain.MetafieldUpdate{{ID: "m1", Value: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Value is invalid")
}

func TestClient_RegisterWebhook(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, TopicAppUninstalled, req.Variables["topic"])
		assert.Equal(t, "https://app.example.com/webhooks", req.Variables["callbackUrl"])
		_, _ = io.WriteString(w, `{"data":{"webhookSubscriptionCreate":{"webhookSubscription":{"id":"gid://shopify/WebhookSubscription/7"},"userErrors":[]}}}`)
	})

	id, err := client.RegisterWebhook(context.Background(), TopicAppUninstalled, "https://app.example.com/webhooks")
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/WebhookSubscription/7", id)
}

func TestClient_ForwardRelaysStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"query":"{ shop { name } }"}`, string(body))
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = io.WriteString(w, `{"errors":"Unavailable Shop"}`)
	})

	status, body, err := client.Forward(context.Background(), []byte(`{"query":"{ shop { name } }"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Contains(t, string(body), "Unavailable Shop")
}

func TestProductGID(t *testing.T) {
	gid, err := ProductGID("42")
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Product/42", gid)

	gid, err = ProductGID("gid://shopify/Product/42")
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Product/42", gid)

	_, err = ProductGID("abc")
	assert.Error(t, err)
	_, err = ProductGID("")
	assert.Error(t, err)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&HTTPError{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, IsRetryable(&HTTPError{StatusCode: http.StatusInternalServerError}))
	assert.False(t, IsRetryable(&HTTPError{StatusCode: http.StatusBadRequest}))
	assert.True(t, IsRetryable(GraphQLErrors{{Message: "Throttled"}}))
	assert.False(t, IsRetryable(GraphQLErrors{{Message: "Field 'x' doesn't exist"}}))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(nil))
}
