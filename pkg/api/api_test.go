package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordersvc/pkg/logger"
	"ordersvc/pkg/metrics"
	"ordersvc/pkg/order"
	"ordersvc/pkg/order/memory"
)

type fakePublisher struct {
	published []order.Order
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, o order.Order) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, o)
	return nil
}

func newTestServer(t *testing.T, pub order.Publisher, policy order.PublishFailurePolicy) *httptest.Server {
	t.Helper()
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	svc := order.NewService(memory.New(), pub, log, metrics.NewRegistry(), policy)
	ts := httptest.NewServer(New(svc, log, metrics.NewRegistry(), Options{}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeOrder(t *testing.T, resp *http.Response) order.Order {
	t.Helper()
	var o order.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&o))
	return o
}

func TestLiveness(t *testing.T) {
	ts := newTestServer(t, &fakePublisher{}, order.PublishFailureIgnore)

	resp := do(t, http.MethodGet, ts.URL+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestOrderLifecycle(t *testing.T) {
	pub := &fakePublisher{}
	ts := newTestServer(t, pub, order.PublishFailureIgnore)

	// Create.
	resp := do(t, http.MethodPost, ts.URL+"/orders", `{"item":"Keyboard","quantity":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeOrder(t, resp)
	assert.Equal(t, order.Order{ID: 1, Item: "Keyboard", Quantity: 2}, created)
	require.Len(t, pub.published, 1)
	assert.Equal(t, created, pub.published[0])

	// Get returns the same object.
	resp = do(t, http.MethodGet, ts.URL+"/orders/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, decodeOrder(t, resp))

	// Patch replaces item and quantity under the same id.
	resp = do(t, http.MethodPatch, ts.URL+"/orders/1", `{"item":"Mouse","quantity":5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, order.Order{ID: 1, Item: "Mouse", Quantity: 5}, decodeOrder(t, resp))

	// Delete succeeds once, 404 after.
	resp = do(t, http.MethodDelete, ts.URL+"/orders/1", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodDelete, ts.URL+"/orders/1", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/orders/1", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// No events beyond create.
	assert.Len(t, pub.published, 1)
}

func TestListOrders(t *testing.T) {
	ts := newTestServer(t, &fakePublisher{}, order.PublishFailureIgnore)

	// Empty store lists as an empty array, not null.
	resp := do(t, http.MethodGet, ts.URL+"/orders", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(raw)))

	for i := 0; i < 3; i++ {
		resp := do(t, http.MethodPost, ts.URL+"/orders", `{"item":"Item","quantity":1}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp = do(t, http.MethodGet, ts.URL+"/orders", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []order.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	require.Len(t, orders, 3)
	seen := map[int64]bool{}
	for _, o := range orders {
		assert.False(t, seen[o.ID], "each id listed once")
		seen[o.ID] = true
	}
}

func TestNotFoundBody(t *testing.T) {
	ts := newTestServer(t, &fakePublisher{}, order.PublishFailureIgnore)

	resp := do(t, http.MethodGet, ts.URL+"/orders/999", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Order not found", body["detail"])

	resp = do(t, http.MethodPatch, ts.URL+"/orders/999", `{"item":"x","quantity":1}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMalformedRequestsRejected(t *testing.T) {
	ts := newTestServer(t, &fakePublisher{}, order.PublishFailureIgnore)

	resp := do(t, http.MethodPost, ts.URL+"/orders", `{"item":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/orders", `{"item":"x","quantity":"two"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPublishFailurePolicies(t *testing.T) {
	// ignore: the create succeeds and the order is durably stored.
	ts := newTestServer(t, &fakePublisher{err: errors.New("broker gone")}, order.PublishFailureIgnore)
	resp := do(t, http.MethodPost, ts.URL+"/orders", `{"item":"Keyboard","quantity":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeOrder(t, resp)
	resp = do(t, http.MethodGet, ts.URL+"/orders/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, decodeOrder(t, resp))

	// fail: the publish error surfaces as 502, the row still exists.
	ts = newTestServer(t, &fakePublisher{err: errors.New("broker gone")}, order.PublishFailureFail)
	resp = do(t, http.MethodPost, ts.URL+"/orders", `{"item":"Keyboard","quantity":2}`)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp = do(t, http.MethodGet, ts.URL+"/orders/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, &fakePublisher{}, order.PublishFailureIgnore)

	resp := do(t, http.MethodGet, ts.URL+"/", "")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-123")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "req-123", resp2.Header.Get("X-Request-ID"))
}
