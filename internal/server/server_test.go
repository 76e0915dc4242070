package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/settleio/settle/internal/domain"
	"github.com/settleio/settle/internal/gateway"
	"github.com/settleio/settle/internal/payments"
	"github.com/settleio/settle/internal/reconcile"
	"github.com/settleio/settle/internal/store"
)

const testWebhookSecret = "whsec_test_server_secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// testServer bundles the server with the collaborators tests assert on.
type testServer struct {
	*Server
	st *store.Store
	gw *gateway.FakeGateway
}

// newTestServer wires a Server to a real SQLite store and a fake gateway.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	gw := gateway.NewFake()
	pay := payments.New(st, gw, "inr", nil)
	rec := reconcile.New(st, nil)

	return &testServer{
		Server: New(st, pay, rec, testWebhookSecret, nil),
		st:     st,
		gw:     gw,
	}
}

// seedPendingOrder inserts a product and a PENDING order with the given
// payment-intent reference already attached.
func (ts *testServer) seedPendingOrder(t *testing.T, orderID, paymentRef string) {
	t.Helper()
	ctx := context.Background()
	_, err := ts.st.CreateProduct(ctx, domain.Product{ID: "prod-" + orderID, Name: "widget", Price: 5000})
	require.NoError(t, err)
	_, err = ts.st.CreateOrder(ctx, domain.Order{ID: orderID, ProductID: "prod-" + orderID})
	require.NoError(t, err)
	require.NoError(t, ts.st.SetPaymentRef(ctx, orderID, paymentRef))
}
