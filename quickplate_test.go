package quickplate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickplate/quickplate-go/core"
)

// fakeBackendServer serves just enough of the backend API for an
// end-to-end sign-in, browse, checkout pass.
func fakeBackendServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":7,"sapId":"123456","name":"Asha","loyaltyPoints":50}}`))
	})
	mux.HandleFunc("/api/auth/users/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"sapId":"123456","name":"Asha","loyaltyPoints":62}`))
	})
	mux.HandleFunc("/api/meals", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"meals":[
			{"id":"m1","name":"Masala Dosa","category":"Breakfast","price":60,"available":true},
			{"id":"m2","name":"Veg Thali","category":"Lunch","price":120,"available":true}
		]}`))
	})
	mux.HandleFunc("/api/orders/user/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"orders":[]}`))
	})
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		var req core.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := map[string]interface{}{
			"success":      true,
			"pointsEarned": int(req.Total / 10),
			"order": map[string]interface{}{
				"id":     "ORD-1",
				"userId": req.UserID,
				"items":  req.Items,
				"total":  req.Total,
				"status": "Placed",
				"date":   "2026-08-31T12:00:00Z",
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	server := fakeBackendServer(t)

	app, err := New(
		WithBaseURL(server.URL),
		WithLogLevel("error"),
	)
	require.NoError(t, err)
	return app
}

func TestNew_InvalidConfiguration(t *testing.T) {
	_, err := New(WithBaseURL("not a url"))
	assert.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}

func TestApp_OrderingFlow(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	assert.Equal(t, StateAnonymous, app.Start(ctx))
	require.NoError(t, app.Session().SignIn(ctx, "123456", "secret123"))
	assert.Equal(t, StateAuthenticated, app.Session().State())

	meals, err := app.API().ListMeals(ctx, "")
	require.NoError(t, err)
	require.Len(t, meals, 2)

	app.Cart().AddToCart(meals[0], 2)
	app.Cart().AddToCart(meals[1], 1)
	assert.Equal(t, 240.0, app.Cart().Total())

	order, err := app.Checkout(ctx, "12:30", "cash")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", order.ID)
	assert.Equal(t, 240.0, order.Total)

	// cart cleared only after confirmed success
	assert.Zero(t, app.Cart().Count())
	// balance refreshed from the authoritative profile
	assert.Equal(t, 62, app.Session().User().LoyaltyPoints)
	// the order landed at the head of the cached history
	require.NotEmpty(t, app.Session().Orders())
	assert.Equal(t, "ORD-1", app.Session().Orders()[0].ID)
}

func TestApp_CheckoutEmptyCart(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, app.Session().SignIn(ctx, "123456", "secret123"))

	_, err := app.Checkout(ctx, "12:30", "cash")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestApp_CheckoutAppliesOfferDiscount(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, app.Session().SignIn(ctx, "123456", "secret123"))

	meals, err := app.API().ListMeals(ctx, "")
	require.NoError(t, err)

	app.Cart().AddToCart(meals[0], 1) // 60
	app.Cart().ApplyOffer(core.Offer{ID: "offer-1", PointsRequired: 30, DiscountAmount: 25})

	order, err := app.Checkout(ctx, "12:30", "cash")
	require.NoError(t, err)

	assert.Equal(t, 35.0, order.Total)
	assert.Nil(t, app.Cart().ActiveOffer(), "offer consumed with the checkout")
}
