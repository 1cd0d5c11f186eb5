package bakeryapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second)
}

func TestListCakes_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"_id":"a","title":"Truffle"},{"id":"b","title":"Fruit"}]`},
		{"data envelope", `{"data":[{"_id":"a","title":"Truffle"},{"id":"b","title":"Fruit"}]}`},
		{"cakes envelope", `{"success":true,"cakes":[{"_id":"a","title":"Truffle"},{"id":"b","title":"Fruit"}]}`},
		{"nested envelope", `{"data":{"cakes":[{"_id":"a","title":"Truffle"},{"id":"b","title":"Fruit"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/cakes", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})

			cakes, err := c.ListCakes(context.Background())
			require.NoError(t, err)
			require.Len(t, cakes, 2)
			assert.Equal(t, "a", cakes[0].ID)
			assert.Equal(t, "b", cakes[1].ID)
		})
	}
}

func TestGetCake_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Cake not found"}`))
	})

	_, err := c.GetCake(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Cake not found", se.Message)
}

func TestGetCake_Wrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cakes/a", r.URL.Path)
		_, _ = w.Write([]byte(`{"cake":{"_id":"a","title":"Truffle","variants":[{"label":"1 Kg","price":{"originalPrice":500,"discountedPrice":450}}]}}`))
	})

	cake, err := c.GetCake(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Truffle", cake.Title)
	require.Len(t, cake.Variants, 1)
	assert.Equal(t, 450.0, cake.Variants[0].Price.DiscountedPrice)
}

func TestCreateOrder_ExtractsID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"_id", `{"_id":"o1"}`, "o1"},
		{"id", `{"id":"o2"}`, "o2"},
		{"orderId", `{"orderId":"o3"}`, "o3"},
		{"nested order", `{"success":true,"order":{"_id":"o4"}}`, "o4"},
		{"numeric", `{"id":42}`, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				var got models.OrderRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				assert.Equal(t, models.PaymentMethodCOD, got.PaymentMethod)
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(tt.body))
			})

			id, err := c.CreateOrder(context.Background(), &models.OrderRequest{PaymentMethod: models.PaymentMethodCOD})
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestCreateOrder_NoID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	_, err := c.CreateOrder(context.Background(), &models.OrderRequest{})
	assert.ErrorIs(t, err, ErrNoOrderID)
}

func TestCreateOrder_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.CreateOrder(context.Background(), &models.OrderRequest{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "boom", se.Message)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"upstream-token","user":{"_id":"u1","name":"Admin","email":"admin@bakery.test","role":"admin"}}`))
	})

	res, err := c.Login(context.Background(), "admin@bakery.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, "upstream-token", res.Token)
	assert.Equal(t, "Admin", res.User.Name)

	_, err = c.Login(context.Background(), "admin@bakery.test", "wrong")
	assert.True(t, IsUnauthorized(err))
}

func TestAdminCalls_SendBearer(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/orders", "/users", "/contacts":
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	orders, err := c.ListOrders(ctx, "tok")
	require.NoError(t, err)
	assert.Empty(t, orders)
	require.NoError(t, c.UpdateOrderStatus(ctx, "tok", "o1", models.OrderStatusBaking))
	require.NoError(t, c.UpdatePaymentStatus(ctx, "tok", "o1", models.PaymentStatusPaid))
	require.NoError(t, c.DeleteOrder(ctx, "tok", "o1"))
	_, err = c.ListUsers(ctx, "tok")
	require.NoError(t, err)
	require.NoError(t, c.DeleteUser(ctx, "tok", "u1"))
	_, err = c.ListContacts(ctx, "tok")
	require.NoError(t, err)
	require.NoError(t, c.DeleteContact(ctx, "tok", "c1"))
	require.NoError(t, c.DeleteCake(ctx, "tok", "a"))

	assert.Equal(t, []string{
		"GET /orders",
		"PATCH /orders/o1/status",
		"PATCH /orders/o1/payment-status",
		"DELETE /orders/o1",
		"GET /users",
		"DELETE /users/u1",
		"GET /contacts",
		"DELETE /contacts/c1",
		"DELETE /cakes/a",
	}, seen)
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	assert.NoError(t, c.Ping(context.Background()))

	down := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	assert.Error(t, down.Ping(context.Background()))
}
