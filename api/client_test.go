package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quickplate/quickplate-go/core"
)

// mockLogger implements core.Logger for testing
type mockLogger struct {
	logs []string
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {
	m.logs = append(m.logs, "DEBUG: "+msg)
}

func (m *mockLogger) Info(msg string, fields map[string]interface{}) {
	m.logs = append(m.logs, "INFO: "+msg)
}

func (m *mockLogger) Warn(msg string, fields map[string]interface{}) {
	m.logs = append(m.logs, "WARN: "+msg)
}

func (m *mockLogger) Error(msg string, fields map[string]interface{}) {
	m.logs = append(m.logs, "ERROR: "+msg)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseURL: server.URL,
		Logger:  &mockLogger{},
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, server
}

func TestNewClient(t *testing.T) {
	t.Run("requires base URL", func(t *testing.T) {
		_, err := NewClient(ClientOptions{})
		if !errors.Is(err, core.ErrMissingConfiguration) {
			t.Errorf("error = %v, want ErrMissingConfiguration", err)
		}
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		client, err := NewClient(ClientOptions{BaseURL: "http://localhost:3000/"})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.baseURL != "http://localhost:3000" {
			t.Errorf("baseURL = %q, want trailing slash removed", client.baseURL)
		}
	})

	t.Run("defaults timeout", func(t *testing.T) {
		client, err := NewClient(ClientOptions{BaseURL: "http://localhost:3000"})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.httpClient.Timeout != core.DefaultRequestTimeout {
			t.Errorf("timeout = %v, want %v", client.httpClient.Timeout, core.DefaultRequestTimeout)
		}
	})
}

func TestClient_RequestHeaders(t *testing.T) {
	var gotRequest *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r.Clone(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":1,"sapId":"123456","name":"Asha"}}`))
	})

	if _, err := client.Login(context.Background(), "123456", "secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if gotRequest.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotRequest.Header.Get("Content-Type"))
	}
	if gotRequest.Header.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotRequest.Header.Get("Accept"))
	}
	if gotRequest.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
	if got := gotRequest.Header.Get("User-Agent"); got != "quickplate-go/"+core.Version {
		t.Errorf("User-Agent = %q, want quickplate-go/%s", got, core.Version)
	}
}

func TestClient_Login(t *testing.T) {
	tests := []struct {
		name           string
		serverStatus   int
		serverResponse string
		wantErr        error
		wantMessage    string
		wantName       string
	}{
		{
			name:           "successful login",
			serverStatus:   http.StatusOK,
			serverResponse: `{"success":true,"user":{"id":7,"sapId":"123456","name":"Asha","loyaltyPoints":50}}`,
			wantName:       "Asha",
		},
		{
			name:           "invalid credentials carry server text",
			serverStatus:   http.StatusUnauthorized,
			serverResponse: `{"error":"Invalid SAP ID or password"}`,
			wantErr:        core.ErrUnauthorized,
			wantMessage:    "Invalid SAP ID or password",
		},
		{
			name:           "unknown user",
			serverStatus:   http.StatusNotFound,
			serverResponse: `{"error":"User not found"}`,
			wantErr:        core.ErrNotFound,
			wantMessage:    "User not found",
		},
		{
			name:           "rejection without parsable body",
			serverStatus:   http.StatusBadRequest,
			serverResponse: `boom`,
			wantErr:        core.ErrServerRejected,
			wantMessage:    "API request failed (status 400)",
		},
		{
			name:           "success envelope without user",
			serverStatus:   http.StatusOK,
			serverResponse: `{"success":true}`,
			wantErr:        core.ErrRequestFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				if r.URL.Path != "/api/auth/login" {
					t.Errorf("path = %s, want /api/auth/login", r.URL.Path)
				}
				var body map[string]string
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("decode request: %v", err)
				}
				if body["sapId"] != "123456" || body["password"] != "secret123" {
					t.Errorf("request body = %v", body)
				}
				w.WriteHeader(tt.serverStatus)
				_, _ = w.Write([]byte(tt.serverResponse))
			})

			user, err := client.Login(context.Background(), "123456", "secret123")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				var clientErr *core.ClientError
				if tt.wantMessage != "" {
					if !errors.As(err, &clientErr) {
						t.Fatalf("error %v is not a *core.ClientError", err)
					}
					if clientErr.Message != tt.wantMessage {
						t.Errorf("message = %q, want %q", clientErr.Message, tt.wantMessage)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if user.Name != tt.wantName {
				t.Errorf("user.Name = %q, want %q", user.Name, tt.wantName)
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success":true,"meals":[]}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{
		BaseURL: server.URL,
		Timeout: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.ListMeals(context.Background(), "")
	if !errors.Is(err, core.ErrRequestTimeout) {
		t.Fatalf("error = %v, want ErrRequestTimeout", err)
	}
	if !core.IsTimeout(err) {
		t.Error("IsTimeout() = false, want true")
	}

	var clientErr *core.ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("error %v is not a *core.ClientError", err)
	}
	if clientErr.Kind != "timeout" {
		t.Errorf("kind = %q, want timeout", clientErr.Kind)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client, err := NewClient(ClientOptions{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.ListMeals(context.Background(), "")
	if !errors.Is(err, core.ErrConnectionFailed) {
		t.Fatalf("error = %v, want ErrConnectionFailed", err)
	}
	if core.IsTimeout(err) {
		t.Error("IsTimeout() = true for a connection failure")
	}
}

func TestClient_ListMeals(t *testing.T) {
	tests := []struct {
		name      string
		category  core.MealCategory
		wantQuery string
	}{
		{name: "all categories", category: "", wantQuery: ""},
		{name: "filtered", category: core.CategoryLunch, wantQuery: "Lunch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/meals" {
					t.Errorf("path = %s, want /api/meals", r.URL.Path)
				}
				if got := r.URL.Query().Get("category"); got != tt.wantQuery {
					t.Errorf("category query = %q, want %q", got, tt.wantQuery)
				}
				_, _ = w.Write([]byte(`{"success":true,"meals":[
					{"id":"m1","name":"Masala Dosa","category":"Breakfast","price":60,"available":true,"prepTime":10},
					{"id":"m2","name":"Veg Thali","category":"Lunch","price":120,"available":true,"prepTime":15}
				]}`))
			})

			meals, err := client.ListMeals(context.Background(), tt.category)
			if err != nil {
				t.Fatalf("ListMeals() error = %v", err)
			}
			if len(meals) != 2 {
				t.Fatalf("len(meals) = %d, want 2", len(meals))
			}
			if meals[0].ID != "m1" || meals[0].Price != 60 {
				t.Errorf("meals[0] = %+v", meals[0])
			}
		})
	}
}

func TestClient_GetUser(t *testing.T) {
	// User GET returns the bare object, not a success envelope.
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/users/7" {
			t.Errorf("path = %s, want /api/auth/users/7", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":7,"sapId":"123456","name":"Asha","loyaltyPoints":80,"tier":"Silver"}`))
	})

	user, err := client.GetUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.LoyaltyPoints != 80 {
		t.Errorf("LoyaltyPoints = %d, want 80", user.LoyaltyPoints)
	}
	if user.TierLabel() != core.TierSilver {
		t.Errorf("TierLabel() = %s, want Silver", user.TierLabel())
	}
}

func TestClient_CreateOrder(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/orders" {
			t.Errorf("%s %s, want POST /api/orders", r.Method, r.URL.Path)
		}
		var req core.OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.UserID != 7 || len(req.Items) != 1 || req.Total != 120 {
			t.Errorf("request = %+v", req)
		}
		_, _ = w.Write([]byte(`{"success":true,"pointsEarned":12,"order":{
			"id":"ORD-3","userId":7,"total":120,"status":"Placed",
			"date":"2026-08-31T12:04:05.000Z",
			"items":[{"mealId":"m2","name":"Veg Thali","quantity":1,"price":120}]
		}}`))
	})

	order, pointsEarned, err := client.CreateOrder(context.Background(), core.OrderRequest{
		UserID: 7,
		Items:  []core.OrderItem{{MealID: "m2", Name: "Veg Thali", Quantity: 1, Price: 120}},
		Total:  120,
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if order.ID != "ORD-3" || order.Status != core.OrderPlaced {
		t.Errorf("order = %+v", order)
	}
	if pointsEarned != 12 {
		t.Errorf("pointsEarned = %d, want 12", pointsEarned)
	}
	if order.Date.IsZero() {
		t.Error("order date did not parse")
	}
}

func TestClient_RedeemOffer(t *testing.T) {
	tests := []struct {
		name           string
		serverStatus   int
		serverResponse string
		wantErr        error
		wantRemaining  int
	}{
		{
			name:           "successful redemption",
			serverStatus:   http.StatusOK,
			serverResponse: `{"success":true,"remainingPoints":20,"discountAmount":30}`,
			wantRemaining:  20,
		},
		{
			name:           "insufficient balance",
			serverStatus:   http.StatusBadRequest,
			serverResponse: `{"error":"Insufficient loyalty points"}`,
			wantErr:        core.ErrInsufficientPoints,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/loyalty/redeem" {
					t.Errorf("path = %s, want /api/loyalty/redeem", r.URL.Path)
				}
				w.WriteHeader(tt.serverStatus)
				_, _ = w.Write([]byte(tt.serverResponse))
			})

			result, err := client.RedeemOffer(context.Background(), 7, "offer-1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RedeemOffer() error = %v", err)
			}
			if result.RemainingPoints != tt.wantRemaining {
				t.Errorf("RemainingPoints = %d, want %d", result.RemainingPoints, tt.wantRemaining)
			}
		})
	}
}

func TestClient_Chat(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message string              `json:"message"`
			History []core.ChatExchange `json:"history"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Message != "What's good today?" {
			t.Errorf("message = %q", body.Message)
		}
		// nil history must be sent as an empty array, not null
		if body.History == nil {
			t.Error("history sent as null, want []")
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"Try the thali."}`))
	})

	reply, err := client.Chat(context.Background(), "What's good today?", nil)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Try the thali." {
		t.Errorf("reply = %q", reply)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantZero bool
	}{
		{name: "rfc3339 with zone", value: "2026-08-31T12:04:05Z"},
		{name: "rfc3339 with millis", value: "2026-08-31T12:04:05.123Z"},
		{name: "naive ISO", value: "2026-08-31T12:04:05"},
		{name: "garbage", value: "yesterday", wantZero: true},
		{name: "empty", value: "", wantZero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.value)
			if got.IsZero() != tt.wantZero {
				t.Errorf("parseTimestamp(%q).IsZero() = %v, want %v", tt.value, got.IsZero(), tt.wantZero)
			}
		})
	}
}
