package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	terrors "tradegate/internal/errors"
	"tradegate/internal/gateway"
	"tradegate/internal/models"
	"tradegate/internal/session"
)

func newTestAPI(server *httptest.Server, store session.Store) *Client {
	return NewClient(gateway.New(gateway.Config{
		BaseURL: server.URL,
		Tokens:  store,
		Logger:  zerolog.Nop(),
	}))
}

func serveJSON(t *testing.T, body string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestLoginStoresTokenPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/signin", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		// The signin endpoint takes form-encoded password-grant fields.
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		assert.Equal(t, "trader@example.com", r.PostFormValue("username"))
		assert.Equal(t, "secret", r.PostFormValue("password"))

		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "bearer",
		})
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	client := newTestAPI(server, store)

	tokens, err := client.Login(context.Background(), "trader@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "access-1", tokens.Access)

	stored, ok := store.Get()
	require.True(t, ok, "token pair should be stored after login")
	assert.Equal(t, tokens, stored)
	assert.True(t, client.Authenticated())
}

func TestSignupStoresTokenPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/signup", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "bearer",
		})
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	client := newTestAPI(server, store)

	_, err := client.Signup(context.Background(), "new@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, client.Authenticated(), "a fresh signup is immediately logged in")
}

func TestOTPLoginFlow(t *testing.T) {
	var requested bool
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/request-otp", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "trader@example.com", body["email"])
		requested = true
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "OTP sent to email"})
	})
	mux.HandleFunc("/auth/otp-login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["otp"] != "123456" {
			http.Error(w, `{"detail":"Invalid or expired OTP"}`, http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "bearer",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := session.NewMemoryStore()
	client := newTestAPI(server, store)
	ctx := context.Background()

	require.NoError(t, client.RequestOTP(ctx, "trader@example.com"))
	assert.True(t, requested)

	_, err := client.LoginWithOTP(ctx, "trader@example.com", "000000")
	require.Error(t, err, "wrong code must be rejected")
	assert.False(t, client.Authenticated())

	_, err = client.LoginWithOTP(ctx, "trader@example.com", "123456")
	require.NoError(t, err)
	assert.True(t, client.Authenticated())
}

func TestLoginRejectsMalformedTokenResponse(t *testing.T) {
	server := httptest.NewServer(serveJSON(t, `{"access_token": "a"}`))
	defer server.Close()

	store := session.NewMemoryStore()
	client := newTestAPI(server, store)

	_, err := client.Login(context.Background(), "trader@example.com", "secret")
	var schemaErr *terrors.SchemaError
	require.ErrorAs(t, err, &schemaErr)

	_, ok := store.Get()
	assert.False(t, ok, "no tokens should be stored on a malformed response")
}

func TestLogoutSendsRefreshTokenAsQueryParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout", r.URL.Path)
		assert.Equal(t, "refresh-1", r.URL.Query().Get("refresh_token"))
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Logged out successfully"})
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	_ = store.Set(session.Tokens{Access: "access-1", Refresh: "refresh-1"})
	client := newTestAPI(server, store)

	require.NoError(t, client.Logout(context.Background()))
	assert.False(t, client.Authenticated())
}

func TestLogoutClearsSessionEvenWhenBackendFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	_ = store.Set(session.Tokens{Access: "a", Refresh: "r"})
	client := newTestAPI(server, store)

	err := client.Logout(context.Background())
	require.Error(t, err, "backend failure should surface")

	_, ok := store.Get()
	assert.False(t, ok, "local session must be cleared regardless")
	assert.False(t, client.Authenticated())
}

func TestLogoutWithoutSessionMakesNoRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("logout with no stored session should not reach the backend")
	}))
	defer server.Close()

	client := newTestAPI(server, session.NewMemoryStore())
	assert.NoError(t, client.Logout(context.Background()))
}

func TestWatchlistRoundTrip(t *testing.T) {
	server := httptest.NewServer(serveJSON(t, `[
		{"id": 1, "symbol": "RELIANCE", "name": "Reliance Industries", "current_price": 2810.55, "change_percent": -0.42},
		{"id": 2, "symbol": "TCS", "name": "Tata Consultancy", "current_price": 3915.10, "change_percent": 1.08}
	]`))
	defer server.Close()

	store := session.NewMemoryStore()
	_ = store.Set(session.Tokens{Access: "a", Refresh: "r"})
	client := newTestAPI(server, store)

	items, err := client.Watchlist(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "RELIANCE", items[0].Symbol)
	assert.True(t, items[0].LastPrice.Equal(decimal.NewFromFloat(2810.55)))
}

func TestExportWatchlistCSV(t *testing.T) {
	items := []models.WatchlistItem{
		{ID: 1, Symbol: "RELIANCE", Name: "Reliance Industries", LastPrice: decimal.NewFromFloat(2810.55), ChangePercent: decimal.NewFromFloat(-0.42)},
		{ID: 2, Symbol: "TCS", Name: "Tata Consultancy", LastPrice: decimal.NewFromFloat(3915.10), ChangePercent: decimal.NewFromFloat(1.08)},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportWatchlistCSV(&buf, items))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "header plus one line per entry")
	assert.Contains(t, lines[0], "symbol")
	assert.Contains(t, lines[1], "RELIANCE")
	assert.Contains(t, lines[2], "3915.1")
}

func TestDashboard(t *testing.T) {
	server := httptest.NewServer(serveJSON(t, `{
		"total_capital": 1000000,
		"available_cash": 250000.50,
		"blocked_funds": 100000,
		"realized_pnl": 12345.67,
		"unrealized_pnl": -890.12,
		"open_trades": 4,
		"linked_clients": 12
	}`))
	defer server.Close()

	store := session.NewMemoryStore()
	_ = store.Set(session.Tokens{Access: "a", Refresh: "r"})
	client := newTestAPI(server, store)

	summary, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.OpenTrades)
	assert.Equal(t, 12, summary.LinkedClients)
	assert.True(t, summary.AvailableCash.Equal(decimal.NewFromFloat(250000.50)))
}

func TestCancelOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/orders/42", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	_ = store.Set(session.Tokens{Access: "a", Refresh: "r"})
	client := newTestAPI(server, store)

	assert.NoError(t, client.CancelOrder(context.Background(), 42))
}
