package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	terrors "tradegate/internal/errors"
	"tradegate/internal/schema"
	"tradegate/internal/session"
)

type requestCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRequestCounter() *requestCounter {
	return &requestCounter{counts: make(map[string]int)}
}

func (c *requestCounter) inc(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[path]++
}

func (c *requestCounter) get(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[path]
}

var profileSchema = schema.New("Profile", schema.Object(
	schema.F("email", schema.String()),
))

func newTestClient(server *httptest.Server, tokens session.Store) *Client {
	return New(Config{
		BaseURL: server.URL,
		Tokens:  tokens,
		Logger:  zerolog.Nop(),
	})
}

func TestUnauthenticatedCallMakesNoRequest(t *testing.T) {
	counter := newRequestCounter()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.inc(r.URL.Path)
	}))
	defer server.Close()

	client := newTestClient(server, session.NewMemoryStore())

	_, err := client.Do(context.Background(), Descriptor{
		Method:       http.MethodGet,
		Path:         "/profile",
		RequiresAuth: true,
	}, profileSchema)

	if !terrors.Is(err, terrors.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if got := counter.get("/profile"); got != 0 {
		t.Errorf("expected no network requests, got %d", got)
	}
}

func TestRefreshAndRetryOnUnauthorized(t *testing.T) {
	counter := newRequestCounter()
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		counter.inc(r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer new-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"email": "trader@example.com"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		counter.inc(r.URL.Path)
		if r.URL.Query().Get("refresh_token") != "old-refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := session.NewMemoryStore()
	_ = store.Set(session.Tokens{Access: "stale-access", Refresh: "old-refresh"})
	client := newTestClient(server, store)

	body, err := client.Do(context.Background(), Descriptor{
		Method:       http.MethodGet,
		Path:         "/profile",
		RequiresAuth: true,
	}, profileSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var profile struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if profile.Email != "trader@example.com" {
		t.Errorf("unexpected profile: %+v", profile)
	}

	if got := counter.get("/profile"); got != 2 {
		t.Errorf("expected 2 requests to original endpoint, got %d", got)
	}
	if got := counter.get("/auth/refresh"); got != 1 {
		t.Errorf("expected 1 refresh request, got %d", got)
	}

	tokens, ok := store.Get()
	if !ok || tokens.Access != "new-access" || tokens.Refresh != "new-refresh" {
		t.Errorf("store not updated with refreshed pair: %+v ok=%v", tokens, ok)
	}
}

func TestRefreshEquivalentToFreshToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"email": "trader@example.com"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "good-access",
			"refresh_token": "good-refresh",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	descriptor := Descriptor{Method: http.MethodGet, Path: "/profile", RequiresAuth: true}

	freshStore := session.NewMemoryStore()
	_ = freshStore.Set(session.Tokens{Access: "good-access", Refresh: "good-refresh"})
	fresh, err := newTestClient(server, freshStore).Do(context.Background(), descriptor, profileSchema)
	if err != nil {
		t.Fatalf("fresh-token call failed: %v", err)
	}

	staleStore := session.NewMemoryStore()
	_ = staleStore.Set(session.Tokens{Access: "stale-access", Refresh: "old-refresh"})
	renewed, err := newTestClient(server, staleStore).Do(context.Background(), descriptor, profileSchema)
	if err != nil {
		t.Fatalf("stale-token call failed: %v", err)
	}

	if string(fresh) != string(renewed) {
		t.Errorf("renewed call result %s differs from fresh call result %s", renewed, fresh)
	}
}

func TestFailedRefreshClearsStore(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Invalid refresh token"}`, http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := session.NewMemoryStore()
	_ = store.Set(session.Tokens{Access: "stale-access", Refresh: "bad-refresh"})
	client := newTestClient(server, store)

	_, err := client.Do(context.Background(), Descriptor{
		Method:       http.MethodGet,
		Path:         "/profile",
		RequiresAuth: true,
	}, profileSchema)

	if !terrors.Is(err, terrors.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Error("token store should be cleared after failed refresh")
	}
}

func TestRetriedCallStillUnauthorized(t *testing.T) {
	counter := newRequestCounter()
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		counter.inc(r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		counter.inc(r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := session.NewMemoryStore()
	_ = store.Set(session.Tokens{Access: "stale-access", Refresh: "old-refresh"})
	client := newTestClient(server, store)

	_, err := client.Do(context.Background(), Descriptor{
		Method:       http.MethodGet,
		Path:         "/profile",
		RequiresAuth: true,
	}, profileSchema)

	var reqErr *terrors.RequestError
	if !terrors.As(err, &reqErr) || reqErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected RequestError with status 401, got %v", err)
	}
	if got := counter.get("/profile"); got != 2 {
		t.Errorf("expected exactly 2 requests (no refresh loop), got %d", got)
	}
	if got := counter.get("/auth/refresh"); got != 1 {
		t.Errorf("expected exactly 1 refresh attempt, got %d", got)
	}
}

func TestSchemaViolationLeavesStoreUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"email": 42})
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	initial := session.Tokens{Access: "access", Refresh: "refresh"}
	_ = store.Set(initial)
	client := newTestClient(server, store)

	_, err := client.Do(context.Background(), Descriptor{
		Method:       http.MethodGet,
		Path:         "/profile",
		RequiresAuth: true,
	}, profileSchema)

	var schemaErr *terrors.SchemaError
	if !terrors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}

	tokens, ok := store.Get()
	if !ok || tokens != initial {
		t.Errorf("token store changed by schema violation: %+v ok=%v", tokens, ok)
	}
}

func TestNotFoundIsRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	_ = store.Set(session.Tokens{Access: "access", Refresh: "refresh"})
	client := newTestClient(server, store)

	_, err := client.Do(context.Background(), Descriptor{
		Method:       http.MethodGet,
		Path:         "/watchlist",
		RequiresAuth: true,
	}, nil)

	var reqErr *terrors.RequestError
	if !terrors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", reqErr.StatusCode)
	}
}

func TestCallDecodesValidatedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"email": "trader@example.com"})
	}))
	defer server.Close()

	client := newTestClient(server, session.NewMemoryStore())

	type profile struct {
		Email string `json:"email"`
	}
	got, err := Call[profile](context.Background(), client, Descriptor{
		Method: http.MethodGet,
		Path:   "/profile",
	}, profileSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Email != "trader@example.com" {
		t.Errorf("unexpected decoded value: %+v", got)
	}
}
