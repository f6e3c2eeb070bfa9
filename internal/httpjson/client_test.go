package httpjson

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

type order struct {
	ID         string `json:"id"`
	Reference  string `json:"reference"`
	TotalCents int64  `json:"total_cents"`
}

func TestGet_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/orders/o1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing or wrong bearer token")
		}
		if r.Header.Get("X-Tenant") != "acme" {
			t.Errorf("missing custom header")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(order{ID: "o1", Reference: "REF-1", TotalCents: 2500})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", server.Client(), WithBearerToken("tok"), WithHeader("X-Tenant", "acme"))
	got, err := Get[order](context.Background(), c, "/api/v1/orders/o1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "o1" || got.Reference != "REF-1" || got.TotalCents != 2500 {
		t.Errorf("order mismatch: %+v", got)
	}
}

func TestGetString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "plain text")
	}))
	defer server.Close()

	got, err := NewClient(server.URL, server.Client()).GetString(context.Background(), "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "plain text" {
		t.Errorf("expected %q, got %q", "plain text", got)
	}
}

func TestPostAndPut_SendBody(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut} {
		t.Run(method, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != method {
					t.Errorf("expected %s, got %s", method, r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("expected application/json content type, got %q", ct)
				}
				var in order
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					t.Fatalf("decoding request: %v", err)
				}
				in.ID = "new-id"
				_ = json.NewEncoder(w).Encode(in)
			}))
			defer server.Close()

			c := NewClient(server.URL, server.Client())
			body := order{Reference: "REF-2", TotalCents: 100}
			var got order
			var err error
			if method == http.MethodPost {
				got, err = Post[order](context.Background(), c, "/orders", body)
			} else {
				got, err = Put[order](context.Background(), c, "/orders/x", body)
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != "new-id" || got.Reference != "REF-2" {
				t.Errorf("echo mismatch: %+v", got)
			}
		})
	}
}

func TestPostForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "password" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "abc"})
	}))
	defer server.Close()

	got, err := PostForm[map[string]string](context.Background(), NewClient(server.URL, server.Client()), "/token",
		url.Values{"grant_type": {"password"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["access_token"] != "abc" {
		t.Errorf("unexpected token: %v", got)
	}
}

func TestDelete(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = r.Method == http.MethodDelete
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := Delete(context.Background(), NewClient(server.URL, server.Client()), "/orders/o1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected DELETE request")
	}
}

func TestStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":"ORDER_NOT_FOUND"}}`)
	}))
	defer server.Close()

	_, err := Get[order](context.Background(), NewClient(server.URL, server.Client()), "/orders/missing")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", statusErr.StatusCode)
	}
	if statusErr.Body != `{"error":{"code":"ORDER_NOT_FOUND"}}` {
		t.Errorf("unexpected body: %q", statusErr.Body)
	}
}

func TestDecode_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	}))
	defer server.Close()

	_, err := Get[order](context.Background(), NewClient(server.URL, server.Client()), "/orders/o1")
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewClient(server.URL, server.Client()).GetString(ctx, "/"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
