package infra

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoGetSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Test"); got != "yes" {
			t.Errorf("X-Test header: got %q, want %q", got, "yes")
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClientFrom(srv.Client())
	body, status, err := c.DoGet(context.Background(), srv.URL, map[string]string{"X-Test": "yes"})
	if err != nil {
		t.Fatalf("DoGet: %v", err)
	}
	defer body.Close()

	if status != http.StatusOK {
		t.Errorf("status: got %d, want 200", status)
	}
	data, _ := io.ReadAll(body)
	if string(data) != `{"ok":true}` {
		t.Errorf("body: got %q", data)
	}
}

func TestDoGetNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClientFrom(srv.Client())
	body, status, err := c.DoGet(context.Background(), srv.URL, nil)
	if err == nil {
		body.Close()
		t.Fatal("expected error for 401")
	}
	if status != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", status)
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("HTTPError.StatusCode: got %d", httpErr.StatusCode)
	}
	if httpErr.Body == "" {
		t.Error("expected body snippet in HTTPError")
	}
}

func TestDoGetTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(0)
	if _, _, err := c.DoGet(context.Background(), url, nil); err == nil {
		t.Fatal("expected transport error for closed server")
	}
}

func TestDoGetCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClientFrom(srv.Client())
	if _, _, err := c.DoGet(ctx, srv.URL, nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
