package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientChat(t *testing.T) {
	ctx := context.Background()
	turns := []Turn{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "hola"},
	}

	t.Run("respuesta exitosa", func(t *testing.T) {
		var gotAuth string
		var gotReq chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotReq)
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hola humano  "},"finish_reason":"stop"}]}`))
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, "key-123", "test-model", time.Second, nil)
		reply, err := c.Chat(ctx, turns)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reply != "hola humano" {
			t.Fatalf("expected trimmed reply, got %q", reply)
		}
		if gotAuth != "Bearer key-123" {
			t.Fatalf("unexpected auth header: %q", gotAuth)
		}
		if gotReq.Model != "test-model" || len(gotReq.Messages) != 2 {
			t.Fatalf("unexpected request payload: %+v", gotReq)
		}
	})

	t.Run("status de error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, "key", "m", time.Second, nil)
		if _, err := c.Chat(ctx, turns); err == nil {
			t.Fatal("expected error on 500")
		}
	})

	t.Run("filtro de contenido se mapea a ErrContentFiltered", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":""},"finish_reason":"content_filter"}]}`))
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, "key", "m", time.Second, nil)
		_, err := c.Chat(ctx, turns)
		if !errors.Is(err, ErrContentFiltered) {
			t.Fatalf("expected ErrContentFiltered, got %v", err)
		}
	})

	t.Run("error de la API en el cuerpo", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"message":"invalid key"}}`))
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, "key", "m", time.Second, nil)
		if _, err := c.Chat(ctx, turns); err == nil {
			t.Fatal("expected api error")
		}
	})

	t.Run("respuesta sin choices es error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, "key", "m", time.Second, nil)
		if _, err := c.Chat(ctx, turns); err == nil {
			t.Fatal("expected empty response error")
		}
	})
}
