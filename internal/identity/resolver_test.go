package identity

import (
	"context"
	"testing"
	"time"
)

func TestResolverResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("acuña guest id en primer contacto", func(t *testing.T) {
		r := NewResolver(NewMemoryStore(), time.Hour)

		userID, err := r.Resolve(ctx, "s1", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if userID == "" {
			t.Fatal("expected minted user id")
		}
	})

	t.Run("resolver es idempotente dentro de la sesión", func(t *testing.T) {
		r := NewResolver(NewMemoryStore(), time.Hour)

		first, err := r.Resolve(ctx, "s1", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := r.Resolve(ctx, "s1", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != second {
			t.Fatalf("expected stable identity, got %q then %q", first, second)
		}
	})

	t.Run("adopta token de cliente sanitizado", func(t *testing.T) {
		r := NewResolver(NewMemoryStore(), time.Hour)

		userID, err := r.Resolve(ctx, "s1", "google_123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if userID != "google_123" {
			t.Fatalf("expected adopted token, got %q", userID)
		}
	})

	t.Run("no sobreescribe identidad ya ligada", func(t *testing.T) {
		r := NewResolver(NewMemoryStore(), time.Hour)

		first, err := r.Resolve(ctx, "s1", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := r.Resolve(ctx, "s1", "otro_token")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if second != first {
			t.Fatalf("bound identity was overwritten: %q -> %q", first, second)
		}
	})

	t.Run("sesiones distintas obtienen identidades distintas", func(t *testing.T) {
		r := NewResolver(NewMemoryStore(), time.Hour)

		a, _ := r.Resolve(ctx, "s1", "")
		b, _ := r.Resolve(ctx, "s2", "")
		if a == b {
			t.Fatalf("expected distinct identities, both %q", a)
		}
	})

	t.Run("sesión vacía es error", func(t *testing.T) {
		r := NewResolver(NewMemoryStore(), time.Hour)

		if _, err := r.Resolve(ctx, "", ""); err != ErrNoSession {
			t.Fatalf("expected ErrNoSession, got %v", err)
		}
	})
}

func TestResolverBindGuest(t *testing.T) {
	ctx := context.Background()

	t.Run("guest login siempre acuña identidad nueva", func(t *testing.T) {
		r := NewResolver(NewMemoryStore(), time.Hour)

		original, err := r.Resolve(ctx, "s1", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		guest, err := r.BindGuest(ctx, "s1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if guest == original {
			t.Fatal("guest login must mint a fresh identity")
		}

		resolved, err := r.Resolve(ctx, "s1", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resolved != guest {
			t.Fatalf("expected guest identity bound, got %q", resolved)
		}
	})
}

func TestResolverClear(t *testing.T) {
	ctx := context.Background()

	t.Run("logout borra la ligadura", func(t *testing.T) {
		r := NewResolver(NewMemoryStore(), time.Hour)

		original, _ := r.Resolve(ctx, "s1", "")
		if err := r.Clear(ctx, "s1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		after, _ := r.Resolve(ctx, "s1", "")
		if after == original {
			t.Fatal("expected new identity after logout")
		}
	})
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Bind(ctx, "s1", "u1", time.Nanosecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected expired binding, got %q", got)
	}
}
