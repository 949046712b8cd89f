package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/j-veylop/codetime-dashboard-tui/internal/ledger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/store"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	s, err := Open(Options{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Failed to open Redis store: %v", err)
	}
	return s, mr
}

func TestOpen_RequiresAddr(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Error("expected error for empty address")
	}
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := setupTestStore(t)
	defer func() { _ = s.Close() }()

	blob, ok, err := s.Get(context.Background(), "stats")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok || blob != nil {
		t.Errorf("Get missing = %q, %v", blob, ok)
	}
}

func TestStore_SetGet(t *testing.T) {
	s, mr := setupTestStore(t)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	if err := s.Set(ctx, "stats", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	blob, ok, err := s.Get(ctx, "stats")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if string(blob) != `{"version":1}` {
		t.Errorf("blob = %s", blob)
	}

	raw, err := mr.Get("codetime:stats")
	if err != nil {
		t.Fatalf("key not namespaced: %v", err)
	}
	if raw != `{"version":1}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestStore_SetAfterServerClose(t *testing.T) {
	s, mr := setupTestStore(t)
	defer func() { _ = s.Close() }()

	mr.Close()
	if err := s.Set(context.Background(), "stats", []byte("x")); err == nil {
		t.Error("expected error writing to a stopped server")
	}
}

func TestStore_GatewayRoundTrip(t *testing.T) {
	s, _ := setupTestStore(t)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	g := store.NewGateway(s, "")
	l := ledger.New()
	l.Accumulate("go", 90, time.Date(2026, 1, 2, 22, 0, 0, 0, time.UTC))

	if err := g.Save(ctx, l.Snapshot()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := g.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.TotalSeconds() != 90 {
		t.Errorf("TotalSeconds = %d, want 90", loaded.TotalSeconds())
	}
	if loaded.Hourly()[22] != 90 {
		t.Errorf("hourly[22] = %d, want 90", loaded.Hourly()[22])
	}
}
