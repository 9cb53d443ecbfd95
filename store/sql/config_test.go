package sql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kkroo/qctl"
	qsql "github.com/kkroo/qctl/store/sql"
)

func TestConfigGetDefault(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	v, ok, err := store.ConfigGet(ctx, "backoff_base")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected backoff_base to be recognized")
	}
	if v != "2" {
		t.Fatalf("expected default 2, got %s", v)
	}
}

func TestConfigSetAndGet(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	if err := store.ConfigSet(ctx, "max_retries", "7"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := store.ConfigGet(ctx, "max_retries")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || v != "7" {
		t.Fatalf("expected 7, got %s (ok=%v)", v, ok)
	}
}

func TestConfigSetUnknownKey(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	if err := store.ConfigSet(ctx, "not_a_real_key", "x"); err == nil {
		t.Fatal("expected error for unrecognized config key")
	}
}

func TestConfigGetUnknownKey(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	_, ok, err := store.ConfigGet(ctx, "not_a_real_key")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected ok=false for unrecognized config key")
	}
}

func TestConfigSetInvalidValue(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	cases := []struct {
		key   string
		value string
	}{
		{"backoff_base", "not-a-number"},
		{"backoff_base", "-5"},
		{"backoff_base", "1"}, // positive int, but < 2
		{"max_retries", "-1"},
		{"default_timeout", "0"},
		{"poll_interval_ms", "nope"},
	}
	for _, c := range cases {
		err := store.ConfigSet(ctx, c.key, c.value)
		if err == nil {
			t.Fatalf("expected error setting %s=%s", c.key, c.value)
		}
		if !errors.Is(err, qctl.ErrInvalidConfigValue) {
			t.Fatalf("expected ErrInvalidConfigValue for %s=%s, got %v", c.key, c.value, err)
		}
	}

	// A rejected Set must not have written anything: backoff_base stays
	// at its default.
	v, ok, err := store.ConfigGet(ctx, "backoff_base")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || v != "2" {
		t.Fatalf("expected backoff_base to remain default 2, got %s", v)
	}
}
