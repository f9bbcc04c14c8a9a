// README: DB-backed store tests; skipped unless HOMECALL_TEST_DSN is set.
package history

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"homecall/internal/types"
)

func setupTestStore(t *testing.T) *PGStore {
	t.Helper()

	dsn := os.Getenv("HOMECALL_TEST_DSN")
	if dsn == "" {
		t.Skip("HOMECALL_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE order_histories"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return NewPGStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	for _, stmt := range splitSQL(stripSQLComments(string(content))) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.New("go.mod not found walking up from test dir")
}

func stripSQLComments(s string) string {
	var b strings.Builder
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(s string) []string {
	var out []string
	for _, stmt := range strings.Split(s, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func testHistory(orderID types.ID) *History {
	code := "1234"
	expiry := time.Now().Add(time.Hour)
	now := time.Now()
	return &History{
		ID:         newID(),
		OrderID:    orderID,
		UserID:     "user-1",
		ProviderID: "prov-1",
		Status:     StatusAccepted,
		OTP:        &code,
		OTPExpiry:  &expiry,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestPGStoreInsertAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	h := testHistory("order-1")
	if err := store.Insert(ctx, h); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.Get(ctx, h.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OrderID != h.OrderID || got.Status != StatusAccepted {
		t.Fatalf("got %+v", got)
	}
	if got.OTP == nil || *got.OTP != "1234" {
		t.Fatalf("otp = %v, want 1234", got.OTP)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing err = %v, want ErrNotFound", err)
	}
}

func TestPGStoreLiveEngagementUnique(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, testHistory("order-1")); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	second := testHistory("order-1")
	second.ProviderID = "prov-2"
	if err := store.Insert(ctx, second); !errors.Is(err, ErrConflict) {
		t.Fatalf("second Insert err = %v, want ErrConflict", err)
	}

	// A cancelled engagement frees the order for a fresh one.
	first, err := store.ListByOrders(ctx, []types.ID{"order-1"})
	if err != nil || len(first) != 1 {
		t.Fatalf("ListByOrders: %v, %d rows", err, len(first))
	}
	if ok, err := store.Cancel(ctx, first[0].ID, "test"); err != nil || !ok {
		t.Fatalf("Cancel: ok=%v err=%v", ok, err)
	}
	if err := store.Insert(ctx, second); err != nil {
		t.Fatalf("Insert after cancel: %v", err)
	}
}

func TestPGStoreCASUpdateStatus(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	h := testHistory("order-1")
	if err := store.Insert(ctx, h); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	ok, err := store.UpdateStatus(ctx, h.ID, StatusAccepted, StatusInProgress)
	if err != nil || !ok {
		t.Fatalf("UpdateStatus: ok=%v err=%v", ok, err)
	}
	// Stale from-status loses the CAS.
	ok, err = store.UpdateStatus(ctx, h.ID, StatusAccepted, StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if ok {
		t.Fatal("CAS succeeded from stale status")
	}
}

func TestPGStoreTransitionClearOTP(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	h := testHistory("order-1")
	h.Status = StatusInProgress
	if err := store.Insert(ctx, h); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	ok, err := store.TransitionClearOTP(ctx, h.ID, StatusInProgress, StatusCompleted)
	if err != nil || !ok {
		t.Fatalf("TransitionClearOTP: ok=%v err=%v", ok, err)
	}
	got, err := store.Get(ctx, h.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusCompleted || got.OTP != nil || got.OTPExpiry != nil {
		t.Fatalf("got %+v, want Completed with otp cleared", got)
	}
}

func TestPGStoreListStaleAccepted(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	stale := testHistory("order-1")
	past := time.Now().Add(-time.Minute)
	stale.OTPExpiry = &past
	if err := store.Insert(ctx, stale); err != nil {
		t.Fatalf("Insert stale: %v", err)
	}
	fresh := testHistory("order-2")
	if err := store.Insert(ctx, fresh); err != nil {
		t.Fatalf("Insert fresh: %v", err)
	}

	got, err := store.ListStaleAccepted(ctx, time.Now())
	if err != nil {
		t.Fatalf("ListStaleAccepted: %v", err)
	}
	if len(got) != 1 || got[0].ID != stale.ID {
		t.Fatalf("stale rows = %v, want only %s", got, stale.ID)
	}
}
