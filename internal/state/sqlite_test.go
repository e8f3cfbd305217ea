package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leaprec/internal/loader"
	"github.com/leapstack-labs/leaprec/pkg/rec"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// axleSet builds a test recordset with the given number of records.
func axleSet(t *testing.T, records int) *loader.Set {
	t.Helper()
	schema, err := rec.ParseSchema("Axle", "diameter=num", "length=num=30", "tags=list", "note")
	if err != nil {
		t.Fatalf("failed to build schema: %v", err)
	}
	set := &loader.Set{Name: "Axle", Schema: schema}
	for i := 0; i < records; i++ {
		r, err := rec.New(schema, rec.F("diameter", rec.Num(float64(10+i))))
		if err != nil {
			t.Fatalf("failed to build record: %v", err)
		}
		set.Records = append(set.Records, r)
	}
	return set
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()

	path := filepath.Join(t.TempDir(), "state.db")
	if err := store.Open(path); err != nil {
		t.Fatalf("failed to open file store: %v", err)
	}
	if store.Path() != path {
		t.Errorf("expected path %q, got %q", path, store.Path())
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	// Closing twice is fine
	if err := store.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	// Verify the recordsets table exists
	rows, err := store.db.Query("SELECT 1 FROM recordsets LIMIT 1")
	if err != nil {
		t.Fatalf("recordsets table does not exist: %v", err)
	}
	_ = rows.Close()

	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("failed to get migration version: %v", err)
	}
	if version < 1 {
		t.Errorf("expected migration version >= 1, got %d", version)
	}
}

func TestSQLiteStore_SaveGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	set := axleSet(t, 2)
	id, err := store.SaveSet(ctx, set)
	if err != nil {
		t.Fatalf("failed to save recordset: %v", err)
	}
	if id == "" {
		t.Fatal("recordset ID should not be empty")
	}

	for _, key := range []string{"Axle", id} {
		got, err := store.GetSet(ctx, key)
		if err != nil {
			t.Fatalf("failed to get recordset by %q: %v", key, err)
		}
		if got.Name != "Axle" {
			t.Errorf("expected name 'Axle', got %q", got.Name)
		}
		if got.Schema.Len() != 4 {
			t.Errorf("expected 4 attributes, got %d", got.Schema.Len())
		}
		if len(got.Records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got.Records))
		}
		if !got.Records[0].Equal(set.Records[0]) {
			t.Errorf("first record does not round-trip: got %s", rec.Dump(got.Records[0]))
		}
	}
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetSet(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for missing recordset")
	}
}

func TestSQLiteStore_SaveUpsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id1, err := store.SaveSet(ctx, axleSet(t, 1))
	if err != nil {
		t.Fatalf("failed to save recordset: %v", err)
	}

	id2, err := store.SaveSet(ctx, axleSet(t, 3))
	if err != nil {
		t.Fatalf("failed to re-save recordset: %v", err)
	}
	if id1 != id2 {
		t.Errorf("upsert should keep the ID: %q != %q", id1, id2)
	}

	infos, err := store.ListSets(ctx)
	if err != nil {
		t.Fatalf("failed to list recordsets: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 recordset after upsert, got %d", len(infos))
	}
	if infos[0].Records != 3 {
		t.Errorf("expected record count 3 after upsert, got %d", infos[0].Records)
	}
}

func TestSQLiteStore_ListSets(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	infos, err := store.ListSets(ctx)
	if err != nil {
		t.Fatalf("failed to list empty store: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(infos))
	}

	if _, err := store.SaveSet(ctx, axleSet(t, 2)); err != nil {
		t.Fatalf("failed to save recordset: %v", err)
	}

	infos, err = store.ListSets(ctx)
	if err != nil {
		t.Fatalf("failed to list recordsets: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 recordset, got %d", len(infos))
	}
	info := infos[0]
	if info.Name != "Axle" || info.Attrs != 4 || info.Records != 2 {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.CreatedAt.IsZero() || info.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}
}

func TestSQLiteStore_DeleteSet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveSet(ctx, axleSet(t, 1)); err != nil {
		t.Fatalf("failed to save recordset: %v", err)
	}

	if err := store.DeleteSet(ctx, "Axle"); err != nil {
		t.Fatalf("failed to delete recordset: %v", err)
	}

	if err := store.DeleteSet(ctx, "Axle"); err == nil {
		t.Fatal("expected error deleting missing recordset")
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()
	ctx := context.Background()

	if _, err := store.SaveSet(ctx, axleSet(t, 0)); err == nil {
		t.Error("SaveSet should fail before Open")
	}
	if _, err := store.GetSet(ctx, "x"); err == nil {
		t.Error("GetSet should fail before Open")
	}
	if _, err := store.ListSets(ctx); err == nil {
		t.Error("ListSets should fail before Open")
	}
	if err := store.DeleteSet(ctx, "x"); err == nil {
		t.Error("DeleteSet should fail before Open")
	}
	if err := store.Migrate(); err == nil {
		t.Error("Migrate should fail before Open")
	}
	if _, err := store.MigrationVersion(); err == nil {
		t.Error("MigrationVersion should fail before Open")
	}
}
