package postgres

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func migrationFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys["sql/migrations/"+name] = &fstest.MapFile{Data: []byte(body)}
	}
	return fsys
}

func TestParseMigrations_SortsByVersion(t *testing.T) {
	t.Parallel()

	migrations, err := parseMigrations(migrationFS(map[string]string{
		"0002_more.up.sql":   "CREATE TABLE b (id INT);",
		"0002_more.down.sql": "DROP TABLE b;",
		"0001_init.up.sql":   "CREATE TABLE a (id INT);",
		"0001_init.down.sql": "DROP TABLE a;",
	}))
	if err != nil {
		t.Fatalf("parseMigrations failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "init" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].Version != 2 || migrations[1].Down != "DROP TABLE b;" {
		t.Fatalf("unexpected second migration: %+v", migrations[1])
	}
}

func TestParseMigrations_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		files map[string]string
		want  string
	}{
		"missing down": {
			files: map[string]string{"0001_init.up.sql": "SELECT 1;"},
			want:  "both up and down",
		},
		"invalid name": {
			files: map[string]string{"not_a_migration.sql": "SELECT 1;"},
			want:  "invalid migration file name",
		},
		"empty body": {
			files: map[string]string{"0001_init.up.sql": "  \n", "0001_init.down.sql": "SELECT 1;"},
			want:  "empty",
		},
		"name mismatch": {
			files: map[string]string{"0001_init.up.sql": "SELECT 1;", "0001_other.down.sql": "SELECT 1;"},
			want:  "name mismatch",
		},
		"no files": {
			files: map[string]string{},
			want:  "no migration files",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := parseMigrations(migrationFS(tc.files))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	t.Parallel()

	migrations, err := parseMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("embedded migrations are invalid: %v", err)
	}
	if len(migrations) == 0 || !strings.Contains(migrations[0].Up, "storefront_sessions") {
		t.Fatalf("unexpected embedded migrations: %+v", migrations)
	}
}

func TestPlan(t *testing.T) {
	t.Parallel()

	all := []migration{{Version: 1}, {Version: 2}, {Version: 3}}
	applied := map[int64]bool{1: true, 2: true}

	versions := func(ms []migration) []int64 {
		out := make([]int64, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.Version)
		}
		return out
	}

	if got := versions(plan(all, applied, directionUp, 0)); len(got) != 1 || got[0] != 3 {
		t.Fatalf("unexpected up plan: %v", got)
	}
	if got := versions(plan(all, applied, directionDown, 1)); len(got) != 1 || got[0] != 2 {
		t.Fatalf("unexpected down plan: %v", got)
	}
	if got := versions(plan(all, nil, directionUp, 2)); len(got) != 2 || got[1] != 2 {
		t.Fatalf("unexpected limited up plan: %v", got)
	}
}

func TestMigrator_PostgresLifecycle(t *testing.T) {
	store := openStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := store.MigrateDown(ctx, 100); err != nil {
		t.Fatalf("migrate down reset: %v", err)
	}
	if version, count, err := store.MigrationStatus(ctx); err != nil || version != 0 || count != 0 {
		t.Fatalf("unexpected status after reset: version=%d count=%d err=%v", version, count, err)
	}

	if err := store.MigrateUp(ctx, 1); err != nil {
		t.Fatalf("migrate up 1: %v", err)
	}
	if version, count, err := store.MigrationStatus(ctx); err != nil || version != 1 || count != 1 {
		t.Fatalf("unexpected status after up 1: version=%d count=%d err=%v", version, count, err)
	}

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up all: %v", err)
	}
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("idempotent migrate up: %v", err)
	}
	if version, count, err := store.MigrationStatus(ctx); err != nil || version != 2 || count != 2 {
		t.Fatalf("unexpected status after up all: version=%d count=%d err=%v", version, count, err)
	}
}
