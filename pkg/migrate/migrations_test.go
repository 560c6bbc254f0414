package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kkarhua/fullrest-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUsuariosMigration(t *testing.T) {
	assertContains(t, readMigration(t, "create_usuarios"), []string{
		"CREATE TABLE IF NOT EXISTS usuarios",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_usuarios_email",
		"CHECK (rol IN ('cliente', 'vendedor', 'super-admin'))",
		"DROP TABLE IF EXISTS usuarios",
	})
}

func TestCatalogMigration(t *testing.T) {
	assertContains(t, readMigration(t, "create_catalog"), []string{
		"CREATE TABLE IF NOT EXISTS categorias",
		"CREATE TABLE IF NOT EXISTS productos",
		"FOREIGN KEY (categoria_id) REFERENCES categorias(id) ON DELETE RESTRICT",
		"CHECK (stock >= 0)",
		"DROP TABLE IF EXISTS productos",
	})
}

func TestEnviosComprasMigration(t *testing.T) {
	assertContains(t, readMigration(t, "create_envios_compras"), []string{
		"CREATE TABLE IF NOT EXISTS envios",
		"CREATE TABLE IF NOT EXISTS compras",
		"FOREIGN KEY (envio_id) REFERENCES envios(id)",
		"CHECK (estado IN ('completada', 'pendiente', 'cancelada'))",
	})
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Product Index!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_product_index.sql") {
		t.Fatalf("unexpected path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}
