// Package dbtest opens migrated sqlite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kkarhua/fullrest-backend/pkg/config"
	"github.com/kkarhua/fullrest-backend/pkg/db"
	"github.com/kkarhua/fullrest-backend/pkg/db/models"
)

var seq atomic.Int64

// New returns a client backed by a private in-memory sqlite database with
// every model migrated. The database is closed when the test ends.
func New(t testing.TB) *db.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	client, err := db.New(context.Background(), config.DBConfig{
		DSN:    dsn,
		Driver: config.DBDriverSQLite,
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := client.DB().AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
