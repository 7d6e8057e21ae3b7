package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

var testDB *TestDB

func TestMain(m *testing.M) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		fmt.Println("SKIP_INTEGRATION set, skipping integration tests")
		os.Exit(0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

	db, err := SetupTestDatabase(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up test database: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	teardownCtx, teardownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := testDB.Teardown(teardownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to tear down test database: %v\n", err)
	}
	teardownCancel()

	os.Exit(code)
}

// resetDatabase truncates all tables between tests
func resetDatabase(t *testing.T) {
	t.Helper()
	if err := testDB.CleanupTables(context.Background()); err != nil {
		t.Fatalf("failed to clean up tables: %v", err)
	}
}
