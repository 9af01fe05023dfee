package service

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

type testEnv struct {
	groups  apiconnect.GroupServiceClient
	ledger  apiconnect.LedgerServiceClient
	store   *sqlite.SQLiteStore
	metrics *metrics.Metrics
}

// setupTestServer creates a test server with both GroupService and LedgerService
// backed by a fresh SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	m := metrics.New(prometheus.NewRegistry())

	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(NewGroupService(store, m))
	ledgerPath, ledgerHandler := apiconnect.NewLedgerServiceHandler(NewLedgerService(store, m))

	mux := http.NewServeMux()
	mux.Handle(groupPath, groupHandler)
	mux.Handle(ledgerPath, ledgerHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		groups:  apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		ledger:  apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL),
		store:   store,
		metrics: m,
	}
}
