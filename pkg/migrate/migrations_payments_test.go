package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPaymentsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_payments.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no payments migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS payments",
		"FOREIGN KEY (order_item_id) REFERENCES order_items(id) ON DELETE RESTRICT",
		"CHECK (amount > 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_order_item_id",
		"CREATE INDEX IF NOT EXISTS idx_payments_status_lock_expires_at",
		"DROP TABLE IF EXISTS payments",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationGuardsOncePerAggregateEvents(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_outbox_events.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no outbox migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_outbox_events_event_aggregate",
		"WHERE event_type IN ('payment_released', 'payment_recorded', 'offer_created')",
		"CREATE INDEX IF NOT EXISTS idx_outbox_events_unpublished",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
