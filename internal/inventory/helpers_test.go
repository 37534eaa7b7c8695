package inventory

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/inventar-app/inventar-core/internal/infrastructure/database"
	_ "github.com/inventar-app/inventar-core/migrations" // registers schema migrations
)

// testReference is the reference data every test store starts with.
var testReference = ReferenceData{
	DeviceTypes: []DeviceType{{ID: 1, Description: "Laptop"}, {ID: 2, Description: "Phone"}},
	Locations:   []Location{{ID: 1, Name: "HQ"}, {ID: 2, Name: "Warehouse"}},
	Persons:     []Person{{PersonnelNo: 7, Name: "Ada Lovelace"}, {PersonnelNo: 9, Name: "Grace Hopper"}},
}

// forEachStore runs fn against SQLite, and against PostgreSQL when
// INVENTAR_TEST_POSTGRES_DSN is set.
func forEachStore(t *testing.T, fn func(t *testing.T, db *database.DB)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		fn(t, openSQLiteStore(t))
	})

	dsn := os.Getenv("INVENTAR_TEST_POSTGRES_DSN")
	t.Run("postgres", func(t *testing.T) {
		if dsn == "" {
			t.Skip("INVENTAR_TEST_POSTGRES_DSN not set")
		}
		fn(t, openPostgresStore(t, dsn))
	})
}

// openSQLiteStore creates a migrated, seeded SQLite database in a temp dir.
func openSQLiteStore(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), database.Config{
		Driver:      database.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "inventar.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	prepareStore(t, db)
	return db
}

// openPostgresStore resets the schema of the database at dsn.
func openPostgresStore(t testing.TB, dsn string) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Driver: database.DriverPostgres, DSN: dsn})
	if err != nil {
		t.Fatalf("opening postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	for {
		applied, _, err := db.GetMigrationStatus(ctx)
		if err != nil {
			t.Fatalf("migration status: %v", err)
		}
		if len(applied) == 0 {
			break
		}
		if err := db.MigrateDown(ctx); err != nil {
			t.Fatalf("resetting schema: %v", err)
		}
	}

	prepareStore(t, db)
	return db
}

func prepareStore(t testing.TB, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	if _, err := NewSQLRepository(db).SeedReferenceData(ctx, testReference); err != nil {
		t.Fatalf("seeding: %v", err)
	}
}

// fakeClock is a settable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// publishedEvent is one call recorded by recordingPublisher.
type publishedEvent struct {
	Topic   string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, payload any) {
	p.mu.Lock()
	p.events = append(p.events, publishedEvent{Topic: topic, Payload: payload})
	p.mu.Unlock()
}

func (p *recordingPublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type panickingPublisher struct{}

func (panickingPublisher) Publish(context.Context, string, any) {
	panic("broker exploded")
}

var testEpoch = time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

// newTestManager wires a Manager over db with a fake clock and recorder.
func newTestManager(db *database.DB) (*Manager, *fakeClock, *recordingPublisher) {
	clock := newFakeClock(testEpoch)
	pub := &recordingPublisher{}
	return NewManager(NewSQLRepository(db), pub, clock, nil), clock, pub
}

// mustRegister registers a device or fails the test.
func mustRegister(t testing.TB, m *Manager, inventoryNo string) int64 {
	t.Helper()
	id, err := m.RegisterDevice(context.Background(), NewDevice{InventoryNo: inventoryNo, DeviceTypeID: 1})
	if err != nil {
		t.Fatalf("RegisterDevice(%q) error = %v", inventoryNo, err)
	}
	return id
}

func ptr[T any](v T) *T { return &v }
