package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/inventar-app/inventar-core/internal/infrastructure/database"
)

// =============================================================================
// End-to-end scenarios
// =============================================================================

func TestScenarioIssueAndReturn(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		ctx := context.Background()
		m, clock, _ := newTestManager(db)

		d1, err := m.RegisterDevice(ctx, NewDevice{InventoryNo: "INV-001", DeviceTypeID: 1})
		if err != nil {
			t.Fatalf("RegisterDevice() error = %v", err)
		}

		issued, err := m.IssueDevice(ctx, d1, 7, nil)
		if err != nil {
			t.Fatalf("IssueDevice() error = %v", err)
		}
		if !issued.AssignedFrom.Equal(testEpoch) {
			t.Errorf("AssignedFrom = %v, want clock time %v", issued.AssignedFrom, testEpoch)
		}

		open, err := m.CurrentAssignment(ctx, d1)
		if err != nil {
			t.Fatalf("CurrentAssignment() error = %v", err)
		}
		if open == nil || open.ID != issued.AssignmentID || !open.Open() {
			t.Fatalf("CurrentAssignment() = %+v, want open assignment %d", open, issued.AssignmentID)
		}

		if status, err := m.DeriveDeviceStatus(ctx, d1); err != nil || status != StatusAssigned {
			t.Fatalf("DeriveDeviceStatus() = %v, %v; want Assigned", status, err)
		}

		clock.Advance(3 * time.Hour)
		returned, err := m.ReturnDevice(ctx, issued.AssignmentID, nil)
		if err != nil {
			t.Fatalf("ReturnDevice() error = %v", err)
		}
		if returned.DeviceID != d1 {
			t.Errorf("ReturnDevice() device = %d, want %d", returned.DeviceID, d1)
		}
		if want := testEpoch.Add(3 * time.Hour); !returned.AssignedTo.Equal(want) {
			t.Errorf("AssignedTo = %v, want %v", returned.AssignedTo, want)
		}

		if status, err := m.DeriveDeviceStatus(ctx, d1); err != nil || status != StatusFree {
			t.Fatalf("DeriveDeviceStatus() = %v, %v; want Free", status, err)
		}
		if open, _ := m.CurrentAssignment(ctx, d1); open != nil {
			t.Errorf("CurrentAssignment() after return = %+v, want nil", open)
		}
	})
}

func TestScenarioDoubleIssue(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		ctx := context.Background()
		m, _, _ := newTestManager(db)
		d1 := mustRegister(t, m, "INV-001")

		a1, err := m.IssueDevice(ctx, d1, 7, nil)
		if err != nil {
			t.Fatalf("IssueDevice(7) error = %v", err)
		}

		_, err = m.IssueDevice(ctx, d1, 9, nil)
		if !errors.Is(err, ErrAlreadyAssigned) {
			t.Fatalf("IssueDevice(9) error = %v, want ErrAlreadyAssigned", err)
		}

		active, err := m.ListActiveAssignments(ctx)
		if err != nil {
			t.Fatalf("ListActiveAssignments() error = %v", err)
		}
		if len(active) != 1 || active[0].AssignmentID != a1.AssignmentID || active[0].PersonnelNo != 7 {
			t.Errorf("active = %+v, want only assignment %d for person 7", active, a1.AssignmentID)
		}
	})
}

func TestScenarioDamageNotesInReport(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		ctx := context.Background()
		m, clock, _ := newTestManager(db)
		d1 := mustRegister(t, m, "INV-001")

		a1, err := m.IssueDevice(ctx, d1, 7, nil)
		if err != nil {
			t.Fatalf("IssueDevice() error = %v", err)
		}
		clock.Advance(time.Hour)
		if _, err := m.ReturnDevice(ctx, a1.AssignmentID, ptr("cracked screen")); err != nil {
			t.Fatalf("ReturnDevice() error = %v", err)
		}

		rows, err := m.ExportAssignments(ctx, ExportFilter{})
		if err != nil {
			t.Fatalf("ExportAssignments() error = %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("got %d rows, want 1", len(rows))
		}
		row := rows[0]
		if row.AssignmentID != a1.AssignmentID {
			t.Errorf("AssignmentID = %d, want %d", row.AssignmentID, a1.AssignmentID)
		}
		if row.DamageNotes == nil || *row.DamageNotes != "cracked screen" {
			t.Errorf("DamageNotes = %v, want cracked screen", row.DamageNotes)
		}
		if row.InventoryNo != "INV-001" || row.DeviceType != "Laptop" || row.PersonName != "Ada Lovelace" {
			t.Errorf("row = %+v", row)
		}
		if row.Location != nil {
			t.Errorf("Location = %v, want nil for device without location", *row.Location)
		}
		if !row.AssignedFrom.Equal(testEpoch) || row.AssignedTo == nil || !row.AssignedTo.Equal(testEpoch.Add(time.Hour)) {
			t.Errorf("period = %v .. %v", row.AssignedFrom, row.AssignedTo)
		}
	})
}

// =============================================================================
// Lifecycle properties
// =============================================================================

func TestConcurrentIssueSingleWinner(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		ctx := context.Background()
		m, _, pub := newTestManager(db)
		d1 := mustRegister(t, m, "INV-RACE")

		const attempts = 16
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
			others    []error
		)
		start := make(chan struct{})
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := m.IssueDevice(ctx, d1, 7, nil)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, ErrAlreadyAssigned):
					conflicts++
				default:
					others = append(others, err)
				}
			}()
		}
		close(start)
		wg.Wait()

		if successes != 1 || conflicts != attempts-1 || len(others) != 0 {
			t.Fatalf("successes=%d conflicts=%d others=%v; want 1/%d/none", successes, conflicts, others, attempts-1)
		}

		var open int
		if err := db.QueryRowContext(ctx, db.Rebind("SELECT COUNT(*) FROM assignment WHERE device_id = ? AND assigned_to IS NULL"), d1).Scan(&open); err != nil {
			t.Fatalf("counting open assignments: %v", err)
		}
		if open != 1 {
			t.Errorf("open assignments = %d, want 1", open)
		}

		issuedEvents := 0
		for _, e := range pub.Events() {
			if e.Topic == TopicAssignmentIssued {
				issuedEvents++
			}
		}
		if issuedEvents != 1 {
			t.Errorf("issued events = %d, want 1", issuedEvents)
		}
	})
}

func TestReturnIsOnceOnly(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		ctx := context.Background()
		m, clock, _ := newTestManager(db)
		d1 := mustRegister(t, m, "INV-001")

		a1, err := m.IssueDevice(ctx, d1, 7, nil)
		if err != nil {
			t.Fatalf("IssueDevice() error = %v", err)
		}
		clock.Advance(time.Minute)

		const attempts = 8
		results := make(chan error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := m.ReturnDevice(ctx, a1.AssignmentID, nil)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		successes := 0
		for err := range results {
			switch {
			case err == nil:
				successes++
			case !errors.Is(err, ErrNotFoundOrAlreadyReturned):
				t.Errorf("ReturnDevice() unexpected error = %v", err)
			}
		}
		if successes != 1 {
			t.Errorf("successes = %d, want 1", successes)
		}

		// Subsequent sequential calls keep failing.
		for i := 0; i < 2; i++ {
			if _, err := m.ReturnDevice(ctx, a1.AssignmentID, nil); !errors.Is(err, ErrNotFoundOrAlreadyReturned) {
				t.Errorf("ReturnDevice() repeat error = %v, want ErrNotFoundOrAlreadyReturned", err)
			}
		}
	})
}

func TestReturnUnknownAssignment(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		m, _, pub := newTestManager(db)

		if _, err := m.ReturnDevice(context.Background(), 4242, nil); !errors.Is(err, ErrNotFoundOrAlreadyReturned) {
			t.Errorf("ReturnDevice() error = %v, want ErrNotFoundOrAlreadyReturned", err)
		}
		if len(pub.Events()) != 0 {
			t.Errorf("events published on failure: %+v", pub.Events())
		}
	})
}

func TestReturnBeforeIssueIsInvalidDateRange(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		ctx := context.Background()
		m, clock, pub := newTestManager(db)
		d1 := mustRegister(t, m, "INV-001")

		a1, err := m.IssueDevice(ctx, d1, 7, ptr(testEpoch))
		if err != nil {
			t.Fatalf("IssueDevice() error = %v", err)
		}

		clock.Set(testEpoch.Add(-time.Hour))
		_, err = m.ReturnDevice(ctx, a1.AssignmentID, ptr("should not be stored"))
		if !errors.Is(err, ErrInvalidDateRange) {
			t.Fatalf("ReturnDevice() error = %v, want ErrInvalidDateRange", err)
		}
		if errors.Is(err, ErrUnavailable) {
			t.Error("InvalidDateRange must not be reported as unavailable")
		}

		open, err := m.CurrentAssignment(ctx, d1)
		if err != nil {
			t.Fatalf("CurrentAssignment() error = %v", err)
		}
		if open == nil || open.ID != a1.AssignmentID {
			t.Fatalf("assignment should remain open, got %+v", open)
		}
		if open.DamageNotes != nil {
			t.Errorf("damage notes partially written: %q", *open.DamageNotes)
		}

		for _, e := range pub.Events() {
			if e.Topic == TopicAssignmentReturned {
				t.Error("returned event published for failed return")
			}
		}

		// The same assignment returns fine once the clock is sane.
		clock.Set(testEpoch.Add(time.Hour))
		if _, err := m.ReturnDevice(ctx, a1.AssignmentID, nil); err != nil {
			t.Errorf("ReturnDevice() after clock fix error = %v", err)
		}
	})
}

func TestReturnAtIssueInstantIsAllowed(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		ctx := context.Background()
		m, _, _ := newTestManager(db)
		d1 := mustRegister(t, m, "INV-001")

		a1, err := m.IssueDevice(ctx, d1, 7, nil)
		if err != nil {
			t.Fatalf("IssueDevice() error = %v", err)
		}
		if _, err := m.ReturnDevice(ctx, a1.AssignmentID, nil); err != nil {
			t.Errorf("ReturnDevice() at assigned_from error = %v", err)
		}
	})
}

func TestIssueDeviceRejectsUnstorableYears(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		ctx := context.Background()
		m, clock, pub := newTestManager(db)
		d1 := mustRegister(t, m, "INV-001")

		for _, from := range []time.Time{
			time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(0, 12, 31, 23, 0, 0, 0, time.UTC),
		} {
			if _, err := m.IssueDevice(ctx, d1, 7, &from); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("IssueDevice(%v) error = %v, want ErrInvalidInput", from, err)
			}
		}
		if open, err := m.CurrentAssignment(ctx, d1); err != nil || open != nil {
			t.Fatalf("CurrentAssignment() = %+v, %v; want no open assignment", open, err)
		}
		if len(pub.Events()) != 1 {
			t.Errorf("events = %+v, want only device.registered", pub.Events())
		}

		// The last storable instant still issues, and a return before it
		// is still caught by the date range check.
		last := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
		a1, err := m.IssueDevice(ctx, d1, 7, &last)
		if err != nil {
			t.Fatalf("IssueDevice(9999) error = %v", err)
		}
		clock.Set(time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC))
		if _, err := m.ReturnDevice(ctx, a1.AssignmentID, nil); !errors.Is(err, ErrInvalidDateRange) {
			t.Errorf("ReturnDevice() error = %v, want ErrInvalidDateRange", err)
		}
	})
}

func TestReturnDeviceRejectsUnstorableClock(t *testing.T) {
	db := openSQLiteStore(t)
	ctx := context.Background()
	m, clock, _ := newTestManager(db)
	d1 := mustRegister(t, m, "INV-001")

	a1, err := m.IssueDevice(ctx, d1, 7, ptr(testEpoch))
	if err != nil {
		t.Fatalf("IssueDevice() error = %v", err)
	}
	clock.Set(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC))
	if _, err := m.ReturnDevice(ctx, a1.AssignmentID, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("ReturnDevice() error = %v, want ErrInvalidInput", err)
	}
	if open, err := m.CurrentAssignment(ctx, d1); err != nil || open == nil {
		t.Errorf("assignment should remain open, got %+v, %v", open, err)
	}
}

func TestDuplicateInventoryNumber(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		ctx := context.Background()
		m, _, pub := newTestManager(db)
		mustRegister(t, m, "INV-001")

		_, err := m.RegisterDevice(ctx, NewDevice{InventoryNo: "  INV-001 ", DeviceTypeID: 2})
		if !errors.Is(err, ErrDuplicateInventoryNumber) {
			t.Fatalf("RegisterDevice() error = %v, want ErrDuplicateInventoryNumber", err)
		}

		devices, err := m.ListDevices(ctx, DeviceFilter{})
		if err != nil {
			t.Fatalf("ListDevices() error = %v", err)
		}
		if len(devices) != 1 {
			t.Errorf("devices = %d, want 1 (no second row)", len(devices))
		}

		registered := 0
		for _, e := range pub.Events() {
			if e.Topic == TopicDeviceRegistered {
				registered++
			}
		}
		if registered != 1 {
			t.Errorf("registered events = %d, want 1", registered)
		}
	})
}

// =============================================================================
// Validation and references
// =============================================================================

func TestRegisterDeviceValidation(t *testing.T) {
	db := openSQLiteStore(t)
	m, _, _ := newTestManager(db)
	ctx := context.Background()

	long := make([]byte, maxInventoryNoLength+1)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name    string
		device  NewDevice
		wantErr error
	}{
		{"empty inventory_no", NewDevice{InventoryNo: "", DeviceTypeID: 1}, ErrInvalidDevice},
		{"blank inventory_no", NewDevice{InventoryNo: "   ", DeviceTypeID: 1}, ErrInvalidDevice},
		{"too long", NewDevice{InventoryNo: string(long), DeviceTypeID: 1}, ErrInvalidDevice},
		{"zero devicetype", NewDevice{InventoryNo: "INV-1", DeviceTypeID: 0}, ErrInvalidDevice},
		{"negative location", NewDevice{InventoryNo: "INV-1", DeviceTypeID: 1, LocationID: ptr(int64(-1))}, ErrInvalidDevice},
		{"unknown devicetype", NewDevice{InventoryNo: "INV-2", DeviceTypeID: 99}, ErrInvalidReference},
		{"unknown location", NewDevice{InventoryNo: "INV-3", DeviceTypeID: 1, LocationID: ptr(int64(99))}, ErrInvalidReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.RegisterDevice(ctx, tt.device); !errors.Is(err, tt.wantErr) {
				t.Errorf("RegisterDevice() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDeviceNormalisesFields(t *testing.T) {
	db := openSQLiteStore(t)
	m, _, pub := newTestManager(db)
	ctx := context.Background()

	id, err := m.RegisterDevice(ctx, NewDevice{
		InventoryNo:  "  INV-042  ",
		DeviceTypeID: 2,
		LocationID:   ptr(int64(1)),
		Model:        ptr("  "),
	})
	if err != nil {
		t.Fatalf("RegisterDevice() error = %v", err)
	}

	d, err := m.GetDevice(ctx, id)
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if d.InventoryNo != "INV-042" {
		t.Errorf("InventoryNo = %q, want trimmed", d.InventoryNo)
	}
	if d.Model != nil {
		t.Errorf("Model = %q, want nil for blank", *d.Model)
	}
	if d.Location == nil || *d.Location != "HQ" || d.DeviceType != "Phone" {
		t.Errorf("device = %+v", d)
	}

	events := pub.Events()
	if len(events) != 1 || events[0].Topic != TopicDeviceRegistered {
		t.Fatalf("events = %+v", events)
	}
	ev, ok := events[0].Payload.(DeviceRegisteredEvent)
	if !ok || ev.DeviceID != id || ev.InventoryNo != "INV-042" {
		t.Errorf("payload = %+v", events[0].Payload)
	}
}

func TestIssueDeviceErrors(t *testing.T) {
	db := openSQLiteStore(t)
	m, _, pub := newTestManager(db)
	ctx := context.Background()
	d1 := mustRegister(t, m, "INV-001")

	tests := []struct {
		name        string
		deviceID    int64
		personnelNo int64
		wantErr     error
	}{
		{"zero device", 0, 7, ErrInvalidInput},
		{"zero person", d1, 0, ErrInvalidInput},
		{"unknown device", 999, 7, ErrDeviceNotFound},
		{"unknown person", d1, 12345, ErrPersonNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.IssueDevice(ctx, tt.deviceID, tt.personnelNo, nil); !errors.Is(err, tt.wantErr) {
				t.Errorf("IssueDevice() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	for _, e := range pub.Events() {
		if e.Topic == TopicAssignmentIssued {
			t.Error("issued event published for failed issue")
		}
	}
}

func TestIssueDeviceEventPayload(t *testing.T) {
	db := openSQLiteStore(t)
	m, _, pub := newTestManager(db)
	ctx := context.Background()
	d1 := mustRegister(t, m, "INV-001")

	from := testEpoch.Add(-24*time.Hour + 1234567)
	res, err := m.IssueDevice(ctx, d1, 9, &from)
	if err != nil {
		t.Fatalf("IssueDevice() error = %v", err)
	}
	if want := from.Truncate(time.Millisecond); !res.AssignedFrom.Equal(want) {
		t.Errorf("AssignedFrom = %v, want %v (millisecond precision)", res.AssignedFrom, want)
	}

	events := pub.Events()
	last := events[len(events)-1]
	ev, ok := last.Payload.(IssuedEvent)
	if last.Topic != TopicAssignmentIssued || !ok {
		t.Fatalf("last event = %+v", last)
	}
	if ev.AssignmentID != res.AssignmentID || ev.DeviceID != d1 || ev.PersonnelNo != 9 || !ev.AssignedFrom.Equal(res.AssignedFrom) {
		t.Errorf("event = %+v, result = %+v", ev, res)
	}
}

func TestReturnDeviceEventPayload(t *testing.T) {
	db := openSQLiteStore(t)
	m, clock, pub := newTestManager(db)
	ctx := context.Background()
	d1 := mustRegister(t, m, "INV-001")

	a1, err := m.IssueDevice(ctx, d1, 7, nil)
	if err != nil {
		t.Fatalf("IssueDevice() error = %v", err)
	}
	clock.Advance(90 * time.Minute)
	if _, err := m.ReturnDevice(ctx, a1.AssignmentID, ptr(" dented lid ")); err != nil {
		t.Fatalf("ReturnDevice() error = %v", err)
	}

	events := pub.Events()
	last := events[len(events)-1]
	ev, ok := last.Payload.(ReturnedEvent)
	if last.Topic != TopicAssignmentReturned || !ok {
		t.Fatalf("last event = %+v", last)
	}
	if ev.AssignmentID != a1.AssignmentID || ev.DeviceID != d1 {
		t.Errorf("event = %+v", ev)
	}
	if ev.DamageNotes == nil || *ev.DamageNotes != "dented lid" {
		t.Errorf("DamageNotes = %v, want trimmed", ev.DamageNotes)
	}
	if !ev.AssignedTo.Equal(testEpoch.Add(90 * time.Minute)) {
		t.Errorf("AssignedTo = %v", ev.AssignedTo)
	}
}

func TestReturnDeviceValidation(t *testing.T) {
	db := openSQLiteStore(t)
	m, _, _ := newTestManager(db)
	ctx := context.Background()

	if _, err := m.ReturnDevice(ctx, 0, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ReturnDevice(0) error = %v, want ErrInvalidInput", err)
	}

	huge := make([]rune, maxDamageNotesLength+1)
	for i := range huge {
		huge[i] = 'ä'
	}
	if _, err := m.ReturnDevice(ctx, 1, ptr(string(huge))); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ReturnDevice(huge notes) error = %v, want ErrInvalidInput", err)
	}
}

func TestPublisherPanicDoesNotFailOperation(t *testing.T) {
	db := openSQLiteStore(t)
	m := NewManager(NewSQLRepository(db), panickingPublisher{}, newFakeClock(testEpoch), nil)
	ctx := context.Background()

	id, err := m.RegisterDevice(ctx, NewDevice{InventoryNo: "INV-001", DeviceTypeID: 1})
	if err != nil {
		t.Fatalf("RegisterDevice() error = %v", err)
	}
	if _, err := m.IssueDevice(ctx, id, 7, nil); err != nil {
		t.Fatalf("IssueDevice() error = %v", err)
	}
	if status, _ := m.DeriveDeviceStatus(ctx, id); status != StatusAssigned {
		t.Errorf("status = %v, want Assigned", status)
	}
}

func TestStoreUnavailable(t *testing.T) {
	db := openSQLiteStore(t)
	m, _, _ := newTestManager(db)
	ctx := context.Background()
	d1 := mustRegister(t, m, "INV-001")

	db.Close() //nolint:errcheck // Closing to simulate outage

	if _, err := m.IssueDevice(ctx, d1, 7, nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("IssueDevice() error = %v, want ErrUnavailable", err)
	}
	if _, err := m.ListDevices(ctx, DeviceFilter{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("ListDevices() error = %v, want ErrUnavailable", err)
	}
	if _, err := m.ReturnDevice(ctx, 1, nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("ReturnDevice() error = %v, want ErrUnavailable", err)
	}
}

func TestDeriveStatusUnknownDevice(t *testing.T) {
	db := openSQLiteStore(t)
	m, _, _ := newTestManager(db)

	if _, err := m.DeriveDeviceStatus(context.Background(), 777); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("DeriveDeviceStatus() error = %v, want ErrDeviceNotFound", err)
	}
	if _, err := m.CurrentAssignment(context.Background(), 777); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("CurrentAssignment() error = %v, want ErrDeviceNotFound", err)
	}
}

func TestListFiltersValidation(t *testing.T) {
	db := openSQLiteStore(t)
	m, _, _ := newTestManager(db)
	ctx := context.Background()

	if _, err := m.ListDevices(ctx, DeviceFilter{Status: "Lost"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ListDevices(bad status) error = %v", err)
	}
	if _, err := m.ExportAssignments(ctx, ExportFilter{Limit: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ExportAssignments(limit -1) error = %v", err)
	}
	if _, err := m.ExportAssignments(ctx, ExportFilter{Limit: MaxExportLimit + 1}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ExportAssignments(limit above max) error = %v", err)
	}
	if _, err := m.ExportAssignments(ctx, ExportFilter{Limit: MaxExportLimit}); err != nil {
		t.Errorf("ExportAssignments(limit at max) error = %v", err)
	}
	from, until := testEpoch, testEpoch.Add(-time.Hour)
	if _, err := m.ExportAssignments(ctx, ExportFilter{From: &from, Until: &until}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ExportAssignments(inverted range) error = %v", err)
	}
}

func TestSeedReferenceDataValidation(t *testing.T) {
	db := openSQLiteStore(t)
	m, _, _ := newTestManager(db)

	bad := ReferenceData{Persons: []Person{{PersonnelNo: 0, Name: "Nobody"}}}
	if _, err := m.SeedReferenceData(context.Background(), bad); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SeedReferenceData() error = %v, want ErrInvalidInput", err)
	}
}
