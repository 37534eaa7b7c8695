package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// TestDeviceStatusProperty drives random issue/return sequences and checks
// that the derived status always matches a simple model: Assigned iff the
// model holds an open assignment for the device, and never two open rows.
func TestDeviceStatusProperty(t *testing.T) {
	db := openSQLiteStore(t)
	clock := newFakeClock(testEpoch)
	m := NewManager(NewSQLRepository(db), nil, clock, nil)
	ctx := context.Background()

	run := 0
	rapid.Check(t, func(rt *rapid.T) {
		run++

		const devices = 3
		ids := make([]int64, devices)
		for i := range ids {
			id, err := m.RegisterDevice(ctx, NewDevice{
				InventoryNo:  fmt.Sprintf("PROP-%d-%d", run, i),
				DeviceTypeID: 1,
			})
			if err != nil {
				rt.Fatalf("RegisterDevice() error = %v", err)
			}
			ids[i] = id
		}

		// open maps device index to its open assignment id.
		open := map[int]int64{}

		steps := rapid.IntRange(1, 25).Draw(rt, "steps")
		for s := 0; s < steps; s++ {
			dev := rapid.IntRange(0, devices-1).Draw(rt, "device")
			clock.Advance(time.Minute)

			if rapid.Bool().Draw(rt, "issue") {
				person := rapid.SampledFrom([]int64{7, 9}).Draw(rt, "person")
				res, err := m.IssueDevice(ctx, ids[dev], person, nil)
				_, wasOpen := open[dev]
				switch {
				case wasOpen && !errors.Is(err, ErrAlreadyAssigned):
					rt.Fatalf("issue on open device: err = %v, want ErrAlreadyAssigned", err)
				case !wasOpen && err != nil:
					rt.Fatalf("issue on free device: err = %v", err)
				case !wasOpen:
					open[dev] = res.AssignmentID
				}
			} else {
				assignmentID, wasOpen := open[dev]
				if !wasOpen {
					// Returning something never issued, or already returned.
					assignmentID = rapid.Int64Range(1_000_000, 2_000_000).Draw(rt, "bogus")
				}
				_, err := m.ReturnDevice(ctx, assignmentID, nil)
				switch {
				case wasOpen && err != nil:
					rt.Fatalf("return open assignment: err = %v", err)
				case !wasOpen && !errors.Is(err, ErrNotFoundOrAlreadyReturned):
					rt.Fatalf("return bogus assignment: err = %v, want ErrNotFoundOrAlreadyReturned", err)
				case wasOpen:
					delete(open, dev)
				}
			}

			for i, id := range ids {
				status, err := m.DeriveDeviceStatus(ctx, id)
				if err != nil {
					rt.Fatalf("DeriveDeviceStatus() error = %v", err)
				}
				_, wantAssigned := open[i]
				if (status == StatusAssigned) != wantAssigned {
					rt.Fatalf("device %d status = %s, model open = %v", id, status, wantAssigned)
				}

				var n int
				if err := db.QueryRowContext(ctx,
					"SELECT COUNT(*) FROM assignment WHERE device_id = ? AND assigned_to IS NULL", id,
				).Scan(&n); err != nil {
					rt.Fatalf("counting open rows: %v", err)
				}
				if n > 1 {
					rt.Fatalf("device %d has %d open assignments", id, n)
				}
			}
		}
	})
}
