// Package inventory implements device registration and the assignment
// lifecycle (issue, return) for Inventar Core.
//
// # Integrity rules
//
//   - Inventory numbers are unique (UNIQUE constraint on device.inventory_no).
//   - A device has at most one open assignment (partial unique index
//     on assignment(device_id) WHERE assigned_to IS NULL).
//   - A returned assignment never ends before it started (CHECK constraint).
//
// The rules live in the schema; the Manager never relies on an
// application-level check-then-act. Constraint failures are classified
// from typed driver errors and surfaced as the sentinels in errors.go.
//
// # Architecture
//
//	HTTP / CLI ──▶ Manager ──▶ Repository (SQLRepository: SQLite | PostgreSQL)
//	                  │
//	                  └──▶ Publisher (after commit, best-effort)
//
// A device's status is never stored. It is Assigned exactly when an open
// assignment references the device.
//
// # Usage
//
//	repo := inventory.NewSQLRepository(db)
//	mgr := inventory.NewManager(repo, dispatcher, inventory.SystemClock{}, log)
//
//	id, err := mgr.RegisterDevice(ctx, inventory.NewDevice{InventoryNo: "INV-001", DeviceTypeID: 1})
//	res, err := mgr.IssueDevice(ctx, id, 7, nil)
//	if errors.Is(err, inventory.ErrAlreadyAssigned) {
//	    // someone else has it
//	}
//	_, err = mgr.ReturnDevice(ctx, res.AssignmentID, &notes)
package inventory
