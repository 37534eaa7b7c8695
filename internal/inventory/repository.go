package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/inventar-app/inventar-core/internal/infrastructure/database"
)

// Repository defines the data-access operations of the inventory.
//
// Implementations must make each mutating operation atomic and report
// failures with the package's sentinel errors: domain violations as
// their specific error, infrastructure failures wrapped in ErrUnavailable.
type Repository interface {
	// OpenAssignment checks that the device has no open assignment and
	// inserts one, in a single transaction. Returns the new assignment ID.
	// Returns ErrDeviceNotFound, ErrPersonNotFound or ErrAlreadyAssigned.
	OpenAssignment(ctx context.Context, deviceID, personnelNo int64, from time.Time) (int64, error)

	// CloseAssignment sets assigned_to and damage_notes on an open
	// assignment. Returns the device ID and the stored return time.
	// Returns ErrNotFoundOrAlreadyReturned or ErrInvalidDateRange.
	CloseAssignment(ctx context.Context, assignmentID int64, at time.Time, notes *string) (int64, time.Time, error)

	// InsertDevice inserts a device, relying on the unique inventory
	// number constraint. Returns ErrDuplicateInventoryNumber or
	// ErrInvalidReference.
	InsertDevice(ctx context.Context, d NewDevice) (int64, error)

	// FindOpenAssignment returns the open assignment for a device, or nil.
	FindOpenAssignment(ctx context.Context, deviceID int64) (*Assignment, error)

	// QueryAssignments returns the reporting projection, newest first.
	QueryAssignments(ctx context.Context, f ExportFilter) ([]AssignmentRecord, error)

	// GetDevice retrieves one device with derived status.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetDevice(ctx context.Context, id int64) (*DeviceSummary, error)

	// ListDevices returns devices with derived status, by inventory number.
	ListDevices(ctx context.Context, f DeviceFilter) ([]DeviceSummary, error)

	// ListActiveAssignments returns all open assignments, newest first.
	ListActiveAssignments(ctx context.Context) ([]ActiveAssignment, error)

	ListDeviceTypes(ctx context.Context) ([]DeviceType, error)
	ListLocations(ctx context.Context) ([]Location, error)
	ListPersons(ctx context.Context) ([]Person, error)

	// SeedReferenceData inserts reference rows, skipping existing keys.
	SeedReferenceData(ctx context.Context, data ReferenceData) (SeedResult, error)
}

// SeedResult counts the rows actually inserted by SeedReferenceData.
type SeedResult struct {
	DeviceTypes int `json:"devicetypes"`
	Locations   int `json:"locations"`
	Persons     int `json:"persons"`
}

// SQLRepository implements Repository on SQLite or PostgreSQL.
type SQLRepository struct {
	db *database.DB
	x  *sqlx.DB
}

// NewSQLRepository creates a repository over an open, migrated database.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db, x: db.SQLX()}
}

// assignmentRow is the scan target for assignment columns.
type assignmentRow struct {
	ID           int64         `db:"id"`
	DeviceID     int64         `db:"device_id"`
	PersonnelNo  int64         `db:"personnel_no"`
	AssignedFrom database.Time `db:"assigned_from"`
	AssignedTo   database.Time `db:"assigned_to"`
	DamageNotes  *string       `db:"damage_notes"`
}

func (row assignmentRow) toAssignment() *Assignment {
	return &Assignment{
		ID:           row.ID,
		DeviceID:     row.DeviceID,
		PersonnelNo:  row.PersonnelNo,
		AssignedFrom: row.AssignedFrom.Time,
		AssignedTo:   row.AssignedTo.Ptr(),
		DamageNotes:  row.DamageNotes,
	}
}

// OpenAssignment implements Repository.
func (r *SQLRepository) OpenAssignment(ctx context.Context, deviceID, personnelNo int64, from time.Time) (int64, error) {
	tx, err := r.x.BeginTxx(ctx, nil)
	if err != nil {
		return 0, unavailable("beginning issue", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	found, err := rowExists(ctx, tx, tx.Rebind("SELECT 1 FROM device WHERE id = ?"), deviceID)
	if err != nil {
		return 0, unavailable("checking device", err)
	}
	if !found {
		return 0, ErrDeviceNotFound
	}

	found, err = rowExists(ctx, tx, tx.Rebind("SELECT 1 FROM person WHERE personnel_no = ?"), personnelNo)
	if err != nil {
		return 0, unavailable("checking person", err)
	}
	if !found {
		return 0, ErrPersonNotFound
	}

	open, err := r.findOpenAssignment(ctx, tx, deviceID)
	if err != nil {
		return 0, err
	}
	if open != nil {
		return 0, ErrAlreadyAssigned
	}

	var id int64
	err = tx.QueryRowxContext(ctx,
		tx.Rebind("INSERT INTO assignment (device_id, personnel_no, assigned_from) VALUES (?, ?, ?) RETURNING id"),
		deviceID, personnelNo, r.db.TimeValue(from),
	).Scan(&id)
	if err != nil {
		return 0, classifyIssueError(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, classifyIssueError(err)
	}
	return id, nil
}

func classifyIssueError(err error) error {
	switch database.ConstraintViolation(err) {
	case database.UniqueViolation:
		// A concurrent issue committed first; the partial unique index caught it.
		return fmt.Errorf("%w: %w", ErrAlreadyAssigned, err)
	case database.ForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	default:
		return unavailable("inserting assignment", err)
	}
}

// CloseAssignment implements Repository.
func (r *SQLRepository) CloseAssignment(ctx context.Context, assignmentID int64, at time.Time, notes *string) (int64, time.Time, error) {
	tx, err := r.x.BeginTxx(ctx, nil)
	if err != nil {
		return 0, time.Time{}, unavailable("beginning return", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	var row struct {
		DeviceID   int64         `db:"device_id"`
		AssignedTo database.Time `db:"assigned_to"`
	}
	err = tx.QueryRowxContext(ctx,
		tx.Rebind(`UPDATE assignment SET assigned_to = ?, damage_notes = ?
			WHERE id = ? AND assigned_to IS NULL
			RETURNING device_id, assigned_to`),
		r.db.TimeValue(at), notes, assignmentID,
	).StructScan(&row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, time.Time{}, ErrNotFoundOrAlreadyReturned
	case database.ConstraintViolation(err) == database.CheckViolation:
		return 0, time.Time{}, fmt.Errorf("%w: %w", ErrInvalidDateRange, err)
	case err != nil:
		return 0, time.Time{}, unavailable("closing assignment", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, time.Time{}, unavailable("committing return", err)
	}
	return row.DeviceID, row.AssignedTo.Time, nil
}

// InsertDevice implements Repository.
func (r *SQLRepository) InsertDevice(ctx context.Context, d NewDevice) (int64, error) {
	var id int64
	err := r.x.QueryRowxContext(ctx,
		r.x.Rebind("INSERT INTO device (inventory_no, devicetype_id, location_id, model) VALUES (?, ?, ?, ?) RETURNING id"),
		d.InventoryNo, d.DeviceTypeID, d.LocationID, d.Model,
	).Scan(&id)
	if err == nil {
		return id, nil
	}

	switch database.ConstraintViolation(err) {
	case database.UniqueViolation:
		return 0, fmt.Errorf("%w: %w", ErrDuplicateInventoryNumber, err)
	case database.ForeignKeyViolation:
		return 0, fmt.Errorf("%w: %w", ErrInvalidReference, err)
	case database.NotNullViolation, database.CheckViolation:
		return 0, fmt.Errorf("%w: %w", ErrInvalidDevice, err)
	default:
		return 0, unavailable("inserting device", err)
	}
}

// FindOpenAssignment implements Repository.
func (r *SQLRepository) FindOpenAssignment(ctx context.Context, deviceID int64) (*Assignment, error) {
	return r.findOpenAssignment(ctx, r.x, deviceID)
}

func (r *SQLRepository) findOpenAssignment(ctx context.Context, q sqlx.QueryerContext, deviceID int64) (*Assignment, error) {
	var row assignmentRow
	err := sqlx.GetContext(ctx, q, &row, r.x.Rebind(`
		SELECT id, device_id, personnel_no, assigned_from, assigned_to, damage_notes
		FROM assignment
		WHERE device_id = ? AND assigned_to IS NULL`), deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("finding open assignment", err)
	}
	return row.toAssignment(), nil
}

// ListActiveAssignments implements Repository.
func (r *SQLRepository) ListActiveAssignments(ctx context.Context) ([]ActiveAssignment, error) {
	var rows []struct {
		AssignmentID int64         `db:"assignment_id"`
		AssignedFrom database.Time `db:"assigned_from"`
		DeviceID     int64         `db:"device_id"`
		InventoryNo  string        `db:"inventory_no"`
		Model        *string       `db:"model"`
		PersonnelNo  int64         `db:"personnel_no"`
		PersonName   string        `db:"person_name"`
	}
	err := r.x.SelectContext(ctx, &rows, `
		SELECT a.id AS assignment_id, a.assigned_from, d.id AS device_id,
			d.inventory_no, d.model, p.personnel_no, p.name AS person_name
		FROM assignment a
		JOIN device d ON d.id = a.device_id
		JOIN person p ON p.personnel_no = a.personnel_no
		WHERE a.assigned_to IS NULL
		ORDER BY a.assigned_from DESC, a.id DESC`)
	if err != nil {
		return nil, unavailable("listing active assignments", err)
	}

	out := make([]ActiveAssignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, ActiveAssignment{
			AssignmentID: row.AssignmentID,
			AssignedFrom: row.AssignedFrom.Time,
			DeviceID:     row.DeviceID,
			InventoryNo:  row.InventoryNo,
			Model:        row.Model,
			PersonnelNo:  row.PersonnelNo,
			PersonName:   row.PersonName,
		})
	}
	return out, nil
}

// ListDeviceTypes implements Repository.
func (r *SQLRepository) ListDeviceTypes(ctx context.Context) ([]DeviceType, error) {
	out := []DeviceType{}
	if err := r.x.SelectContext(ctx, &out, "SELECT id, description FROM devicetype ORDER BY id"); err != nil {
		return nil, unavailable("listing device types", err)
	}
	return out, nil
}

// ListLocations implements Repository.
func (r *SQLRepository) ListLocations(ctx context.Context) ([]Location, error) {
	out := []Location{}
	if err := r.x.SelectContext(ctx, &out, "SELECT id, name FROM location ORDER BY id"); err != nil {
		return nil, unavailable("listing locations", err)
	}
	return out, nil
}

// ListPersons implements Repository.
func (r *SQLRepository) ListPersons(ctx context.Context) ([]Person, error) {
	out := []Person{}
	if err := r.x.SelectContext(ctx, &out, "SELECT personnel_no, name FROM person ORDER BY personnel_no"); err != nil {
		return nil, unavailable("listing persons", err)
	}
	return out, nil
}

// SeedReferenceData implements Repository.
func (r *SQLRepository) SeedReferenceData(ctx context.Context, data ReferenceData) (SeedResult, error) {
	var res SeedResult

	tx, err := r.x.BeginTxx(ctx, nil)
	if err != nil {
		return res, unavailable("beginning seed", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	insert := func(query string, args ...any) (int, error) {
		result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return 0, err
		}
		n, err := result.RowsAffected()
		return int(n), err
	}

	for _, dt := range data.DeviceTypes {
		n, err := insert("INSERT INTO devicetype (id, description) VALUES (?, ?) ON CONFLICT (id) DO NOTHING", dt.ID, dt.Description)
		if err != nil {
			return res, unavailable("seeding device type", err)
		}
		res.DeviceTypes += n
	}
	for _, loc := range data.Locations {
		n, err := insert("INSERT INTO location (id, name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING", loc.ID, loc.Name)
		if err != nil {
			return res, unavailable("seeding location", err)
		}
		res.Locations += n
	}
	for _, p := range data.Persons {
		n, err := insert("INSERT INTO person (personnel_no, name) VALUES (?, ?) ON CONFLICT (personnel_no) DO NOTHING", p.PersonnelNo, p.Name)
		if err != nil {
			return res, unavailable("seeding person", err)
		}
		res.Persons += n
	}

	if r.db.Driver() == database.DriverPostgres {
		// Explicit ids do not advance BIGSERIAL sequences.
		for _, table := range []string{"devicetype", "location"} {
			q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1)) FROM %[1]s", table)
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return res, unavailable("resetting sequence", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, unavailable("committing seed", err)
	}
	return res, nil
}

// rowExists reports whether query returns at least one row.
func rowExists(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowxContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
