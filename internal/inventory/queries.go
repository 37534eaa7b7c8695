package inventory

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/inventar-app/inventar-core/internal/infrastructure/database"
)

// deviceQuery selects devices joined with type, location and the open
// assignment, deriving status in SQL.
func (r *SQLRepository) deviceQuery() *goqu.SelectDataset {
	return r.db.Goqu().
		From(goqu.T("device").As("d")).
		Join(goqu.T("devicetype").As("dt"), goqu.On(goqu.I("dt.id").Eq(goqu.I("d.devicetype_id")))).
		LeftJoin(goqu.T("location").As("l"), goqu.On(goqu.I("l.id").Eq(goqu.I("d.location_id")))).
		LeftJoin(goqu.T("assignment").As("a"), goqu.On(
			goqu.I("a.device_id").Eq(goqu.I("d.id")),
			goqu.I("a.assigned_to").IsNull(),
		)).
		Select(
			goqu.I("d.id"),
			goqu.I("d.inventory_no"),
			goqu.I("d.model"),
			goqu.I("d.devicetype_id"),
			goqu.I("dt.description").As("devicetype"),
			goqu.I("d.location_id"),
			goqu.I("l.name").As("location"),
			goqu.L("CASE WHEN a.id IS NULL THEN 'Free' ELSE 'Assigned' END").As("status"),
			goqu.I("a.id").As("open_assignment_id"),
			goqu.I("a.personnel_no").As("holder_personnel_no"),
		).
		Prepared(true)
}

// GetDevice implements Repository.
func (r *SQLRepository) GetDevice(ctx context.Context, id int64) (*DeviceSummary, error) {
	query, args, err := r.deviceQuery().Where(goqu.I("d.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, unavailable("building device query", err)
	}

	var out []DeviceSummary
	if err := r.x.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, unavailable("getting device", err)
	}
	if len(out) == 0 {
		return nil, ErrDeviceNotFound
	}
	return &out[0], nil
}

// ListDevices implements Repository.
func (r *SQLRepository) ListDevices(ctx context.Context, f DeviceFilter) ([]DeviceSummary, error) {
	ds := r.deviceQuery().Order(goqu.I("d.inventory_no").Asc())

	switch f.Status {
	case StatusFree:
		ds = ds.Where(goqu.I("a.id").IsNull())
	case StatusAssigned:
		ds = ds.Where(goqu.I("a.id").IsNotNull())
	}
	if f.DeviceTypeID != nil {
		ds = ds.Where(goqu.I("d.devicetype_id").Eq(*f.DeviceTypeID))
	}
	if f.LocationID != nil {
		ds = ds.Where(goqu.I("d.location_id").Eq(*f.LocationID))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, unavailable("building device list", err)
	}

	out := []DeviceSummary{}
	if err := r.x.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, unavailable("listing devices", err)
	}
	return out, nil
}

// recordRow is the scan target for the reporting projection.
type recordRow struct {
	AssignmentID int64         `db:"assignment_id"`
	InventoryNo  string        `db:"inventory_no"`
	DeviceType   string        `db:"devicetype"`
	Location     *string       `db:"location"`
	PersonName   string        `db:"person_name"`
	AssignedFrom database.Time `db:"assigned_from"`
	AssignedTo   database.Time `db:"assigned_to"`
	DamageNotes  *string       `db:"damage_notes"`
}

// QueryAssignments implements Repository. It is a single SELECT, so the
// rows come from one consistent snapshot.
func (r *SQLRepository) QueryAssignments(ctx context.Context, f ExportFilter) ([]AssignmentRecord, error) {
	ds := r.db.Goqu().
		From(goqu.T("assignment").As("a")).
		Join(goqu.T("device").As("d"), goqu.On(goqu.I("d.id").Eq(goqu.I("a.device_id")))).
		Join(goqu.T("devicetype").As("dt"), goqu.On(goqu.I("dt.id").Eq(goqu.I("d.devicetype_id")))).
		LeftJoin(goqu.T("location").As("l"), goqu.On(goqu.I("l.id").Eq(goqu.I("d.location_id")))).
		Join(goqu.T("person").As("p"), goqu.On(goqu.I("p.personnel_no").Eq(goqu.I("a.personnel_no")))).
		Select(
			goqu.I("a.id").As("assignment_id"),
			goqu.I("d.inventory_no"),
			goqu.I("dt.description").As("devicetype"),
			goqu.I("l.name").As("location"),
			goqu.I("p.name").As("person_name"),
			goqu.I("a.assigned_from"),
			goqu.I("a.assigned_to"),
			goqu.I("a.damage_notes"),
		).
		Order(goqu.I("a.assigned_from").Desc(), goqu.I("a.id").Desc()).
		Prepared(true)

	if f.PersonnelNo != nil {
		ds = ds.Where(goqu.I("a.personnel_no").Eq(*f.PersonnelNo))
	}
	if f.DeviceID != nil {
		ds = ds.Where(goqu.I("a.device_id").Eq(*f.DeviceID))
	}
	if f.From != nil {
		ds = ds.Where(goqu.I("a.assigned_from").Gte(r.db.TimeValue(*f.From)))
	}
	if f.Until != nil {
		ds = ds.Where(goqu.I("a.assigned_from").Lt(r.db.TimeValue(*f.Until)))
	}
	if f.OpenOnly {
		ds = ds.Where(goqu.I("a.assigned_to").IsNull())
	}
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, unavailable("building export query", err)
	}

	var rows []recordRow
	if err := r.x.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, unavailable("querying assignments", err)
	}

	out := make([]AssignmentRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, AssignmentRecord{
			AssignmentID: row.AssignmentID,
			InventoryNo:  row.InventoryNo,
			DeviceType:   row.DeviceType,
			Location:     row.Location,
			PersonName:   row.PersonName,
			AssignedFrom: row.AssignedFrom.Time,
			AssignedTo:   row.AssignedTo.Ptr(),
			DamageNotes:  row.DamageNotes,
		})
	}
	return out, nil
}
