package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Input limits.
const (
	maxInventoryNoLength = 64
	maxModelLength       = 200
	maxDamageNotesLength = 2000
)

// MaxExportLimit is the largest row cap ExportAssignments accepts.
const MaxExportLimit = 100000

// Publisher announces committed changes. Publish must not block the
// caller for long and has no error return: delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any)
}

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// noopPublisher drops every event.
type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) {}

// Manager runs the device lifecycle: registration, issue and return.
//
// The Manager holds no mutable state. Integrity is enforced by the
// Repository's transactions and the schema constraints, so any number
// of Managers (or processes) may share one store.
type Manager struct {
	repo   Repository
	pub    Publisher
	clock  Clock
	logger Logger
}

// NewManager creates a Manager. Nil publisher, clock or logger are
// replaced with no-op, wall-clock and silent defaults.
func NewManager(repo Repository, pub Publisher, clock Clock, logger Logger) *Manager {
	if pub == nil {
		pub = noopPublisher{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Manager{repo: repo, pub: pub, clock: clock, logger: logger}
}

// IssueDevice opens an assignment of a device to a person.
//
// assignedFrom defaults to the Manager's clock when nil. The check for an
// existing open assignment and the insert are one transaction, and the
// schema allows only one open assignment per device, so concurrent
// issues of the same device yield one success and ErrAlreadyAssigned
// for the rest.
//
// Returns ErrInvalidInput (including an assigned_from outside years
// 1-9999), ErrDeviceNotFound, ErrPersonNotFound, ErrAlreadyAssigned or
// ErrUnavailable.
func (m *Manager) IssueDevice(ctx context.Context, deviceID, personnelNo int64, assignedFrom *time.Time) (*IssueResult, error) {
	if deviceID <= 0 || personnelNo <= 0 {
		return nil, fmt.Errorf("%w: device_id and personnel_no must be positive", ErrInvalidInput)
	}

	from := m.clock.Now()
	if assignedFrom != nil {
		from = *assignedFrom
	}
	if err := checkStoreTime("assigned_from", from); err != nil {
		return nil, err
	}
	from = storeTime(from)

	id, err := m.repo.OpenAssignment(ctx, deviceID, personnelNo, from)
	if err != nil {
		m.logFailure("issue device failed", err, "device_id", deviceID, "personnel_no", personnelNo)
		return nil, err
	}

	m.logger.Info("device issued", "assignment_id", id, "device_id", deviceID, "personnel_no", personnelNo)
	m.publish(ctx, TopicAssignmentIssued, IssuedEvent{
		AssignmentID: id,
		DeviceID:     deviceID,
		PersonnelNo:  personnelNo,
		AssignedFrom: from,
	})

	return &IssueResult{
		AssignmentID: id,
		DeviceID:     deviceID,
		PersonnelNo:  personnelNo,
		AssignedFrom: from,
	}, nil
}

// ReturnDevice closes an open assignment at the Manager's current time.
//
// Blank damage notes are stored as NULL. The close is one conditional
// UPDATE, so of two concurrent returns only one succeeds.
//
// Returns ErrInvalidInput, ErrNotFoundOrAlreadyReturned,
// ErrInvalidDateRange (the clock is before assigned_from; the assignment
// stays open) or ErrUnavailable.
func (m *Manager) ReturnDevice(ctx context.Context, assignmentID int64, damageNotes *string) (*ReturnResult, error) {
	if assignmentID <= 0 {
		return nil, fmt.Errorf("%w: assignment id must be positive", ErrInvalidInput)
	}

	notes, err := normaliseOptional(damageNotes, maxDamageNotesLength)
	if err != nil {
		return nil, fmt.Errorf("%w: damage_notes: %w", ErrInvalidInput, err)
	}

	now := m.clock.Now()
	if err := checkStoreTime("assigned_to", now); err != nil {
		return nil, err
	}
	at := storeTime(now)
	deviceID, assignedTo, err := m.repo.CloseAssignment(ctx, assignmentID, at, notes)
	if err != nil {
		m.logFailure("return device failed", err, "assignment_id", assignmentID)
		return nil, err
	}

	m.logger.Info("device returned", "assignment_id", assignmentID, "device_id", deviceID)
	m.publish(ctx, TopicAssignmentReturned, ReturnedEvent{
		AssignmentID: assignmentID,
		DeviceID:     deviceID,
		AssignedTo:   assignedTo,
		DamageNotes:  notes,
	})

	return &ReturnResult{
		AssignmentID: assignmentID,
		DeviceID:     deviceID,
		AssignedTo:   assignedTo,
	}, nil
}

// RegisterDevice validates and inserts a device. The unique constraint on
// inventory_no is the only duplicate check.
//
// Returns ErrInvalidDevice, ErrDuplicateInventoryNumber,
// ErrInvalidReference or ErrUnavailable.
func (m *Manager) RegisterDevice(ctx context.Context, d NewDevice) (int64, error) {
	clean, err := validateNewDevice(d)
	if err != nil {
		return 0, err
	}

	id, err := m.repo.InsertDevice(ctx, clean)
	if err != nil {
		m.logFailure("register device failed", err, "inventory_no", clean.InventoryNo)
		return 0, err
	}

	m.logger.Info("device registered", "device_id", id, "inventory_no", clean.InventoryNo)
	m.publish(ctx, TopicDeviceRegistered, DeviceRegisteredEvent{
		DeviceID:     id,
		InventoryNo:  clean.InventoryNo,
		DeviceTypeID: clean.DeviceTypeID,
		LocationID:   clean.LocationID,
		Model:        clean.Model,
	})
	return id, nil
}

// DeriveDeviceStatus reports StatusAssigned iff the device has an open
// assignment. Returns ErrDeviceNotFound for an unknown device.
func (m *Manager) DeriveDeviceStatus(ctx context.Context, deviceID int64) (Status, error) {
	d, err := m.GetDevice(ctx, deviceID)
	if err != nil {
		return "", err
	}
	return d.Status, nil
}

// GetDevice retrieves one device with its derived status.
func (m *Manager) GetDevice(ctx context.Context, deviceID int64) (*DeviceSummary, error) {
	if deviceID <= 0 {
		return nil, ErrDeviceNotFound
	}
	return m.repo.GetDevice(ctx, deviceID)
}

// CurrentAssignment returns the device's open assignment, or nil when
// the device is free. Returns ErrDeviceNotFound for an unknown device.
func (m *Manager) CurrentAssignment(ctx context.Context, deviceID int64) (*Assignment, error) {
	if _, err := m.GetDevice(ctx, deviceID); err != nil {
		return nil, err
	}
	return m.repo.FindOpenAssignment(ctx, deviceID)
}

// ListDevices returns devices with derived status.
func (m *Manager) ListDevices(ctx context.Context, f DeviceFilter) ([]DeviceSummary, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	return m.repo.ListDevices(ctx, f)
}

// ListActiveAssignments returns all open assignments, newest first.
func (m *Manager) ListActiveAssignments(ctx context.Context) ([]ActiveAssignment, error) {
	return m.repo.ListActiveAssignments(ctx)
}

// ExportAssignments returns the reporting projection ordered by
// assigned_from descending.
func (m *Manager) ExportAssignments(ctx context.Context, f ExportFilter) ([]AssignmentRecord, error) {
	if f.Limit < 0 || f.Limit > MaxExportLimit {
		return nil, fmt.Errorf("%w: limit must be between 0 and %d", ErrInvalidInput, MaxExportLimit)
	}
	if f.From != nil && f.Until != nil && !f.Until.After(*f.From) {
		return nil, fmt.Errorf("%w: until must be after from", ErrInvalidInput)
	}
	return m.repo.QueryAssignments(ctx, f)
}

// ListDeviceTypes returns the device type reference list.
func (m *Manager) ListDeviceTypes(ctx context.Context) ([]DeviceType, error) {
	return m.repo.ListDeviceTypes(ctx)
}

// ListLocations returns the location reference list.
func (m *Manager) ListLocations(ctx context.Context) ([]Location, error) {
	return m.repo.ListLocations(ctx)
}

// ListPersons returns the person reference list.
func (m *Manager) ListPersons(ctx context.Context) ([]Person, error) {
	return m.repo.ListPersons(ctx)
}

// SeedReferenceData inserts device types, locations and persons.
// Existing keys are left untouched, so seeding is idempotent.
func (m *Manager) SeedReferenceData(ctx context.Context, data ReferenceData) (SeedResult, error) {
	if err := validateReferenceData(data); err != nil {
		return SeedResult{}, err
	}
	res, err := m.repo.SeedReferenceData(ctx, data)
	if err != nil {
		return res, err
	}
	m.logger.Info("reference data seeded",
		"devicetypes", res.DeviceTypes,
		"locations", res.Locations,
		"persons", res.Persons,
	)
	return res, nil
}

// publish hands an event to the Publisher after commit. A panicking
// Publisher is contained here.
func (m *Manager) publish(ctx context.Context, topic string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("publisher panic recovered", "topic", topic, "panic", r)
		}
	}()
	m.pub.Publish(ctx, topic, payload)
}

// logFailure logs infrastructure errors at error level and domain
// rejections at debug level.
func (m *Manager) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if errors.Is(err, ErrUnavailable) {
		m.logger.Error(msg, args...)
		return
	}
	m.logger.Debug(msg, args...)
}

func validateNewDevice(d NewDevice) (NewDevice, error) {
	d.InventoryNo = strings.TrimSpace(d.InventoryNo)
	switch {
	case d.InventoryNo == "":
		return d, fmt.Errorf("%w: inventory_no is required", ErrInvalidDevice)
	case utf8.RuneCountInString(d.InventoryNo) > maxInventoryNoLength:
		return d, fmt.Errorf("%w: inventory_no exceeds %d characters", ErrInvalidDevice, maxInventoryNoLength)
	case d.DeviceTypeID <= 0:
		return d, fmt.Errorf("%w: devicetype_id must be positive", ErrInvalidDevice)
	case d.LocationID != nil && *d.LocationID <= 0:
		return d, fmt.Errorf("%w: location_id must be positive", ErrInvalidDevice)
	}

	model, err := normaliseOptional(d.Model, maxModelLength)
	if err != nil {
		return d, fmt.Errorf("%w: model: %w", ErrInvalidDevice, err)
	}
	d.Model = model
	return d, nil
}

func validateReferenceData(data ReferenceData) error {
	for _, dt := range data.DeviceTypes {
		if dt.ID <= 0 || strings.TrimSpace(dt.Description) == "" {
			return fmt.Errorf("%w: device type %d needs a positive id and a description", ErrInvalidInput, dt.ID)
		}
	}
	for _, loc := range data.Locations {
		if loc.ID <= 0 || strings.TrimSpace(loc.Name) == "" {
			return fmt.Errorf("%w: location %d needs a positive id and a name", ErrInvalidInput, loc.ID)
		}
	}
	for _, p := range data.Persons {
		if p.PersonnelNo <= 0 || strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: person %d needs a positive personnel_no and a name", ErrInvalidInput, p.PersonnelNo)
		}
	}
	return nil
}

// errTooLong is wrapped by normaliseOptional.
var errTooLong = errors.New("too long")

// normaliseOptional trims s; blank becomes nil.
func normaliseOptional(s *string, maxLen int) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(v) > maxLen {
		return nil, fmt.Errorf("%w (max %d characters)", errTooLong, maxLen)
	}
	return &v, nil
}
