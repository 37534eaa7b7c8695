package inventory

import "time"

// Status is the derived availability of a device.
type Status string

// Device statuses. A device is Assigned iff an open assignment references it.
const (
	StatusFree     Status = "Free"
	StatusAssigned Status = "Assigned"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusFree || s == StatusAssigned
}

// Event topics published after a committed change.
const (
	TopicDeviceRegistered   = "device.registered"
	TopicAssignmentIssued   = "assignment.issued"
	TopicAssignmentReturned = "assignment.returned"
)

// DeviceType is reference data classifying devices (laptop, phone, ...).
type DeviceType struct {
	ID          int64  `db:"id" json:"id" yaml:"id"`
	Description string `db:"description" json:"description" yaml:"description"`
}

// Location is reference data naming where a device is kept.
type Location struct {
	ID   int64  `db:"id" json:"id" yaml:"id"`
	Name string `db:"name" json:"name" yaml:"name"`
}

// Person is someone who can hold devices, keyed by personnel number.
type Person struct {
	PersonnelNo int64  `db:"personnel_no" json:"personnel_no" yaml:"personnel_no"`
	Name        string `db:"name" json:"name" yaml:"name"`
}

// ReferenceData bundles the seedable lookup tables.
type ReferenceData struct {
	DeviceTypes []DeviceType `json:"devicetypes" yaml:"devicetypes"`
	Locations   []Location   `json:"locations" yaml:"locations"`
	Persons     []Person     `json:"persons" yaml:"persons"`
}

// NewDevice holds the fields supplied when registering a device.
type NewDevice struct {
	InventoryNo  string  `json:"inventory_no"`
	DeviceTypeID int64   `json:"devicetype_id"`
	LocationID   *int64  `json:"location_id,omitempty"`
	Model        *string `json:"model,omitempty"`
}

// DeviceSummary is a device joined with its type, location and derived status.
type DeviceSummary struct {
	ID           int64   `db:"id" json:"id"`
	InventoryNo  string  `db:"inventory_no" json:"inventory_no"`
	Model        *string `db:"model" json:"model"`
	DeviceTypeID int64   `db:"devicetype_id" json:"devicetype_id"`
	DeviceType   string  `db:"devicetype" json:"devicetype"`
	LocationID   *int64  `db:"location_id" json:"location_id"`
	Location     *string `db:"location" json:"location"`
	Status       Status  `db:"status" json:"status"`

	// Set only while Status is StatusAssigned.
	OpenAssignmentID *int64 `db:"open_assignment_id" json:"open_assignment_id,omitempty"`
	HolderPersonnel  *int64 `db:"holder_personnel_no" json:"holder_personnel_no,omitempty"`
}

// DeviceFilter narrows ListDevices. Zero values mean "any".
type DeviceFilter struct {
	Status       Status
	DeviceTypeID *int64
	LocationID   *int64
}

// Assignment is one issue/return cycle of a device to a person.
// AssignedTo is nil while the assignment is open.
type Assignment struct {
	ID           int64      `json:"id"`
	DeviceID     int64      `json:"device_id"`
	PersonnelNo  int64      `json:"personnel_no"`
	AssignedFrom time.Time  `json:"assigned_from"`
	AssignedTo   *time.Time `json:"assigned_to"`
	DamageNotes  *string    `json:"damage_notes"`
}

// Open reports whether the assignment has not been returned.
func (a Assignment) Open() bool {
	return a.AssignedTo == nil
}

// ActiveAssignment is an open assignment with device and holder details.
type ActiveAssignment struct {
	AssignmentID int64     `json:"assignment_id"`
	AssignedFrom time.Time `json:"assigned_from"`
	DeviceID     int64     `json:"device_id"`
	InventoryNo  string    `json:"inventory_no"`
	Model        *string   `json:"model"`
	PersonnelNo  int64     `json:"personnel_no"`
	PersonName   string    `json:"person_name"`
}

// AssignmentRecord is one row of the reporting projection.
type AssignmentRecord struct {
	AssignmentID int64      `json:"assignment_id"`
	InventoryNo  string     `json:"inventory_no"`
	DeviceType   string     `json:"devicetype"`
	Location     *string    `json:"location"`
	PersonName   string     `json:"person_name"`
	AssignedFrom time.Time  `json:"assigned_from"`
	AssignedTo   *time.Time `json:"assigned_to"`
	DamageNotes  *string    `json:"damage_notes"`
}

// ExportFilter narrows ExportAssignments. Zero values mean "any".
type ExportFilter struct {
	PersonnelNo *int64
	DeviceID    *int64

	// From and Until bound assigned_from (inclusive, exclusive).
	From  *time.Time
	Until *time.Time

	OpenOnly bool

	// Limit caps the number of rows; 0 means unlimited.
	Limit int
}

// IssueResult is returned by IssueDevice.
type IssueResult struct {
	AssignmentID int64     `json:"assignment_id"`
	DeviceID     int64     `json:"device_id"`
	PersonnelNo  int64     `json:"personnel_no"`
	AssignedFrom time.Time `json:"assigned_from"`
}

// ReturnResult is returned by ReturnDevice.
type ReturnResult struct {
	AssignmentID int64     `json:"assignment_id"`
	DeviceID     int64     `json:"device_id"`
	AssignedTo   time.Time `json:"assigned_to"`
}

// IssuedEvent is the payload of TopicAssignmentIssued.
type IssuedEvent struct {
	AssignmentID int64     `json:"assignment_id"`
	DeviceID     int64     `json:"device_id"`
	PersonnelNo  int64     `json:"personnel_no"`
	AssignedFrom time.Time `json:"assigned_from"`
}

// ReturnedEvent is the payload of TopicAssignmentReturned.
type ReturnedEvent struct {
	AssignmentID int64     `json:"assignment_id"`
	DeviceID     int64     `json:"device_id"`
	AssignedTo   time.Time `json:"assigned_to"`
	DamageNotes  *string   `json:"damage_notes"`
}

// DeviceRegisteredEvent is the payload of TopicDeviceRegistered.
type DeviceRegisteredEvent struct {
	DeviceID     int64   `json:"device_id"`
	InventoryNo  string  `json:"inventory_no"`
	DeviceTypeID int64   `json:"devicetype_id"`
	LocationID   *int64  `json:"location_id"`
	Model        *string `json:"model"`
}
