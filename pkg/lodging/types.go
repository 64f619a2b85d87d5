package lodging

import (
	"fmt"
	"strings"
	"time"
)

// CycleID identifies an operational cycle (an event).
type CycleID struct {
	value string
}

// ResourceID identifies a bookable unit.
type ResourceID struct {
	value string
}

// ReservationID identifies a reservation.
type ReservationID struct {
	value string
}

// BlackoutID identifies a maintenance or blockage window.
type BlackoutID struct {
	value string
}

// LedgerEntryID identifies a financial ledger entry created outside this package.
type LedgerEntryID struct {
	value string
}

// UserID identifies an operator.
type UserID struct {
	value string
}

// NewCycleID validates and normalizes a cycle id.
func NewCycleID(raw string) (CycleID, error) {
	trimmed, err := normalizeIdentifier(raw, ErrInvalidCycleID)
	if err != nil {
		return CycleID{}, err
	}
	return CycleID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id CycleID) String() string {
	return id.value
}

// IsZero reports whether the identifier is unset.
func (id CycleID) IsZero() bool {
	return id.value == ""
}

// NewResourceID validates and normalizes a resource id.
func NewResourceID(raw string) (ResourceID, error) {
	trimmed, err := normalizeIdentifier(raw, ErrInvalidResourceID)
	if err != nil {
		return ResourceID{}, err
	}
	return ResourceID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id ResourceID) String() string {
	return id.value
}

// IsZero reports whether the identifier is unset.
func (id ResourceID) IsZero() bool {
	return id.value == ""
}

// MarshalText implements encoding.TextMarshaler.
func (id ResourceID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ResourceID) UnmarshalText(raw []byte) error {
	parsed, err := NewResourceID(string(raw))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewReservationID validates and normalizes a reservation id.
func NewReservationID(raw string) (ReservationID, error) {
	trimmed, err := normalizeIdentifier(raw, ErrInvalidReservationID)
	if err != nil {
		return ReservationID{}, err
	}
	return ReservationID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id ReservationID) String() string {
	return id.value
}

// IsZero reports whether the identifier is unset.
func (id ReservationID) IsZero() bool {
	return id.value == ""
}

// NewBlackoutID validates and normalizes a blackout id.
func NewBlackoutID(raw string) (BlackoutID, error) {
	trimmed, err := normalizeIdentifier(raw, ErrInvalidBlackoutID)
	if err != nil {
		return BlackoutID{}, err
	}
	return BlackoutID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id BlackoutID) String() string {
	return id.value
}

// IsZero reports whether the identifier is unset.
func (id BlackoutID) IsZero() bool {
	return id.value == ""
}

// NewLedgerEntryID validates and normalizes a ledger entry id.
func NewLedgerEntryID(raw string) (LedgerEntryID, error) {
	trimmed, err := normalizeIdentifier(raw, ErrInvalidLedgerEntryID)
	if err != nil {
		return LedgerEntryID{}, err
	}
	return LedgerEntryID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id LedgerEntryID) String() string {
	return id.value
}

// IsZero reports whether the identifier is unset.
func (id LedgerEntryID) IsZero() bool {
	return id.value == ""
}

// NewUserID validates and normalizes a user id.
func NewUserID(raw string) (UserID, error) {
	trimmed, err := normalizeIdentifier(raw, ErrInvalidUserID)
	if err != nil {
		return UserID{}, err
	}
	return UserID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id UserID) String() string {
	return id.value
}

// IsZero reports whether the identifier is unset.
func (id UserID) IsZero() bool {
	return id.value == ""
}

func normalizeIdentifier(raw string, sentinel error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty value", sentinel)
	}
	return trimmed, nil
}

// ResourceStatus is the operational status of a resource.
type ResourceStatus string

const (
	ResourceStatusActive      ResourceStatus = "active"
	ResourceStatusMaintenance ResourceStatus = "maintenance"
	ResourceStatusInactive    ResourceStatus = "inactive"
)

// ParseResourceStatus validates a raw resource status.
func ParseResourceStatus(raw string) (ResourceStatus, error) {
	switch status := ResourceStatus(strings.TrimSpace(raw)); status {
	case ResourceStatusActive, ResourceStatusMaintenance, ResourceStatusInactive:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResourceStatus, raw)
	}
}

// String returns the raw status value.
func (status ResourceStatus) String() string {
	return string(status)
}

// BlackoutKind distinguishes blockages from maintenance windows.
type BlackoutKind string

const (
	BlackoutKindBlockage    BlackoutKind = "blockage"
	BlackoutKindMaintenance BlackoutKind = "maintenance"
)

// ParseBlackoutKind validates a raw blackout kind.
func ParseBlackoutKind(raw string) (BlackoutKind, error) {
	switch kind := BlackoutKind(strings.TrimSpace(raw)); kind {
	case BlackoutKindBlockage, BlackoutKindMaintenance:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBlackoutKind, raw)
	}
}

// String returns the raw kind value.
func (kind BlackoutKind) String() string {
	return string(kind)
}

// ReservationStatus defines the reservation lifecycle.
type ReservationStatus string

const (
	ReservationStatusTentative ReservationStatus = "tentative"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// ParseReservationStatus validates a raw reservation status.
func ParseReservationStatus(raw string) (ReservationStatus, error) {
	switch status := ReservationStatus(strings.TrimSpace(raw)); status {
	case ReservationStatusTentative, ReservationStatusConfirmed, ReservationStatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidReservationStatus, raw)
	}
}

// String returns the raw status value.
func (status ReservationStatus) String() string {
	return string(status)
}

// Holds reports whether the status occupies the resource for its range.
func (status ReservationStatus) Holds() bool {
	return status == ReservationStatusTentative || status == ReservationStatusConfirmed
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Staying in the same status is always allowed; cancelled is terminal.
func (status ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if status == next {
		return true
	}
	switch status {
	case ReservationStatusTentative:
		return next == ReservationStatusConfirmed || next == ReservationStatusCancelled
	case ReservationStatusConfirmed:
		return next == ReservationStatusCancelled
	default:
		return false
	}
}

// PaymentMethod enumerates how a reservation was paid.
type PaymentMethod string

const (
	PaymentMethodNone  PaymentMethod = ""
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodPix   PaymentMethod = "pix"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodOther PaymentMethod = "other"
)

// ParsePaymentMethod validates a raw payment method; empty input yields PaymentMethodNone.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch method := PaymentMethod(strings.TrimSpace(raw)); method {
	case PaymentMethodNone, PaymentMethodCash, PaymentMethodPix, PaymentMethodCard, PaymentMethodOther:
		return method, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, raw)
	}
}

// String returns the raw method value.
func (method PaymentMethod) String() string {
	return string(method)
}

// Audit records who created and last updated a record.
type Audit struct {
	CreatedBy UserID
	CreatedAt time.Time
	UpdatedBy UserID
	UpdatedAt time.Time
}

// Resource is a bookable unit (a cabin).
type Resource struct {
	ID         ResourceID
	Code       string
	Capacity   int
	Status     ResourceStatus
	Accessible bool
	Notes      string
}

// Bookable reports whether new reservations may target the resource.
func (resource Resource) Bookable() bool {
	return resource.Status == ResourceStatusActive
}

// Blackout is an operator-declared unavailability window for one resource within one cycle.
type Blackout struct {
	ID          BlackoutID
	CycleID     CycleID
	ResourceID  ResourceID
	Kind        BlackoutKind
	Title       string
	Range       DateRange
	Description string
	Active      bool
	Audit       Audit
}

// Reservation is a booking of one resource within one cycle.
type Reservation struct {
	ID                 ReservationID
	CycleID            CycleID
	ResourceID         ResourceID
	ResponsibleName    string
	Adults             int
	Children           int
	ChildAges          string
	SpecialNeeds       bool
	SpecialNeedsDetail string
	Range              DateRange
	Status             ReservationStatus
	AmountCents        int64
	Paid               bool
	PaymentMethod      PaymentMethod
	AccountRef         string
	LedgerEntryID      LedgerEntryID
	Notes              string
	Audit              Audit
}

// Guests returns the total occupant count.
func (reservation Reservation) Guests() int {
	return reservation.Adults + reservation.Children
}

// NeedsReceipt reports whether a receipt must be generated and linked.
func (reservation Reservation) NeedsReceipt() bool {
	return reservation.Paid &&
		reservation.PaymentMethod != PaymentMethodNone &&
		strings.TrimSpace(reservation.AccountRef) != "" &&
		reservation.LedgerEntryID.IsZero()
}

// ReceiptInput describes the financial entry requested for a paid reservation.
type ReceiptInput struct {
	CycleID       CycleID
	ReservationID ReservationID
	Category      string
	AccountRef    string
	Date          Date
	Description   string
	AmountCents   int64
	PaymentMethod PaymentMethod
	CreatedBy     UserID
}

// ReservationQuery filters reservations within a cycle.
type ReservationQuery struct {
	CycleID     CycleID
	ResourceIDs []ResourceID
	Statuses    []ReservationStatus
	Overlapping *DateRange
}

// BlackoutQuery filters blackouts within a cycle.
type BlackoutQuery struct {
	CycleID     CycleID
	ResourceIDs []ResourceID
	ActiveOnly  bool
	Overlapping *DateRange
}
