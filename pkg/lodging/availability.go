package lodging

import (
	"fmt"
	"sort"
)

// ConflictKind classifies the outcome of a conflict check.
type ConflictKind string

const (
	ConflictNone             ConflictKind = "none"
	ConflictReservation      ConflictKind = "reservation"
	ConflictBlackout         ConflictKind = "blackout"
	ConflictResourceInactive ConflictKind = "resource_inactive"
)

// Conflict is the structured result of a conflict check.
type Conflict struct {
	Kind          ConflictKind
	ReservationID ReservationID
	BlackoutID    BlackoutID
}

// IsNone reports whether the checked range is free.
func (conflict Conflict) IsNone() bool {
	return conflict.Kind == "" || conflict.Kind == ConflictNone
}

// Message describes the conflict for display.
func (conflict Conflict) Message() string {
	switch conflict.Kind {
	case ConflictReservation:
		return fmt.Sprintf("resource already reserved for this period (reservation %s)", conflict.ReservationID)
	case ConflictBlackout:
		return fmt.Sprintf("resource blocked or under maintenance for this period (blackout %s)", conflict.BlackoutID)
	case ConflictResourceInactive:
		return "resource is not available for reservations"
	default:
		return ""
	}
}

func (conflict Conflict) validationError(field string) error {
	return &ValidationError{
		Fields:   []FieldError{{Field: field, Code: fieldCodeUnavailable, Message: conflict.Message()}},
		Conflict: conflict,
	}
}

// ResourceState is the derived state of a resource on one day.
type ResourceState string

const (
	StateAvailable   ResourceState = "available"
	StateReserved    ResourceState = "reserved"
	StateOccupied    ResourceState = "occupied"
	StateUnavailable ResourceState = "unavailable"
)

// Overlaps reports whether two half-open ranges share at least one day.
func Overlaps(first DateRange, second DateRange) bool {
	return first.Overlaps(second)
}

// Availability answers conflict, state and eligibility questions for one cycle.
// It indexes its inputs once; all methods are pure reads over that snapshot.
type Availability struct {
	cycleID                CycleID
	resources              []Resource
	resourcesByID          map[ResourceID]Resource
	blackoutsByResource    map[ResourceID][]Blackout
	reservationsByResource map[ResourceID][]Reservation
}

// NewAvailability builds the engine from the three ledgers. Records outside cycleID,
// inactive blackouts and cancelled reservations are ignored.
func NewAvailability(cycleID CycleID, resources []Resource, blackouts []Blackout, reservations []Reservation) *Availability {
	availability := &Availability{
		cycleID:                cycleID,
		resources:              append([]Resource(nil), resources...),
		resourcesByID:          make(map[ResourceID]Resource, len(resources)),
		blackoutsByResource:    make(map[ResourceID][]Blackout),
		reservationsByResource: make(map[ResourceID][]Reservation),
	}
	sort.SliceStable(availability.resources, func(left, right int) bool {
		return availability.resources[left].Code < availability.resources[right].Code
	})
	for _, resource := range availability.resources {
		availability.resourcesByID[resource.ID] = resource
	}
	for _, blackout := range blackouts {
		if blackout.CycleID != cycleID || !blackout.Active {
			continue
		}
		availability.blackoutsByResource[blackout.ResourceID] = append(availability.blackoutsByResource[blackout.ResourceID], blackout)
	}
	for _, reservation := range reservations {
		if reservation.CycleID != cycleID || !reservation.Status.Holds() {
			continue
		}
		availability.reservationsByResource[reservation.ResourceID] = append(availability.reservationsByResource[reservation.ResourceID], reservation)
	}
	for resourceID := range availability.blackoutsByResource {
		sortBlackouts(availability.blackoutsByResource[resourceID])
	}
	for resourceID := range availability.reservationsByResource {
		sortReservations(availability.reservationsByResource[resourceID])
	}
	return availability
}

// Resources returns every resource ordered by code.
func (availability *Availability) Resources() []Resource {
	return append([]Resource(nil), availability.resources...)
}

// Resource looks up a resource by id.
func (availability *Availability) Resource(resourceID ResourceID) (Resource, bool) {
	resource, ok := availability.resourcesByID[resourceID]
	return resource, ok
}

// CheckReservation evaluates a booking request for resourceID over dateRange.
// An inactive (or unknown) resource wins over a blackout, which wins over another booking.
func (availability *Availability) CheckReservation(resourceID ResourceID, dateRange DateRange, exclude ReservationID) Conflict {
	resource, ok := availability.resourcesByID[resourceID]
	if !ok || !resource.Bookable() {
		return Conflict{Kind: ConflictResourceInactive}
	}
	for _, blackout := range availability.blackoutsByResource[resourceID] {
		if blackout.Range.Overlaps(dateRange) {
			return Conflict{Kind: ConflictBlackout, BlackoutID: blackout.ID}
		}
	}
	for _, reservation := range availability.reservationsByResource[resourceID] {
		if !exclude.IsZero() && reservation.ID == exclude {
			continue
		}
		if reservation.Range.Overlaps(dateRange) {
			return Conflict{Kind: ConflictReservation, ReservationID: reservation.ID}
		}
	}
	return Conflict{Kind: ConflictNone}
}

// CheckBlackout evaluates a blackout request for resourceID over dateRange.
// Blackouts may be declared on resources of any status.
func (availability *Availability) CheckBlackout(resourceID ResourceID, dateRange DateRange, exclude BlackoutID) Conflict {
	for _, reservation := range availability.reservationsByResource[resourceID] {
		if reservation.Range.Overlaps(dateRange) {
			return Conflict{Kind: ConflictReservation, ReservationID: reservation.ID}
		}
	}
	for _, blackout := range availability.blackoutsByResource[resourceID] {
		if !exclude.IsZero() && blackout.ID == exclude {
			continue
		}
		if blackout.Range.Overlaps(dateRange) {
			return Conflict{Kind: ConflictBlackout, BlackoutID: blackout.ID}
		}
	}
	return Conflict{Kind: ConflictNone}
}

// State derives the state of resourceID on day.
func (availability *Availability) State(resourceID ResourceID, day Date) ResourceState {
	resource, ok := availability.resourcesByID[resourceID]
	if !ok {
		return StateUnavailable
	}
	return availability.cell(resource, day).Status
}

// Eligible lists the active resources free over dateRange, ordered by code. When current is set
// (the resource of the record being edited) it is always part of the result.
func (availability *Availability) Eligible(dateRange DateRange, exclude ReservationID, current ResourceID) []Resource {
	eligible := make([]Resource, 0, len(availability.resources))
	for _, resource := range availability.resources {
		if resource.ID == current && !current.IsZero() {
			eligible = append(eligible, resource)
			continue
		}
		if availability.CheckReservation(resource.ID, dateRange, exclude).IsNone() {
			eligible = append(eligible, resource)
		}
	}
	return eligible
}

// Cell is the displayed state of one resource on one day.
type Cell struct {
	Day           Date
	Status        ResourceState
	Label         string
	ReservationID ReservationID
	BlackoutID    BlackoutID
}

// cell applies the display priority: resource not active, active blackout, confirmed
// reservation, tentative reservation, free.
func (availability *Availability) cell(resource Resource, day Date) Cell {
	if !resource.Bookable() {
		return Cell{Day: day, Status: StateUnavailable, Label: resourceStatusLabel(resource.Status)}
	}
	for _, blackout := range availability.blackoutsByResource[resource.ID] {
		if blackout.Range.Contains(day) {
			return Cell{Day: day, Status: StateUnavailable, Label: blackout.Title, BlackoutID: blackout.ID}
		}
	}
	reservations := availability.reservationsByResource[resource.ID]
	for _, reservation := range reservations {
		if reservation.Status == ReservationStatusConfirmed && reservation.Range.Contains(day) {
			return Cell{Day: day, Status: StateOccupied, Label: reservation.ResponsibleName, ReservationID: reservation.ID}
		}
	}
	for _, reservation := range reservations {
		if reservation.Status == ReservationStatusTentative && reservation.Range.Contains(day) {
			return Cell{Day: day, Status: StateReserved, Label: reservation.ResponsibleName, ReservationID: reservation.ID}
		}
	}
	return Cell{Day: day, Status: StateAvailable, Label: timelineFreeLabel}
}

// covering returns the holding reservation of resourceID whose range contains day.
func (availability *Availability) covering(resourceID ResourceID, day Date) (Reservation, bool) {
	for _, reservation := range availability.reservationsByResource[resourceID] {
		if reservation.Range.Contains(day) {
			return reservation, true
		}
	}
	return Reservation{}, false
}

func resourceStatusLabel(status ResourceStatus) string {
	switch status {
	case ResourceStatusMaintenance:
		return "Maintenance"
	default:
		return timelineInactiveLabel
	}
}

func sortBlackouts(blackouts []Blackout) {
	sort.SliceStable(blackouts, func(left, right int) bool {
		return blackouts[left].Range.Start().Before(blackouts[right].Range.Start())
	})
}

func sortReservations(reservations []Reservation) {
	sort.SliceStable(reservations, func(left, right int) bool {
		return reservations[left].Range.Start().Before(reservations[right].Range.Start())
	})
}
