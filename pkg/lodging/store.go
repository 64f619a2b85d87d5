package lodging

import "context"

// Store is the persistence contract used by Service.
// Implementations must report a lost write race (overlap constraint, serialization
// failure, busy database) with an error matching ErrConflict, and a duplicate resource
// code with an error matching ErrDuplicateResourceCode.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error

	// LockResource reads a resource and holds a write lock on it until the transaction ends.
	LockResource(ctx context.Context, resourceID ResourceID) (Resource, error)
	GetResource(ctx context.Context, resourceID ResourceID) (Resource, error)
	ListResources(ctx context.Context) ([]Resource, error)
	CreateResource(ctx context.Context, resource Resource) error
	UpdateResource(ctx context.Context, resource Resource) error

	GetReservation(ctx context.Context, cycleID CycleID, reservationID ReservationID) (Reservation, error)
	// ListReservations returns matches newest first.
	ListReservations(ctx context.Context, query ReservationQuery) ([]Reservation, error)
	CreateReservation(ctx context.Context, reservation Reservation) error
	UpdateReservation(ctx context.Context, reservation Reservation) error
	DeleteReservation(ctx context.Context, cycleID CycleID, reservationID ReservationID) error

	GetBlackout(ctx context.Context, cycleID CycleID, blackoutID BlackoutID) (Blackout, error)
	// ListBlackouts returns matches with the latest start first.
	ListBlackouts(ctx context.Context, query BlackoutQuery) ([]Blackout, error)
	CreateBlackout(ctx context.Context, blackout Blackout) error
	UpdateBlackout(ctx context.Context, blackout Blackout) error

	// CreateReceipt records a financial receipt and returns its ledger entry id.
	CreateReceipt(ctx context.Context, receipt ReceiptInput) (LedgerEntryID, error)
}

// TimelineCache stores week projections per cycle. Invalidate is called after every
// successful write to the cycle; the zero CycleID invalidates every cycle.
type TimelineCache interface {
	GetTimeline(ctx context.Context, cycleID CycleID, weekStart Date) (Timeline, bool, error)
	PutTimeline(ctx context.Context, timeline Timeline) error
	Invalidate(ctx context.Context, cycleID CycleID) error
}

var holdingStatuses = []ReservationStatus{ReservationStatusTentative, ReservationStatusConfirmed}

// HoldingStatuses lists the reservation statuses that occupy a resource.
func HoldingStatuses() []ReservationStatus {
	return append([]ReservationStatus(nil), holdingStatuses...)
}
