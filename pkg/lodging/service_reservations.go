package lodging

import (
	"context"
	"fmt"
	"strings"
)

// ReservationFilter narrows a reservation listing.
type ReservationFilter struct {
	Status     ReservationStatus
	ResourceID ResourceID
	Accessible *bool
	Page       int
}

// ReservationPage is one page of a reservation listing, newest first.
type ReservationPage struct {
	Items    []Reservation
	Page     int
	PageSize int
	Total    int
	Pages    int
}

// GetReservation returns one reservation of cycleID.
func (service *Service) GetReservation(ctx context.Context, principal Principal, cycleID CycleID, reservationID ReservationID) (Reservation, error) {
	if err := service.authorizeRead(principal, cycleID); err != nil {
		return Reservation{}, err
	}
	return service.store.GetReservation(ctx, cycleID, reservationID)
}

// ListReservations returns a page of the cycle's reservations.
func (service *Service) ListReservations(ctx context.Context, principal Principal, cycleID CycleID, filter ReservationFilter) (ReservationPage, error) {
	if err := service.authorizeRead(principal, cycleID); err != nil {
		return ReservationPage{}, err
	}
	query := ReservationQuery{CycleID: cycleID}
	if filter.Status != "" {
		if _, err := ParseReservationStatus(filter.Status.String()); err != nil {
			return ReservationPage{}, newValidationError([]FieldError{{Field: FieldStatus, Code: fieldCodeInvalid, Message: "unknown reservation status"}})
		}
		query.Statuses = []ReservationStatus{filter.Status}
	}
	if !filter.ResourceID.IsZero() {
		query.ResourceIDs = []ResourceID{filter.ResourceID}
	}
	if filter.Accessible != nil {
		resources, err := service.store.ListResources(ctx)
		if err != nil {
			return ReservationPage{}, err
		}
		var matching []ResourceID
		for _, resource := range resources {
			if resource.Accessible != *filter.Accessible {
				continue
			}
			if !filter.ResourceID.IsZero() && resource.ID != filter.ResourceID {
				continue
			}
			matching = append(matching, resource.ID)
		}
		if len(matching) == 0 {
			return paginate(nil, filter.Page), nil
		}
		query.ResourceIDs = matching
	}
	reservations, err := service.store.ListReservations(ctx, query)
	if err != nil {
		return ReservationPage{}, err
	}
	return paginate(reservations, filter.Page), nil
}

// CreateReservation validates and records a reservation, then issues its receipt when paid.
func (service *Service) CreateReservation(ctx context.Context, principal Principal, cycleID CycleID, input ReservationInput) (Reservation, error) {
	input = normalizeReservationInput(input, ReservationStatusTentative)
	var created Reservation
	operationError := service.authorizeWrite(principal, cycleID, true)
	if operationError == nil {
		operationError = service.withTx(ctx, FieldResourceID, func(ctx context.Context, transactionStore Store) error {
			resource, err := lockReservationResource(ctx, transactionStore, input)
			if err != nil {
				return err
			}
			fields := ValidateReservation(input, resource)
			if input.Status == ReservationStatusCancelled {
				fields = append(fields, FieldError{Field: FieldStatus, Code: fieldCodeInvalidTransition, Message: "new reservations must be tentative or confirmed"})
			}
			if err := newValidationError(fields); err != nil {
				return err
			}
			dateRange, err := NewDateRange(input.Entry, input.Exit)
			if err != nil {
				return err
			}
			conflict, err := checkReservationConflict(ctx, transactionStore, cycleID, resource, dateRange, ReservationID{})
			if err != nil {
				return err
			}
			if !conflict.IsNone() {
				return conflict.validationError(FieldResourceID)
			}
			reservationID, err := NewReservationID(service.newID())
			if err != nil {
				return err
			}
			now := service.nowFn()
			reservation := applyReservationInput(Reservation{
				ID:      reservationID,
				CycleID: cycleID,
				Audit: Audit{
					CreatedBy: principal.UserID,
					CreatedAt: now,
					UpdatedBy: principal.UserID,
					UpdatedAt: now,
				},
			}, input, dateRange)
			if err := transactionStore.CreateReservation(ctx, reservation); err != nil {
				return translateRace(err, FieldResourceID)
			}
			reservation, err = service.issueReceipt(ctx, transactionStore, reservation, resource, principal.UserID)
			if err != nil {
				return err
			}
			created = reservation
			return nil
		})
	}
	if operationError == nil {
		service.invalidateTimelines(ctx, cycleID)
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationCreateReservation,
		CycleID:    cycleID,
		ResourceID: input.ResourceID,
		RecordID:   created.ID.String(),
		Actor:      principal.UserID,
		Error:      operationError,
	})
	return created, operationError
}

// UpdateReservation replaces the editable fields of a reservation. Cancelling releases
// the resource; every other save re-checks availability excluding the reservation itself.
func (service *Service) UpdateReservation(ctx context.Context, principal Principal, cycleID CycleID, reservationID ReservationID, input ReservationInput) (Reservation, error) {
	var updated Reservation
	operationError := service.authorizeWrite(principal, cycleID, true)
	if operationError == nil {
		operationError = service.withTx(ctx, FieldResourceID, func(ctx context.Context, transactionStore Store) error {
			existing, err := transactionStore.GetReservation(ctx, cycleID, reservationID)
			if err != nil {
				return err
			}
			input = normalizeReservationInput(input, existing.Status)
			resource, err := lockReservationResource(ctx, transactionStore, input)
			if err != nil {
				return err
			}
			fields := ValidateReservation(input, resource)
			if input.Status != "" {
				fields = append(fields, ValidateTransition(existing.Status, input.Status)...)
			}
			if err := newValidationError(fields); err != nil {
				return err
			}
			dateRange, err := NewDateRange(input.Entry, input.Exit)
			if err != nil {
				return err
			}
			if input.Status.Holds() {
				conflict, err := checkReservationConflict(ctx, transactionStore, cycleID, resource, dateRange, reservationID)
				if err != nil {
					return err
				}
				if !conflict.IsNone() {
					return conflict.validationError(FieldResourceID)
				}
			}
			reservation := applyReservationInput(existing, input, dateRange)
			reservation.Audit.UpdatedBy = principal.UserID
			reservation.Audit.UpdatedAt = service.nowFn()
			if err := transactionStore.UpdateReservation(ctx, reservation); err != nil {
				return translateRace(err, FieldResourceID)
			}
			reservation, err = service.issueReceipt(ctx, transactionStore, reservation, resource, principal.UserID)
			if err != nil {
				return err
			}
			updated = reservation
			return nil
		})
	}
	if operationError == nil {
		service.invalidateTimelines(ctx, cycleID)
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationUpdateReservation,
		CycleID:    cycleID,
		ResourceID: updated.ResourceID,
		RecordID:   reservationID.String(),
		Actor:      principal.UserID,
		Error:      operationError,
	})
	return updated, operationError
}

// DeleteReservation removes a reservation. A linked ledger entry is left untouched.
func (service *Service) DeleteReservation(ctx context.Context, principal Principal, cycleID CycleID, reservationID ReservationID) error {
	var resourceID ResourceID
	operationError := service.authorizeWrite(principal, cycleID, true)
	if operationError == nil {
		operationError = service.withTx(ctx, FieldResourceID, func(ctx context.Context, transactionStore Store) error {
			existing, err := transactionStore.GetReservation(ctx, cycleID, reservationID)
			if err != nil {
				return err
			}
			resourceID = existing.ResourceID
			return transactionStore.DeleteReservation(ctx, cycleID, reservationID)
		})
	}
	if operationError == nil {
		service.invalidateTimelines(ctx, cycleID)
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationDeleteReservation,
		CycleID:    cycleID,
		ResourceID: resourceID,
		RecordID:   reservationID.String(),
		Actor:      principal.UserID,
		Error:      operationError,
	})
	return operationError
}

// CancelCurrentReservation cancels the holding reservation of resourceID that covers asOf.
func (service *Service) CancelCurrentReservation(ctx context.Context, principal Principal, cycleID CycleID, resourceID ResourceID, asOf Date) (Reservation, error) {
	var cancelled Reservation
	operationError := service.authorizeWrite(principal, cycleID, true)
	if operationError == nil {
		operationError = service.withTx(ctx, FieldResourceID, func(ctx context.Context, transactionStore Store) error {
			if _, err := transactionStore.LockResource(ctx, resourceID); err != nil {
				return err
			}
			day, err := NewDateRange(asOf, asOf.AddDays(1))
			if err != nil {
				return err
			}
			reservations, err := transactionStore.ListReservations(ctx, ReservationQuery{
				CycleID:     cycleID,
				ResourceIDs: []ResourceID{resourceID},
				Statuses:    HoldingStatuses(),
				Overlapping: &day,
			})
			if err != nil {
				return err
			}
			if len(reservations) == 0 {
				return fmt.Errorf("%w: no reservation on %s for %s", ErrUnknownReservation, asOf, resourceID)
			}
			sortReservations(reservations)
			reservation := reservations[0]
			reservation.Status = ReservationStatusCancelled
			reservation.Audit.UpdatedBy = principal.UserID
			reservation.Audit.UpdatedAt = service.nowFn()
			if err := transactionStore.UpdateReservation(ctx, reservation); err != nil {
				return err
			}
			cancelled = reservation
			return nil
		})
	}
	if operationError == nil {
		service.invalidateTimelines(ctx, cycleID)
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationCancelCurrentBooking,
		CycleID:    cycleID,
		ResourceID: resourceID,
		RecordID:   cancelled.ID.String(),
		Actor:      principal.UserID,
		Error:      operationError,
	})
	return cancelled, operationError
}

// issueReceipt creates the receipt of a paid reservation at most once and links it.
func (service *Service) issueReceipt(ctx context.Context, store Store, reservation Reservation, resource Resource, actor UserID) (Reservation, error) {
	if !reservation.NeedsReceipt() {
		return reservation, nil
	}
	entryID, err := store.CreateReceipt(ctx, ReceiptInput{
		CycleID:       reservation.CycleID,
		ReservationID: reservation.ID,
		Category:      receiptCategoryLodging,
		AccountRef:    reservation.AccountRef,
		Date:          service.Today(),
		Description:   receiptDescription(resource, reservation),
		AmountCents:   reservation.AmountCents,
		PaymentMethod: reservation.PaymentMethod,
		CreatedBy:     actor,
	})
	if err != nil {
		return Reservation{}, WrapError("receipt", reservation.ID.String(), "create_failed", err)
	}
	reservation.LedgerEntryID = entryID
	if err := store.UpdateReservation(ctx, reservation); err != nil {
		return Reservation{}, err
	}
	return reservation, nil
}

func receiptDescription(resource Resource, reservation Reservation) string {
	return fmt.Sprintf("%s - %s - %s", receiptDescriptionPrefix, resource.Code, reservation.ResponsibleName)
}

func lockReservationResource(ctx context.Context, store Store, input ReservationInput) (Resource, error) {
	if input.ResourceID.IsZero() {
		return Resource{}, newValidationError(ValidateReservation(input, Resource{}))
	}
	return store.LockResource(ctx, input.ResourceID)
}

func normalizeReservationInput(input ReservationInput, defaultStatus ReservationStatus) ReservationInput {
	input.ResponsibleName = strings.TrimSpace(input.ResponsibleName)
	input.ChildAges = strings.TrimSpace(input.ChildAges)
	input.SpecialNeedsDetail = strings.TrimSpace(input.SpecialNeedsDetail)
	input.AccountRef = strings.TrimSpace(input.AccountRef)
	input.Notes = strings.TrimSpace(input.Notes)
	if input.Status == "" {
		input.Status = defaultStatus
	}
	if !input.SpecialNeeds {
		input.SpecialNeedsDetail = ""
	}
	return input
}

func applyReservationInput(reservation Reservation, input ReservationInput, dateRange DateRange) Reservation {
	reservation.ResourceID = input.ResourceID
	reservation.ResponsibleName = input.ResponsibleName
	reservation.Adults = input.Adults
	reservation.Children = input.Children
	reservation.ChildAges = input.ChildAges
	reservation.SpecialNeeds = input.SpecialNeeds
	reservation.SpecialNeedsDetail = input.SpecialNeedsDetail
	reservation.Range = dateRange
	reservation.Status = input.Status
	reservation.AmountCents = input.AmountCents
	reservation.Paid = input.Paid
	reservation.PaymentMethod = input.PaymentMethod
	reservation.AccountRef = input.AccountRef
	reservation.Notes = input.Notes
	return reservation
}

func paginate(reservations []Reservation, page int) ReservationPage {
	total := len(reservations)
	pages := (total + reservationPageSize - 1) / reservationPageSize
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * reservationPageSize
	end := start + reservationPageSize
	if end > total {
		end = total
	}
	return ReservationPage{
		Items:    append([]Reservation(nil), reservations[start:end]...),
		Page:     page,
		PageSize: reservationPageSize,
		Total:    total,
		Pages:    pages,
	}
}
