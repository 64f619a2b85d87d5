package lodging

import (
	"context"
	"strings"
)

// GetBlackout returns one blackout of cycleID.
func (service *Service) GetBlackout(ctx context.Context, principal Principal, cycleID CycleID, blackoutID BlackoutID) (Blackout, error) {
	if err := service.authorizeRead(principal, cycleID); err != nil {
		return Blackout{}, err
	}
	return service.store.GetBlackout(ctx, cycleID, blackoutID)
}

// ListBlackouts returns the cycle's blackouts, optionally for one resource, latest start first.
func (service *Service) ListBlackouts(ctx context.Context, principal Principal, cycleID CycleID, resourceID ResourceID) ([]Blackout, error) {
	if err := service.authorizeRead(principal, cycleID); err != nil {
		return nil, err
	}
	query := BlackoutQuery{CycleID: cycleID}
	if !resourceID.IsZero() {
		query.ResourceIDs = []ResourceID{resourceID}
	}
	return service.store.ListBlackouts(ctx, query)
}

// CreateBlackout records a blockage or maintenance window. Active windows may not
// overlap a holding reservation or another active window on the same resource.
func (service *Service) CreateBlackout(ctx context.Context, principal Principal, cycleID CycleID, input BlackoutInput) (Blackout, error) {
	input = normalizeBlackoutInput(input)
	var created Blackout
	operationError := service.authorizeWrite(principal, cycleID, true)
	if operationError == nil {
		operationError = service.withTx(ctx, FieldStart, func(ctx context.Context, transactionStore Store) error {
			if err := newValidationError(ValidateBlackout(input)); err != nil {
				return err
			}
			resource, err := transactionStore.LockResource(ctx, input.ResourceID)
			if err != nil {
				return err
			}
			dateRange, err := NewDateRange(input.Start, input.End)
			if err != nil {
				return err
			}
			if input.Active {
				conflict, err := checkBlackoutConflict(ctx, transactionStore, cycleID, resource, dateRange, BlackoutID{})
				if err != nil {
					return err
				}
				if !conflict.IsNone() {
					return conflict.validationError(FieldStart)
				}
			}
			blackoutID, err := NewBlackoutID(service.newID())
			if err != nil {
				return err
			}
			now := service.nowFn()
			blackout := applyBlackoutInput(Blackout{
				ID:      blackoutID,
				CycleID: cycleID,
				Audit: Audit{
					CreatedBy: principal.UserID,
					CreatedAt: now,
					UpdatedBy: principal.UserID,
					UpdatedAt: now,
				},
			}, input, dateRange)
			if err := transactionStore.CreateBlackout(ctx, blackout); err != nil {
				return translateRace(err, FieldStart)
			}
			created = blackout
			return nil
		})
	}
	if operationError == nil {
		service.invalidateTimelines(ctx, cycleID)
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationCreateBlackout,
		CycleID:    cycleID,
		ResourceID: input.ResourceID,
		RecordID:   created.ID.String(),
		Actor:      principal.UserID,
		Error:      operationError,
	})
	return created, operationError
}

// UpdateBlackout replaces the editable fields of a blackout. Deactivating never conflicts.
func (service *Service) UpdateBlackout(ctx context.Context, principal Principal, cycleID CycleID, blackoutID BlackoutID, input BlackoutInput) (Blackout, error) {
	input = normalizeBlackoutInput(input)
	var updated Blackout
	operationError := service.authorizeWrite(principal, cycleID, true)
	if operationError == nil {
		operationError = service.withTx(ctx, FieldStart, func(ctx context.Context, transactionStore Store) error {
			existing, err := transactionStore.GetBlackout(ctx, cycleID, blackoutID)
			if err != nil {
				return err
			}
			if err := newValidationError(ValidateBlackout(input)); err != nil {
				return err
			}
			resource, err := transactionStore.LockResource(ctx, input.ResourceID)
			if err != nil {
				return err
			}
			dateRange, err := NewDateRange(input.Start, input.End)
			if err != nil {
				return err
			}
			if input.Active {
				conflict, err := checkBlackoutConflict(ctx, transactionStore, cycleID, resource, dateRange, blackoutID)
				if err != nil {
					return err
				}
				if !conflict.IsNone() {
					return conflict.validationError(FieldStart)
				}
			}
			blackout := applyBlackoutInput(existing, input, dateRange)
			blackout.Audit.UpdatedBy = principal.UserID
			blackout.Audit.UpdatedAt = service.nowFn()
			if err := transactionStore.UpdateBlackout(ctx, blackout); err != nil {
				return translateRace(err, FieldStart)
			}
			updated = blackout
			return nil
		})
	}
	if operationError == nil {
		service.invalidateTimelines(ctx, cycleID)
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationUpdateBlackout,
		CycleID:    cycleID,
		ResourceID: input.ResourceID,
		RecordID:   blackoutID.String(),
		Actor:      principal.UserID,
		Error:      operationError,
	})
	return updated, operationError
}

func normalizeBlackoutInput(input BlackoutInput) BlackoutInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.Kind == "" {
		input.Kind = BlackoutKindBlockage
	}
	return input
}

func applyBlackoutInput(blackout Blackout, input BlackoutInput, dateRange DateRange) Blackout {
	blackout.ResourceID = input.ResourceID
	blackout.Kind = input.Kind
	blackout.Title = input.Title
	blackout.Range = dateRange
	blackout.Description = input.Description
	blackout.Active = input.Active
	return blackout
}
