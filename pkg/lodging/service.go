package lodging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains the lodging domain logic over a Store.
type Service struct {
	store         Store
	nowFn         func() time.Time
	logger        OperationLogger
	authorizer    Authorizer
	timelineCache TimelineCache
	newID         func() string
}

// NewService wires a Service.
func NewService(store Store, now func() time.Time, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{
		store:      store,
		nowFn:      now,
		authorizer: RoleAuthorizer{},
		newID:      uuid.NewString,
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// Today returns the service clock's calendar day.
func (service *Service) Today() Date {
	return DateOf(service.nowFn())
}

// CheckConflict evaluates a prospective reservation of resourceID over dateRange.
// exclude names the reservation being edited, if any.
func (service *Service) CheckConflict(ctx context.Context, principal Principal, cycleID CycleID, resourceID ResourceID, dateRange DateRange, exclude ReservationID) (Conflict, error) {
	if err := service.authorizeRead(principal, cycleID); err != nil {
		return Conflict{}, err
	}
	resource, err := service.store.GetResource(ctx, resourceID)
	if err != nil {
		return Conflict{}, err
	}
	return checkReservationConflict(ctx, service.store, cycleID, resource, dateRange, exclude)
}

// CheckBlackoutConflict evaluates a prospective blackout of resourceID over dateRange.
func (service *Service) CheckBlackoutConflict(ctx context.Context, principal Principal, cycleID CycleID, resourceID ResourceID, dateRange DateRange, exclude BlackoutID) (Conflict, error) {
	if err := service.authorizeRead(principal, cycleID); err != nil {
		return Conflict{}, err
	}
	resource, err := service.store.GetResource(ctx, resourceID)
	if err != nil {
		return Conflict{}, err
	}
	return checkBlackoutConflict(ctx, service.store, cycleID, resource, dateRange, exclude)
}

// DeriveState returns the state of resourceID on asOf.
func (service *Service) DeriveState(ctx context.Context, principal Principal, cycleID CycleID, resourceID ResourceID, asOf Date) (ResourceState, error) {
	if err := service.authorizeRead(principal, cycleID); err != nil {
		return "", err
	}
	resource, err := service.store.GetResource(ctx, resourceID)
	if err != nil {
		return "", err
	}
	day, err := NewDateRange(asOf, asOf.AddDays(1))
	if err != nil {
		return "", err
	}
	availability, err := loadAvailability(ctx, service.store, cycleID, []Resource{resource}, &day)
	if err != nil {
		return "", err
	}
	return availability.State(resourceID, asOf), nil
}

// ResourceStates derives the state of every resource on asOf.
func (service *Service) ResourceStates(ctx context.Context, principal Principal, cycleID CycleID, asOf Date) (StateBoard, error) {
	if err := service.authorizeRead(principal, cycleID); err != nil {
		return StateBoard{}, err
	}
	resources, err := service.store.ListResources(ctx)
	if err != nil {
		return StateBoard{}, err
	}
	day, err := NewDateRange(asOf, asOf.AddDays(1))
	if err != nil {
		return StateBoard{}, err
	}
	availability, err := loadAvailability(ctx, service.store, cycleID, resources, &day)
	if err != nil {
		return StateBoard{}, err
	}
	return availability.Board(asOf), nil
}

// EligibleResources lists the resources a reservation over dateRange may target. When
// editing, exclude names the reservation and its current resource is always included.
func (service *Service) EligibleResources(ctx context.Context, principal Principal, cycleID CycleID, dateRange DateRange, exclude ReservationID) ([]Resource, error) {
	if err := service.authorizeRead(principal, cycleID); err != nil {
		return nil, err
	}
	var current ResourceID
	if !exclude.IsZero() {
		reservation, err := service.store.GetReservation(ctx, cycleID, exclude)
		if err != nil {
			return nil, err
		}
		current = reservation.ResourceID
	}
	resources, err := service.store.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	availability, err := loadAvailability(ctx, service.store, cycleID, resources, &dateRange)
	if err != nil {
		return nil, err
	}
	return availability.Eligible(dateRange, exclude, current), nil
}

// ProjectWeek returns the 7-day timeline starting at weekStart.
func (service *Service) ProjectWeek(ctx context.Context, principal Principal, cycleID CycleID, weekStart Date) (Timeline, error) {
	if err := service.authorizeRead(principal, cycleID); err != nil {
		return Timeline{}, err
	}
	if weekStart.IsZero() {
		return Timeline{}, fmt.Errorf("%w: week start is required", ErrInvalidDate)
	}
	if service.timelineCache != nil {
		cached, found, err := service.timelineCache.GetTimeline(ctx, cycleID, weekStart)
		if err != nil {
			service.logCacheFailure(ctx, cycleID, err)
		} else if found {
			return cached, nil
		}
	}
	resources, err := service.store.ListResources(ctx)
	if err != nil {
		return Timeline{}, err
	}
	window, err := NewDateRange(weekStart, weekStart.AddDays(timelineDays))
	if err != nil {
		return Timeline{}, err
	}
	availability, err := loadAvailability(ctx, service.store, cycleID, resources, &window)
	if err != nil {
		return Timeline{}, err
	}
	timeline := availability.ProjectWeek(weekStart)
	if service.timelineCache != nil {
		if err := service.timelineCache.PutTimeline(ctx, timeline); err != nil {
			service.logCacheFailure(ctx, cycleID, err)
		}
	}
	return timeline, nil
}

// GetResource returns one resource.
func (service *Service) GetResource(ctx context.Context, principal Principal, resourceID ResourceID) (Resource, error) {
	if !service.authorizer.CanReadLodging(principal) {
		return Resource{}, fmt.Errorf("%w: lodging read access required", ErrAuthorization)
	}
	return service.store.GetResource(ctx, resourceID)
}

// ListResources returns every resource ordered by code.
func (service *Service) ListResources(ctx context.Context, principal Principal) ([]Resource, error) {
	if !service.authorizer.CanReadLodging(principal) {
		return nil, fmt.Errorf("%w: lodging read access required", ErrAuthorization)
	}
	return service.store.ListResources(ctx)
}

// CreateResource registers a new resource. Codes are unique.
func (service *Service) CreateResource(ctx context.Context, principal Principal, input ResourceInput) (Resource, error) {
	input = normalizeResourceInput(input)
	var created Resource
	operationError := service.authorizeWrite(principal, CycleID{}, false)
	if operationError == nil {
		operationError = service.withTx(ctx, FieldCode, func(ctx context.Context, transactionStore Store) error {
			if err := newValidationError(ValidateResource(input)); err != nil {
				return err
			}
			if err := ensureUniqueCode(ctx, transactionStore, input.Code, ResourceID{}); err != nil {
				return err
			}
			resourceID, err := NewResourceID(service.newID())
			if err != nil {
				return err
			}
			resource := applyResourceInput(Resource{ID: resourceID}, input)
			if err := transactionStore.CreateResource(ctx, resource); err != nil {
				return translateResourceWriteError(err)
			}
			created = resource
			return nil
		})
	}
	if operationError == nil {
		service.invalidateTimelines(ctx, CycleID{})
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationCreateResource,
		ResourceID: created.ID,
		RecordID:   created.ID.String(),
		Actor:      principal.UserID,
		Error:      operationError,
	})
	return created, operationError
}

// UpdateResource replaces the editable fields of a resource.
func (service *Service) UpdateResource(ctx context.Context, principal Principal, resourceID ResourceID, input ResourceInput) (Resource, error) {
	input = normalizeResourceInput(input)
	var updated Resource
	operationError := service.authorizeWrite(principal, CycleID{}, false)
	if operationError == nil {
		operationError = service.withTx(ctx, FieldCode, func(ctx context.Context, transactionStore Store) error {
			existing, err := transactionStore.LockResource(ctx, resourceID)
			if err != nil {
				return err
			}
			if err := newValidationError(ValidateResource(input)); err != nil {
				return err
			}
			if err := ensureUniqueCode(ctx, transactionStore, input.Code, resourceID); err != nil {
				return err
			}
			resource := applyResourceInput(existing, input)
			if err := transactionStore.UpdateResource(ctx, resource); err != nil {
				return translateResourceWriteError(err)
			}
			updated = resource
			return nil
		})
	}
	if operationError == nil {
		service.invalidateTimelines(ctx, CycleID{})
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationUpdateResource,
		ResourceID: resourceID,
		RecordID:   resourceID.String(),
		Actor:      principal.UserID,
		Error:      operationError,
	})
	return updated, operationError
}

// ForceResourceActive marks the resource active and deactivates its active blackouts in
// cycleID. It returns the updated resource and the number of blackouts deactivated.
func (service *Service) ForceResourceActive(ctx context.Context, principal Principal, cycleID CycleID, resourceID ResourceID) (Resource, int, error) {
	var (
		updated     Resource
		deactivated int
	)
	operationError := service.authorizeWrite(principal, cycleID, true)
	if operationError == nil {
		operationError = service.withTx(ctx, FieldResourceID, func(ctx context.Context, transactionStore Store) error {
			resource, err := transactionStore.LockResource(ctx, resourceID)
			if err != nil {
				return err
			}
			if resource.Status != ResourceStatusActive {
				resource.Status = ResourceStatusActive
				if err := transactionStore.UpdateResource(ctx, resource); err != nil {
					return err
				}
			}
			blackouts, err := transactionStore.ListBlackouts(ctx, BlackoutQuery{
				CycleID:     cycleID,
				ResourceIDs: []ResourceID{resourceID},
				ActiveOnly:  true,
			})
			if err != nil {
				return err
			}
			now := service.nowFn()
			for _, blackout := range blackouts {
				blackout.Active = false
				blackout.Audit.UpdatedBy = principal.UserID
				blackout.Audit.UpdatedAt = now
				if err := transactionStore.UpdateBlackout(ctx, blackout); err != nil {
					return err
				}
				deactivated++
			}
			updated = resource
			return nil
		})
	}
	if operationError == nil {
		service.invalidateTimelines(ctx, CycleID{})
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationForceResourceActive,
		CycleID:    cycleID,
		ResourceID: resourceID,
		RecordID:   resourceID.String(),
		Actor:      principal.UserID,
		Error:      operationError,
	})
	return updated, deactivated, operationError
}

func (service *Service) authorizeRead(principal Principal, cycleID CycleID) error {
	if !service.authorizer.CanReadLodging(principal) {
		return fmt.Errorf("%w: lodging read access required", ErrAuthorization)
	}
	if cycleID.IsZero() {
		return fmt.Errorf("%w: no active cycle", ErrUnknownCycle)
	}
	return nil
}

func (service *Service) authorizeWrite(principal Principal, cycleID CycleID, requireCycle bool) error {
	if !service.authorizer.CanWriteLodging(principal) {
		return fmt.Errorf("%w: lodging write access required", ErrAuthorization)
	}
	if requireCycle && cycleID.IsZero() {
		return fmt.Errorf("%w: no active cycle", ErrUnknownCycle)
	}
	return nil
}

// withTx runs fn in a store transaction. A race the store only detects at commit
// is reported like one caught inside fn, attributed to raceField.
func (service *Service) withTx(ctx context.Context, raceField string, fn func(ctx context.Context, transactionStore Store) error) error {
	return translateRace(service.store.WithTx(ctx, fn), raceField)
}

func (service *Service) invalidateTimelines(ctx context.Context, cycleID CycleID) {
	if service.timelineCache == nil {
		return
	}
	if err := service.timelineCache.Invalidate(ctx, cycleID); err != nil {
		service.logCacheFailure(ctx, cycleID, err)
	}
}

func (service *Service) logCacheFailure(ctx context.Context, cycleID CycleID, err error) {
	service.logOperation(ctx, OperationLog{
		Operation: operationTimelineCache,
		CycleID:   cycleID,
		Error:     err,
	})
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}

// loadAvailability reads the cycle records relevant to resources, restricted to window when set.
func loadAvailability(ctx context.Context, store Store, cycleID CycleID, resources []Resource, window *DateRange) (*Availability, error) {
	resourceIDs := make([]ResourceID, 0, len(resources))
	for _, resource := range resources {
		resourceIDs = append(resourceIDs, resource.ID)
	}
	blackouts, err := store.ListBlackouts(ctx, BlackoutQuery{
		CycleID:     cycleID,
		ResourceIDs: resourceIDs,
		ActiveOnly:  true,
		Overlapping: window,
	})
	if err != nil {
		return nil, err
	}
	reservations, err := store.ListReservations(ctx, ReservationQuery{
		CycleID:     cycleID,
		ResourceIDs: resourceIDs,
		Statuses:    HoldingStatuses(),
		Overlapping: window,
	})
	if err != nil {
		return nil, err
	}
	return NewAvailability(cycleID, resources, blackouts, reservations), nil
}

func checkReservationConflict(ctx context.Context, store Store, cycleID CycleID, resource Resource, dateRange DateRange, exclude ReservationID) (Conflict, error) {
	if !resource.Bookable() {
		return Conflict{Kind: ConflictResourceInactive}, nil
	}
	availability, err := loadAvailability(ctx, store, cycleID, []Resource{resource}, &dateRange)
	if err != nil {
		return Conflict{}, err
	}
	return availability.CheckReservation(resource.ID, dateRange, exclude), nil
}

func checkBlackoutConflict(ctx context.Context, store Store, cycleID CycleID, resource Resource, dateRange DateRange, exclude BlackoutID) (Conflict, error) {
	availability, err := loadAvailability(ctx, store, cycleID, []Resource{resource}, &dateRange)
	if err != nil {
		return Conflict{}, err
	}
	return availability.CheckBlackout(resource.ID, dateRange, exclude), nil
}

// translateRace maps a write lost to a concurrent writer onto the same rejection a
// sequential conflict check produces.
func translateRace(err error, field string) error {
	var validationError *ValidationError
	if errors.As(err, &validationError) {
		return err
	}
	if !errors.Is(err, ErrConflict) {
		return err
	}
	return &ValidationError{Fields: []FieldError{{
		Field:   field,
		Code:    fieldCodeUnavailable,
		Message: "resource no longer available; select another",
	}}}
}

func translateResourceWriteError(err error) error {
	if errors.Is(err, ErrDuplicateResourceCode) {
		return duplicateCodeError()
	}
	return err
}

func ensureUniqueCode(ctx context.Context, store Store, code string, self ResourceID) error {
	resources, err := store.ListResources(ctx)
	if err != nil {
		return err
	}
	for _, resource := range resources {
		if resource.ID == self {
			continue
		}
		if strings.EqualFold(resource.Code, code) {
			return duplicateCodeError()
		}
	}
	return nil
}

func duplicateCodeError() error {
	return newValidationError([]FieldError{{Field: FieldCode, Code: fieldCodeDuplicate, Message: "a resource with this code already exists"}})
}

func normalizeResourceInput(input ResourceInput) ResourceInput {
	input.Code = strings.TrimSpace(input.Code)
	input.Notes = strings.TrimSpace(input.Notes)
	if input.Status == "" {
		input.Status = ResourceStatusActive
	}
	return input
}

func applyResourceInput(resource Resource, input ResourceInput) Resource {
	resource.Code = input.Code
	resource.Capacity = input.Capacity
	resource.Status = input.Status
	resource.Accessible = input.Accessible
	resource.Notes = input.Notes
	return resource
}
