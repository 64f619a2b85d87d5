package lodging

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

const testCycleValue = "cycle-2026"

var testNow = time.Date(2026, time.July, 10, 9, 30, 0, 0, time.UTC)

func mustCycleID(test *testing.T, raw string) CycleID {
	test.Helper()
	cycleID, err := NewCycleID(raw)
	if err != nil {
		test.Fatalf("cycle id: %v", err)
	}
	return cycleID
}

func mustResourceID(test *testing.T, raw string) ResourceID {
	test.Helper()
	resourceID, err := NewResourceID(raw)
	if err != nil {
		test.Fatalf("resource id: %v", err)
	}
	return resourceID
}

func mustReservationID(test *testing.T, raw string) ReservationID {
	test.Helper()
	reservationID, err := NewReservationID(raw)
	if err != nil {
		test.Fatalf("reservation id: %v", err)
	}
	return reservationID
}

func mustBlackoutID(test *testing.T, raw string) BlackoutID {
	test.Helper()
	blackoutID, err := NewBlackoutID(raw)
	if err != nil {
		test.Fatalf("blackout id: %v", err)
	}
	return blackoutID
}

func mustUserID(test *testing.T, raw string) UserID {
	test.Helper()
	userID, err := NewUserID(raw)
	if err != nil {
		test.Fatalf("user id: %v", err)
	}
	return userID
}

func mustDate(test *testing.T, raw string) Date {
	test.Helper()
	date, err := ParseDate(raw)
	if err != nil {
		test.Fatalf("date %q: %v", raw, err)
	}
	return date
}

func mustRange(test *testing.T, start string, end string) DateRange {
	test.Helper()
	dateRange, err := NewDateRange(mustDate(test, start), mustDate(test, end))
	if err != nil {
		test.Fatalf("range %s..%s: %v", start, end, err)
	}
	return dateRange
}

func newResource(test *testing.T, id string, code string, capacity int, status ResourceStatus) Resource {
	test.Helper()
	return Resource{ID: mustResourceID(test, id), Code: code, Capacity: capacity, Status: status}
}

func newHolding(test *testing.T, id string, resourceID ResourceID, status ReservationStatus, start string, end string) Reservation {
	test.Helper()
	return Reservation{
		ID:              mustReservationID(test, id),
		CycleID:         mustCycleID(test, testCycleValue),
		ResourceID:      resourceID,
		ResponsibleName: "Guest " + id,
		Adults:          1,
		Range:           mustRange(test, start, end),
		Status:          status,
	}
}

func newWindow(test *testing.T, id string, resourceID ResourceID, start string, end string, active bool) Blackout {
	test.Helper()
	return Blackout{
		ID:         mustBlackoutID(test, id),
		CycleID:    mustCycleID(test, testCycleValue),
		ResourceID: resourceID,
		Kind:       BlackoutKindMaintenance,
		Title:      "Window " + id,
		Range:      mustRange(test, start, end),
		Active:     active,
	}
}

func writerPrincipal(test *testing.T) Principal {
	test.Helper()
	return Principal{UserID: mustUserID(test, "operator-1"), Roles: []string{RoleLodging}}
}

func readerPrincipal(test *testing.T) Principal {
	test.Helper()
	return Principal{UserID: mustUserID(test, "viewer-1"), Roles: []string{RoleLodgingReadOnly}}
}

func sequentialIDs(prefix string) func() string {
	var (
		mutex   sync.Mutex
		counter int
	)
	return func() string {
		mutex.Lock()
		defer mutex.Unlock()
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}

func mustNewService(test *testing.T, store Store, options ...ServiceOption) *Service {
	test.Helper()
	options = append([]ServiceOption{WithIDGenerator(sequentialIDs("id"))}, options...)
	service, err := NewService(store, func() time.Time { return testNow }, options...)
	if err != nil {
		test.Fatalf("service: %v", err)
	}
	return service
}

// stubStore is an in-memory Store. WithTx snapshots the maps and restores them when fn fails
// or when commitErr is set.
type stubStore struct {
	resources    map[ResourceID]Resource
	reservations map[ReservationID]Reservation
	blackouts    map[BlackoutID]Blackout
	receipts     []ReceiptInput

	createReservationErr error
	updateReservationErr error
	createBlackoutErr    error
	createReceiptErr     error
	listResourcesErr     error
	commitErr            error
	lockedResources      []ResourceID
	transactions         int
}

func newStubStore(test *testing.T, resources ...Resource) *stubStore {
	test.Helper()
	store := &stubStore{
		resources:    make(map[ResourceID]Resource),
		reservations: make(map[ReservationID]Reservation),
		blackouts:    make(map[BlackoutID]Blackout),
	}
	for _, resource := range resources {
		store.resources[resource.ID] = resource
	}
	return store
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	store.transactions++
	resources := make(map[ResourceID]Resource, len(store.resources))
	for key, value := range store.resources {
		resources[key] = value
	}
	reservations := make(map[ReservationID]Reservation, len(store.reservations))
	for key, value := range store.reservations {
		reservations[key] = value
	}
	blackouts := make(map[BlackoutID]Blackout, len(store.blackouts))
	for key, value := range store.blackouts {
		blackouts[key] = value
	}
	receipts := append([]ReceiptInput(nil), store.receipts...)
	if err := fn(ctx, store); err != nil {
		store.resources = resources
		store.reservations = reservations
		store.blackouts = blackouts
		store.receipts = receipts
		return err
	}
	if store.commitErr != nil {
		store.resources = resources
		store.reservations = reservations
		store.blackouts = blackouts
		store.receipts = receipts
		return store.commitErr
	}
	return nil
}

func (store *stubStore) LockResource(ctx context.Context, resourceID ResourceID) (Resource, error) {
	store.lockedResources = append(store.lockedResources, resourceID)
	return store.GetResource(ctx, resourceID)
}

func (store *stubStore) GetResource(_ context.Context, resourceID ResourceID) (Resource, error) {
	resource, ok := store.resources[resourceID]
	if !ok {
		return Resource{}, ErrUnknownResource
	}
	return resource, nil
}

func (store *stubStore) ListResources(context.Context) ([]Resource, error) {
	if store.listResourcesErr != nil {
		return nil, store.listResourcesErr
	}
	resources := make([]Resource, 0, len(store.resources))
	for _, resource := range store.resources {
		resources = append(resources, resource)
	}
	sort.Slice(resources, func(left, right int) bool {
		return resources[left].Code < resources[right].Code
	})
	return resources, nil
}

func (store *stubStore) CreateResource(_ context.Context, resource Resource) error {
	store.resources[resource.ID] = resource
	return nil
}

func (store *stubStore) UpdateResource(_ context.Context, resource Resource) error {
	if _, ok := store.resources[resource.ID]; !ok {
		return ErrUnknownResource
	}
	store.resources[resource.ID] = resource
	return nil
}

func (store *stubStore) GetReservation(_ context.Context, cycleID CycleID, reservationID ReservationID) (Reservation, error) {
	reservation, ok := store.reservations[reservationID]
	if !ok || reservation.CycleID != cycleID {
		return Reservation{}, ErrUnknownReservation
	}
	return reservation, nil
}

func (store *stubStore) ListReservations(_ context.Context, query ReservationQuery) ([]Reservation, error) {
	var matches []Reservation
	for _, reservation := range store.reservations {
		if reservation.CycleID != query.CycleID {
			continue
		}
		if len(query.ResourceIDs) > 0 && !containsResource(query.ResourceIDs, reservation.ResourceID) {
			continue
		}
		if len(query.Statuses) > 0 && !containsStatus(query.Statuses, reservation.Status) {
			continue
		}
		if query.Overlapping != nil && !reservation.Range.Overlaps(*query.Overlapping) {
			continue
		}
		matches = append(matches, reservation)
	}
	sort.Slice(matches, func(left, right int) bool {
		if !matches[left].Audit.CreatedAt.Equal(matches[right].Audit.CreatedAt) {
			return matches[left].Audit.CreatedAt.After(matches[right].Audit.CreatedAt)
		}
		return matches[left].ID.String() > matches[right].ID.String()
	})
	return matches, nil
}

func (store *stubStore) CreateReservation(_ context.Context, reservation Reservation) error {
	if store.createReservationErr != nil {
		return store.createReservationErr
	}
	store.reservations[reservation.ID] = reservation
	return nil
}

func (store *stubStore) UpdateReservation(_ context.Context, reservation Reservation) error {
	if store.updateReservationErr != nil {
		return store.updateReservationErr
	}
	if _, ok := store.reservations[reservation.ID]; !ok {
		return ErrUnknownReservation
	}
	store.reservations[reservation.ID] = reservation
	return nil
}

func (store *stubStore) DeleteReservation(_ context.Context, cycleID CycleID, reservationID ReservationID) error {
	reservation, ok := store.reservations[reservationID]
	if !ok || reservation.CycleID != cycleID {
		return ErrUnknownReservation
	}
	delete(store.reservations, reservationID)
	return nil
}

func (store *stubStore) GetBlackout(_ context.Context, cycleID CycleID, blackoutID BlackoutID) (Blackout, error) {
	blackout, ok := store.blackouts[blackoutID]
	if !ok || blackout.CycleID != cycleID {
		return Blackout{}, ErrUnknownBlackout
	}
	return blackout, nil
}

func (store *stubStore) ListBlackouts(_ context.Context, query BlackoutQuery) ([]Blackout, error) {
	var matches []Blackout
	for _, blackout := range store.blackouts {
		if blackout.CycleID != query.CycleID {
			continue
		}
		if len(query.ResourceIDs) > 0 && !containsResource(query.ResourceIDs, blackout.ResourceID) {
			continue
		}
		if query.ActiveOnly && !blackout.Active {
			continue
		}
		if query.Overlapping != nil && !blackout.Range.Overlaps(*query.Overlapping) {
			continue
		}
		matches = append(matches, blackout)
	}
	sort.Slice(matches, func(left, right int) bool {
		return matches[left].Range.Start().After(matches[right].Range.Start())
	})
	return matches, nil
}

func (store *stubStore) CreateBlackout(_ context.Context, blackout Blackout) error {
	if store.createBlackoutErr != nil {
		return store.createBlackoutErr
	}
	store.blackouts[blackout.ID] = blackout
	return nil
}

func (store *stubStore) UpdateBlackout(_ context.Context, blackout Blackout) error {
	if _, ok := store.blackouts[blackout.ID]; !ok {
		return ErrUnknownBlackout
	}
	store.blackouts[blackout.ID] = blackout
	return nil
}

func (store *stubStore) CreateReceipt(_ context.Context, receipt ReceiptInput) (LedgerEntryID, error) {
	if store.createReceiptErr != nil {
		return LedgerEntryID{}, store.createReceiptErr
	}
	store.receipts = append(store.receipts, receipt)
	return NewLedgerEntryID(fmt.Sprintf("entry-%d", len(store.receipts)))
}

func containsResource(resourceIDs []ResourceID, candidate ResourceID) bool {
	for _, resourceID := range resourceIDs {
		if resourceID == candidate {
			return true
		}
	}
	return false
}

func containsStatus(statuses []ReservationStatus, candidate ReservationStatus) bool {
	for _, status := range statuses {
		if status == candidate {
			return true
		}
	}
	return false
}

type recorderLogger struct {
	mutex   sync.Mutex
	entries []OperationLog
}

func (logger *recorderLogger) LogOperation(_ context.Context, entry OperationLog) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()
	logger.entries = append(logger.entries, entry)
}

type recordingCache struct {
	timelines   map[string]Timeline
	invalidated []CycleID
	gets        int
	puts        int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{timelines: make(map[string]Timeline)}
}

func (cache *recordingCache) GetTimeline(_ context.Context, cycleID CycleID, weekStart Date) (Timeline, bool, error) {
	cache.gets++
	timeline, ok := cache.timelines[cycleID.String()+"/"+weekStart.String()]
	return timeline, ok, nil
}

func (cache *recordingCache) PutTimeline(_ context.Context, timeline Timeline) error {
	cache.puts++
	cache.timelines[timeline.CycleID.String()+"/"+timeline.WeekStart.String()] = timeline
	return nil
}

func (cache *recordingCache) Invalidate(_ context.Context, cycleID CycleID) error {
	cache.invalidated = append(cache.invalidated, cycleID)
	cache.timelines = make(map[string]Timeline)
	return nil
}
