package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	constraintResourceCode     = "uniq_resources_code"
	pgUniqueViolationCode      = "23505"
	pgExclusionViolationCode   = "23P01"
	pgSerializationFailureCode = "40001"
	pgDeadlockDetectedCode     = "40P01"
	pgLockNotAvailableCode     = "55P03"
	errorOperationStore        = "store"
	errorSubjectResource       = "resource"
	errorSubjectReservation    = "reservation"
	errorSubjectBlackout       = "blackout"
	errorSubjectReceipt        = "receipt"
	errorSubjectSchema         = "schema"
	errorSubjectTransaction    = "transaction"
	errorCodeBegin             = "begin"
	errorCodeCommit            = "commit"
	errorCodeCreate            = "create"
	errorCodeDelete            = "delete"
	errorCodeDuplicate         = "duplicate"
	errorCodeGet               = "get"
	errorCodeInvalid           = "invalid"
	errorCodeList              = "list"
	errorCodeLock              = "lock"
	errorCodeMigrate           = "migrate"
	errorCodeRace              = "race"
	errorCodeUpdate            = "update"
	receiptSourceLodging       = "lodging"

	resourceColumns = `resource_id, code, capacity, status, accessible, notes`

	reservationColumns = `
		reservation_id, cycle_id, resource_id, responsible_name, adults, children, child_ages,
		special_needs, special_needs_detail, entry_date, exit_date, status, amount_cents, paid,
		payment_method, account_ref, coalesce(ledger_entry_id, ''), notes,
		coalesce(created_by, ''), created_at, coalesce(updated_by, ''), updated_at
	`

	blackoutColumns = `
		blackout_id, cycle_id, resource_id, kind, title, start_date, end_date, description, active,
		coalesce(created_by, ''), created_at, coalesce(updated_by, ''), updated_at
	`

	sqlLockResource = `select ` + resourceColumns + ` from resources where resource_id = $1 for update`
	sqlGetResource  = `select ` + resourceColumns + ` from resources where resource_id = $1`
	sqlListResource = `select ` + resourceColumns + ` from resources order by code asc`

	sqlInsertResource = `
		insert into resources(resource_id, code, capacity, status, accessible, notes, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $7)
	`

	sqlUpdateResource = `
		update resources
		set code = $2, capacity = $3, status = $4, accessible = $5, notes = $6, updated_at = $7
		where resource_id = $1
	`

	sqlGetReservation = `select ` + reservationColumns + ` from reservations where cycle_id = $1 and reservation_id = $2`

	sqlInsertReservation = `
		insert into reservations(
			reservation_id, cycle_id, resource_id, responsible_name, adults, children, child_ages,
			special_needs, special_needs_detail, entry_date, exit_date, status, amount_cents, paid,
			payment_method, account_ref, ledger_entry_id, notes, created_by, created_at, updated_by, updated_at
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, nullif($17, ''), $18, nullif($19, ''), $20, nullif($21, ''), $22)
	`

	sqlUpdateReservation = `
		update reservations
		set resource_id = $3, responsible_name = $4, adults = $5, children = $6, child_ages = $7,
			special_needs = $8, special_needs_detail = $9, entry_date = $10, exit_date = $11, status = $12,
			amount_cents = $13, paid = $14, payment_method = $15, account_ref = $16,
			ledger_entry_id = nullif($17, ''), notes = $18, updated_by = nullif($19, ''), updated_at = $20
		where cycle_id = $1 and reservation_id = $2
	`

	sqlDeleteReservation = `delete from reservations where cycle_id = $1 and reservation_id = $2`

	sqlGetBlackout = `select ` + blackoutColumns + ` from blackouts where cycle_id = $1 and blackout_id = $2`

	sqlInsertBlackout = `
		insert into blackouts(
			blackout_id, cycle_id, resource_id, kind, title, start_date, end_date, description, active,
			created_by, created_at, updated_by, updated_at
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, nullif($10, ''), $11, nullif($12, ''), $13)
	`

	sqlUpdateBlackout = `
		update blackouts
		set resource_id = $3, kind = $4, title = $5, start_date = $6, end_date = $7, description = $8,
			active = $9, updated_by = nullif($10, ''), updated_at = $11
		where cycle_id = $1 and blackout_id = $2
	`

	sqlInsertReceipt = `
		insert into ledger_entries(
			entry_id, cycle_id, category, account_ref, entry_date, description, amount_cents,
			payment_method, metadata, created_by, created_at
		)
		values (gen_random_uuid()::text, $1, $2, $3, $4, $5, $6, $7, $8::jsonb, nullif($9, ''), $10)
		returning entry_id
	`
)

type queryer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements lodging.Store on a pgx pool. Inside WithTx the same type runs
// against the open transaction.
type Store struct {
	pool *pgxpool.Pool
	db   queryer
	now  func() time.Time
}

// New returns a Store backed by a pgx pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool, now: func() time.Time { return time.Now().UTC() }}
}

// WithTx runs fn in a transaction; nested calls reuse the open transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore lodging.Store) error) error {
	if store.pool == nil {
		return fn(ctx, store)
	}
	tx, err := store.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeBegin, err)
	}
	transactionStore := &Store{db: tx, now: store.now}
	if err := fn(ctx, transactionStore); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isRace(err) {
			return wrapStoreError(errorSubjectTransaction, errorCodeRace, fmt.Errorf("%w: %v", lodging.ErrConflict, err))
		}
		return wrapStoreError(errorSubjectTransaction, errorCodeCommit, err)
	}
	return nil
}

func (store *Store) LockResource(ctx context.Context, resourceID lodging.ResourceID) (lodging.Resource, error) {
	resource, err := scanResource(store.db.QueryRow(ctx, sqlLockResource, resourceID.String()))
	if err != nil {
		return lodging.Resource{}, resourceLookupError(errorCodeLock, err)
	}
	return resource, nil
}

func (store *Store) GetResource(ctx context.Context, resourceID lodging.ResourceID) (lodging.Resource, error) {
	resource, err := scanResource(store.db.QueryRow(ctx, sqlGetResource, resourceID.String()))
	if err != nil {
		return lodging.Resource{}, resourceLookupError(errorCodeGet, err)
	}
	return resource, nil
}

func (store *Store) ListResources(ctx context.Context) ([]lodging.Resource, error) {
	rows, err := store.db.Query(ctx, sqlListResource)
	if err != nil {
		return nil, wrapStoreError(errorSubjectResource, errorCodeList, err)
	}
	defer rows.Close()
	resources := make([]lodging.Resource, 0, 16)
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, wrapStoreError(errorSubjectResource, errorCodeInvalid, err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError(errorSubjectResource, errorCodeList, err)
	}
	return resources, nil
}

func (store *Store) CreateResource(ctx context.Context, resource lodging.Resource) error {
	_, err := store.db.Exec(ctx, sqlInsertResource,
		resource.ID.String(),
		resource.Code,
		resource.Capacity,
		resource.Status.String(),
		resource.Accessible,
		resource.Notes,
		store.now(),
	)
	if isDuplicateCode(err) {
		return wrapStoreError(errorSubjectResource, errorCodeDuplicate, lodging.ErrDuplicateResourceCode)
	}
	if err != nil {
		return wrapStoreError(errorSubjectResource, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateResource(ctx context.Context, resource lodging.Resource) error {
	tag, err := store.db.Exec(ctx, sqlUpdateResource,
		resource.ID.String(),
		resource.Code,
		resource.Capacity,
		resource.Status.String(),
		resource.Accessible,
		resource.Notes,
		store.now(),
	)
	if isDuplicateCode(err) {
		return wrapStoreError(errorSubjectResource, errorCodeDuplicate, lodging.ErrDuplicateResourceCode)
	}
	if err != nil {
		return wrapStoreError(errorSubjectResource, errorCodeUpdate, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapStoreError(errorSubjectResource, errorCodeUpdate, lodging.ErrUnknownResource)
	}
	return nil
}

func (store *Store) GetReservation(ctx context.Context, cycleID lodging.CycleID, reservationID lodging.ReservationID) (lodging.Reservation, error) {
	reservation, err := scanReservation(store.db.QueryRow(ctx, sqlGetReservation, cycleID.String(), reservationID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lodging.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, lodging.ErrUnknownReservation)
		}
		return lodging.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, err)
	}
	return reservation, nil
}

func (store *Store) ListReservations(ctx context.Context, query lodging.ReservationQuery) ([]lodging.Reservation, error) {
	sql, args := buildReservationQuery(query)
	rows, err := store.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapStoreError(errorSubjectReservation, errorCodeList, err)
	}
	defer rows.Close()
	reservations := make([]lodging.Reservation, 0, 16)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError(errorSubjectReservation, errorCodeList, err)
	}
	return reservations, nil
}

func (store *Store) CreateReservation(ctx context.Context, reservation lodging.Reservation) error {
	args := append([]any{reservation.ID.String(), reservation.CycleID.String()}, reservationArguments(reservation)...)
	args = append(args,
		reservation.Audit.CreatedBy.String(),
		reservation.Audit.CreatedAt,
		reservation.Audit.UpdatedBy.String(),
		reservation.Audit.UpdatedAt,
	)
	_, err := store.db.Exec(ctx, sqlInsertReservation, args...)
	if isRace(err) {
		return wrapStoreError(errorSubjectReservation, errorCodeRace, lodging.ErrConflict)
	}
	if err != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateReservation(ctx context.Context, reservation lodging.Reservation) error {
	args := append([]any{reservation.CycleID.String(), reservation.ID.String()}, reservationArguments(reservation)...)
	args = append(args, reservation.Audit.UpdatedBy.String(), reservation.Audit.UpdatedAt)
	tag, err := store.db.Exec(ctx, sqlUpdateReservation, args...)
	if isRace(err) {
		return wrapStoreError(errorSubjectReservation, errorCodeRace, lodging.ErrConflict)
	}
	if err != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeUpdate, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeUpdate, lodging.ErrUnknownReservation)
	}
	return nil
}

func (store *Store) DeleteReservation(ctx context.Context, cycleID lodging.CycleID, reservationID lodging.ReservationID) error {
	tag, err := store.db.Exec(ctx, sqlDeleteReservation, cycleID.String(), reservationID.String())
	if err != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, lodging.ErrUnknownReservation)
	}
	return nil
}

func (store *Store) GetBlackout(ctx context.Context, cycleID lodging.CycleID, blackoutID lodging.BlackoutID) (lodging.Blackout, error) {
	blackout, err := scanBlackout(store.db.QueryRow(ctx, sqlGetBlackout, cycleID.String(), blackoutID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lodging.Blackout{}, wrapStoreError(errorSubjectBlackout, errorCodeGet, lodging.ErrUnknownBlackout)
		}
		return lodging.Blackout{}, wrapStoreError(errorSubjectBlackout, errorCodeGet, err)
	}
	return blackout, nil
}

func (store *Store) ListBlackouts(ctx context.Context, query lodging.BlackoutQuery) ([]lodging.Blackout, error) {
	sql, args := buildBlackoutQuery(query)
	rows, err := store.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapStoreError(errorSubjectBlackout, errorCodeList, err)
	}
	defer rows.Close()
	blackouts := make([]lodging.Blackout, 0, 8)
	for rows.Next() {
		blackout, err := scanBlackout(rows)
		if err != nil {
			return nil, wrapStoreError(errorSubjectBlackout, errorCodeInvalid, err)
		}
		blackouts = append(blackouts, blackout)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError(errorSubjectBlackout, errorCodeList, err)
	}
	return blackouts, nil
}

func (store *Store) CreateBlackout(ctx context.Context, blackout lodging.Blackout) error {
	_, err := store.db.Exec(ctx, sqlInsertBlackout,
		blackout.ID.String(),
		blackout.CycleID.String(),
		blackout.ResourceID.String(),
		blackout.Kind.String(),
		blackout.Title,
		blackout.Range.Start().Time(),
		blackout.Range.End().Time(),
		blackout.Description,
		blackout.Active,
		blackout.Audit.CreatedBy.String(),
		blackout.Audit.CreatedAt,
		blackout.Audit.UpdatedBy.String(),
		blackout.Audit.UpdatedAt,
	)
	if isRace(err) {
		return wrapStoreError(errorSubjectBlackout, errorCodeRace, lodging.ErrConflict)
	}
	if err != nil {
		return wrapStoreError(errorSubjectBlackout, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateBlackout(ctx context.Context, blackout lodging.Blackout) error {
	tag, err := store.db.Exec(ctx, sqlUpdateBlackout,
		blackout.CycleID.String(),
		blackout.ID.String(),
		blackout.ResourceID.String(),
		blackout.Kind.String(),
		blackout.Title,
		blackout.Range.Start().Time(),
		blackout.Range.End().Time(),
		blackout.Description,
		blackout.Active,
		blackout.Audit.UpdatedBy.String(),
		blackout.Audit.UpdatedAt,
	)
	if isRace(err) {
		return wrapStoreError(errorSubjectBlackout, errorCodeRace, lodging.ErrConflict)
	}
	if err != nil {
		return wrapStoreError(errorSubjectBlackout, errorCodeUpdate, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapStoreError(errorSubjectBlackout, errorCodeUpdate, lodging.ErrUnknownBlackout)
	}
	return nil
}

func (store *Store) CreateReceipt(ctx context.Context, receipt lodging.ReceiptInput) (lodging.LedgerEntryID, error) {
	metadata, err := json.Marshal(receiptMetadata{
		Source:        receiptSourceLodging,
		ReservationID: receipt.ReservationID.String(),
	})
	if err != nil {
		return lodging.LedgerEntryID{}, wrapStoreError(errorSubjectReceipt, errorCodeInvalid, err)
	}
	var entryIDValue string
	err = store.db.QueryRow(ctx, sqlInsertReceipt,
		receipt.CycleID.String(),
		receipt.Category,
		receipt.AccountRef,
		receipt.Date.Time(),
		receipt.Description,
		receipt.AmountCents,
		receipt.PaymentMethod.String(),
		string(metadata),
		receipt.CreatedBy.String(),
		store.now(),
	).Scan(&entryIDValue)
	if err != nil {
		return lodging.LedgerEntryID{}, wrapStoreError(errorSubjectReceipt, errorCodeCreate, err)
	}
	entryID, err := lodging.NewLedgerEntryID(entryIDValue)
	if err != nil {
		return lodging.LedgerEntryID{}, wrapStoreError(errorSubjectReceipt, errorCodeInvalid, err)
	}
	return entryID, nil
}

type receiptMetadata struct {
	Source        string `json:"source"`
	ReservationID string `json:"reservation_id"`
}

// buildReservationQuery renders the optional filters as positional arguments.
func buildReservationQuery(query lodging.ReservationQuery) (string, []any) {
	builder := newFilterBuilder(`select `+reservationColumns+` from reservations`, query.CycleID.String())
	if len(query.ResourceIDs) > 0 {
		builder.add("resource_id = any(%s)", resourceIDStrings(query.ResourceIDs))
	}
	if len(query.Statuses) > 0 {
		statuses := make([]string, 0, len(query.Statuses))
		for _, status := range query.Statuses {
			statuses = append(statuses, status.String())
		}
		builder.add("status = any(%s)", statuses)
	}
	if query.Overlapping != nil {
		builder.add("entry_date < %s", query.Overlapping.End().Time())
		builder.add("exit_date > %s", query.Overlapping.Start().Time())
	}
	return builder.sql("created_at desc, reservation_id desc"), builder.args
}

func buildBlackoutQuery(query lodging.BlackoutQuery) (string, []any) {
	builder := newFilterBuilder(`select `+blackoutColumns+` from blackouts`, query.CycleID.String())
	if len(query.ResourceIDs) > 0 {
		builder.add("resource_id = any(%s)", resourceIDStrings(query.ResourceIDs))
	}
	if query.ActiveOnly {
		builder.add("active = %s", true)
	}
	if query.Overlapping != nil {
		builder.add("start_date < %s", query.Overlapping.End().Time())
		builder.add("end_date > %s", query.Overlapping.Start().Time())
	}
	return builder.sql("start_date desc, blackout_id asc"), builder.args
}

type filterBuilder struct {
	base       string
	conditions []string
	args       []any
}

func newFilterBuilder(base string, cycleID string) *filterBuilder {
	builder := &filterBuilder{base: base}
	builder.add("cycle_id = %s", cycleID)
	return builder
}

func (builder *filterBuilder) add(condition string, value any) {
	builder.args = append(builder.args, value)
	builder.conditions = append(builder.conditions, fmt.Sprintf(condition, fmt.Sprintf("$%d", len(builder.args))))
}

func (builder *filterBuilder) sql(orderBy string) string {
	return builder.base + " where " + strings.Join(builder.conditions, " and ") + " order by " + orderBy
}

func reservationArguments(reservation lodging.Reservation) []any {
	return []any{
		reservation.ResourceID.String(),
		reservation.ResponsibleName,
		reservation.Adults,
		reservation.Children,
		reservation.ChildAges,
		reservation.SpecialNeeds,
		reservation.SpecialNeedsDetail,
		reservation.Range.Start().Time(),
		reservation.Range.End().Time(),
		reservation.Status.String(),
		reservation.AmountCents,
		reservation.Paid,
		reservation.PaymentMethod.String(),
		reservation.AccountRef,
		reservation.LedgerEntryID.String(),
		reservation.Notes,
	}
}

func scanResource(row pgx.Row) (lodging.Resource, error) {
	var (
		resourceIDValue string
		statusValue     string
		resource        lodging.Resource
	)
	if err := row.Scan(&resourceIDValue, &resource.Code, &resource.Capacity, &statusValue, &resource.Accessible, &resource.Notes); err != nil {
		return lodging.Resource{}, err
	}
	resourceID, err := lodging.NewResourceID(resourceIDValue)
	if err != nil {
		return lodging.Resource{}, err
	}
	status, err := lodging.ParseResourceStatus(statusValue)
	if err != nil {
		return lodging.Resource{}, err
	}
	resource.ID = resourceID
	resource.Status = status
	return resource, nil
}

func scanReservation(row pgx.Row) (lodging.Reservation, error) {
	var (
		reservationIDValue string
		cycleIDValue       string
		resourceIDValue    string
		entryDate          time.Time
		exitDate           time.Time
		statusValue        string
		methodValue        string
		ledgerEntryValue   string
		createdBy          string
		createdAt          time.Time
		updatedBy          string
		updatedAt          time.Time
		reservation        lodging.Reservation
	)
	if err := row.Scan(
		&reservationIDValue,
		&cycleIDValue,
		&resourceIDValue,
		&reservation.ResponsibleName,
		&reservation.Adults,
		&reservation.Children,
		&reservation.ChildAges,
		&reservation.SpecialNeeds,
		&reservation.SpecialNeedsDetail,
		&entryDate,
		&exitDate,
		&statusValue,
		&reservation.AmountCents,
		&reservation.Paid,
		&methodValue,
		&reservation.AccountRef,
		&ledgerEntryValue,
		&reservation.Notes,
		&createdBy,
		&createdAt,
		&updatedBy,
		&updatedAt,
	); err != nil {
		return lodging.Reservation{}, err
	}
	var err error
	if reservation.ID, err = lodging.NewReservationID(reservationIDValue); err != nil {
		return lodging.Reservation{}, err
	}
	if reservation.CycleID, err = lodging.NewCycleID(cycleIDValue); err != nil {
		return lodging.Reservation{}, err
	}
	if reservation.ResourceID, err = lodging.NewResourceID(resourceIDValue); err != nil {
		return lodging.Reservation{}, err
	}
	if reservation.Range, err = lodging.NewDateRange(lodging.DateOf(entryDate), lodging.DateOf(exitDate)); err != nil {
		return lodging.Reservation{}, err
	}
	if reservation.Status, err = lodging.ParseReservationStatus(statusValue); err != nil {
		return lodging.Reservation{}, err
	}
	if reservation.PaymentMethod, err = lodging.ParsePaymentMethod(methodValue); err != nil {
		return lodging.Reservation{}, err
	}
	if ledgerEntryValue != "" {
		if reservation.LedgerEntryID, err = lodging.NewLedgerEntryID(ledgerEntryValue); err != nil {
			return lodging.Reservation{}, err
		}
	}
	reservation.Audit = scanAudit(createdBy, createdAt, updatedBy, updatedAt)
	return reservation, nil
}

func scanBlackout(row pgx.Row) (lodging.Blackout, error) {
	var (
		blackoutIDValue string
		cycleIDValue    string
		resourceIDValue string
		kindValue       string
		startDate       time.Time
		endDate         time.Time
		createdBy       string
		createdAt       time.Time
		updatedBy       string
		updatedAt       time.Time
		blackout        lodging.Blackout
	)
	if err := row.Scan(
		&blackoutIDValue,
		&cycleIDValue,
		&resourceIDValue,
		&kindValue,
		&blackout.Title,
		&startDate,
		&endDate,
		&blackout.Description,
		&blackout.Active,
		&createdBy,
		&createdAt,
		&updatedBy,
		&updatedAt,
	); err != nil {
		return lodging.Blackout{}, err
	}
	var err error
	if blackout.ID, err = lodging.NewBlackoutID(blackoutIDValue); err != nil {
		return lodging.Blackout{}, err
	}
	if blackout.CycleID, err = lodging.NewCycleID(cycleIDValue); err != nil {
		return lodging.Blackout{}, err
	}
	if blackout.ResourceID, err = lodging.NewResourceID(resourceIDValue); err != nil {
		return lodging.Blackout{}, err
	}
	if blackout.Kind, err = lodging.ParseBlackoutKind(kindValue); err != nil {
		return lodging.Blackout{}, err
	}
	if blackout.Range, err = lodging.NewDateRange(lodging.DateOf(startDate), lodging.DateOf(endDate)); err != nil {
		return lodging.Blackout{}, err
	}
	blackout.Audit = scanAudit(createdBy, createdAt, updatedBy, updatedAt)
	return blackout, nil
}

func scanAudit(createdBy string, createdAt time.Time, updatedBy string, updatedAt time.Time) lodging.Audit {
	audit := lodging.Audit{CreatedAt: createdAt, UpdatedAt: updatedAt}
	if userID, err := lodging.NewUserID(createdBy); err == nil {
		audit.CreatedBy = userID
	}
	if userID, err := lodging.NewUserID(updatedBy); err == nil {
		audit.UpdatedBy = userID
	}
	return audit
}

func resourceIDStrings(resourceIDs []lodging.ResourceID) []string {
	values := make([]string, 0, len(resourceIDs))
	for _, resourceID := range resourceIDs {
		values = append(values, resourceID.String())
	}
	return values
}

func wrapStoreError(subject string, code string, err error) error {
	return lodging.WrapError(errorOperationStore, subject, code, err)
}

func resourceLookupError(code string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return wrapStoreError(errorSubjectResource, code, lodging.ErrUnknownResource)
	}
	return wrapStoreError(errorSubjectResource, code, err)
}

func isRace(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgExclusionViolationCode, pgSerializationFailureCode, pgDeadlockDetectedCode, pgLockNotAvailableCode:
		return true
	}
	return false
}

func isDuplicateCode(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode && pgErr.ConstraintName == constraintResourceCode
	}
	return false
}

var _ lodging.Store = (*Store)(nil)
