package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	constraintResourceCode     = "uniq_resources_code"
	pgUniqueViolationCode      = "23505"
	pgExclusionViolationCode   = "23P01"
	pgSerializationFailureCode = "40001"
	pgDeadlockDetectedCode     = "40P01"
	pgLockNotAvailableCode     = "55P03"
	sqliteBusyCode             = 5
	sqliteLockedCode           = 6
	sqliteConstraintCode       = 19
	mysqlDuplicateEntryCode    = 1062
	mysqlLockWaitTimeoutCode   = 1205
	mysqlDeadlockCode          = 1213
	errorOperationStore        = "store"
	errorSubjectResource       = "resource"
	errorSubjectReservation    = "reservation"
	errorSubjectBlackout       = "blackout"
	errorSubjectReceipt        = "receipt"
	errorSubjectTransaction    = "transaction"
	errorCodeCreate            = "create"
	errorCodeDelete            = "delete"
	errorCodeDuplicate         = "duplicate"
	errorCodeGet               = "get"
	errorCodeInvalid           = "invalid"
	errorCodeList              = "list"
	errorCodeLock              = "lock"
	errorCodeRace              = "race"
	errorCodeUpdate            = "update"
	receiptSourceLodging       = "lodging"
)

// Store implements lodging.Store using GORM.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore lodging.Store) error) error {
	err := store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction, now: store.now})
	})
	if isRace(err) {
		return wrapStoreError(errorSubjectTransaction, errorCodeRace, fmt.Errorf("%w: %v", lodging.ErrConflict, err))
	}
	return err
}

func (store *Store) LockResource(ctx context.Context, resourceID lodging.ResourceID) (lodging.Resource, error) {
	var row Resource
	err := store.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("resource_id = ?", resourceID.String()).
		Take(&row).Error
	if err != nil {
		return lodging.Resource{}, resourceLookupError(errorCodeLock, err)
	}
	return mapResource(row)
}

func (store *Store) GetResource(ctx context.Context, resourceID lodging.ResourceID) (lodging.Resource, error) {
	var row Resource
	err := store.db.WithContext(ctx).Where("resource_id = ?", resourceID.String()).Take(&row).Error
	if err != nil {
		return lodging.Resource{}, resourceLookupError(errorCodeGet, err)
	}
	return mapResource(row)
}

func (store *Store) ListResources(ctx context.Context) ([]lodging.Resource, error) {
	var rows []Resource
	if err := store.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectResource, errorCodeList, err)
	}
	resources := make([]lodging.Resource, 0, len(rows))
	for _, row := range rows {
		resource, err := mapResource(row)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	return resources, nil
}

func (store *Store) CreateResource(ctx context.Context, resource lodging.Resource) error {
	row := resourceRow(resource)
	now := store.now()
	row.CreatedAt = now
	row.UpdatedAt = now
	err := store.db.WithContext(ctx).Create(&row).Error
	if isDuplicateCode(err) {
		return wrapStoreError(errorSubjectResource, errorCodeDuplicate, lodging.ErrDuplicateResourceCode)
	}
	if err != nil {
		return wrapStoreError(errorSubjectResource, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateResource(ctx context.Context, resource lodging.Resource) error {
	result := store.db.WithContext(ctx).
		Model(&Resource{}).
		Where("resource_id = ?", resource.ID.String()).
		Updates(map[string]interface{}{
			"code":       resource.Code,
			"capacity":   resource.Capacity,
			"status":     resource.Status.String(),
			"accessible": resource.Accessible,
			"notes":      resource.Notes,
			"updated_at": store.now(),
		})
	if isDuplicateCode(result.Error) {
		return wrapStoreError(errorSubjectResource, errorCodeDuplicate, lodging.ErrDuplicateResourceCode)
	}
	if result.Error != nil {
		return wrapStoreError(errorSubjectResource, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectResource, errorCodeUpdate, lodging.ErrUnknownResource)
	}
	return nil
}

func (store *Store) GetReservation(ctx context.Context, cycleID lodging.CycleID, reservationID lodging.ReservationID) (lodging.Reservation, error) {
	var row Reservation
	err := store.db.WithContext(ctx).
		Where("cycle_id = ? AND reservation_id = ?", cycleID.String(), reservationID.String()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lodging.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, lodging.ErrUnknownReservation)
		}
		return lodging.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, err)
	}
	return mapReservation(row)
}

func (store *Store) ListReservations(ctx context.Context, query lodging.ReservationQuery) ([]lodging.Reservation, error) {
	statement := store.db.WithContext(ctx).Where("cycle_id = ?", query.CycleID.String())
	if len(query.ResourceIDs) > 0 {
		statement = statement.Where("resource_id IN ?", resourceIDStrings(query.ResourceIDs))
	}
	if len(query.Statuses) > 0 {
		statuses := make([]string, 0, len(query.Statuses))
		for _, status := range query.Statuses {
			statuses = append(statuses, status.String())
		}
		statement = statement.Where("status IN ?", statuses)
	}
	if query.Overlapping != nil {
		statement = statement.Where("entry_date < ? AND exit_date > ?", query.Overlapping.End().Time(), query.Overlapping.Start().Time())
	}
	var rows []Reservation
	if err := statement.Order("created_at DESC").Order("reservation_id DESC").Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectReservation, errorCodeList, err)
	}
	reservations := make([]lodging.Reservation, 0, len(rows))
	for _, row := range rows {
		reservation, err := mapReservation(row)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, nil
}

func (store *Store) CreateReservation(ctx context.Context, reservation lodging.Reservation) error {
	row := reservationRow(reservation)
	err := store.db.WithContext(ctx).Create(&row).Error
	if isRace(err) {
		return wrapStoreError(errorSubjectReservation, errorCodeRace, lodging.ErrConflict)
	}
	if err != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateReservation(ctx context.Context, reservation lodging.Reservation) error {
	row := reservationRow(reservation)
	result := store.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("cycle_id = ? AND reservation_id = ?", row.CycleID, row.ReservationID).
		Select("*").
		Omit("reservation_id", "cycle_id", "created_by", "created_at").
		Updates(&row)
	if isRace(result.Error) {
		return wrapStoreError(errorSubjectReservation, errorCodeRace, lodging.ErrConflict)
	}
	if result.Error != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeUpdate, lodging.ErrUnknownReservation)
	}
	return nil
}

func (store *Store) DeleteReservation(ctx context.Context, cycleID lodging.CycleID, reservationID lodging.ReservationID) error {
	result := store.db.WithContext(ctx).
		Where("cycle_id = ? AND reservation_id = ?", cycleID.String(), reservationID.String()).
		Delete(&Reservation{})
	if result.Error != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, lodging.ErrUnknownReservation)
	}
	return nil
}

func (store *Store) GetBlackout(ctx context.Context, cycleID lodging.CycleID, blackoutID lodging.BlackoutID) (lodging.Blackout, error) {
	var row Blackout
	err := store.db.WithContext(ctx).
		Where("cycle_id = ? AND blackout_id = ?", cycleID.String(), blackoutID.String()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lodging.Blackout{}, wrapStoreError(errorSubjectBlackout, errorCodeGet, lodging.ErrUnknownBlackout)
		}
		return lodging.Blackout{}, wrapStoreError(errorSubjectBlackout, errorCodeGet, err)
	}
	return mapBlackout(row)
}

func (store *Store) ListBlackouts(ctx context.Context, query lodging.BlackoutQuery) ([]lodging.Blackout, error) {
	statement := store.db.WithContext(ctx).Where("cycle_id = ?", query.CycleID.String())
	if len(query.ResourceIDs) > 0 {
		statement = statement.Where("resource_id IN ?", resourceIDStrings(query.ResourceIDs))
	}
	if query.ActiveOnly {
		statement = statement.Where("active = ?", true)
	}
	if query.Overlapping != nil {
		statement = statement.Where("start_date < ? AND end_date > ?", query.Overlapping.End().Time(), query.Overlapping.Start().Time())
	}
	var rows []Blackout
	if err := statement.Order("start_date DESC").Order("blackout_id ASC").Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectBlackout, errorCodeList, err)
	}
	blackouts := make([]lodging.Blackout, 0, len(rows))
	for _, row := range rows {
		blackout, err := mapBlackout(row)
		if err != nil {
			return nil, err
		}
		blackouts = append(blackouts, blackout)
	}
	return blackouts, nil
}

func (store *Store) CreateBlackout(ctx context.Context, blackout lodging.Blackout) error {
	row := blackoutRow(blackout)
	err := store.db.WithContext(ctx).Create(&row).Error
	if isRace(err) {
		return wrapStoreError(errorSubjectBlackout, errorCodeRace, lodging.ErrConflict)
	}
	if err != nil {
		return wrapStoreError(errorSubjectBlackout, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateBlackout(ctx context.Context, blackout lodging.Blackout) error {
	row := blackoutRow(blackout)
	result := store.db.WithContext(ctx).
		Model(&Blackout{}).
		Where("cycle_id = ? AND blackout_id = ?", row.CycleID, row.BlackoutID).
		Select("*").
		Omit("blackout_id", "cycle_id", "created_by", "created_at").
		Updates(&row)
	if isRace(result.Error) {
		return wrapStoreError(errorSubjectBlackout, errorCodeRace, lodging.ErrConflict)
	}
	if result.Error != nil {
		return wrapStoreError(errorSubjectBlackout, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
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
	row := LedgerEntry{
		CycleID:       receipt.CycleID.String(),
		Category:      receipt.Category,
		AccountRef:    receipt.AccountRef,
		EntryDate:     receipt.Date.Time(),
		Description:   receipt.Description,
		AmountCents:   receipt.AmountCents,
		PaymentMethod: receipt.PaymentMethod.String(),
		Metadata:      datatypes.JSON(metadata),
		CreatedBy:     receipt.CreatedBy.String(),
		CreatedAt:     store.now(),
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return lodging.LedgerEntryID{}, wrapStoreError(errorSubjectReceipt, errorCodeCreate, err)
	}
	entryID, err := lodging.NewLedgerEntryID(row.EntryID)
	if err != nil {
		return lodging.LedgerEntryID{}, wrapStoreError(errorSubjectReceipt, errorCodeInvalid, err)
	}
	return entryID, nil
}

// Receipt loads a ledger entry written by CreateReceipt.
func (store *Store) Receipt(ctx context.Context, entryID lodging.LedgerEntryID) (LedgerEntry, error) {
	var row LedgerEntry
	if err := store.db.WithContext(ctx).Where("entry_id = ?", entryID.String()).Take(&row).Error; err != nil {
		return LedgerEntry{}, wrapStoreError(errorSubjectReceipt, errorCodeGet, err)
	}
	return row, nil
}

type receiptMetadata struct {
	Source        string `json:"source"`
	ReservationID string `json:"reservation_id"`
}

func wrapStoreError(subject string, code string, err error) error {
	return lodging.WrapError(errorOperationStore, subject, code, err)
}

func resourceLookupError(code string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wrapStoreError(errorSubjectResource, code, lodging.ErrUnknownResource)
	}
	return wrapStoreError(errorSubjectResource, code, err)
}

func resourceIDStrings(resourceIDs []lodging.ResourceID) []string {
	values := make([]string, 0, len(resourceIDs))
	for _, resourceID := range resourceIDs {
		values = append(values, resourceID.String())
	}
	return values
}

func isRace(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolationCode, pgSerializationFailureCode, pgDeadlockDetectedCode, pgLockNotAvailableCode:
			return true
		}
		return false
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xFF {
		case sqliteBusyCode, sqliteLockedCode:
			return true
		}
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDeadlockCode || mysqlErr.Number == mysqlLockWaitTimeoutCode
	}
	return false
}

func isDuplicateCode(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode && pgErr.ConstraintName == constraintResourceCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntryCode
	}
	return false
}

var _ lodging.Store = (*Store)(nil)
