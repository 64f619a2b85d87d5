package gormstore

import (
	"time"

	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
)

func resourceRow(resource lodging.Resource) Resource {
	return Resource{
		ResourceID: resource.ID.String(),
		Code:       resource.Code,
		Capacity:   resource.Capacity,
		Status:     resource.Status.String(),
		Accessible: resource.Accessible,
		Notes:      resource.Notes,
	}
}

func mapResource(row Resource) (lodging.Resource, error) {
	resourceID, err := lodging.NewResourceID(row.ResourceID)
	if err != nil {
		return lodging.Resource{}, wrapStoreError(errorSubjectResource, errorCodeInvalid, err)
	}
	status, err := lodging.ParseResourceStatus(row.Status)
	if err != nil {
		return lodging.Resource{}, wrapStoreError(errorSubjectResource, errorCodeInvalid, err)
	}
	return lodging.Resource{
		ID:         resourceID,
		Code:       row.Code,
		Capacity:   row.Capacity,
		Status:     status,
		Accessible: row.Accessible,
		Notes:      row.Notes,
	}, nil
}

func reservationRow(reservation lodging.Reservation) Reservation {
	row := Reservation{
		ReservationID:      reservation.ID.String(),
		CycleID:            reservation.CycleID.String(),
		ResourceID:         reservation.ResourceID.String(),
		ResponsibleName:    reservation.ResponsibleName,
		Adults:             reservation.Adults,
		Children:           reservation.Children,
		ChildAges:          reservation.ChildAges,
		SpecialNeeds:       reservation.SpecialNeeds,
		SpecialNeedsDetail: reservation.SpecialNeedsDetail,
		EntryDate:          reservation.Range.Start().Time(),
		ExitDate:           reservation.Range.End().Time(),
		Status:             reservation.Status.String(),
		AmountCents:        reservation.AmountCents,
		Paid:               reservation.Paid,
		PaymentMethod:      reservation.PaymentMethod.String(),
		AccountRef:         reservation.AccountRef,
		Notes:              reservation.Notes,
		CreatedBy:          reservation.Audit.CreatedBy.String(),
		CreatedAt:          reservation.Audit.CreatedAt,
		UpdatedBy:          reservation.Audit.UpdatedBy.String(),
		UpdatedAt:          reservation.Audit.UpdatedAt,
	}
	if !reservation.LedgerEntryID.IsZero() {
		value := reservation.LedgerEntryID.String()
		row.LedgerEntryID = &value
	}
	return row
}

func mapReservation(row Reservation) (lodging.Reservation, error) {
	invalid := func(err error) (lodging.Reservation, error) {
		return lodging.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
	}
	reservationID, err := lodging.NewReservationID(row.ReservationID)
	if err != nil {
		return invalid(err)
	}
	cycleID, err := lodging.NewCycleID(row.CycleID)
	if err != nil {
		return invalid(err)
	}
	resourceID, err := lodging.NewResourceID(row.ResourceID)
	if err != nil {
		return invalid(err)
	}
	dateRange, err := lodging.NewDateRange(lodging.DateOf(row.EntryDate), lodging.DateOf(row.ExitDate))
	if err != nil {
		return invalid(err)
	}
	status, err := lodging.ParseReservationStatus(row.Status)
	if err != nil {
		return invalid(err)
	}
	method, err := lodging.ParsePaymentMethod(row.PaymentMethod)
	if err != nil {
		return invalid(err)
	}
	var ledgerEntryID lodging.LedgerEntryID
	if row.LedgerEntryID != nil {
		ledgerEntryID, err = lodging.NewLedgerEntryID(*row.LedgerEntryID)
		if err != nil {
			return invalid(err)
		}
	}
	return lodging.Reservation{
		ID:                 reservationID,
		CycleID:            cycleID,
		ResourceID:         resourceID,
		ResponsibleName:    row.ResponsibleName,
		Adults:             row.Adults,
		Children:           row.Children,
		ChildAges:          row.ChildAges,
		SpecialNeeds:       row.SpecialNeeds,
		SpecialNeedsDetail: row.SpecialNeedsDetail,
		Range:              dateRange,
		Status:             status,
		AmountCents:        row.AmountCents,
		Paid:               row.Paid,
		PaymentMethod:      method,
		AccountRef:         row.AccountRef,
		LedgerEntryID:      ledgerEntryID,
		Notes:              row.Notes,
		Audit:              mapAudit(row.CreatedBy, row.CreatedAt, row.UpdatedBy, row.UpdatedAt),
	}, nil
}

func blackoutRow(blackout lodging.Blackout) Blackout {
	return Blackout{
		BlackoutID:  blackout.ID.String(),
		CycleID:     blackout.CycleID.String(),
		ResourceID:  blackout.ResourceID.String(),
		Kind:        blackout.Kind.String(),
		Title:       blackout.Title,
		StartDate:   blackout.Range.Start().Time(),
		EndDate:     blackout.Range.End().Time(),
		Description: blackout.Description,
		Active:      blackout.Active,
		CreatedBy:   blackout.Audit.CreatedBy.String(),
		CreatedAt:   blackout.Audit.CreatedAt,
		UpdatedBy:   blackout.Audit.UpdatedBy.String(),
		UpdatedAt:   blackout.Audit.UpdatedAt,
	}
}

func mapBlackout(row Blackout) (lodging.Blackout, error) {
	invalid := func(err error) (lodging.Blackout, error) {
		return lodging.Blackout{}, wrapStoreError(errorSubjectBlackout, errorCodeInvalid, err)
	}
	blackoutID, err := lodging.NewBlackoutID(row.BlackoutID)
	if err != nil {
		return invalid(err)
	}
	cycleID, err := lodging.NewCycleID(row.CycleID)
	if err != nil {
		return invalid(err)
	}
	resourceID, err := lodging.NewResourceID(row.ResourceID)
	if err != nil {
		return invalid(err)
	}
	kind, err := lodging.ParseBlackoutKind(row.Kind)
	if err != nil {
		return invalid(err)
	}
	dateRange, err := lodging.NewDateRange(lodging.DateOf(row.StartDate), lodging.DateOf(row.EndDate))
	if err != nil {
		return invalid(err)
	}
	return lodging.Blackout{
		ID:          blackoutID,
		CycleID:     cycleID,
		ResourceID:  resourceID,
		Kind:        kind,
		Title:       row.Title,
		Range:       dateRange,
		Description: row.Description,
		Active:      row.Active,
		Audit:       mapAudit(row.CreatedBy, row.CreatedAt, row.UpdatedBy, row.UpdatedAt),
	}, nil
}

func mapAudit(createdBy string, createdAt time.Time, updatedBy string, updatedAt time.Time) lodging.Audit {
	audit := lodging.Audit{CreatedAt: createdAt, UpdatedAt: updatedAt}
	if userID, err := lodging.NewUserID(createdBy); err == nil {
		audit.CreatedBy = userID
	}
	if userID, err := lodging.NewUserID(updatedBy); err == nil {
		audit.UpdatedBy = userID
	}
	return audit
}
