package httpapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
)

type resourceRequest struct {
	Code       string `json:"code"`
	Capacity   int    `json:"capacity"`
	Status     string `json:"status"`
	Accessible bool   `json:"accessible"`
	Notes      string `json:"notes"`
}

func (request resourceRequest) toInput() (lodging.ResourceInput, error) {
	input := lodging.ResourceInput{
		Code:       request.Code,
		Capacity:   request.Capacity,
		Accessible: request.Accessible,
		Notes:      request.Notes,
	}
	if strings.TrimSpace(request.Status) != "" {
		status, err := lodging.ParseResourceStatus(request.Status)
		if err != nil {
			return lodging.ResourceInput{}, err
		}
		input.Status = status
	}
	return input, nil
}

type reservationRequest struct {
	ResourceID         string `json:"resource_id"`
	ResponsibleName    string `json:"responsible_name"`
	Adults             int    `json:"adults"`
	Children           int    `json:"children"`
	ChildAges          string `json:"child_ages"`
	SpecialNeeds       bool   `json:"special_needs"`
	SpecialNeedsDetail string `json:"special_needs_detail"`
	Entry              string `json:"entry"`
	Exit               string `json:"exit"`
	Status             string `json:"status"`
	AmountCents        int64  `json:"amount_cents"`
	Paid               bool   `json:"paid"`
	PaymentMethod      string `json:"payment_method"`
	AccountRef         string `json:"account_ref"`
	Notes              string `json:"notes"`
}

func (request reservationRequest) toInput() (lodging.ReservationInput, error) {
	input := lodging.ReservationInput{
		ResponsibleName:    request.ResponsibleName,
		Adults:             request.Adults,
		Children:           request.Children,
		ChildAges:          request.ChildAges,
		SpecialNeeds:       request.SpecialNeeds,
		SpecialNeedsDetail: request.SpecialNeedsDetail,
		AmountCents:        request.AmountCents,
		Paid:               request.Paid,
		AccountRef:         request.AccountRef,
		Notes:              request.Notes,
	}
	var err error
	if input.ResourceID, err = optionalResourceID(request.ResourceID); err != nil {
		return lodging.ReservationInput{}, err
	}
	if input.Entry, err = optionalDate(request.Entry); err != nil {
		return lodging.ReservationInput{}, err
	}
	if input.Exit, err = optionalDate(request.Exit); err != nil {
		return lodging.ReservationInput{}, err
	}
	if strings.TrimSpace(request.Status) != "" {
		if input.Status, err = lodging.ParseReservationStatus(request.Status); err != nil {
			return lodging.ReservationInput{}, err
		}
	}
	if input.PaymentMethod, err = lodging.ParsePaymentMethod(request.PaymentMethod); err != nil {
		return lodging.ReservationInput{}, err
	}
	return input, nil
}

type blackoutRequest struct {
	ResourceID  string `json:"resource_id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (request blackoutRequest) toInput() (lodging.BlackoutInput, error) {
	input := lodging.BlackoutInput{
		Title:       request.Title,
		Description: request.Description,
		Active:      true,
	}
	if request.Active != nil {
		input.Active = *request.Active
	}
	var err error
	if input.ResourceID, err = optionalResourceID(request.ResourceID); err != nil {
		return lodging.BlackoutInput{}, err
	}
	if input.Start, err = optionalDate(request.Start); err != nil {
		return lodging.BlackoutInput{}, err
	}
	if input.End, err = optionalDate(request.End); err != nil {
		return lodging.BlackoutInput{}, err
	}
	if strings.TrimSpace(request.Kind) != "" {
		if input.Kind, err = lodging.ParseBlackoutKind(request.Kind); err != nil {
			return lodging.BlackoutInput{}, err
		}
	}
	return input, nil
}

// optionalDate leaves empty input as the zero Date so domain validation reports it as required.
func optionalDate(raw string) (lodging.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return lodging.Date{}, nil
	}
	return lodging.ParseDate(raw)
}

func optionalResourceID(raw string) (lodging.ResourceID, error) {
	if strings.TrimSpace(raw) == "" {
		return lodging.ResourceID{}, nil
	}
	return lodging.NewResourceID(raw)
}

func optionalBool(raw string) (*bool, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a boolean", lodging.ErrValidation, raw)
	}
	return &value, nil
}

type fieldPayload struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newFieldPayloads(fields []lodging.FieldError) []fieldPayload {
	payloads := make([]fieldPayload, 0, len(fields))
	for _, field := range fields {
		payloads = append(payloads, fieldPayload{Field: field.Field, Code: field.Code, Message: field.Message})
	}
	return payloads
}

type resourcePayload struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Capacity   int    `json:"capacity"`
	Status     string `json:"status"`
	Accessible bool   `json:"accessible"`
	Notes      string `json:"notes"`
}

func newResourcePayload(resource lodging.Resource) resourcePayload {
	return resourcePayload{
		ID:         resource.ID.String(),
		Code:       resource.Code,
		Capacity:   resource.Capacity,
		Status:     resource.Status.String(),
		Accessible: resource.Accessible,
		Notes:      resource.Notes,
	}
}

func newResourcePayloads(resources []lodging.Resource) []resourcePayload {
	payloads := make([]resourcePayload, 0, len(resources))
	for _, resource := range resources {
		payloads = append(payloads, newResourcePayload(resource))
	}
	return payloads
}

type auditPayload struct {
	CreatedBy      string `json:"created_by"`
	CreatedUnixUTC int64  `json:"created_unix_utc"`
	UpdatedBy      string `json:"updated_by,omitempty"`
	UpdatedUnixUTC int64  `json:"updated_unix_utc,omitempty"`
}

func newAuditPayload(audit lodging.Audit) auditPayload {
	payload := auditPayload{
		CreatedBy:      audit.CreatedBy.String(),
		CreatedUnixUTC: audit.CreatedAt.Unix(),
		UpdatedBy:      audit.UpdatedBy.String(),
	}
	if !audit.UpdatedAt.IsZero() {
		payload.UpdatedUnixUTC = audit.UpdatedAt.Unix()
	}
	return payload
}

type reservationPayload struct {
	ID                 string       `json:"id"`
	CycleID            string       `json:"cycle_id"`
	ResourceID         string       `json:"resource_id"`
	ResponsibleName    string       `json:"responsible_name"`
	Adults             int          `json:"adults"`
	Children           int          `json:"children"`
	ChildAges          string       `json:"child_ages"`
	SpecialNeeds       bool         `json:"special_needs"`
	SpecialNeedsDetail string       `json:"special_needs_detail"`
	Entry              string       `json:"entry"`
	Exit               string       `json:"exit"`
	Nights             int          `json:"nights"`
	Status             string       `json:"status"`
	AmountCents        int64        `json:"amount_cents"`
	Paid               bool         `json:"paid"`
	PaymentMethod      string       `json:"payment_method"`
	AccountRef         string       `json:"account_ref"`
	LedgerEntryID      string       `json:"ledger_entry_id,omitempty"`
	Notes              string       `json:"notes"`
	Audit              auditPayload `json:"audit"`
}

func newReservationPayload(reservation lodging.Reservation) reservationPayload {
	return reservationPayload{
		ID:                 reservation.ID.String(),
		CycleID:            reservation.CycleID.String(),
		ResourceID:         reservation.ResourceID.String(),
		ResponsibleName:    reservation.ResponsibleName,
		Adults:             reservation.Adults,
		Children:           reservation.Children,
		ChildAges:          reservation.ChildAges,
		SpecialNeeds:       reservation.SpecialNeeds,
		SpecialNeedsDetail: reservation.SpecialNeedsDetail,
		Entry:              reservation.Range.Start().String(),
		Exit:               reservation.Range.End().String(),
		Nights:             reservation.Range.Nights(),
		Status:             reservation.Status.String(),
		AmountCents:        reservation.AmountCents,
		Paid:               reservation.Paid,
		PaymentMethod:      reservation.PaymentMethod.String(),
		AccountRef:         reservation.AccountRef,
		LedgerEntryID:      reservation.LedgerEntryID.String(),
		Notes:              reservation.Notes,
		Audit:              newAuditPayload(reservation.Audit),
	}
}

type reservationPagePayload struct {
	Items    []reservationPayload `json:"items"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Total    int                  `json:"total"`
	Pages    int                  `json:"pages"`
}

func newReservationPagePayload(page lodging.ReservationPage) reservationPagePayload {
	items := make([]reservationPayload, 0, len(page.Items))
	for _, reservation := range page.Items {
		items = append(items, newReservationPayload(reservation))
	}
	return reservationPagePayload{
		Items:    items,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
		Pages:    page.Pages,
	}
}

type blackoutPayload struct {
	ID          string       `json:"id"`
	CycleID     string       `json:"cycle_id"`
	ResourceID  string       `json:"resource_id"`
	Kind        string       `json:"kind"`
	Title       string       `json:"title"`
	Start       string       `json:"start"`
	End         string       `json:"end"`
	Description string       `json:"description"`
	Active      bool         `json:"active"`
	Audit       auditPayload `json:"audit"`
}

func newBlackoutPayload(blackout lodging.Blackout) blackoutPayload {
	return blackoutPayload{
		ID:          blackout.ID.String(),
		CycleID:     blackout.CycleID.String(),
		ResourceID:  blackout.ResourceID.String(),
		Kind:        blackout.Kind.String(),
		Title:       blackout.Title,
		Start:       blackout.Range.Start().String(),
		End:         blackout.Range.End().String(),
		Description: blackout.Description,
		Active:      blackout.Active,
		Audit:       newAuditPayload(blackout.Audit),
	}
}

type conflictPayload struct {
	Kind          string `json:"kind"`
	Available     bool   `json:"available"`
	Message       string `json:"message,omitempty"`
	ReservationID string `json:"reservation_id,omitempty"`
	BlackoutID    string `json:"blackout_id,omitempty"`
}

func newConflictPayload(conflict lodging.Conflict) conflictPayload {
	kind := conflict.Kind
	if kind == "" {
		kind = lodging.ConflictNone
	}
	return conflictPayload{
		Kind:          string(kind),
		Available:     conflict.IsNone(),
		Message:       conflict.Message(),
		ReservationID: conflict.ReservationID.String(),
		BlackoutID:    conflict.BlackoutID.String(),
	}
}

type cellPayload struct {
	Day           string `json:"day"`
	Status        string `json:"status"`
	Label         string `json:"label,omitempty"`
	ReservationID string `json:"reservation_id,omitempty"`
	BlackoutID    string `json:"blackout_id,omitempty"`
}

func newCellPayload(cell lodging.Cell) cellPayload {
	return cellPayload{
		Day:           cell.Day.String(),
		Status:        string(cell.Status),
		Label:         cell.Label,
		ReservationID: cell.ReservationID.String(),
		BlackoutID:    cell.BlackoutID.String(),
	}
}

type timelineRowPayload struct {
	ResourceID string        `json:"resource_id"`
	Code       string        `json:"code"`
	Accessible bool          `json:"accessible"`
	Cells      []cellPayload `json:"cells"`
}

type timelinePayload struct {
	CycleID   string               `json:"cycle_id"`
	WeekStart string               `json:"week_start"`
	Previous  string               `json:"previous"`
	Next      string               `json:"next"`
	Days      []string             `json:"days"`
	Rows      []timelineRowPayload `json:"rows"`
}

func newTimelinePayload(timeline lodging.Timeline) timelinePayload {
	payload := timelinePayload{
		CycleID:   timeline.CycleID.String(),
		WeekStart: timeline.WeekStart.String(),
		Previous:  timeline.Previous().String(),
		Next:      timeline.Next().String(),
		Days:      make([]string, 0, len(timeline.Days)),
		Rows:      make([]timelineRowPayload, 0, len(timeline.Rows)),
	}
	for _, day := range timeline.Days {
		payload.Days = append(payload.Days, day.String())
	}
	for _, row := range timeline.Rows {
		rowPayload := timelineRowPayload{
			ResourceID: row.ResourceID.String(),
			Code:       row.Code,
			Accessible: row.Accessible,
			Cells:      make([]cellPayload, 0, len(row.Cells)),
		}
		for _, cell := range row.Cells {
			rowPayload.Cells = append(rowPayload.Cells, newCellPayload(cell))
		}
		payload.Rows = append(payload.Rows, rowPayload)
	}
	return payload
}

type stateEntryPayload struct {
	Resource    resourcePayload     `json:"resource"`
	Cell        cellPayload         `json:"cell"`
	Reservation *reservationPayload `json:"reservation,omitempty"`
}

type stateBoardPayload struct {
	AsOf    string              `json:"as_of"`
	Entries []stateEntryPayload `json:"entries"`
	Totals  map[string]int      `json:"totals"`
}

func newStateBoardPayload(board lodging.StateBoard) stateBoardPayload {
	payload := stateBoardPayload{
		AsOf:    board.AsOf.String(),
		Entries: make([]stateEntryPayload, 0, len(board.Entries)),
		Totals:  make(map[string]int, len(board.Totals)),
	}
	for _, entry := range board.Entries {
		entryPayload := stateEntryPayload{
			Resource: newResourcePayload(entry.Resource),
			Cell:     newCellPayload(entry.Cell),
		}
		if entry.Reservation != nil {
			reservation := newReservationPayload(*entry.Reservation)
			entryPayload.Reservation = &reservation
		}
		payload.Entries = append(payload.Entries, entryPayload)
	}
	for state, total := range board.Totals {
		payload.Totals[string(state)] = total
	}
	return payload
}
