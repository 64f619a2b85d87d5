package lodging

import (
	"fmt"
	"strings"
)

// ReservationInput carries the user-editable reservation fields.
type ReservationInput struct {
	ResourceID         ResourceID
	ResponsibleName    string
	Adults             int
	Children           int
	ChildAges          string
	SpecialNeeds       bool
	SpecialNeedsDetail string
	Entry              Date
	Exit               Date
	Status             ReservationStatus
	AmountCents        int64
	Paid               bool
	PaymentMethod      PaymentMethod
	AccountRef         string
	Notes              string
}

// BlackoutInput carries the user-editable blackout fields.
type BlackoutInput struct {
	ResourceID  ResourceID
	Kind        BlackoutKind
	Title       string
	Start       Date
	End         Date
	Description string
	Active      bool
}

// ResourceInput carries the user-editable resource fields.
type ResourceInput struct {
	Code       string
	Capacity   int
	Status     ResourceStatus
	Accessible bool
	Notes      string
}

// ValidateReservation checks every single-record rule of a reservation against its resource.
// It never consults other reservations or blackouts; those are availability concerns.
func ValidateReservation(input ReservationInput, resource Resource) []FieldError {
	var fields []FieldError
	if input.ResourceID.IsZero() {
		fields = append(fields, requiredField(FieldResourceID, "select a resource"))
	}
	fields = append(fields, validateRangeFields(input.Entry, input.Exit, FieldEntry, FieldExit)...)
	if strings.TrimSpace(input.ResponsibleName) == "" {
		fields = append(fields, requiredField(FieldResponsibleName, "responsible party name is required"))
	}
	if input.Adults < 0 {
		fields = append(fields, FieldError{Field: FieldAdults, Code: fieldCodeInvalid, Message: "adult count cannot be negative"})
	}
	if input.Children < 0 {
		fields = append(fields, FieldError{Field: FieldChildren, Code: fieldCodeInvalid, Message: "child count cannot be negative"})
	}
	if input.Adults == 0 && input.Children == 0 {
		fields = append(fields, requiredField(FieldAdults, "at least one guest is required"))
	}
	if !resource.ID.IsZero() && exceedsCapacity(input.Adults, input.Children, resource.Capacity) {
		fields = append(fields, FieldError{
			Field:   FieldAdults,
			Code:    fieldCodeCapacityExceeded,
			Message: fmt.Sprintf("%d adults and %d children exceed the capacity of %d", input.Adults, input.Children, resource.Capacity),
		})
	}
	fields = append(fields, validateChildAges(input.Children, input.ChildAges)...)
	if input.SpecialNeeds && strings.TrimSpace(input.SpecialNeedsDetail) == "" {
		fields = append(fields, requiredField(FieldSpecialNeedsDetail, "describe the special needs"))
	}
	if _, err := ParseReservationStatus(input.Status.String()); err != nil {
		fields = append(fields, FieldError{Field: FieldStatus, Code: fieldCodeInvalid, Message: "unknown reservation status"})
	}
	if input.AmountCents < 0 {
		fields = append(fields, FieldError{Field: FieldAmountCents, Code: fieldCodeInvalid, Message: "amount cannot be negative"})
	}
	if _, err := ParsePaymentMethod(input.PaymentMethod.String()); err != nil {
		fields = append(fields, FieldError{Field: FieldPaymentMethod, Code: fieldCodeInvalid, Message: "unknown payment method"})
	}
	if input.Paid {
		if input.PaymentMethod == PaymentMethodNone {
			fields = append(fields, requiredField(FieldPaymentMethod, "payment method is required for paid reservations"))
		}
		if strings.TrimSpace(input.AccountRef) == "" {
			fields = append(fields, requiredField(FieldAccountRef, "account is required for paid reservations"))
		}
	}
	return fields
}

// ValidateTransition checks the reservation lifecycle.
func ValidateTransition(from ReservationStatus, to ReservationStatus) []FieldError {
	if from.CanTransitionTo(to) {
		return nil
	}
	return []FieldError{{
		Field:   FieldStatus,
		Code:    fieldCodeInvalidTransition,
		Message: fmt.Sprintf("cannot move a %s reservation to %s", from, to),
	}}
}

// ValidateBlackout checks the single-record rules of a blackout.
func ValidateBlackout(input BlackoutInput) []FieldError {
	var fields []FieldError
	if input.ResourceID.IsZero() {
		fields = append(fields, requiredField(FieldResourceID, "select a resource"))
	}
	if _, err := ParseBlackoutKind(input.Kind.String()); err != nil {
		fields = append(fields, FieldError{Field: FieldKind, Code: fieldCodeInvalid, Message: "unknown blackout kind"})
	}
	if strings.TrimSpace(input.Title) == "" {
		fields = append(fields, requiredField(FieldTitle, "title is required"))
	}
	fields = append(fields, validateRangeFields(input.Start, input.End, FieldStart, FieldEnd)...)
	return fields
}

// ValidateResource checks the registry rules of a resource.
func ValidateResource(input ResourceInput) []FieldError {
	var fields []FieldError
	if strings.TrimSpace(input.Code) == "" {
		fields = append(fields, requiredField(FieldCode, "code is required"))
	}
	if input.Capacity < 1 {
		fields = append(fields, FieldError{Field: FieldCapacity, Code: fieldCodeInvalid, Message: "capacity must be a positive number"})
	}
	if _, err := ParseResourceStatus(input.Status.String()); err != nil {
		fields = append(fields, FieldError{Field: FieldStatus, Code: fieldCodeInvalid, Message: "unknown resource status"})
	}
	return fields
}

func validateRangeFields(start Date, end Date, startField string, endField string) []FieldError {
	var fields []FieldError
	if start.IsZero() {
		fields = append(fields, requiredField(startField, "start date is required"))
	}
	if end.IsZero() {
		fields = append(fields, requiredField(endField, "end date is required"))
	}
	if len(fields) > 0 {
		return fields
	}
	if !end.After(start) {
		fields = append(fields, FieldError{Field: endField, Code: fieldCodeInvalid, Message: "end date must be after start date"})
	}
	return fields
}

func validateChildAges(children int, rawAges string) []FieldError {
	ages := strings.TrimSpace(rawAges)
	if children > 0 && ages == "" {
		return []FieldError{requiredField(FieldChildAges, "inform the age of each child")}
	}
	if children <= 0 && ages != "" {
		return []FieldError{{Field: FieldChildAges, Code: fieldCodeUnexpected, Message: "child ages given without children"}}
	}
	if ages == "" {
		return nil
	}
	entries := splitChildAges(ages)
	for _, entry := range entries {
		if !isDigits(entry) {
			return []FieldError{{Field: FieldChildAges, Code: fieldCodeInvalid, Message: "use numbers separated by commas, e.g. 5, 8"}}
		}
	}
	if len(entries) != children {
		return []FieldError{{
			Field:   FieldChildAges,
			Code:    fieldCodeCountMismatch,
			Message: fmt.Sprintf("%d ages given for %d children", len(entries), children),
		}}
	}
	return nil
}

func splitChildAges(raw string) []string {
	parts := strings.Split(raw, ",")
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}

func isDigits(raw string) bool {
	for _, character := range raw {
		if character < '0' || character > '9' {
			return false
		}
	}
	return raw != ""
}

func requiredField(field string, message string) FieldError {
	return FieldError{Field: field, Code: fieldCodeRequired, Message: message}
}

// exceedsCapacity reports whether adults + children > capacity without computing the sum.
func exceedsCapacity(adults int, children int, capacity int) bool {
	if adults < 0 || children < 0 {
		return false
	}
	return adults > capacity || children > capacity-adults
}
