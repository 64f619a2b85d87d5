package lodging

const (
	operationCreateResource       = "create_resource"
	operationUpdateResource       = "update_resource"
	operationCreateReservation    = "create_reservation"
	operationUpdateReservation    = "update_reservation"
	operationDeleteReservation    = "delete_reservation"
	operationCreateBlackout       = "create_blackout"
	operationUpdateBlackout       = "update_blackout"
	operationForceResourceActive  = "force_resource_active"
	operationCancelCurrentBooking = "cancel_current_reservation"
	operationTimelineCache        = "timeline_cache"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	FieldResourceID         = "resource_id"
	FieldEntry              = "entry"
	FieldExit               = "exit"
	FieldResponsibleName    = "responsible_name"
	FieldAdults             = "adults"
	FieldChildren           = "children"
	FieldChildAges          = "child_ages"
	FieldSpecialNeedsDetail = "special_needs_detail"
	FieldStatus             = "status"
	FieldAmountCents        = "amount_cents"
	FieldPaymentMethod      = "payment_method"
	FieldAccountRef         = "account_ref"
	FieldCode               = "code"
	FieldCapacity           = "capacity"
	FieldKind               = "kind"
	FieldTitle              = "title"
	FieldStart              = "start"
	FieldEnd                = "end"

	fieldCodeRequired          = "required"
	fieldCodeInvalid           = "invalid"
	fieldCodeCapacityExceeded  = "capacity_exceeded"
	fieldCodeCountMismatch     = "count_mismatch"
	fieldCodeUnexpected        = "unexpected"
	fieldCodeUnavailable       = "unavailable"
	fieldCodeInvalidTransition = "invalid_transition"
	fieldCodeDuplicate         = "duplicate"

	receiptCategoryLodging   = "lodging"
	receiptDescriptionPrefix = "Lodging"

	timelineDays          = 7
	timelineFreeLabel     = "Free"
	timelineInactiveLabel = "Inactive"

	reservationPageSize = 15
)
