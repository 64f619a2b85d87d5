package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
	"github.com/gin-gonic/gin"
)

func (handler *httpHandler) handleListResources(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	resources, err := handler.service.ListResources(requestCtx, principal)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"resources": newResourcePayloads(resources)})
}

func (handler *httpHandler) handleGetResource(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	resourceID, err := lodging.NewResourceID(ctx.Param("resource"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	resource, err := handler.service.GetResource(requestCtx, principal, resourceID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"resource": newResourcePayload(resource)})
}

func (handler *httpHandler) handleCreateResource(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	var request resourceRequest
	if !bindJSON(ctx, &request) {
		return
	}
	input, err := request.toInput()
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	resource, err := handler.service.CreateResource(requestCtx, principal, input)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"resource": newResourcePayload(resource)})
}

func (handler *httpHandler) handleUpdateResource(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	resourceID, err := lodging.NewResourceID(ctx.Param("resource"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	var request resourceRequest
	if !bindJSON(ctx, &request) {
		return
	}
	input, err := request.toInput()
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	resource, err := handler.service.UpdateResource(requestCtx, principal, resourceID, input)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"resource": newResourcePayload(resource)})
}

func (handler *httpHandler) handleTimeline(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	weekStart, ok := handler.dayQuery(ctx, "week_start")
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	timeline, err := handler.service.ProjectWeek(requestCtx, principal, cycleID, weekStart)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"timeline": newTimelinePayload(timeline)})
}

func (handler *httpHandler) handleStateBoard(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	asOf, ok := handler.dayQuery(ctx, "as_of")
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	board, err := handler.service.ResourceStates(requestCtx, principal, cycleID, asOf)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"board": newStateBoardPayload(board)})
}

func (handler *httpHandler) handleDeriveState(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	resourceID, err := lodging.NewResourceID(ctx.Param("resource"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	asOf, ok := handler.dayQuery(ctx, "as_of")
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	state, err := handler.service.DeriveState(requestCtx, principal, cycleID, resourceID, asOf)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"resource_id": resourceID.String(),
		"as_of":       asOf.String(),
		"state":       string(state),
	})
}

func (handler *httpHandler) handleCheckConflict(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	resourceID, err := lodging.NewResourceID(ctx.Query("resource"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	dateRange, err := rangeQuery(ctx, "entry", "exit")
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	var exclude lodging.ReservationID
	if raw := strings.TrimSpace(ctx.Query("exclude")); raw != "" {
		if exclude, err = lodging.NewReservationID(raw); err != nil {
			handler.respondError(ctx, err)
			return
		}
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	conflict, err := handler.service.CheckConflict(requestCtx, principal, cycleID, resourceID, dateRange, exclude)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"conflict": newConflictPayload(conflict)})
}

func (handler *httpHandler) handleCheckBlackoutConflict(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	resourceID, err := lodging.NewResourceID(ctx.Query("resource"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	dateRange, err := rangeQuery(ctx, "start", "end")
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	var exclude lodging.BlackoutID
	if raw := strings.TrimSpace(ctx.Query("exclude")); raw != "" {
		if exclude, err = lodging.NewBlackoutID(raw); err != nil {
			handler.respondError(ctx, err)
			return
		}
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	conflict, err := handler.service.CheckBlackoutConflict(requestCtx, principal, cycleID, resourceID, dateRange, exclude)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"conflict": newConflictPayload(conflict)})
}

func (handler *httpHandler) handleEligibleResources(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	dateRange, err := rangeQuery(ctx, "entry", "exit")
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	var exclude lodging.ReservationID
	if raw := strings.TrimSpace(ctx.Query("exclude")); raw != "" {
		if exclude, err = lodging.NewReservationID(raw); err != nil {
			handler.respondError(ctx, err)
			return
		}
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	resources, err := handler.service.EligibleResources(requestCtx, principal, cycleID, dateRange, exclude)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"resources": newResourcePayloads(resources)})
}

func (handler *httpHandler) handleForceResourceActive(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	resourceID, err := lodging.NewResourceID(ctx.Param("resource"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	resource, deactivated, err := handler.service.ForceResourceActive(requestCtx, principal, cycleID, resourceID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"resource":              newResourcePayload(resource),
		"deactivated_blackouts": deactivated,
	})
}

func (handler *httpHandler) handleCancelCurrentReservation(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	resourceID, err := lodging.NewResourceID(ctx.Param("resource"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	asOf, ok := handler.dayQuery(ctx, "as_of")
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservation, err := handler.service.CancelCurrentReservation(requestCtx, principal, cycleID, resourceID, asOf)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": newReservationPayload(reservation)})
}

func (handler *httpHandler) handleListReservations(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	filter, err := reservationFilterQuery(ctx)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	page, err := handler.service.ListReservations(requestCtx, principal, cycleID, filter)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newReservationPagePayload(page))
}

func (handler *httpHandler) handleGetReservation(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	reservationID, err := lodging.NewReservationID(ctx.Param("reservation"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservation, err := handler.service.GetReservation(requestCtx, principal, cycleID, reservationID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": newReservationPayload(reservation)})
}

func (handler *httpHandler) handleCreateReservation(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	var request reservationRequest
	if !bindJSON(ctx, &request) {
		return
	}
	input, err := request.toInput()
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservation, err := handler.service.CreateReservation(requestCtx, principal, cycleID, input)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"reservation": newReservationPayload(reservation)})
}

func (handler *httpHandler) handleUpdateReservation(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	reservationID, err := lodging.NewReservationID(ctx.Param("reservation"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	var request reservationRequest
	if !bindJSON(ctx, &request) {
		return
	}
	input, err := request.toInput()
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservation, err := handler.service.UpdateReservation(requestCtx, principal, cycleID, reservationID, input)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": newReservationPayload(reservation)})
}

func (handler *httpHandler) handleDeleteReservation(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	reservationID, err := lodging.NewReservationID(ctx.Param("reservation"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	if err := handler.service.DeleteReservation(requestCtx, principal, cycleID, reservationID); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (handler *httpHandler) handleListBlackouts(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	resourceID, err := optionalResourceID(ctx.Query("resource"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	blackouts, err := handler.service.ListBlackouts(requestCtx, principal, cycleID, resourceID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payloads := make([]blackoutPayload, 0, len(blackouts))
	for _, blackout := range blackouts {
		payloads = append(payloads, newBlackoutPayload(blackout))
	}
	ctx.JSON(http.StatusOK, gin.H{"blackouts": payloads})
}

func (handler *httpHandler) handleGetBlackout(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	blackoutID, err := lodging.NewBlackoutID(ctx.Param("blackout"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	blackout, err := handler.service.GetBlackout(requestCtx, principal, cycleID, blackoutID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"blackout": newBlackoutPayload(blackout)})
}

func (handler *httpHandler) handleCreateBlackout(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	var request blackoutRequest
	if !bindJSON(ctx, &request) {
		return
	}
	input, err := request.toInput()
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	blackout, err := handler.service.CreateBlackout(requestCtx, principal, cycleID, input)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"blackout": newBlackoutPayload(blackout)})
}

func (handler *httpHandler) handleUpdateBlackout(ctx *gin.Context) {
	principal, ok := handler.principal(ctx)
	if !ok {
		return
	}
	cycleID, ok := handler.cycleID(ctx)
	if !ok {
		return
	}
	blackoutID, err := lodging.NewBlackoutID(ctx.Param("blackout"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	var request blackoutRequest
	if !bindJSON(ctx, &request) {
		return
	}
	input, err := request.toInput()
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	blackout, err := handler.service.UpdateBlackout(requestCtx, principal, cycleID, blackoutID, input)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"blackout": newBlackoutPayload(blackout)})
}

// dayQuery reads a YYYY-MM-DD query value; a missing value means the service's today.
func (handler *httpHandler) dayQuery(ctx *gin.Context, name string) (lodging.Date, bool) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return handler.service.Today(), true
	}
	day, err := lodging.ParseDate(raw)
	if err != nil {
		handler.respondError(ctx, err)
		return lodging.Date{}, false
	}
	return day, true
}

func rangeQuery(ctx *gin.Context, startName string, endName string) (lodging.DateRange, error) {
	start, err := lodging.ParseDate(ctx.Query(startName))
	if err != nil {
		return lodging.DateRange{}, err
	}
	end, err := lodging.ParseDate(ctx.Query(endName))
	if err != nil {
		return lodging.DateRange{}, err
	}
	return lodging.NewDateRange(start, end)
}

func reservationFilterQuery(ctx *gin.Context) (lodging.ReservationFilter, error) {
	var filter lodging.ReservationFilter
	var err error
	if raw := strings.TrimSpace(ctx.Query("status")); raw != "" {
		if filter.Status, err = lodging.ParseReservationStatus(raw); err != nil {
			return lodging.ReservationFilter{}, err
		}
	}
	if filter.ResourceID, err = optionalResourceID(ctx.Query("resource")); err != nil {
		return lodging.ReservationFilter{}, err
	}
	if filter.Accessible, err = optionalBool(ctx.Query("accessible")); err != nil {
		return lodging.ReservationFilter{}, err
	}
	if raw := strings.TrimSpace(ctx.Query("page")); raw != "" {
		page, convErr := strconv.Atoi(raw)
		if convErr != nil || page < 1 {
			return lodging.ReservationFilter{}, invalidPageError(raw)
		}
		filter.Page = page
	}
	return filter, nil
}

func invalidPageError(raw string) error {
	return &lodging.ValidationError{Fields: []lodging.FieldError{{Field: "page", Code: "invalid", Message: "page must be a positive integer, got " + strconv.Quote(raw)}}}
}

func bindJSON(ctx *gin.Context, target any) bool {
	if err := ctx.ShouldBindJSON(target); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return false
	}
	return true
}
