// Package handlers is the thin Gin wiring over the availability and
// booking engines. It is deliberately minimal: the full CRUD surface
// for organizations, event types, schedules, and resources is out of
// this module's scope and belongs to a surrounding API service; these
// handlers exist to exercise the two engines end to end.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/slotwise/scheduling-core/internal/availability"
	"github.com/slotwise/scheduling-core/internal/booking"
	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/reqctx"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

// statusFor maps a coreerr.Kind to the HTTP status the API layer
// returns for it.
func statusFor(kind coreerr.Kind) int {
	switch kind {
	case coreerr.Validation:
		return http.StatusBadRequest
	case coreerr.NotFound:
		return http.StatusNotFound
	case coreerr.Conflict:
		return http.StatusConflict
	case coreerr.Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(coreerr.KindOf(err)), gin.H{"error": err.Error()})
}

// AvailabilityHandler serves availability and calendar queries.
type AvailabilityHandler struct {
	engine *availability.Engine
	logger *logger.Logger
}

func NewAvailabilityHandler(engine *availability.Engine, logger *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{engine: engine, logger: logger}
}

// availabilityQuery is the GET /availability query-string shape.
type availabilityQuery struct {
	EventTypeID string   `form:"eventTypeId"`
	HostIDs     []string `form:"hostIds"`
	Start       string   `form:"start" binding:"required"`
	End         string   `form:"end" binding:"required"`
	Duration    int      `form:"durationMinutes" binding:"required"`
	Timezone    string   `form:"timezone"`
}

// GetAvailability handles GET /availability.
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	var q availabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := time.Parse(time.RFC3339, q.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start: " + err.Error()})
		return
	}
	end, err := time.Parse(time.RFC3339, q.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end: " + err.Error()})
		return
	}

	query := availability.Query{
		UserIDs:         q.HostIDs,
		Start:           start,
		End:             end,
		DurationMinutes: q.Duration,
		Timezone:        q.Timezone,
	}
	if q.EventTypeID != "" {
		query.EventTypeID = &q.EventTypeID
	}

	slots, err := h.engine.GetAvailability(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// GetEventTypeBySlug handles GET /public/event-types/:organizationId/:slug,
// the lookup a public booking page uses to resolve a human-readable URL
// into the event type the rest of the availability endpoints key on.
func (h *AvailabilityHandler) GetEventTypeBySlug(c *gin.Context) {
	et, err := h.engine.ResolveEventType(c.Request.Context(), c.Param("organizationId"), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, et)
}

// GetCalendar handles GET /event-types/:eventTypeId/calendar.
func (h *AvailabilityHandler) GetCalendar(c *gin.Context) {
	eventTypeID := c.Param("eventTypeId")
	hostIDs := c.QueryArray("hostIds")
	startStr := c.Query("start")
	endStr := c.Query("end")
	timezone := c.Query("timezone")

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start: " + err.Error()})
		return
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end: " + err.Error()})
		return
	}

	summary, err := h.engine.CalendarSummary(c.Request.Context(), eventTypeID, hostIDs, start, end, timezone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": summary})
}

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	engine *booking.Engine
	logger *logger.Logger
}

func NewBookingHandler(engine *booking.Engine, logger *logger.Logger) *BookingHandler {
	return &BookingHandler{engine: engine, logger: logger}
}

type createBookingRequestDTO struct {
	EventTypeID *string               `json:"eventTypeId"`
	HostID      string                `json:"hostId" binding:"required"`
	StartTime   time.Time             `json:"startTime" binding:"required"`
	EndTime     time.Time             `json:"endTime" binding:"required"`
	Timezone    string                `json:"timezone" binding:"required"`
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Attendee    booking.AttendeeInput `json:"attendee" binding:"required"`
	ResourceIDs []string              `json:"resourceIds"`
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req createBookingRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.engine.Create(c.Request.Context(), booking.CreateInput{
		EventTypeID: req.EventTypeID,
		HostID:      req.HostID,
		Start:       req.StartTime,
		End:         req.EndTime,
		Timezone:    req.Timezone,
		Title:       req.Title,
		Description: req.Description,
		Attendee:    req.Attendee,
		ResourceIDs: req.ResourceIDs,
		Source:      models.BookingSource(reqctx.BookingSource(c.Request.Context())),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ConfirmBooking handles POST /bookings/:bookingId/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	b, err := h.engine.Confirm(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type cancelBookingRequestDTO struct {
	Reason *string `json:"reason"`
}

// CancelBooking handles POST /bookings/:bookingId/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req cancelBookingRequestDTO
	_ = c.ShouldBindJSON(&req)

	b, err := h.engine.Cancel(c.Request.Context(), booking.CancelInput{
		BookingID:   c.Param("bookingId"),
		Reason:      req.Reason,
		CancelledBy: models.CancelledByHost,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// listBookingsQuery is the GET /bookings query-string shape.
type listBookingsQuery struct {
	OrganizationID string `form:"organizationId" binding:"required"`
	Limit          int    `form:"limit"`
	Offset         int    `form:"offset"`
}

// ListBookings handles GET /bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	var q listBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.List(c.Request.Context(), booking.ListInput{
		OrganizationID: q.OrganizationID,
		Limit:          q.Limit,
		Offset:         q.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings": result.Bookings,
		"total":    result.Total,
		"limit":    result.Limit,
		"offset":   result.Offset,
	})
}

type cancelBookingByUIDRequestDTO struct {
	Email  string  `json:"email" binding:"required"`
	Reason *string `json:"reason"`
}

// CancelBookingByUID handles POST /public/bookings/:uid/cancel, the
// unauthenticated path an attendee uses to cancel their own booking by
// its public identifier and the email it was booked under.
func (h *BookingHandler) CancelBookingByUID(c *gin.Context) {
	var req cancelBookingByUIDRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.engine.CancelByUID(c.Request.Context(), booking.CancelByUIDInput{
		UID:    c.Param("uid"),
		Email:  req.Email,
		Reason: req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type rescheduleBookingRequestDTO struct {
	NewStart time.Time `json:"newStartTime" binding:"required"`
	NewEnd   time.Time `json:"newEndTime" binding:"required"`
	Reason   *string   `json:"reason"`
}

// RescheduleBooking handles POST /bookings/:bookingId/reschedule.
func (h *BookingHandler) RescheduleBooking(c *gin.Context) {
	var req rescheduleBookingRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.engine.Reschedule(c.Request.Context(), booking.RescheduleInput{
		BookingID: c.Param("bookingId"),
		NewStart:  req.NewStart,
		NewEnd:    req.NewEnd,
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// HealthHandler serves liveness/readiness probes.
type HealthHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	nats   *nats.Conn
	logger *logger.Logger
}

func NewHealthHandler(db *gorm.DB, redis *redis.Client, nats *nats.Conn, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, nats: nats, logger: logger}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "scheduling-core"})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	if h.nats != nil && !h.nats.IsConnected() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
