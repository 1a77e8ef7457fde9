package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reservationapp "github.com/pms/backend/internal/application/reservation"
)

// ReservationHandler handles the reservation lifecycle endpoints
type ReservationHandler struct {
	BaseHandler
	reservationService *reservationapp.ReservationService
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservationService *reservationapp.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// RegisterRoutes registers reservation routes
func (h *ReservationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reservations := rg.Group("/reservations")
	{
		reservations.POST("", h.Create)
		reservations.GET("", h.List)
		reservations.GET("/:id", h.Get)
		reservations.PUT("/:id", h.Update)
		reservations.POST("/:id/services", h.AddService)
		reservations.POST("/:id/confirm", h.Confirm)
		reservations.POST("/:id/check-in", h.CheckIn)
		reservations.POST("/:id/check-out", h.CheckOut)
		reservations.POST("/:id/cancel", h.Cancel)
	}
	rg.GET("/availability", h.Availability)
}

// Create creates a draft reservation
func (h *ReservationHandler) Create(c *gin.Context) {
	var req reservationapp.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	res, err := h.reservationService.CreateDraft(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// List lists reservations. Lookup by number goes through ?search=.
func (h *ReservationHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if number := c.Query("number"); number != "" {
		res, err := h.reservationService.GetByNumber(c.Request.Context(), number)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, res)
		return
	}
	reservations, err := h.reservationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservations)
}

// Get fetches one reservation
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}
	res, err := h.reservationService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Update edits a draft reservation
func (h *ReservationHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}
	var req reservationapp.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	res, err := h.reservationService.UpdateDraft(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// AddService adds a service consumption line to an in-house reservation
func (h *ReservationHandler) AddService(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}
	var req reservationapp.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	res, err := h.reservationService.AddService(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Confirm confirms a draft, blocking its units
func (h *ReservationHandler) Confirm(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}
	res, err := h.reservationService.Confirm(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// CheckIn checks the guest in
func (h *ReservationHandler) CheckIn(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}
	res, err := h.reservationService.CheckIn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// CheckOut closes the stay and raises the guest invoice
func (h *ReservationHandler) CheckOut(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}
	result, err := h.reservationService.CheckOut(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CancelRequest carries the cancellation body
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Cancel cancels a reservation and releases its units
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	res, err := h.reservationService.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// AvailabilityQuery carries the availability search parameters
type AvailabilityQuery struct {
	PropertyID *uuid.UUID `form:"property_id"`
	UnitTypeID *uuid.UUID `form:"unit_type_id"`
	CheckIn    string     `form:"check_in" binding:"required"`
	CheckOut   string     `form:"check_out" binding:"required"`
}

// Availability lists units free for the candidate range
func (h *ReservationHandler) Availability(c *gin.Context) {
	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	checkIn, err := time.Parse("2006-01-02", q.CheckIn)
	if err != nil {
		h.BadRequest(c, "check_in must be formatted YYYY-MM-DD")
		return
	}
	checkOut, err := time.Parse("2006-01-02", q.CheckOut)
	if err != nil {
		h.BadRequest(c, "check_out must be formatted YYYY-MM-DD")
		return
	}

	units, err := h.reservationService.GetAvailableUnits(c.Request.Context(), q.PropertyID, q.UnitTypeID, checkIn, checkOut)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}
