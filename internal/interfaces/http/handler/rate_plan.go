package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pricingapp "github.com/pms/backend/internal/application/pricing"
)

// RatePlanHandler handles rate plan and rate resolution endpoints
type RatePlanHandler struct {
	BaseHandler
	pricingService *pricingapp.PricingService
}

// NewRatePlanHandler creates a new RatePlanHandler
func NewRatePlanHandler(pricingService *pricingapp.PricingService) *RatePlanHandler {
	return &RatePlanHandler{pricingService: pricingService}
}

// RegisterRoutes registers rate plan routes
func (h *RatePlanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plans := rg.Group("/rate-plans")
	{
		plans.POST("", h.Create)
		plans.GET("", h.List)
		plans.GET("/:id", h.Get)
		plans.DELETE("/:id", h.Deactivate)
	}
	rg.GET("/rates/resolve", h.Resolve)
}

// Create creates a rate plan
func (h *RatePlanHandler) Create(c *gin.Context) {
	var req pricingapp.CreateRatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	plan, err := h.pricingService.CreateRatePlan(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, plan)
}

// List lists rate plans
func (h *RatePlanHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	plans, err := h.pricingService.ListRatePlans(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plans)
}

// Get fetches one rate plan
func (h *RatePlanHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid rate plan ID")
		return
	}
	plan, err := h.pricingService.GetRatePlan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// Deactivate retires a rate plan
func (h *RatePlanHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid rate plan ID")
		return
	}
	if err := h.pricingService.DeactivateRatePlan(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ResolveRateQuery carries the rate resolution query parameters
type ResolveRateQuery struct {
	PropertyID uuid.UUID `form:"property_id" binding:"required"`
	UnitTypeID uuid.UUID `form:"unit_type_id" binding:"required"`
	Date       string    `form:"date" binding:"required"`
	CheckOut   string    `form:"check_out"`
}

// Resolve returns the effective nightly rate for a date, or the stay total
// when check_out is supplied
func (h *RatePlanHandler) Resolve(c *gin.Context) {
	var q ResolveRateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", q.Date)
	if err != nil {
		h.BadRequest(c, "date must be formatted YYYY-MM-DD")
		return
	}

	if q.CheckOut != "" {
		checkOut, err := time.Parse("2006-01-02", q.CheckOut)
		if err != nil {
			h.BadRequest(c, "check_out must be formatted YYYY-MM-DD")
			return
		}
		total, err := h.pricingService.ResolveStayTotal(c.Request.Context(), q.PropertyID, q.UnitTypeID, date, checkOut)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, total)
		return
	}

	rate, err := h.pricingService.ResolveRate(c.Request.Context(), q.PropertyID, q.UnitTypeID, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}
