package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	settlementapp "github.com/pms/backend/internal/application/settlement"
	"github.com/pms/backend/internal/domain/settlement"
)

// SettlementHandler handles the owner settlement lifecycle endpoints
type SettlementHandler struct {
	BaseHandler
	settlementService *settlementapp.SettlementService
	generationService *settlementapp.MonthlyGenerationService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(
	settlementService *settlementapp.SettlementService,
	generationService *settlementapp.MonthlyGenerationService,
) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		generationService: generationService,
	}
}

// RegisterRoutes registers settlement routes
func (h *SettlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settlements := rg.Group("/settlements")
	{
		settlements.POST("", h.Create)
		settlements.GET("", h.List)
		settlements.GET("/:id", h.Get)
		settlements.POST("/:id/calculate", h.Calculate)
		settlements.PUT("/:id/methods", h.UpdateMethods)
		settlements.POST("/:id/post", h.Post)
		settlements.POST("/:id/pay", h.Pay)
		settlements.POST("/:id/cancel", h.Cancel)
		settlements.POST("/generate-monthly", h.GenerateMonthly)
	}
}

// Create builds a draft settlement
func (h *SettlementHandler) Create(c *gin.Context) {
	var req settlementapp.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	stl, err := h.settlementService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, stl)
}

// ListSettlementsQuery carries the settlement list filters
type ListSettlementsQuery struct {
	OwnerID *uuid.UUID `form:"owner_id"`
	Status  string     `form:"status"`
}

// List lists settlements
func (h *SettlementHandler) List(c *gin.Context) {
	base, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var q ListSettlementsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := settlement.SettlementFilter{Filter: base, OwnerID: q.OwnerID}
	if q.Status != "" {
		status := settlement.SettlementStatus(q.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid settlement status")
			return
		}
		filter.Status = &status
	}

	page, err := h.settlementService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get fetches one settlement with its detail rows
func (h *SettlementHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid settlement ID")
		return
	}
	stl, err := h.settlementService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stl)
}

// Calculate aggregates revenue and expenses and computes the payout
func (h *SettlementHandler) Calculate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid settlement ID")
		return
	}
	stl, err := h.settlementService.Calculate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stl)
}

// UpdateMethods changes calculation policies and recalculates
func (h *SettlementHandler) UpdateMethods(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid settlement ID")
		return
	}
	var req settlementapp.UpdateMethodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	stl, err := h.settlementService.UpdateMethods(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stl)
}

// Post posts the settlement journal to the ledger
func (h *SettlementHandler) Post(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid settlement ID")
		return
	}
	stl, err := h.settlementService.PostToAccounting(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stl)
}

// Pay creates the owner payout voucher
func (h *SettlementHandler) Pay(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid settlement ID")
		return
	}
	stl, err := h.settlementService.CreatePayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stl)
}

// Cancel cancels the settlement, reversing its journal if posted
func (h *SettlementHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid settlement ID")
		return
	}
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	stl, err := h.settlementService.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stl)
}

// GenerateMonthly kicks off the previous-month generation run on demand
func (h *SettlementHandler) GenerateMonthly(c *gin.Context) {
	summary, err := h.generationService.Run(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
