package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/pms/backend/internal/application/inventory"
	"github.com/pms/backend/internal/domain/inventory"
)

// InventoryHandler handles unit and unit type endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	unitTypes := rg.Group("/unit-types")
	{
		unitTypes.POST("", h.CreateUnitType)
		unitTypes.GET("", h.ListUnitTypes)
	}

	units := rg.Group("/units")
	{
		units.POST("", h.CreateUnit)
		units.GET("", h.ListUnits)
		units.GET("/:id", h.GetUnit)
		units.PUT("/:id/owner", h.AssignOwner)
		units.PUT("/:id/rate", h.UpdateRate)
		units.PUT("/:id/status", h.SetStatus)
	}
}

// CreateUnitType creates a unit type
func (h *InventoryHandler) CreateUnitType(c *gin.Context) {
	var req inventoryapp.CreateUnitTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	unitType, err := h.inventoryService.CreateUnitType(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, unitType)
}

// ListUnitTypes lists unit types
func (h *InventoryHandler) ListUnitTypes(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	types, err := h.inventoryService.ListUnitTypes(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, types)
}

// CreateUnit registers a rentable unit
func (h *InventoryHandler) CreateUnit(c *gin.Context) {
	var req inventoryapp.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	unit, err := h.inventoryService.CreateUnit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, unit)
}

// ListUnits lists units
func (h *InventoryHandler) ListUnits(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	units, err := h.inventoryService.ListUnits(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}

// GetUnit fetches one unit
func (h *InventoryHandler) GetUnit(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid unit ID")
		return
	}
	unit, err := h.inventoryService.GetUnit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// AssignOwnerRequest carries the owner assignment body
type AssignOwnerRequest struct {
	OwnerID uuid.UUID `json:"owner_id" binding:"required"`
}

// AssignOwner assigns an owner to a unit
func (h *InventoryHandler) AssignOwner(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid unit ID")
		return
	}
	var req AssignOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	unit, err := h.inventoryService.AssignOwner(c.Request.Context(), id, req.OwnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// UpdateRateRequest carries the rate update body
type UpdateRateRequest struct {
	RatePerNight string `json:"rate_per_night" binding:"required,amount"`
}

// UpdateRate updates a unit's nightly rate
func (h *InventoryHandler) UpdateRate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid unit ID")
		return
	}
	var req UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	unit, err := h.inventoryService.UpdateUnitRate(c.Request.Context(), id, req.RatePerNight)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// SetStatusRequest carries the manual status override body
type SetStatusRequest struct {
	Status inventory.UnitStatus `json:"status" binding:"required"`
}

// SetStatus manually overrides a unit's status
func (h *InventoryHandler) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid unit ID")
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	unit, err := h.inventoryService.SetUnitStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}
