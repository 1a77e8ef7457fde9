package handler

import (
	"github.com/gin-gonic/gin"

	propertyapp "github.com/pms/backend/internal/application/property"
)

// PropertyHandler handles property, owner and guest endpoints
type PropertyHandler struct {
	BaseHandler
	propertyService *propertyapp.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(propertyService *propertyapp.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// RegisterRoutes registers property routes
func (h *PropertyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	properties := rg.Group("/properties")
	{
		properties.POST("", h.CreateProperty)
		properties.GET("", h.ListProperties)
	}

	owners := rg.Group("/owners")
	{
		owners.POST("", h.CreateOwner)
		owners.GET("", h.ListOwners)
		owners.GET("/:id", h.GetOwner)
	}

	guests := rg.Group("/guests")
	{
		guests.POST("", h.CreateGuest)
		guests.GET("", h.ListGuests)
		guests.GET("/:id", h.GetGuest)
	}
}

// CreateProperty registers a property
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req propertyapp.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	prop, err := h.propertyService.CreateProperty(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, prop)
}

// ListProperties lists properties
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	properties, err := h.propertyService.ListProperties(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, properties)
}

// CreateOwner registers a unit owner
func (h *PropertyHandler) CreateOwner(c *gin.Context) {
	var req propertyapp.CreateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	owner, err := h.propertyService.CreateOwner(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, owner)
}

// ListOwners lists owners
func (h *PropertyHandler) ListOwners(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	owners, err := h.propertyService.ListOwners(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, owners)
}

// GetOwner fetches one owner
func (h *PropertyHandler) GetOwner(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid owner ID")
		return
	}
	owner, err := h.propertyService.GetOwner(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, owner)
}

// CreateGuest registers a guest profile
func (h *PropertyHandler) CreateGuest(c *gin.Context) {
	var req propertyapp.CreateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	guest, err := h.propertyService.CreateGuest(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, guest)
}

// ListGuests lists guests
func (h *PropertyHandler) ListGuests(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	guests, err := h.propertyService.ListGuests(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, guests)
}

// GetGuest fetches one guest with their visit statistics
func (h *PropertyHandler) GetGuest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid guest ID")
		return
	}
	guest, err := h.propertyService.GetGuest(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, guest)
}
