package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	operationsapp "github.com/pms/backend/internal/application/operations"
	"github.com/pms/backend/internal/domain/operations"
)

// OperationsHandler handles housekeeping and maintenance endpoints
type OperationsHandler struct {
	BaseHandler
	operationsService *operationsapp.OperationsService
}

// NewOperationsHandler creates a new OperationsHandler
func NewOperationsHandler(operationsService *operationsapp.OperationsService) *OperationsHandler {
	return &OperationsHandler{operationsService: operationsService}
}

// RegisterRoutes registers operations routes
func (h *OperationsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tasks := rg.Group("/housekeeping-tasks")
	{
		tasks.POST("", h.CreateTask)
		tasks.GET("", h.ListPendingTasks)
		tasks.PUT("/:id/assign", h.AssignTask)
		tasks.POST("/:id/complete", h.CompleteTask)
	}

	requests := rg.Group("/maintenance-requests")
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListOpenRequests)
		requests.PUT("/:id/assign", h.AssignRequest)
		requests.POST("/:id/resolve", h.ResolveRequest)
	}
}

// CreateTask creates a housekeeping task
func (h *OperationsHandler) CreateTask(c *gin.Context) {
	var req operationsapp.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	task, err := h.operationsService.CreateTask(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, task)
}

// ListPendingTasks lists open tasks in working order
func (h *OperationsHandler) ListPendingTasks(c *gin.Context) {
	base, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := operations.TaskFilter{Filter: base}
	if raw := c.Query("unit_id"); raw != "" {
		unitID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid unit ID")
			return
		}
		filter.UnitID = &unitID
	}
	if worker := c.Query("assigned_to"); worker != "" {
		filter.AssignedTo = worker
	}

	tasks, err := h.operationsService.ListPendingTasks(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tasks)
}

// AssignWorkerRequest carries the assignment body
type AssignWorkerRequest struct {
	AssignedTo string `json:"assigned_to" binding:"required"`
}

// AssignTask assigns a task to a housekeeper
func (h *OperationsHandler) AssignTask(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid task ID")
		return
	}
	var req AssignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	task, err := h.operationsService.AssignTask(c.Request.Context(), id, req.AssignedTo)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// CompleteTaskRequest carries the completion body
type CompleteTaskRequest struct {
	CompletedBy string `json:"completed_by" binding:"required"`
}

// CompleteTask completes a task, releasing a clean unit back to available
func (h *OperationsHandler) CompleteTask(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid task ID")
		return
	}
	var req CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	task, err := h.operationsService.CompleteTask(c.Request.Context(), id, req.CompletedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// CreateRequest files a maintenance request
func (h *OperationsHandler) CreateRequest(c *gin.Context) {
	var req operationsapp.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	request, err := h.operationsService.CreateRequest(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, request)
}

// ListOpenRequests lists unresolved requests in working order
func (h *OperationsHandler) ListOpenRequests(c *gin.Context) {
	base, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := operations.RequestFilter{Filter: base}
	if raw := c.Query("unit_id"); raw != "" {
		unitID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid unit ID")
			return
		}
		filter.UnitID = &unitID
	}
	if raw := c.Query("priority"); raw != "" {
		priority := operations.RequestPriority(raw)
		filter.Priority = &priority
	}

	requests, err := h.operationsService.ListOpenRequests(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requests)
}

// AssignRequest assigns a request to a technician
func (h *OperationsHandler) AssignRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid request ID")
		return
	}
	var req AssignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	request, err := h.operationsService.AssignRequest(c.Request.Context(), id, req.AssignedTo)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// ResolveRequest resolves a maintenance request with its actual cost
func (h *OperationsHandler) ResolveRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid request ID")
		return
	}
	var req operationsapp.ResolveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	request, err := h.operationsService.ResolveRequest(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}
