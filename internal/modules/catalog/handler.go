package catalog

import (
	"errors"
	"net/http"

	"suryawash/internal/pkg/response"
	"suryawash/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/services", h.ListServices)
}

// RegisterAdminRoutes expects the admin guard on rg.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	services := rg.Group("/services")
	{
		services.GET("", h.ListServices)
		services.POST("", h.CreateService)
		services.PUT("/:id", h.UpdateService)
		services.DELETE("/:id", h.DeleteService)
	}
	plans := rg.Group("/plans")
	{
		plans.GET("", h.ListPlans)
		plans.POST("", h.CreatePlan)
		plans.PUT("/:id", h.UpdatePlan)
		plans.DELETE("/:id", h.DeletePlan)
	}
}

/* ---------- SERVICE HANDLERS ---------- */

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.service.ListServices(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load services")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": services})
}

// CreateService handles POST /admin/services; the id is derived from the name.
func (h *Handler) CreateService(c *gin.Context) {
	h.saveService(c, "")
}

// UpdateService handles PUT /admin/services/:id and merges the body into that service.
func (h *Handler) UpdateService(c *gin.Context) {
	h.saveService(c, c.Param("id"))
}

func (h *Handler) saveService(c *gin.Context, id string) {
	var in ServiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(in); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid service", errs)
		return
	}

	savedID, err := h.service.SaveService(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err, "Failed to save service")
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, SaveResponse{ID: savedID},
		response.NewNotice(response.NoticeSuccess, "Service saved successfully!"), nil)
}

func (h *Handler) DeleteService(c *gin.Context) {
	if err := h.service.DeleteService(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "Failed to delete service")
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, gin.H{"deleted": true},
		response.NewNotice(response.NoticeSuccess, "Service deleted successfully!"), nil)
}

/* ---------- PLAN HANDLERS ---------- */

func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load membership plans")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plans": plans})
}

func (h *Handler) CreatePlan(c *gin.Context) {
	h.savePlan(c, "")
}

func (h *Handler) UpdatePlan(c *gin.Context) {
	h.savePlan(c, c.Param("id"))
}

func (h *Handler) savePlan(c *gin.Context, id string) {
	var in PlanInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(in); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid membership plan", errs)
		return
	}

	savedID, err := h.service.SavePlan(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err, "Failed to save membership plan")
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, SaveResponse{ID: savedID},
		response.NewNotice(response.NoticeSuccess, "Membership plan saved successfully!"), nil)
}

func (h *Handler) DeletePlan(c *gin.Context) {
	if err := h.service.DeletePlan(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "Failed to delete membership plan")
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, gin.H{"deleted": true},
		response.NewNotice(response.NoticeSuccess, "Membership plan deleted successfully!"), nil)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Item not found")
	case errors.Is(err, ErrNameRequired):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Name is required")
	case errors.Is(err, ErrInvalidPrice):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Price must not be negative")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
