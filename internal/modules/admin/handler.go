package admin

import (
	"errors"
	"log"
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

// RegisterRoutes expects the admin guard on admin.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	// statistics
	admin.GET("/stats", h.GetStats)

	// users
	admin.GET("/users", h.GetUsers)
	admin.GET("/users/export", h.ExportUsers)
	admin.PATCH("/users/:id/membership", h.UpdateMembership)
	admin.PATCH("/users/:id/status", h.UpdateStatus)
}

// GetStats godoc
// @Summary      Dashboard statistics
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Router       /admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		log.Printf("level=error msg=admin_stats_failed err=%q", err.Error())
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load statistics")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// GetUsers godoc
// @Summary      List users
// @Tags         Admin
// @Security     BearerAuth
// @Param        q          query string false "search term"
// @Param        membership query string false "plan key or all"
// @Param        status     query string false "active, inactive or all"
// @Router       /admin/users [get]
func (h *Handler) GetUsers(c *gin.Context) {
	all, shown, err := h.service.QueryUsers(c.Request.Context(),
		c.Query("q"), c.Query("membership"), c.Query("status"))
	if err != nil {
		log.Printf("level=error msg=admin_list_users_failed err=%q", err.Error())
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load users")
		return
	}
	response.Success(c, http.StatusOK, UsersResponse{
		Users: toRows(shown),
		Total: len(all),
		Shown: len(shown),
	})
}

func (h *Handler) ExportUsers(c *gin.Context) {
	data, filename, err := h.service.Export(c.Request.Context())
	if err != nil {
		log.Printf("level=error msg=admin_export_failed err=%q", err.Error())
		response.Redirect(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export users",
			response.NewNotice(response.NoticeError, "Failed to export users"), nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("X-Notice", "Users exported successfully!")
	c.Data(http.StatusOK, "text/csv;charset=utf-8", data)
}

func (h *Handler) UpdateMembership(c *gin.Context) {
	var req UpdateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := h.service.UpdateUserMembership(c.Request.Context(), c.Param("id"), req.Plan); err != nil {
		writeError(c, err, "Failed to update membership")
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, gin.H{"updated": true},
		response.NewNotice(response.NoticeSuccess, "Membership updated successfully!"), nil)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status must be active or inactive", errs)
		return
	}
	if err := h.service.UpdateUserAccountStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		writeError(c, err, "Failed to update account status")
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, gin.H{"updated": true},
		response.NewNotice(response.NoticeSuccess, "Account status updated successfully!"), nil)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status must be active or inactive")
	default:
		log.Printf("level=error msg=admin_update_failed err=%q", err.Error())
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
