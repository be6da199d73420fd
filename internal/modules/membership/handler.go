package membership

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"suryawash/internal/middleware"
	"suryawash/internal/pkg/response"
	"suryawash/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

const registerPage = "register.html"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the plans page. optional resolves the caller's session when one is sent.
func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup, optional gin.HandlerFunc) {
	g := v1.Group("/memberships", optional)
	{
		g.GET("", h.ListPlans)
		g.POST("/subscribe", h.Subscribe)
	}
}

// ListPlans godoc
// @Summary      Membership plans, cheapest first
// @Tags         Memberships
// @Produce      json
// @Router       /memberships [get]
func (h *Handler) ListPlans(c *gin.Context) {
	page, err := h.service.Plans(c.Request.Context(), middleware.UserID(c) != "")
	if err != nil {
		if errors.Is(err, ErrFetchTimeout) {
			response.Error(c, http.StatusGatewayTimeout, "FETCH_TIMEOUT",
				fmt.Sprintf("Membership fetch timeout (%s)", h.service.FetchTimeout()))
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Error Loading Plans")
		return
	}
	response.Success(c, http.StatusOK, page)
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Plan is required", errs)
		return
	}

	result, err := h.service.Subscribe(c.Request.Context(), middleware.UserID(c), req.PlanID)
	switch {
	case err == nil:
		response.SuccessWithNotice(c, http.StatusOK, result,
			response.NewNotice(response.NoticeSuccess, "Successfully subscribed!"), nil)
	case errors.Is(err, ErrNotAuthenticated):
		response.Redirect(c, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Not authenticated",
			response.NewNotice(response.NoticeError, "Please login to subscribe"),
			response.NewRedirect(registerPage+"?plan="+url.QueryEscape(req.PlanID), 0))
	case errors.Is(err, ErrUnknownPlan):
		response.Error(c, http.StatusNotFound, "PLAN_NOT_FOUND", "Membership plan not found")
	default:
		_ = c.Error(err)
		response.Redirect(c, http.StatusInternalServerError, "SUBSCRIBE_FAILED", "Subscription failed",
			response.NewNotice(response.NoticeError, "Subscription failed"), nil)
	}
}
