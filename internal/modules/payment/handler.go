package payment

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"suryawash/internal/middleware"
	"suryawash/internal/pkg/response"
	"suryawash/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

const (
	homePage      = "index.html"
	registerPage  = "register.html"
	redirectDelay = 2 * time.Second
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

// RegisterRoutes mounts checkout. optional attaches a session when present, required rejects
// requests without one. Checkout and pay take optional so a guest is sent to registration
// with the item carried along.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, optional, required gin.HandlerFunc) {
	rg.GET("/checkout", optional, h.Checkout)
	rg.POST("/checkout/pay", optional, h.Pay)
	rg.GET("/checkout/history", required, h.History)
}

// Checkout godoc
// @Summary      Checkout summary
// @Description  Resolves a service or membership plan for the payment page
// @Tags         Payments
// @Produce      json
// @Param        type query string true "service or plan"
// @Param        id   query string true "item id"
// @Router       /checkout [get]
func (h *Handler) Checkout(c *gin.Context) {
	itemType, itemID := c.Query("type"), c.Query("id")

	summary, err := h.service.Checkout(c.Request.Context(), middleware.UserID(c), itemType, itemID)
	if err != nil {
		h.writeError(c, err, itemType, itemID)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// Pay godoc
// @Summary      Pay for a service or plan
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "repeat-safe key"
// @Param        body body PayRequest true "item to pay for"
// @Router       /checkout/pay [post]
func (h *Handler) Pay(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Item type and id are required", errs)
		return
	}

	result, err := h.service.Pay(c.Request.Context(), middleware.UserID(c), c.GetHeader("Idempotency-Key"), req)
	if err != nil {
		h.writeError(c, err, req.Type, req.ID)
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, result,
		response.NewNotice(response.NoticeSuccess, "Payment Successful! Welcome to Surya Motors."),
		response.NewRedirect(homePage, redirectDelay))
}

func (h *Handler) History(c *gin.Context) {
	txs, err := h.service.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.writeError(c, err, "", "")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transactions": txs})
}

func (h *Handler) writeError(c *gin.Context, err error, itemType, itemID string) {
	switch {
	case errors.Is(err, ErrMissingParams):
		response.Redirect(c, http.StatusBadRequest, "MISSING_PARAMS", "Item type and id are required",
			nil, response.NewRedirect(homePage, 0))
	case errors.Is(err, ErrNotSignedIn):
		to := registerPage + "?redirect=payment&type=" + url.QueryEscape(itemType) + "&id=" + url.QueryEscape(itemID)
		response.Redirect(c, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Not authenticated",
			nil, response.NewRedirect(to, 0))
	case errors.Is(err, ErrUnknownType):
		response.Redirect(c, http.StatusBadRequest, "UNKNOWN_ITEM_TYPE", "Unknown item type",
			nil, response.NewRedirect(homePage, 0))
	case errors.Is(err, ErrItemNotFound):
		response.Redirect(c, http.StatusNotFound, "ITEM_NOT_FOUND", "Item not found",
			response.NewNotice(response.NoticeError, "Item not found"),
			response.NewRedirect(homePage, redirectDelay))
	case errors.Is(err, ErrIdempotencyReused):
		response.Error(c, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED", "Idempotency key was already used for another item")
	case errors.Is(err, ErrPaymentInProgress):
		response.Error(c, http.StatusConflict, "PAYMENT_IN_PROGRESS", "Payment is still being processed")
	case errors.Is(err, ErrPaymentFailed):
		response.Redirect(c, http.StatusPaymentRequired, "PAYMENT_FAILED", "Payment failed",
			response.NewNotice(response.NoticeError, "Payment failed. Please try again."), nil)
	case errors.Is(err, ErrActivationFailed):
		h.loggerf("level=error msg=checkout_activation_failed err=%q", err.Error())
		response.Redirect(c, http.StatusInternalServerError, "ACTIVATION_FAILED", "Payment received but membership could not be activated",
			response.NewNotice(response.NoticeError, "Payment received but membership could not be activated. Please contact support."), nil)
	default:
		h.loggerf("level=error msg=checkout_failed err=%q", err.Error())
		response.Redirect(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Error loading details",
			response.NewNotice(response.NoticeError, "Error loading details"), nil)
	}
}
