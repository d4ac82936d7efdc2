package relay

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muhammedshamil8/CivicGuard/internal/pkg/response"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/validator"
	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	validator.RegisterBindingRules()
	return &Handler{service: service}
}

type SendEmailRequest struct {
	Title   string `json:"title" binding:"required,notblank,max=200"`
	Content string `json:"content" binding:"required,notblank,max=10000"`
}

type AlertResponse struct {
	CallID string `json:"call_id"`
}

// Hello godoc
// @Summary Liveness check
// @Tags relay
// @Produce plain
// @Success 200 {string} string "Hello World"
// @Router / [get]
func (h *Handler) Hello(c *gin.Context) {
	c.String(http.StatusOK, "Hello World")
}

// Alert godoc
// @Summary Place the voice alert call
// @Tags relay
// @Produce json
// @Security RelayKey
// @Success 200 {object} response.APIResponse{data=AlertResponse}
// @Failure 401 {object} response.APIResponse
// @Failure 429 {object} response.APIResponse
// @Failure 500 {object} response.APIResponse
// @Router /alert [post]
func (h *Handler) Alert(c *gin.Context) {
	callID, err := h.service.PlaceAlertCall(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, AlertResponse{CallID: callID}, "Alert call placed")
}

// SendEmail godoc
// @Summary Send the report email
// @Tags relay
// @Accept json
// @Produce json
// @Security RelayKey
// @Param request body SendEmailRequest true "Email title and content"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 500 {object} response.APIResponse
// @Router /send-email [post]
func (h *Handler) SendEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title and content are required", "VALIDATION_FAILED")
		return
	}

	if err := h.service.SendEmail(c.Request.Context(), req.Title, req.Content); err != nil {
		if apperrors.Is(err, apperrors.KindRelay) {
			response.InternalServerError(c, "Failed to send report", "RELAY_ERROR")
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, nil, "Report sent successfully")
}
