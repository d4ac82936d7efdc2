package reports

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muhammedshamil8/CivicGuard/internal/pkg/response"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	validator.RegisterBindingRules()
	return &Handler{service: service}
}

// SubmitReport godoc
// @Summary Submit an anonymous report
// @Description Multipart form with an optional photo. The report is stored as pending and staff are notified.
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param location formData string true "Where it happened"
// @Param description formData string true "What happened"
// @Param wallet_address formData string false "Submitter wallet address"
// @Param category formData string false "dealer or user"
// @Param image formData file false "Evidence photo (max 10 MB)"
// @Success 201 {object} response.APIResponse{data=SubmitResult}
// @Failure 400 {object} response.APIResponse
// @Failure 429 {object} response.APIResponse
// @Failure 502 {object} response.APIResponse
// @Router /reports [post]
func (h *Handler) SubmitReport(c *gin.Context) {
	var req SubmitReportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, validator.Describe(err), "VALIDATION_FAILED")
		return
	}

	input := SubmitInput{
		Location:      req.Location,
		Description:   req.Description,
		WalletAddress: req.WalletAddress,
		Category:      req.Category,
	}

	file, header, err := c.Request.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		if header.Size > h.service.opts.MaxImageBytes {
			response.BadRequest(c, fmt.Sprintf("image exceeds %d MB", h.service.opts.MaxImageBytes>>20), "VALIDATION_FAILED")
			return
		}
		input.Image = &Image{Filename: header.Filename, Reader: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		response.BadRequest(c, "Invalid image upload", "INVALID_FILE")
		return
	}

	result, err := h.service.Submit(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, result, "Report submitted")
}

// ListReports godoc
// @Summary List a submitter's reports
// @Tags reports
// @Produce json
// @Param wallet_address query string false "Submitter wallet address, defaults to the configured one"
// @Success 200 {object} response.APIResponse{data=[]Report}
// @Failure 500 {object} response.APIResponse
// @Router /reports [get]
func (h *Handler) ListReports(c *gin.Context) {
	var q ListReportsQuery
	_ = c.ShouldBindQuery(&q)

	reports, err := h.service.ListByWallet(c.Request.Context(), q.WalletAddress)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, reports)
}
