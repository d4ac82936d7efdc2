package review

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/muhammedshamil8/CivicGuard/internal/pkg/pagination"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/response"
	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type ListQuery struct {
	Status string `form:"status"`
	Search string `form:"q"`
}

type ConfirmRequest struct {
	RewardAmount *float64 `json:"reward_amount"`
}

// ListReports godoc
// @Summary List reports for review
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param status query string false "all, pending, confirmed or rejected"
// @Param q query string false "Search wallet, description or location"
// @Param page query int false "Page number, omit for the full list"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} response.APIResponse{data=[]reports.Report}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /admin/reports [get]
func (h *Handler) ListReports(c *gin.Context) {
	var q ListQuery
	_ = c.ShouldBindQuery(&q)

	list, err := h.service.List(c.Request.Context(), q.Status, q.Search)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if page, limit, ok := pagination.FromQuery(c); ok {
		list = pagination.Page(c, list, page, limit)
	}
	response.Success(c, list)
}

// GetReport godoc
// @Summary Get one report
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.APIResponse{data=reports.Report}
// @Failure 404 {object} response.APIResponse
// @Router /admin/reports/{id} [get]
func (h *Handler) GetReport(c *gin.Context) {
	report, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, report)
}

// ConfirmReport godoc
// @Summary Confirm a report
// @Description Sets status confirmed with a positive reward (default 10) and forwards the report for anchoring.
// @Tags review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body ConfirmRequest false "Reward override"
// @Success 200 {object} response.APIResponse{data=ConfirmResult}
// @Failure 400 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 502 {object} response.APIResponse{data=ConfirmResult}
// @Router /admin/reports/{id}/confirm [post]
func (h *Handler) ConfirmReport(c *gin.Context) {
	var req ConfirmRequest
	// ContentLength is -1 for chunked bodies, so only a known-empty body skips binding.
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.BindJSONError(c, err)
			return
		}
	}

	result, err := h.service.Confirm(c.Request.Context(), c.Param("id"), req.RewardAmount)
	if err != nil {
		if result != nil && apperrors.Is(err, apperrors.KindAnchor) {
			var appErr *apperrors.Error
			apperrors.As(err, &appErr)
			response.ErrorWithData(c, response.StatusFor(err), "Report confirmed but anchoring failed", appErr.Code, result)
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, result, "Report confirmed")
}

// RejectReport godoc
// @Summary Reject a report
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.APIResponse{data=reports.Report}
// @Failure 409 {object} response.APIResponse
// @Router /admin/reports/{id}/reject [post]
func (h *Handler) RejectReport(c *gin.Context) {
	report, err := h.service.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, report, "Report rejected")
}

// BlacklistReport godoc
// @Summary Blacklist a report
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.APIResponse{data=reports.Report}
// @Failure 404 {object} response.APIResponse
// @Router /admin/reports/{id}/blacklist [post]
func (h *Handler) BlacklistReport(c *gin.Context) {
	report, err := h.service.Blacklist(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, report, "Report blacklisted")
}

// GetStats godoc
// @Summary Report counts for the dashboard
// @Tags review
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=Stats}
// @Router /admin/reports/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, stats)
}

// ListBlacklisted godoc
// @Summary List blacklisted reports
// @Tags review
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=[]reports.Report}
// @Router /admin/blacklist [get]
func (h *Handler) ListBlacklisted(c *gin.Context) {
	list, err := h.service.Blacklisted(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, list)
}
