package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/pocketfolio/pocketfolio/internal/core/ports/services"
	"github.com/pocketfolio/pocketfolio/internal/dto"
	"github.com/pocketfolio/pocketfolio/internal/middleware"
	"github.com/pocketfolio/pocketfolio/internal/platform/config"
)

// billingHandler exposes manual triggers for the billing jobs alongside
// statement lookups. The scheduler drives the same service methods.
type billingHandler struct {
	billingService portssvc.BillingSvcFacade
	location       *time.Location
}

func newBillingHandler(bs portssvc.BillingSvcFacade, cfg *config.Config) *billingHandler {
	loc, err := time.LoadLocation(cfg.BillingTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &billingHandler{billingService: bs, location: loc}
}

// registerBillingRoutes registers routes related to the statement lifecycle.
func registerBillingRoutes(rg *gin.RouterGroup, billingService portssvc.BillingSvcFacade, cfg *config.Config) {
	h := newBillingHandler(billingService, cfg)

	billing := rg.Group("/billing")
	{
		billing.POST("/accounts/:id/close", h.closeStatement)
		billing.POST("/close-day", h.runCloseDay)
		billing.POST("/autopay", h.runAutopay)
		billing.GET("/statements/:id", h.getStatement)
	}
}

// todayOrRequested resolves the civil date a batch job should run for.
func (h *billingHandler) todayOrRequested(req dto.BillingRunRequest) time.Time {
	if req.Date != nil && !req.Date.IsZero() {
		return req.Date.Time()
	}
	y, m, d := time.Now().In(h.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// closeStatement godoc
// @Summary Close a statement for an account
// @Description Freezes the billing period ending at the given closing date; repeating the call is a no-op
// @Tags billing
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body dto.CloseStatementRequest true "Closing date"
// @Success 200 {object} dto.StatementResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Security BearerAuth
// @Router /billing/accounts/{id}/close [post]
func (h *billingHandler) closeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CloseStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for closeStatement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	if req.ClosingDate.IsZero() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "closingDate is required"})
		return
	}

	st, err := h.billingService.CloseForAccountOnDate(c.Request.Context(), c.Param("id"), req.ClosingDate.Time())
	if err != nil {
		respondError(c, err, "Failed to close statement")
		return
	}
	c.JSON(http.StatusOK, dto.ToStatementResponse(st))
}

// runCloseDay godoc
// @Summary Run the daily statement close
// @Description Closes every credit card whose closing day matches the given date (defaults to today in the billing time zone)
// @Tags billing
// @Accept json
// @Produce json
// @Param request body dto.BillingRunRequest false "Run date"
// @Success 202 "Accepted"
// @Security BearerAuth
// @Router /billing/close-day [post]
func (h *billingHandler) runCloseDay(c *gin.Context) {
	var req dto.BillingRunRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.billingService.AutoCloseForDay(c.Request.Context(), h.todayOrRequested(req)); err != nil {
		respondError(c, err, "Daily close run failed")
		return
	}
	c.Status(http.StatusAccepted)
}

// runAutopay godoc
// @Summary Run autopay for due statements
// @Description Settles every closed statement due on the given date (defaults to today in the billing time zone); re-runs are no-ops
// @Tags billing
// @Accept json
// @Produce json
// @Param request body dto.BillingRunRequest false "Run date"
// @Success 202 "Accepted"
// @Security BearerAuth
// @Router /billing/autopay [post]
func (h *billingHandler) runAutopay(c *gin.Context) {
	var req dto.BillingRunRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.billingService.AutopayDueStatements(c.Request.Context(), h.todayOrRequested(req)); err != nil {
		respondError(c, err, "Autopay run failed")
		return
	}
	c.Status(http.StatusAccepted)
}

// getStatement godoc
// @Summary Get a statement by ID
// @Tags billing
// @Produce json
// @Param id path string true "Statement ID"
// @Success 200 {object} dto.StatementResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /billing/statements/{id} [get]
func (h *billingHandler) getStatement(c *gin.Context) {
	st, err := h.billingService.GetStatementByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve statement")
		return
	}
	c.JSON(http.StatusOK, dto.ToStatementResponse(st))
}
