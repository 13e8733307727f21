package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inaciosamuel465/estateflow/internal/reports"
	"github.com/inaciosamuel465/estateflow/internal/services"
	"github.com/inaciosamuel465/estateflow/internal/state"
)

// ReportHandler serves the financial exports.
type ReportHandler struct {
	controller      *state.Controller
	contractService services.IContractService
}

func NewReportHandler(controller *state.Controller, contractService services.IContractService) *ReportHandler {
	return &ReportHandler{controller: controller, contractService: contractService}
}

// FinancialSummary handles GET /v1/admin/reports/financials, the dashboard
// numbers derived from the in-memory store.
func (h *ReportHandler) FinancialSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Store().Financials())
}

// FinancialWorkbook handles GET /v1/admin/reports/financials.xlsx. The export
// aggregates server-side rather than from the store so the numbers hold even
// on a freshly started instance.
func (h *ReportHandler) FinancialWorkbook(c *gin.Context) {
	ctx := c.Request.Context()
	summary, err := h.contractService.FinancialTotals(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate financials"})
		return
	}
	contracts, err := h.contractService.ListContracts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contracts"})
		return
	}

	now := time.Now()
	f, err := reports.BuildFinancialWorkbook(summary, contracts, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build workbook"})
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=financials-%s.xlsx", now.Format("2006-01-02")))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
