package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inaciosamuel465/estateflow/internal/config"
	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/reports"
	"github.com/inaciosamuel465/estateflow/internal/services"
	"github.com/inaciosamuel465/estateflow/internal/state"
)

// ContractHandler handles the admin contract surface: lifecycle, payments,
// and the PDF statement.
type ContractHandler struct {
	cfg             *config.Config
	controller      *state.Controller
	contractService services.IContractService
}

func NewContractHandler(cfg *config.Config, controller *state.Controller, contractService services.IContractService) *ContractHandler {
	return &ContractHandler{cfg: cfg, controller: controller, contractService: contractService}
}

// ListContracts handles GET /v1/admin/contracts. With a property_id query
// parameter the list narrows to that property's contract history.
func (h *ContractHandler) ListContracts(c *gin.Context) {
	if propertyID := c.Query("property_id"); propertyID != "" {
		c.JSON(http.StatusOK, gin.H{"contracts": h.controller.Store().ContractsForProperty(propertyID)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": h.controller.Store().Contracts()})
}

// ListExpiring handles GET /v1/admin/contracts/expiring: the active contracts
// whose end date falls within the requested number of days (default 30),
// queried server-side so the dashboard widget sees the whole book.
func (h *ContractHandler) ListExpiring(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	contracts, err := h.contractService.ListExpiringContracts(c.Request.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list expiring contracts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": contracts})
}

type createContractRequest struct {
	PropertyID        string     `json:"property_id" binding:"required"`
	Type              string     `json:"type" binding:"required"`
	ClientID          string     `json:"client_id" binding:"required"`
	OwnerID           string     `json:"owner_id"`
	Value             float64    `json:"value" binding:"required,gt=0"`
	CommissionRate    float64    `json:"commission_rate"`
	DueDay            int        `json:"due_day"`
	StartDate         time.Time  `json:"start_date" binding:"required"`
	EndDate           *time.Time `json:"end_date"`
	InstallmentsTotal *int       `json:"installments_total"`
}

// CreateContract handles POST /v1/admin/contracts. Creation cascades the
// property status through the controller.
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contractType := models.ContractType(req.Type)
	if contractType != models.ContractRent && contractType != models.ContractSale {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be rent or sale"})
		return
	}
	// Rent payments need a monthly due day; sale contracts may leave it unset.
	dueDayValid := req.DueDay >= 1 && req.DueDay <= 31
	if contractType == models.ContractRent && !dueDayValid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "due_day must be between 1 and 31 for rent contracts"})
		return
	}
	if contractType == models.ContractSale && req.DueDay != 0 && !dueDayValid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "due_day must be between 1 and 31"})
		return
	}
	if req.InstallmentsTotal != nil && *req.InstallmentsTotal <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "installments_total must be positive"})
		return
	}

	contract, err := h.controller.AddContract(c.Request.Context(), models.Contract{
		PropertyID:        req.PropertyID,
		Type:              contractType,
		ClientID:          req.ClientID,
		OwnerID:           req.OwnerID,
		Value:             req.Value,
		CommissionRate:    req.CommissionRate,
		DueDay:            req.DueDay,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		NextPaymentStatus: models.PaymentPending,
		InstallmentsTotal: req.InstallmentsTotal,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "contract accepted locally, persistence failed", "contract": contract})
		return
	}
	c.JSON(http.StatusCreated, contract)
}

type updateContractRequest struct {
	Status         *string    `json:"status"`
	Value          *float64   `json:"value"`
	CommissionRate *float64   `json:"commission_rate"`
	DueDay         *int       `json:"due_day"`
	EndDate        *time.Time `json:"end_date"`
}

// UpdateContract handles PATCH /v1/admin/contracts/:id.
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := state.ContractUpdate{
		Value:          req.Value,
		CommissionRate: req.CommissionRate,
		DueDay:         req.DueDay,
	}
	if req.Status != nil {
		status := models.ContractStatus(*req.Status)
		if status != models.ContractActive && status != models.ContractCompleted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		upd.Status = &status
	}
	if req.EndDate != nil {
		upd.EndDate = &req.EndDate
	}

	if err := h.controller.UpdateContract(c.Request.Context(), c.Param("id"), upd); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "update accepted locally, persistence failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteContract handles DELETE /v1/admin/contracts/:id.
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	if err := h.controller.DeleteContract(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "delete accepted locally, persistence failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RecordPayment handles POST /v1/admin/contracts/:id/payments.
func (h *ContractHandler) RecordPayment(c *gin.Context) {
	if err := h.controller.MarkContractPaid(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment recorded locally, persistence failed"})
		return
	}
	contract, _ := h.controller.Store().ContractByID(c.Param("id"))
	c.JSON(http.StatusOK, contract)
}

// RecordOwnerPayout handles POST /v1/admin/contracts/:id/owner-payout.
func (h *ContractHandler) RecordOwnerPayout(c *gin.Context) {
	if err := h.controller.MarkOwnerPaid(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "payout recorded locally, persistence failed"})
		return
	}
	contract, _ := h.controller.Store().ContractByID(c.Param("id"))
	c.JSON(http.StatusOK, contract)
}

// Statement handles GET /v1/admin/contracts/:id/statement, returning the
// contract statement as a PDF download.
func (h *ContractHandler) Statement(c *gin.Context) {
	contract, ok := h.controller.Store().ContractByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}

	data, err := reports.BuildContractStatement(h.cfg.AppName, contract, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render statement"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=contract-%s.pdf", contract.ID))
	c.Data(http.StatusOK, "application/pdf", data)
}
