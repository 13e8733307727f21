package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/inaciosamuel465/estateflow/internal/api/handlers"
	"github.com/inaciosamuel465/estateflow/internal/config"
	"github.com/inaciosamuel465/estateflow/internal/models"
)

func TestCreateContractCascadesPropertyStatus(t *testing.T) {
	controller := newTestController()
	controller.Store().SetProperties([]models.Property{
		{Base: models.Base{ID: "p1"}, Title: "Casa Azul", Status: models.PropertyAvailable},
	})
	h := handlers.NewContractHandler(&config.Config{AppName: "EstateFlow"}, controller, new(MockContractService))
	r := gin.New()
	r.POST("/contracts", h.CreateContract)

	body := `{"property_id":"p1","type":"rent","client_id":"u1","value":1200,"due_day":5,"start_date":"2026-02-01T00:00:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contracts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Contract
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Casa Azul", created.PropertyTitle)

	p, ok := controller.Store().PropertyByID("p1")
	require.True(t, ok)
	assert.Equal(t, models.PropertyRented, p.Status)
}

func TestCreateContractRejectsUnknownType(t *testing.T) {
	h := handlers.NewContractHandler(&config.Config{}, newTestController(), new(MockContractService))
	r := gin.New()
	r.POST("/contracts", h.CreateContract)

	body := `{"property_id":"p1","type":"lease","client_id":"u1","value":100,"start_date":"2026-02-01T00:00:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contracts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordPaymentCompletesFinalInstallment(t *testing.T) {
	controller := newTestController()
	total, paid := 2, 1
	controller.Store().SetContracts([]models.Contract{{
		Base:              models.Base{ID: "c1"},
		Status:            models.ContractActive,
		InstallmentsTotal: &total,
		InstallmentsPaid:  &paid,
	}})
	h := handlers.NewContractHandler(&config.Config{}, controller, new(MockContractService))
	r := gin.New()
	r.POST("/contracts/:id/payments", h.RecordPayment)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/contracts/c1/payments", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Contract
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.ContractCompleted, got.Status)
	require.NotNil(t, got.InstallmentsPaid)
	assert.Equal(t, 2, *got.InstallmentsPaid)
}

func TestStatementReturnsPDF(t *testing.T) {
	controller := newTestController()
	controller.Store().SetContracts([]models.Contract{{
		Base:          models.Base{ID: "c1"},
		PropertyTitle: "Casa Azul",
		Status:        models.ContractActive,
	}})
	h := handlers.NewContractHandler(&config.Config{AppName: "EstateFlow"}, controller, new(MockContractService))
	r := gin.New()
	r.GET("/contracts/:id/statement", h.Statement)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contracts/c1/statement", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestCreateContractRejectsMissingDueDayForRent(t *testing.T) {
	h := handlers.NewContractHandler(&config.Config{}, newTestController(), new(MockContractService))
	r := gin.New()
	r.POST("/contracts", h.CreateContract)

	body := `{"property_id":"p1","type":"rent","client_id":"u1","value":1200,"start_date":"2026-02-01T00:00:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contracts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, "rent contracts need a monthly due day")
}

func TestCreateContractAllowsSaleWithoutDueDay(t *testing.T) {
	controller := newTestController()
	controller.Store().SetProperties([]models.Property{
		{Base: models.Base{ID: "p1"}, Title: "Casa Azul", Status: models.PropertyAvailable},
	})
	h := handlers.NewContractHandler(&config.Config{}, controller, new(MockContractService))
	r := gin.New()
	r.POST("/contracts", h.CreateContract)

	body := `{"property_id":"p1","type":"sale","client_id":"u1","value":95000,"start_date":"2026-02-01T00:00:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contracts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	p, _ := controller.Store().PropertyByID("p1")
	assert.Equal(t, models.PropertySold, p.Status)
}

func TestListContractsFiltersByProperty(t *testing.T) {
	controller := newTestController()
	controller.Store().SetContracts([]models.Contract{
		{Base: models.Base{ID: "c1"}, PropertyID: "p1"},
		{Base: models.Base{ID: "c2"}, PropertyID: "p2"},
	})
	h := handlers.NewContractHandler(&config.Config{}, controller, new(MockContractService))
	r := gin.New()
	r.GET("/contracts", h.ListContracts)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contracts?property_id=p2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Contracts []models.Contract `json:"contracts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Contracts, 1)
	assert.Equal(t, "c2", resp.Contracts[0].ID)
}

func TestListExpiringQueriesServerSide(t *testing.T) {
	contractService := new(MockContractService)
	contractService.On("ListExpiringContracts", mock.Anything, 14*24*time.Hour).
		Return([]models.Contract{{Base: models.Base{ID: "c1"}}}, nil)

	h := handlers.NewContractHandler(&config.Config{}, newTestController(), contractService)
	r := gin.New()
	r.GET("/contracts/expiring", h.ListExpiring)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contracts/expiring?days=14", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Contracts []models.Contract `json:"contracts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Contracts, 1)
	assert.Equal(t, "c1", resp.Contracts[0].ID)
	contractService.AssertExpectations(t)
}

func TestListExpiringRejectsBadDays(t *testing.T) {
	h := handlers.NewContractHandler(&config.Config{}, newTestController(), new(MockContractService))
	r := gin.New()
	r.GET("/contracts/expiring", h.ListExpiring)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contracts/expiring?days=-2", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
