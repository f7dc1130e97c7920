package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jewelshop/internal/dto"
	"jewelshop/internal/middleware"
	"jewelshop/internal/model"
	"jewelshop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubSaleService returns err from every call and records the last request.
type stubSaleService struct {
	err     error
	lastReq dto.SaleRequest
	actor   service.Actor
}

func (s *stubSaleService) Create(_ context.Context, actor service.Actor, req dto.SaleRequest) (*dto.SaleResponse, error) {
	s.actor, s.lastReq = actor, req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SaleResponse{ID: uuid.NewString(), Sales: []dto.SaleItemResponse{}}, nil
}

func (s *stubSaleService) Update(_ context.Context, actor service.Actor, _ uuid.UUID, req dto.SaleRequest) (*dto.SaleResponse, error) {
	s.actor, s.lastReq = actor, req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SaleResponse{}, nil
}

func (s *stubSaleService) Delete(context.Context, service.Actor, uuid.UUID) error { return s.err }

func (s *stubSaleService) Get(_ context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SaleResponse{ID: id.String()}, nil
}

func (s *stubSaleService) List(context.Context, dto.PageQuery) (*dto.SaleListResponse, error) {
	return &dto.SaleListResponse{Data: []dto.SaleResponse{}}, s.err
}

func (s *stubSaleService) Receipt(_ context.Context, _ uuid.UUID, w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	_, err := w.Write([]byte("%PDF-1.3 stub"))
	return err
}

type stubStatsService struct {
	start, end time.Time
}

func (s *stubStatsService) Stats(_ context.Context, start, end time.Time) (*dto.StatsResponse, error) {
	s.start, s.end = start, end
	if end.Before(start) {
		return nil, fmt.Errorf("%w: startDate must not be after endDate", service.ErrValidation)
	}
	return &dto.StatsResponse{DailyData: []dto.DailyStats{}}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func salesRouter(svc service.SaleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	h := NewSalesHandler(svc)
	r.POST("/sales", h.Create)
	r.GET("/sales/:id", h.Get)
	r.GET("/sales/:id/receipt", h.Receipt)
	r.DELETE("/sales/:id", h.Delete)
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

func validSale() map[string]interface{} {
	return map[string]interface{}{
		"customerName":   "Ana",
		"globalDiscount": 5,
		"sales": []map[string]interface{}{
			{"productId": uuid.NewString(), "material": "gold", "qty": 2, "price": 100.5, "discount": 0},
		},
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCreateSale_BindsWireFormat(t *testing.T) {
	svc := &stubSaleService{}
	w := doJSON(salesRouter(svc), http.MethodPost, "/sales", validSale())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, svc.lastReq.Sales, 1)
	assert.Equal(t, "gold", svc.lastReq.Sales[0].Material)
	assert.Equal(t, 2, svc.lastReq.Sales[0].Qty)
	assert.Equal(t, "100.5", svc.lastReq.Sales[0].Price.String())
	assert.Equal(t, "5", svc.lastReq.GlobalDiscount.String())
}

func TestCreateSale_Validation(t *testing.T) {
	r := salesRouter(&stubSaleService{})

	w := doJSON(r, http.MethodPost, "/sales", map[string]interface{}{"sales": []interface{}{}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	bad := validSale()
	bad["sales"].([]map[string]interface{})[0]["material"] = "platinum"
	w = doJSON(r, http.MethodPost, "/sales", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/sales", bytes.NewBufferString("{"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaleErrors_MapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{
			"insufficient stock",
			&service.InsufficientStockError{Product: "Ring", Material: model.MaterialGold, Requested: 6, Available: 5},
			http.StatusBadRequest, "Product Ring (gold), requested 6, available 5",
		},
		{"validation", fmt.Errorf("%w: item 1: qty must be at least 1", service.ErrValidation), http.StatusBadRequest, "item 1: qty must be at least 1"},
		{"forbidden", fmt.Errorf("%w: You can only modify your own sales", service.ErrForbidden), http.StatusForbidden, "You can only modify your own sales"},
		{"not found", fmt.Errorf("%w: sale not found", service.ErrNotFound), http.StatusNotFound, "sale not found"},
		{"conflict", fmt.Errorf("%w: taken", service.ErrConflict), http.StatusConflict, "taken"},
		{"internal", fmt.Errorf("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(salesRouter(&stubSaleService{err: tt.err}), http.MethodPost, "/sales", validSale())
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.detail, detail(t, w))
		})
	}
}

func TestGetSale_InvalidID(t *testing.T) {
	w := doJSON(salesRouter(&stubSaleService{}), http.MethodGet, "/sales/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaleReceipt_IsPDF(t *testing.T) {
	w := doJSON(salesRouter(&stubSaleService{}), http.MethodGet, "/sales/"+uuid.NewString()+"/receipt", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "%PDF")
}

func TestDeleteSale(t *testing.T) {
	w := doJSON(salesRouter(&stubSaleService{}), http.MethodDelete, "/sales/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var m dto.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "Sale deleted successfully", m.Message)
}

func statsRouter(stats service.StatsService, now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewExpensesHandler(nil, stats)
	h.now = func() time.Time { return now }
	r.GET("/expenses/stats", h.Stats)
	return r
}

func TestStats_DefaultsToCurrentMonth(t *testing.T) {
	stats := &stubStatsService{}
	r := statsRouter(stats, time.Date(2026, 2, 14, 15, 0, 0, 0, time.UTC))

	w := doJSON(r, http.MethodGet, "/expenses/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), stats.start)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), stats.end)
	assert.JSONEq(t, `[]`, string(mustField(t, w, "dailyData")))
}

func TestStats_DateOnlyEndCoversWholeDay(t *testing.T) {
	stats := &stubStatsService{}
	r := statsRouter(stats, time.Now())

	w := doJSON(r, http.MethodGet, "/expenses/stats?startDate=2026-01-05&endDate=2026-01-05", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), stats.start)
	assert.Equal(t, time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), stats.end)

	w = doJSON(r, http.MethodGet, "/expenses/stats?startDate=2026-01-05T10:00:00Z&endDate=2026-01-05T12:00:00Z", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC), stats.end)
}

func TestStats_BadInput(t *testing.T) {
	r := statsRouter(&stubStatsService{}, time.Now())

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/expenses/stats?startDate=yesterday", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/expenses/stats?endDate=2026-13-01", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/expenses/stats?startDate=2026-02-02&endDate=2026-02-01", nil).Code)
}

func mustField(t *testing.T, w *httptest.ResponseRecorder, key string) json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body[key]
}
