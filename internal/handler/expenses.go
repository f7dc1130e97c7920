package handler

import (
	"net/http"
	"time"

	"jewelshop/internal/apierror"
	"jewelshop/internal/dto"
	"jewelshop/internal/service"

	"github.com/gin-gonic/gin"
)

type ExpensesHandler struct {
	svc   service.ExpenseService
	stats service.StatsService
	now   func() time.Time
}

func NewExpensesHandler(svc service.ExpenseService, stats service.StatsService) *ExpensesHandler {
	return &ExpensesHandler{svc: svc, stats: stats, now: time.Now}
}

func (h *ExpensesHandler) Create(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ExpensesHandler) List(c *gin.Context) {
	var page dto.PageQuery
	if !bindQuery(c, &page) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExpensesHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExpensesHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExpensesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Expense deleted successfully"})
}

// Stats godoc
// @Summary Sales, expenses and profit per day
// @Description Defaults to the current calendar month (UTC). A date-only endDate covers the whole day.
// @Tags expenses
// @Produce json
// @Param startDate query string false "YYYY-MM-DD or RFC 3339"
// @Param endDate query string false "YYYY-MM-DD or RFC 3339"
// @Success 200 {object} dto.StatsResponse
// @Failure 400 {object} apierror.APIError
// @Router /expenses/stats [get]
func (h *ExpensesHandler) Stats(c *gin.Context) {
	var q dto.StatsQuery
	if !bindQuery(c, &q) {
		return
	}

	now := h.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	if q.StartDate != "" {
		t, _, err := parseDate(q.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid startDate"))
			return
		}
		start = t
	}
	if q.EndDate != "" {
		t, dateOnly, err := parseDate(q.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid endDate"))
			return
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		end = t
	}

	resp, err := h.stats.Stats(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// parseDate accepts YYYY-MM-DD (reported as dateOnly) or RFC 3339.
func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	return t.UTC(), false, err
}
