package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nomadhub/nomadhub-backend/internal/fiscal"
	"github.com/nomadhub/nomadhub-backend/internal/http/handlers/common"
	"github.com/nomadhub/nomadhub-backend/internal/service"
)

// FiscalHandler обслуживает фискальные отчёты.
type FiscalHandler struct {
	fiscal *service.FiscalService
}

func NewFiscalHandler(f *service.FiscalService) *FiscalHandler {
	return &FiscalHandler{fiscal: f}
}

// Report обрабатывает GET /fiscal/report.
// Query: period=monthly|quarterly|yearly, year, month (1..12), quarter (0..3).
func (h *FiscalHandler) Report(c *gin.Context) {
	userID, kind, year, month, quarter, ok := h.parseParams(c)
	if !ok {
		return
	}

	report, err := h.fiscal.Report(c.Request.Context(), userID, kind, year, month, quarter)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportCSV обрабатывает GET /fiscal/export.
func (h *FiscalHandler) ExportCSV(c *gin.Context) {
	userID, kind, year, month, quarter, ok := h.parseParams(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("ledger_%s_%d.csv", kind, year)
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := h.fiscal.ExportCSV(c.Request.Context(), c.Writer, userID, kind, year, month, quarter); err != nil {
		_ = c.Error(err)
	}
}

func (h *FiscalHandler) parseParams(c *gin.Context) (uuid.UUID, string, int, time.Month, int, bool) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return uuid.Nil, "", 0, 0, 0, false
	}

	kind := c.DefaultQuery("period", fiscal.PeriodYearly)
	now := time.Now().UTC()

	year := common.ParseIntQuery(c, "year", now.Year())
	month := time.Month(common.ParseIntQuery(c, "month", int(now.Month())))
	quarter := common.ParseIntQuery(c, "quarter", fiscal.QuarterOf(now))

	return userID, kind, year, month, quarter, true
}
