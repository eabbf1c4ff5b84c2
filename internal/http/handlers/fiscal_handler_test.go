package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nomadhub/nomadhub-backend/internal/http/middleware"
	"github.com/nomadhub/nomadhub-backend/internal/repository"
	"github.com/nomadhub/nomadhub-backend/internal/service"
)

func TestFiscalHandler_Report_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &FiscalHandler{fiscal: nil}
	r.GET("/fiscal/report", handler.Report)

	req, _ := http.NewRequest("GET", "/fiscal/report", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFiscalHandler_Report_InvalidPeriod(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewFiscalHandler(service.NewFiscalService(&repository.PaymentRepository{}))
	r.GET("/fiscal/report", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		handler.Report(c)
	})

	req, _ := http.NewRequest("GET", "/fiscal/report?period=weekly", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFiscalHandler_ExportCSV_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &FiscalHandler{fiscal: nil}
	r.GET("/fiscal/export", handler.ExportCSV)

	req, _ := http.NewRequest("GET", "/fiscal/export", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
