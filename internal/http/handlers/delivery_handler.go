package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nomadhub/nomadhub-backend/internal/http/handlers/common"
	"github.com/nomadhub/nomadhub-backend/internal/models"
	"github.com/nomadhub/nomadhub-backend/internal/service"
)

// DeliveryHandler обслуживает сдачи работ по контрактам.
type DeliveryHandler struct {
	deliveries *service.DeliveryService
}

func NewDeliveryHandler(deliveries *service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries}
}

// Submit обрабатывает POST /contracts/:id/deliveries.
func (h *DeliveryHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Checklist models.Checklist `json:"checklist"`
		Notes     *string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	delivery, err := h.deliveries.Submit(c.Request.Context(), userID, service.SubmitDeliveryInput{
		ContractID: contractID,
		Checklist:  req.Checklist,
		Notes:      req.Notes,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, delivery)
}

// ListByContract обрабатывает GET /contracts/:id/deliveries.
func (h *DeliveryHandler) ListByContract(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deliveries, err := h.deliveries.List(c.Request.Context(), userID, contractID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
}

// Accept обрабатывает POST /deliveries/:id/accept.
func (h *DeliveryHandler) Accept(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	deliveryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	delivery, err := h.deliveries.Accept(c.Request.Context(), userID, deliveryID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, delivery)
}

// AttachFile обрабатывает POST /deliveries/:id/files (multipart upload).
func (h *DeliveryHandler) AttachFile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	deliveryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "file is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		common.RespondBadRequest(c, "cannot read uploaded file")
		return
	}
	defer f.Close()

	delivery, err := h.deliveries.AttachFile(c.Request.Context(), userID, deliveryID, fileHeader.Filename, f)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, delivery)
}
