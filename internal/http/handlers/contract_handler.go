package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nomadhub/nomadhub-backend/internal/http/handlers/common"
	"github.com/nomadhub/nomadhub-backend/internal/service"
)

// ContractHandler обслуживает контракты и переходы escrow.
type ContractHandler struct {
	escrow *service.EscrowService
}

func NewContractHandler(escrow *service.EscrowService) *ContractHandler {
	return &ContractHandler{escrow: escrow}
}

// List обрабатывает GET /contracts.
func (h *ContractHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	contracts, err := h.escrow.ListContracts(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contracts": contracts})
}

// Get обрабатывает GET /contracts/:id.
func (h *ContractHandler) Get(c *gin.Context) {
	h.withIDs(c, func(userID, contractID uuid.UUID) {
		contract, err := h.escrow.GetContract(c.Request.Context(), userID, contractID)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, contract)
	})
}

// Fund обрабатывает POST /contracts/:id/fund.
func (h *ContractHandler) Fund(c *gin.Context) {
	h.withIDs(c, func(userID, contractID uuid.UUID) {
		var req struct {
			Method string `json:"method" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}

		contract, err := h.escrow.Fund(c.Request.Context(), userID, contractID, req.Method)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, contract)
	})
}

// Release обрабатывает POST /contracts/:id/release.
func (h *ContractHandler) Release(c *gin.Context) {
	h.withIDs(c, func(userID, contractID uuid.UUID) {
		contract, err := h.escrow.Release(c.Request.Context(), userID, contractID)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, contract)
	})
}

// Refund обрабатывает POST /contracts/:id/refund.
func (h *ContractHandler) Refund(c *gin.Context) {
	h.withIDs(c, func(userID, contractID uuid.UUID) {
		contract, err := h.escrow.Refund(c.Request.Context(), userID, contractID)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, contract)
	})
}

func (h *ContractHandler) withIDs(c *gin.Context, fn func(userID, contractID uuid.UUID)) {
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

	fn(userID, contractID)
}
