package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nomadhub/nomadhub-backend/internal/http/handlers/common"
	"github.com/nomadhub/nomadhub-backend/internal/service"
)

// ProposalHandler обслуживает отклики на проекты.
type ProposalHandler struct {
	proposals *service.ProposalService
	users     *service.UserService
}

func NewProposalHandler(proposals *service.ProposalService, users *service.UserService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, users: users}
}

// Submit обрабатывает POST /projects/:id/proposals.
func (h *ProposalHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Amount       float64 `json:"amount" binding:"required"`
		Currency     string  `json:"currency"`
		TimelineDays int     `json:"timeline_days" binding:"required"`
		Scope        string  `json:"scope" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	freelancer, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	proposal, err := h.proposals.Submit(c.Request.Context(), freelancer, service.SubmitProposalInput{
		ProjectID:    projectID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		TimelineDays: req.TimelineDays,
		Scope:        req.Scope,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// ListByProject обрабатывает GET /projects/:id/proposals.
func (h *ProposalHandler) ListByProject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposals, err := h.proposals.ListByProject(c.Request.Context(), userID, projectID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// ListMine обрабатывает GET /proposals/mine.
func (h *ProposalHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	proposals, err := h.proposals.ListMine(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// Get обрабатывает GET /proposals/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposals.Get(c.Request.Context(), userID, proposalID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Accept обрабатывает POST /proposals/:id/accept.
func (h *ProposalHandler) Accept(c *gin.Context) {
	h.withIDs(c, func(userID, proposalID uuid.UUID) {
		contract, err := h.proposals.Accept(c.Request.Context(), userID, proposalID)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusCreated, contract)
	})
}

// Reject обрабатывает POST /proposals/:id/reject.
func (h *ProposalHandler) Reject(c *gin.Context) {
	h.withIDs(c, func(userID, proposalID uuid.UUID) {
		proposal, err := h.proposals.Reject(c.Request.Context(), userID, proposalID)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, proposal)
	})
}

// Withdraw обрабатывает POST /proposals/:id/withdraw.
func (h *ProposalHandler) Withdraw(c *gin.Context) {
	h.withIDs(c, func(userID, proposalID uuid.UUID) {
		proposal, err := h.proposals.Withdraw(c.Request.Context(), userID, proposalID)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, proposal)
	})
}

func (h *ProposalHandler) withIDs(c *gin.Context, fn func(userID, proposalID uuid.UUID)) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	fn(userID, proposalID)
}
