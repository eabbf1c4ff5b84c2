package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nomadhub/nomadhub-backend/internal/http/handlers/common"
	"github.com/nomadhub/nomadhub-backend/internal/service"
)

// CommunityHandler обслуживает ленту сообщества.
type CommunityHandler struct {
	community *service.CommunityService
}

func NewCommunityHandler(community *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{community: community}
}

// Create обрабатывает POST /community/posts.
func (h *CommunityHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		Title string   `json:"title" binding:"required"`
		Body  string   `json:"body" binding:"required"`
		Tags  []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	post, err := h.community.CreatePost(c.Request.Context(), userID, service.CreatePostInput{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// List обрабатывает GET /community/posts.
func (h *CommunityHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	posts, err := h.community.ListPosts(c.Request.Context(), c.Query("tag"), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// Get обрабатывает GET /community/posts/:id.
func (h *CommunityHandler) Get(c *gin.Context) {
	postID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	post, err := h.community.GetPost(c.Request.Context(), postID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// Delete обрабатывает DELETE /community/posts/:id.
func (h *CommunityHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	postID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.community.DeletePost(c.Request.Context(), postID, userID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}
