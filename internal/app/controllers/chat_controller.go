package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/app/services"
)

// ChatController handles chat endpoints
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// History returns one page of a community's chat grouped by day
func (cc *ChatController) History(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := cc.chatService.History(c.Request.Context(), communityID, userID, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Send stores a message and pushes it to the community's chat topic
func (cc *ChatController) Send(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := cc.chatService.Send(c.Request.Context(), communityID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Delete removes a message
func (cc *ChatController) Delete(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "messageId")
	if !ok {
		return
	}

	if err := cc.chatService.Delete(c.Request.Context(), communityID, userID, messageID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Message deleted"))
}
