package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"zerobin/client/internal/api"
	"zerobin/client/internal/chat"
)

// ChatForListing finds the chat attached to a listing, creating one when
// the lookup comes back 404.
func (h HandlerSet) ChatForListing(c *gin.Context) {
	listingID := c.Param("listingId")

	found, err := h.hub.FindOrCreateForListing(c.Request.Context(), listingID)
	if err != nil {
		h.renderAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat": found})
}

// ChatView opens (or reuses) the polling channel for a chat and returns the
// cached conversation snapshot.
func (h HandlerSet) ChatView(c *gin.Context) {
	ch := h.hub.Open(c.Param("id"))
	messages, status := ch.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"can_send": status.CanSend(),
		"messages": messages,
	})
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h HandlerSet) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ch := h.hub.Open(c.Param("id"))
	msg, err := ch.Send(c.Request.Context(), req.Content)
	if err != nil {
		if errors.Is(err, chat.ErrChannelLocked) || errors.Is(err, chat.ErrChannelClosed) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "alert": true})
			return
		}
		h.renderAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h HandlerSet) ConfirmDeal(c *gin.Context) {
	ch := h.hub.Open(c.Param("id"))
	status, err := ch.ConfirmDeal(c.Request.Context())
	if err != nil {
		h.renderAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h HandlerSet) UnwatchChat(c *gin.Context) {
	h.hub.Close(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// renderAPIError maps a backend failure onto this surface: upstream errors
// keep their status, transport failures become 502. The send/confirm flows
// flag the body as a blocking alert per their one-shot nature.
func (h HandlerSet) renderAPIError(c *gin.Context, err error) {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "alert": true})
		return
	}

	status := apiErr.Status
	if status == 0 {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": apiErr.Message, "alert": true})
}
