package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zerobin/client/internal/models"
	"zerobin/client/internal/session"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redirect, ok := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": h.sessions.LastError()})
		return
	}

	snap := h.sessions.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"redirect": redirect,
		"user":     snap.User,
	})
}

type registerRequest struct {
	Email       string          `json:"email" binding:"required,email"`
	FullName    string          `json:"full_name" binding:"required"`
	Password    string          `json:"password" binding:"required,min=8"`
	PhoneNumber string          `json:"phone_number" binding:"required"`
	UserType    models.UserType `json:"user_type" binding:"required,oneof=citizen collector kabadiwala"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok := h.sessions.Register(c.Request.Context(), models.RegisterInput{
		Email:       req.Email,
		FullName:    req.FullName,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		UserType:    req.UserType,
	})
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.sessions.LastError()})
		return
	}

	// Registration never authenticates; the caller is sent to log in.
	c.JSON(http.StatusOK, gin.H{"redirect": session.RouteLogin})
}

func (h HandlerSet) Logout(c *gin.Context) {
	redirect := h.sessions.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"redirect": redirect})
}

func (h HandlerSet) Session(c *gin.Context) {
	snap := h.sessions.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"state": snap.State,
		"user":  snap.User,
	})
}
