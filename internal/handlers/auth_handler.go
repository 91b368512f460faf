package handlers

import (
	"errors"
	"log"
	"net/http"

	"task-secretary-api/internal/auth"

	"github.com/gin-gonic/gin"
)

// CredentialsRequest represents the register and login payload
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/register
func (h *Handler) Register(c *gin.Context) {
	h.authenticate(c, h.Auth.Register)
}

// Login handles POST /api/login
func (h *Handler) Login(c *gin.Context) {
	h.authenticate(c, h.Auth.Login)
}

func (h *Handler) authenticate(c *gin.Context, fn func(email, password string) (auth.Session, error)) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Email and password are required",
		})
		return
	}

	session, err := fn(req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, auth.ErrBadCredentials), errors.Is(err, auth.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	case err != nil:
		log.Printf("auth: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process credentials"})
		return
	}

	c.JSON(http.StatusOK, session)
}
