package handlers

import (
	"context"
	"net/http"

	"preparedness-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Service *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{Service: s}
}

type loginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	result, err := h.Service.Login(context.Background(), req.Role, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "login successful", gin.H{
		"token": result.Token,
		"role":  result.Role,
		"user": gin.H{
			"id":    result.User.ID,
			"name":  result.User.Name,
			"email": result.User.Email,
		},
	})
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	result, err := h.Service.Signup(context.Background(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	message := "account updated"
	if result.IsNew {
		status = http.StatusCreated
		message = "account created"
	}
	respond(c, status, message, gin.H{
		"token": result.Token,
		"role":  result.Role,
		"user": gin.H{
			"id":    result.User.ID,
			"name":  result.User.Name,
			"email": result.User.Email,
		},
	})
}
