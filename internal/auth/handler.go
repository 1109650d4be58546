package auth

import (
	"net/http"
	"strings"

	"menuwise/internal/apperror"
	"menuwise/internal/respond"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request")
		return
	}

	u, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusCreated, gin.H{"token": token, "user": u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.Error(c, apperror.ValidationFailed("email", "email and password are required"))
		return
	}

	u, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{"token": token, "user": u})
}

func (h *Handler) Verify(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" {
		respond.Error(c, apperror.Unauthorized("no token provided"))
		return
	}

	u, err := h.service.Verify(c.Request.Context(), token)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{"valid": true, "user": u})
}
