package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/saurav0523/liaplusAI-Backend/internal/authz"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/internal/dto"
	"github.com/saurav0523/liaplusAI-Backend/internal/service"
	"github.com/saurav0523/liaplusAI-Backend/pkg/logger"
	"github.com/saurav0523/liaplusAI-Backend/pkg/response"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
	log         *logger.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Signup handles account creation
// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, domain.ErrInvalidRequest)
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.Created(c, "User registered successfully. Please verify your email.", result)
}

// Verify consumes an email verification token
// GET /auth/verify?token=
func (h *AuthHandler) Verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		writeError(c, h.log, domain.MissingField("token"))
		return
	}

	if err := h.authService.Verify(c.Request.Context(), token); err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessMessage(c, "Email verified successfully", dto.VerifyResponse{Verified: true})
}

// Login issues a session token
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, domain.ErrInvalidRequest)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessMessage(c, "Login successful", result)
}

// Me returns the authenticated account
// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := authz.ClaimsFrom(c.Request.Context())
	if !ok {
		writeError(c, h.log, domain.ErrUnauthenticated)
		return
	}

	account, err := h.authService.Me(c.Request.Context(), claims.SubjectID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.Success(c, account)
}

// UpdateMe changes the authenticated account's name
// PATCH /auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, domain.ErrInvalidRequest)
		return
	}

	claims, ok := authz.ClaimsFrom(c.Request.Context())
	if !ok {
		writeError(c, h.log, domain.ErrUnauthenticated)
		return
	}

	account, err := h.authService.UpdateMe(c.Request.Context(), claims.SubjectID, &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessMessage(c, "Profile updated successfully", account)
}
