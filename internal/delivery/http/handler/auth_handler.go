package handler

import (
	"errors"
	"net/http"

	"portfolio-cms/internal/middleware"
	"portfolio-cms/internal/usecase/passwordreset"
	"portfolio-cms/internal/usecase/user"
	appErrors "portfolio-cms/pkg/errors"
	"portfolio-cms/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users *user.Service
	reset *passwordreset.Service
}

func NewAuthHandler(users *user.Service, reset *passwordreset.Service) *AuthHandler {
	return &AuthHandler{users: users, reset: reset}
}

// RegisterRoutes registers the unauthenticated auth endpoints.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.Login)
	router.POST("/reset-password", h.RequestReset)
	router.POST("/verify-reset-token", h.VerifyResetToken)
	router.POST("/update-password", h.UpdatePassword)
}

// RegisterSessionRoutes registers endpoints that need an authenticated session.
func (h *AuthHandler) RegisterSessionRoutes(router *gin.RouterGroup) {
	router.GET("/session", h.Session)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Session(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	c.JSON(http.StatusOK, user.ToSessionResponse(claims))
}

func (h *AuthHandler) RequestReset(c *gin.Context) {
	var req passwordreset.RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.reset.RequestReset(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) VerifyResetToken(c *gin.Context) {
	var req passwordreset.VerifyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, passwordreset.VerifyTokenResponse{Valid: false, Error: "Invalid request body"})
		return
	}

	resp, err := h.reset.VerifyToken(c.Request.Context(), &req)
	if err != nil {
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) {
			c.JSON(http.StatusBadRequest, passwordreset.VerifyTokenResponse{Valid: false, Error: appErr.Message})
			return
		}
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req passwordreset.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.reset.UpdatePassword(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
