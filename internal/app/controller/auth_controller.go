package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/internal/app/service"
	apperrors "github.com/stickerverse/sticker-catalog/internal/errors"
	"github.com/stickerverse/sticker-catalog/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

func userResponse(user *model.User) gin.H {
	return gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		apperrors.RespondWithValidation(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email is already registered")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    userResponse(user),
		"tokens":  tokens,
	})
}

// Login handles user login
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		apperrors.RespondWithValidation(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		log.Error("Login failed", err, nil)
		apperrors.ParseAndRespond(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userResponse(user),
		"tokens":  tokens,
	})
}

// GetMyRole returns the caller's role, or null when the account is gone
// GET /api/v1/auth/me/role
func (ctrl *AuthController) GetMyRole(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	role, err := ctrl.authService.GetMyRole(email)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "get user role")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role": role,
	})
}

// BootstrapAdmin promotes the caller while no admin exists
// POST /api/v1/auth/bootstrap-admin
func (ctrl *AuthController) BootstrapAdmin(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	status, err := ctrl.authService.BootstrapAdmin(email)
	if err != nil {
		if errors.Is(err, service.ErrBootstrapClosed) {
			apperrors.Forbidden(c, "An admin already exists")
			return
		}
		apperrors.ParseAndRespond(c, err, "bootstrap admin")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"email":  email,
	})
}
