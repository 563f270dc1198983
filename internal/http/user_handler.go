package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forum-account/internal/service"
)

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		jwtServ:  jwtServ,
	}
}

// GetUser maneja GET /user.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	user, err := h.userServ.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Register maneja POST /user/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.respondError(c, "register", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login maneja POST /user/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, "login", err)
		return
	}

	if h.jwtServ == nil {
		h.respondError(c, "login", errors.New("jwt not configured"))
		return
	}
	token, err := h.jwtServ.Issue(user.ID)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}

// UpdateUser maneja PUT /user.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.UpdateProfile(c.Request.Context(), userID, service.UpdateInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ForgotPassword maneja PUT /user/forgot/:email.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	user, err := h.userServ.ForgotPassword(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.respondError(c, "reset password", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// respondError traduce errores de servicio a codigos HTTP. Los errores
// internos se registran y se responden con un mensaje generico.
func (h *UserHandler) respondError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyNameOrEmail),
		errors.Is(err, service.ErrEmailOrNameUsed),
		errors.Is(err, service.ErrEmptyPassword),
		errors.Is(err, service.ErrEmptyName),
		errors.Is(err, service.ErrNameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login failed"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + op})
	}
}
