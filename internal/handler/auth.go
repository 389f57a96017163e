package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"familygraph_go/internal/service"
)

// RegisterInput 注册入参
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput 登录入参
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler 认证接口
type AuthHandler struct {
	auth   *service.Auth
	logger *service.Logger
}

// NewAuthHandler 创建认证接口实例
func NewAuthHandler(auth *service.Auth, logger *service.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// Register 注册路由
func (h *AuthHandler) Register(public *gin.RouterGroup) {
	public.POST("/auth/register", h.RegisterUser)
	public.POST("/auth/login", h.Login)
}

// RegisterUser 注册新用户
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := service.NewValidator().
		Required(input.Username, "username").
		Required(input.Email, "email").
		Required(input.Password, "password").
		MaxLength(input.Username, "username", 100).
		Validate()
	if err != nil {
		abortWithError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login 登录并签发令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
