package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"familygraph_go/internal/model"
	"familygraph_go/internal/repository"
)

// AuthConfig 认证配置
type AuthConfig struct {
	SecretKey     string        // JWT密钥
	TokenDuration time.Duration // Token有效期
}

// Claims JWT声明
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Auth 认证服务
type Auth struct {
	config *AuthConfig
	db     *repository.DB
	logger *Logger
}

// NewAuth 创建认证服务实例
func NewAuth(config *AuthConfig, db *repository.DB, logger *Logger) *Auth {
	if config.TokenDuration <= 0 {
		config.TokenDuration = 24 * time.Hour
	}
	return &Auth{
		config: config,
		db:     db,
		logger: logger,
	}
}

// Register 注册新用户
func (a *Auth) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	var existing model.User
	err := a.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&existing).Error
	if err == nil {
		return nil, NewError(ErrUserExists, "username or email already taken", nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrDatabase, "failed to check existing user", err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: password,
		Role:     "user",
	}
	if err := a.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, NewError(ErrDatabase, "failed to create user", err)
	}

	a.logger.Info("User %s registered", username)
	return user, nil
}

// Login 校验用户名密码并签发JWT令牌
func (a *Auth) Login(ctx context.Context, username, password string) (string, error) {
	var user model.User
	err := a.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", NewError(ErrUserNotFound, "user not found", nil)
	}
	if err != nil {
		return "", NewError(ErrDatabase, "failed to load user", err)
	}

	if !user.CheckPassword(password) {
		return "", NewError(ErrInvalidPassword, "invalid password", nil)
	}

	return a.GenerateToken(&user)
}

// GenerateToken 生成JWT令牌
func (a *Auth) GenerateToken(user *model.User) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.SecretKey))
}

// ValidateToken 验证JWT令牌并返回声明
func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil {
		return nil, NewError(ErrInvalidToken, "invalid token", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, NewError(ErrInvalidToken, "invalid token claims", nil)
	}
	return claims, nil
}
