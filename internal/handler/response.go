package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"familygraph_go/internal/service"
)

// statusOf 把应用错误码映射为HTTP状态码
func statusOf(err error) int {
	switch service.CodeOf(err) {
	case service.ErrMemberNotFound, service.ErrUserNotFound:
		return http.StatusNotFound
	case service.ErrInvalidRequest, service.ErrParentLimit, service.ErrValidation:
		return http.StatusBadRequest
	case service.ErrWriteConflict:
		return http.StatusConflict
	case service.ErrUserExists:
		return http.StatusConflict
	case service.ErrInvalidPassword, service.ErrInvalidToken, service.ErrAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError 按错误类型返回统一的错误响应
func abortWithError(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": err.Error()})
}
