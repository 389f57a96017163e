package service

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCode 错误码类型
type ErrorCode int

const (
	// 系统级错误码 (1-999)
	ErrSystem ErrorCode = iota + 1
	ErrConfig
	ErrDatabase
	ErrValidation
	ErrAuthentication
	ErrAuthorization
	ErrInternal

	// 业务级错误码 (1000-9999)
	ErrMemberNotFound ErrorCode = iota + 1000 // 直接请求的成员不存在
	ErrMissingRelative                        // 关系指向的成员缺失（遍历中跳过）
	ErrInvalidRequest                         // 非法请求：自链接、未知关系种类等
	ErrParentLimit                            // 超出2位父母上限
	ErrIntegrityViolation                     // 显式兄弟姐妹链接单边存在或两边类型不一致
	ErrWriteConflict                          // 双边写入未能原子提交
	ErrUserNotFound
	ErrUserExists
	ErrInvalidPassword
	ErrInvalidToken
)

// AppError 应用程序错误
type AppError struct {
	Code    ErrorCode              // 错误码
	Message string                 // 错误消息
	Err     error                  // 原始错误
	Stack   string                 // 堆栈信息
	Context map[string]interface{} // 上下文信息
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现errors.Unwrap接口
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError 创建新的应用程序错误
func NewError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Stack:   getStack(),
		Context: make(map[string]interface{}),
	}
}

// WithContext 添加上下文信息
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// IsCode 判断错误是否携带指定错误码
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf 提取错误码，非AppError返回ErrInternal
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// getStack 获取当前goroutine的堆栈信息
func getStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(fmt.Sprintf("%s:%d\n", frame.File, frame.Line))
		if !more {
			break
		}
	}
	return sb.String()
}

// ErrorHandler 错误处理服务
type ErrorHandler struct {
	logger *Logger
}

// NewErrorHandler 创建错误处理服务实例
func NewErrorHandler(logger *Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle 处理错误：完整性问题记警告并保留数据原状，其余记错误日志
func (h *ErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewError(ErrInternal, "internal error", err)
	}

	switch appErr.Code {
	case ErrIntegrityViolation:
		// 单边链接不判定权威方，只上报，等待人工修复
		h.logger.Warn("Integrity violation: %v context=%v", appErr, appErr.Context)
	case ErrMissingRelative:
		h.logger.Warn("Missing relative skipped: %v", appErr)
	default:
		h.logger.Error("Error occurred: %v\nStack trace:\n%s", appErr, appErr.Stack)
	}
}
