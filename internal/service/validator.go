package service

import (
	"fmt"
	"strings"
	"time"

	"familygraph_go/internal/model"
)

// Validator 数据验证服务
type Validator struct {
	errors []string
}

// NewValidator 创建验证器实例
func NewValidator() *Validator {
	return &Validator{
		errors: make([]string, 0),
	}
}

// Validate 执行验证并返回错误
func (v *Validator) Validate() error {
	if len(v.errors) > 0 {
		return NewError(ErrValidation,
			fmt.Sprintf("validation errors: %s", strings.Join(v.errors, "; ")), nil)
	}
	return nil
}

// Required 必填字段验证
func (v *Validator) Required(value string, fieldName string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors = append(v.errors, fmt.Sprintf("%s is required", fieldName))
	}
	return v
}

// MaxLength 最大长度验证
func (v *Validator) MaxLength(value string, fieldName string, max int) *Validator {
	if len(value) > max {
		v.errors = append(v.errors, fmt.Sprintf("%s must be at most %d characters", fieldName, max))
	}
	return v
}

// Date 日期格式验证，可选字段传空串直接通过
func (v *Validator) Date(value string, fieldName string) *Validator {
	if value == "" {
		return v
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		v.errors = append(v.errors, fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", fieldName))
	}
	return v
}

// Gender 性别验证
func (v *Validator) Gender(value string, fieldName string) *Validator {
	validGenders := map[string]bool{
		"男":      true,
		"女":      true,
		"male":   true,
		"female": true,
		"other":  true,
	}

	if !validGenders[value] {
		v.errors = append(v.errors, fmt.Sprintf("%s must be a valid gender", fieldName))
	}
	return v
}

// RelationKind 关系种类验证
func (v *Validator) RelationKind(value string, fieldName string) *Validator {
	if !model.RelationKind(value).IsValid() {
		v.errors = append(v.errors,
			fmt.Sprintf("%s must be one of: parent, child, spouse, sibling", fieldName))
	}
	return v
}

// SiblingType 兄弟姐妹类型验证，空值表示未指定，放行
func (v *Validator) SiblingType(value string, fieldName string) *Validator {
	if value == "" {
		return v
	}
	if !model.SiblingType(value).IsValid() {
		v.errors = append(v.errors,
			fmt.Sprintf("%s must be one of: full, half, step, adopted", fieldName))
	}
	return v
}

// MemberID 成员ID验证
func (v *Validator) MemberID(value uint, fieldName string) *Validator {
	if value == 0 {
		v.errors = append(v.errors, fmt.Sprintf("%s must be a positive id", fieldName))
	}
	return v
}
