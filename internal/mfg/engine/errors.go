package engine

import (
	"errors"
	"fmt"

	"github.com/DeathRay00/trackmint/internal/mfg/entity"
)

// 业务错误码，对外稳定
const (
	CodeValidation              = "VALIDATION_ERROR"
	CodeBusinessLogic           = "BUSINESS_LOGIC_ERROR"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeQuantityLimitExceeded   = "QUANTITY_LIMIT_EXCEEDED"
	CodeConflict                = "CONFLICT_ERROR"
	CodeNotFound                = "RESOURCE_NOT_FOUND"
	CodePermissionDenied        = "PERMISSION_DENIED"
)

// Error 业务错误：稳定错误码 + 结构化明细
// 基础设施错误（数据库连接等）不使用本类型，直接以 %w 包装上抛
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// IsCode err 链上是否存在指定错误码的业务错误
func IsCode(err error, code string) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == code
}

// AsError 提取 err 链上的业务错误
func AsError(err error) (*Error, bool) {
	var be *Error
	ok := errors.As(err, &be)
	return be, ok
}

// NewValidation 输入校验错误
func NewValidation(message, field string, value any) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: message,
		Details: map[string]any{"field": field, "value": value},
	}
}

// NewBusinessLogic 通用业务规则错误
func NewBusinessLogic(message string) *Error {
	return &Error{Code: CodeBusinessLogic, Message: message}
}

// NewInsufficientStock 库存不足，携带需求量与可用量
func NewInsufficientStock(productID string, required, available int) *Error {
	return &Error{
		Code:    CodeInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock. Required: %d, Available: %d", required, available),
		Details: map[string]any{
			"product_id":         productID,
			"required_quantity":  required,
			"available_quantity": available,
		},
	}
}

// NewInvalidTransition 非法的工单状态流转
func NewInvalidTransition(current, requested entity.WorkOrderStatus) *Error {
	return &Error{
		Code:    CodeInvalidStatusTransition,
		Message: fmt.Sprintf("Cannot transition work order from %s to %s", current, requested),
		Details: map[string]any{
			"current_status": string(current),
			"new_status":     string(requested),
		},
	}
}

// NewQuantityLimitExceeded 制造订单数量超出上限
func NewQuantityLimitExceeded(quantity, max int) *Error {
	return &Error{
		Code:    CodeQuantityLimitExceeded,
		Message: fmt.Sprintf("Manufacturing order quantity cannot exceed %d units", max),
		Details: map[string]any{"quantity": quantity, "max_quantity": max},
	}
}

// NewConflict 唯一性冲突（SKU、BOM版本、编码、单号）
func NewConflict(message, field string, value any) *Error {
	return &Error{
		Code:    CodeConflict,
		Message: message,
		Details: map[string]any{"conflicting_field": field, "conflicting_value": value},
	}
}

// NewNotFound 资源不存在
func NewNotFound(resourceType, resourceID string) *Error {
	msg := resourceType + " not found"
	if resourceID != "" {
		msg += " with ID: " + resourceID
	}
	return &Error{
		Code:    CodeNotFound,
		Message: msg,
		Details: map[string]any{"resource_type": resourceType, "resource_id": resourceID},
	}
}

// NewPermissionDenied 权限不足
func NewPermissionDenied(action string) *Error {
	return &Error{
		Code:    CodePermissionDenied,
		Message: "Permission denied for action: " + action,
		Details: map[string]any{"action": action},
	}
}
