package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DeathRay00/trackmint/internal/mfg/engine"
	"github.com/DeathRay00/trackmint/internal/mfg/entity"
	"github.com/DeathRay00/trackmint/internal/mfg/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Product    *ProductHandler
	WorkCenter *WorkCenterHandler
	BOM        *BOMHandler
	Order      *OrderHandler
	Stock      *StockHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Product:    NewProductHandler(svc.Product),
		WorkCenter: NewWorkCenterHandler(svc.WorkCenter),
		BOM:        NewBOMHandler(svc.BOM),
		Order:      NewOrderHandler(svc.Order),
		Stock:      NewStockHandler(svc.Stock, svc.Report),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// NewPagination 构造分页信息
func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	return &Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应，前三位为HTTP状态码
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// 业务错误码到响应码的映射，前三位为HTTP状态码
var businessCodes = map[string]int{
	engine.CodeValidation:              42200,
	engine.CodeBusinessLogic:           40001,
	engine.CodeInsufficientStock:       40002,
	engine.CodeInvalidStatusTransition: 40003,
	engine.CodeQuantityLimitExceeded:   40004,
	engine.CodeConflict:                40900,
	engine.CodeNotFound:                40400,
	engine.CodePermissionDenied:        40300,
}

// RespondError 业务错误按错误码映射响应，其余一律按服务器错误处理
// 业务错误的稳定字符串码与结构化明细随 data 返回
func RespondError(c *gin.Context, err error) {
	be, ok := engine.AsError(err)
	if !ok {
		InternalError(c, err.Error())
		return
	}
	code, ok := businessCodes[be.Code]
	if !ok {
		code = 50000
	}
	c.JSON(code/100, Response{
		Code:    code,
		Message: be.Message,
		Data: gin.H{
			"error_code": be.Code,
			"details":    be.Details,
		},
	})
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetActor 从上下文还原请求用户（仅鉴权需要的字段）
func GetActor(c *gin.Context) *entity.User {
	actor := &entity.User{}
	actor.ID = GetUserID(c)
	if role, ok := c.Get("role"); ok {
		if r, ok := role.(string); ok {
			actor.Role = r
		}
	}
	return actor
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

// boolQuery 解析可选布尔查询参数
func boolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
