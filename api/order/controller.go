/*
Package order - 订单 API 控制器

错误处理原则:
1. 参数绑定错误: 使用 response.HandleError 直接返回 400
2. 业务错误: 使用 response.HandleAppError 自动映射状态码
3. 标识符格式错误（非 UUID 的订单号、非数字的用户号）由应用层解析时返回，映射为 400
*/
package order

import (
	"net/http"
	"strconv"

	"hexagonal/api/ctxutil"
	"hexagonal/api/response"
	orderapp "hexagonal/application/order"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Controller 订单控制器
type Controller struct {
	orderService *orderapp.ApplicationService
}

// NewController 创建订单控制器
func NewController(orderService *orderapp.ApplicationService) *Controller {
	return &Controller{
		orderService: orderService,
	}
}

// RegisterRoutes 注册订单路由
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	orderGroup := router.Group("/orders")
	{
		orderGroup.POST("", c.CreateOrder)
		orderGroup.GET("/:id", c.GetOrder)
		orderGroup.DELETE("/:id", c.RemoveOrder)
		orderGroup.GET("/user/:userId", c.GetUserOrders)
		orderGroup.GET("/user/:userId/open", c.GetOpenOrders)
		orderGroup.PUT("/:id/status", c.UpdateOrderStatus)
		orderGroup.POST("/:id/process", c.ProcessOrder)
	}
}

// CreateOrder 创建订单
// POST /api/v1/orders
func (c *Controller) CreateOrder(ctx *gin.Context) {
	var req orderapp.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	order, err := c.orderService.CreateOrder(ctxutil.WithRequestID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, order, "order created successfully")
}

// GetOrder 获取订单信息
// GET /api/v1/orders/:id
func (c *Controller) GetOrder(ctx *gin.Context) {
	order, err := c.orderService.GetOrder(ctxutil.WithRequestID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, order, "order retrieved successfully")
}

// GetUserOrders 获取用户的订单（按创建时间倒序分页）
// GET /api/v1/orders/user/:userId?page=1&page_size=20
func (c *Controller) GetUserOrders(ctx *gin.Context) {
	page, pageSize, ok := c.pagination(ctx)
	if !ok {
		return
	}

	orders, err := c.orderService.GetUserOrders(ctxutil.WithRequestID(ctx), ctx.Param("userId"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	total := len(orders)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	response.HandlePaginated(ctx, orders[start:end], response.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: int64(total),
		TotalPages: (total + pageSize - 1) / pageSize,
	}, "user orders retrieved successfully")
}

// GetOpenOrders 未完结订单
// GET /api/v1/orders/user/:userId/open
func (c *Controller) GetOpenOrders(ctx *gin.Context) {
	orders, err := c.orderService.GetOpenOrders(ctxutil.WithRequestID(ctx), ctx.Param("userId"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, orders, "open orders retrieved successfully")
}

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	Reason string `json:"reason"`
}

// UpdateOrderStatus 更新订单状态
// PUT /api/v1/orders/:id/status
func (c *Controller) UpdateOrderStatus(ctx *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	updateReq := orderapp.UpdateOrderStatusRequest{
		OrderID: ctx.Param("id"),
		Status:  req.Status,
		Reason:  req.Reason,
	}
	if err := c.orderService.UpdateOrderStatus(ctxutil.WithRequestID(ctx), updateReq); err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, nil, "order status updated successfully")
}

// ProcessOrder 处理订单
// POST /api/v1/orders/:id/process
func (c *Controller) ProcessOrder(ctx *gin.Context) {
	if err := c.orderService.ProcessOrder(ctxutil.WithRequestID(ctx), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, nil, "order processed successfully")
}

// RemoveOrder 删除已取消的订单
// DELETE /api/v1/orders/:id
func (c *Controller) RemoveOrder(ctx *gin.Context) {
	if err := c.orderService.RemoveOrder(ctxutil.WithRequestID(ctx), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleNoContent(ctx)
}

func (c *Controller) pagination(ctx *gin.Context) (page, pageSize int, ok bool) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		response.HandleError(ctx, err, "page must be a positive integer", http.StatusBadRequest)
		return 0, 0, false
	}
	pageSize, err = strconv.Atoi(ctx.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || pageSize < 1 || pageSize > maxPageSize {
		response.HandleError(ctx, err, "page_size must be between 1 and 100", http.StatusBadRequest)
		return 0, 0, false
	}
	return page, pageSize, true
}
