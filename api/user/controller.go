package user

import (
	"net/http"

	"hexagonal/api/ctxutil"
	"hexagonal/api/response"
	userapp "hexagonal/application/user"

	"github.com/gin-gonic/gin"
)

// Controller User controller
type Controller struct {
	userService *userapp.ApplicationService
}

// NewController Create user controller
func NewController(userService *userapp.ApplicationService) *Controller {
	return &Controller{
		userService: userService,
	}
}

// RegisterRoutes Register user routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	userGroup := router.Group("/users")
	{
		userGroup.POST("", c.CreateUser)
		userGroup.GET("/:id", c.GetUser)
		userGroup.PUT("/:id/status", c.UpdateUserStatus)
		userGroup.GET("/:id/total-spent", c.GetUserTotalSpent)
		userGroup.GET("/:id/can-order", c.CanPlaceOrder)
	}
}

// CreateUser Create user
// POST /api/v1/users
func (c *Controller) CreateUser(ctx *gin.Context) {
	var req userapp.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	user, err := c.userService.CreateUser(ctxutil.WithRequestID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, user, "user created successfully")
}

// GetUser Get user information
// GET /api/v1/users/:id
func (c *Controller) GetUser(ctx *gin.Context) {
	user, err := c.userService.GetUser(ctxutil.WithRequestID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, user, "user retrieved successfully")
}

// UpdateUserStatusRequest Update user status request
type UpdateUserStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// UpdateUserStatus Update user status
// PUT /api/v1/users/:id/status
func (c *Controller) UpdateUserStatus(ctx *gin.Context) {
	var req UpdateUserStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	updateReq := userapp.UpdateUserStatusRequest{
		UserID: ctx.Param("id"),
		Active: *req.Active,
	}
	if err := c.userService.UpdateUserStatus(ctxutil.WithRequestID(ctx), updateReq); err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, nil, "user status updated successfully")
}

// GetUserTotalSpent Get user total spent
// GET /api/v1/users/:id/total-spent
func (c *Controller) GetUserTotalSpent(ctx *gin.Context) {
	resp, err := c.userService.GetUserTotalSpent(ctxutil.WithRequestID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "user total spent retrieved successfully")
}

// CanPlaceOrder 用户是否满足下单条件；不满足时按领域错误返回原因
// GET /api/v1/users/:id/can-order
func (c *Controller) CanPlaceOrder(ctx *gin.Context) {
	ok, err := c.userService.CanUserPlaceOrder(ctxutil.WithRequestID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, gin.H{"can_place_order": ok}, "user can place order")
}
