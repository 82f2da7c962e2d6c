/*
Package response - API 层统一响应处理

设计原则:
1. HTTP 状态码映射放在 API 层，不污染领域层和应用层
2. 错误响应不暴露内部细节（堆栈、内部错误消息等）
3. 所有响应携带 RequestID 用于日志追踪
4. 内部错误统一返回 "internal server error"，真实错误只记录日志

响应格式:

	成功: { success: true, data: {...}, resource: { id: "...", version: 1 }, message: "...", code: 200, request_id: "..." }
	失败: { success: false, error: "ERROR_CODE", message: "用户可见消息", code: 4xx/5xx, request_id: "..." }
*/
package response

// RequestIDKey 是 gin context 中保存请求 ID 的键。
const RequestIDKey = "request_id"

// Response 是统一响应结构。
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"` // 错误码，不是错误详情
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	// Resource 只在 data 是单个已保存的聚合根时出现
	Resource *ResourceMeta `json:"resource,omitempty"`
}

// Resource 由带标识符和版本号的返回模型实现。
type Resource interface {
	ResourceID() string
	ResourceVersion() int64
}

// ResourceMeta 是聚合根的标识符和乐观锁版本号，同时写入 ETag。
type ResourceMeta struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
}

// PaginatedResponse 是分页响应结构。
type PaginatedResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
	Message    string      `json:"message"`
	Code       int         `json:"code"`
	RequestID  string      `json:"request_id,omitempty"`
}

// Pagination 表示分页信息。
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}
