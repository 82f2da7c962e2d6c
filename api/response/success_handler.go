package response

import (
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// HandleSuccess 返回 200；data 是 Resource 时附带标识符和版本号，并设置 ETag
func HandleSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, newResponse(c, http.StatusOK, data, message))
}

// HandleCreated 返回 201；新资源的标识符由仓储在保存时分配，Location 指向它
func HandleCreated(c *gin.Context, data interface{}, message string) {
	resp := newResponse(c, http.StatusCreated, data, message)
	if resp.Resource != nil {
		c.Header("Location", strings.TrimSuffix(c.Request.URL.Path, "/")+"/"+url.PathEscape(resp.Resource.ID))
	}
	c.JSON(http.StatusCreated, resp)
}

func HandleNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func HandlePaginated(c *gin.Context, data interface{}, pagination Pagination, message string) {
	requestID := getRequestID(c)
	c.JSON(http.StatusOK, &PaginatedResponse{
		Success:    true,
		Data:       data,
		Pagination: pagination,
		Message:    message,
		Code:       http.StatusOK,
		RequestID:  requestID,
	})
}

func newResponse(c *gin.Context, code int, data interface{}, message string) *Response {
	resp := &Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      code,
		RequestID: getRequestID(c),
	}
	if meta := resourceOf(data); meta != nil {
		resp.Resource = meta
		c.Header("ETag", `W/"`+strconv.FormatInt(meta.Version, 10)+`"`)
	}
	return resp
}

// resourceOf 取出标识符和版本号；没有标识符的资源（尚未保存）不带元数据
func resourceOf(data interface{}) *ResourceMeta {
	r, ok := data.(Resource)
	if !ok {
		return nil
	}
	// ⚠️ 注意：带类型的 nil 指针也实现了 Resource
	if v := reflect.ValueOf(data); v.Kind() == reflect.Ptr && v.IsNil() {
		return nil
	}
	id := r.ResourceID()
	if id == "" {
		return nil
	}
	return &ResourceMeta{ID: id, Version: r.ResourceVersion()}
}
