package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memonotes/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// 声明长度超限时直接返回 413；未声明长度的请求由 MaxBytesReader 截断，读取时报错
func BodyLimit(maxMB int) gin.HandlerFunc {
	maxBytes := int64(maxMB) << 20
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
