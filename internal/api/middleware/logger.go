package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 记录每次请求的访问日志。
// 5xx 记 Error，4xx 记 Warn，其余记 Info；工作区和请求 ID 存在时一并带上。
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()

		status := c.Writer.Status()
		if ce := logger.Check(accessLevel(status), accessMessage(status)); ce != nil {
			ce.Write(accessFields(c, status, time.Since(begin))...)
		}
	}
}

func accessLevel(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func accessMessage(status int) string {
	switch {
	case status >= 500:
		return "请求处理失败"
	case status >= 400:
		return "请求被拒绝"
	default:
		return "请求完成"
	}
}

func accessFields(c *gin.Context, status int, took time.Duration) []zap.Field {
	req := c.Request
	fields := make([]zap.Field, 0, 10)
	fields = append(fields,
		zap.String("method", req.Method),
		zap.String("route", c.FullPath()),
		zap.String("path", req.URL.Path),
		zap.Int("status", status),
		zap.Int("bytes", c.Writer.Size()),
		zap.Duration("latency", took),
		zap.String("ip", c.ClientIP()),
	)
	if req.URL.RawQuery != "" {
		fields = append(fields, zap.String("query", req.URL.RawQuery))
	}
	if id := GetRequestID(c); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if owner := c.Param("owner_id"); owner != "" {
		fields = append(fields, zap.String("owner_id", owner))
	}
	// 处理器通过 c.Error 挂上的内部错误不会出现在响应里
	if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
		fields = append(fields, zap.String("errors", errs.String()))
	}
	return fields
}
