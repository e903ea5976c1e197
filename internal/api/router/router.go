package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"memonotes/config"
	"memonotes/internal/api/handler"
	"memonotes/internal/api/middleware"
	"memonotes/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitMB))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	generateLimit := middleware.RateLimit(rdb, cfg.Generation.RateLimit, cfg.Generation.RateWindow, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		ws := v1.Group("/workspaces/:owner_id")
		{
			ws.GET("", h.Workspace.GetWorkspace)
			ws.PUT("", h.Workspace.ImportWorkspace)
			ws.DELETE("", h.Workspace.ResetWorkspace)
			ws.PUT("/style-examples", h.Workspace.SetStyleExamples)

			// 科目
			subjects := ws.Group("/subjects")
			{
				subjects.POST("", h.Curriculum.CreateSubject)
				subjects.PUT("/:subject_id", h.Curriculum.RenameSubject)
				subjects.DELETE("/:subject_id", h.Curriculum.DeleteSubject)
			}

			// 课程与科目分配
			courses := ws.Group("/courses")
			{
				courses.POST("", h.Curriculum.CreateCourse)
				courses.PUT("/:course_id", h.Curriculum.RenameCourse)
				courses.DELETE("/:course_id", h.Curriculum.DeleteCourse)
				courses.POST("/:course_id/subjects/:subject_id", h.Curriculum.AssignSubject)
				courses.DELETE("/:course_id/subjects/:subject_id", h.Curriculum.UnassignSubject)
				courses.PUT("/:course_id/subjects/:subject_id/worked-content", h.Curriculum.SetWorkedContent)
			}

			// 教学班、学生与评价
			groups := ws.Group("/class-groups")
			{
				groups.POST("", h.ClassGroup.CreateClassGroup)
				groups.PUT("/:group_id", h.ClassGroup.UpdateClassGroup)
				groups.DELETE("/:group_id", h.ClassGroup.DeleteClassGroup)

				groups.POST("/:group_id/students", h.ClassGroup.AddStudents)
				groups.POST("/:group_id/students/import", h.ClassGroup.ImportStudents)
				groups.PUT("/:group_id/students/:student_id", h.ClassGroup.RenameStudent)
				groups.DELETE("/:group_id/students/:student_id", h.ClassGroup.DeleteStudent)
				groups.PUT("/:group_id/students/:student_id/evaluations/:term", h.Evaluation.UpdateEvaluation)

				// 评语生成（调用外部模型，单独限流）
				groups.POST("/:group_id/generate", generateLimit, h.Report.Generate)
				groups.POST("/:group_id/regenerate", generateLimit, h.Report.Regenerate)

				// 导出
				groups.GET("/:group_id/export/:term/xlsx", h.Export.ExportExcel)
				groups.GET("/:group_id/export/:term/html", h.Export.ExportHTML)
			}
		}
	}

	return r
}
