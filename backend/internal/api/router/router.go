package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"caltrack/backend/config"
	"caltrack/backend/internal/api/handler"
	"caltrack/backend/internal/api/middleware"
	"caltrack/backend/pkg/jwt"
	"caltrack/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.PUT("/auth/pin", h.Auth.SetPin)

			// 进件模块
			intakes := authorized.Group("/intakes")
			{
				intakes.GET("", h.Intake.List)
				intakes.GET("/overdue", h.Intake.ListOverdue)
				intakes.GET("/:id", h.Intake.Get)
				intakes.POST("", h.Intake.Create)
				intakes.PUT("/:id", h.Intake.Update) // 已完成记录仅 admin（Service 层鉴权）
				intakes.POST("/:id/confirm", h.Intake.Confirm)
				intakes.DELETE("/:id", h.Intake.Delete) // ?force=true 物理删除，仅 admin（Service 层鉴权）
				intakes.POST("/:id/restore", middleware.RoleAuth("admin"), h.Intake.Restore)
			}

			// 完成件模块
			completions := authorized.Group("/completions")
			{
				completions.GET("", h.Completion.List)
				completions.GET("/due-soon", h.Completion.ListDueSoon)
				completions.GET("/:id", h.Completion.Get)
				completions.POST("", middleware.RoleAuth("admin", "technician"), h.Completion.Create)
				completions.PUT("/:id", h.Completion.Update) // 已完成记录仅 admin（Service 层鉴权）
				completions.POST("/:id/confirm-pickup", h.Completion.ConfirmPickup)
				completions.DELETE("/:id", h.Completion.Delete)
				completions.POST("/:id/restore", middleware.RoleAuth("admin"), h.Completion.Restore)
			}

			// 部门模块
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.List)
				departments.GET("/:id", h.Department.Get)
				departments.POST("", middleware.RoleAuth("admin"), h.Department.Create)
				departments.PUT("/:id", middleware.RoleAuth("admin"), h.Department.Update)
			}

			// 设备目录模块
			equipment := authorized.Group("/equipment")
			{
				equipment.GET("", h.Equipment.List)
				equipment.GET("/:id", h.Equipment.Get)
				equipment.POST("", middleware.RoleAuth("admin"), h.Equipment.Create)
				equipment.PUT("/:id", middleware.RoleAuth("admin"), h.Equipment.Update)
			}

			// 地点模块
			locations := authorized.Group("/locations")
			{
				locations.GET("", h.Location.List)
				locations.GET("/:id", h.Location.Get)
				locations.POST("", middleware.RoleAuth("admin"), h.Location.Create)
				locations.PUT("/:id", middleware.RoleAuth("admin"), h.Location.Update)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
