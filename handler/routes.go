package handler

import "github.com/gin-gonic/gin"

// SetupRoutes 配置路由
func SetupRoutes(r *gin.Engine) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "ok",
		})
	})

	api := r.Group("/api")
	{
		// 公开接口 (无需认证)
		api.POST("/login", Login)
		api.POST("/register", Register)

		api.GET("/project", GetProject)
		api.GET("/nodes", GetNodes)
		api.GET("/nodes/nearest", NearestNode)
		api.GET("/nodes/:id", GetNodeByID)
		api.GET("/nodes/:id/feeder", GetFeederPath)
		api.GET("/layout", GetLayout)
		api.GET("/diagram", GetDiagram)
		api.GET("/export/geojson", ExportGeoJSON)

		// 修改工程需要认证
		authorized := api.Group("/")
		authorized.Use(AuthMiddleware())
		{
			authorized.PUT("/project", ImportProject)
			authorized.POST("/nodes", CreateNode)
			authorized.PUT("/nodes/:id/position", MoveNode)
			authorized.DELETE("/nodes/:id", DeleteNode)
			authorized.POST("/cables", CreateCable)
			authorized.DELETE("/cables/:id", DeleteCable)
			authorized.POST("/areas", CreateArea)
			authorized.DELETE("/areas/:id", DeleteArea)
			authorized.POST("/areas/:id/turbines", PlaceTurbines)
			authorized.POST("/routing", AutoRoute)
		}
	}
}
