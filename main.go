package main

import (
	"fmt"
	"log"
	"os"
	"windfarm-planner/config"
	"windfarm-planner/db"
	"windfarm-planner/editor"
	"windfarm-planner/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	fmt.Println("=== 海上风电场规划系统 ===")

	// 1. 加载配置 (.env 与环境变量)
	cfg := config.LoadConfig()

	// 2. 初始化数据库
	// 连接 PostgreSQL，自动迁移表结构
	// 如果是第一次运行，会自动将 SEED_FILE 指定的工程导入数据库
	db.InitDB(cfg, os.Getenv("SEED_FILE"))
	store := db.NewStore(db.DB)

	// 3. 从数据库加载工程
	fmt.Println("正在从数据库加载工程...")
	ed := editor.New(editor.Options{
		MaxTurbinesPerString: cfg.MaxTurbinesPerString,
		AutoRoute:            cfg.AutoRoute,
		Store:                store,
	})
	if err := ed.Load(); err != nil {
		log.Fatalf("从数据库加载工程失败: %v", err)
	}
	p := ed.Snapshot()
	fmt.Printf("工程加载成功! 节点数: %d, 电缆数: %d, 区域数: %d\n", len(p.Nodes), len(p.Cables), len(p.Areas))

	// 4. 将编辑器和用户存储传递给 handler
	handler.Editor = ed
	handler.Users = store
	handler.ConfigureAuth(cfg.JWTSecret, cfg.JWTTTL)

	// 5. 初始化 Gin 引擎
	r := gin.Default()
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// 静态文件服务 - 提供前端页面
	if _, err := os.Stat("./static"); err == nil {
		r.Static("/static", "./static")
		r.GET("/", func(c *gin.Context) {
			c.Redirect(302, "/static/index.html")
		})
	}

	// 6. 配置路由
	handler.SetupRoutes(r)

	// 7. 启动服务器
	fmt.Println("\n服务器启动中...")
	fmt.Printf("访问地址: http://localhost:%s\n", cfg.Port)
	fmt.Println("API 文档:")
	fmt.Println("  - POST   /api/login                 - 用户登录")
	fmt.Println("  - POST   /api/register              - 用户注册")
	fmt.Println("  - GET    /api/project               - 获取整个工程")
	fmt.Println("  - GET    /api/nodes                 - 获取节点 (?type=)")
	fmt.Println("  - GET    /api/nodes/nearest         - 最近节点")
	fmt.Println("  - GET    /api/nodes/:id/feeder      - 追踪馈线路径")
	fmt.Println("  - POST   /api/areas/:id/turbines    - 区域内布置风机")
	fmt.Println("  - POST   /api/routing               - 自动布线")
	fmt.Println("  - GET    /api/layout                - 示意图布局")
	fmt.Println("  - GET    /api/diagram               - 电气示意图")
	fmt.Println("  - GET    /api/export/geojson        - 导出 GeoJSON")
	fmt.Println("\n按 Ctrl+C 退出")

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}

// corsConfig 跨域配置, "*" 表示允许所有来源
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
