package db

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
	"windfarm-planner/config"
	"windfarm-planner/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB 连接 PostgreSQL, 自动迁移表结构
// 如果工程为空且存在 seedFile, 自动导入初始工程
func InitDB(cfg config.Config, seedFile string) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
	)

	// 带重试的数据库连接 (Docker 启动时数据库可能还没准备好)
	var err error
	maxRetries := 30
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		log.Printf("等待数据库就绪... (%d/%d): %v", i+1, maxRetries, err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatalf("无法连接数据库: %v", err)
	}

	// 自动迁移模式 (自动创建表结构)
	err = DB.AutoMigrate(&model.User{}, &model.MapNode{}, &model.MapCable{}, &model.MapArea{})
	if err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	var nodeCount int64
	DB.Model(&model.MapNode{}).Count(&nodeCount)
	if nodeCount == 0 && seedFile != "" {
		log.Printf("检测到工程为空，正在导入 %s...", seedFile)
		if err := importProject(seedFile); err != nil {
			log.Printf("警告: 导入工程失败: %v", err)
		} else {
			log.Println("工程导入成功!")
		}
	}

	log.Println("数据库连接并初始化成功！")
}

// importProject 从 JSON 文件导入工程到数据库
func importProject(filepath string) error {
	file, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}

	var data model.ProjectData
	if err := json.Unmarshal(file, &data); err != nil {
		return fmt.Errorf("解析 JSON 失败: %w", err)
	}

	return NewStore(DB).Save(data)
}
