package db

import (
	"errors"
	"fmt"
	"windfarm-planner/model"

	"gorm.io/gorm"
)

// ErrUserExists 用户名已被占用
var ErrUserExists = errors.New("用户名已存在")

// Store 基于 gorm 的工程存储, 实现 editor.Store
type Store struct {
	db *gorm.DB
}

// NewStore 创建存储
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load 读取整个工程, 按写入顺序返回
func (s *Store) Load() (model.ProjectData, error) {
	var data model.ProjectData
	if err := s.db.Order("seq").Find(&data.Nodes).Error; err != nil {
		return data, fmt.Errorf("读取节点失败: %w", err)
	}
	if err := s.db.Order("seq").Find(&data.Cables).Error; err != nil {
		return data, fmt.Errorf("读取电缆失败: %w", err)
	}
	if err := s.db.Order("seq").Find(&data.Areas).Error; err != nil {
		return data, fmt.Errorf("读取区域失败: %w", err)
	}
	return data, nil
}

// Save 在一个事务中整体替换工程 (先全部删除再批量插入)
func (s *Store) Save(data model.ProjectData) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []interface{}{&model.MapCable{}, &model.MapNode{}, &model.MapArea{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return fmt.Errorf("清空旧数据失败: %w", err)
			}
		}

		for i := range data.Nodes {
			data.Nodes[i].Seq = i
		}
		for i := range data.Cables {
			data.Cables[i].Seq = i
		}
		for i := range data.Areas {
			data.Areas[i].Seq = i
		}

		if len(data.Nodes) > 0 {
			if err := tx.CreateInBatches(data.Nodes, 100).Error; err != nil {
				return fmt.Errorf("插入节点失败: %w", err)
			}
		}
		if len(data.Cables) > 0 {
			if err := tx.CreateInBatches(data.Cables, 100).Error; err != nil {
				return fmt.Errorf("插入电缆失败: %w", err)
			}
		}
		if len(data.Areas) > 0 {
			if err := tx.CreateInBatches(data.Areas, 100).Error; err != nil {
				return fmt.Errorf("插入区域失败: %w", err)
			}
		}
		return nil
	})
}

// FindUser 按用户名查找用户
func (s *Store) FindUser(username string) (*model.User, error) {
	var user model.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser 新建用户
func (s *Store) CreateUser(user *model.User) error {
	if _, err := s.FindUser(user.Username); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.Create(user).Error
}
