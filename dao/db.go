package dao

import (
	"knowflow-agent-backend/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Store 封装数据库句柄，在请求处理链路中显式传递
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return NewStore(db), nil
}

// Migrate 创建或更新所有持久化模型对应的表结构
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Session{},
		&model.Message{},
		&model.MCPServer{},
		&model.MCPTool{},
	)
}
