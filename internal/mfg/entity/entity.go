package entity

import (
	"time"

	"gorm.io/gorm"
)

// Base 所有业务实体共用的基础字段：ID、时间戳、软删除、审计人
type Base struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" gorm:"index"`
	CreatedByID string     `json:"created_by_id,omitempty" gorm:"size:36"`
	UpdatedByID string     `json:"updated_by_id,omitempty" gorm:"size:36"`
}

// Retire 软删除：打上时间戳并记录操作人，不做物理删除
func (b *Base) Retire(now time.Time, actorID string) {
	b.DeletedAt = &now
	b.UpdatedByID = actorID
}

// IsRetired 是否已软删除
func (b *Base) IsRetired() bool {
	return b.DeletedAt != nil
}

// AutoMigrate 自动迁移所有业务表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&User{},
		&Product{},
		&WorkCenter{},
		&Location{},

		// BOM
		&BOM{},
		&BOMComponent{},
		&BOMOperation{},

		// 生产
		&ManufacturingOrder{},
		&WorkOrder{},

		// 库存
		&StockMove{},
	)
}
