package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the inventory-bearing catalog row. InStock mirrors Stock > 0.
type Product struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name        string            `gorm:"column:name;not null"`
	Brand       string            `gorm:"column:brand;not null"`
	Price       decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null"`
	Description *string           `gorm:"column:description"`
	Specs       map[string]string `gorm:"column:specs;type:jsonb;serializer:json"`
	ImageURL    *string           `gorm:"column:image_url"`
	Stock       int               `gorm:"column:stock;not null;default:0"`
	InStock     bool              `gorm:"column:in_stock;not null;default:false"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.InStock = p.Stock > 0
	return nil
}
