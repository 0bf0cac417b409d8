package model

import (
	"time"

	"gorm.io/gorm"
)

// Estimate stores the cost inputs a staff member entered for a product,
// together with the computed unit cost, so an estimate can be re-opened
// and re-exported later. The live pricing itself is never persisted.
type Estimate struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	ProductID      string         `json:"product_id" gorm:"type:varchar(64);index;not null"`
	ProductName    string         `json:"product_name" gorm:"type:varchar(255)"`
	SKU            string         `json:"sku" gorm:"type:varchar(100)"`
	OrderQuantity  float64        `json:"order_quantity"`
	TouchPoints    float64        `json:"touch_points"`
	CostPerTouch   float64        `json:"cost_per_touch"`
	InflowCost     float64        `json:"inflow_cost"`
	TotalOzPerUnit float64        `json:"total_oz_per_unit"`
	GramsPerOz     float64        `json:"grams_per_oz"`
	UnitCost       float64        `json:"unit_cost"`
	CreatedBy      string         `json:"created_by" gorm:"type:varchar(255)"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
