package pricing

import (
	"math"

	"estimator-service/pkg/inflow"
)

// PackagingItem is a packaging line chosen for an estimate. Its line cost
// scales with the order quantity, not with a per-BOM-line quantity.
type PackagingItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
	LineCost float64 `json:"line_cost"`
}

// LaborItem is a labor line, costed per touch
type LaborItem struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	CostPerTouch float64 `json:"cost_per_touch"`
	LineCost     float64 `json:"line_cost"`
}

// BulkTier is one row of the fixed order-quantity price table
type BulkTier struct {
	Qty    int     `json:"qty"`
	Price  float64 `json:"price"`
	Profit float64 `json:"profit"`
}

// SizePrice is the retail pricing for one package size
type SizePrice struct {
	MSRP      float64 `json:"msrp"`
	Profit    float64 `json:"profit"`
	Packaging float64 `json:"packaging"`
}

// Inputs are the user-editable cost parameters for an estimate
type Inputs struct {
	OrderQuantity  float64 `json:"order_quantity"`
	TouchPoints    float64 `json:"touch_points"`
	CostPerTouch   float64 `json:"cost_per_touch"`
	InflowCost     float64 `json:"inflow_cost"`
	MiscCost       float64 `json:"misc_cost"`
	TotalOzPerUnit float64 `json:"total_oz_per_unit"`
	GramsPerOz     float64 `json:"grams_per_oz"`
}

// ProductCalc is the derived pricing view of a product. It is recomputed
// from the snapshot and inputs on every change and never persisted.
type ProductCalc struct {
	ProductID     string               `json:"product_id"`
	Name          string               `json:"name"`
	SKU           string               `json:"sku"`
	Barcode       string               `json:"barcode"`
	Category      string               `json:"category"`
	FormulaKg     float64              `json:"formula_kg"`
	CostPerKg     float64              `json:"cost_per_kg"`
	BaseCost      float64              `json:"base_cost"`
	LaborCost     float64              `json:"labor_cost"`
	PackagingCost float64              `json:"packaging_cost"`
	InflowCost    float64              `json:"inflow_cost"`
	UnitCost      float64              `json:"unit_cost"`
	TieredPricing []BulkTier           `json:"tiered_pricing"`
	BulkPricing   map[string]SizePrice `json:"bulk_pricing"`
}

// bulkTable is the fixed per-unit price menu by order-quantity breakpoint.
// The 100000 tier is priced above the 50000 tier on purpose; do not reorder
// or smooth it without product-owner sign-off.
var bulkTable = []BulkTier{
	{Qty: 2500, Price: 3.95},
	{Qty: 5000, Price: 3.45},
	{Qty: 10000, Price: 2.95},
	{Qty: 20000, Price: 2.65},
	{Qty: 50000, Price: 2.35},
	{Qty: 100000, Price: 2.45},
}

// sizeTable maps retail package sizes to their fill weight, MSRP and
// packaging cost
var sizeTable = []struct {
	Label     string
	Oz        float64
	MSRP      float64
	Packaging float64
}{
	{Label: "2 oz", Oz: 2, MSRP: 12.99, Packaging: 0.55},
	{Label: "4 oz", Oz: 4, MSRP: 19.99, Packaging: 0.75},
	{Label: "8 oz", Oz: 8, MSRP: 29.99, Packaging: 1.10},
	{Label: "16 oz", Oz: 16, MSRP: 49.99, Packaging: 1.65},
}

// num coerces invalid numeric input to 0
func num(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// BaseCost sums the authoritative line costs of a product's BOM
func BaseCost(components []inflow.Component) float64 {
	total := 0.0
	for _, c := range components {
		total += num(c.LineCost)
	}
	return total
}

// LaborCost is the total cost of handling the product
func LaborCost(touchPoints, costPerTouch float64) float64 {
	return num(touchPoints) * num(costPerTouch)
}

// PackagingCost sums packaging line costs
func PackagingCost(items []PackagingItem) float64 {
	total := 0.0
	for _, item := range items {
		total += num(item.LineCost)
	}
	return total
}

// UnitCost is the all-in cost of one order
func UnitCost(base, packaging, labor, misc float64) float64 {
	return num(base) + num(packaging) + num(labor) + num(misc)
}

// Profit is the margin at a given unit price
func Profit(unitPrice, unitCost float64) float64 {
	return num(unitPrice) - num(unitCost)
}

// BulkPricing returns the fixed quantity-tier menu with profit computed
// against the given unit cost. Always six tiers, in table order.
func BulkPricing(unitCost float64) []BulkTier {
	tiers := make([]BulkTier, len(bulkTable))
	for i, tier := range bulkTable {
		tiers[i] = BulkTier{
			Qty:    tier.Qty,
			Price:  tier.Price,
			Profit: Profit(tier.Price, unitCost),
		}
	}
	return tiers
}

// ComponentPercent is a component's share of the total BOM quantity.
// A zero total yields 0 rather than dividing by zero.
func ComponentPercent(c inflow.Component, totalQuantity float64) float64 {
	totalQuantity = num(totalQuantity)
	if totalQuantity == 0 {
		return 0
	}
	return num(c.Quantity) / totalQuantity * 100
}

// ScalePackaging recomputes packaging line costs for a new order quantity.
// Items keep their identity; only line costs change.
func ScalePackaging(items []PackagingItem, orderQuantity float64) []PackagingItem {
	scaled := make([]PackagingItem, len(items))
	for i, item := range items {
		item.LineCost = num(item.UnitCost) * num(orderQuantity)
		scaled[i] = item
	}
	return scaled
}

// SizePricing returns the retail size menu with profit computed from the
// cost of the fill weight plus that size's packaging
func SizePricing(costPerKg, gramsPerOz float64) map[string]SizePrice {
	costPerOz := num(costPerKg) / 1000 * num(gramsPerOz)

	sizes := make(map[string]SizePrice, len(sizeTable))
	for _, size := range sizeTable {
		fillCost := costPerOz*size.Oz + size.Packaging
		sizes[size.Label] = SizePrice{
			MSRP:      size.MSRP,
			Profit:    Profit(size.MSRP, fillCost),
			Packaging: size.Packaging,
		}
	}
	return sizes
}

// Calculate derives the full pricing view from a snapshot and the
// user-editable inputs
func Calculate(snapshot *inflow.ProductSnapshot, category string, packaging []PackagingItem, in Inputs) ProductCalc {
	packaging = ScalePackaging(packaging, in.OrderQuantity)

	base := BaseCost(snapshot.Components)
	labor := LaborCost(in.TouchPoints, in.CostPerTouch)
	packagingCost := PackagingCost(packaging)
	unit := UnitCost(base, packagingCost, labor, num(in.MiscCost)+num(in.InflowCost))

	formulaKg := num(in.OrderQuantity) * num(in.TotalOzPerUnit) * num(in.GramsPerOz) / 1000
	costPerKg := 0.0
	if formulaKg != 0 {
		costPerKg = base / formulaKg
	}

	return ProductCalc{
		ProductID:     snapshot.ProductID,
		Name:          snapshot.Name,
		SKU:           snapshot.SKU,
		Barcode:       snapshot.Barcode,
		Category:      category,
		FormulaKg:     formulaKg,
		CostPerKg:     costPerKg,
		BaseCost:      base,
		LaborCost:     labor,
		PackagingCost: packagingCost,
		InflowCost:    num(in.InflowCost),
		UnitCost:      unit,
		TieredPricing: BulkPricing(unit),
		BulkPricing:   SizePricing(costPerKg, in.GramsPerOz),
	}
}
