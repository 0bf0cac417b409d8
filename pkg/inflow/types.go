package inflow

// Component is one BOM line of a product. LineCost comes from inFlow and is
// authoritative when present; the pricing package only recomputes it when
// the caller edits quantity or unit cost.
type Component struct {
	ChildProductID string  `json:"childProductId"`
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	UOM            string  `json:"uom"`
	UnitCost       float64 `json:"unitCost"`
	LineCost       float64 `json:"lineCost"`
}

// ProductSnapshot is a product as read from inFlow. Timestamp is the opaque
// version token required on writes; it is not a wall-clock time.
type ProductSnapshot struct {
	ProductID    string            `json:"productId"`
	Name         string            `json:"name"`
	SKU          string            `json:"sku"`
	Barcode      string            `json:"barcode"`
	CategoryID   string            `json:"categoryId"`
	Timestamp    string            `json:"timestamp"`
	Components   []Component       `json:"itemBoms"`
	CustomFields map[string]string `json:"customFields"`
}

// ProductUpdate is the write payload for a product PUT. Fields other than
// ProductID and Timestamp are optional; omitted fields keep their upstream
// values.
type ProductUpdate struct {
	ProductID    string            `json:"productId"`
	Timestamp    string            `json:"timestamp"`
	Name         string            `json:"name,omitempty"`
	SKU          string            `json:"sku,omitempty"`
	Barcode      string            `json:"barcode,omitempty"`
	CategoryID   string            `json:"categoryId,omitempty"`
	Components   []Component       `json:"itemBoms,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

// Category is one node of inFlow's category forest
type Category struct {
	CategoryID       string `json:"categoryId"`
	Name             string `json:"name"`
	ParentCategoryID string `json:"parentCategoryId,omitempty"`
}

// Contact is a customer or vendor record. Optional fields are normalized to
// empty strings, never null.
type Contact struct {
	ContactID   string `json:"contactId"`
	Name        string `json:"name"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
}
