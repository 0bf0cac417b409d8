package handler

import (
	"net/http"

	"estimator-service/internal/category"
	"estimator-service/pkg/inflow"
	"estimator-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const searchPageSize = 25

// ProductSummary is the normalized product row returned to the dashboard
type ProductSummary struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Barcode   string `json:"barcode"`
	Category  string `json:"category"`
}

// SearchProducts handles GET /api/products/search. With productId it
// expands that product's BOM; otherwise it runs a paged smart-filter
// search.
func (h *Handler) SearchProducts(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	if productID := c.QueryParam("productId"); productID != "" {
		log.Info("Expanding product BOM", zap.String("product_id", productID))

		components, err := h.Inflow.ProductComponents(ctx, productID)
		if err != nil {
			return writeError(c, err)
		}
		if components == nil {
			components = []inflow.Component{}
		}
		return c.JSON(http.StatusOK, echo.Map{"components": components})
	}

	q := c.QueryParam("q")
	after := c.QueryParam("after")
	log.Info("Searching products",
		zap.String("query", q),
		zap.String("after", after))

	products, err := h.Inflow.SearchProducts(ctx, q, after, searchPageSize)
	if err != nil {
		return writeError(c, err)
	}

	categories, err := h.Inflow.Categories(ctx)
	if err != nil {
		return writeError(c, err)
	}

	summaries := make([]ProductSummary, len(products))
	for i, p := range products {
		summaries[i] = ProductSummary{
			ProductID: p.ProductID,
			Name:      p.Name,
			SKU:       p.SKU,
			Barcode:   p.Barcode,
			Category:  category.ResolveTopLevel(p.CategoryID, categories),
		}
	}

	lastID := ""
	if len(products) > 0 {
		lastID = products[len(products)-1].ProductID
	}

	log.Info("Products retrieved", zap.Int("count", len(summaries)))
	return c.JSON(http.StatusOK, echo.Map{
		"products": summaries,
		"lastId":   lastID,
		"cached":   true,
	})
}
