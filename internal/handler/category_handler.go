package handler

import (
	"net/http"

	"estimator-service/internal/category"
	"estimator-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CategoryView is a category with its resolved top-level bucket
type CategoryView struct {
	CategoryID       string `json:"categoryId"`
	Name             string `json:"name"`
	ParentCategoryID string `json:"parentCategoryId,omitempty"`
	TopLevel         string `json:"topLevel"`
}

// ListCategories handles GET /api/categories, returning the upstream
// category forest with each node's top-level bucket resolved
func (h *Handler) ListCategories(c echo.Context) error {
	log := logger.FromContext(c)

	categories, err := h.Inflow.Categories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	views := make([]CategoryView, len(categories))
	for i, cat := range categories {
		views[i] = CategoryView{
			CategoryID:       cat.CategoryID,
			Name:             cat.Name,
			ParentCategoryID: cat.ParentCategoryID,
			TopLevel:         category.ResolveTopLevel(cat.CategoryID, categories),
		}
	}

	log.Info("Categories retrieved", zap.Int("count", len(views)))
	return c.JSON(http.StatusOK, views)
}
