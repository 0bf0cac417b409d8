package handler

import (
	"net/http"

	"estimator-service/internal/updater"
	"estimator-service/pkg/inflow"
	"estimator-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UpdateProductRequest is the body of POST /api/products/update
type UpdateProductRequest struct {
	ProductID string                `json:"productId"`
	Updates   updater.ProductFields `json:"updates"`
}

// UpdateBOMsRequest is the body of POST /api/products/update-boms
type UpdateBOMsRequest struct {
	ProductID string             `json:"productId"`
	ItemBoms  []inflow.Component `json:"itemBoms"`
}

// UpdateProduct handles POST /api/products/update
func (h *Handler) UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.ProductID == "" {
		log.Warn("Missing productId in update request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "productId is required"})
	}

	log.Info("Updating product", zap.String("product_id", req.ProductID))

	snapshot, err := h.Updater.UpdateProduct(c.Request().Context(), req.ProductID, req.Updates)
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Product updated successfully",
		zap.String("product_id", snapshot.ProductID),
		zap.String("timestamp", snapshot.Timestamp))
	return c.JSON(http.StatusOK, snapshot)
}

// UpdateBOMs handles POST /api/products/update-boms
func (h *Handler) UpdateBOMs(c echo.Context) error {
	log := logger.FromContext(c)

	var req UpdateBOMsRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.ProductID == "" {
		log.Warn("Missing productId in BOM update request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "productId is required"})
	}
	if len(req.ItemBoms) == 0 {
		log.Warn("Missing itemBoms in BOM update request",
			zap.String("product_id", req.ProductID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "itemBoms is required"})
	}

	log.Info("Updating product BOMs",
		zap.String("product_id", req.ProductID),
		zap.Int("line_count", len(req.ItemBoms)))

	snapshot, err := h.Updater.UpdateBOMs(c.Request().Context(), req.ProductID, req.ItemBoms)
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Product BOMs updated successfully",
		zap.String("product_id", snapshot.ProductID),
		zap.String("timestamp", snapshot.Timestamp))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"updated": snapshot,
	})
}
