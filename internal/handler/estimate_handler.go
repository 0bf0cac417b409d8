package handler

import (
	"net/http"

	"estimator-service/internal/model"
	"estimator-service/internal/pricing"
	"estimator-service/pkg/database"
	"estimator-service/pkg/logger"
	"estimator-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EstimateRequest defines the structure for saving an estimate
type EstimateRequest struct {
	ProductID   string         `json:"product_id"`
	ProductName string         `json:"product_name"`
	SKU         string         `json:"sku"`
	Inputs      pricing.Inputs `json:"inputs"`
	UnitCost    float64        `json:"unit_cost"`
}

// ListEstimates retrieves saved estimates, optionally filtered by product
func (h *Handler) ListEstimates(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Listing estimates")

	query := database.GetDB()
	if productID := c.QueryParam("product_id"); productID != "" {
		query = query.Where("product_id = ?", productID)
		log.Info("Filtering estimates by product", zap.String("product_id", productID))
	}

	var estimates []model.Estimate
	result := query.Order("created_at desc").Find(&estimates)
	if result.Error != nil {
		log.Error("Failed to list estimates", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve estimates",
		})
	}

	log.Info("Estimates retrieved successfully", zap.Int("count", len(estimates)))
	return c.JSON(http.StatusOK, estimates)
}

// CreateEstimate saves the cost inputs and computed unit cost for a product
func (h *Handler) CreateEstimate(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Saving estimate")

	var req EstimateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.ProductID == "" {
		log.Warn("Missing product_id in estimate request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id is required"})
	}

	createdBy, _ := c.Get("email").(string)

	estimate := model.Estimate{
		ProductID:      req.ProductID,
		ProductName:    req.ProductName,
		SKU:            req.SKU,
		OrderQuantity:  req.Inputs.OrderQuantity,
		TouchPoints:    req.Inputs.TouchPoints,
		CostPerTouch:   req.Inputs.CostPerTouch,
		InflowCost:     req.Inputs.InflowCost,
		TotalOzPerUnit: req.Inputs.TotalOzPerUnit,
		GramsPerOz:     req.Inputs.GramsPerOz,
		UnitCost:       req.UnitCost,
		CreatedBy:      createdBy,
	}

	result := database.GetDB().Create(&estimate)
	if result.Error != nil {
		log.Error("Failed to save estimate",
			zap.String("product_id", req.ProductID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to save estimate",
		})
	}

	prometheus.RecordEstimateOperation("create")
	log.Info("Estimate saved successfully",
		zap.Uint("estimate_id", estimate.ID),
		zap.String("product_id", estimate.ProductID))
	return c.JSON(http.StatusCreated, estimate)
}

// DeleteEstimate removes a saved estimate (soft delete)
func (h *Handler) DeleteEstimate(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting estimate", zap.String("estimate_id", id))

	result := database.GetDB().Delete(&model.Estimate{}, id)
	if result.Error != nil {
		log.Error("Failed to delete estimate",
			zap.String("estimate_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete estimate",
		})
	}
	if result.RowsAffected == 0 {
		log.Warn("Estimate not found for deletion", zap.String("estimate_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Estimate not found"})
	}

	prometheus.RecordEstimateOperation("delete")
	log.Info("Estimate deleted successfully", zap.String("estimate_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Estimate deleted successfully"})
}
