package updater

import (
	"context"

	"estimator-service/pkg/inflow"
	"estimator-service/prometheus"

	"go.uber.org/zap"
)

// Gateway is the slice of the inventory client the updater needs
type Gateway interface {
	Product(ctx context.Context, productID string, forceRefresh bool) (*inflow.ProductSnapshot, error)
	PutProduct(ctx context.Context, update inflow.ProductUpdate) (*inflow.ProductSnapshot, error)
}

// ProductFields are the partial updates a caller may apply to a product.
// Nil fields keep the value from the freshly fetched snapshot.
type ProductFields struct {
	Name         *string           `json:"name,omitempty"`
	SKU          *string           `json:"sku,omitempty"`
	Barcode      *string           `json:"barcode,omitempty"`
	CategoryID   *string           `json:"categoryId,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

// payloadBuilder turns a fresh snapshot into a write payload. The builder
// runs again on retry so the payload always carries the latest token.
type payloadBuilder func(snapshot *inflow.ProductSnapshot) inflow.ProductUpdate

// Updater writes product changes back to inFlow under its optimistic
// concurrency rules: fetch fresh, echo the version token, and on a
// conflict refetch and retry exactly once.
type Updater struct {
	gateway Gateway
	logger  *zap.Logger
}

// New creates an Updater
func New(gateway Gateway, logger *zap.Logger) *Updater {
	return &Updater{gateway: gateway, logger: logger}
}

// UpdateProduct applies partial field updates to a product and returns the
// resulting snapshot
func (u *Updater) UpdateProduct(ctx context.Context, productID string, fields ProductFields) (*inflow.ProductSnapshot, error) {
	return u.apply(ctx, productID, func(snapshot *inflow.ProductSnapshot) inflow.ProductUpdate {
		update := inflow.ProductUpdate{
			ProductID:    snapshot.ProductID,
			Timestamp:    snapshot.Timestamp,
			Name:         snapshot.Name,
			SKU:          snapshot.SKU,
			Barcode:      snapshot.Barcode,
			CategoryID:   snapshot.CategoryID,
			CustomFields: snapshot.CustomFields,
		}
		if fields.Name != nil {
			update.Name = *fields.Name
		}
		if fields.SKU != nil {
			update.SKU = *fields.SKU
		}
		if fields.Barcode != nil {
			update.Barcode = *fields.Barcode
		}
		if fields.CategoryID != nil {
			update.CategoryID = *fields.CategoryID
		}
		if fields.CustomFields != nil {
			update.CustomFields = fields.CustomFields
		}
		return update
	})
}

// UpdateBOMs replaces a product's BOM lines and returns the resulting
// snapshot
func (u *Updater) UpdateBOMs(ctx context.Context, productID string, itemBoms []inflow.Component) (*inflow.ProductSnapshot, error) {
	return u.apply(ctx, productID, func(snapshot *inflow.ProductSnapshot) inflow.ProductUpdate {
		return inflow.ProductUpdate{
			ProductID:  snapshot.ProductID,
			Timestamp:  snapshot.Timestamp,
			Components: itemBoms,
		}
	})
}

// apply runs the fetch → build → submit cycle. The fetch always forces a
// cache refresh so the payload never carries a stale token, and the retry
// rebuilds the payload from a second fresh fetch.
func (u *Updater) apply(ctx context.Context, productID string, build payloadBuilder) (*inflow.ProductSnapshot, error) {
	snapshot, err := u.gateway.Product(ctx, productID, true)
	if err != nil {
		if inflow.IsNotFound(err) {
			prometheus.RecordUpdateOutcome("not_found")
		} else {
			prometheus.RecordUpdateOutcome("error")
		}
		return nil, err
	}

	// A submitted write is not safe to abort mid-flight. Cancellation can
	// stop the protocol before a submit, but once past this point each PUT
	// runs to completion even if the caller went away.
	writeCtx := context.WithoutCancel(ctx)

	updated, err := u.gateway.PutProduct(writeCtx, build(snapshot))
	if err == nil {
		prometheus.RecordUpdateOutcome("success")
		return updated, nil
	}
	if !inflow.IsConflict(err) {
		prometheus.RecordUpdateOutcome("error")
		return nil, err
	}

	// Someone else wrote between our fetch and our submit. Refetch for the
	// new token and retry once; beyond that the caller must re-initiate.
	u.logger.Warn("Version conflict on product update, retrying once",
		zap.String("product_id", productID))
	prometheus.ConflictRetriesCounter.Inc()

	snapshot, err = u.gateway.Product(writeCtx, productID, true)
	if err != nil {
		prometheus.RecordUpdateOutcome("error")
		return nil, err
	}

	updated, err = u.gateway.PutProduct(writeCtx, build(snapshot))
	if err != nil {
		u.logger.Error("Product update failed after conflict retry",
			zap.String("product_id", productID),
			zap.Error(err))
		prometheus.RecordUpdateOutcome("conflict")
		return nil, &inflow.ConflictError{ProductID: productID, Attempts: 2}
	}

	prometheus.RecordUpdateOutcome("success")
	return updated, nil
}
