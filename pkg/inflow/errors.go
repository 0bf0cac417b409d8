package inflow

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// conflictMarker is the text inFlow embeds in the error body when a write
// presents a stale timestamp token. Some deployments return a plain 409
// instead, so IsConflict checks both forms.
const conflictMarker = "not the most recent version"

// UpstreamError represents a non-success response from the inventory API
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("inflow request failed: %d %s", e.Status, e.Body)
}

// NotFoundError indicates the requested entity does not exist upstream
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError indicates a write was rejected for a stale version token
// after the single allowed retry was exhausted
type ConflictError struct {
	ProductID string
	Attempts  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("product %s was modified concurrently, update rejected after %d attempts", e.ProductID, e.Attempts)
}

// IsConflict reports whether err is inFlow's optimistic-concurrency rejection,
// in either of its two surface forms (HTTP 409 or the conflict marker text)
func IsConflict(err error) bool {
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		return false
	}
	if upstream.Status == http.StatusConflict {
		return true
	}
	return strings.Contains(strings.ToLower(upstream.Body), conflictMarker)
}

// IsNotFound reports whether err indicates a missing upstream entity
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	var upstream *UpstreamError
	return errors.As(err, &upstream) && upstream.Status == http.StatusNotFound
}
