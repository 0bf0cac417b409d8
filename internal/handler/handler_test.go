package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"estimator-service/pkg/inflow"

	"github.com/labstack/echo/v4"
)

func invokeWriteError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if werr := writeError(c, err); werr != nil {
		t.Fatalf("writeError returned error: %v", werr)
	}
	return rec
}

func TestWriteError_NotFound(t *testing.T) {
	rec := invokeWriteError(t, &inflow.NotFoundError{Resource: "product", ID: "p-404"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestWriteError_Conflict(t *testing.T) {
	rec := invokeWriteError(t, &inflow.ConflictError{ProductID: "p-1", Attempts: 2})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestWriteError_UpstreamStatusPassesThrough(t *testing.T) {
	rec := invokeWriteError(t, &inflow.UpstreamError{Status: http.StatusBadGateway, Body: "boom"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestWriteError_UnknownIs500(t *testing.T) {
	rec := invokeWriteError(t, errors.New("something else"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
