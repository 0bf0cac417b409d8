package handler

import (
	"net/http"

	"estimator-service/pkg/inflow"
	"estimator-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContactView is the normalized customer/vendor row returned to the
// dashboard. Missing optional fields are empty strings, never null.
type ContactView struct {
	CustomerID  string `json:"customerId"`
	Name        string `json:"name"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
}

// ListCustomers handles GET /api/customers?smart=
func (h *Handler) ListCustomers(c echo.Context) error {
	log := logger.FromContext(c)
	smart := c.QueryParam("smart")
	log.Info("Searching customers", zap.String("query", smart))

	contacts, err := h.Inflow.Customers(c.Request().Context(), smart)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, normalizeContacts(contacts))
}

// ListVendors handles GET /api/vendors?smart=
func (h *Handler) ListVendors(c echo.Context) error {
	log := logger.FromContext(c)
	smart := c.QueryParam("smart")
	log.Info("Searching vendors", zap.String("query", smart))

	contacts, err := h.Inflow.Vendors(c.Request().Context(), smart)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, normalizeContacts(contacts))
}

func normalizeContacts(contacts []inflow.Contact) []ContactView {
	views := make([]ContactView, len(contacts))
	for i, contact := range contacts {
		views[i] = ContactView{
			CustomerID:  contact.ContactID,
			Name:        contact.Name,
			ContactName: contact.ContactName,
			Email:       contact.Email,
			Phone:       contact.Phone,
			Website:     contact.Website,
		}
	}
	return views
}
