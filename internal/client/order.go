package client

import (
	"context"
	"fmt"
	"net/http"

	"commerce-console/internal/errs"
	"commerce-console/internal/models"

	"github.com/shopspring/decimal"
)

const orderService = "orders"

// Orders talks to the order endpoints of the commerce service. Orders are
// immutable once created, so there is no update call.
type Orders struct {
	baseURL string
	hc      *http.Client
}

// NewOrders creates an order client for the given base URL.
func NewOrders(baseURL string, hc *http.Client) *Orders {
	if hc == nil {
		hc = DefaultHTTPClient()
	}
	return &Orders{baseURL: baseURL, hc: hc}
}

type orderPayload struct {
	ProductID  int64           `json:"product_id"`
	GroupBuyID int64           `json:"groupbuy_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// List fetches every order.
func (c *Orders) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := doJSON(ctx, c.hc, orderService, http.MethodGet,
		c.baseURL+"/orders", "", nil, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Get fetches one order by id.
func (c *Orders) Get(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := doJSON(ctx, c.hc, orderService, http.MethodGet,
		fmt.Sprintf("%s/orders/%d", c.baseURL, id), "", nil, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Create submits an order draft. The total price must already be computed
// by the pricing engine; this client never derives it.
func (c *Orders) Create(ctx context.Context, d models.OrderDraft) (*models.Order, error) {
	switch {
	case d.ProductID <= 0:
		return nil, errs.Validation("product_id", "must reference a product")
	case d.GroupBuyID <= 0:
		return nil, errs.Validation("groupbuy_id", "must reference a group buy")
	case d.Quantity < 1:
		return nil, errs.Validation("quantity", "must be at least 1")
	case d.TotalPrice.Sign() <= 0:
		return nil, errs.ValidationReason(errs.ReasonNonpositiveTotal)
	}

	var order models.Order
	err := doJSON(ctx, c.hc, orderService, http.MethodPost,
		c.baseURL+"/orders", "",
		orderPayload{
			ProductID:  d.ProductID,
			GroupBuyID: d.GroupBuyID,
			Quantity:   d.Quantity,
			TotalPrice: d.TotalPrice,
		}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete removes the order by id.
func (c *Orders) Delete(ctx context.Context, id int64) error {
	return doJSON(ctx, c.hc, orderService, http.MethodDelete,
		fmt.Sprintf("%s/orders/%d", c.baseURL, id), "", nil, nil)
}
