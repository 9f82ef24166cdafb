package client

import (
	"context"
	"fmt"
	"net/http"

	"commerce-console/internal/errs"
	"commerce-console/internal/models"

	"github.com/shopspring/decimal"
)

const groupBuyService = "groupbuys"

// GroupBuys talks to the group-buy endpoints of the commerce service.
type GroupBuys struct {
	baseURL string
	hc      *http.Client
}

// NewGroupBuys creates a group-buy client for the given base URL.
func NewGroupBuys(baseURL string, hc *http.Client) *GroupBuys {
	if hc == nil {
		hc = DefaultHTTPClient()
	}
	return &GroupBuys{baseURL: baseURL, hc: hc}
}

type groupBuyPayload struct {
	ProductID       int64           `json:"product_id"`
	Discount        decimal.Decimal `json:"discount"`
	MinParticipants int             `json:"min_participants"`
	Status          models.Status   `json:"status"`
}

type joinPayload struct {
	GroupBuyID int64 `json:"groupbuy_id"`
}

// List fetches every group buy.
func (c *GroupBuys) List(ctx context.Context) ([]models.GroupBuy, error) {
	var groupBuys []models.GroupBuy
	err := doJSON(ctx, c.hc, groupBuyService, http.MethodGet,
		c.baseURL+"/groupbuys", "", nil, &groupBuys)
	if err != nil {
		return nil, err
	}
	return groupBuys, nil
}

// Get fetches one group buy by id.
func (c *GroupBuys) Get(ctx context.Context, id int64) (*models.GroupBuy, error) {
	var gb models.GroupBuy
	err := doJSON(ctx, c.hc, groupBuyService, http.MethodGet,
		fmt.Sprintf("%s/groupbuys/%d", c.baseURL, id), "", nil, &gb)
	if err != nil {
		return nil, err
	}
	return &gb, nil
}

// Create submits a validated group-buy draft. Preconditions fail locally
// without issuing a request.
func (c *GroupBuys) Create(ctx context.Context, d models.GroupBuyDraft) (*models.GroupBuy, error) {
	switch {
	case d.ProductID <= 0:
		return nil, errs.Validation("product_id", "must reference a product")
	case d.Discount.Sign() <= 0:
		return nil, errs.Validation("discount", "must be greater than zero")
	case d.MinParticipants < 1:
		return nil, errs.Validation("min_participants", "must be at least 1")
	case !d.Status.Known():
		return nil, errs.Validation("status", "must be active or completed")
	}

	var gb models.GroupBuy
	err := doJSON(ctx, c.hc, groupBuyService, http.MethodPost,
		c.baseURL+"/groupbuys", "",
		groupBuyPayload{
			ProductID:       d.ProductID,
			Discount:        d.Discount,
			MinParticipants: d.MinParticipants,
			Status:          d.Status,
		}, &gb)
	if err != nil {
		return nil, err
	}
	return &gb, nil
}

// Join signals a participant-count increment to the backend. The client
// enforces no cap; join eligibility is checked by the participation rules
// before this is called.
func (c *GroupBuys) Join(ctx context.Context, id int64) (*models.GroupBuy, error) {
	var gb models.GroupBuy
	err := doJSON(ctx, c.hc, groupBuyService, http.MethodPost,
		fmt.Sprintf("%s/groupbuys/%d/join", c.baseURL, id), "",
		joinPayload{GroupBuyID: id}, &gb)
	if err != nil {
		return nil, err
	}
	return &gb, nil
}

// Delete removes the group buy by id.
func (c *GroupBuys) Delete(ctx context.Context, id int64) error {
	return doJSON(ctx, c.hc, groupBuyService, http.MethodDelete,
		fmt.Sprintf("%s/groupbuys/%d", c.baseURL, id), "", nil, nil)
}
