package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"commerce-console/internal/errs"
	"commerce-console/internal/models"

	"github.com/shopspring/decimal"
)

const catalogService = "catalog"

// Catalog talks to the product endpoints of the commerce service.
type Catalog struct {
	baseURL string
	hc      *http.Client
}

// NewCatalog creates a catalog client for the given base URL.
func NewCatalog(baseURL string, hc *http.Client) *Catalog {
	if hc == nil {
		hc = DefaultHTTPClient()
	}
	return &Catalog{baseURL: baseURL, hc: hc}
}

type productPayload struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
}

func validateProductDraft(d models.ProductDraft) error {
	switch {
	case d.Name == "":
		return errs.Validation("name", "is required")
	case d.Price.Sign() < 0:
		return errs.Validation("price", "must not be negative")
	case d.Stock < 0:
		return errs.Validation("stock", "must not be negative")
	}
	return nil
}

// List fetches one page of products constrained to an inclusive price
// range. Pages are 1-indexed; bounds are validated before any request.
func (c *Catalog) List(ctx context.Context, page, pageSize int, minPrice, maxPrice decimal.Decimal) ([]models.Product, error) {
	switch {
	case page < 1:
		return nil, errs.Validation("page", "must be at least 1")
	case pageSize < 1:
		return nil, errs.Validation("pageSize", "must be at least 1")
	case minPrice.Sign() < 0 || maxPrice.Sign() < 0:
		return nil, errs.Validation("price filter", "bounds must not be negative")
	case minPrice.GreaterThan(maxPrice):
		return nil, errs.Validation("price filter", "minPrice must not exceed maxPrice")
	}

	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("pageSize", fmt.Sprint(pageSize))
	q.Set("minPrice", minPrice.String())
	q.Set("maxPrice", maxPrice.String())

	var products []models.Product
	err := doJSON(ctx, c.hc, catalogService, http.MethodGet,
		fmt.Sprintf("%s/products?%s", c.baseURL, q.Encode()), "", nil, &products)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Get fetches one product by id.
func (c *Catalog) Get(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := doJSON(ctx, c.hc, catalogService, http.MethodGet,
		fmt.Sprintf("%s/products/%d", c.baseURL, id), "", nil, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Create submits a validated product draft.
func (c *Catalog) Create(ctx context.Context, d models.ProductDraft) (*models.Product, error) {
	if err := validateProductDraft(d); err != nil {
		return nil, err
	}

	var product models.Product
	err := doJSON(ctx, c.hc, catalogService, http.MethodPost,
		c.baseURL+"/products", "", payloadFromDraft(d), &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update replaces the product's fields with the draft's.
func (c *Catalog) Update(ctx context.Context, id int64, d models.ProductDraft) (*models.Product, error) {
	if err := validateProductDraft(d); err != nil {
		return nil, err
	}

	var product models.Product
	err := doJSON(ctx, c.hc, catalogService, http.MethodPut,
		fmt.Sprintf("%s/products/%d", c.baseURL, id), "", payloadFromDraft(d), &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes the product by id.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	return doJSON(ctx, c.hc, catalogService, http.MethodDelete,
		fmt.Sprintf("%s/products/%d", c.baseURL, id), "", nil, nil)
}

func payloadFromDraft(d models.ProductDraft) productPayload {
	return productPayload{
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Stock:       d.Stock,
		ImageURL:    d.ImageURL,
	}
}
