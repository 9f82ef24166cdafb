package draft

import (
	"errors"
	"testing"

	"commerce-console/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var ve *errs.ValidationError
	require.True(t, errors.As(err, &ve), "expected a validation error, got %v", err)
	names := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestNewProduct(t *testing.T) {
	d, err := NewProduct(ProductInput{
		Name:  "  Widget ",
		Price: "19.99",
		Stock: "12",
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget", d.Name)
	assert.Equal(t, "19.99", d.Price.String())
	assert.Equal(t, 12, d.Stock)
}

func TestNewProductCollectsAllFieldErrors(t *testing.T) {
	_, err := NewProduct(ProductInput{
		Name:  "   ",
		Price: "abc",
		Stock: "-3",
	})
	names := fieldsOf(t, err)
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "price")
	assert.Contains(t, names, "stock")
}

func TestNewProductNegativePrice(t *testing.T) {
	_, err := NewProduct(ProductInput{Name: "x", Price: "-1", Stock: "0"})
	assert.Contains(t, fieldsOf(t, err), "price")
}

func TestNewGroupBuy(t *testing.T) {
	d, err := NewGroupBuy(GroupBuyInput{
		ProductID:       "4",
		Discount:        "20",
		MinParticipants: "5",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.ProductID)
	assert.Equal(t, "20", d.Discount.String())
	assert.Equal(t, 5, d.MinParticipants)
	// status defaults to active when the form omits it
	assert.Equal(t, "active", d.Status.String())
}

func TestNewGroupBuyRejectsBadValues(t *testing.T) {
	_, err := NewGroupBuy(GroupBuyInput{
		ProductID:       "0",
		Discount:        "120",
		MinParticipants: "0",
		Status:          "archived",
	})
	names := fieldsOf(t, err)
	assert.Contains(t, names, "product_id")
	assert.Contains(t, names, "discount")
	assert.Contains(t, names, "min_participants")
	assert.Contains(t, names, "status")
}

func TestNewOrder(t *testing.T) {
	d, err := NewOrder(OrderInput{ProductID: "1", GroupBuyID: "1", Quantity: "3"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.ProductID)
	assert.Equal(t, int64(1), d.GroupBuyID)
	assert.Equal(t, 3, d.Quantity)
	assert.True(t, d.TotalPrice.IsZero(), "total is derived later, never taken from the form")
}

func TestNewOrderZeroQuantity(t *testing.T) {
	_, err := NewOrder(OrderInput{ProductID: "1", GroupBuyID: "1", Quantity: "0"})
	assert.Contains(t, fieldsOf(t, err), "quantity")
}

func TestNewUserRequiresAField(t *testing.T) {
	_, err := NewUser(UserInput{})
	assert.True(t, errs.IsValidation(err))

	d, err := NewUser(UserInput{Email: "admin@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", d.Email)
}

func TestPriceFilter(t *testing.T) {
	min, max, err := PriceFilter(FilterInput{MinPrice: "10", MaxPrice: "200"})
	require.NoError(t, err)
	assert.Equal(t, "10", min.String())
	assert.Equal(t, "200", max.String())
}

func TestPriceFilterBlankFieldsUseOpenBounds(t *testing.T) {
	min, max, err := PriceFilter(FilterInput{})
	require.NoError(t, err)
	assert.True(t, min.IsZero())
	assert.True(t, max.Equal(DefaultMaxPrice))

	// a positive min with a blank max must not trip the ordering check
	min, _, err = PriceFilter(FilterInput{MinPrice: "50"})
	require.NoError(t, err)
	assert.Equal(t, "50", min.String())
}

func TestPriceFilterMinAboveMax(t *testing.T) {
	_, _, err := PriceFilter(FilterInput{MinPrice: "100", MaxPrice: "10"})
	assert.Contains(t, fieldsOf(t, err), "min_price")
}

func TestPriceFilterNegativeBounds(t *testing.T) {
	_, _, err := PriceFilter(FilterInput{MinPrice: "-5", MaxPrice: "10"})
	assert.Contains(t, fieldsOf(t, err), "min_price")
}

func TestPriceFilterNonNumeric(t *testing.T) {
	_, _, err := PriceFilter(FilterInput{MinPrice: "cheap"})
	assert.Contains(t, fieldsOf(t, err), "min_price")
}
