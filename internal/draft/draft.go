// Package draft turns raw form values into validated entity drafts. All
// string-to-number coercion for user input lives here; anything further down
// the stack works on typed fields only.
package draft

import (
	"strconv"
	"strings"

	"commerce-console/internal/errs"
	"commerce-console/internal/models"

	"github.com/shopspring/decimal"
)

// ProductInput carries raw product form values.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       string `json:"stock"`
	ImageURL    string `json:"image_url"`
}

// GroupBuyInput carries raw group-buy form values.
type GroupBuyInput struct {
	ProductID       string `json:"product_id"`
	Discount        string `json:"discount"`
	MinParticipants string `json:"min_participants"`
	Status          string `json:"status"`
}

// OrderInput carries raw order form values. The total is never an input;
// the pricing engine derives it.
type OrderInput struct {
	ProductID  string `json:"product_id"`
	GroupBuyID string `json:"groupbuy_id"`
	Quantity   string `json:"quantity"`
}

// UserInput carries raw user-edit form values; all fields optional.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FilterInput carries raw product list filter values.
type FilterInput struct {
	MinPrice string `json:"min_price"`
	MaxPrice string `json:"max_price"`
}

type fieldErrs []errs.FieldError

func (fe *fieldErrs) add(field, message string) {
	*fe = append(*fe, errs.FieldError{Field: field, Message: message})
}

func (fe fieldErrs) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &errs.ValidationError{Fields: fe}
}

func parseDecimal(raw, field string, fe *fieldErrs) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		fe.add(field, "must be a number")
		return decimal.Zero
	}
	return d
}

func parseInt(raw, field string, fe *fieldErrs) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		fe.add(field, "must be an integer")
		return 0
	}
	return n
}

func parseID(raw, field string, fe *fieldErrs) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		fe.add(field, "must be a valid id")
		return 0
	}
	return id
}

// NewProduct validates a product form and returns a typed draft or a
// ValidationError listing every bad field.
func NewProduct(in ProductInput) (models.ProductDraft, error) {
	var fe fieldErrs

	name := strings.TrimSpace(in.Name)
	if name == "" {
		fe.add("name", "is required")
	}

	price := parseDecimal(in.Price, "price", &fe)
	if price.Sign() < 0 {
		fe.add("price", "must not be negative")
	}

	stock := parseInt(in.Stock, "stock", &fe)
	if stock < 0 {
		fe.add("stock", "must not be negative")
	}

	if err := fe.err(); err != nil {
		return models.ProductDraft{}, err
	}
	return models.ProductDraft{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Stock:       stock,
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}, nil
}

// NewGroupBuy validates a group-buy form. Status defaults to active when
// omitted; an unrecognized status is rejected rather than sent through.
func NewGroupBuy(in GroupBuyInput) (models.GroupBuyDraft, error) {
	var fe fieldErrs

	productID := parseID(in.ProductID, "product_id", &fe)

	discount := parseDecimal(in.Discount, "discount", &fe)
	if discount.Sign() <= 0 {
		fe.add("discount", "must be greater than zero")
	} else if discount.GreaterThan(decimal.NewFromInt(100)) {
		fe.add("discount", "must not exceed 100")
	}

	minParticipants := parseInt(in.MinParticipants, "min_participants", &fe)
	if minParticipants < 1 {
		fe.add("min_participants", "must be at least 1")
	}

	status := models.StatusActive
	if strings.TrimSpace(in.Status) != "" {
		status = models.ParseStatus(in.Status)
		if !status.Known() {
			fe.add("status", "must be active or completed")
		}
	}

	if err := fe.err(); err != nil {
		return models.GroupBuyDraft{}, err
	}
	return models.GroupBuyDraft{
		ProductID:       productID,
		Discount:        discount,
		MinParticipants: minParticipants,
		Status:          status,
	}, nil
}

// NewOrder validates an order form; the draft's TotalPrice stays zero until
// the pricing engine fills it in.
func NewOrder(in OrderInput) (models.OrderDraft, error) {
	var fe fieldErrs

	productID := parseID(in.ProductID, "product_id", &fe)
	groupBuyID := parseID(in.GroupBuyID, "groupbuy_id", &fe)

	quantity := parseInt(in.Quantity, "quantity", &fe)
	if quantity < 1 {
		fe.add("quantity", "must be at least 1")
	}

	if err := fe.err(); err != nil {
		return models.OrderDraft{}, err
	}
	return models.OrderDraft{
		ProductID:  productID,
		GroupBuyID: groupBuyID,
		Quantity:   quantity,
	}, nil
}

// NewUser validates a user-edit form; at least one field must be present.
func NewUser(in UserInput) (models.UserDraft, error) {
	d := models.UserDraft{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	}
	if d.Username == "" && d.Email == "" && d.Password == "" {
		return models.UserDraft{}, errs.Validation("user", "provide at least one field to update")
	}
	return d, nil
}

// DefaultMaxPrice is the open upper bound sent when the max filter field is
// left blank.
var DefaultMaxPrice = decimal.NewFromInt(1000000)

// PriceFilter validates product list filter bounds: both non-negative,
// min not above max. Blank fields fall back to the open bounds.
func PriceFilter(in FilterInput) (min, max decimal.Decimal, err error) {
	var fe fieldErrs

	min = decimal.Zero
	if strings.TrimSpace(in.MinPrice) != "" {
		min = parseDecimal(in.MinPrice, "min_price", &fe)
	}
	max = DefaultMaxPrice
	if strings.TrimSpace(in.MaxPrice) != "" {
		max = parseDecimal(in.MaxPrice, "max_price", &fe)
	}

	if min.Sign() < 0 {
		fe.add("min_price", "must not be negative")
	}
	if max.Sign() < 0 {
		fe.add("max_price", "must not be negative")
	}
	if len(fe) == 0 && min.GreaterThan(max) {
		fe.add("min_price", "must not exceed max_price")
	}

	if err := fe.err(); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return min, max, nil
}
