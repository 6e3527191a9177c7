package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var phoneRegex = regexp.MustCompile(`^[+]?[1-9]\d{0,15}$`)

// Customer is embedded in an order, it is not stored on its own.
type Customer struct {
	Name    string
	Address string
	Phone   string
}

// Normalize trims surrounding whitespace from every field.
func (c Customer) Normalize() Customer {
	return Customer{
		Name:    strings.TrimSpace(c.Name),
		Address: strings.TrimSpace(c.Address),
		Phone:   strings.TrimSpace(c.Phone),
	}
}

// Validate appends customer problems to ve under the "customer." prefix
func (c Customer) Validate(ve *ValidationError) {
	switch n := utf8.RuneCountInString(c.Name); {
	case n < 1:
		ve.Add("customer.name", "customer name is required")
	case n > 100:
		ve.Add("customer.name", "customer name must not exceed 100 characters")
	}

	switch n := utf8.RuneCountInString(c.Address); {
	case n < 1:
		ve.Add("customer.address", "customer address is required")
	case n > 500:
		ve.Add("customer.address", "customer address must not exceed 500 characters")
	}

	if c.Phone == "" {
		ve.Add("customer.phone", "customer phone is required")
	} else if !phoneRegex.MatchString(c.Phone) {
		ve.Add("customer.phone", "customer phone must be digits with an optional leading +")
	}
}

// Order represents a customer order entity
type Order struct {
	ID        string
	Customer  Customer
	Items     []OrderItem
	Total     decimal.Decimal
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a line of an order. Name and Price are copied from the menu
// item when the order is created and never change afterwards.
type OrderItem struct {
	MenuItemID string
	Name       string
	Price      decimal.Decimal
	Quantity   int
}

// Subtotal is price times quantity for the line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder creates a new order with business rules applied
func NewOrder(customer Customer, items []OrderItem, now time.Time) (*Order, error) {
	order := &Order{
		Customer:  customer.Normalize(),
		Items:     items,
		Status:    StatusReceived,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	order.CalculateTotal()

	return order, nil
}

// Validate applies business validation rules
func (o *Order) Validate() error {
	ve := &ValidationError{}
	o.Customer.Validate(ve)

	if len(o.Items) < 1 {
		ve.Add("items", "order must contain at least one item")
	}

	for i, item := range o.Items {
		if item.Quantity < 1 {
			ve.Add(itemField(i, "quantity"), "item quantity must be at least 1")
		}
		if item.Price.IsNegative() {
			ve.Add(itemField(i, "price"), "item price must not be negative")
		}
	}

	return ve.Err()
}

// CalculateTotal calculates the total amount of the order
func (o *Order) CalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.Total = total
}

// Clone returns a deep copy so callers cannot mutate stored line items.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = make([]OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

func itemField(i int, name string) string {
	return fmt.Sprintf("items[%d].%s", i, name)
}
