package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MenuItem is a dish offered on the menu.
type MenuItem struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewMenuItem trims and validates the input and stamps timestamps
func NewMenuItem(name, description string, price decimal.Decimal, image string, now time.Time) (*MenuItem, error) {
	item := &MenuItem{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Price:       price,
		Image:       strings.TrimSpace(image),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

func (m *MenuItem) Validate() error {
	ve := &ValidationError{}

	switch n := utf8.RuneCountInString(m.Name); {
	case n < 1:
		ve.Add("name", "name is required")
	case n > 100:
		ve.Add("name", "name must not exceed 100 characters")
	}

	switch n := utf8.RuneCountInString(m.Description); {
	case n < 1:
		ve.Add("description", "description is required")
	case n > 500:
		ve.Add("description", "description must not exceed 500 characters")
	}

	switch {
	case m.Price.IsNegative():
		ve.Add("price", "price must not be negative")
	case !m.Price.Equal(m.Price.Round(2)):
		// цены хранятся в центах
		ve.Add("price", "price must have at most two decimal places")
	}
	if m.Image == "" {
		ve.Add("image", "image is required")
	}

	return ve.Err()
}
