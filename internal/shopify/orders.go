package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const orderCreateMutation = `
mutation orderCreate($order: OrderCreateOrderInput!, $options: OrderCreateOptionsInput) {
  orderCreate(order: $order, options: $options) {
    userErrors { field message }
    order {
      id
      name
      totalTaxSet { shopMoney { amount currencyCode } }
    }
  }
}`

// ErrOrderNotCreated is returned when the mutation succeeds without an order.
var ErrOrderNotCreated = errors.New("shopify returned no order")

// OrderUserError is a validation failure reported by orderCreate.
type OrderUserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// OrderRejectedError is returned when orderCreate answers with user errors.
type OrderRejectedError struct {
	Errors []OrderUserError
}

func (e *OrderRejectedError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ue := range e.Errors {
		msgs = append(msgs, ue.Message)
	}
	return "order rejected: " + strings.Join(msgs, "; ")
}

// OrderAddress is a postal address in the shape orderCreate expects.
type OrderAddress struct {
	FirstName string
	LastName  string
	Address1  string
	Address2  string
	City      string
	Province  string
	Country   string
	Zip       string
	Phone     string
}

func (a OrderAddress) vars() map[string]any {
	out := map[string]any{
		"firstName": a.FirstName,
		"lastName":  a.LastName,
		"address1":  a.Address1,
		"city":      a.City,
		"country":   a.Country,
		"zip":       a.Zip,
	}
	if a.Address2 != "" {
		out["address2"] = a.Address2
	}
	if a.Province != "" {
		out["province"] = a.Province
	}
	if a.Phone != "" {
		out["phone"] = a.Phone
	}
	return out
}

// OrderLine is one priced line of a new order.
type OrderLine struct {
	VariantID string
	Title     string
	Price     decimal.Decimal
	Quantity  int
	Tax       decimal.Decimal
}

// OrderInput describes a cash-on-delivery order.
type OrderInput struct {
	Currency        string
	Email           string
	Phone           string
	ShippingAddress OrderAddress
	BillingAddress  OrderAddress
	Lines           []OrderLine
	TaxTitle        string
	TaxRate         decimal.Decimal
	ShippingTitle   string
	Shipping        decimal.Decimal
	Total           decimal.Decimal
	Gateway         string
	Tags            []string
	Note            string
}

// PlacedOrder identifies an order created on the platform.
type PlacedOrder struct {
	ID       string
	Name     string
	TotalTax decimal.Decimal
}

type moneyBag struct {
	ShopMoney struct {
		Amount       decimal.Decimal `json:"amount"`
		CurrencyCode string          `json:"currencyCode"`
	} `json:"shopMoney"`
}

type orderCreateData struct {
	OrderCreate struct {
		UserErrors []OrderUserError `json:"userErrors"`
		Order      *struct {
			ID          string    `json:"id"`
			Name        string    `json:"name"`
			TotalTaxSet *moneyBag `json:"totalTaxSet"`
		} `json:"order"`
	} `json:"orderCreate"`
}

func moneySet(amount decimal.Decimal, currency string) map[string]any {
	return map[string]any{
		"shopMoney": map[string]any{
			"amount":       amount.StringFixed(2),
			"currencyCode": currency,
		},
	}
}

func (in OrderInput) vars() map[string]any {
	lines := make([]map[string]any, 0, len(in.Lines))
	for _, l := range in.Lines {
		line := map[string]any{
			"title":    l.Title,
			"quantity": l.Quantity,
			"priceSet": moneySet(l.Price, in.Currency),
		}
		if l.VariantID != "" {
			line["variantId"] = VariantGID(l.VariantID)
		}
		if in.TaxTitle != "" {
			line["taxLines"] = []map[string]any{{
				"title":    in.TaxTitle,
				"rate":     in.TaxRate.String(),
				"priceSet": moneySet(l.Tax, in.Currency),
			}}
		}
		lines = append(lines, line)
	}

	shippingLines := []map[string]any{}
	if in.Shipping.IsPositive() {
		shippingLines = append(shippingLines, map[string]any{
			"title":    in.ShippingTitle,
			"priceSet": moneySet(in.Shipping, in.Currency),
		})
	}

	order := map[string]any{
		"currency":        in.Currency,
		"shippingAddress": in.ShippingAddress.vars(),
		"billingAddress":  in.BillingAddress.vars(),
		"lineItems":       lines,
		"shippingLines":   shippingLines,
		"transactions": []map[string]any{{
			"kind":      "SALE",
			"status":    "SUCCESS",
			"gateway":   in.Gateway,
			"amountSet": moneySet(in.Total, in.Currency),
		}},
		"financialStatus": "PENDING",
	}
	if in.Email != "" {
		order["email"] = in.Email
	}
	if in.Phone != "" {
		order["phone"] = in.Phone
	}
	if len(in.Tags) > 0 {
		order["tags"] = in.Tags
	}
	if in.Note != "" {
		order["note"] = in.Note
	}
	return order
}

// CreateOrder places a pending cash-on-delivery order.
func (c *Client) CreateOrder(ctx context.Context, in OrderInput) (*PlacedOrder, error) {
	var data orderCreateData
	if err := c.Do(ctx, orderCreateMutation, map[string]any{"order": in.vars()}, &data); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	result := data.OrderCreate
	if len(result.UserErrors) > 0 {
		rejected := &OrderRejectedError{Errors: result.UserErrors}
		c.logger.Warn().Err(rejected).Msg("shopify rejected order")
		return nil, rejected
	}
	if result.Order == nil || result.Order.ID == "" {
		c.logger.Error().Msg("shopify returned no order")
		return nil, ErrOrderNotCreated
	}

	placed := &PlacedOrder{ID: result.Order.ID, Name: result.Order.Name}
	if result.Order.TotalTaxSet != nil {
		placed.TotalTax = result.Order.TotalTaxSet.ShopMoney.Amount
	}

	c.logger.Info().Str("order_id", placed.ID).Str("name", placed.Name).Msg("order created on shopify")
	return placed, nil
}

// NormalizePhone formats a phone number in E.164 form using dialCode for
// national numbers. Numbers that cannot be interpreted yield "".
func NormalizePhone(phone, dialCode string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()

	switch {
	case cleaned == "":
		return ""
	case strings.HasPrefix(phone, "+") || strings.HasPrefix(cleaned, dialCode):
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "0"):
		return "+" + dialCode + strings.TrimLeft(cleaned, "0")
	case len(cleaned) >= 7:
		return "+" + dialCode + cleaned
	default:
		return ""
	}
}
