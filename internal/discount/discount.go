package discount

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxCodesPerRequest is the largest batch of codes a single verification accepts.
const MaxCodesPerRequest = 5

// Kind identifies the platform's discount class.
type Kind string

const (
	KindBasic        Kind = "Basic Discount"
	KindFreeShipping Kind = "Free Shipping"
	KindBuyXGetY     Kind = "Buy X Get Y"
)

// Valid reports whether k is one of the known discount kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindBasic, KindFreeShipping, KindBuyXGetY:
		return true
	}
	return false
}

// Value is the kind-specific payload of a discount. The concrete types are
// Percentage, FixedAmount and FreeShipping.
type Value interface {
	isValue()
}

// Percentage is a discount expressed in percent (10 means 10%).
type Percentage struct {
	Percent decimal.Decimal
}

// FixedAmount is a discount of a fixed monetary amount.
type FixedAmount struct {
	Amount       decimal.Decimal
	CurrencyCode string
}

// FreeShipping carries no payload.
type FreeShipping struct{}

func (Percentage) isValue()   {}
func (FixedAmount) isValue()  {}
func (FreeShipping) isValue() {}

// CodeEntry is one redeemable code of a discount and its usage so far.
type CodeEntry struct {
	Code       string `json:"code"`
	UsageCount int    `json:"usageCount"`
}

// CombinesWith holds the platform-declared stacking flags of a discount.
type CombinesWith struct {
	OrderDiscounts    bool `json:"orderDiscounts"`
	ProductDiscounts  bool `json:"productDiscounts"`
	ShippingDiscounts bool `json:"shippingDiscounts"`
}

// Record is a discount definition as published by the commerce platform.
// Records are read-only once fetched.
type Record struct {
	ID                 string
	Title              string
	Codes              []CodeEntry
	Kind               Kind
	Value              Value
	Status             string
	CreatedAt          *time.Time
	EndsAt             *time.Time
	UsageLimit         *int
	CombinesWith       CombinesWith
	MinimumSubtotal    *decimal.Decimal
	RequiredVariantIDs []string
}

// PrimaryCode returns the authoritative code entry of the record.
func (r Record) PrimaryCode() (CodeEntry, bool) {
	if len(r.Codes) == 0 {
		return CodeEntry{}, false
	}
	return r.Codes[0], true
}

// DisplayTitle returns the title, or a placeholder for untitled discounts.
func (r Record) DisplayTitle() string {
	if r.Title == "" {
		return "Untitled Discount"
	}
	return r.Title
}

// RenderValue formats the discount value for display.
func (r Record) RenderValue() string {
	if r.Kind == KindFreeShipping {
		return "Free Shipping"
	}

	suffix := ""
	if r.Kind == KindBuyXGetY {
		suffix = " off"
	}

	switch v := r.Value.(type) {
	case Percentage:
		return v.Percent.String() + "%" + suffix
	case FixedAmount:
		return fmt.Sprintf("%s %s%s", v.Amount.String(), v.CurrencyCode, suffix)
	case FreeShipping:
		return "Free Shipping"
	}
	return "N/A"
}

// CatalogSource fetches the current set of discount definitions.
type CatalogSource interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// wireRecord is the JSON document shape used by file and S3 catalog snapshots.
type wireRecord struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Codes              []CodeEntry      `json:"codes"`
	Kind               Kind             `json:"kind"`
	Value              *wireValue       `json:"value,omitempty"`
	Status             string           `json:"status"`
	CreatedAt          *time.Time       `json:"createdAt,omitempty"`
	EndsAt             *time.Time       `json:"endsAt,omitempty"`
	UsageLimit         *int             `json:"usageLimit,omitempty"`
	CombinesWith       CombinesWith     `json:"combinesWith"`
	MinimumSubtotal    *decimal.Decimal `json:"minimumSubtotal,omitempty"`
	RequiredVariantIDs []string         `json:"requiredVariantIds,omitempty"`
}

type wireValue struct {
	Type         string           `json:"type"`
	Percentage   *decimal.Decimal `json:"percentage,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	CurrencyCode string           `json:"currencyCode,omitempty"`
}

const (
	wireValuePercentage   = "percentage"
	wireValueFixedAmount  = "fixed_amount"
	wireValueFreeShipping = "free_shipping"
)

// MarshalJSON encodes the record in the snapshot document format.
func (r Record) MarshalJSON() ([]byte, error) {
	w := wireRecord{
		ID:                 r.ID,
		Title:              r.Title,
		Codes:              r.Codes,
		Kind:               r.Kind,
		Status:             r.Status,
		CreatedAt:          r.CreatedAt,
		EndsAt:             r.EndsAt,
		UsageLimit:         r.UsageLimit,
		CombinesWith:       r.CombinesWith,
		MinimumSubtotal:    r.MinimumSubtotal,
		RequiredVariantIDs: r.RequiredVariantIDs,
	}

	switch v := r.Value.(type) {
	case Percentage:
		p := v.Percent
		w.Value = &wireValue{Type: wireValuePercentage, Percentage: &p}
	case FixedAmount:
		a := v.Amount
		w.Value = &wireValue{Type: wireValueFixedAmount, Amount: &a, CurrencyCode: v.CurrencyCode}
	case FreeShipping:
		w.Value = &wireValue{Type: wireValueFreeShipping}
	}

	return json.Marshal(w)
}

// UnmarshalJSON decodes a record from the snapshot document format.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if !w.Kind.Valid() {
		return fmt.Errorf("discount %s: unknown kind %q", w.ID, w.Kind)
	}

	*r = Record{
		ID:                 w.ID,
		Title:              w.Title,
		Codes:              w.Codes,
		Kind:               w.Kind,
		Status:             w.Status,
		CreatedAt:          w.CreatedAt,
		EndsAt:             w.EndsAt,
		UsageLimit:         w.UsageLimit,
		CombinesWith:       w.CombinesWith,
		MinimumSubtotal:    w.MinimumSubtotal,
		RequiredVariantIDs: w.RequiredVariantIDs,
	}

	if w.Value == nil {
		return nil
	}

	switch strings.ToLower(w.Value.Type) {
	case wireValuePercentage:
		if w.Value.Percentage == nil {
			return fmt.Errorf("discount %s: percentage value without percentage", w.ID)
		}
		r.Value = Percentage{Percent: *w.Value.Percentage}
	case wireValueFixedAmount:
		if w.Value.Amount == nil {
			return fmt.Errorf("discount %s: fixed amount value without amount", w.ID)
		}
		r.Value = FixedAmount{Amount: *w.Value.Amount, CurrencyCode: w.Value.CurrencyCode}
	case wireValueFreeShipping:
		r.Value = FreeShipping{}
	default:
		return fmt.Errorf("discount %s: unknown value type %q", w.ID, w.Value.Type)
	}

	return nil
}
