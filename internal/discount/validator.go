package discount

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReasonNotFound         = "Discount code not found"
	ReasonNotActive        = "Discount is not active"
	ReasonExpired          = "Discount has expired"
	ReasonLimitReached     = "Usage limit reached"
	ReasonProductsRequired = "Discount requires specific products not in cart"
)

// OrderContext is the optional order information a code is checked against.
// A nil Subtotal skips the minimum subtotal check and an empty
// CartVariantIDs skips the product restriction check.
type OrderContext struct {
	Subtotal       *decimal.Decimal
	CartVariantIDs []string
}

// ValidationResult is the outcome of checking one requested code.
type ValidationResult struct {
	Found                    bool             `json:"found"`
	Valid                    bool             `json:"valid"`
	Code                     string           `json:"code"`
	DiscountID               string           `json:"discountId,omitempty"`
	Title                    string           `json:"title,omitempty"`
	Type                     Kind             `json:"type,omitempty"`
	Value                    string           `json:"value,omitempty"`
	UsageCount               int              `json:"usageCount"`
	UsageLimit               *int             `json:"usageLimit"`
	IsActive                 bool             `json:"isActive"`
	IsExpired                bool             `json:"isExpired"`
	IsLimitReached           bool             `json:"isLimitReached"`
	ExpiresAt                *time.Time       `json:"expiresAt"`
	CombinesWith             CombinesWith     `json:"combinesWith"`
	MinimumSubtotal          *decimal.Decimal `json:"minimumSubtotal"`
	SubtotalMet              bool             `json:"subtotalMet"`
	RequiresSpecificProducts bool             `json:"requiresSpecificProducts"`
	RequiredVariants         []string         `json:"requiredVariants"`
	VariantsMet              bool             `json:"variantsMet"`
	InvalidReasons           []string         `json:"invalidReasons"`
}

// ValidateCode checks a single code against the catalog. It matches the
// primary code of each record case-insensitively and stops at the first hit.
// Every failing condition contributes its own reason.
func ValidateCode(code string, catalog []Record, order OrderContext, now time.Time) ValidationResult {
	code = strings.TrimSpace(code)

	record, entry, ok := lookup(code, catalog)
	if !ok {
		return ValidationResult{
			Found:            false,
			Valid:            false,
			Code:             code,
			RequiredVariants: []string{},
			InvalidReasons:   []string{ReasonNotFound},
		}
	}

	isActive := strings.EqualFold(record.Status, "active")
	isExpired := record.EndsAt != nil && record.EndsAt.Before(now)
	isLimitReached := record.UsageLimit != nil && entry.UsageCount >= *record.UsageLimit

	subtotalMet := true
	if record.MinimumSubtotal != nil && order.Subtotal != nil {
		subtotalMet = order.Subtotal.GreaterThanOrEqual(*record.MinimumSubtotal)
	}

	variantsMet := true
	if len(record.RequiredVariantIDs) > 0 && len(order.CartVariantIDs) > 0 {
		variantsMet = intersects(record.RequiredVariantIDs, order.CartVariantIDs)
	}

	reasons := []string{}
	if !isActive {
		reasons = append(reasons, ReasonNotActive)
	}
	if isExpired {
		reasons = append(reasons, ReasonExpired)
	}
	if isLimitReached {
		reasons = append(reasons, ReasonLimitReached)
	}
	if !subtotalMet {
		reasons = append(reasons, fmt.Sprintf("Minimum subtotal of %s not met", record.MinimumSubtotal.String()))
	}
	if !variantsMet {
		reasons = append(reasons, ReasonProductsRequired)
	}

	required := record.RequiredVariantIDs
	if required == nil {
		required = []string{}
	}

	return ValidationResult{
		Found:                    true,
		Valid:                    len(reasons) == 0,
		Code:                     entry.Code,
		DiscountID:               record.ID,
		Title:                    record.DisplayTitle(),
		Type:                     record.Kind,
		Value:                    record.RenderValue(),
		UsageCount:               entry.UsageCount,
		UsageLimit:               record.UsageLimit,
		IsActive:                 isActive,
		IsExpired:                isExpired,
		IsLimitReached:           isLimitReached,
		ExpiresAt:                record.EndsAt,
		CombinesWith:             record.CombinesWith,
		MinimumSubtotal:          record.MinimumSubtotal,
		SubtotalMet:              subtotalMet,
		RequiresSpecificProducts: len(record.RequiredVariantIDs) > 0,
		RequiredVariants:         required,
		VariantsMet:              variantsMet,
		InvalidReasons:           reasons,
	}
}

func lookup(code string, catalog []Record) (Record, CodeEntry, bool) {
	for _, record := range catalog {
		entry, ok := record.PrimaryCode()
		if !ok {
			continue
		}
		if strings.EqualFold(entry.Code, code) {
			return record, entry, true
		}
	}
	return Record{}, CodeEntry{}, false
}

// intersects compares variant ids by their trailing numeric segment so that
// "gid://shopify/ProductVariant/42" and "42" refer to the same variant.
func intersects(required, cart []string) bool {
	inCart := make(map[string]struct{}, len(cart))
	for _, id := range cart {
		inCart[LegacyID(id)] = struct{}{}
	}
	for _, id := range required {
		if _, ok := inCart[LegacyID(id)]; ok {
			return true
		}
	}
	return false
}

// LegacyID strips a platform global id down to its trailing segment.
func LegacyID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
