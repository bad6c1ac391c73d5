package discount

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	msgMissingCodes = "Missing or invalid 'codes' parameter. Provide comma-separated discount codes."
	msgNoCodes      = "No valid discount codes provided"
	msgTooManyCodes = "Maximum 5 discount codes allowed per request"

	warnIncompatible = "Some discount codes cannot be combined. Only the first valid discount will be applied."
	warnInvalidFmt   = "%d discount code(s) are invalid and will be ignored."
)

// InputError reports a malformed verification request. No catalog fetch is
// attempted when it is returned.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// UpstreamError reports a failed catalog fetch.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("failed to fetch discount catalog: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Request is a batch verification request as received from a client.
type Request struct {
	// Codes is the raw comma-separated list of codes.
	Codes string
	// Subtotal is the order subtotal, if the client provided one.
	Subtotal *decimal.Decimal
	// CartVariants is the raw comma-separated list of variant ids in the cart.
	CartVariants string
}

// Summary holds the counters of a verification report.
type Summary struct {
	TotalCodesRequested  int  `json:"totalCodesRequested"`
	ValidCodes           int  `json:"validCodes"`
	InvalidCodes         int  `json:"invalidCodes"`
	ApplicableCodes      int  `json:"applicableCodes"`
	CanCombineAll        bool `json:"canCombineAll"`
	SubtotalProvided     bool `json:"subtotalProvided"`
	CartVariantsProvided bool `json:"cartVariantsProvided"`
}

// ApplicableDiscount is a code that will be applied to the order.
type ApplicableDiscount struct {
	Code                     string           `json:"code"`
	Title                    string           `json:"title"`
	Type                     Kind             `json:"type"`
	Value                    string           `json:"value"`
	Description              string           `json:"description"`
	RequiresSpecificProducts bool             `json:"requiresSpecificProducts"`
	RequiredVariants         []string         `json:"requiredVariants"`
	MinimumSubtotal          *decimal.Decimal `json:"minimumSubtotal"`
}

// TotalDiscount describes the combined effect of the applicable codes.
type TotalDiscount struct {
	Description     string `json:"description"`
	ApplicableCount int    `json:"applicableCount"`
}

// Report is the full verification outcome.
type Report struct {
	Success             bool                 `json:"success"`
	Timestamp           time.Time            `json:"timestamp"`
	Summary             Summary              `json:"summary"`
	ValidDiscounts      []ValidationResult   `json:"validDiscounts"`
	InvalidDiscounts    []ValidationResult   `json:"invalidDiscounts"`
	CombinationAnalysis []CombinationResult  `json:"combinationAnalysis"`
	ApplicableDiscounts []ApplicableDiscount `json:"applicableDiscounts"`
	TotalDiscount       TotalDiscount        `json:"totalDiscount"`
	Warnings            []string             `json:"warnings"`
}

// Verifier validates batches of codes against a freshly fetched catalog.
type Verifier struct {
	source   CatalogSource
	combiner *Combiner
	now      func() time.Time
	logger   zerolog.Logger
}

// NewVerifier creates a verifier that fetches the catalog from source on
// every call.
func NewVerifier(source CatalogSource, combiner *Combiner, logger zerolog.Logger) *Verifier {
	return &Verifier{
		source:   source,
		combiner: combiner,
		now:      time.Now,
		logger:   logger.With().Str("component", "discount-verifier").Logger(),
	}
}

// ParseCodes splits a comma-separated list, trimming entries and dropping
// empty ones. Duplicates are kept.
func ParseCodes(raw string) ([]string, error) {
	if raw == "" {
		return nil, &InputError{Message: msgMissingCodes}
	}

	codes := splitList(raw)
	if len(codes) == 0 {
		return nil, &InputError{Message: msgNoCodes}
	}
	if len(codes) > MaxCodesPerRequest {
		return nil, &InputError{Message: msgTooManyCodes}
	}

	return codes, nil
}

// Verify runs the full verification: input parsing, a single catalog fetch,
// per-code validation, pairwise stacking checks and selection of the
// applicable set.
func (v *Verifier) Verify(ctx context.Context, req Request) (*Report, error) {
	codes, err := ParseCodes(req.Codes)
	if err != nil {
		return nil, err
	}

	cartVariantIDs := splitList(req.CartVariants)

	v.logger.Info().
		Int("count", len(codes)).
		Strs("codes", codes).
		Msg("verifying discount codes")

	catalog, err := v.source.Fetch(ctx)
	if err != nil {
		v.logger.Error().Err(err).Msg("failed to fetch discount catalog")
		return nil, &UpstreamError{Err: err}
	}

	now := v.now()
	order := OrderContext{
		Subtotal:       req.Subtotal,
		CartVariantIDs: cartVariantIDs,
	}

	valid := make([]ValidationResult, 0, len(codes))
	invalid := make([]ValidationResult, 0, len(codes))
	for _, code := range codes {
		result := ValidateCode(code, catalog, order, now)
		if result.Valid {
			valid = append(valid, result)
		} else {
			invalid = append(invalid, result)
		}
	}

	combinations := make([]CombinationResult, 0)
	if len(valid) > 1 {
		for i := 0; i < len(valid); i++ {
			for j := i + 1; j < len(valid); j++ {
				combinations = append(combinations, v.combiner.Evaluate(valid[i], valid[j]))
			}
		}
	}

	hasConflict := false
	for _, c := range combinations {
		if !c.CanCombine {
			hasConflict = true
			break
		}
	}

	applicable := valid
	if hasConflict {
		applicable = valid[:1]
	}

	warnings := []string{}
	if hasConflict {
		warnings = append(warnings, warnIncompatible)
	}
	if len(invalid) > 0 {
		warnings = append(warnings, fmt.Sprintf(warnInvalidFmt, len(invalid)))
	}

	report := &Report{
		Success:   true,
		Timestamp: now.UTC(),
		Summary: Summary{
			TotalCodesRequested:  len(codes),
			ValidCodes:           len(valid),
			InvalidCodes:         len(invalid),
			ApplicableCodes:      len(applicable),
			CanCombineAll:        len(valid) <= 1 || !hasConflict,
			SubtotalProvided:     req.Subtotal != nil,
			CartVariantsProvided: len(cartVariantIDs) > 0,
		},
		ValidDiscounts:      valid,
		InvalidDiscounts:    invalid,
		CombinationAnalysis: combinations,
		ApplicableDiscounts: toApplicable(applicable),
		TotalDiscount: TotalDiscount{
			Description:     describeTotal(applicable),
			ApplicableCount: len(applicable),
		},
		Warnings: warnings,
	}

	v.logger.Info().
		Int("applicable", len(applicable)).
		Int("requested", len(codes)).
		Msg("discount verification completed")

	return report, nil
}

func toApplicable(results []ValidationResult) []ApplicableDiscount {
	out := make([]ApplicableDiscount, 0, len(results))
	for _, r := range results {
		out = append(out, ApplicableDiscount{
			Code:                     r.Code,
			Title:                    r.Title,
			Type:                     r.Type,
			Value:                    r.Value,
			Description:              fmt.Sprintf("%s - %s (%s)", r.Code, r.Title, r.Value),
			RequiresSpecificProducts: r.RequiresSpecificProducts,
			RequiredVariants:         r.RequiredVariants,
			MinimumSubtotal:          r.MinimumSubtotal,
		})
	}
	return out
}

func describeTotal(results []ValidationResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		switch {
		case r.Type == KindBasic && strings.HasSuffix(r.Value, "%"):
			parts = append(parts, fmt.Sprintf("%s: %s off", r.Code, r.Value))
		case r.Type == KindFreeShipping:
			parts = append(parts, fmt.Sprintf("%s: Free Shipping", r.Code))
		default:
			parts = append(parts, fmt.Sprintf("%s: %s", r.Code, r.Value))
		}
	}
	return strings.Join(parts, " + ")
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
