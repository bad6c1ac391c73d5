package discount

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCombiner(t *testing.T) *Combiner {
	t.Helper()

	pack, err := DefaultRulePack()
	require.NoError(t, err)

	combiner, err := NewCombiner(pack, zerolog.Nop())
	require.NoError(t, err)
	return combiner
}

func validResult(code string, kind Kind, cw CombinesWith) ValidationResult {
	return ValidationResult{
		Found:          true,
		Valid:          true,
		Code:           code,
		Type:           kind,
		CombinesWith:   cw,
		InvalidReasons: []string{},
	}
}

func TestDefaultRulePack_CoversEveryPair(t *testing.T) {
	pack, err := DefaultRulePack()
	require.NoError(t, err)

	assert.Equal(t, "2025-07", pack.Version)
	assert.Len(t, pack.Rules, 9)
}

// Each cell reads exactly two flags: one from the first discount and one
// from the second. Setting only those two flags must allow stacking, and
// dropping either must forbid it.
func TestCombiner_Table(t *testing.T) {
	combiner := newTestCombiner(t)

	type flag int
	const (
		orders flag = iota
		products
		shipping
	)
	set := func(f flag) CombinesWith {
		switch f {
		case orders:
			return CombinesWith{OrderDiscounts: true}
		case products:
			return CombinesWith{ProductDiscounts: true}
		default:
			return CombinesWith{ShippingDiscounts: true}
		}
	}

	tests := []struct {
		first      Kind
		second     Kind
		firstFlag  flag
		secondFlag flag
	}{
		{KindBasic, KindBasic, orders, orders},
		{KindBasic, KindFreeShipping, shipping, orders},
		{KindBasic, KindBuyXGetY, products, orders},
		{KindFreeShipping, KindBasic, orders, shipping},
		{KindFreeShipping, KindFreeShipping, shipping, shipping},
		{KindFreeShipping, KindBuyXGetY, products, shipping},
		{KindBuyXGetY, KindBasic, orders, products},
		{KindBuyXGetY, KindFreeShipping, shipping, products},
		{KindBuyXGetY, KindBuyXGetY, products, products},
	}

	for _, tt := range tests {
		t.Run(string(tt.first)+"/"+string(tt.second), func(t *testing.T) {
			a := validResult("A", tt.first, set(tt.firstFlag))
			b := validResult("B", tt.second, set(tt.secondFlag))

			result := combiner.Evaluate(a, b)
			assert.True(t, result.CanCombine)
			assert.Equal(t, ReasonCombinable, result.Reason)
			require.NotNil(t, result.Details)
			assert.Equal(t, a.CombinesWith, result.Details.FirstCombinesWith)
			assert.Equal(t, b.CombinesWith, result.Details.SecondCombinesWith)

			a.CombinesWith = CombinesWith{}
			result = combiner.Evaluate(a, b)
			assert.False(t, result.CanCombine)
			assert.Equal(t, string(tt.first)+" and "+string(tt.second)+" discounts cannot be combined based on their combination settings", result.Reason)

			a.CombinesWith = set(tt.firstFlag)
			b.CombinesWith = CombinesWith{}
			assert.False(t, combiner.Evaluate(a, b).CanCombine)
		})
	}
}

// The built-in cells mirror each other: (X, Y) reads the same pair of flags
// as (Y, X) with the roles swapped, so swapping a pair never changes the
// verdict.
func TestCombiner_DefaultTableIsSwapSymmetric(t *testing.T) {
	combiner := newTestCombiner(t)

	kinds := []Kind{KindBasic, KindFreeShipping, KindBuyXGetY}
	flags := make([]CombinesWith, 0, 8)
	for i := 0; i < 8; i++ {
		flags = append(flags, CombinesWith{
			OrderDiscounts:    i&1 != 0,
			ProductDiscounts:  i&2 != 0,
			ShippingDiscounts: i&4 != 0,
		})
	}

	for _, firstKind := range kinds {
		for _, secondKind := range kinds {
			for _, firstFlags := range flags {
				for _, secondFlags := range flags {
					a := validResult("A", firstKind, firstFlags)
					b := validResult("B", secondKind, secondFlags)

					forward := combiner.Evaluate(a, b).CanCombine
					backward := combiner.Evaluate(b, a).CanCombine
					require.Equal(t, forward, backward,
						"(%s %+v, %s %+v)", firstKind, firstFlags, secondKind, secondFlags)
				}
			}
		}
	}

	basic := validResult("SAVE10", KindBasic, CombinesWith{ProductDiscounts: true})
	bxgy := validResult("BOGO", KindBuyXGetY, CombinesWith{OrderDiscounts: true})
	assert.True(t, combiner.Evaluate(basic, bxgy).CanCombine)
	assert.True(t, combiner.Evaluate(bxgy, basic).CanCombine)
}

func TestCombiner_LookupFollowsCallOrder(t *testing.T) {
	pack, err := ParseRulePack([]byte(`version: "one-sided"
rules:
  - first: Basic Discount
    second: Free Shipping
    logic: {"==": [1, 1]}
  - first: Free Shipping
    second: Basic Discount
    logic: {"==": [1, 2]}
`))
	require.NoError(t, err)

	combiner, err := NewCombiner(pack, zerolog.Nop())
	require.NoError(t, err)

	basic := validResult("SAVE10", KindBasic, CombinesWith{})
	shipping := validResult("FREESHIP", KindFreeShipping, CombinesWith{})

	forward := combiner.Evaluate(basic, shipping)
	assert.True(t, forward.CanCombine)
	assert.Equal(t, "SAVE10", forward.FirstCode)

	backward := combiner.Evaluate(shipping, basic)
	assert.False(t, backward.CanCombine)
	assert.Equal(t, "Free Shipping and Basic Discount discounts cannot be combined based on their combination settings", backward.Reason)
}

func TestCombiner_InvalidAndSameCode(t *testing.T) {
	combiner := newTestCombiner(t)
	all := CombinesWith{OrderDiscounts: true, ProductDiscounts: true, ShippingDiscounts: true}

	valid := validResult("SAVE10", KindBasic, all)
	invalid := ValidationResult{Code: "BAD", InvalidReasons: []string{ReasonNotFound}}

	result := combiner.Evaluate(valid, invalid)
	assert.False(t, result.CanCombine)
	assert.Equal(t, ReasonInvalidPair, result.Reason)
	assert.Nil(t, result.Details)

	result = combiner.Evaluate(valid, validResult("save10", KindBasic, all))
	assert.False(t, result.CanCombine)
	assert.Equal(t, ReasonSameCode, result.Reason)
}

func TestCombiner_UnknownPairIsNotCombinable(t *testing.T) {
	pack := &RulePack{Version: "test", Rules: []CombinationRule{{
		First:  KindBasic,
		Second: KindBasic,
		Logic:  map[string]any{"var": "first.orderDiscounts"},
	}}}
	combiner, err := NewCombiner(pack, zerolog.Nop())
	require.NoError(t, err)

	all := CombinesWith{OrderDiscounts: true, ProductDiscounts: true, ShippingDiscounts: true}
	result := combiner.Evaluate(
		validResult("A", KindBasic, all),
		validResult("B", KindFreeShipping, all),
	)

	assert.False(t, result.CanCombine)
}

func TestNewCombiner_RejectsBadPacks(t *testing.T) {
	tests := []struct {
		name     string
		pack     *RulePack
		errorMsg string
	}{
		{
			name:     "nil pack",
			pack:     nil,
			errorMsg: "rule pack is nil",
		},
		{
			name: "unknown kind",
			pack: &RulePack{Rules: []CombinationRule{{
				First: "Gift Card", Second: KindBasic, Logic: map[string]any{"var": "first.orderDiscounts"},
			}}},
			errorMsg: "unknown discount kind pair",
		},
		{
			name: "duplicate cell",
			pack: &RulePack{Rules: []CombinationRule{
				{First: KindBasic, Second: KindBasic, Logic: map[string]any{"var": "first.orderDiscounts"}},
				{First: KindBasic, Second: KindBasic, Logic: map[string]any{"var": "second.orderDiscounts"}},
			}},
			errorMsg: "duplicate rule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combiner, err := NewCombiner(tt.pack, zerolog.Nop())
			require.Error(t, err)
			assert.Nil(t, combiner)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestLoadRulePack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `version: "custom"
rules:
  - first: Free Shipping
    second: Free Shipping
    logic: {"==": [1, 1]}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	pack, err := LoadRulePack(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", pack.Version)
	require.Len(t, pack.Rules, 1)
	assert.Equal(t, KindFreeShipping, pack.Rules[0].First)

	combiner, err := NewCombiner(pack, zerolog.Nop())
	require.NoError(t, err)

	none := CombinesWith{}
	assert.True(t, combiner.Evaluate(
		validResult("A", KindFreeShipping, none),
		validResult("B", KindFreeShipping, none),
	).CanCombine)
}

func TestLoadRulePack_MissingFile(t *testing.T) {
	_, err := LoadRulePack("/nonexistent/rules.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read rule pack")
}
