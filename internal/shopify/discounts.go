package shopify

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/discount"

	"github.com/shopspring/decimal"
)

const discountsQuery = `
query activeCodeDiscounts {
  codeDiscountNodes(first: 250, query: "status:active") {
    nodes {
      id
      codeDiscount {
        __typename
        ... on DiscountCodeBasic {
          title
          status
          createdAt
          endsAt
          usageLimit
          codes(first: 10) { nodes { code asyncUsageCount } }
          combinesWith { orderDiscounts productDiscounts shippingDiscounts }
          minimumRequirement {
            ... on DiscountMinimumSubtotal {
              greaterThanOrEqualToSubtotal { amount }
            }
          }
          customerGets {
            value {
              ... on DiscountPercentage { percentage }
              ... on DiscountAmount { amount { amount currencyCode } }
            }
            items {
              ... on DiscountProducts {
                productVariants(first: 50) { edges { node { id } } }
              }
            }
          }
        }
        ... on DiscountCodeBxgy {
          title
          status
          createdAt
          endsAt
          usageLimit
          codes(first: 10) { nodes { code asyncUsageCount } }
          combinesWith { orderDiscounts productDiscounts shippingDiscounts }
          customerGets {
            value {
              ... on DiscountOnQuantity {
                effect {
                  ... on DiscountPercentage { percentage }
                  ... on DiscountAmount { amount { amount currencyCode } }
                }
              }
            }
            items {
              ... on DiscountProducts {
                productVariants(first: 50) { edges { node { id } } }
              }
            }
          }
        }
        ... on DiscountCodeFreeShipping {
          title
          status
          createdAt
          endsAt
          usageLimit
          codes(first: 10) { nodes { code asyncUsageCount } }
          combinesWith { orderDiscounts productDiscounts shippingDiscounts }
          minimumRequirement {
            ... on DiscountMinimumSubtotal {
              greaterThanOrEqualToSubtotal { amount }
            }
          }
        }
      }
    }
  }
}`

type money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

type discountEffect struct {
	// Percentage is a fraction in [0, 1].
	Percentage *decimal.Decimal `json:"percentage"`
	Amount     *money           `json:"amount"`
}

type customerGetsValue struct {
	discountEffect
	Effect *discountEffect `json:"effect"`
}

type codeDiscount struct {
	Typename   string     `json:"__typename"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	CreatedAt  *time.Time `json:"createdAt"`
	EndsAt     *time.Time `json:"endsAt"`
	UsageLimit *int       `json:"usageLimit"`
	Codes      struct {
		Nodes []struct {
			Code            string `json:"code"`
			AsyncUsageCount int    `json:"asyncUsageCount"`
		} `json:"nodes"`
	} `json:"codes"`
	CombinesWith       discount.CombinesWith `json:"combinesWith"`
	MinimumRequirement *struct {
		GreaterThanOrEqualToSubtotal *struct {
			Amount decimal.Decimal `json:"amount"`
		} `json:"greaterThanOrEqualToSubtotal"`
	} `json:"minimumRequirement"`
	CustomerGets *struct {
		Value *customerGetsValue `json:"value"`
		Items *struct {
			ProductVariants *struct {
				Edges []struct {
					Node struct {
						ID string `json:"id"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"productVariants"`
		} `json:"items"`
	} `json:"customerGets"`
}

type discountNodesData struct {
	CodeDiscountNodes struct {
		Nodes []struct {
			ID           string        `json:"id"`
			CodeDiscount *codeDiscount `json:"codeDiscount"`
		} `json:"nodes"`
	} `json:"codeDiscountNodes"`
}

var kindsByTypename = map[string]discount.Kind{
	"DiscountCodeBasic":        discount.KindBasic,
	"DiscountCodeFreeShipping": discount.KindFreeShipping,
	"DiscountCodeBxgy":         discount.KindBuyXGetY,
}

var hundred = decimal.NewFromInt(100)

// FetchDiscounts returns every active code discount of the store. Nodes of
// unsupported types are dropped; records without codes are kept so the
// overview can count them.
func (c *Client) FetchDiscounts(ctx context.Context) ([]discount.Record, error) {
	var data discountNodesData
	if err := c.Do(ctx, discountsQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch discounts: %w", err)
	}

	records := make([]discount.Record, 0, len(data.CodeDiscountNodes.Nodes))
	skipped := 0
	for _, node := range data.CodeDiscountNodes.Nodes {
		record, ok := toRecord(node.ID, node.CodeDiscount)
		if !ok {
			skipped++
			continue
		}
		records = append(records, record)
	}

	c.logger.Debug().
		Int("discounts", len(records)).
		Int("skipped", skipped).
		Msg("fetched discount catalog")

	return records, nil
}

func toRecord(id string, cd *codeDiscount) (discount.Record, bool) {
	if cd == nil {
		return discount.Record{}, false
	}
	kind, ok := kindsByTypename[cd.Typename]
	if !ok {
		return discount.Record{}, false
	}

	codes := make([]discount.CodeEntry, 0, len(cd.Codes.Nodes))
	for _, n := range cd.Codes.Nodes {
		codes = append(codes, discount.CodeEntry{Code: n.Code, UsageCount: n.AsyncUsageCount})
	}

	record := discount.Record{
		ID:           id,
		Title:        cd.Title,
		Codes:        codes,
		Kind:         kind,
		Status:       cd.Status,
		CreatedAt:    cd.CreatedAt,
		EndsAt:       cd.EndsAt,
		UsageLimit:   cd.UsageLimit,
		CombinesWith: cd.CombinesWith,
	}

	if cd.MinimumRequirement != nil && cd.MinimumRequirement.GreaterThanOrEqualToSubtotal != nil {
		amount := cd.MinimumRequirement.GreaterThanOrEqualToSubtotal.Amount
		record.MinimumSubtotal = &amount
	}

	switch kind {
	case discount.KindFreeShipping:
		record.Value = discount.FreeShipping{}
	case discount.KindBasic, discount.KindBuyXGetY:
		if cd.CustomerGets != nil && cd.CustomerGets.Value != nil {
			effect := cd.CustomerGets.Value.discountEffect
			if cd.CustomerGets.Value.Effect != nil {
				effect = *cd.CustomerGets.Value.Effect
			}
			record.Value = toValue(effect)
		}
	}

	if cd.CustomerGets != nil && cd.CustomerGets.Items != nil && cd.CustomerGets.Items.ProductVariants != nil {
		for _, edge := range cd.CustomerGets.Items.ProductVariants.Edges {
			record.RequiredVariantIDs = append(record.RequiredVariantIDs, edge.Node.ID)
		}
	}

	return record, true
}

func toValue(effect discountEffect) discount.Value {
	switch {
	case effect.Percentage != nil:
		return discount.Percentage{Percent: effect.Percentage.Mul(hundred)}
	case effect.Amount != nil:
		return discount.FixedAmount{Amount: effect.Amount.Amount, CurrencyCode: effect.Amount.CurrencyCode}
	}
	return nil
}

type catalogSource struct {
	client *Client
}

// NewCatalogSource exposes the store's live discounts as a catalog source.
func NewCatalogSource(client *Client) discount.CatalogSource {
	return &catalogSource{client: client}
}

func (s *catalogSource) Fetch(ctx context.Context) ([]discount.Record, error) {
	return s.client.FetchDiscounts(ctx)
}
