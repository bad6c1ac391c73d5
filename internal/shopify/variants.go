package shopify

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

const variantGIDPrefix = "gid://shopify/ProductVariant/"

const variantsQuery = `
query variantsByID($ids: [ID!]!) {
  nodes(ids: $ids) {
    ... on ProductVariant {
      id
      title
      price
      inventoryQuantity
      image { url }
      inventoryItem { measurement { weight { unit value } } }
      product { media(first: 1) { edges { node { preview { image { url } } } } } }
    }
  }
}`

type imageRef struct {
	URL string `json:"url"`
}

type variantNode struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	InventoryQuantity *int            `json:"inventoryQuantity"`
	Image             *imageRef       `json:"image"`
	InventoryItem     *struct {
		Measurement *struct {
			Weight *model.Weight `json:"weight"`
		} `json:"measurement"`
	} `json:"inventoryItem"`
	Product *struct {
		Media struct {
			Edges []struct {
				Node struct {
					Preview *struct {
						Image *imageRef `json:"image"`
					} `json:"preview"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"media"`
	} `json:"product"`
}

type variantNodesData struct {
	Nodes []*variantNode `json:"nodes"`
}

// VariantGID converts a numeric variant id into its global id form.
// Ids already in global form are returned unchanged.
func VariantGID(id string) string {
	return globalID(variantGIDPrefix, id)
}

// FetchVariants returns the live state of the given variants. Unknown ids
// are omitted from the result rather than reported as errors.
func (c *Client) FetchVariants(ctx context.Context, ids []string) ([]model.Variant, error) {
	if len(ids) == 0 {
		return []model.Variant{}, nil
	}

	gids := make([]string, 0, len(ids))
	for _, id := range ids {
		gids = append(gids, VariantGID(id))
	}

	var data variantNodesData
	if err := c.Do(ctx, variantsQuery, map[string]any{"ids": gids}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch variants: %w", err)
	}

	variants := make([]model.Variant, 0, len(data.Nodes))
	for _, node := range data.Nodes {
		if node == nil || node.ID == "" {
			continue
		}
		variants = append(variants, node.toVariant())
	}

	return variants, nil
}

func (n *variantNode) toVariant() model.Variant {
	v := model.Variant{
		ID:    n.ID,
		Title: n.Title,
		Price: n.Price,
	}
	if n.InventoryQuantity != nil {
		v.InventoryQuantity = *n.InventoryQuantity
	}

	switch {
	case n.Image != nil && n.Image.URL != "":
		v.ImageURL = n.Image.URL
	case n.Product != nil && len(n.Product.Media.Edges) > 0:
		preview := n.Product.Media.Edges[0].Node.Preview
		if preview != nil && preview.Image != nil {
			v.ImageURL = preview.Image.URL
		}
	}

	if n.InventoryItem != nil && n.InventoryItem.Measurement != nil {
		v.Weight = n.InventoryItem.Measurement.Weight
	}

	return v
}
