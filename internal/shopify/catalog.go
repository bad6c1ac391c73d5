package shopify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

const (
	productGIDPrefix    = "gid://shopify/Product/"
	collectionGIDPrefix = "gid://shopify/Collection/"

	// MaxPageSize is the largest page the Admin API serves.
	MaxPageSize = 250

	collectionsPageSize        = 10
	collectionProductsPageSize = 40
)

const productListFields = `
  id
  title
  handle
  description
  images(first: 5) { nodes { id altText url } }
  variants(first: 1) { nodes { id title price } }`

var productsQuery = `
query products($first: Int!) {
  products(first: $first) {
    nodes {` + productListFields + `
    }
  }
}`

var productsByIDQuery = `
query productsByID($ids: [ID!]!) {
  nodes(ids: $ids) {
    ... on Product {` + productListFields + `
    }
  }
}`

const productQuery = `
query product($id: ID!) {
  product(id: $id) {
    id
    title
    handle
    description
    status
    options { id name values }
    images(first: 10) { nodes { id url altText } }
    variants(first: 10) {
      nodes {
        id
        title
        displayName
        sku
        price
        compareAtPrice
        availableForSale
        inventoryQuantity
        image { id url altText }
      }
    }
  }
}`

const collectionsQuery = `
query collections($first: Int!) {
  collections(first: $first) {
    nodes {
      id
      title
      handle
      updatedAt
      image { id url }
      productsCount { count }
    }
  }
}`

const collectionsByIDQuery = `
query collectionsByID($ids: [ID!]!) {
  nodes(ids: $ids) {
    ... on Collection {
      id
      title
      handle
      description
      updatedAt
      image { id url }
      productsCount { count }
      products(first: 100) { nodes { status } }
    }
  }
}`

const collectionProductsQuery = `
query collectionProducts($id: ID!, $first: Int!) {
  collection(id: $id) {
    id
    title
    description
    image { url }
    products(first: $first) {
      nodes {
        id
        title
        description
        status
        tags
        images(first: 5) { nodes { id url altText } }
        variants(first: 1) { nodes { id title price } }
      }
    }
  }
}`

type imageNode struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

func (n *imageNode) toImage() *model.Image {
	if n == nil {
		return nil
	}
	return &model.Image{ID: n.ID, URL: n.URL, AltText: n.AltText}
}

type catalogVariantNode struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	DisplayName       string           `json:"displayName"`
	SKU               string           `json:"sku"`
	Price             decimal.Decimal  `json:"price"`
	CompareAtPrice    *decimal.Decimal `json:"compareAtPrice"`
	AvailableForSale  bool             `json:"availableForSale"`
	InventoryQuantity *int             `json:"inventoryQuantity"`
	Image             *imageNode       `json:"image"`
}

type imageConnection struct {
	Nodes []imageNode `json:"nodes"`
}

type variantConnection struct {
	Nodes []catalogVariantNode `json:"nodes"`
}

type productNode struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Handle      string                `json:"handle"`
	Description string                `json:"description"`
	Status      string                `json:"status"`
	Tags        []string              `json:"tags"`
	Options     []model.ProductOption `json:"options"`
	Images      imageConnection       `json:"images"`
	Variants    variantConnection     `json:"variants"`
}

func (n *productNode) toProduct() model.Product {
	p := model.Product{
		ID:          n.ID,
		Title:       n.Title,
		Handle:      n.Handle,
		Description: n.Description,
		Status:      n.Status,
		Tags:        n.Tags,
		Options:     n.Options,
		Images:      make([]model.Image, 0, len(n.Images.Nodes)),
		Variants:    make([]model.ProductVariant, 0, len(n.Variants.Nodes)),
	}
	for i := range n.Images.Nodes {
		p.Images = append(p.Images, *n.Images.Nodes[i].toImage())
	}
	for _, v := range n.Variants.Nodes {
		variant := model.ProductVariant{
			ID:               v.ID,
			Title:            v.Title,
			DisplayName:      v.DisplayName,
			SKU:              v.SKU,
			Price:            v.Price,
			CompareAtPrice:   v.CompareAtPrice,
			AvailableForSale: v.AvailableForSale,
			Image:            v.Image.toImage(),
		}
		if v.InventoryQuantity != nil {
			variant.InventoryQuantity = *v.InventoryQuantity
		}
		p.Variants = append(p.Variants, variant)
	}
	return p
}

type collectionNode struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Handle        string     `json:"handle"`
	Description   string     `json:"description"`
	UpdatedAt     *time.Time `json:"updatedAt"`
	Image         *imageNode `json:"image"`
	ProductsCount *struct {
		Count int `json:"count"`
	} `json:"productsCount"`
	Products *struct {
		Nodes []productNode `json:"nodes"`
	} `json:"products"`
}

func (n *collectionNode) toCollection() model.Collection {
	c := model.Collection{
		ID:          n.ID,
		Title:       n.Title,
		Handle:      n.Handle,
		Description: n.Description,
		UpdatedAt:   n.UpdatedAt,
		Image:       n.Image.toImage(),
	}
	if n.ProductsCount != nil {
		c.ProductsCount = n.ProductsCount.Count
	}
	if n.Products != nil {
		active := 0
		for _, p := range n.Products.Nodes {
			if !isDraft(p.Status) {
				active++
			}
		}
		c.ActiveProductsCount = &active
	}
	return c
}

func isDraft(status string) bool {
	return strings.EqualFold(status, "DRAFT")
}

// globalID converts a numeric id into a global id with prefix. Ids already
// in global form are returned unchanged.
func globalID(prefix, id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return prefix + id
}

// ProductGID converts a numeric product id into its global id form.
func ProductGID(id string) string { return globalID(productGIDPrefix, id) }

// CollectionGID converts a numeric collection id into its global id form.
func CollectionGID(id string) string { return globalID(collectionGIDPrefix, id) }

// FetchProducts returns the first products of the store, at most
// MaxPageSize.
func (c *Client) FetchProducts(ctx context.Context, first int) ([]model.Product, error) {
	first = min(max(first, 1), MaxPageSize)

	var data struct {
		Products struct {
			Nodes []productNode `json:"nodes"`
		} `json:"products"`
	}
	if err := c.Do(ctx, productsQuery, map[string]any{"first": first}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	products := make([]model.Product, 0, len(data.Products.Nodes))
	for i := range data.Products.Nodes {
		products = append(products, data.Products.Nodes[i].toProduct())
	}
	return products, nil
}

// FetchProductsByID returns the listed products. Unknown ids are omitted.
func (c *Client) FetchProductsByID(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	gids := make([]string, 0, len(ids))
	for _, id := range ids {
		gids = append(gids, ProductGID(id))
	}

	var data struct {
		Nodes []*productNode `json:"nodes"`
	}
	if err := c.Do(ctx, productsByIDQuery, map[string]any{"ids": gids}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	products := make([]model.Product, 0, len(data.Nodes))
	for _, node := range data.Nodes {
		if node == nil || node.ID == "" {
			continue
		}
		products = append(products, node.toProduct())
	}
	return products, nil
}

// FetchProduct returns one product with its options and variants, or nil
// when the store has no such product.
func (c *Client) FetchProduct(ctx context.Context, id string) (*model.Product, error) {
	var data struct {
		Product *productNode `json:"product"`
	}
	if err := c.Do(ctx, productQuery, map[string]any{"id": ProductGID(id)}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	if data.Product == nil {
		return nil, nil
	}

	product := data.Product.toProduct()
	return &product, nil
}

// FetchCollections returns the first collections of the store.
func (c *Client) FetchCollections(ctx context.Context) ([]model.Collection, error) {
	var data struct {
		Collections struct {
			Nodes []collectionNode `json:"nodes"`
		} `json:"collections"`
	}
	if err := c.Do(ctx, collectionsQuery, map[string]any{"first": collectionsPageSize}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch collections: %w", err)
	}

	collections := make([]model.Collection, 0, len(data.Collections.Nodes))
	for i := range data.Collections.Nodes {
		collections = append(collections, data.Collections.Nodes[i].toCollection())
	}
	return collections, nil
}

// FetchCollectionsByID returns the listed collections with the number of
// their non-draft products. Unknown ids are omitted.
func (c *Client) FetchCollectionsByID(ctx context.Context, ids []string) ([]model.Collection, error) {
	if len(ids) == 0 {
		return []model.Collection{}, nil
	}

	gids := make([]string, 0, len(ids))
	for _, id := range ids {
		gids = append(gids, CollectionGID(id))
	}

	var data struct {
		Nodes []*collectionNode `json:"nodes"`
	}
	if err := c.Do(ctx, collectionsByIDQuery, map[string]any{"ids": gids}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch collections: %w", err)
	}

	collections := make([]model.Collection, 0, len(data.Nodes))
	for _, node := range data.Nodes {
		if node == nil || node.ID == "" {
			continue
		}
		collections = append(collections, node.toCollection())
	}
	return collections, nil
}

// FetchCollectionProducts returns the non-draft products of a collection,
// each with its first variant. It returns nil, nil for an unknown collection.
func (c *Client) FetchCollectionProducts(ctx context.Context, id string) ([]model.CollectionProduct, error) {
	var data struct {
		Collection *collectionNode `json:"collection"`
	}
	vars := map[string]any{"id": CollectionGID(id), "first": collectionProductsPageSize}
	if err := c.Do(ctx, collectionProductsQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch collection: %w", err)
	}
	if data.Collection == nil {
		return nil, nil
	}

	col := data.Collection
	ref := model.CollectionRef{ID: col.ID, Title: col.Title, Description: col.Description}
	if col.Image != nil {
		ref.ImageURL = col.Image.URL
	}

	products := []model.CollectionProduct{}
	if col.Products == nil {
		return products, nil
	}
	for i := range col.Products.Nodes {
		node := &col.Products.Nodes[i]
		if isDraft(node.Status) {
			continue
		}
		products = append(products, model.CollectionProduct{Product: node.toProduct(), Collection: ref})
	}
	return products, nil
}
