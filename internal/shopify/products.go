package shopify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

const productGIDPrefix = "gid://shopify/Product/"

// ProductGID turns a numeric product id into its global id. Global ids pass through.
func ProductGID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, productGIDPrefix) {
		id = strings.TrimPrefix(id, productGIDPrefix)
	}
	if id == "" {
		return "", fmt.Errorf("empty product id")
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid product id %q", id)
		}
	}
	return productGIDPrefix + id, nil
}

type metafieldNode struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	ValueType string `json:"valueType"`
	Namespace string `json:"namespace"`
}

type productMetafieldsData struct {
	Product *struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Metafields struct {
			Edges []struct {
				Node metafieldNode `json:"node"`
			} `json:"edges"`
		} `json:"metafields"`
	} `json:"product"`
}

// ProductMetafields fetches a product and its metafields in the app namespace,
// keyed by metafield key. Records outside the namespace are dropped.
func (c *Client) ProductMetafields(ctx context.Context, productGID string) (*domain.Product, error) {
	var data productMetafieldsData
	err := c.Query(ctx, ProductMetafieldsQuery, map[string]interface{}{
		"id":        productGID,
		"namespace": domain.AppMetafieldNamespace,
	}, &data)
	if err != nil {
		return nil, &errors.ErrRemote{Op: "productMetafields", Err: err}
	}
	if data.Product == nil {
		return nil, &errors.ErrNotFound{Resource: "product", ID: productGID}
	}

	edges := data.Product.Metafields.Edges
	if len(edges) >= domain.MaxProductMetafields {
		return nil, &errors.ErrMetafieldLimit{ProductID: productGID, Count: len(edges)}
	}

	product := &domain.Product{
		ID:         data.Product.ID,
		Title:      data.Product.Title,
		Metafields: make(map[string]domain.RemoteMetafield, len(edges)),
	}
	for _, edge := range edges {
		node := edge.Node
		if node.Namespace != domain.AppMetafieldNamespace {
			continue
		}
		product.Metafields[node.Key] = domain.RemoteMetafield{
			ID:        node.ID,
			Key:       node.Key,
			Value:     node.Value,
			ValueType: node.ValueType,
			Namespace: node.Namespace,
		}
	}
	return product, nil
}

type productsData struct {
	Products struct {
		PageInfo struct {
			HasNextPage bool `json:"hasNextPage"`
		} `json:"pageInfo"`
		Edges []struct {
			Cursor string `json:"cursor"`
			Node   struct {
				ID     string `json:"id"`
				Title  string `json:"title"`
				Images struct {
					Edges []struct {
						Node struct {
							OriginalSrc string `json:"originalSrc"`
							AltText     string `json:"altText"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"images"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

// ListProducts returns one page of products. after and query may be empty.
func (c *Client) ListProducts(ctx context.Context, first int, after, query string) (*domain.ProductPage, error) {
	variables := map[string]interface{}{"first": first}
	if after != "" {
		variables["after"] = after
	}
	if query != "" {
		variables["query"] = query
	}

	var data productsData
	if err := c.Query(ctx, ProductsQuery, variables, &data); err != nil {
		return nil, &errors.ErrRemote{Op: "products", Err: err}
	}

	page := &domain.ProductPage{
		Products:    make([]domain.Product, 0, len(data.Products.Edges)),
		HasNextPage: data.Products.PageInfo.HasNextPage,
	}
	for _, edge := range data.Products.Edges {
		p := domain.Product{
			ID:     edge.Node.ID,
			Title:  edge.Node.Title,
			Cursor: edge.Cursor,
		}
		if images := edge.Node.Images.Edges; len(images) > 0 {
			p.ImageURL = images[0].Node.OriginalSrc
			p.ImageAlt = images[0].Node.AltText
		}
		page.Products = append(page.Products, p)
		page.EndCursor = edge.Cursor
	}
	return page, nil
}

type productUpdateData struct {
	ProductUpdate struct {
		UserErrors UserErrors `json:"userErrors"`
	} `json:"productUpdate"`
}

// UpdateMetafields changes existing metafield values in one productUpdate call
func (c *Client) UpdateMetafields(ctx context.Context, productGID string, updates []domain.MetafieldUpdate) error {
	inputs := make([]interface{}, len(updates))
	for i, u := range updates {
		inputs[i] = u
	}
	return c.productUpdate(ctx, productGID, inputs)
}

// CreateMetafields adds new metafields in one productUpdate call
func (c *Client) CreateMetafields(ctx context.Context, productGID string, creates []domain.MetafieldCreate) error {
	inputs := make([]interface{}, len(creates))
	for i, m := range creates {
		inputs[i] = m
	}
	return c.productUpdate(ctx, productGID, inputs)
}

func (c *Client) productUpdate(ctx context.Context, productGID string, metafields []interface{}) error {
	var data productUpdateData
	err := c.Mutate(ctx, ProductUpdateMutation, map[string]interface{}{
		"input": map[string]interface{}{
			"id":         productGID,
			"metafields": metafields,
		},
	}, &data)
	if err == nil && len(data.ProductUpdate.UserErrors) > 0 {
		err = data.ProductUpdate.UserErrors
	}
	if err != nil {
		return &errors.ErrRemote{Op: "productUpdate", Err: err}
	}
	return nil
}

type metafieldDeleteData struct {
	MetafieldDelete struct {
		DeletedID  string     `json:"deletedId"`
		UserErrors UserErrors `json:"userErrors"`
	} `json:"metafieldDelete"`
}

// DeleteMetafield removes one metafield
func (c *Client) DeleteMetafield(ctx context.Context, id string) error {
	var data metafieldDeleteData
	err := c.Mutate(ctx, MetafieldDeleteMutation, map[string]interface{}{
		"input": map[string]interface{}{"id": id},
	}, &data)
	if err == nil && len(data.MetafieldDelete.UserErrors) > 0 {
		err = data.MetafieldDelete.UserErrors
	}
	if err != nil {
		return &errors.ErrRemote{Op: "metafieldDelete", Err: err}
	}
	c.logger.Debug("Metafield deleted", zap.String("shop", c.shopDomain), zap.String("metafield_id", id))
	return nil
}

type webhookCreateData struct {
	Create struct {
		WebhookSubscription struct {
			ID string `json:"id"`
		} `json:"webhookSubscription"`
		UserErrors UserErrors `json:"userErrors"`
	} `json:"webhookSubscriptionCreate"`
}

// RegisterWebhook subscribes callbackURL to topic and returns the subscription id
func (c *Client) RegisterWebhook(ctx context.Context, topic, callbackURL string) (string, error) {
	var data webhookCreateData
	err := c.Mutate(ctx, WebhookSubscriptionCreateMutation, map[string]interface{}{
		"topic":       topic,
		"callbackUrl": callbackURL,
	}, &data)
	if err == nil && len(data.Create.UserErrors) > 0 {
		err = data.Create.UserErrors
	}
	if err == nil && data.Create.WebhookSubscription.ID == "" {
		err = fmt.Errorf("no webhook id returned")
	}
	if err != nil {
		return "", &errors.ErrRemote{Op: "webhookSubscriptionCreate", Err: err}
	}
	return data.Create.WebhookSubscription.ID, nil
}
