package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/Makepad-fr/itemdesk/internal/model"
)

var errNoID = errors.New("item id is empty")

func itemPath(id model.ItemID) string {
	return "/items/" + url.PathEscape(id.String())
}

func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, http.MethodGet, "/items", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func (c *Client) CreateItem(ctx context.Context, in model.ItemInput) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, http.MethodPost, "/items", in, &it)
	return it, err
}

func (c *Client) UpdateItem(ctx context.Context, id model.ItemID, in model.ItemInput) (model.Item, error) {
	if id == "" {
		return model.Item{}, errNoID
	}
	var it model.Item
	err := c.do(ctx, http.MethodPut, itemPath(id), in, &it)
	return it, err
}

func (c *Client) DeleteItem(ctx context.Context, id model.ItemID) error {
	if id == "" {
		return errNoID
	}
	return c.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}
