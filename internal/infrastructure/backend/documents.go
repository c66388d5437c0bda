package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/chargedocs/chargedocs/internal/core/domain"
)

func (c *Client) List(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	if err := c.getJSON(ctx, "/gallery", &docs, "documents.list"); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

func (c *Client) Search(ctx context.Context, query string) ([]domain.Document, error) {
	var docs []domain.Document
	path := "/documents/search?q=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, path, &docs, "documents.search"); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

func (c *Client) Delete(ctx context.Context, imageName string) error {
	path := "/documents/" + url.PathEscape(imageName)
	return c.roundTrip(ctx, http.MethodDelete, path, nil, "", nil, "documents.delete")
}

func (c *Client) GetStickers(ctx context.Context, name string) ([]domain.Sticker, error) {
	var stickers []domain.Sticker
	path := "/document/" + url.PathEscape(name)
	if err := c.getJSON(ctx, path, &stickers, "documents.get"); err != nil {
		return nil, err
	}
	return stickers, nil
}

func (c *Client) UpdateStickerQuantity(ctx context.Context, name, gtin string, quantity int) (*domain.Sticker, error) {
	var sticker domain.Sticker
	path := "/document/" + url.PathEscape(name) + "/sticker/" + url.PathEscape(gtin) + "/quantity"
	payload := map[string]int{"quantity": quantity}
	if err := c.sendJSON(ctx, http.MethodPut, path, payload, &sticker, "stickers.update_quantity"); err != nil {
		return nil, err
	}
	return &sticker, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	var session domain.Session
	payload := map[string]string{"username": username, "password": password}
	if err := c.sendJSON(ctx, http.MethodPost, "/login", payload, &session, "session.login"); err != nil {
		return nil, err
	}
	return &session, nil
}
