package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/chargedocs/chargedocs/internal/core/domain"
	"github.com/chargedocs/chargedocs/internal/core/ports"
)

// StickerViewer is the read model for one document's extracted sticker
// records, plus the single in-place edit the backend allows: quantity.
type StickerViewer struct {
	api ports.DocumentAPI
}

func NewStickerViewer(api ports.DocumentAPI) *StickerViewer {
	return &StickerViewer{api: api}
}

// Stickers fetches the extracted records for a document. A missing
// document surfaces as ErrDocumentNotFound: a terminal display state for
// the views, never a redirect loop.
func (v *StickerViewer) Stickers(ctx context.Context, name string) ([]domain.Sticker, error) {
	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "stickers", errors.New("document name is required"))
	}
	return v.api.GetStickers(ctx, name)
}

// UpdateQuantity edits one sticker's quantity. Non-positive values are
// rejected before any request is sent.
func (v *StickerViewer) UpdateQuantity(ctx context.Context, name, gtin string, quantity int) (*domain.Sticker, error) {
	if name == "" || gtin == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update quantity", errors.New("document name and gtin are required"))
	}
	if quantity <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update quantity",
			fmt.Errorf("quantity must be positive, got %d", quantity))
	}
	return v.api.UpdateStickerQuantity(ctx, name, gtin, quantity)
}
