package ports

import (
	"context"
	"time"

	"github.com/chargedocs/chargedocs/internal/core/domain"
)

// DocumentBrowser is the inbound contract of the document state/cache
// component. Views read through it and route every mutation through its
// operations; none of them touch the cached list directly.
type DocumentBrowser interface {
	Documents() []domain.Document
	Grouped() []domain.MonthGroup
	Status() BrowserStatus
	SetSearchQuery(ctx context.Context, query string)
	Refresh(ctx context.Context) error
	Delete(ctx context.Context, imageName string) error
}

// BrowserStatus surfaces the in-flight/fail state of the most recent
// fetch or search.
type BrowserStatus struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// DocumentViewer is the inbound read model for one document's stickers.
type DocumentViewer interface {
	Stickers(ctx context.Context, name string) ([]domain.Sticker, error)
	UpdateQuantity(ctx context.Context, name, gtin string, quantity int) (*domain.Sticker, error)
}

// DataExporter produces the date-ranged spreadsheet.
type DataExporter interface {
	Export(ctx context.Context, start, end time.Time) (*ExportResult, error)
}

// ExportResult describes the saved workbook.
type ExportResult struct {
	Path     string `json:"path"`
	Sheet    string `json:"sheet"`
	RowCount int    `json:"row_count"`
}
