package ports

import (
	"context"
	"io"
	"time"

	"github.com/chargedocs/chargedocs/internal/core/domain"
)

// DocumentAPI is the repository client: a typed wrapper over the backend's
// document endpoints. Implementations are stateless beyond the session
// token they read per call, which keeps them trivially swappable for
// fakes in tests.
type DocumentAPI interface {
	// List fetches the full gallery for the authenticated user.
	List(ctx context.Context) ([]domain.Document, error)

	// Search fetches the server-side search results for query.
	Search(ctx context.Context, query string) ([]domain.Document, error)

	// Delete removes the document keyed by its image name.
	Delete(ctx context.Context, imageName string) error

	// GetStickers fetches the extracted sticker records for one document.
	GetStickers(ctx context.Context, name string) ([]domain.Sticker, error)

	// Upload submits the multipart form. socketID correlates the request
	// with the push channel carrying progress events; it may be empty when
	// no channel could be opened.
	Upload(ctx context.Context, req UploadRequest) (*domain.Document, error)

	// UpdateStickerQuantity edits the quantity of one sticker in place.
	UpdateStickerQuantity(ctx context.Context, name, gtin string, quantity int) (*domain.Sticker, error)

	// Export returns the spreadsheet for the inclusive date range.
	Export(ctx context.Context, start, end time.Time) ([]byte, error)

	// Login exchanges credentials for a session.
	Login(ctx context.Context, username, password string) (*domain.Session, error)
}

// UploadRequest carries the multipart fields of a submission.
type UploadRequest struct {
	DocumentName  string
	ProcedureDate string
	Hospital      string
	Doctor        string
	Procedure     string
	BillingNo     string
	SocketID      string
	Filename      string
	ContentType   string
	Body          io.Reader
}

// ProgressEvents is one open push channel for a single submission.
// Events is closed when the peer goes away or Close is called.
type ProgressEvents interface {
	Events() <-chan domain.UploadEvent
	Close() error
}

// ChannelDialer opens the push channel identified by a client-generated
// socket id before (or concurrently with) the multipart request.
type ChannelDialer interface {
	Dial(ctx context.Context, socketID string) (ProgressEvents, error)
}

// SessionStore owns the token and user identity. It is the only component
// allowed to mutate them; everyone else reads.
type SessionStore interface {
	Token() string
	UserID() string
	Set(session domain.Session)
	Clear()
}

// Cropper re-encodes the selected pixel region of an image into a new
// file that replaces the original for submission purposes.
type Cropper interface {
	Crop(data []byte, region CropRegion) ([]byte, string, error)
}

// CropRegion is the user's selection in image pixel coordinates.
type CropRegion struct {
	X      int
	Y      int
	Width  int
	Height int
}
