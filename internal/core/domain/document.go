package domain

// Document is the backend's record for one uploaded charge-form image and
// the fields extracted from it. The backend is the only party that ever
// creates one; the client treats ImageName as the unique, URL-safe key for
// lookup and delete within the authenticated user's set.
type Document struct {
	Brand         string `json:"brand"`
	Item          string `json:"item"`
	Dimensions    string `json:"dimensions"`
	GTIN          string `json:"gtin"`
	Ref           string `json:"ref"`
	Lot           string `json:"lot"`
	Quantity      string `json:"quantity"`
	ImageName     string `json:"image_name"`
	UserID        string `json:"user_id"`
	ProcedureDate string `json:"procedure_date"`
	Hospital      string `json:"hospital"`
	Doctor        string `json:"doctor"`
	ProcedureName string `json:"procedure_name"`
	BillingNo     string `json:"billing_no"`
	S3ImageURL    string `json:"s3_image_url"`
}

// Sticker is one extracted label record on a document. The detail endpoint
// returns a list of these; quantity is the only field editable in place.
type Sticker struct {
	Brand      string `json:"brand"`
	Item       string `json:"item"`
	Dimensions string `json:"dimensions"`
	GTIN       string `json:"gtin"`
	Ref        string `json:"ref"`
	Lot        string `json:"lot"`
	Quantity   string `json:"quantity"`
}

// Session identifies the authenticated user for the lifetime of the client
// process.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// UploadEventKind discriminates push-channel events during a submission.
type UploadEventKind string

const (
	EventProgress UploadEventKind = "upload-progress"
	EventComplete UploadEventKind = "upload-complete"
	EventError    UploadEventKind = "upload-error"
)

// UploadEvent is a single push-channel notification, correlated to a
// submission by the socket id the client generated for it.
type UploadEvent struct {
	Kind     UploadEventKind `json:"event"`
	Progress int             `json:"progress,omitempty"`
	Message  string          `json:"message,omitempty"`
}
