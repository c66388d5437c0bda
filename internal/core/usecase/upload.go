package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chargedocs/chargedocs/internal/core/domain"
	"github.com/chargedocs/chargedocs/internal/core/ports"
)

// UploadState names the workflow phases. FileSelected is transient: a
// newly selected file always enters cropping before it can be submitted,
// so SelectFile lands directly in StateCropping.
type UploadState string

const (
	StateIdle       UploadState = "idle"
	StateCropping   UploadState = "cropping"
	StateReady      UploadState = "ready_to_submit"
	StateSubmitting UploadState = "submitting"
	StateSucceeded  UploadState = "succeeded"
)

// UploadMetadata is the descriptive form data; every field is required
// before submission is possible.
type UploadMetadata struct {
	ProcedureDate string `json:"procedure_date"`
	Hospital      string `json:"hospital"`
	Doctor        string `json:"doctor"`
	Procedure     string `json:"procedure"`
	BillingNo     string `json:"billing_no"`
}

// UploadStatus is the read model views poll while a submission runs.
type UploadStatus struct {
	State        UploadState `json:"state"`
	Progress     int         `json:"progress"`
	Error        string      `json:"error,omitempty"`
	DocumentName string      `json:"document_name,omitempty"`
}

type fileRef struct {
	name        string
	contentType string
	data        []byte
}

// UploadWorkflow turns a selected image plus metadata into a validated,
// cropped, uploaded document with progress feedback from the push
// channel.
type UploadWorkflow struct {
	api        ports.DocumentAPI
	dialer     ports.ChannelDialer
	cropper    ports.Cropper
	refresh    func(ctx context.Context) error
	onProgress func(percent int)
	joinGrace  time.Duration

	mu       sync.Mutex
	state    UploadState
	original fileRef
	applied  *fileRef
	active   fileRef
	meta     UploadMetadata
	progress int
	lastErr  string
}

// UploadOptions carries the optional collaborators. Refresh is the state
// component's reconciliation path, called once on success. OnProgress
// observes every displayed progress value.
type UploadOptions struct {
	Dialer     ports.ChannelDialer
	Refresh    func(ctx context.Context) error
	OnProgress func(percent int)
	JoinGrace  time.Duration
}

func NewUploadWorkflow(api ports.DocumentAPI, cropper ports.Cropper, options UploadOptions) *UploadWorkflow {
	grace := options.JoinGrace
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &UploadWorkflow{
		api:        api,
		dialer:     options.Dialer,
		cropper:    cropper,
		refresh:    options.Refresh,
		onProgress: options.OnProgress,
		joinGrace:  grace,
		state:      StateIdle,
	}
}

func (w *UploadWorkflow) State() UploadState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *UploadWorkflow) Progress() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress
}

func (w *UploadWorkflow) Status() UploadStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return UploadStatus{
		State:        w.state,
		Progress:     w.progress,
		Error:        w.lastErr,
		DocumentName: w.documentNameLocked(),
	}
}

// SelectFile starts a fresh submission with the picked file. The file
// always enters cropping first; that gate is a data-quality decision,
// not an optional nicety.
func (w *UploadWorkflow) SelectFile(name, contentType string, data []byte) error {
	if name == "" || len(data) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "select file", errors.New("a non-empty file is required"))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateSubmitting {
		return domain.WrapError(domain.ErrInvalidInput, "select file", errors.New("submission in progress"))
	}
	w.original = fileRef{name: name, contentType: contentType, data: data}
	w.active = w.original
	w.applied = nil
	w.state = StateCropping
	w.progress = 0
	w.lastErr = ""
	return nil
}

// ApplyCrop re-encodes the selected region of the original image into a
// new file that replaces it for submission. Regions without area are
// rejected and the workflow stays in cropping.
func (w *UploadWorkflow) ApplyCrop(region ports.CropRegion) error {
	w.mu.Lock()
	if w.state != StateCropping {
		w.mu.Unlock()
		return domain.WrapError(domain.ErrInvalidInput, "apply crop", fmt.Errorf("not cropping (state %s)", w.state))
	}
	original := w.original
	w.mu.Unlock()

	if region.Width <= 0 || region.Height <= 0 {
		return domain.WrapError(domain.ErrInvalidInput, "apply crop", errors.New("crop region has no area"))
	}

	data, contentType, err := w.cropper.Crop(original.data, region)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateCropping {
		return domain.WrapError(domain.ErrInvalidInput, "apply crop", errors.New("cropping was cancelled"))
	}
	cropped := fileRef{name: original.name, contentType: contentType, data: data}
	w.applied = &cropped
	w.active = cropped
	w.state = StateReady
	return nil
}

// CancelCrop leaves cropping without applying: the previously applied
// crop stays active, or the original if none was ever applied.
func (w *UploadWorkflow) CancelCrop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateCropping {
		return domain.WrapError(domain.ErrInvalidInput, "cancel crop", fmt.Errorf("not cropping (state %s)", w.state))
	}
	if w.applied != nil {
		w.active = *w.applied
	} else {
		w.active = w.original
	}
	w.state = StateReady
	return nil
}

// Recrop re-enters cropping so the user can redo the region.
func (w *UploadWorkflow) Recrop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateReady {
		return domain.WrapError(domain.ErrInvalidInput, "recrop", fmt.Errorf("nothing to recrop (state %s)", w.state))
	}
	w.state = StateCropping
	return nil
}

func (w *UploadWorkflow) SetMetadata(meta UploadMetadata) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateSubmitting {
		return domain.WrapError(domain.ErrInvalidInput, "set metadata", errors.New("submission in progress"))
	}
	w.meta = meta
	return nil
}

// DocumentName is the deterministic name derived from the metadata;
// empty until every contributing field is present.
func (w *UploadWorkflow) DocumentName() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.documentNameLocked()
}

func (w *UploadWorkflow) documentNameLocked() string {
	if w.missingFieldsLocked() != nil {
		return ""
	}
	return domain.DeriveDocumentName(
		w.meta.ProcedureDate, w.meta.Hospital, w.meta.Doctor, w.meta.Procedure, w.meta.BillingNo,
	)
}

func (w *UploadWorkflow) missingFieldsLocked() []string {
	var missing []string
	if len(w.active.data) == 0 {
		missing = append(missing, "file")
	}
	if strings.TrimSpace(w.meta.ProcedureDate) == "" {
		missing = append(missing, "procedureDate")
	}
	if strings.TrimSpace(w.meta.Hospital) == "" {
		missing = append(missing, "hospital")
	}
	if strings.TrimSpace(w.meta.Doctor) == "" {
		missing = append(missing, "doctor")
	}
	if strings.TrimSpace(w.meta.Procedure) == "" {
		missing = append(missing, "procedure")
	}
	if strings.TrimSpace(w.meta.BillingNo) == "" {
		missing = append(missing, "billingNo")
	}
	return missing
}

// CanSubmit reports whether the submit action is enabled: a cropped file,
// a derivable name, every metadata field, and not currently cropping or
// submitting.
func (w *UploadWorkflow) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == StateReady && len(w.missingFieldsLocked()) == 0
}

// Submit runs the submission end to end: open the push channel, send the
// multipart request, reconcile both success signals, and on success merge
// the new document into the cache. A failure of any kind returns the
// workflow to ReadyToSubmit so the user can retry without re-entering
// anything.
func (w *UploadWorkflow) Submit(ctx context.Context) (*domain.Document, error) {
	w.mu.Lock()
	if w.state != StateReady {
		w.mu.Unlock()
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit", fmt.Errorf("submission disabled in state %s", w.state))
	}
	if missing := w.missingFieldsLocked(); len(missing) > 0 {
		w.mu.Unlock()
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit",
			fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	name := w.documentNameLocked()
	file := w.active
	meta := w.meta
	w.state = StateSubmitting
	w.progress = 0
	w.lastErr = ""
	w.mu.Unlock()

	socketID := ""
	var events ports.ProgressEvents
	if w.dialer != nil {
		socketID = uuid.NewString()
		dialed, err := w.dialer.Dial(ctx, socketID)
		if err != nil {
			// The channel only drives the progress bar; an upload
			// without one still works, it just reports no progress.
			slog.Warn("push channel unavailable, uploading without progress", "error", err)
			socketID = ""
		} else {
			events = dialed
		}
	}

	channelComplete := make(chan struct{})
	channelFailed := make(chan string, 1)
	if events != nil {
		defer events.Close()
		go w.consumeEvents(events, channelComplete, channelFailed)
	}

	doc, httpErr := w.api.Upload(ctx, ports.UploadRequest{
		DocumentName:  name,
		ProcedureDate: meta.ProcedureDate,
		Hospital:      meta.Hospital,
		Doctor:        meta.Doctor,
		Procedure:     meta.Procedure,
		BillingNo:     meta.BillingNo,
		SocketID:      socketID,
		Filename:      file.name,
		ContentType:   file.contentType,
		Body:          bytes.NewReader(file.data),
	})

	// Join the two success signals: the terminal transition fires once,
	// after the HTTP response AND (channel completed OR channel absent).
	// An error event from the channel is authoritative failure even when
	// the HTTP side looked fine.
	if httpErr == nil && events != nil {
		select {
		case <-channelComplete:
		case msg := <-channelFailed:
			httpErr = domain.WrapError(domain.ErrTemporary, "upload channel", errors.New(msg))
		case <-time.After(w.joinGrace):
			// Channel went quiet without a terminal event; the stored
			// record in the HTTP response is the success signal.
		case <-ctx.Done():
			httpErr = ctx.Err()
		}
	}
	if httpErr == nil {
		select {
		case msg := <-channelFailed:
			httpErr = domain.WrapError(domain.ErrTemporary, "upload channel", errors.New(msg))
		default:
		}
	}

	if httpErr != nil {
		w.fail(httpErr)
		return nil, httpErr
	}

	w.succeed()
	if w.refresh != nil {
		if err := w.refresh(ctx); err != nil {
			slog.Warn("cache refresh after upload failed", "error", err)
		}
	}
	return doc, nil
}

// consumeEvents applies channel events until a terminal one arrives or
// the channel closes. Displayed progress never regresses: the maximum of
// all received values wins.
func (w *UploadWorkflow) consumeEvents(events ports.ProgressEvents, complete chan struct{}, failed chan string) {
	for event := range events.Events() {
		switch event.Kind {
		case domain.EventProgress:
			w.applyProgress(event.Progress)
		case domain.EventComplete:
			close(complete)
			return
		case domain.EventError:
			failed <- event.Message
			return
		}
	}
}

func (w *UploadWorkflow) applyProgress(percent int) {
	w.mu.Lock()
	if percent > w.progress {
		w.progress = percent
	}
	displayed := w.progress
	observer := w.onProgress
	w.mu.Unlock()

	if observer != nil {
		observer(displayed)
	}
}

// fail returns the workflow to ReadyToSubmit with the error recorded and
// progress reset, so a retry needs no re-entry of data.
func (w *UploadWorkflow) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateSubmitting {
		return
	}
	w.state = StateReady
	w.progress = 0
	w.lastErr = err.Error()
}

func (w *UploadWorkflow) succeed() {
	w.mu.Lock()
	if w.state != StateSubmitting {
		w.mu.Unlock()
		return
	}
	w.state = StateSucceeded
	if w.progress < 100 {
		w.progress = 100
	}
	observer := w.onProgress
	displayed := w.progress
	w.mu.Unlock()

	if observer != nil {
		observer(displayed)
	}
}

// Reset returns to Idle, dropping the file and metadata. The gateway
// calls it when the user navigates away from the form.
func (w *UploadWorkflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateSubmitting {
		return domain.WrapError(domain.ErrInvalidInput, "reset", errors.New("submission in progress"))
	}
	w.state = StateIdle
	w.original = fileRef{}
	w.applied = nil
	w.active = fileRef{}
	w.meta = UploadMetadata{}
	w.progress = 0
	w.lastErr = ""
	return nil
}
