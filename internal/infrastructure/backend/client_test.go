package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chargedocs/chargedocs/internal/core/domain"
	"github.com/chargedocs/chargedocs/internal/core/ports"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newTestClient(t *testing.T, handler http.Handler, options Options) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, staticToken("test-token"), options), server
}

func TestListSendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode([]domain.Document{{ImageName: "a.jpg"}})
	}), Options{})

	docs, err := client.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotPath != "/gallery" {
		t.Fatalf("path = %q", gotPath)
	}
	if len(docs) != 1 || docs[0].ImageName != "a.jpg" {
		t.Fatalf("docs = %+v", docs)
	}
}

func TestListEmptyBodyYieldsEmptySlice(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	}), Options{})

	docs, err := client.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Fatalf("docs = %#v, want empty non-nil slice", docs)
	}
}

func TestSearchEscapesQuery(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_ = json.NewEncoder(w).Encode([]domain.Document{})
	}), Options{})

	if _, err := client.Search(context.Background(), "Tim Tan & co"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "Tim Tan & co" {
		t.Fatalf("q = %q", gotQuery)
	}
}

func TestDeleteEscapesImageName(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}), Options{})

	if err := client.Delete(context.Background(), "a b.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotPath != "/documents/a%20b.jpg" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		kind   error
	}{
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusNotFound, domain.ErrDocumentNotFound},
		{http.StatusConflict, domain.ErrNameConflict},
		{http.StatusInternalServerError, domain.ErrTemporary},
		{http.StatusBadGateway, domain.ErrTemporary},
	}
	for _, tc := range cases {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
		}), Options{})

		_, err := client.List(context.Background())
		if !errors.Is(err, tc.kind) {
			t.Errorf("status %d: err = %v, want kind %v", tc.status, err, tc.kind)
		}
		if err != nil && !strings.Contains(err.Error(), "boom") {
			t.Errorf("status %d: err = %v, want the backend message", tc.status, err)
		}
	}
}

func TestUnauthorizedFiresHook(t *testing.T) {
	var fired int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), Options{OnUnauthorized: func() { fired++ }})

	if _, err := client.List(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if fired != 1 {
		t.Fatalf("hook fired %d times, want 1", fired)
	}
}

func TestUploadMultipartFields(t *testing.T) {
	var gotFields map[string]string
	var gotFile []byte
	var gotFilename, gotFileType string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		gotFields = map[string]string{}
		for name, values := range r.MultipartForm.Value {
			gotFields[name] = values[0]
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		gotFile, _ = io.ReadAll(file)
		gotFilename = header.Filename
		gotFileType = header.Header.Get("Content-Type")

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Document{ImageName: gotFields["documentName"]})
	}), Options{})

	doc, err := client.Upload(context.Background(), ports.UploadRequest{
		DocumentName:  "20250115_KTPH_Tan_Scan_1",
		ProcedureDate: "2025-01-15",
		Hospital:      "KTPH",
		Doctor:        "Tan",
		Procedure:     "Scan",
		BillingNo:     "1",
		SocketID:      "sock-42",
		Filename:      "scan.jpg",
		ContentType:   "image/jpeg",
		Body:          strings.NewReader("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.ImageName != "20250115_KTPH_Tan_Scan_1" {
		t.Fatalf("doc = %+v", doc)
	}

	want := map[string]string{
		"documentName":  "20250115_KTPH_Tan_Scan_1",
		"procedureDate": "2025-01-15",
		"hospital":      "KTPH",
		"doctor":        "Tan",
		"procedure":     "Scan",
		"billingNo":     "1",
		"socketId":      "sock-42",
	}
	for name, value := range want {
		if gotFields[name] != value {
			t.Errorf("field %s = %q, want %q", name, gotFields[name], value)
		}
	}
	if string(gotFile) != "jpeg-bytes" {
		t.Errorf("file bytes = %q", gotFile)
	}
	if gotFilename != "scan.jpg" || gotFileType != "image/jpeg" {
		t.Errorf("file part = (%q, %q)", gotFilename, gotFileType)
	}
}

func TestUploadOmitsSocketIDWhenEmpty(t *testing.T) {
	var hadSocket bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(32 << 20)
		_, hadSocket = r.MultipartForm.Value["socketId"]
		_ = json.NewEncoder(w).Encode(domain.Document{})
	}), Options{})

	_, err := client.Upload(context.Background(), ports.UploadRequest{
		DocumentName: "n", ProcedureDate: "d", Hospital: "h", Doctor: "dr",
		Procedure: "p", BillingNo: "b",
		Filename: "f.jpg", Body: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if hadSocket {
		t.Fatal("socketId field must be absent when no channel was opened")
	}
}

func TestExportReturnsWorkbookBytes(t *testing.T) {
	payload := []byte("PK\x03\x04workbook")
	var gotBody map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", xlsxMIME)
		_, _ = w.Write(payload)
	}), Options{})

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	data, err := client.Export(context.Background(), start, end)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("data = %q", data)
	}
	if gotBody["startDate"] != start.Format(time.RFC3339) || gotBody["endDate"] != end.Format(time.RFC3339) {
		t.Fatalf("request body = %v", gotBody)
	}
}

func TestExportRejectsJSONBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no documents in range"})
	}), Options{})

	_, err := client.Export(context.Background(), time.Now(), time.Now())
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("err = %v, want ErrTemporary", err)
	}
	if !strings.Contains(err.Error(), "no documents in range") {
		t.Fatalf("err = %v, want the backend message", err)
	}
}

func TestUpdateStickerQuantity(t *testing.T) {
	var gotPath string
	var gotBody map[string]int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(domain.Sticker{GTIN: "0123", Quantity: "7"})
	}), Options{})

	sticker, err := client.UpdateStickerQuantity(context.Background(), "doc-a", "0123", 7)
	if err != nil {
		t.Fatalf("UpdateStickerQuantity: %v", err)
	}
	if gotPath != "/document/doc-a/sticker/0123/quantity" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["quantity"] != 7 {
		t.Fatalf("body = %v", gotBody)
	}
	if sticker.Quantity != "7" {
		t.Fatalf("sticker = %+v", sticker)
	}
}

func TestLoginReturnsSession(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(domain.Session{Token: "tok", UserID: "u1"})
	}), Options{})

	session, err := client.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token != "tok" || session.UserID != "u1" {
		t.Fatalf("session = %+v", session)
	}
}

func TestContextCancellationPassesThrough(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.List(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, domain.ErrTemporary) {
		t.Fatal("cancellation must not be wrapped as a backend failure")
	}
}
