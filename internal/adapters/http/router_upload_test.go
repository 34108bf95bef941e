package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/core/ports"
)

type ingestFake struct {
	uploadErr  error
	requeueErr error
}

func (f ingestFake) Upload(_ context.Context, filename, entityType string, body io.Reader) (*domain.SourceFile, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	return &domain.SourceFile{
		FileID:       "f-1",
		Filename:     filename,
		StorageKey:   "f-1_" + filename,
		EntityType:   domain.EntityType(entityType),
		Status:       domain.StatusProfiled,
		SizeBytes:    int64(len(raw)),
		RowCount:     2,
		ColCount:     3,
		RegisteredAt: now,
		UpdatedAt:    now,
	}, nil
}

func (f ingestFake) Requeue(_ context.Context, fileID string) (*domain.SourceFile, error) {
	if f.requeueErr != nil {
		return nil, f.requeueErr
	}
	return &domain.SourceFile{FileID: fileID, Status: domain.StatusProfiled}, nil
}

type readsFake struct {
	file   *domain.SourceFile
	files  []domain.SourceFile
	report *domain.BatchReport
	err    error
}

func (f readsFake) GetByID(context.Context, string) (*domain.SourceFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.file, nil
}

func (f readsFake) List(context.Context, int) ([]domain.SourceFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.files, nil
}

func (f readsFake) ReportByFileID(context.Context, string) (*domain.BatchReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type canonicalFake struct {
	customers []domain.CanonicalCustomer
	products  []domain.CanonicalProduct
	orders    []domain.CanonicalOrder
	err       error
}

func (f canonicalFake) ListCustomers(context.Context, int) ([]domain.CanonicalCustomer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.customers, nil
}

func (f canonicalFake) ListProducts(context.Context, int) ([]domain.CanonicalProduct, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f canonicalFake) ListOrders(context.Context, int) ([]domain.CanonicalOrder, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

func newTestRouter(ingest ports.FileIngestor, reads ports.FileReader, canonical ports.CanonicalReader) http.Handler {
	return NewRouter(ingest, reads, canonical, nil).Handler()
}

func multipartUpload(t *testing.T, filename, entityType, content string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.WriteField("entity_type", entityType); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestRouter(ingestFake{}, readsFake{}, canonicalFake{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestUploadFileAccepted(t *testing.T) {
	handler := newTestRouter(ingestFake{}, readsFake{}, canonicalFake{})

	body, contentType := multipartUpload(t, "customers.csv", "customer", "customer_id,email\nCUST_0001,a@b.com\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/files", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}

	var file map[string]any
	if err := json.NewDecoder(res.Body).Decode(&file); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if file["file_id"] != "f-1" || file["entity_type"] != "customer" {
		t.Fatalf("unexpected response: %+v", file)
	}
}

func TestUploadFileMissingMultipartField(t *testing.T) {
	handler := newTestRouter(ingestFake{}, readsFake{}, canonicalFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/files", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadFileMapsInvalidEntityTypeTo400(t *testing.T) {
	handler := newTestRouter(ingestFake{
		uploadErr: domain.WrapError(domain.ErrInvalidInput, "parse entity type", errors.New(`unknown entity type "crates"`)),
	}, readsFake{}, canonicalFake{})

	body, contentType := multipartUpload(t, "crates.csv", "crates", "a,b\n1,2\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/files", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadFileMapsQueueOutageTo503(t *testing.T) {
	handler := newTestRouter(ingestFake{
		uploadErr: domain.WrapError(domain.ErrTemporary, "publish file event", errors.New("no servers")),
	}, readsFake{}, canonicalFake{})

	body, contentType := multipartUpload(t, "customers.csv", "customer", "a,b\n1,2\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/files", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestFilesCollectionRejectsUnknownMethod(t *testing.T) {
	handler := newTestRouter(ingestFake{}, readsFake{}, canonicalFake{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/files", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}
