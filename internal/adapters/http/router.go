package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/commerce-reconciler/internal/core/ports"
	"github.com/kirillkom/commerce-reconciler/internal/observability/metrics"
)

const maxListLimit = 1000

type Router struct {
	ingest    ports.FileIngestor
	reads     ports.FileReader
	canonical ports.CanonicalReader
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	ingest ports.FileIngestor,
	reads ports.FileReader,
	canonical ports.CanonicalReader,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		ingest:    ingest,
		reads:     reads,
		canonical: canonical,
		metrics:   httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/files", rt.handleFiles)
	mux.HandleFunc("/v1/files/", rt.handleFileRoutes)
	mux.HandleFunc("/v1/customers", rt.listCustomers)
	mux.HandleFunc("/v1/products", rt.listProducts)
	mux.HandleFunc("/v1/orders", rt.listOrders)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) handleFiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadFile(w, r)
	case http.MethodGet:
		rt.listFiles(w, r)
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (rt *Router) uploadFile(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	registered, err := rt.ingest.Upload(r.Context(), fileHeader.Filename, r.FormValue("entity_type"), file)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, registered)
}

func (rt *Router) listFiles(w http.ResponseWriter, r *http.Request) {
	files, err := rt.reads.List(r.Context(), parseLimit(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// handleFileRoutes dispatches /v1/files/{file_id} and its report and
// reprocess subresources.
func (rt *Router) handleFileRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/files/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "file id is required")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		rt.getFile(w, r, id)
	case sub == "report" && r.Method == http.MethodGet:
		rt.getReport(w, r, id)
	case sub == "reprocess" && r.Method == http.MethodPost:
		rt.reprocessFile(w, r, id)
	case sub == "" || sub == "report" || sub == "reprocess":
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	default:
		http.NotFound(w, r)
	}
}

func (rt *Router) getFile(w http.ResponseWriter, r *http.Request, id string) {
	file, err := rt.reads.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

func (rt *Router) getReport(w http.ResponseWriter, r *http.Request, id string) {
	report, err := rt.reads.ReportByFileID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) reprocessFile(w http.ResponseWriter, r *http.Request, id string) {
	file, err := rt.ingest.Requeue(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, file)
}

func (rt *Router) listCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	customers, err := rt.canonical.ListCustomers(r.Context(), parseLimit(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (rt *Router) listProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	products, err := rt.canonical.ListProducts(r.Context(), parseLimit(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (rt *Router) listOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	orders, err := rt.canonical.ListOrders(r.Context(), parseLimit(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// parseLimit reads the limit query parameter; zero means the store default.
func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return 0
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorResponse{
		Error:     message,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, mapErrorToHTTPStatus(err), err.Error())
}
