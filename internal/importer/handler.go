package importer

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Handler exposes the import surface over plain HTTP. It lives on its own
// listener so bulk ingestion can be firewalled separately from the main
// API.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/import/purchase-orders", h.ImportPurchaseOrders).Methods("POST")
	router.HandleFunc("/api/import/purchase-orders/batch", h.ImportBatch).Methods("POST")
}

// ImportPurchaseOrders accepts a multipart upload with a "file" field
// holding the purchase order CSV.
func (h *Handler) ImportPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.service.Import(r.Context(), file)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("import failed")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	log.Info().Str("filename", header.Filename).Int("created", result.Created).Msg("import succeeded")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ImportBatch accepts a multipart upload with one or more "files" fields,
// each holding a purchase order CSV, and imports them concurrently.
func (h *Handler) ImportBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		http.Error(w, "files field is required", http.StatusBadRequest)
		return
	}

	files := make([]NamedReader, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			http.Error(w, "failed to open uploaded file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		files = append(files, NamedReader{Name: header.Filename, Reader: file})
	}

	result, err := h.service.ImportAll(r.Context(), files)
	if err != nil {
		log.Error().Err(err).Int("files", len(files)).Msg("batch import failed")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	log.Info().Int("files", len(files)).Int("created", result.Created).Msg("batch import succeeded")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
