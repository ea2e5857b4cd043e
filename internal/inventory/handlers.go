package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/expiry-tracker/internal/expiry"
	"github.com/zombor/expiry-tracker/internal/scanning"
)

// High-resolution phone photos, up to three per scan
const maxUploadSize = int64(50 << 20)

// jsonError writes an error response as {"error": "..."}
func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// ocrRequest accepts either a batch or the single legacy image field
type ocrRequest struct {
	Image  string   `json:"image"`
	Images []string `json:"images"`
}

type ocrResponse struct {
	Success          bool           `json:"success"`
	ProductCode      *string        `json:"productCode"`
	ExpirationDate   expiry.Date    `json:"expirationDate"`
	ExpirationStatus *expiry.Status `json:"expirationStatus"`
	RawText          string         `json:"rawText"`
	Error            string         `json:"error,omitempty"`
}

// handleOCR reads the text of 1 to 3 photos and returns the product code and expiry
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	var (
		images []scanning.Image
		err    error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		images, err = readMultipartImages(r)
	} else {
		images, err = readJSONImages(r)
	}
	if err != nil {
		slog.Error("Error reading images", "error", err)
		writeJSON(w, http.StatusBadRequest, ocrResponse{Error: err.Error()})
		return
	}

	outcome, err := s.service.Scan(r.Context(), images)
	switch {
	case errors.Is(err, expiry.ErrNoImages):
		writeJSON(w, http.StatusBadRequest, ocrResponse{Error: "No images provided"})
		return
	case errors.Is(err, ErrTooManyImages):
		writeJSON(w, http.StatusBadRequest, ocrResponse{Error: fmt.Sprintf("At most %d images can be scanned at once", MaxImages)})
		return
	case err != nil:
		slog.Error("Error scanning images", "error", err)
		writeJSON(w, http.StatusInternalServerError, ocrResponse{Error: "Error processing images"})
		return
	}

	resp := ocrResponse{
		Success:        outcome.Success,
		ExpirationDate: outcome.ExpirationDate,
		RawText:        outcome.RawText,
	}
	if outcome.ProductCode != "" {
		resp.ProductCode = &outcome.ProductCode
	}
	if outcome.Status != "" {
		resp.ExpirationStatus = &outcome.Status
	}
	if !outcome.Success {
		resp.Error = "No product code or expiration date could be detected"
	}

	writeJSON(w, http.StatusOK, resp)
}

func readJSONImages(r *http.Request) ([]scanning.Image, error) {
	var req ocrRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body")
	}

	payloads := req.Images
	if len(payloads) == 0 && req.Image != "" {
		payloads = []string{req.Image}
	}
	if len(payloads) > MaxImages {
		return nil, ErrTooManyImages
	}

	images := make([]scanning.Image, 0, len(payloads))
	for i, p := range payloads {
		img, err := scanning.DecodeImage(p)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		images = append(images, img)
	}
	return images, nil
}

func readMultipartImages(r *http.Request) ([]scanning.Image, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("upload is too large, the maximum is 50MB")
		}
		return nil, fmt.Errorf("error parsing form")
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) > MaxImages {
		return nil, ErrTooManyImages
	}

	images := make([]scanning.Image, 0, len(headers))
	for _, h := range headers {
		img, err := readFormFile(h)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func readFormFile(header *multipart.FileHeader) (scanning.Image, error) {
	f, err := header.Open()
	if err != nil {
		return scanning.Image{}, fmt.Errorf("opening %s: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return scanning.Image{}, fmt.Errorf("reading %s: %w", header.Filename, err)
	}
	if len(data) == 0 {
		return scanning.Image{}, fmt.Errorf("%s: %w", header.Filename, scanning.ErrEmptyImage)
	}

	return scanning.Image{Data: data, ContentType: contentTypeOf(header)}, nil
}

// contentTypeOf prefers the part's header and falls back to the file extension
func contentTypeOf(header *multipart.FileHeader) string {
	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	// Left empty so the scanner sniffs the bytes
	return ""
}

// handleRecordUnit saves a confirmed unit
func (s *Server) handleRecordUnit(w http.ResponseWriter, r *http.Request) {
	var input UnitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	unit, err := s.service.RecordUnit(input)
	if errors.Is(err, ErrInvalidUnit) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("Error recording unit", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, unit)
}

// handleListUnits returns all units, optionally filtered by ?product=
func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := s.service.ListUnits(r.URL.Query().Get("product"))
	if err != nil {
		slog.Error("Error listing units", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Always return an array, not null
	if units == nil {
		units = []*Unit{}
	}

	writeJSON(w, http.StatusOK, units)
}

// handleGetUnit returns a single unit
func (s *Server) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	unit, err := s.service.GetUnit(r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		jsonError(w, "Unit not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Error getting unit", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, unit)
}

// handleDeleteUnit deletes a unit
func (s *Server) handleDeleteUnit(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteUnit(r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		jsonError(w, "Unit not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Error deleting unit", "error", err)
		jsonError(w, "Error deleting unit", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleFinalizeProduct closes the counting session of a product
func (s *Server) handleFinalizeProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductName string `json:"productName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	summary, err := s.service.FinalizeProduct(req.ProductName)
	switch {
	case errors.Is(err, ErrInvalidUnit):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		slog.Error("Error finalizing product", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleListProducts returns the finalized product summaries
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.service.ListProducts()
	if err != nil {
		slog.Error("Error listing products", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if products == nil {
		products = []*ProductSummary{}
	}

	writeJSON(w, http.StatusOK, products)
}

// handleGetSettings returns the alert window
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.service.Settings()
	if err != nil {
		slog.Error("Error getting settings", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// handleUpdateSettings changes the alert window
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpirationAlertMonths int `json:"expirationAlertMonths"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	settings, err := s.service.UpdateSettings(req.ExpirationAlertMonths)
	if errors.Is(err, ErrInvalidAlertMonths) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("Error updating settings", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// handleDashboard returns unit counts per status
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.service.Dashboard()
	if err != nil {
		slog.Error("Error building dashboard", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// handleExport streams the inventory workbook
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportXLSX()
	if err != nil {
		slog.Error("Error exporting inventory", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	w.Write(data)
}
