// backend/src/handlers/import_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/dealfolio/backend/src/config"
	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/security/validation"
	"github.com/username/dealfolio/backend/src/services"
	"github.com/username/dealfolio/backend/src/utils"
)

type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(service services.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: service,
	}
}

// HandleUpload accepts a multipart trade-report upload, validates it and
// runs it through the parsing pipeline.
func (h *ImportHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	reqLog := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		reqLog.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		reqLog.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		reqLog.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB (header check)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		reqLog.Warn("Invalid client-declared file type", "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		reqLog.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	reqLog.Info("File content validated", "filename", fileHeader.Filename, "clientType", clientContentType, "detectedType", detectedContentType)

	result, err := h.importService.ProcessUpload(file, userID, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			reqLog.Warn("Upload processing failed during report parsing", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing report file: %v", err), http.StatusBadRequest)
		} else {
			reqLog.Error("Internal error processing upload", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	if result.Deals == nil {
		result.Deals = []models.ParsedDeal{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		reqLog.Error("Error encoding JSON response for upload result", "error", err)
	}
}

// HandleGetLatest returns the most recent import result for the user, with
// ETag support so the trade-entry form can poll cheaply.
func (h *ImportHandler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	reqLog := logger.FromContext(r.Context())

	result, err := h.importService.GetLatestImportResult(userID)
	if err != nil {
		reqLog.Error("Error retrieving latest import result", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving import result for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if result.Deals == nil {
		result.Deals = []models.ParsedDeal{}
	}

	currentETag, etagErr := utils.GenerateETag(result)

	w.Header().Set("Cache-Control", "no-cache, private")
	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	} else {
		reqLog.Warn("Proceeding without ETag check", "error", etagErr)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		reqLog.Error("Error generating JSON response for import result", "error", err)
	}
}

// HandleCombine merges a caller-supplied deal list per symbol/direction.
// Pure computation, nothing is persisted; the trade-entry form uses it for
// its "merge partials" action.
func (h *ImportHandler) HandleCombine(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserIDFromContext(r.Context()); !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var deals []models.ParsedDeal
	if err := json.NewDecoder(r.Body).Decode(&deals); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Invalid deal list: %v", err), http.StatusBadRequest)
		return
	}

	combined := h.importService.CombineDeals(deals)
	if combined == nil {
		combined = []models.ParsedDeal{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(combined); err != nil {
		logger.FromContext(r.Context()).Error("Error encoding JSON response for combined deals", "error", err)
	}
}
