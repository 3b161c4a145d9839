package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"circuitweb/internal/models"
	"circuitweb/internal/services"

	"github.com/labstack/echo/v4"
)

// StorageHandlers handles file uploads and lookups in object storage.
type StorageHandlers struct {
	storageService services.StorageService
	maxUploadBytes int64
}

func NewStorageHandlers(storageService services.StorageService, maxUploadBytes int64) *StorageHandlers {
	return &StorageHandlers{storageService: storageService, maxUploadBytes: maxUploadBytes}
}

// formFile returns nil when the field is absent or empty.
func formFile(c echo.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return nil, err
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form").SetInternal(err)
	}
	if fh.Size <= 0 {
		return nil, nil
	}
	return fh, nil
}

// UploadFile handles POST /api/storage/upload (multipart: file, folder)
func (h *StorageHandlers) UploadFile(c echo.Context) error {
	if _, err := callerID(c); err != nil {
		return err
	}

	fh, err := formFile(c, "file")
	if err != nil {
		return err
	}
	if fh == nil {
		return badRequest("No file uploaded")
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return badRequest(services.SizeLimitMessage(h.maxUploadBytes))
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, internalServerError).SetInternal(err)
	}
	defer src.Close()

	result, err := h.storageService.Upload(c.Request().Context(), &models.UploadInput{
		Reader:      src,
		Size:        fh.Size,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Folder:      c.FormValue("folder"),
	})
	if err != nil {
		return providerError(err, "")
	}

	return ok(c, "File uploaded successfully", Map{
		"download_url": result.DownloadURL,
		"file_path":    result.FilePath,
		"file_name":    result.FileName,
		"size":         result.Size,
	})
}

// GetFileURL handles GET /api/storage/url?filePath=
func (h *StorageHandlers) GetFileURL(c echo.Context) error {
	if _, err := callerID(c); err != nil {
		return err
	}

	filePath := strings.TrimSpace(c.QueryParam("filePath"))
	if filePath == "" {
		return badRequest("File path is required")
	}

	url, err := h.storageService.FileURL(c.Request().Context(), filePath)
	if err != nil {
		return serviceError(err, "File not found")
	}
	return ok(c, "File URL retrieved successfully", Map{"download_url": url})
}

// DeleteFile handles DELETE /api/storage/delete?filePath=
func (h *StorageHandlers) DeleteFile(c echo.Context) error {
	if _, err := callerID(c); err != nil {
		return err
	}

	filePath := strings.TrimSpace(c.QueryParam("filePath"))
	if filePath == "" {
		return badRequest("File path is required")
	}

	deleted, err := h.storageService.Delete(c.Request().Context(), filePath)
	if err != nil {
		return providerError(err, "File not found")
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	}
	return ok(c, "File deleted successfully", nil)
}

// ListFiles handles GET /api/storage/list?folder=
func (h *StorageHandlers) ListFiles(c echo.Context) error {
	if _, err := callerID(c); err != nil {
		return err
	}

	files, err := h.storageService.List(c.Request().Context(), c.QueryParam("folder"))
	if err != nil {
		return serviceError(err, "")
	}
	return ok(c, "Files listed successfully", Map{"files": files})
}

// UploadCircuitImage handles POST /api/storage/upload-circuit-image (multipart: image, circuitId)
func (h *StorageHandlers) UploadCircuitImage(c echo.Context) error {
	if _, err := callerID(c); err != nil {
		return err
	}

	fh, err := formFile(c, "image")
	if err != nil {
		return err
	}
	if fh == nil {
		return badRequest("No image uploaded")
	}
	circuitID := strings.TrimSpace(c.FormValue("circuitId"))
	if circuitID == "" {
		return badRequest("Circuit ID is required")
	}
	contentType := strings.ToLower(fh.Header.Get(echo.HeaderContentType))
	if !services.AllowedImageTypes[contentType] {
		return badRequest("Only image files are allowed (JPEG, PNG, GIF, WebP)")
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return badRequest(fmt.Sprintf("Image size exceeds %dMB limit", h.maxUploadBytes>>20))
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, internalServerError).SetInternal(err)
	}
	defer src.Close()

	result, err := h.storageService.UploadCircuitImage(c.Request().Context(), circuitID, &models.UploadInput{
		Reader:      src,
		Size:        fh.Size,
		FileName:    fh.Filename,
		ContentType: contentType,
	})
	if err != nil {
		return providerError(err, "")
	}

	return ok(c, "Circuit image uploaded successfully", Map{
		"download_url": result.DownloadURL,
		"file_path":    result.FilePath,
	})
}
