package services

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"circuitweb/internal/common"
	"circuitweb/internal/metrics"
	"circuitweb/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AllowedImageTypes are the content types accepted for circuit images.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

const circuitImageFolder = "circuits"

type StorageConfig struct {
	Bucket         string
	PublicURL      string
	URLExpiry      time.Duration
	MaxUploadBytes int64
}

type StorageService interface {
	Upload(ctx context.Context, in *models.UploadInput) (*models.UploadResult, error)
	UploadCircuitImage(ctx context.Context, circuitID string, in *models.UploadInput) (*models.UploadResult, error)
	FileURL(ctx context.Context, filePath string) (string, error)
	Delete(ctx context.Context, filePath string) (bool, error)
	List(ctx context.Context, folder string) ([]*models.StoredFile, error)
	Ping(ctx context.Context) error
}

type storageService struct {
	minio MinioService
	cfg   StorageConfig
	log   zerolog.Logger
}

func NewStorageService(minio MinioService, cfg StorageConfig, log zerolog.Logger) StorageService {
	return &storageService{minio: minio, cfg: cfg, log: log.With().Str("component", "storage").Logger()}
}

// SizeLimitMessage is the client message for oversize uploads.
func SizeLimitMessage(limit int64) string {
	return fmt.Sprintf("File size exceeds %dMB limit", limit>>20)
}

func (s *storageService) Upload(ctx context.Context, in *models.UploadInput) (*models.UploadResult, error) {
	return s.put(ctx, in, cleanFolder(in.Folder), "file")
}

func (s *storageService) UploadCircuitImage(ctx context.Context, circuitID string, in *models.UploadInput) (*models.UploadResult, error) {
	circuitID = strings.TrimSpace(circuitID)
	if circuitID == "" {
		return nil, common.Validation("Circuit ID is required")
	}
	if !AllowedImageTypes[strings.ToLower(in.ContentType)] {
		return nil, common.Validation("Only image files are allowed (JPEG, PNG, GIF, WebP)")
	}
	return s.put(ctx, in, path.Join(circuitImageFolder, cleanFolder(circuitID)), "circuit_image")
}

func (s *storageService) put(ctx context.Context, in *models.UploadInput, folder, kind string) (*models.UploadResult, error) {
	if in.Reader == nil || in.Size <= 0 {
		return nil, common.Validation("No file uploaded")
	}
	if s.cfg.MaxUploadBytes > 0 && in.Size > s.cfg.MaxUploadBytes {
		return nil, common.Validation(SizeLimitMessage(s.cfg.MaxUploadBytes))
	}

	fileName := cleanFileName(in.FileName)
	objectName := fileName
	if folder != "" {
		objectName = folder + "/" + fileName
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(fileName))
	}

	if err := s.minio.PutObject(ctx, s.cfg.Bucket, objectName, in.Reader, in.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	metrics.RecordUpload(kind, in.Size)

	url, err := s.FileURL(ctx, objectName)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("path", objectName).Int64("size", in.Size).Msg("file uploaded")

	return &models.UploadResult{
		DownloadURL: url,
		FilePath:    objectName,
		FileName:    fileName,
		Size:        in.Size,
	}, nil
}

// FileURL returns a public URL when a public base is configured, a presigned URL otherwise.
func (s *storageService) FileURL(ctx context.Context, filePath string) (string, error) {
	filePath = strings.TrimPrefix(strings.TrimSpace(filePath), "/")
	if filePath == "" {
		return "", common.Validation("File path is required")
	}
	if s.cfg.PublicURL != "" {
		return strings.TrimRight(s.cfg.PublicURL, "/") + "/" + s.cfg.Bucket + "/" + filePath, nil
	}
	return s.minio.PresignedGetURL(ctx, s.cfg.Bucket, filePath, s.cfg.URLExpiry)
}

// Delete reports false when nothing is stored at filePath.
func (s *storageService) Delete(ctx context.Context, filePath string) (bool, error) {
	filePath = strings.TrimPrefix(strings.TrimSpace(filePath), "/")
	if filePath == "" {
		return false, common.Validation("File path is required")
	}

	if _, err := s.minio.StatObject(ctx, s.cfg.Bucket, filePath); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := s.minio.RemoveObject(ctx, s.cfg.Bucket, filePath); err != nil {
		return false, err
	}
	s.log.Info().Str("path", filePath).Msg("file deleted")
	return true, nil
}

func (s *storageService) List(ctx context.Context, folder string) ([]*models.StoredFile, error) {
	prefix := cleanFolder(folder)
	if prefix != "" {
		prefix += "/"
	}

	objects, err := s.minio.ListObjects(ctx, s.cfg.Bucket, prefix)
	if err != nil {
		return nil, err
	}

	files := make([]*models.StoredFile, 0, len(objects))
	for _, obj := range objects {
		url, err := s.FileURL(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		contentType := obj.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(path.Ext(obj.Key))
		}
		files = append(files, &models.StoredFile{
			Name:      path.Base(obj.Key),
			Path:      obj.Key,
			Size:      obj.Size,
			Type:      contentType,
			URL:       url,
			CreatedAt: obj.LastModified,
		})
	}
	return files, nil
}

func (s *storageService) Ping(ctx context.Context) error {
	return s.minio.Ping(ctx, s.cfg.Bucket)
}

// cleanFolder normalises a folder prefix and strips any attempt to climb out of it.
func cleanFolder(folder string) string {
	folder = strings.ReplaceAll(strings.TrimSpace(folder), "\\", "/")
	cleaned := strings.Trim(path.Clean("/"+folder), "/")
	if cleaned == "." {
		return ""
	}
	return cleaned
}

func cleanFileName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return uuid.NewString()
	}
	return base
}
