package models

import (
	"io"
	"time"
)

// UploadInput describes a file to store.
type UploadInput struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
	Folder      string
}

type UploadResult struct {
	DownloadURL string `json:"download_url"`
	FilePath    string `json:"file_path"`
	FileName    string `json:"file_name"`
	Size        int64  `json:"size"`
}

type StoredFile struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
