package menu

import (
	"mime"
	"path/filepath"
	"strings"

	"menuwise/internal/apperror"
)

// MaxUploadBytes caps a single menu image.
const MaxUploadBytes = 10 << 20

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".pdf":  "application/pdf",
}

func ValidateFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == "" {
		return apperror.ValidationFailed("image", "file extension missing")
	}

	if _, ok := allowedExt[ext]; !ok {
		return apperror.ValidationFailed("image", "file type not allowed")
	}

	return nil
}

func ValidateFileSize(size int64) error {
	if size <= 0 {
		return apperror.ValidationFailed("image", "file is empty")
	}
	if size > MaxUploadBytes {
		return apperror.ValidationFailed("image", "file is larger than 10 MB")
	}
	return nil
}

// contentTypeFor prefers the client's declared type and falls back to
// the extension.
func contentTypeFor(filename, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := allowedExt[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
