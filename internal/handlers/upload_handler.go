// File: internal/handlers/upload_handler.go
package handlers

import (
	"fmt"
	"log"
	"net/http"
	"path"

	"github.com/google/uuid"

	"github.com/inkwell-blog/go-inkwell/internal/services/storage"
)

const maxUploadBytes = 8 << 20 // 8 MiB

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadHandler stores post cover images in the bucket.
type UploadHandler struct {
	Bucket storage.BucketService
}

func NewUploadHandler(bucket storage.BucketService) *UploadHandler {
	return &UploadHandler{Bucket: bucket}
}

// UploadImage accepts a multipart image, stores it under a fresh key, and
// returns the public URL for use as a post cover.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUserID(r); !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if h.Bucket == nil {
		writeError(w, "Uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, "File too large or malformed upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, "Missing image field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		writeError(w, "Unsupported image type", http.StatusUnsupportedMediaType)
		return
	}

	key := path.Join("covers", fmt.Sprintf("%s%s", uuid.NewString(), ext))
	if err := h.Bucket.UploadFile(r.Context(), key, file, contentType); err != nil {
		log.Printf("[UploadHandler] upload failed: %v", err)
		writeError(w, "Could not store image", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"url": h.Bucket.GetPublicURL(key),
	})
}
