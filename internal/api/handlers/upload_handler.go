package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"baustelle-wms-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Images are attached to requests as delivery context for the warehouse;
// anything bigger than a phone photo is rejected.
const maxUploadSize = 5 << 20 // 5 MB

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type UploadHandler struct {
	S3Uploader *s3.Uploader
}

// UploadImage stores a single image and returns its metadata. The caller
// associates the returned URL with a request when submitting it.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file is required"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported file type: %s", ext)})
		return
	}

	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large, maximum is 5MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	objectKey := fmt.Sprintf("request-images/%s%s", uuid.New().String(), ext)

	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":      url,
		"filename": fileHeader.Filename,
		"size":     fileHeader.Size,
		"path":     objectKey,
	})
}

// UploadImages stores up to five images in one call. Per-file failures are
// reported alongside the successes instead of failing the whole batch.
func (h *UploadHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Multipart form is required"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one file is required"})
		return
	}
	if len(files) > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At most 5 files per upload"})
		return
	}

	type uploadedFile struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
		Path     string `json:"path"`
	}
	type failedFile struct {
		Filename string `json:"filename"`
		Error    string `json:"error"`
	}

	var uploaded []uploadedFile
	var failed []failedFile

	for _, fileHeader := range files {
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedExtensions[ext] {
			failed = append(failed, failedFile{Filename: fileHeader.Filename, Error: "unsupported file type"})
			continue
		}
		if fileHeader.Size > maxUploadSize {
			failed = append(failed, failedFile{Filename: fileHeader.Filename, Error: "file too large"})
			continue
		}

		file, err := fileHeader.Open()
		if err != nil {
			failed = append(failed, failedFile{Filename: fileHeader.Filename, Error: "failed to read file"})
			continue
		}

		objectKey := fmt.Sprintf("request-images/%s%s", uuid.New().String(), ext)
		url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
		file.Close()
		if err != nil {
			failed = append(failed, failedFile{Filename: fileHeader.Filename, Error: err.Error()})
			continue
		}

		uploaded = append(uploaded, uploadedFile{
			URL:      url,
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Path:     objectKey,
		})
	}

	if uploaded == nil {
		uploaded = []uploadedFile{}
	}
	if failed == nil {
		failed = []failedFile{}
	}

	c.JSON(http.StatusOK, gin.H{
		"uploaded": uploaded,
		"errors":   failed,
		"total":    len(files),
	})
}
