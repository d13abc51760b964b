package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/interfaces"
	pkgutils "github.com/SundayYogurt/lending_portal/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UploadResponse struct {
	// URL is a hosted https URL, or a data URL when no object storage is
	// configured. Either can be sent back as a *_file field.
	URL      string `json:"url"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
}

type UploadHandler struct {
	uploader interfaces.Uploader
	maxBytes int64
}

func NewUploadHandler(uploader interfaces.Uploader, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploader: uploader, maxBytes: maxBytes}
}

func (h *UploadHandler) SetupRoutes(r Routes) {
	r.Self.Post("/documents", h.UploadDocument)
}

var allowedDocExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".pdf": true}

// POST /api/members/:memberID/documents
// form-data: file=<image|pdf>
func (h *UploadHandler) UploadDocument(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.ResponseError(c, fiber.StatusBadRequest, "file is required")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedDocExt[ext] {
		return utils.ResponseError(c, fiber.StatusBadRequest, "only jpg/jpeg/png/webp/pdf allowed")
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		return utils.ResponseError(c, fiber.StatusBadRequest, fmt.Sprintf("file too large (max %d bytes)", h.maxBytes))
	}

	f, err := file.Open()
	if err != nil {
		return utils.ResponseError(c, fiber.StatusInternalServerError, "cannot open uploaded file")
	}
	defer f.Close()

	b, err := pkgutils.ReadAllLimit(f, h.maxBytes)
	if err != nil {
		return utils.ResponseError(c, fiber.StatusBadRequest, err.Error())
	}
	mimeType := pkgutils.DetectMIME(b, file.Header.Get(fiber.HeaderContentType))

	if h.uploader == nil || !pkgutils.IsImageMIME(mimeType) {
		return utils.ResponseSuccess(c, fiber.StatusCreated, UploadResponse{
			URL:      pkgutils.EncodeDataURL(mimeType, b),
			MIMEType: mimeType,
			Size:     len(b),
		})
	}

	norm, err := pkgutils.NormalizeToJPG(b, 1200, 85)
	if err != nil {
		return utils.ResponseError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 20*time.Second)
	defer cancel()

	url, err := h.uploader.UploadBytes(ctx, "documents/"+c.Params("memberID"), uuid.NewString(), norm)
	if err != nil {
		return respondError(c, fmt.Errorf("upload failed: %w", err))
	}
	return utils.ResponseSuccess(c, fiber.StatusCreated, UploadResponse{
		URL:      url,
		MIMEType: "image/jpeg",
		Size:     len(norm),
	})
}
