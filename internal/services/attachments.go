package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SundayYogurt/lending_portal/internal/interfaces"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"github.com/SundayYogurt/lending_portal/pkg/utils"
	"go.uber.org/zap"
)

const (
	imageMaxWidth = 1200
	jpgQuality    = 85
)

// attachmentPolicy validates data-URL payloads and optionally moves image
// payloads to object storage.
type attachmentPolicy struct {
	maxBytes int64
	uploader interfaces.Uploader
}

func (p attachmentPolicy) check(field, payload string, imageOnly bool) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", validationErr(field + " is required")
	}

	declared, b, err := utils.DecodeDataURL(payload)
	if err != nil {
		return nil, "", validationErr(field + " must be a base64 data url")
	}
	if len(b) == 0 {
		return nil, "", validationErr(field + " is empty")
	}
	if p.maxBytes > 0 && int64(len(b)) > p.maxBytes {
		return nil, "", validationErr(fmt.Sprintf("%s size is too large (max %d bytes)", field, p.maxBytes))
	}

	if imageOnly && !utils.IsImageMIME(utils.DetectMIME(b, "")) {
		return nil, "", validationErr(field + " must be an image")
	}
	return b, utils.PayloadMIME(b, declared), nil
}

// store returns the value to persist for an image attachment: a hosted
// URL when an uploader is configured, otherwise the canonical data URL.
func (p attachmentPolicy) store(ctx context.Context, folder, name string, b []byte, mimeType string) string {
	if p.uploader == nil || !utils.IsImageMIME(mimeType) {
		return utils.EncodeDataURL(mimeType, b)
	}

	norm, err := utils.NormalizeToJPG(b, imageMaxWidth, jpgQuality)
	if err != nil {
		logger.Warn("normalize image failed, keeping original", zap.String("name", name), zap.Error(err))
		return utils.EncodeDataURL(mimeType, b)
	}

	url, err := p.uploader.UploadBytes(ctx, folder, name, norm)
	if err != nil {
		logger.Warn("upload image failed, keeping inline payload", zap.String("name", name), zap.Error(err))
		return utils.EncodeDataURL("image/jpeg", norm)
	}
	return url
}

// optional validates an attachment that may be left empty.
func (p attachmentPolicy) optional(field, payload string) error {
	if strings.TrimSpace(payload) == "" {
		return nil
	}
	_, _, err := p.check(field, payload, false)
	return err
}
