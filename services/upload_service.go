package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/Apostolos-Valiakos/AptApp/pkg"
)

// UploadService, dosya yükleme iş mantığı interface'i.
//
// Dosyalar diske yazılmaz: upload endpoint'i dosyayı doğrular, base64'e
// çevirir ve client'a geri verir. Client bu payload'u chat:message
// frame'inin içinde gönderir, kalıcılık mesajla birlikte DB'de olur.
type UploadService interface {
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error)
}

// UploadResult, doğrulanmış dosyanın mesaja iliştirilmeye hazır hali.
type UploadResult struct {
	URL    string `json:"url"` // data URI — önizleme için
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Type   string `json:"type"`
	Base64 string `json:"base64"`
}

type uploadService struct {
	maxSize int64
}

// NewUploadService, constructor.
func NewUploadService(maxSize int64) UploadService {
	return &uploadService{maxSize: maxSize}
}

// allowedMimeTypes, yüklemeye izin verilen dosya türleri.
var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/webm":      true,
	"audio/mpeg":      true,
	"audio/ogg":       true,
	"application/pdf": true,
	"text/plain":      true,
}

// Upload, dosyayı doğrular ve base64 payload olarak döner.
func (s *uploadService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	// Boyut kontrolü
	if header.Size > s.maxSize {
		return nil, fmt.Errorf("%w: file too large (max %dMB)", pkg.ErrBadRequest, s.maxSize/(1024*1024))
	}

	// MIME type kontrolü
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// Sadece base MIME type'ı al (charset vb. parametre olabilir)
	mimeBase := strings.Split(contentType, ";")[0]
	mimeBase = strings.TrimSpace(mimeBase)

	if !allowedMimeTypes[mimeBase] {
		return nil, fmt.Errorf("%w: file type not allowed: %s", pkg.ErrBadRequest, mimeBase)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	// Size header'ı yalan söyleyebilir — gerçek boyut da kontrol edilir
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w: file too large (max %dMB)", pkg.ErrBadRequest, s.maxSize/(1024*1024))
	}

	encoded := base64.StdEncoding.EncodeToString(data)

	return &UploadResult{
		URL:    "data:" + mimeBase + ";base64," + encoded,
		Name:   sanitizeFilename(header.Filename),
		Size:   int64(len(data)),
		Type:   mimeBase,
		Base64: encoded,
	}, nil
}

// sanitizeFilename, dosya adını güvenli hale getirir.
// Path traversal saldırılarını önler (../../etc/passwd gibi).
func sanitizeFilename(name string) string {
	// Sadece dosya adını al (dizin yolunu kaldır)
	name = filepath.Base(name)

	// Tehlikeli karakterleri kaldır
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '\x00' {
			return -1 // Karakteri sil
		}
		return r
	}, name)

	if name == "" || name == "." || name == ".." {
		name = "unnamed"
	}

	return name
}
