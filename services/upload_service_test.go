package services

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apostolos-Valiakos/AptApp/pkg"
)

// memFile, multipart.File interface'ini bellek üzerinde sağlar.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func uploadInput(name, mimeType string, content []byte) (multipart.File, *multipart.FileHeader) {
	header := &multipart.FileHeader{
		Filename: name,
		Size:     int64(len(content)),
		Header:   textproto.MIMEHeader{"Content-Type": []string{mimeType}},
	}
	return memFile{bytes.NewReader(content)}, header
}

func TestUploadValid(t *testing.T) {
	svc := NewUploadService(1 << 20)

	file, header := uploadInput("fis.pdf", "application/pdf; charset=binary", []byte("pdf-icerigi"))
	result, err := svc.Upload(t.Context(), file, header)
	require.NoError(t, err)

	assert.Equal(t, "fis.pdf", result.Name)
	assert.Equal(t, "application/pdf", result.Type)
	assert.Equal(t, int64(len("pdf-icerigi")), result.Size)
	assert.NotEmpty(t, result.Base64)
	assert.Contains(t, result.URL, "data:application/pdf;base64,")
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	svc := NewUploadService(1 << 20)

	file, header := uploadInput("virus.exe", "application/x-msdownload", []byte{0x4D, 0x5A})
	_, err := svc.Upload(t.Context(), file, header)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestUploadRejectsOversize(t *testing.T) {
	svc := NewUploadService(8)

	// Header dürüst: Size limitin üstünde
	file, header := uploadInput("buyuk.png", "image/png", make([]byte, 64))
	_, err := svc.Upload(t.Context(), file, header)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Header yalan söylüyor: Size küçük görünür ama içerik büyük
	file, header = uploadInput("sinsi.png", "image/png", make([]byte, 64))
	header.Size = 4
	_, err = svc.Upload(t.Context(), file, header)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestUploadSanitizesFilename(t *testing.T) {
	svc := NewUploadService(1 << 20)

	file, header := uploadInput("../../etc/passwd", "text/plain", []byte("icerik"))
	result, err := svc.Upload(t.Context(), file, header)
	require.NoError(t, err)
	assert.Equal(t, "passwd", result.Name)

	file, header = uploadInput("..", "text/plain", []byte("icerik"))
	result, err = svc.Upload(t.Context(), file, header)
	require.NoError(t, err)
	assert.Equal(t, "unnamed", result.Name)
}
