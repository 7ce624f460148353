package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Apostolos-Valiakos/AptApp/pkg"
	"github.com/Apostolos-Valiakos/AptApp/services"
)

// MessageHandler, mesaj endpoint'lerini yöneten struct.
//
// Mesaj GÖNDERİMİ burada değildir — mesajlar WebSocket üzerinden akar.
// HTTP tarafı geçmiş sorgusu, dosya hazırlığı ve dosya indirme sunar.
type MessageHandler struct {
	messageService services.MessageService
	uploadService  services.UploadService
	maxUploadSize  int64
}

// NewMessageHandler, constructor.
func NewMessageHandler(
	messageService services.MessageService,
	uploadService services.UploadService,
	maxUploadSize int64,
) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		uploadService:  uploadService,
		maxUploadSize:  maxUploadSize,
	}
}

// History godoc
// GET /api/channels/{id}/messages?before=ID&limit=50
// Mesajları cursor-based pagination ile, en-eski-önce döner.
//
// Query parametreleri:
// - before: Bu mesaj ID'sinden önceki mesajları getir (boşsa en yenilerden başla)
// - limit: Kaç mesaj dönsün (default 50, max 100)
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	channelID := r.PathValue("id")
	beforeID := r.URL.Query().Get("before")

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	page, err := h.messageService.History(r.Context(), user.ID, channelID, beforeID, limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Upload godoc
// POST /api/uploads
// Multipart form'daki "file" field'ını doğrular ve base64 payload döner.
// Client bu payload'u chat:message frame'ine iliştirir.
func (h *MessageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// ParseMultipartForm nedir?
	// HTTP request body'sini multipart form olarak parse eder.
	// maxUploadSize parametresi bellek limitini belirler —
	// bu boyutu aşan dosyalar otomatik olarak geçici dosyaya yazılır.
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.uploadService.Upload(r.Context(), file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}

// File godoc
// GET /api/messages/{id}/file
// Dosyalı mesajın içeriğini binary olarak indirir.
func (h *MessageHandler) File(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	messageID := r.PathValue("id")

	message, data, err := h.messageService.File(r.Context(), user.ID, messageID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	contentType := "application/octet-stream"
	if message.FileType != nil && *message.FileType != "" {
		contentType = *message.FileType
	}

	filename := "file"
	if message.FileName != nil && *message.FileName != "" {
		filename = *message.FileName
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	// RFC 5987: UTF-8 dosya adları için filename* parametresi.
	// Sadece filename="..." kullanılsaydı Türkçe karakterli adlar bozulurdu.
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
			sanitizeHeaderFilename(filename), url.PathEscape(filename)))

	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// sanitizeHeaderFilename, header'a gömülecek fallback dosya adını ASCII'ye indirger.
func sanitizeHeaderFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '"' || r == '\\' || r < 0x20 || r > 0x7e {
			out = append(out, '_')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
