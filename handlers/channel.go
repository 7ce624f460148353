package handlers

import (
	"net/http"

	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
	"github.com/Apostolos-Valiakos/AptApp/services"
)

// ChannelHandler, kanal endpoint'lerini yöneten struct.
type ChannelHandler struct {
	channelService services.ChannelService
}

// NewChannelHandler, constructor.
func NewChannelHandler(channelService services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

// List godoc
// GET /api/channels
// Kullanıcının üyesi olduğu kanalları member_count ve unread_count ile döner.
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	channels, err := h.channelService.List(r.Context(), user.ID, user.ShopID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channels)
}

// Create godoc
// POST /api/channels
// Yeni kanal oluşturur, seçilen üyelerle birlikte.
func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateChannelRequest
	if !decodeBody(w, r, &req) {
		return
	}

	channel, err := h.channelService.Create(r.Context(), user.ID, user.ShopID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, channel)
}

// Members godoc
// GET /api/channels/{id}/members
// Kanal üye listesini profilleriyle döner.
//
// r.PathValue("id") — Go 1.22+ ile gelen path parameter desteği.
// Route tanımında {id} olarak yazılan parametreyi çeker.
func (h *ChannelHandler) Members(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	members, err := h.channelService.Members(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, members)
}

// AddMember godoc
// POST /api/channels/{id}/members
// Body: { "user_id": "..." }
func (h *ChannelHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.AddMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.channelService.AddMember(r.Context(), user.ID, r.PathValue("id"), &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "member added"})
}

// ShopUsers godoc
// GET /api/users
// Shop'taki tüm personeli döner — kanal oluşturma ekranındaki üye seçimi için.
func (h *ChannelHandler) ShopUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	users, err := h.channelService.ShopUsers(r.Context(), user.ShopID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, users)
}
