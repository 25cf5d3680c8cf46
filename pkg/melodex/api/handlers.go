// Package api exposes the Melodex platform over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/melodex/melodex/pkg/melodex"
)

// maxUploadSize bounds the multipart form held in memory per request.
const maxUploadSize = 100 << 20

// Handler handles HTTP requests for the asset platform
type Handler struct {
	service     melodex.Service
	adminWallet string
}

// NewHandler creates a new API handler. adminWallet is the configured
// moderation wallet; comments from other wallets are logged but not
// rejected (the UI gates the admin panel client-side).
func NewHandler(service melodex.Service, adminWallet string) *Handler {
	return &Handler{
		service:     service,
		adminWallet: adminWallet,
	}
}

// Routes returns the routes for the asset platform
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/upload", h.Upload)
	r.Get("/assets", h.ListAssets)
	r.Get("/music", h.ListMusic)
	r.Delete("/delete", h.DeleteAsset)
	r.Post("/toggle-hide", h.ToggleHidden)

	r.Post("/admin-comment", h.AddComment)
	r.Get("/admin-comment", h.GetComments)

	r.Get("/notifications", h.Notifications)
	r.Post("/notifications", h.MarkNotificationRead)

	return r
}

// Upload accepts a multipart submission and runs the full
// upload-and-registration pipeline.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	noCache(w)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req := melodex.UploadRequest{
		Type:           melodex.AssetType(r.FormValue("type")),
		Title:          r.FormValue("title"),
		Artist:         r.FormValue("artist"),
		Description:    r.FormValue("description"),
		Price:          r.FormValue("price"),
		Owner:          r.FormValue("owner"),
		AttributesJSON: r.FormValue("attributes"),
		TextContent:    r.FormValue("textContent"),
	}

	if file, header, err := r.FormFile("mediaFile"); err == nil {
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}
		req.MediaFile = data
		req.MediaName = header.Filename
		req.MediaType = header.Header.Get("Content-Type")
	}

	if file, header, err := r.FormFile("coverFile"); err == nil {
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}
		req.CoverFile = data
		req.CoverName = header.Filename
	}

	result, err := h.service.Upload(r.Context(), req)
	if err != nil {
		slog.Error("upload failed", "title", req.Title, "owner", req.Owner, "error", err)
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	slog.Info("asset uploaded", "id", result.Record.ID, "ip_id", result.IPID, "type", result.Record.Type)
	render.JSON(w, r, map[string]any{
		"success":     true,
		"message":     "Asset uploaded and IP registered successfully",
		"data":        result.Record,
		"ipId":        result.IPID,
		"txHash":      result.TxHash,
		"explorerUrl": result.ExplorerURL,
	})
}

// ListAssets returns the full current collection. Filtering is a
// client concern.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	noCache(w)

	assets, err := h.service.ListAssets(r.Context())
	if err != nil {
		slog.Error("failed to load assets", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]any{
			"success": false,
			"error":   "Failed to load assets",
			"assets":  []melodex.AssetRecord{},
		})
		return
	}

	render.JSON(w, r, map[string]any{
		"success": true,
		"assets":  assets,
	})
}

// ListMusic is the legacy listing endpoint; responses carry the old
// audioUrl/imageUrl field names alongside the current ones.
func (h *Handler) ListMusic(w http.ResponseWriter, r *http.Request) {
	noCache(w)

	assets, err := h.service.ListAssets(r.Context())
	if err != nil {
		slog.Error("failed to load assets", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]any{
			"success": false,
			"error":   "Failed to load assets",
			"music":   []melodex.AssetRecord{},
			"assets":  []melodex.AssetRecord{},
		})
		return
	}

	mapped := make([]melodex.AssetRecord, len(assets))
	for i, a := range assets {
		a.LegacyAudioURL = a.MediaURL
		a.LegacyImageURL = a.CoverURL
		mapped[i] = a
	}

	render.JSON(w, r, map[string]any{
		"success": true,
		"music":   mapped,
		"assets":  mapped,
	})
}

// DeleteAsset permanently removes a record owned by the caller.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	noCache(w)

	id := r.URL.Query().Get("id")
	owner := r.URL.Query().Get("owner")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "Asset ID is required")
		return
	}
	if owner == "" {
		writeError(w, r, http.StatusBadRequest, "Owner address is required for verification")
		return
	}

	result, err := h.service.DeleteAsset(r.Context(), id, owner)
	if err != nil {
		slog.Error("delete failed", "id", id, "owner", owner, "error", err)
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	render.JSON(w, r, map[string]any{
		"success":   true,
		"message":   "Asset deleted successfully",
		"deleted":   result.Deleted,
		"remaining": result.Remaining,
	})
}

// ToggleHidden flips a record's explore-page visibility.
func (h *Handler) ToggleHidden(w http.ResponseWriter, r *http.Request) {
	noCache(w)

	id := r.URL.Query().Get("id")
	owner := r.URL.Query().Get("owner")
	if id == "" || owner == "" {
		writeError(w, r, http.StatusBadRequest, "Missing id or owner")
		return
	}

	hidden, err := h.service.ToggleHidden(r.Context(), id, owner)
	if err != nil {
		slog.Error("toggle hide failed", "id", id, "error", err)
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	message := "Asset visible on explore page"
	if hidden {
		message = "Asset hidden from explore page"
	}
	render.JSON(w, r, map[string]any{
		"success": true,
		"message": message,
		"hidden":  hidden,
	})
}

type addCommentRequest struct {
	Comment string `json:"comment"`
}

// AddComment appends a moderation comment to a record.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	noCache(w)

	id := r.URL.Query().Get("id")
	admin := r.URL.Query().Get("admin")

	var body addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if id == "" || admin == "" || body.Comment == "" {
		writeError(w, r, http.StatusBadRequest, "Missing id, admin, or comment")
		return
	}

	if h.adminWallet != "" && !strings.EqualFold(admin, h.adminWallet) {
		slog.Warn("comment from non-admin wallet", "admin", admin)
	}

	comment, err := h.service.AddComment(r.Context(), id, admin, body.Comment)
	if err != nil {
		slog.Error("add comment failed", "id", id, "error", err)
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	render.JSON(w, r, map[string]any{
		"success": true,
		"message": "Comment added successfully",
		"comment": comment,
	})
}

// GetComments returns the comments attached to one record.
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	noCache(w)

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "Missing id")
		return
	}

	comments, err := h.service.Comments(r.Context(), id)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	render.JSON(w, r, map[string]any{
		"success":  true,
		"comments": comments,
	})
}

// Notifications returns an owner's feed derived from admin comments on
// their records.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	noCache(w)

	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, r, http.StatusBadRequest, "Missing owner")
		return
	}

	notifications, unread, err := h.service.Notifications(r.Context(), owner)
	if err != nil {
		slog.Error("notifications failed", "owner", owner, "error", err)
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	render.JSON(w, r, map[string]any{
		"success":       true,
		"notifications": notifications,
		"unreadCount":   unread,
	})
}

type markReadRequest struct {
	CommentID string `json:"commentId"`
	AssetID   string `json:"assetId"`
	// MusicID is the pre-migration name for AssetID, still accepted.
	MusicID string `json:"musicId"`
	Owner   string `json:"owner"`
}

// MarkNotificationRead flips one comment's read flag.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	noCache(w)

	var body markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	assetID := body.AssetID
	if assetID == "" {
		assetID = body.MusicID
	}
	if body.CommentID == "" || assetID == "" || body.Owner == "" {
		writeError(w, r, http.StatusBadRequest, "Missing commentId, assetId, or owner")
		return
	}

	if err := h.service.MarkNotificationRead(r.Context(), assetID, body.CommentID, body.Owner); err != nil {
		slog.Error("mark read failed", "asset_id", assetID, "comment_id", body.CommentID, "error", err)
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	render.JSON(w, r, map[string]any{
		"success": true,
		"message": "Notification marked as read",
	})
}

// noCache disables caching; the collection can change between requests
// and the UI does not tolerate staleness.
func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]any{
		"success": false,
		"error":   message,
	})
}

// statusFor maps service errors to HTTP status codes. Anything outside
// the known client errors surfaces as a 500 with the raw message.
func statusFor(err error) int {
	switch {
	case errors.Is(err, melodex.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, melodex.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, melodex.ErrMissingFields), errors.Is(err, melodex.ErrInvalidOwnerAddress):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
