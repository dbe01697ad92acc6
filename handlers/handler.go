package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/andrewpaige1/brickstat-api/apierr"
	"github.com/andrewpaige1/brickstat-api/catalog"
	"github.com/andrewpaige1/brickstat-api/models"
	"github.com/andrewpaige1/brickstat-api/store"
)

// ReviewStore is the persistence the handlers need.
type ReviewStore interface {
	CreateReview(ctx context.Context, in store.ReviewInput) (*models.Review, error)
	ListReviews(ctx context.Context, setNum *string) ([]models.Review, error)
	ListReviewsForSet(ctx context.Context, setNum string) (*store.SetReviews, error)
	ListReviewsForUser(ctx context.Context, userID int) (*store.UserReviews, error)
	DeleteReview(ctx context.Context, setNum string, userID int) error
	HealthCheck(ctx context.Context) store.Health
}

// SetCatalog is the upstream set lookup.
type SetCatalog interface {
	FetchSet(ctx context.Context, setNum string) (*catalog.SetMetadata, error)
	FetchTheme(ctx context.Context, themeID int) (*catalog.Theme, error)
}

type Handler struct {
	Store   ReviewStore
	Catalog SetCatalog
	Log     *zap.Logger
}

func New(reviews ReviewStore, sets SetCatalog, log *zap.Logger) *Handler {
	return &Handler{Store: reviews, Catalog: sets, Log: log.Named("handlers")}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	// Sets
	mux.HandleFunc("GET /sets/{set_num}", h.GetSet)
	mux.HandleFunc("GET /sets/{set_num}/estimate", h.GetSetEstimate)
	mux.HandleFunc("GET /sets/{first}/{second}", h.GetReviewListing)

	// Reviews
	mux.HandleFunc("POST /reviews", h.CreateReview)
	mux.HandleFunc("GET /reviews", h.ListReviews)
	mux.HandleFunc("DELETE /sets/{set_num}/reviews/{user_id}", h.DeleteReview)

	// Health
	mux.HandleFunc("GET /db_health", h.DBHealth)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail writes err with the status its kind maps to. Store and unexpected
// failures are logged and answered with a generic message.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	status := apierr.Status(err)

	var ve *apierr.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, status, map[string]string{"error": ve.Error(), "field": ve.Field})
		return
	}

	switch status {
	case http.StatusNotFound:
		writeError(w, status, "Not found")
	case http.StatusConflict:
		h.Log.Warn(op+": conflict", zap.Error(err))
		writeError(w, status, "Conflicting write, please retry")
	case http.StatusInternalServerError:
		h.Log.Error(op+": failed", zap.Error(err))
		writeError(w, status, "Internal server error")
	default:
		h.Log.Error(op+": upstream failure", zap.Error(err), zap.Int("status", status))
		writeError(w, status, "Catalog lookup failed")
	}
}
