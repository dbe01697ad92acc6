package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/andrewpaige1/brickstat-api/apierr"
	"github.com/andrewpaige1/brickstat-api/models"
	"github.com/andrewpaige1/brickstat-api/store"
	"github.com/andrewpaige1/brickstat-api/utils"
)

// POST /reviews
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	in, err := decodeReviewInput(r)
	if err != nil {
		h.fail(w, "CreateReview", err)
		return
	}

	review, err := h.Store.CreateReview(r.Context(), in)
	if err != nil {
		h.fail(w, "CreateReview", err)
		return
	}

	writeJSON(w, http.StatusCreated, review.View())
}

// GET /reviews?set_num=
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Store.ListReviews(r.Context(), utils.QueryString(r, "set_num"))
	if err != nil {
		h.fail(w, "ListReviews", err)
		return
	}
	writeJSON(w, http.StatusOK, models.Views(reviews))
}

// GetReviewListing serves both GET /sets/{set_num}/reviews and
// GET /sets/reviews/{user_id}. The two patterns overlap on
// /sets/reviews/reviews, which ServeMux refuses to register, so they share one
// route and the literal "reviews" in the first segment wins.
func (h *Handler) GetReviewListing(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "reviews":
		r.SetPathValue("user_id", second)
		h.ListReviewsForUser(w, r)
	case second == "reviews":
		r.SetPathValue("set_num", first)
		h.ListReviewsForSet(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type setReviewsResponse struct {
	SetNum      string              `json:"set_num"`
	SetName     *string             `json:"set_name"`
	PieceCount  *int                `json:"piece_count"`
	ReleaseYear *int                `json:"release_year"`
	ReviewCount int64               `json:"review_count"`
	Reviews     []models.ReviewView `json:"reviews"`
}

// GET /sets/{set_num}/reviews
func (h *Handler) ListReviewsForSet(w http.ResponseWriter, r *http.Request) {
	res, err := h.Store.ListReviewsForSet(r.Context(), r.PathValue("set_num"))
	if err != nil {
		h.fail(w, "ListReviewsForSet", err)
		return
	}

	resp := setReviewsResponse{
		SetNum:      res.SetNum,
		ReviewCount: res.ReviewCount,
		Reviews:     models.Views(res.Reviews),
	}
	if res.Set != nil {
		resp.SetName = &res.Set.Name
		resp.PieceCount = res.Set.PieceCount
		resp.ReleaseYear = res.Set.ReleaseYear
	}
	writeJSON(w, http.StatusOK, resp)
}

type userReviewsResponse struct {
	UserID      int                 `json:"user_id"`
	ReviewCount int64               `json:"review_count"`
	Reviews     []models.ReviewView `json:"reviews"`
}

// GET /sets/reviews/{user_id}
func (h *Handler) ListReviewsForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.PathInt(r, "user_id")
	if err != nil {
		h.fail(w, "ListReviewsForUser", err)
		return
	}

	res, err := h.Store.ListReviewsForUser(r.Context(), userID)
	if err != nil {
		h.fail(w, "ListReviewsForUser", err)
		return
	}

	writeJSON(w, http.StatusOK, userReviewsResponse{
		UserID:      res.UserID,
		ReviewCount: res.ReviewCount,
		Reviews:     models.Views(res.Reviews),
	})
}

// DELETE /sets/{set_num}/reviews/{user_id}
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	setNum := r.PathValue("set_num")
	userID, err := utils.PathInt(r, "user_id")
	if err != nil {
		h.fail(w, "DeleteReview", err)
		return
	}

	err = h.Store.DeleteReview(r.Context(), setNum, userID)
	if errors.Is(err, apierr.ErrNotFound) {
		h.Log.Info("DeleteReview: no review to delete", zap.String("set_num", setNum), zap.Int("user_id", userID))
		writeError(w, http.StatusNotFound, "Review not found")
		return
	}
	if err != nil {
		h.fail(w, "DeleteReview", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Review deleted successfully"})
}

// decodeReviewInput reads the review body field by field so a wrongly typed
// value is reported against its own name.
func decodeReviewInput(r *http.Request) (store.ReviewInput, error) {
	var in store.ReviewInput

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return in, apierr.Invalid("", "request body must be a JSON object")
	}

	setNum, err := stringField(body, "set_num")
	if err != nil {
		return in, err
	}
	if setNum != nil {
		in.SetNum = *setNum
	}
	if in.SetName, err = stringField(body, "set_name"); err != nil {
		return in, err
	}

	for _, f := range []struct {
		name string
		dst  **int
	}{
		{"piece_count", &in.PieceCount},
		{"release_year", &in.ReleaseYear},
		{"user_id", &in.UserID},
		{"build_time_minutes", &in.BuildTimeMinutes},
		{"distraction_level", &in.DistractionLevel},
		{"organization_level", &in.OrganizationLevel},
		{"build_speed", &in.BuildSpeed},
	} {
		if *f.dst, err = intField(body, f.name); err != nil {
			return in, err
		}
	}

	if in.ReviewText, err = stringField(body, "review_text"); err != nil {
		return in, err
	}
	return in, nil
}

func intField(body map[string]any, name string) (*int, error) {
	raw, ok := body[name]
	if !ok || raw == nil {
		return nil, nil
	}
	num, ok := raw.(json.Number)
	if !ok {
		return nil, apierr.Invalid(name, "must be an integer")
	}
	n, err := num.Int64()
	if err != nil || n != int64(int32(n)) {
		return nil, apierr.Invalid(name, "must be an integer")
	}
	v := int(n)
	return &v, nil
}

func stringField(body map[string]any, name string) (*string, error) {
	raw, ok := body[name]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, apierr.Invalid(name, "must be a string")
	}
	return &s, nil
}
