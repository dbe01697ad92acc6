package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/andrewpaige1/brickstat-api/apierr"
	"github.com/andrewpaige1/brickstat-api/estimator"
	"github.com/andrewpaige1/brickstat-api/utils"
)

type setResponse struct {
	SetName string `json:"set_name"`
	SetNum  string `json:"set_num"`
	Year    int    `json:"year"`
	Pieces  int    `json:"pieces"`
	Image   string `json:"image"`
	Theme   string `json:"theme,omitempty"`
}

// GET /sets/{set_num}
func (h *Handler) GetSet(w http.ResponseWriter, r *http.Request) {
	setNum := r.PathValue("set_num")

	s, err := h.Catalog.FetchSet(r.Context(), setNum)
	if errors.Is(err, apierr.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Invalid set number")
		return
	}
	if err != nil {
		h.fail(w, "GetSet", err)
		return
	}

	resp := setResponse{
		SetName: s.Name,
		SetNum:  s.SetNum,
		Year:    s.Year,
		Pieces:  s.NumParts,
		Image:   s.ImageURL,
	}
	if s.ThemeID != nil {
		theme, err := h.Catalog.FetchTheme(r.Context(), *s.ThemeID)
		if err != nil {
			h.fail(w, "GetSet", err)
			return
		}
		if theme != nil {
			resp.Theme = theme.Name
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type estimateResponse struct {
	SetNum            string  `json:"set_num"`
	SetName           string  `json:"set_name"`
	Pieces            int     `json:"pieces"`
	BuildStyle        int     `json:"build_style"`
	DistractionLevel  int     `json:"distraction_level"`
	OrganizationLevel int     `json:"organization_level"`
	DifficultyLevel   int     `json:"difficulty_level"`
	EstimatedMinutes  float64 `json:"estimated_minutes"`
}

// GET /sets/{set_num}/estimate?build_style=&distraction_level=&organization_level=&difficulty_level=
func (h *Handler) GetSetEstimate(w http.ResponseWriter, r *http.Request) {
	setNum := r.PathValue("set_num")

	var resp estimateResponse
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"build_style", &resp.BuildStyle},
		{"distraction_level", &resp.DistractionLevel},
		{"organization_level", &resp.OrganizationLevel},
		{"difficulty_level", &resp.DifficultyLevel},
	} {
		v, err := utils.QueryInt(r, p.name)
		if err != nil {
			h.fail(w, "GetSetEstimate", err)
			return
		}
		*p.dst = v
	}

	if err := estimator.CheckLevels(resp.BuildStyle, resp.DistractionLevel, resp.OrganizationLevel, resp.DifficultyLevel); err != nil {
		h.fail(w, "GetSetEstimate", invalidEstimate(err))
		return
	}

	s, err := h.Catalog.FetchSet(r.Context(), setNum)
	if errors.Is(err, apierr.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Invalid set number")
		return
	}
	if err != nil {
		h.fail(w, "GetSetEstimate", err)
		return
	}

	minutes, err := estimator.EstimateBuildMinutes(s.NumParts, resp.BuildStyle, resp.DistractionLevel, resp.OrganizationLevel, resp.DifficultyLevel)
	if err != nil {
		h.Log.Warn("estimate rejected catalog data", zap.String("set_num", setNum), zap.Error(err))
		h.fail(w, "GetSetEstimate", invalidEstimate(err))
		return
	}

	resp.SetNum = s.SetNum
	resp.SetName = s.Name
	resp.Pieces = s.NumParts
	resp.EstimatedMinutes = minutes
	writeJSON(w, http.StatusOK, resp)
}

func invalidEstimate(err error) error {
	var ae *estimator.ArgumentError
	if errors.As(err, &ae) {
		return apierr.Invalid(ae.Field, "%s", ae.Message)
	}
	return err
}
