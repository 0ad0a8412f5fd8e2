package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	gs "github.com/mind-engage/mindengage-gradescale/internal/gradescale"
	"github.com/mind-engage/mindengage-gradescale/internal/rbac"
)

type Deps struct {
	Store  gs.Store
	Events gs.EventSink // optional
	Log    *zap.Logger

	// SaveHooks observe save outcomes, e.g. metrics.
	SaveHooks   []func(gs.SaveState)
	SaveTimeout time.Duration

	// Throttle wraps mutating routes when set.
	Throttle func(http.Handler) http.Handler
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.SaveTimeout <= 0 {
		d.SaveTimeout = 15 * time.Second
	}
	return d
}

func (d Deps) observe(s gs.SaveState) {
	for _, h := range d.SaveHooks {
		h(s)
	}
}

func (d Deps) transport(courseID string) *gs.StoreTransport {
	return &gs.StoreTransport{Store: d.Store, CourseID: courseID, Events: d.Events, Log: d.Log}
}

// MountGradeScales registers the grading scale routes. The router must
// already carry the JWT middleware.
func MountGradeScales(r chi.Router, d Deps) {
	d = d.withDefaults()
	view := r.With(rbac.Require(rbac.PermGradeScaleView))
	edit := r.With(rbac.Require(rbac.PermGradeScaleEdit))
	settings := r.With(rbac.Require(rbac.PermCourseSettings))
	if d.Throttle != nil {
		edit = edit.With(d.Throttle)
		settings = settings.With(d.Throttle)
	}

	view.Get("/gradescales", ListGradeScalesHandler(d.Store))
	view.Get("/gradescales/{id}", GetGradeScaleHandler(d.Store))
	view.Get("/gradescales/{id}/editor", EditorViewHandler(d))
	edit.Post("/gradescales/editor", EditorHandler(d))
	edit.Post("/gradescales/update", UpdateGradeScaleHandler(d))
	view.Get("/courses/{courseID}/use-weights", GetCourseWeightsHandler(d.Store))
	settings.Post("/courses/{courseID}/use-weights", SetCourseWeightsHandler(d.Store))
}

// courseDenied writes 403 when the caller is limited to other courses.
func courseDenied(w http.ResponseWriter, r *http.Request, courseID string) bool {
	if rbac.CourseAllowed(r.Context(), courseID) {
		return false
	}
	http.Error(w, "forbidden", http.StatusForbidden)
	return true
}

func ListGradeScalesHandler(store gs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := r.URL.Query().Get("course_id")
		if courseID != "" && courseDenied(w, r, courseID) {
			return
		}
		all, err := store.ListScales(r.Context(), courseID)
		if err != nil {
			writeError(w, err)
			return
		}
		p, _ := rbac.FromContext(r.Context())
		out := make([]gs.GradeScale, 0, len(all))
		for _, rec := range all {
			if p.InCourse(rec.CourseID) {
				out = append(out, rec)
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetGradeScaleHandler(store gs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := store.GetScale(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if courseDenied(w, r, rec.CourseID) {
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// EditorViewHandler renders a stored scale as an editor would show it.
func EditorViewHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Store.GetScale(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if courseDenied(w, r, rec.CourseID) {
			return
		}
		ed := gs.NewEditor(d.transport(rec.CourseID), gs.WithLogger(d.Log))
		if err := ed.Open(&rec); err != nil {
			writeError(w, err)
			return
		}
		v, err := ed.View()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

type editorRequest struct {
	ID       string    `json:"id,omitempty"`
	CourseID string    `json:"courseId,omitempty"`
	Edits    []gs.Edit `json:"edits"`
	Save     bool      `json:"save"`
}

type editorResponse struct {
	Record   *gs.GradeScale `json:"record,omitempty"`
	CourseID string         `json:"courseId,omitempty"`
	View     *gs.View       `json:"view,omitempty"`
	Alerts   []gs.Alert     `json:"alerts,omitempty"`
	Errors   gs.ErrorSet    `json:"errors,omitempty"`
}

// POST /gradescales/editor
// Opens an editor on a stored (id) or new (courseId) scale, applies the edits
// in order and optionally saves. The response carries the resulting view, or
// the saved record.
func EditorHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req editorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		src := &gs.GradeScale{CourseID: req.CourseID}
		if req.ID != "" {
			rec, err := d.Store.GetScale(r.Context(), req.ID)
			if err != nil {
				writeError(w, err)
				return
			}
			src = &rec
		} else if req.CourseID == "" {
			http.Error(w, "courseId required", http.StatusBadRequest)
			return
		}
		if courseDenied(w, r, src.CourseID) {
			return
		}

		n := &gs.RecordingNotifier{}
		opts := []gs.Option{gs.WithNotifier(n), gs.WithLogger(d.Log)}
		for _, h := range d.SaveHooks {
			opts = append(opts, gs.WithStateHook(h))
		}
		ed := gs.NewEditor(d.transport(src.CourseID), opts...)
		if err := ed.Open(src); err != nil {
			writeError(w, err)
			return
		}
		if err := ed.Apply(req.Edits...); err != nil {
			writeError(w, err)
			return
		}

		code := http.StatusOK
		resp := editorResponse{CourseID: src.CourseID}
		if req.Save {
			ctx, cancel := context.WithTimeout(r.Context(), d.SaveTimeout)
			err := ed.Save(ctx)
			cancel()
			resp.Alerts = n.Alerts()
			if err == nil {
				resp.Record = src
				resp.CourseID = src.CourseID
				writeJSON(w, code, resp)
				return
			}
			code = statusFor(err)
			resp.Errors = n.Validation()
		}
		if v, err := ed.View(); err == nil {
			resp.View = &v
		}
		writeJSON(w, code, resp)
	}
}

type updateRequest struct {
	CourseID   string        `json:"courseId,omitempty"`
	GradeScale gs.GradeScale `json:"gradeScale"`
}

// POST /gradescales/update
// The persistence endpoint behind remote editors. The record is checked again
// with the same rules the editor applies.
func UpdateGradeScaleHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		rec := req.GradeScale
		rec.CourseID = req.CourseID
		if courseDenied(w, r, rec.CourseID) {
			return
		}
		var prev *gs.GradeScale
		if !rec.IsNew() {
			if stored, err := d.Store.GetScale(r.Context(), rec.ID); err == nil {
				if courseDenied(w, r, stored.CourseID) {
					return
				}
				prev = &stored
			}
		}

		switch {
		case rec.IsCourseScale:
			writeError(w, gs.ErrCourseScaleReadOnly)
			return
		case !rec.Type.Valid():
			writeError(w, fmt.Errorf("%w: unknown scale type %q", gs.ErrInvalidArgument, rec.Type))
			return
		case prev != nil && prev.CourseID != "" && rec.CourseID != "" && rec.CourseID != prev.CourseID:
			writeError(w, fmt.Errorf("%w: scale belongs to course %q", gs.ErrInvalidArgument, prev.CourseID))
			return
		case rec.Type == gs.Distribution && (prev == nil || prev.Type != gs.Distribution):
			// distribution can be kept but never newly chosen
			writeError(w, fmt.Errorf("%w: distribution scales cannot be created", gs.ErrInvalidArgument))
			return
		case len(rec.Items) == 0:
			writeError(w, fmt.Errorf("%w: items required", gs.ErrInvalidArgument))
			return
		}
		if errs := gs.FromRecord(rec).ValidateScale(); errs != nil {
			d.observe(gs.StateInvalid)
			writeError(w, errs)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), d.SaveTimeout)
		defer cancel()
		saved, err := d.transport(rec.CourseID).Save(ctx, rec)
		if err != nil {
			d.observe(gs.StateSaveFailed)
			d.Log.Error("update grade scale", zap.String("id", rec.ID), zap.Error(err))
			writeError(w, err)
			return
		}
		d.observe(gs.StateSaved)
		writeJSON(w, http.StatusOK, saved)
	}
}

func GetCourseWeightsHandler(store gs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if courseDenied(w, r, courseID) {
			return
		}
		on, err := store.CourseUsesWeights(r.Context(), courseID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"courseId": courseID, "useWeights": on})
	}
}

// POST /courses/{courseID}/use-weights  { "useWeights": false }
func SetCourseWeightsHandler(store gs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UseWeights *bool `json:"useWeights"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UseWeights == nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		courseID := chi.URLParam(r, "courseID")
		if courseDenied(w, r, courseID) {
			return
		}
		if err := store.SetCourseUseWeights(r.Context(), courseID, *req.UseWeights); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
