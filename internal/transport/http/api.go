package http

import (
	"encoding/json"
	"net/http"

	"exam-simulator/internal/app"
	"exam-simulator/internal/domain"
	"github.com/go-chi/chi/v5"
)

// UserHeader carries the caller's user id on every API request after login.
const UserHeader = "X-User-ID"

// API exposes the exam service as JSON endpoints.
type API struct {
	service *app.ExamService
}

func NewAPI(service *app.ExamService) *API {
	return &API{service: service}
}

// Routes mounts the API endpoints on a fresh router.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", a.login)
	r.Post("/logout", a.logout)
	r.Get("/dashboard", a.dashboard)
	r.Get("/summary", a.summary)
	r.Get("/results/{testID}", a.result)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", a.startSession)
		r.Get("/{sessionID}", a.getSession)
		r.Post("/{sessionID}/answer", a.selectAnswer)
		r.Post("/{sessionID}/next", a.advance)
		r.Delete("/{sessionID}", a.abandon)
	})
	return r
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	user, err := a.service.Login(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Logout(r.Context(), r.Header.Get(UserHeader)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := a.service.Dashboard(r.Context(), r.Header.Get(UserHeader))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (a *API) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.Summary(r.Context(), r.Header.Get(UserHeader))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) result(w http.ResponseWriter, r *http.Request) {
	testID := domain.TestID(chi.URLParam(r, "testID"))
	result, err := a.service.Result(r.Context(), r.Header.Get(UserHeader), testID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		domain.Result
		Grade string `json:"grade"`
	}{result, domain.Grade(result.Percentage)})
}

func (a *API) startSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TestID domain.TestID `json:"testId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TestID == "" {
		http.Error(w, "testId required", http.StatusBadRequest)
		return
	}
	session, err := a.service.StartTest(r.Context(), r.Header.Get(UserHeader), req.TestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session.Snapshot())
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	snap, err := a.service.Snapshot(r.Context(), r.Header.Get(UserHeader), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) selectAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		http.Error(w, "index required", http.StatusBadRequest)
		return
	}
	snap, err := a.service.SelectAnswer(r.Context(), r.Header.Get(UserHeader), chi.URLParam(r, "sessionID"), *req.Index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) advance(w http.ResponseWriter, r *http.Request) {
	snap, err := a.service.Advance(r.Context(), r.Header.Get(UserHeader), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) abandon(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Abandon(r.Context(), r.Header.Get(UserHeader), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
