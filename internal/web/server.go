// Package web is the JSON surface over the state machine. Every mutating
// endpoint responds with the full state snapshot so the client never has to
// diff. Store lookup and speech are passthroughs to the collaborator,
// uncoordinated with the state machine.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"remy/internal/ai"
	"remy/internal/app"
	"remy/internal/mail"
	"remy/internal/profile"
)

const maxScanBytes = 10 << 20

type Server struct {
	manager *app.Manager
	client  ai.Client
	mailer  *mail.Sender // nil when sendgrid is not configured
}

func New(manager *app.Manager, client ai.Client, mailer *mail.Sender) *Server {
	return &Server{manager: manager, client: client, mailer: mailer}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("POST /api/pantry", s.handlePantryAdd)
	mux.HandleFunc("DELETE /api/pantry/{index}", s.handlePantryRemove)
	mux.HandleFunc("POST /api/hack", s.action((*app.Store).ChooseHack))
	mux.HandleFunc("POST /api/shop", s.action((*app.Store).ChooseShop))
	mux.HandleFunc("POST /api/cooking/start", s.action((*app.Store).StartCooking))
	mux.HandleFunc("POST /api/cooking/next", s.motion((*app.Store).NextStep))
	mux.HandleFunc("POST /api/cooking/prev", s.motion((*app.Store).PrevStep))
	mux.HandleFunc("POST /api/cooking/finish", s.action((*app.Store).Finish))
	mux.HandleFunc("POST /api/save", s.handleSave)
	mux.HandleFunc("POST /api/cookbook", s.motion((*app.Store).OpenCookbook))
	mux.HandleFunc("POST /api/cookbook/{id}", s.handleOpenSaved)
	mux.HandleFunc("POST /api/detail", s.action((*app.Store).ViewCurrent))
	mux.HandleFunc("POST /api/back", s.motion((*app.Store).Back))
	mux.HandleFunc("POST /api/cooknow", s.action((*app.Store).CookNow))
	mux.HandleFunc("POST /api/home", s.motion((*app.Store).Home))
	mux.HandleFunc("POST /api/image/edit", s.handleEditImage)
	mux.HandleFunc("POST /api/city", s.handleCity)
	mux.HandleFunc("POST /api/theme", s.handleTheme)
	mux.HandleFunc("GET /api/stores", s.handleStores)
	mux.HandleFunc("POST /api/speak", s.handleSpeak)
	mux.HandleFunc("POST /api/share", s.handleShare)
	mux.HandleFunc("GET /ws/timer", s.handleTimer)
	mux.HandleFunc("GET /ready", handleReady)
}

func (s *Server) store(w http.ResponseWriter, r *http.Request) *app.Store {
	return s.manager.For(r.Context(), profile.FromRequest(w, r))
}

// action adapts a Store method returning an error. Business rejections
// (duplicate save, mid-generation) still respond with the snapshot; the
// notice inside it tells the user what happened.
func (s *Server) action(fn func(*app.Store, context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := s.store(w, r)
		if err := fn(st, r.Context()); err != nil {
			slog.InfoContext(r.Context(), "action rejected", "path", r.URL.Path, "error", err)
		}
		s.respondState(w, r, st)
	}
}

// motion adapts the Store methods that cannot fail.
func (s *Server) motion(fn func(*app.Store, context.Context)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := s.store(w, r)
		fn(st, r.Context())
		s.respondState(w, r, st)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.respondState(w, r, s.store(w, r))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !decode(w, r, &req) {
		return
	}
	st := s.store(w, r)
	if err := st.Generate(r.Context(), req.Query); err != nil {
		if errors.Is(err, app.ErrGenerationInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		// failure already logged and noticed; fall through to the snapshot
	}
	s.respondState(w, r, st)
}

// handleScan accepts the raw photo bytes with their content type and merges
// whatever the collaborator recognizes into the pantry.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	image, err := io.ReadAll(io.LimitReader(r.Body, maxScanBytes))
	if err != nil || len(image) == 0 {
		http.Error(w, "missing photo", http.StatusBadRequest)
		return
	}
	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	names, err := s.client.RecognizeIngredients(r.Context(), image, mimeType)
	if err != nil {
		slog.ErrorContext(r.Context(), "ingredient recognition failed", "error", err)
		http.Error(w, "recognition failed", http.StatusBadGateway)
		return
	}
	st := s.store(w, r)
	st.MergeScanned(r.Context(), names)
	writeJSON(w, struct {
		Recognized []string     `json:"recognized"`
		State      app.Snapshot `json:"state"`
	}{names, s.renderable(st)})
}

func (s *Server) handlePantryAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	st := s.store(w, r)
	st.AddPantryItem(r.Context(), req.Name)
	s.respondState(w, r, st)
}

func (s *Server) handlePantryRemove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "bad index", http.StatusBadRequest)
		return
	}
	st := s.store(w, r)
	st.RemovePantryItem(r.Context(), index)
	s.respondState(w, r, st)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	st := s.store(w, r)
	if err := st.Save(r.Context()); err != nil && !errors.Is(err, app.ErrAlreadySaved) {
		slog.InfoContext(r.Context(), "save rejected", "error", err)
	}
	s.respondState(w, r, st)
}

func (s *Server) handleOpenSaved(w http.ResponseWriter, r *http.Request) {
	st := s.store(w, r)
	if err := st.OpenSaved(r.Context(), r.PathValue("id")); err != nil {
		http.Error(w, "recipe not found", http.StatusNotFound)
		return
	}
	s.respondState(w, r, st)
}

func (s *Server) handleEditImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Instruction string `json:"instruction"`
	}
	if !decode(w, r, &req) {
		return
	}
	st := s.store(w, r)
	if err := st.EditImage(r.Context(), req.Instruction); err != nil {
		slog.InfoContext(r.Context(), "image edit rejected", "error", err)
	}
	s.respondState(w, r, st)
}

func (s *Server) handleCity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		City string `json:"city"`
	}
	if !decode(w, r, &req) {
		return
	}
	st := s.store(w, r)
	st.SetCity(r.Context(), req.City)
	s.respondState(w, r, st)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !decode(w, r, &req) {
		return
	}
	st := s.store(w, r)
	st.SetTheme(r.Context(), req.Theme)
	s.respondState(w, r, st)
}

// handleStores is a passthrough: results are transient, re-fetched per city,
// never persisted.
func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		city = s.store(w, r).Snapshot().City
	}
	if city == "" {
		http.Error(w, "no city set", http.StatusBadRequest)
		return
	}
	stores, err := s.client.LookupStores(r.Context(), city)
	if err != nil {
		slog.ErrorContext(r.Context(), "store lookup failed", "city", city, "error", err)
		http.Error(w, "store lookup failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, stores)
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Text == "" {
		http.Error(w, "nothing to say", http.StatusBadRequest)
		return
	}
	audio, mimeType, err := s.client.Synthesize(r.Context(), req.Text)
	if err != nil {
		slog.ErrorContext(r.Context(), "speech synthesis failed", "error", err)
		http.Error(w, "speech synthesis failed", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", mimeType)
	_, _ = w.Write(audio)
}

// handleShare emails the active recipe with its shopping list.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	if s.mailer == nil {
		http.Error(w, "mail not configured", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		To []string `json:"to"`
	}
	if !decode(w, r, &req) {
		return
	}
	if len(req.To) == 0 {
		http.Error(w, "no recipients", http.StatusBadRequest)
		return
	}
	snap := s.store(w, r).Snapshot()
	recipe := snap.Selected
	if recipe == nil {
		recipe = snap.Current
	}
	if recipe == nil {
		http.Error(w, "no recipe to share", http.StatusBadRequest)
		return
	}
	if err := s.mailer.ShareRecipe(r.Context(), req.To, recipe.WithDefaults()); err != nil {
		slog.ErrorContext(r.Context(), "sharing recipe by mail", "error", err)
		http.Error(w, "mail failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// renderable applies the safety defaulting to both recipe slots so a partial
// recipe never reaches a renderer undefaulted.
func (s *Server) renderable(st *app.Store) app.Snapshot {
	snap := st.Snapshot()
	if snap.Current != nil {
		r := snap.Current.WithDefaults()
		snap.Current = &r
	}
	if snap.Selected != nil {
		r := snap.Selected.WithDefaults()
		snap.Selected = &r
	}
	return snap
}

func (s *Server) respondState(w http.ResponseWriter, _ *http.Request, st *app.Store) {
	writeJSON(w, s.renderable(st))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
