package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coderunr/editor/internal/catalogue"
	"github.com/coderunr/editor/internal/editor"
	"github.com/coderunr/editor/internal/keys"
	"github.com/coderunr/editor/internal/middleware"
	"github.com/coderunr/editor/internal/session"
	"github.com/coderunr/editor/internal/types"
	"github.com/coderunr/editor/internal/version"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Handler contains the dependencies for HTTP handlers
type Handler struct {
	sessions *session.Manager
	logger   *logrus.Logger
}

// NewHandler creates a new handler instance
func NewHandler(sessions *session.Manager, logger *logrus.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		logger:   logger,
	}
}

// requestTimeout bounds the plain JSON endpoints; websockets are exempt
const requestTimeout = 30 * time.Second

// RegisterRoutes registers the catalogue and session routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/languages", h.GetLanguages)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.ListSessions)
		r.With(middleware.JSON).Post("/", h.CreateSession)

		r.Route("/{id}", func(r chi.Router) {
			// WebSocket route (no JSON middleware)
			r.Get("/connect", h.HandleWebSocket)

			r.Group(func(r chi.Router) {
				r.Use(middleware.JSON)
				r.Use(chiMiddleware.Timeout(requestTimeout))
				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)
				r.Put("/language", h.SelectLanguage)
				r.Put("/source", h.SetSource)
				r.Put("/stdin", h.SetStdin)
				r.Post("/run", h.Run)
				r.Post("/keys", h.HandleKey)
			})
		})
	})
}

// GetVersion returns the API version
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, types.VersionResponse{
		Message: version.Message(),
		Version: version.Version,
	}, http.StatusOK)
}

// GetLanguages returns the catalogue
func (h *Handler) GetLanguages(w http.ResponseWriter, r *http.Request) {
	entries := h.sessions.Catalogue().Entries()

	response := make([]types.LanguageInfo, len(entries))
	for i, e := range entries {
		response[i] = types.LanguageInfo{
			ID:      string(e.ID),
			Title:   catalogue.Title(e.ID),
			Icon:    e.Icon,
			Snippet: e.Snippet,
		}
	}

	h.sendJSON(w, response, http.StatusOK)
}

// CreateSession mounts a new editor session
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var request types.CreateSessionRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &request) {
			return
		}
	}

	var lang catalogue.LanguageID
	if request.Language != "" {
		id, err := h.sessions.Catalogue().Parse(request.Language)
		if err != nil {
			h.sendFailure(w, err)
			return
		}
		lang = id
	}

	s, err := h.sessions.Create(lang)
	if err != nil {
		h.sendFailure(w, err)
		return
	}

	h.sendJSON(w, sessionInfo(s), http.StatusCreated)
}

// ListSessions returns all mounted sessions
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessions.List()

	response := make([]types.SessionInfo, len(sessions))
	for i, s := range sessions {
		response[i] = sessionInfo(s)
	}

	h.sendJSON(w, response, http.StatusOK)
}

// GetSession returns the state and view of one session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.sendJSON(w, sessionInfo(s), http.StatusOK)
}

// DeleteSession unmounts a session
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		h.sendFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectLanguage switches the session language, replacing its source
func (h *Handler) SelectLanguage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var request types.LanguageRequest
	if !h.decode(w, r, &request) {
		return
	}

	id, err := h.sessions.Catalogue().Parse(request.Language)
	if err != nil {
		h.sendFailure(w, err)
		return
	}

	s.SelectLanguage(id)
	h.sendJSON(w, sessionInfo(s), http.StatusOK)
}

// SetSource replaces the session source buffer
func (h *Handler) SetSource(w http.ResponseWriter, r *http.Request) {
	h.setText(w, r, (*session.Session).SetSource)
}

// SetStdin replaces the session stdin buffer
func (h *Handler) SetStdin(w http.ResponseWriter, r *http.Request) {
	h.setText(w, r, (*session.Session).SetStdin)
}

func (h *Handler) setText(w http.ResponseWriter, r *http.Request, set func(*session.Session, string)) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var request types.TextRequest
	if !h.decode(w, r, &request) {
		return
	}

	set(s, request.Text)
	h.sendJSON(w, sessionInfo(s), http.StatusOK)
}

// Run submits the session's current state. The outcome arrives later through
// GetSession or the websocket.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	seq, _ := s.Submit()
	h.sendJSON(w, types.RunResponse{Seq: seq}, http.StatusAccepted)
}

// HandleKey forwards a keydown event to the session's dispatcher
func (h *Handler) HandleKey(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var event types.KeyEvent
	if !h.decode(w, r, &event) {
		return
	}

	handled := s.HandleKey(keyEvent(event))
	h.sendJSON(w, types.KeyResponse{Handled: handled}, http.StatusOK)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.sendFailure(w, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		h.sendError(w, "Invalid JSON request", http.StatusBadRequest)
		return false
	}
	return true
}

// sendFailure maps domain errors onto HTTP statuses
func (h *Handler) sendFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalogue.ErrUnknownLanguage):
		h.sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, session.ErrNotFound):
		h.sendError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrTooManySessions):
		h.sendError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		h.logger.WithError(err).Error("Request failed")
		h.sendError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, types.ErrorResponse{
		Message: message,
		Code:    statusCode,
	}, statusCode)
}

// sendJSON sends a JSON response
func (h *Handler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

func sessionInfo(s *session.Session) types.SessionInfo {
	return types.SessionInfo{
		ID:    s.ID,
		State: editorState(s.State()),
		View:  viewInfo(s.View()),
	}
}

func editorState(st editor.State) types.EditorState {
	return types.EditorState{
		Language: string(st.Language),
		Source:   st.Source,
		Stdin:    st.Stdin,
	}
}

func viewInfo(v editor.View) types.ViewInfo {
	return types.ViewInfo{
		Phase:   v.Phase.String(),
		Seq:     v.Seq,
		Output:  v.Output,
		IsError: v.IsError(),
		Loading: v.Loading(),
		Reason:  v.Reason,
	}
}

func keyEvent(e types.KeyEvent) keys.Event {
	return keys.Event{
		Key:   e.Key,
		Ctrl:  e.CtrlKey,
		Alt:   e.AltKey,
		Shift: e.ShiftKey,
		Meta:  e.MetaKey,
	}
}
