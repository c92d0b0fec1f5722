package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/Harshitk-cp/elders/internal/export"
	"github.com/Harshitk-cp/elders/internal/persona"
	"github.com/Harshitk-cp/elders/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionHandler struct {
	svc    *service.SessionService
	logger *zap.Logger
}

func NewSessionHandler(svc *service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, logger: logger}
}

type textRequest struct {
	Text string `json:"text"`
}

type personaRequest struct {
	Persona string `json:"persona"`
}

type createSessionResponse struct {
	Session  domain.Snapshot  `json:"session"`
	Personas []domain.Persona `json:"personas"`
}

type historyResponse struct {
	SessionID string               `json:"session_id"`
	Cycles    []domain.CycleRecord `json:"cycles"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Create()
	writeJSON(w, http.StatusCreated, createSessionResponse{
		Session:  snap,
		Personas: persona.All(),
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) SubmitScenario(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.respond(w)(h.svc.SubmitScenario(r.Context(), id, req.Text))
}

func (h *SessionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	p, ok := personaFromBody(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.AcceptPersona(r.Context(), id, p))
}

func (h *SessionHandler) ForceCritique(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.ForceCritique(r.Context(), id))
}

func (h *SessionHandler) RetryCritiques(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.RetryCritiques(r.Context(), id))
}

func (h *SessionHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	p, ok := personaFromBody(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.Challenge(id, p))
}

func (h *SessionHandler) SubmitChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.respond(w)(h.svc.SubmitChallenge(r.Context(), id, req.Text))
}

func (h *SessionHandler) ConcludeBase(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.ConcludeBase(r.Context(), id))
}

func (h *SessionHandler) ConcludeCycle(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.ConcludeCycle(r.Context(), id))
}

func (h *SessionHandler) ResetScores(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.ResetScores(id))
}

func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	if _, err := h.svc.Get(id); err != nil {
		writeServiceError(w, err)
		return
	}

	cycles, err := h.svc.History(r.Context(), id, limit)
	if err != nil {
		if !errors.Is(err, service.ErrHistoryDisabled) {
			h.logger.Error("failed to list cycle history", zap.String("session_id", id.String()), zap.Error(err))
		}
		writeServiceError(w, err)
		return
	}
	if cycles == nil {
		cycles = []domain.CycleRecord{}
	}

	writeJSON(w, http.StatusOK, historyResponse{SessionID: id.String(), Cycles: cycles})
}

// Transcript renders the session, and its recorded history when enabled, as a PDF.
func (h *SessionHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	snap, err := h.svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var history []domain.CycleRecord
	if h.svc.HistoryEnabled() {
		history, err = h.svc.History(r.Context(), id, 0)
		if err != nil {
			h.logger.Warn("transcript without history", zap.String("session_id", id.String()), zap.Error(err))
			history = nil
		}
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, snap, history); err != nil {
		h.logger.Error("failed to render transcript", zap.String("session_id", id.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render transcript")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="elders-`+id.String()+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *SessionHandler) respond(w http.ResponseWriter) func(domain.Snapshot, error) {
	return func(snap domain.Snapshot, err error) {
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func personaFromBody(w http.ResponseWriter, r *http.Request) (domain.PersonaID, bool) {
	var req personaRequest
	if !decodeJSON(w, r, &req) {
		return "", false
	}
	p, err := domain.ParsePersonaID(req.Persona)
	if err != nil {
		writeServiceError(w, err)
		return "", false
	}
	return p, true
}
