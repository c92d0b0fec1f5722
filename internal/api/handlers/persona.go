package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/Harshitk-cp/elders/internal/persona"
	"github.com/go-chi/chi/v5"
)

type PersonaHandler struct{}

func NewPersonaHandler() *PersonaHandler {
	return &PersonaHandler{}
}

type personaListResponse struct {
	Personas []domain.Persona `json:"personas"`
}

func (h *PersonaHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, personaListResponse{Personas: persona.All()})
}

// Get accepts the persona id or any of its display names.
func (h *PersonaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParsePersonaID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, persona.MustGet(id))
}
