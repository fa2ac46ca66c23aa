package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/uwpokerclub/clubhouse/services"
)

// ParticipantHandler exposes the per-event entry ledger: batch sign-in,
// sign-out, re-admission, rebuys and removal.
type ParticipantHandler struct {
	entryService services.EntryService
}

func NewParticipantHandler(entryService services.EntryService) *ParticipantHandler {
	return &ParticipantHandler{entryService: entryService}
}

type participantActionInput struct {
	EventID      int       `json:"event_id"`
	MembershipID uuid.UUID `json:"membership_id"`
}

// RegisterHandler handles POST /participants. Partial success: memberships
// that cannot be signed in are reported in "errors" without failing the batch.
func (h *ParticipantHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterEntriesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.entryService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SignOutHandler handles POST /participants/sign-out
func (h *ParticipantHandler) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	var input participantActionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.entryService.SignOut(r.Context(), input.EventID, input.MembershipID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SignInHandler handles POST /participants/sign-in
func (h *ParticipantHandler) SignInHandler(w http.ResponseWriter, r *http.Request) {
	var input participantActionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.entryService.SignIn(r.Context(), input.EventID, input.MembershipID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RebuyHandler handles POST /participants/rebuy
func (h *ParticipantHandler) RebuyHandler(w http.ResponseWriter, r *http.Request) {
	var input participantActionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.entryService.Rebuy(r.Context(), input.EventID, input.MembershipID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveHandler handles DELETE /participants
func (h *ParticipantHandler) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	var input participantActionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.entryService.Remove(r.Context(), input.EventID, input.MembershipID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByEventHandler handles GET /events/{eventID}/participants
func (h *ParticipantHandler) ListByEventHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIntIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.entryService.ListByEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entries": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
