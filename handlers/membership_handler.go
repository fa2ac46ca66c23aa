package handlers

import (
	"net/http"

	"github.com/uwpokerclub/clubhouse/services"
)

type MembershipHandler struct {
	membershipService services.MembershipService
}

func NewMembershipHandler(membershipService services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// CreateHandler handles POST /memberships
func (h *MembershipHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMembershipInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	membership, err := h.membershipService.CreateMembership(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"membership": membership}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /memberships/{membershipID}
func (h *MembershipHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "membershipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	membership, err := h.membershipService.GetMembershipByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"membership": membership}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListBySemesterHandler handles GET /semesters/{semesterID}/memberships
func (h *MembershipHandler) ListBySemesterHandler(w http.ResponseWriter, r *http.Request) {
	semesterID, err := getUUIDFromURL(r, "semesterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	memberships, err := h.membershipService.ListMembershipsBySemester(r.Context(), semesterID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"memberships": memberships}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
