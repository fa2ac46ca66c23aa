package handlers

import (
	"net/http"

	"github.com/uwpokerclub/clubhouse/services"
)

type SemesterHandler struct {
	semesterService  services.SemesterService
	dashboardService services.DashboardService
}

func NewSemesterHandler(semesterService services.SemesterService, dashboardService services.DashboardService) *SemesterHandler {
	return &SemesterHandler{
		semesterService:  semesterService,
		dashboardService: dashboardService,
	}
}

// CreateHandler handles POST /semesters
func (h *SemesterHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateSemesterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	semester, err := h.semesterService.CreateSemester(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"semester": semester}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /semesters/{semesterID}
func (h *SemesterHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "semesterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	semester, err := h.semesterService.GetSemesterByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"semester": semester}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /semesters
func (h *SemesterHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	semesters, err := h.semesterService.ListSemesters(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"semesters": semesters}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DashboardHandler handles GET /semesters/{semesterID}/dashboard
func (h *SemesterHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "semesterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	dashboard, err := h.dashboardService.GetSemesterDashboard(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"dashboard": dashboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
