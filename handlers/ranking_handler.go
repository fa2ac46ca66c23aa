package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/uwpokerclub/clubhouse/services"
)

type RankingHandler struct {
	rankingService services.RankingService
}

func NewRankingHandler(rankingService services.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

// ListBySemesterHandler handles GET /semesters/{semesterID}/rankings
func (h *RankingHandler) ListBySemesterHandler(w http.ResponseWriter, r *http.Request) {
	semesterID, err := getUUIDFromURL(r, "semesterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rankings, err := h.rankingService.ListBySemester(r.Context(), semesterID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DownloadExportHandler handles GET /semesters/{semesterID}/rankings/export,
// serving the standings as a CSV attachment. The CSV is rendered to a buffer
// first so a failed semester lookup still produces a plain JSON error instead
// of a half-written download.
func (h *RankingHandler) DownloadExportHandler(w http.ResponseWriter, r *http.Request) {
	semesterID, err := getUUIDFromURL(r, "semesterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.rankingService.WriteCSV(r.Context(), semesterID, &buf); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="rankings.csv"`)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write rankings export", slog.Any("error", err))
	}
}

// UploadExportHandler handles POST /semesters/{semesterID}/rankings/export,
// pushing the CSV to object storage and returning its public URL.
func (h *RankingHandler) UploadExportHandler(w http.ResponseWriter, r *http.Request) {
	semesterID, err := getUUIDFromURL(r, "semesterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.rankingService.UploadExport(r.Context(), semesterID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"export": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
