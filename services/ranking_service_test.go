package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwpokerclub/clubhouse/models"
	"github.com/uwpokerclub/clubhouse/repositories"
	"github.com/uwpokerclub/clubhouse/storage"
)

type stubRankingRepo struct {
	fakeRankingRepo
	rows []models.RankingRow
}

func (s *stubRankingRepo) ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]models.RankingRow, error) {
	return s.rows, nil
}

type stubSemesterRepo struct {
	semesters map[uuid.UUID]*models.Semester
}

func (s *stubSemesterRepo) Create(ctx context.Context, semester *models.Semester) error {
	s.semesters[semester.ID] = semester
	return nil
}

func (s *stubSemesterRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Semester, error) {
	semester, ok := s.semesters[id]
	if !ok {
		return nil, repositories.ErrSemesterNotFound
	}
	return semester, nil
}

func (s *stubSemesterRepo) List(ctx context.Context) ([]*models.Semester, error) {
	var out []*models.Semester
	for _, semester := range s.semesters {
		out = append(out, semester)
	}
	return out, nil
}

type fakeUploader struct {
	key         string
	contentType string
	body        []byte
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.key = key
	f.contentType = contentType
	f.body = body
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeUploader) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }

func newRankingFixture(rows []models.RankingRow) (RankingService, *fakeUploader, uuid.UUID) {
	semesterID := uuid.New()
	semesterRepo := &stubSemesterRepo{semesters: map[uuid.UUID]*models.Semester{
		semesterID: {ID: semesterID, Name: "Fall 2025"},
	}}
	uploader := &fakeUploader{}
	service := NewRankingService(&stubRankingRepo{rows: rows}, semesterRepo, uploader)
	return service, uploader, semesterID
}

func TestWriteCSV_RendersStandings(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	service, _, semesterID := newRankingFixture([]models.RankingRow{
		{MembershipID: alice, FirstName: "Alice", LastName: "Ng", Points: 42, Attendance: 3},
		{MembershipID: bob, FirstName: "Bob", LastName: "Tran", Points: 17, Attendance: 2},
	})

	var buf bytes.Buffer
	require.NoError(t, service.WriteCSV(context.Background(), semesterID, &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "membership_id,first_name,last_name,points,attendance", lines[0])
	assert.Equal(t, alice.String()+",Alice,Ng,42,3", lines[1])
	assert.Equal(t, bob.String()+",Bob,Tran,17,2", lines[2])
}

func TestWriteCSV_EmptySemesterStillHasHeader(t *testing.T) {
	service, _, semesterID := newRankingFixture(nil)

	var buf bytes.Buffer
	require.NoError(t, service.WriteCSV(context.Background(), semesterID, &buf))
	assert.Equal(t, "membership_id,first_name,last_name,points,attendance\n", buf.String())
}

func TestWriteCSV_UnknownSemester(t *testing.T) {
	service, _, _ := newRankingFixture(nil)

	var buf bytes.Buffer
	err := service.WriteCSV(context.Background(), uuid.New(), &buf)
	assert.ErrorIs(t, err, ErrSemesterNotFound)
	assert.Zero(t, buf.Len())
}

func TestUploadExport_SendsCSVToStore(t *testing.T) {
	alice := uuid.New()
	service, uploader, semesterID := newRankingFixture([]models.RankingRow{
		{MembershipID: alice, FirstName: "Alice", LastName: "Ng", Points: 42, Attendance: 3},
	})

	result, err := service.UploadExport(context.Background(), semesterID)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", uploader.contentType)
	assert.True(t, strings.HasPrefix(uploader.key, "exports/rankings/"+semesterID.String()+"-"))
	assert.True(t, strings.HasSuffix(uploader.key, ".csv"))
	assert.Contains(t, string(uploader.body), "Alice,Ng,42,3")
	assert.Equal(t, uploader.key, result.Key)
	assert.Equal(t, "https://cdn.example.com/"+uploader.key, result.Location)
}
