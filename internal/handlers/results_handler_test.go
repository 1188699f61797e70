package handlers

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// seedVotes casts ballots for three voters in a single category
func seedVotes(t *testing.T, s *testServer) *models.Category {
	t.Helper()
	ctx := context.Background()
	c := s.category(t, "Best Post", "a", "b", "c", "d")
	s.setPhase(t, models.PhaseVoting)

	ballots := []struct {
		handle string
		choice string
	}{
		{"v1", "a"},
		{"v2", "a"},
		{"v3", "b"},
		{"v4", "c"},
		{"v5", "d"},
	}
	known, err := s.categories.List(ctx)
	require.NoError(t, err)
	for _, b := range ballots {
		_, err := s.ledger.CastVotes(ctx, primitive.NewObjectID(), b.handle, map[string]string{c.ID.Hex(): b.choice}, known)
		require.NoError(t, err)
	}
	return c
}

func TestResultsHiddenUntilPublished(t *testing.T) {
	s := newTestServer(t)
	c := seedVotes(t, s)

	for _, path := range []string{"/api/v1/results", "/api/v1/results/" + c.ID.Hex()} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.Equal(t, "results not yet available", errorMessage(t, w))
	}
}

func TestPublicResults(t *testing.T) {
	s := newTestServer(t)
	c := seedVotes(t, s)
	s.setPhase(t, models.PhaseResults)

	w := s.do(t, http.MethodGet, "/api/v1/results", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		CategoryResults []models.CategoryResults `json:"categoryResults"`
	}](t, w)
	require.Len(t, body.CategoryResults, 1)
	got := body.CategoryResults[0]
	assert.Equal(t, c.ID, got.CategoryID)
	assert.Equal(t, 5, got.TotalVotes)
	require.Len(t, got.Results, 4, "public results list every participant")
	assert.Equal(t, "a", got.Results[0].Participant)
	assert.Equal(t, 2, got.Results[0].VoteCount)
	assert.Equal(t, []string{"b", "c", "d"}, []string{got.Results[1].Participant, got.Results[2].Participant, got.Results[3].Participant})
}

func TestCategoryResultsTop(t *testing.T) {
	s := newTestServer(t)
	c := seedVotes(t, s)
	s.setPhase(t, models.PhaseResults)

	w := s.do(t, http.MethodGet, "/api/v1/results/"+c.ID.Hex()+"?top=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.CategoryResults](t, w)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "a", got.Results[0].Participant)
	assert.Equal(t, []string{"v1", "v2"}, got.Results[0].VoterHandles)
	assert.Equal(t, 5, got.TotalVotes, "total counts every vote, not just the top rows")

	tests := []struct {
		name string
		path string
		code int
	}{
		{"zero top", "/api/v1/results/" + c.ID.Hex() + "?top=0", http.StatusBadRequest},
		{"text top", "/api/v1/results/" + c.ID.Hex() + "?top=many", http.StatusBadRequest},
		{"bad id", "/api/v1/results/not-an-id", http.StatusBadRequest},
		{"unknown category", "/api/v1/results/" + primitive.NewObjectID().Hex(), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, "", nil)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAdminResultsIgnorePhase(t *testing.T) {
	s := newTestServer(t)
	seedVotes(t, s)

	w := s.do(t, http.MethodGet, "/api/v1/admin/results", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[models.AllResults](t, w)
	require.Len(t, all.CategoryResults, 1)
	assert.Len(t, all.CategoryResults[0].Results, 3, "admin view defaults to the top three")
	assert.Equal(t, 5, all.CategoryResults[0].TotalVotes)
	assert.Equal(t, []models.UserVote{{CategoryName: "Best Post", ParticipantHandle: "b"}}, all.VotesByUser["v3"])

	w = s.do(t, http.MethodGet, "/api/v1/admin/results?top=10", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all = decode[models.AllResults](t, w)
	assert.Len(t, all.CategoryResults[0].Results, 4)

	w = s.do(t, http.MethodGet, "/api/v1/admin/results", s.voterToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportResults(t *testing.T) {
	s := newTestServer(t)
	seedVotes(t, s)

	w := s.do(t, http.MethodGet, "/api/v1/admin/results/export", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 5, "header plus one row per participant")
	assert.Equal(t, []string{"Best Post", "1", "a", "2", "v1, v2"}, rows[1])
}
