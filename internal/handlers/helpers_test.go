package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/logging"
	"github.com/YasminCastro/malucas-awards-v2/internal/metrics"
	"github.com/YasminCastro/malucas-awards-v2/internal/middleware"
	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories/memory"
	"github.com/YasminCastro/malucas-awards-v2/internal/services"
	"github.com/YasminCastro/malucas-awards-v2/pkg/cache"
	"github.com/YasminCastro/malucas-awards-v2/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router     *gin.Engine
	tokens     *jwt.TokenService
	gate       *services.PhaseGate
	categories *services.CategoryService
	users      *services.UserService
	ledger     *services.VoteService

	admin      *models.User
	voter      *models.User
	adminToken string
	voterToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	log := logging.Discard()
	m := metrics.New()
	c := cache.New(cache.WithObserver(m))
	tokens, err := jwt.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	gate := services.NewPhaseGate(memory.NewSettingsRepository(), c, time.Minute, m)
	votes := memory.NewVoteRepository()
	categoryRepo := memory.NewCategoryRepository()
	userSvc := services.NewUserService(memory.NewUserRepository(), c, time.Minute, log)
	categorySvc := services.NewCategoryService(categoryRepo, gate, c, time.Minute, log)
	ledger := services.NewVoteService(votes, c, log, m)
	results := services.NewResultsService(votes, categoryRepo, c, time.Minute)
	settingsSvc := services.NewSettingsService(gate)
	suggestionSvc := services.NewSuggestionService(memory.NewCategorySuggestionRepository(), c, time.Minute)
	authSvc := services.NewAuthService(userSvc, gate, tokens)

	authH := NewAuthHandler(authSvc, userSvc, SessionCookie{Name: "auth-token", TTL: time.Hour}, log)
	userH := NewUserHandler(userSvc, log)
	categoryH := NewCategoryHandler(categorySvc, log)
	voteH := NewVoteHandler(gate, ledger, categorySvc, log)
	resultsH := NewResultsHandler(gate, results, log)
	settingsH := NewSettingsHandler(settingsSvc, gate, log)
	suggestionH := NewSuggestionHandler(suggestionSvc, log)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(authSvc, "auth-token"))

	api := r.Group("/api/v1")
	api.POST("/auth/check-user", authH.CheckUser)
	api.POST("/auth/signup", authH.Signup)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/logout", authH.Logout)
	api.GET("/auth/me", middleware.RequireAuth(), authH.Me)
	api.GET("/categories", categoryH.ListPublic)
	api.GET("/users/public", userH.ListPublic)
	api.GET("/settings/voting-status", settingsH.GetVotingStatus)
	api.GET("/results", resultsH.GetResults)
	api.GET("/results/:categoryId", resultsH.GetCategoryResults)
	api.POST("/category-suggestions", suggestionH.Create)
	api.PUT("/category-suggestions/:id/participants", suggestionH.AddParticipants)
	api.POST("/votes", middleware.RequireAuth(), voteH.CastVotes)
	api.GET("/votes/me", middleware.RequireAuth(), voteH.GetMyVotes)

	admin := api.Group("/admin", middleware.RequireAdmin(userSvc))
	admin.GET("/categories", categoryH.List)
	admin.POST("/categories", categoryH.Create)
	admin.PUT("/categories/:id", categoryH.Update)
	admin.DELETE("/categories/:id", categoryH.Delete)
	admin.GET("/users", userH.List)
	admin.POST("/users", userH.Create)
	admin.POST("/users/:id/reset-password", userH.ResetPassword)
	admin.DELETE("/users/:id", userH.Delete)
	admin.GET("/category-suggestions", suggestionH.AdminList)
	admin.PUT("/category-suggestions/:id", suggestionH.UpdateStatus)
	admin.GET("/results", resultsH.GetAdminResults)
	admin.GET("/results/export", resultsH.ExportResults)
	admin.GET("/settings", settingsH.GetSettings)
	admin.PUT("/settings", settingsH.UpdateSettings)

	s := &testServer{
		router:     r,
		tokens:     tokens,
		gate:       gate,
		categories: categorySvc,
		users:      userSvc,
		ledger:     ledger,
	}

	s.admin, err = userSvc.CreatePreRegistered(ctx, models.CreateUserRequest{Handle: "boss", Name: "Boss", IsAdmin: true})
	require.NoError(t, err)
	require.NoError(t, userSvc.SetPassword(ctx, s.admin, "secret-admin"))
	s.voter, err = userSvc.CreatePreRegistered(ctx, models.CreateUserRequest{Handle: "ana", Name: "Ana"})
	require.NoError(t, err)
	require.NoError(t, userSvc.SetPassword(ctx, s.voter, "secret-ana"))

	s.adminToken, err = tokens.Issue(s.admin.ID.Hex(), s.admin.Handle, true)
	require.NoError(t, err)
	s.voterToken, err = tokens.Issue(s.voter.ID.Hex(), s.voter.Handle, false)
	require.NoError(t, err)
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) setPhase(t *testing.T, phase models.VotingPhase) {
	t.Helper()
	_, err := s.gate.SetPhase(context.Background(), phase, "boss")
	require.NoError(t, err)
}

func (s *testServer) category(t *testing.T, name string, handles ...string) *models.Category {
	t.Helper()
	participants := make([]models.Participant, len(handles))
	for i, h := range handles {
		participants[i] = models.Participant{Handle: h}
	}
	c, err := s.categories.Create(context.Background(), models.CategoryRequest{Name: &name, Participants: &participants})
	require.NoError(t, err)
	return c
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}
