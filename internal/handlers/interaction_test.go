package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sparkmatch/internal/config"
	"sparkmatch/internal/database"
	"sparkmatch/internal/middleware"
	"sparkmatch/internal/models"
	"sparkmatch/internal/redis"
	"sparkmatch/internal/services"
	"sparkmatch/internal/utils"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisClient, err := redis.Initialize("redis://" + mr.Addr())
	require.NoError(t, err)

	cfg := config.Load()

	interactions := services.NewInteractionService(db)
	invitations := services.NewInvitationService(db, interactions)
	discovery := services.NewDiscoveryService(db)

	authHandler := NewAuthHandler(db, redisClient, cfg)
	userHandler := NewUserHandler(db, redisClient, cfg, discovery, nil)
	interactionHandler := NewInteractionHandler(db, redisClient, cfg, interactions, invitations)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("")
	authed.Use(middleware.AuthRequired())
	authed.GET("/random-user", userHandler.RandomUser)
	authed.POST("/interact", interactionHandler.Interact)
	authed.GET("/matches", interactionHandler.GetMatches)
	authed.GET("/liked-users", interactionHandler.LikedUsers)
	authed.GET("/received-likes", interactionHandler.ReceivedLikes)
	authed.POST("/date-invitations", interactionHandler.CreateInvitation)
	authed.POST("/contact-exchange", interactionHandler.CreateContactExchange)

	return &testServer{router: router, db: db}
}

func (ts *testServer) register(t *testing.T, email string) *models.User {
	t.Helper()

	body := map[string]interface{}{
		"email":            email,
		"password":         "password123",
		"password_confirm": "password123",
		"first_name":       "Test",
		"last_name":        "User",
		"gender":           "F",
		"age":              25,
		"city":             "Moscow",
	}
	rec := ts.request(t, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user models.User
	require.NoError(t, ts.db.Where("email = ?", email).First(&user).Error)
	return &user
}

func (ts *testServer) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Email, time.Hour)
	require.NoError(t, err)
	return token
}

func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	// Mismatched confirmation.
	rec := ts.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":            "x@test.com",
		"password":         "password123",
		"password_confirm": "different456",
		"first_name":       "Test",
		"last_name":        "User",
		"gender":           "F",
		"age":              25,
		"city":             "Moscow",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Under 18.
	rec = ts.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":            "y@test.com",
		"password":         "password123",
		"password_confirm": "password123",
		"first_name":       "Test",
		"last_name":        "User",
		"gender":           "M",
		"age":              17,
		"city":             "Moscow",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicate email.
	ts.register(t, "dup@test.com")
	rec = ts.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":            "dup@test.com",
		"password":         "password123",
		"password_confirm": "password123",
		"first_name":       "Test",
		"last_name":        "User",
		"gender":           "F",
		"age":              25,
		"city":             "Moscow",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "a@test.com")

	rec := ts.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "a@test.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)

	rec = ts.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "a@test.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMatchAndInvitationScenario(t *testing.T) {
	ts := newTestServer(t)

	userA := ts.register(t, "a@test.com")
	userB := ts.register(t, "b@test.com")
	userC := ts.register(t, "c@test.com")

	tokenA := ts.tokenFor(t, userA)
	tokenB := ts.tokenFor(t, userB)
	tokenC := ts.tokenFor(t, userC)

	// A likes B: no match yet.
	rec := ts.request(t, http.MethodPost, "/api/v1/interact", tokenA, map[string]interface{}{
		"to_user": userB.ID,
		"action":  "like",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "It's a match!")

	// B likes A back: match formed.
	rec = ts.request(t, http.MethodPost, "/api/v1/interact", tokenB, map[string]interface{}{
		"to_user": userA.ID,
		"action":  "like",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "It's a match!")

	// GET matches for A returns one match containing B.
	rec = ts.request(t, http.MethodGet, "/api/v1/matches", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var matchesResp struct {
		Matches []MatchResponse `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matchesResp))
	require.Len(t, matchesResp.Matches, 1)
	assert.Equal(t, userB.ID, matchesResp.Matches[0].User.ID)

	// A invites B to a date.
	rec = ts.request(t, http.MethodPost, "/api/v1/date-invitations", tokenA, map[string]interface{}{
		"to_user":       userB.ID,
		"message":       "Dinner on Friday?",
		"proposed_date": time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// C has no match with A: invitation rejected.
	rec = ts.request(t, http.MethodPost, "/api/v1/date-invitations", tokenC, map[string]interface{}{
		"to_user":       userA.ID,
		"message":       "Hey!",
		"proposed_date": time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInteractEndpointErrors(t *testing.T) {
	ts := newTestServer(t)

	userA := ts.register(t, "a@test.com")
	userB := ts.register(t, "b@test.com")
	tokenA := ts.tokenFor(t, userA)

	// No token.
	rec := ts.request(t, http.MethodPost, "/api/v1/interact", "", map[string]interface{}{
		"to_user": userB.ID,
		"action":  "like",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Self-interaction.
	rec = ts.request(t, http.MethodPost, "/api/v1/interact", tokenA, map[string]interface{}{
		"to_user": userA.ID,
		"action":  "like",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Invalid action.
	rec = ts.request(t, http.MethodPost, "/api/v1/interact", tokenA, map[string]interface{}{
		"to_user": userB.ID,
		"action":  "wink",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicate.
	rec = ts.request(t, http.MethodPost, "/api/v1/interact", tokenA, map[string]interface{}{
		"to_user": userB.ID,
		"action":  "like",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.request(t, http.MethodPost, "/api/v1/interact", tokenA, map[string]interface{}{
		"to_user": userB.ID,
		"action":  "like",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestContactExchangeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	userA := ts.register(t, "a@test.com")
	userB := ts.register(t, "b@test.com")
	userC := ts.register(t, "c@test.com")

	tokenA := ts.tokenFor(t, userA)
	tokenC := ts.tokenFor(t, userC)

	// Form the match directly through the ledger.
	tokenB := ts.tokenFor(t, userB)
	ts.request(t, http.MethodPost, "/api/v1/interact", tokenA, map[string]interface{}{"to_user": userB.ID, "action": "like"})
	ts.request(t, http.MethodPost, "/api/v1/interact", tokenB, map[string]interface{}{"to_user": userA.ID, "action": "like"})

	var match models.Match
	require.NoError(t, ts.db.First(&match).Error)

	rec := ts.request(t, http.MethodPost, "/api/v1/contact-exchange", tokenC, map[string]interface{}{
		"match":        match.ID,
		"contact_info": "telegram: @c",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/v1/contact-exchange", tokenA, map[string]interface{}{
		"match":        match.ID,
		"contact_info": "telegram: @a",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRandomUserEndpoint(t *testing.T) {
	ts := newTestServer(t)

	viewer := ts.register(t, "viewer@test.com")
	ts.register(t, "b@test.com")
	token := ts.tokenFor(t, viewer)

	rec := ts.request(t, http.MethodGet, "/api/v1/random-user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, viewer.ID, resp.User.ID)

	// Only one other user existed; the pool is now exhausted.
	rec = ts.request(t, http.MethodGet, "/api/v1/random-user", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
