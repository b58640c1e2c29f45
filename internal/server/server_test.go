package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/handlers"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("qa_forum_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Fatalf("starting postgres container: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("getting connection string: %v", err)
	}

	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("connecting to test database: %v", err)
	}
	if err := database.Migrate(testDB); err != nil {
		log.Fatalf("migrating test database: %v", err)
	}

	gin.SetMode(gin.TestMode)

	code := m.Run()

	if err := testcontainers.TerminateContainer(ctr); err != nil {
		log.Printf("terminating container: %v", err)
	}
	os.Exit(code)
}

func newTestRouter() *gin.Engine {
	s := &Server{
		db:      database.NewWithDB(testDB),
		handler: handlers.NewHandler(testDB),
	}
	return s.RegisterRoutes()
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var userSeq atomic.Int64

// registerTestUser registers a fresh user through the API and returns the
// auth token and user id.
func registerTestUser(t *testing.T, router *gin.Engine) (string, int) {
	t.Helper()

	n := userSeq.Add(1)
	w := doJSON(router, http.MethodPost, "/api/register", "", gin.H{
		"username": fmt.Sprintf("apiuser%d", n),
		"email":    fmt.Sprintf("apiuser%d@example.com", n),
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	return token, int(user["id"].(float64))
}

func createTestQuestionAPI(t *testing.T, router *gin.Engine, token string) int {
	t.Helper()

	w := doJSON(router, http.MethodPost, "/api/questions", token, gin.H{
		"title": "How do transactions work?",
		"body":  "Asking for a friend.",
		"tags":  []string{"postgres", "transactions"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int(decodeBody(t, w)["id"].(float64))
}

func createTestAnswerAPI(t *testing.T, router *gin.Engine, token string, questionID int) int {
	t.Helper()

	w := doJSON(router, http.MethodPost, fmt.Sprintf("/api/questions/%d/answers", questionID), token, gin.H{
		"body": "They begin and they commit.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int(decodeBody(t, w)["id"].(float64))
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "up", decodeBody(t, w)["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	router := newTestRouter()

	n := userSeq.Add(1)
	email := fmt.Sprintf("login%d@example.com", n)
	w := doJSON(router, http.MethodPost, "/api/register", "", gin.H{
		"username": fmt.Sprintf("login%d", n),
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["token"])

	w = doJSON(router, http.MethodPost, "/api/login", "", gin.H{
		"email":    email,
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVoteQuestionEndpoint(t *testing.T) {
	router := newTestRouter()

	authorToken, _ := registerTestUser(t, router)
	voterToken, _ := registerTestUser(t, router)
	questionID := createTestQuestionAPI(t, router, authorToken)

	// Upvote.
	w := doJSON(router, http.MethodPost, "/api/vote-question", voterToken, gin.H{
		"question_id": questionID,
		"value":       1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["rating"])
	assert.Equal(t, float64(1), body["user_vote"])

	// Same vote toggles off.
	w = doJSON(router, http.MethodPost, "/api/vote-question", voterToken, gin.H{
		"question_id": questionID,
		"value":       1,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, float64(0), body["rating"])
	assert.Equal(t, float64(0), body["user_vote"])

	// Self-vote is forbidden.
	w = doJSON(router, http.MethodPost, "/api/vote-question", authorToken, gin.H{
		"question_id": questionID,
		"value":       1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Bad value.
	w = doJSON(router, http.MethodPost, "/api/vote-question", voterToken, gin.H{
		"question_id": questionID,
		"value":       7,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing question.
	w = doJSON(router, http.MethodPost, "/api/vote-question", voterToken, gin.H{
		"question_id": 999999,
		"value":       1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// No token.
	w = doJSON(router, http.MethodPost, "/api/vote-question", "", gin.H{
		"question_id": questionID,
		"value":       1,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVoteAnswerEndpoint(t *testing.T) {
	router := newTestRouter()

	askerToken, _ := registerTestUser(t, router)
	answererToken, _ := registerTestUser(t, router)
	voterToken, _ := registerTestUser(t, router)

	questionID := createTestQuestionAPI(t, router, askerToken)
	answerID := createTestAnswerAPI(t, router, answererToken, questionID)

	w := doJSON(router, http.MethodPost, "/api/vote-answer", voterToken, gin.H{
		"answer_id": answerID,
		"value":     -1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, float64(-1), body["rating"])
	assert.Equal(t, float64(-1), body["user_vote"])

	// The answer author cannot vote on their own answer.
	w = doJSON(router, http.MethodPost, "/api/vote-answer", answererToken, gin.H{
		"answer_id": answerID,
		"value":     1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarkCorrectAnswerEndpoint(t *testing.T) {
	router := newTestRouter()

	askerToken, _ := registerTestUser(t, router)
	answererToken, _ := registerTestUser(t, router)

	questionID := createTestQuestionAPI(t, router, askerToken)
	otherQuestionID := createTestQuestionAPI(t, router, askerToken)
	answerID := createTestAnswerAPI(t, router, answererToken, questionID)

	// Only the question author may mark.
	w := doJSON(router, http.MethodPost, "/api/mark-correct-answer", answererToken, gin.H{
		"question_id": questionID,
		"answer_id":   answerID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Mismatched question/answer pair.
	w = doJSON(router, http.MethodPost, "/api/mark-correct-answer", askerToken, gin.H{
		"question_id": otherQuestionID,
		"answer_id":   answerID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/mark-correct-answer", askerToken, gin.H{
		"question_id": questionID,
		"answer_id":   answerID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(answerID), body["answer_id"])
}

func TestGetQuestionsAndProfile(t *testing.T) {
	router := newTestRouter()

	authorToken, authorID := registerTestUser(t, router)
	voterToken, _ := registerTestUser(t, router)
	questionID := createTestQuestionAPI(t, router, authorToken)

	w := doJSON(router, http.MethodPost, "/api/vote-question", voterToken, gin.H{
		"question_id": questionID,
		"value":       1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/questions?tag=postgres&sort=hot", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var questions []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	assert.NotEmpty(t, questions)

	// The author's reputation reflects the upvote.
	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/users/%d", authorID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, float64(1), user["reputation"])
}

func TestDeleteAccountEndpoint(t *testing.T) {
	router := newTestRouter()

	authorToken, authorID := registerTestUser(t, router)
	voterToken, _ := registerTestUser(t, router)
	questionID := createTestQuestionAPI(t, router, authorToken)

	w := doJSON(router, http.MethodPost, "/api/vote-question", voterToken, gin.H{
		"question_id": questionID,
		"value":       1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/me", voterToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The voter's vote went with them.
	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/users/%d", authorID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, float64(0), user["reputation"])
}
