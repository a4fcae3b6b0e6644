package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/datasteward/dqtracker/internal/appcontext"
	"github.com/datasteward/dqtracker/internal/config"
	"github.com/datasteward/dqtracker/internal/entity"
	"github.com/datasteward/dqtracker/internal/utils"
	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	ctx     *appcontext.Context
	service *APIService
	user    entity.User
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")

	require.NoError(t, config.Migrate(db), "migrate")

	ctx := &appcontext.Context{
		DB:        db,
		Logger:    zap.NewNop(),
		JWTSecret: []byte("test-secret"),
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcrypt.MinCost)
	require.NoError(t, err)

	user := entity.User{
		Email:        "steward@example.com",
		PasswordHash: string(hash),
		FullName:     "Data Steward",
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateJWT(ctx.JWTSecret, user.ID.String(), "access", utils.AccessTokenTTL)
	require.NoError(t, err)

	return &testEnv{
		ctx:     ctx,
		service: NewHTTPService(ctx),
		user:    user,
		token:   token,
	}
}

// do issues an authenticated request against the service and returns
// the recorded response.
func (env *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return env.doWithToken(t, method, path, body, env.token)
}

func (env *testEnv) doWithToken(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
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

	recorder := httptest.NewRecorder()
	env.service.Engine().ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body), "decode response body: %s", recorder.Body.String())
	return body
}

// seedIssue inserts an issue directly, bypassing the API.
func (env *testEnv) seedIssue(t *testing.T, issue entity.Issue) entity.Issue {
	t.Helper()

	if issue.Status == "" {
		issue.Status = entity.StatusOpen
	}
	if issue.CreatedBy == uuid.Nil {
		issue.CreatedBy = env.user.ID
	}
	require.NoError(t, env.ctx.DB.Create(&issue).Error)
	return issue
}

func intPtr(v int) *int { return &v }
