package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/khare/internal/db"
	"github.com/terraincognita07/khare/internal/email"
	"github.com/terraincognita07/khare/internal/models"
)

const testPassword = "Sup3rSecret"

type testEnv struct {
	app     *fiber.App
	handler *Handler
	repos   *db.Repositories
	mailer  *email.Recorder
}

func newTestEnv(t *testing.T, configure ...func(*Options)) *testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "khare-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	mailer := &email.Recorder{}
	deps := NewDependencies(database, mailer, ServiceConfig{
		SecretKey:  "test-secret-key-with-enough-length!!",
		SessionTTL: time.Hour,
		CodeTTL:    10 * time.Minute,
		EchoCodes:  true,
		PublicURL:  "https://portal.example.com",
	})

	opts := Options{}
	for _, fn := range configure {
		fn(&opts)
	}
	handler, err := NewHandler(deps, opts)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	t.Cleanup(handler.Shutdown)

	app := fiber.New()
	app.Use(CORS(nil))
	RegisterRoutes(app, handler)
	return &testEnv{app: app, handler: handler, repos: db.NewRepositories(database), mailer: mailer}
}

// request sends body as JSON and authenticates with token through the cookie.
func (env *testEnv) request(t *testing.T, method string, path string, body any, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
	}

	response, err := env.app.Test(request, -1)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func decodeJSON(t *testing.T, response *http.Response, target any) {
	t.Helper()

	payload, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, target), "body: %s", payload)
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()

	payload := map[string]any{}
	decodeJSON(t, response, &payload)
	message, _ := payload["error"].(string)
	return message
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// signUp registers address and returns the new account id.
func (env *testEnv) signUp(t *testing.T, address string, role models.Role) string {
	t.Helper()

	response := env.request(t, http.MethodPost, "/api/auth/signup", fiber.Map{
		"email":     address,
		"password":  testPassword,
		"full_name": "Test User",
	}, "")
	require.Equal(t, fiber.StatusCreated, response.StatusCode)

	payload := struct {
		User models.SessionUser `json:"user"`
	}{}
	decodeJSON(t, response, &payload)
	require.NotEmpty(t, payload.User.ID)

	if role != models.RoleClient {
		require.NoError(t, env.repos.Profiles.UpdateRole(context.Background(), payload.User.ID, role))
	}
	return payload.User.ID
}

func (env *testEnv) signIn(t *testing.T, address string) string {
	t.Helper()

	response := env.request(t, http.MethodPost, "/api/auth/signin", fiber.Map{"email": address, "password": testPassword}, "")
	require.Equal(t, fiber.StatusOK, response.StatusCode)

	payload := sessionPayload{}
	decodeJSON(t, response, &payload)
	require.NotEmpty(t, payload.AccessToken)
	return payload.AccessToken
}

func (env *testEnv) signedIn(t *testing.T, address string, role models.Role) (string, string) {
	t.Helper()
	accountID := env.signUp(t, address, role)
	return accountID, env.signIn(t, address)
}

func newBearerRequest(method string, path string, token string) *http.Request {
	request := httptest.NewRequest(method, path, nil)
	request.Header.Set("Authorization", "Bearer "+token)
	return request
}
