package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/totoro/internal/db"
	"github.com/terraincognita07/totoro/internal/i18n"
	"gorm.io/gorm"
)

const testSecretKey = "test-secret-key-with-enough-entropy-1234"

type testApp struct {
	app      *fiber.App
	handler  *Handler
	database *gorm.DB
	i18n     *i18n.Manager
	now      time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "totoro-api-test.db"))
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewManager("en", i18n.Locales())
	require.NoError(t, err)

	handler, err := NewHandler(database, i18nManager, Options{
		SecretKey: testSecretKey,
		TokenTTL:  time.Hour,
		Location:  time.UTC,
	})
	require.NoError(t, err)

	env := &testApp{
		handler:  handler,
		database: database,
		i18n:     i18nManager,
		now:      time.Date(2024, time.February, 10, 12, 0, 0, 0, time.UTC),
	}
	handler.now = func() time.Time { return env.now }

	env.app = fiber.New()
	RegisterRoutes(env.app, handler)
	return env
}

func (env *testApp) request(t *testing.T, method string, path string, body string, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

// recordTwoPeriods seeds Jan 1-5 and Jan 29 - Feb 2 2024, which predicts a
// 28 day cycle with the next period on Feb 26.
func (env *testApp) recordTwoPeriods(t *testing.T) {
	t.Helper()

	for _, body := range []string{
		`{"start":"2024-01-01","end":"2024-01-05"}`,
		`{"start":"2024-01-29","end":"2024-02-02"}`,
	} {
		resp := env.request(t, http.MethodPost, "/api/periods", body, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var value T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&value))
	return value
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
