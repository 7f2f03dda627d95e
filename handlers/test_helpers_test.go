package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"dispatch_crm_go/config"
	"dispatch_crm_go/db"
	"dispatch_crm_go/middleware"
	"dispatch_crm_go/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique shared-memory name isolates tests while every pooled connection sees the same data
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))

	db.DB = testDB
	t.Cleanup(func() {
		if sqlDB, err := testDB.DB(); err == nil {
			sqlDB.Close()
		}
		db.DB = nil
	})
	return testDB
}

// newTestServer wires the full route table the way cmd/server does
func newTestServer(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{Environment: "test", SIPDisplayName: "Dispatcher"}
	}

	e := echo.New()
	e.Validator = NewValidator()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	limits := middleware.NewLimiters()
	t.Cleanup(limits.Stop)
	RegisterRoutes(e, limits)
	return e
}

func doJSON(e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doMultipart(t *testing.T, e *echo.Echo, path string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func stringToPtr(s string) *string {
	return &s
}
