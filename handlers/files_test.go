package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"case_flow_app_go/models"
	"case_flow_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSigner struct{}

func (stubSigner) GetSignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example.com/" + key, nil
}

func TestDownloadFileHandler(t *testing.T) {
	database := setupTestDB(t)
	lawCase := createCase(t, database)

	key := "cases/report.pdf"
	stored := models.File{CaseID: lawCase.ID, Name: "report.pdf", URL: "https://legacy.example.com/report.pdf", StorageKey: &key, Type: models.FileTypePDF}
	require.NoError(t, database.Create(&stored).Error)

	t.Run("Signed when storage is configured", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/files/"+stored.ID+"/download", nil)
		c.SetParamNames("id")
		c.SetParamValues(stored.ID)
		c.Set(ProvidersKey, &services.Providers{Signer: stubSigner{}})

		require.NoError(t, DownloadFileHandler(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://signed.example.com/cases/report.pdf", rec.Header().Get("Location"))
	})

	t.Run("Stored URL without storage", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/files/"+stored.ID+"/download", nil)
		c.SetParamNames("id")
		c.SetParamValues(stored.ID)

		require.NoError(t, DownloadFileHandler(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, stored.URL, rec.Header().Get("Location"))
	})

	t.Run("Unknown file", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/files/missing/download", nil)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		require.NoError(t, DownloadFileHandler(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
