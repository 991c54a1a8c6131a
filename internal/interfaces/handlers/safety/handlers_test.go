package safety

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSafetyTest() *fiber.App {
	h := &Handlers{}
	app := fiber.New()
	app.Get("/api/v1/safety/score", h.Score)
	app.Get("/api/v1/safety/features", h.Features)
	return app
}

func get(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

func TestScore(t *testing.T) {
	app := setupSafetyTest()

	tests := []struct {
		query string
		score float64
		tier  string
	}{
		{"", 0, "low"},
		{"?feature=CCTV", 30, "low"},
		{"?feature=CCTV&feature=Biometric", 50, "moderate"},
		{"?feature=CCTV,Security%20Guard,Biometric", 90, "high"},
		{"?feature=CCTV,Security%20Guard,Biometric,Fire%20Extinguisher", 100, "high"},
		{"?feature=CCTV&feature=CCTV", 30, "low"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			code, result := get(t, app, "/api/v1/safety/score"+tt.query)
			require.Equal(t, 200, code)
			data := result["data"].(map[string]interface{})
			assert.Equal(t, tt.score, data["score"])
			assert.Equal(t, tt.tier, data["level"].(map[string]interface{})["tier"])
		})
	}
}

func TestScore_UnknownFeature(t *testing.T) {
	app := setupSafetyTest()
	code, result := get(t, app, "/api/v1/safety/score?feature=Moat")
	assert.Equal(t, 400, code)
	assert.Contains(t, result["error"].(map[string]interface{})["message"], "Moat")
}

func TestFeatures(t *testing.T) {
	app := setupSafetyTest()
	code, result := get(t, app, "/api/v1/safety/features")
	require.Equal(t, 200, code)
	data := result["data"].([]interface{})
	require.Len(t, data, 4)
	assert.Equal(t, "CCTV", data[0].(map[string]interface{})["feature"])
	assert.Equal(t, float64(30), data[0].(map[string]interface{})["weight"])
	assert.Equal(t, float64(100), result["metadata"].(map[string]interface{})["maxScore"])
}
