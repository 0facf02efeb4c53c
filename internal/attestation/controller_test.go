package attestation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tradeflow/internal/config"
	"tradeflow/internal/dto"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Defaults()
	cfg.Attestation.Secret = testSecret

	ctrl, err := NewModule(cfg, zap.NewNop())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/v1", ctrl.Routes)
	return r
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewModule_RequiresSecret(t *testing.T) {
	_, err := NewModule(config.Defaults(), zap.NewNop())
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestGenerateThenVerify(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h, "/api/v1/attestations/packing-list", `{"refNumber":"R1","lineItems":[{"qty":10}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var sealed map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sealed))
	assert.Equal(t, "3be9aed288d995d324eea05d01b58cba41af644b90ebef0706b810aeef6dc15e", sealed[SealField])
	assert.Equal(t, sealed[SealField], sealed[WireSealField])

	body, err := json.Marshal(VerifyRequest{VPLData: sealed})
	require.NoError(t, err)

	rec = post(t, h, "/api/v1/attestations/packing-list/verify", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.IsValid)
	assert.Equal(t, sealed[SealField], resp.ProvidedSeal)
}

func TestVerify_TamperedIsNotAnError(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h, "/api/v1/attestations/packing-list/verify",
		`{"vplData":{"refNumber":"R1","lineItems":[{"qty":11}],"seal":"3be9aed288d995d324eea05d01b58cba41af644b90ebef0706b810aeef6dc15e"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, true, raw["success"])
	assert.Equal(t, false, raw["isValid"])
	assert.Contains(t, raw, "computedSeal")
	assert.Contains(t, raw, "providedSeal")
}

func TestNonObjectBodies(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"generate array", "/api/v1/attestations/packing-list", `[1,2]`},
		{"generate null", "/api/v1/attestations/packing-list", `null`},
		{"generate malformed", "/api/v1/attestations/packing-list", `{"a":`},
		{"verify missing vplData", "/api/v1/attestations/packing-list/verify", `{}`},
		{"verify scalar vplData", "/api/v1/attestations/packing-list/verify", `{"vplData":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "VALIDATION_ERROR", body.Code)
		})
	}
}

func TestVerify_WireSealFieldOnly(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h, "/api/v1/attestations/packing-list/verify",
		`{"vplData":{"refNumber":"R1","lineItems":[{"qty":10}],"securityHash":"3be9aed288d995d324eea05d01b58cba41af644b90ebef0706b810aeef6dc15e"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsValid)
}

func TestLargeIntegersKeepFullPrecision(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h, "/api/v1/attestations/packing-list", `{"refNumber":"R1","containerId":9007199254740993}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"containerId":9007199254740993`)

	var sealed map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sealed))
	seal := string(sealed[SealField])

	verify := func(containerID string) VerifyResponse {
		t.Helper()
		body := `{"vplData":{"refNumber":"R1","containerId":` + containerID + `,"seal":` + seal + `}}`
		rec := post(t, h, "/api/v1/attestations/packing-list/verify", body)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp VerifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	assert.True(t, verify("9007199254740993").IsValid)
	assert.False(t, verify("9007199254740992").IsValid)
}

func TestGenerate_NumberOutOfRange(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h, "/api/v1/attestations/packing-list", `{"refNumber":"R1","qty":1e999999}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
