package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bais/internal/config"
	"bais/internal/errors"
	"bais/internal/stats"
)

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := NewServer(config.Default())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWelchEndpoint(t *testing.T) {
	s := NewServer(config.Default())
	rec := post(t, s, "/v1/welch", `{"a":[2,1,3,4],"b":[6,5,7,9]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res stats.WelchTTestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.InDelta(t, -3.9703446152237674, res.T, 1e-12)
	assert.InDelta(t, 5.584615384615385, res.DF, 1e-12)
}

func TestDescribeEndpoint(t *testing.T) {
	s := NewServer(config.Default())
	rec := post(t, s, "/v1/describe", `{"values":[1,2,3,4]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2.5, body["mean"])
	assert.Contains(t, body, "meanCI")
}

func TestBootstrapEndpoint_UsesConfigDefaults(t *testing.T) {
	s := NewServer(config.Default())
	rec := post(t, s, "/v1/bootstrap", `{"high":[10,11,9,12,10],"low":[1,2,0,3,1]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var ci stats.BootstrapCI
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ci))
	assert.InDelta(t, 7.8, ci.Lower, 1e-9)
	assert.InDelta(t, 10.2, ci.Upper, 1e-9)
	assert.Equal(t, 2000, ci.Iterations)

	rec = post(t, s, "/v1/bootstrap", `{"high":[10,11],"low":[1,2],"iterations":50}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBootstrapEndpoint_RejectsExcessiveIterations(t *testing.T) {
	s := NewServer(config.Default())
	rec := post(t, s, "/v1/bootstrap", `{"high":[10,11,9],"low":[1,2,0],"iterations":2000000000}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeInvalidInput, resp.Code)
	assert.Contains(t, resp.Error, "at most 100000")

	rec = post(t, s, "/v1/bootstrap", `{"high":[10,11,9],"low":[1,2,0],"iterations":100000,"seed":7}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEndpoints(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"five-number", "/v1/five-number", `{"values":[1,2,3,4,5]}`, http.StatusOK},
		{"effect-size", "/v1/effect-size", `{"a":[10,11,9,12,10],"b":[1,2,0,3,1]}`, http.StatusOK},
		{"regression", "/v1/regression", `{"x":[1,2,3],"y":[2,4,6]}`, http.StatusOK},
		{"ztest", "/v1/proportion/ztest", `{"successesA":8,"nA":10,"successesB":2,"nB":10}`, http.StatusOK},
		{"proportion ci", "/v1/proportion/ci", `{"successes":0,"n":10}`, http.StatusOK},
		{"chisquare", "/v1/chisquare", `{"observed":[[20,5],[5,20]]}`, http.StatusOK},
		{"holm", "/v1/adjust", `{"pValues":[0.01,0.04],"method":"holm"}`, http.StatusOK},
		{"empty describe", "/v1/describe", `{"values":[]}`, http.StatusUnprocessableEntity},
		{"constant welch", "/v1/welch", `{"a":[5,5],"b":[2,2]}`, http.StatusUnprocessableEntity},
		{"bad table", "/v1/chisquare", `{"observed":[[1,2]]}`, http.StatusUnprocessableEntity},
		{"unknown method", "/v1/adjust", `{"pValues":[0.01],"method":"fdr"}`, http.StatusBadRequest},
		{"malformed", "/v1/welch", `{"a":[1,2`, http.StatusBadRequest},
		{"unknown field", "/v1/describe", `{"vals":[1]}`, http.StatusBadRequest},
	}

	s := NewServer(config.Default())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(t, s, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestPreconditionErrorBody(t *testing.T) {
	s := NewServer(config.Default())
	rec := post(t, s, "/v1/welch", `{"a":[1],"b":[1,2]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.CodePrecondition, body.Code)
	assert.Equal(t, "WelchTTestTwoSided: need at least 2 samples per group", body.Error)
}

func TestUnknownRoute(t *testing.T) {
	s := NewServer(config.Default())
	rec := post(t, s, "/v1/anova", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
