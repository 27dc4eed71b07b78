package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/polipredict/internal/catalog"
	"github.com/alexanderramin/polipredict/internal/contract"
	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/alexanderramin/polipredict/internal/model"
	"github.com/alexanderramin/polipredict/internal/service"
	"github.com/alexanderramin/polipredict/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, predictor model.Predictor) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(Options{
		Predictions: service.NewPredictionService(predictor),
		Catalog:     service.NewCatalogService(catalog.Build([]string{"P2", "P1"}, []string{"2022", "2021"})),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const validBody = `{
	"prior_year_thesis_count": 10,
	"prior_staff_satisfaction": 7,
	"prior_student_satisfaction": 7.5,
	"prior_dropout_rate_pct": 10,
	"program": "P1",
	"academic_year": "2022"
}`

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, testutil.StubPredictor(1))

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetCatalog(t *testing.T) {
	srv := newTestServer(t, testutil.StubPredictor(1))

	resp, err := http.Get(srv.URL + "/api/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()

	var c catalog.Catalog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&c))
	assert.Equal(t, []string{"P1", "P2"}, c.Programs)
	assert.Equal(t, []string{"2021", "2022"}, c.Years)
	assert.False(t, c.IsFallback)
}

func TestPredict_OK(t *testing.T) {
	srv := newTestServer(t, testutil.StubPredictor(12.4, "P1"))

	resp := postJSON(t, srv.URL+"/api/predict", validBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got contract.PredictionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, 12, got.PredictedTheses)
	assert.Equal(t, 12.4, got.RawPrediction)
	assert.Equal(t, "18000", got.Resources.AnnualCost.String())
	assert.Equal(t, 240.0, got.Resources.TutoringHours)
}

func TestPredict_IntegerAcademicYear(t *testing.T) {
	var seen string
	srv := newTestServer(t, model.PredictorFunc(func(_ context.Context, row domain.FeatureRow) (float64, error) {
		seen = row.Categorical[domain.ColAcademicYear]
		return 3, nil
	}))

	body := strings.Replace(validBody, `"2022"`, `2022`, 1)
	resp := postJSON(t, srv.URL+"/api/predict", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2022", seen)
}

func TestPredict_UnknownCategory(t *testing.T) {
	srv := newTestServer(t, testutil.StubPredictor(12.4, "P1"))

	resp := postJSON(t, srv.URL+"/api/predict", strings.Replace(validBody, `"P1"`, `"GRUPO_X"`, 1))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unknown_category", body.Error)
	assert.Equal(t, domain.ColProgram, body.Column)
	assert.Equal(t, "GRUPO_X", body.Value)
}

func TestPredict_BadRequests(t *testing.T) {
	srv := newTestServer(t, testutil.StubPredictor(1))

	cases := map[string]struct {
		body string
		code string
	}{
		"malformed":     {`{"program":`, "invalid_request"},
		"empty":         {``, "invalid_request"},
		"unknown field": {`{"programme":"P1"}`, "invalid_request"},
		"bad year":      {`{"academic_year":true}`, "invalid_request"},
		"out of range":  {strings.Replace(validBody, `"prior_dropout_rate_pct": 10`, `"prior_dropout_rate_pct": 140`, 1), "invalid_input"},
		"missing":       {`{"prior_year_thesis_count": 3}`, "invalid_input"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/predict", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Error)
		})
	}
}

func TestPredict_BackendFailure(t *testing.T) {
	srv := newTestServer(t, model.PredictorFunc(func(context.Context, domain.FeatureRow) (float64, error) {
		return 0, model.ErrModelUnavailable
	}))

	resp := postJSON(t, srv.URL+"/api/predict", validBody)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestEstimate(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/estimate", `{"theses": 8}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got contract.EstimateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 8, got.Theses)
	assert.Equal(t, 2.0, got.Resources.EstimatedDefenses)

	for _, body := range []string{`{"theses": -1}`, `{}`, `{"theses": "x"}`} {
		resp := postJSON(t, srv.URL+"/api/estimate", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/predict", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	h := NewRouter(Options{
		Predictions: service.NewPredictionService(nil),
		Catalog:     service.NewCatalogService(nil),
		Logger:      slog.New(slog.NewTextHandler(&buf, nil)),
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "msg=http_request")
	assert.Contains(t, buf.String(), "path=/healthz")
	assert.Contains(t, buf.String(), "status=200")
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ListenAndServe(ctx, addr, http.NotFoundHandler(), slog.New(slog.DiscardHandler))
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
