package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandantas/physicsai/internal/llm"
	"github.com/dandantas/physicsai/internal/model"
	"github.com/dandantas/physicsai/internal/service"
	"github.com/dandantas/physicsai/pkg/middleware"
)

const simulationJSON = `{
	"problem_type": "projectile_motion",
	"parameters": {"v0": {"value": 20, "unit": "m/s", "symbol": "v0"}},
	"equations": [{"label": "Range", "formula": "R = v0^2 sin(2theta) / g"}],
	"explanation": [{"step": 1, "text": "Resolve the initial velocity."}],
	"key_results": {"range": {"value": 35.3, "unit": "m"}},
	"p5js_code": "function setup() {}",
	"manim_code": "class PhysicsScene(Scene): pass"
}`

type fixedGateway struct {
	response string
	err      error
}

func (g *fixedGateway) Generate(ctx context.Context, req llm.Request) (string, error) {
	return g.response, g.err
}

func (g *fixedGateway) Model() string { return "stub-model" }

type stubRenderer struct{}

func (r *stubRenderer) Render(ctx context.Context, script, jobID string) (string, error) {
	return "/tmp/out.mp4", nil
}

type stubUploader struct{}

func (u *stubUploader) Upload(ctx context.Context, filePath, name string) (string, error) {
	return "https://cdn.example.com/" + name + ".mp4", nil
}

func newTestRouter(gateway llm.Gateway) (http.Handler, *model.JobStore) {
	jobs := model.NewJobStore()
	loop := service.NewRenderLoop(gateway, &stubRenderer{}, &stubUploader{}, jobs, nil, service.RenderLoopOptions{})
	simulations := service.NewSimulationService(gateway, jobs, loop, service.SimulationOptions{})

	router := NewRouter(
		NewSimulateHandler(simulations),
		NewVideoHandler(simulations),
		NewRepairHandler(simulations),
		NewHistoryHandler(nil),
		NewHealthHandler(nil, "stub-model", true, "test"),
		middleware.CORSConfig{AllowedOrigins: "*"},
	)
	return router.Handler(), jobs
}

func TestSimulateEndpoint(t *testing.T) {
	h, _ := newTestRouter(&fixedGateway{response: simulationJSON})

	body := bytes.NewBufferString(`{"question": "A ball is thrown at 20 m/s at 45 degrees."}`)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.SimulationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "projectile_motion", resp.ProblemType)
	assert.NotEmpty(t, resp.P5JSCode)
	_, err := uuid.Parse(resp.JobID)
	assert.NoError(t, err, "job_id should be a uuid")
}

func TestSimulateEndpointBlankQuestion(t *testing.T) {
	h, _ := newTestRouter(&fixedGateway{response: simulationJSON})

	req := httptest.NewRequest(http.MethodPost, "/api/simulate", bytes.NewBufferString(`{"question": "   "}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateEndpointInvalidBody(t *testing.T) {
	h, _ := newTestRouter(&fixedGateway{response: simulationJSON})

	req := httptest.NewRequest(http.MethodPost, "/api/simulate", bytes.NewBufferString(`{`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateEndpointMethodNotAllowed(t *testing.T) {
	h, _ := newTestRouter(&fixedGateway{response: simulationJSON})

	req := httptest.NewRequest(http.MethodGet, "/api/simulate", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestVideoEndpointPollsJob(t *testing.T) {
	h, jobs := newTestRouter(&fixedGateway{response: simulationJSON})

	jobs.Create("job-abc")
	jobs.Done("job-abc", "https://cdn.example.com/job-abc.mp4")

	req := httptest.NewRequest(http.MethodGet, "/api/video/job-abc", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status model.JobStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, model.JobStatusDone, status.Status)
	assert.Equal(t, "https://cdn.example.com/job-abc.mp4", status.URL)
}

func TestVideoEndpointUnknownJob(t *testing.T) {
	h, _ := newTestRouter(&fixedGateway{response: simulationJSON})

	req := httptest.NewRequest(http.MethodGet, "/api/video/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimulateThenPollReachesDone(t *testing.T) {
	h, _ := newTestRouter(&fixedGateway{response: simulationJSON})

	body := bytes.NewBufferString(`{"question": "Pendulum with a 2 m string."}`)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.SimulationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Eventually(t, func() bool {
		pollReq := httptest.NewRequest(http.MethodGet, "/api/video/"+resp.JobID, nil)
		pollRec := httptest.NewRecorder()
		h.ServeHTTP(pollRec, pollReq)
		if pollRec.Code != http.StatusOK {
			return false
		}
		var status model.JobStatus
		if err := json.Unmarshal(pollRec.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.Status == model.JobStatusDone
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFixEndpoint(t *testing.T) {
	h, _ := newTestRouter(&fixedGateway{response: "```javascript\nfunction setup() {}\n```"})

	body := bytes.NewBufferString(`{"code": "function setp() {}", "error": "setp is not defined"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/fix-p5js", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.FixResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "function setup() {}", resp.P5JSCode)
}

func TestFixEndpointMissingCode(t *testing.T) {
	h, _ := newTestRouter(&fixedGateway{response: "x"})

	req := httptest.NewRequest(http.MethodPost, "/api/fix-p5js", bytes.NewBufferString(`{"error": "oops"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestRouter(&fixedGateway{response: simulationJSON})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "stub-model", resp.Model)
	assert.Equal(t, "disabled", resp.Archive)
	assert.True(t, resp.KeySet)
}

func TestHistoryEndpointDisabled(t *testing.T) {
	h, _ := newTestRouter(&fixedGateway{response: simulationJSON})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpstreamErrorMapsToBadGateway(t *testing.T) {
	h, _ := newTestRouter(&fixedGateway{err: errGateway})

	body := bytes.NewBufferString(`{"question": "Why is the sky blue?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

var errGateway = gatewayError("gemini status 500 (INTERNAL): boom")

type gatewayError string

func (e gatewayError) Error() string { return string(e) }
