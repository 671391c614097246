package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandantas/physicsai/internal/llm"
	"github.com/dandantas/physicsai/internal/model"
	"github.com/dandantas/physicsai/internal/render"
)

// stubRenderer fails or succeeds per attempt according to its script of
// outcomes, recording the script text passed to each attempt.
type stubRenderer struct {
	mu       sync.Mutex
	outcomes []error
	scripts  []string
}

func (r *stubRenderer) Render(ctx context.Context, script, jobID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt := len(r.scripts)
	r.scripts = append(r.scripts, script)
	if attempt < len(r.outcomes) && r.outcomes[attempt] != nil {
		return "", r.outcomes[attempt]
	}
	return "/tmp/fake/PhysicsScene.mp4", nil
}

type stubUploader struct {
	url     string
	err     error
	uploads int
}

func (u *stubUploader) Upload(ctx context.Context, filePath, name string) (string, error) {
	u.uploads++
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

type stubArchiver struct {
	mu      sync.Mutex
	records []*model.RenderRecord
}

func (a *stubArchiver) Create(ctx context.Context, record *model.RenderRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, record)
	return nil
}

// repairGateway returns a numbered repaired script per call, optionally
// failing every call.
type repairGateway struct {
	mu    sync.Mutex
	calls []llm.Request
	err   error
}

func (g *repairGateway) Generate(ctx context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("```python\n# repaired v%d\nfrom manim import *\n```", len(g.calls)), nil
}

func (g *repairGateway) Model() string { return "test-model" }

func (g *repairGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func renderError(msg string) error {
	return &render.Error{Stage: "render", Diagnostics: msg}
}

func newLoop(gw llm.Gateway, r Renderer, u Uploader, jobs *model.JobStore, a Archiver, strict bool) *RenderLoop {
	return NewRenderLoop(gw, r, u, jobs, a, RenderLoopOptions{MaxAttempts: 3, RepairStrict: strict})
}

func TestRenderLoopRecoversWithinAttemptBudget(t *testing.T) {
	jobs := model.NewJobStore()
	gw := &repairGateway{}
	renderer := &stubRenderer{outcomes: []error{
		renderError("NameError: MathTex"),
		renderError("SyntaxError: invalid syntax"),
		nil,
	}}
	uploader := &stubUploader{url: "https://cdn.example.com/v/job-1.mp4"}
	archive := &stubArchiver{}

	newLoop(gw, renderer, uploader, jobs, archive, false).Run(context.Background(), "job-1", "original script", "a question")

	status, ok := jobs.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusDone, status.Status)
	assert.Equal(t, "https://cdn.example.com/v/job-1.mp4", status.URL)
	assert.Empty(t, status.Error)

	// Two repairs happened and the script actually changed between attempts
	require.Len(t, renderer.scripts, 3)
	assert.Equal(t, "original script", renderer.scripts[0])
	assert.NotEqual(t, renderer.scripts[0], renderer.scripts[2])
	assert.Contains(t, renderer.scripts[2], "repaired v2")
	assert.Equal(t, 2, gw.callCount())
	assert.Equal(t, 1, uploader.uploads)

	require.Len(t, archive.records, 1)
	record := archive.records[0]
	assert.Equal(t, model.JobStatusDone, record.Status)
	assert.Len(t, record.Attempts, 3)
	assert.True(t, record.Attempts[0].Repaired)
	assert.True(t, record.Attempts[1].Repaired)
	assert.False(t, record.Attempts[2].Repaired)
}

func TestRenderLoopExhaustsAttempts(t *testing.T) {
	jobs := model.NewJobStore()
	gw := &repairGateway{}
	lastDiag := "Last failure: " + strings.Repeat("e", 600)
	renderer := &stubRenderer{outcomes: []error{
		renderError("first failure"),
		renderError("second failure"),
		renderError(lastDiag),
	}}
	uploader := &stubUploader{}

	newLoop(gw, renderer, uploader, jobs, nil, false).Run(context.Background(), "job-2", "script", "q")

	status, ok := jobs.Get("job-2")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusError, status.Status)
	assert.Equal(t, model.TruncateError(lastDiag), status.Error)
	assert.Len(t, status.Error, model.MaxJobErrorLen)
	assert.Equal(t, 0, uploader.uploads)
	// No repair after the final attempt
	assert.Equal(t, 2, gw.callCount())
}

func TestRenderLoopUploadFailureIsTerminalWithoutRepair(t *testing.T) {
	jobs := model.NewJobStore()
	gw := &repairGateway{}
	renderer := &stubRenderer{}
	uploader := &stubUploader{err: errors.New("cloudinary upload failed (status 401): Invalid Signature")}

	newLoop(gw, renderer, uploader, jobs, nil, false).Run(context.Background(), "job-3", "script", "q")

	status, ok := jobs.Get("job-3")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusError, status.Status)
	assert.Contains(t, status.Error, "Invalid Signature")
	// The script was not at fault; no repair call was made
	assert.Equal(t, 0, gw.callCount())
	require.Len(t, renderer.scripts, 1)
}

func TestRenderLoopFailedRepairKeepsScript(t *testing.T) {
	jobs := model.NewJobStore()
	gw := &repairGateway{err: errors.New("gemini status 500: internal")}
	renderer := &stubRenderer{outcomes: []error{
		renderError("fail 1"),
		renderError("fail 2"),
		nil,
	}}
	uploader := &stubUploader{url: "https://cdn.example.com/v/job-4.mp4"}

	newLoop(gw, renderer, uploader, jobs, nil, false).Run(context.Background(), "job-4", "script", "q")

	status, _ := jobs.Get("job-4")
	assert.Equal(t, model.JobStatusDone, status.Status)

	// Every attempt reused the unmodified script
	require.Len(t, renderer.scripts, 3)
	for _, script := range renderer.scripts {
		assert.Equal(t, "script", script)
	}
	assert.Equal(t, 2, gw.callCount())
}

func TestRenderLoopStrictModeTerminatesOnRepairFailure(t *testing.T) {
	jobs := model.NewJobStore()
	gw := &repairGateway{err: errors.New("gemini status 500: internal")}
	renderer := &stubRenderer{outcomes: []error{renderError("fail 1")}}
	uploader := &stubUploader{}

	newLoop(gw, renderer, uploader, jobs, nil, true).Run(context.Background(), "job-5", "script", "q")

	status, _ := jobs.Get("job-5")
	assert.Equal(t, model.JobStatusError, status.Status)
	assert.Contains(t, status.Error, "script repair failed")
	require.Len(t, renderer.scripts, 1)
}

func TestRenderLoopUnclassifiedErrorIsTerminal(t *testing.T) {
	jobs := model.NewJobStore()
	gw := &repairGateway{}
	renderer := &stubRenderer{outcomes: []error{errors.New("create work directory: permission denied")}}

	newLoop(gw, renderer, &stubUploader{}, jobs, nil, false).Run(context.Background(), "job-6", "script", "q")

	status, _ := jobs.Get("job-6")
	assert.Equal(t, model.JobStatusError, status.Status)
	assert.Contains(t, status.Error, "permission denied")
	// Orchestration failures are never fed back for script repair
	assert.Equal(t, 0, gw.callCount())
}

func TestRenderLoopRegistersPendingBeforeFirstAttempt(t *testing.T) {
	jobs := model.NewJobStore()
	var observed string

	renderer := &stubRenderer{}
	probe := &probeRenderer{inner: renderer, jobs: jobs, observed: &observed}

	newLoop(&repairGateway{}, probe, &stubUploader{url: "u"}, jobs, nil, false).Run(context.Background(), "job-7", "script", "q")

	assert.Equal(t, model.JobStatusPending, observed)
}

// probeRenderer records the job status visible at the moment the first
// render attempt starts.
type probeRenderer struct {
	inner    Renderer
	jobs     *model.JobStore
	observed *string
}

func (p *probeRenderer) Render(ctx context.Context, script, jobID string) (string, error) {
	if status, ok := p.jobs.Get(jobID); ok && *p.observed == "" {
		*p.observed = status.Status
	}
	return p.inner.Render(ctx, script, jobID)
}
