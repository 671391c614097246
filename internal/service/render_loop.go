package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dandantas/physicsai/internal/extract"
	"github.com/dandantas/physicsai/internal/llm"
	"github.com/dandantas/physicsai/internal/model"
	"github.com/dandantas/physicsai/internal/prompt"
	"github.com/dandantas/physicsai/internal/render"
)

// Renderer turns an animation script into a local video file
type Renderer interface {
	Render(ctx context.Context, script, jobID string) (string, error)
}

// Uploader turns a local video file into a durable public URL
type Uploader interface {
	Upload(ctx context.Context, filePath, name string) (string, error)
}

// Archiver records terminal render outcomes; may be absent
type Archiver interface {
	Create(ctx context.Context, record *model.RenderRecord) error
}

// RenderLoopOptions configures the retry behavior of the render loop
type RenderLoopOptions struct {
	// MaxAttempts is the total render attempt budget per job
	MaxAttempts int

	// RepairStrict makes a failed repair call terminate the job instead of
	// silently retrying with the unmodified script
	RepairStrict bool

	Temperature     float64
	RepairMaxTokens int
}

// RenderLoop owns the bounded retry state machine that alternates between
// rendering the animation script and asking the LLM to patch it on failure.
// Each loop execution is the sole writer for its job id; jobs move from
// pending to exactly one of done or error, with retries invisible to pollers.
type RenderLoop struct {
	gateway  llm.Gateway
	renderer Renderer
	uploader Uploader
	jobs     *model.JobStore
	archive  Archiver
	opts     RenderLoopOptions
}

// NewRenderLoop creates a render loop. archive may be nil to disable history
// archiving.
func NewRenderLoop(
	gateway llm.Gateway,
	renderer Renderer,
	uploader Uploader,
	jobs *model.JobStore,
	archive Archiver,
	opts RenderLoopOptions,
) *RenderLoop {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	if opts.RepairMaxTokens <= 0 {
		opts.RepairMaxTokens = 4000
	}

	return &RenderLoop{
		gateway:  gateway,
		renderer: renderer,
		uploader: uploader,
		jobs:     jobs,
		archive:  archive,
		opts:     opts,
	}
}

// Run drives one job to a terminal status. It is meant to run detached from
// the request that spawned it and never panics the process; every failure
// path ends in a terminal job status.
func (l *RenderLoop) Run(ctx context.Context, jobID, script, question string) {
	l.jobs.Create(jobID)

	started := time.Now().UTC()
	attempts := make([]model.RenderAttemptRecord, 0, l.opts.MaxAttempts)
	code := script

	slog.Info("Render loop started",
		"job_id", jobID,
		"max_attempts", l.opts.MaxAttempts,
	)

	for attempt := 1; attempt <= l.opts.MaxAttempts; attempt++ {
		attemptStart := time.Now()
		videoPath, err := l.renderer.Render(ctx, code, jobID)
		record := model.RenderAttemptRecord{
			Attempt:    attempt,
			DurationMs: time.Since(attemptStart).Milliseconds(),
		}

		if err == nil {
			url, upErr := l.uploader.Upload(ctx, videoPath, jobID)
			if upErr != nil {
				// The script rendered fine, so a repair retry cannot help;
				// surface the upload failure directly.
				record.Error = model.TruncateError(upErr.Error())
				attempts = append(attempts, record)
				l.finish(jobID, question, started, attempts, model.JobStatusError, "", upErr.Error())
				return
			}

			attempts = append(attempts, record)
			l.finish(jobID, question, started, attempts, model.JobStatusDone, url, "")
			return
		}

		var renderErr *render.Error
		if !errors.As(err, &renderErr) {
			// Not a classified render failure: an orchestration problem,
			// not a fixable animation bug. Terminal immediately.
			record.Error = model.TruncateError(err.Error())
			attempts = append(attempts, record)
			l.finish(jobID, question, started, attempts, model.JobStatusError, "", err.Error())
			return
		}

		diagnostics := renderErr.Diagnostics
		record.Error = model.TruncateError(diagnostics)

		if attempt == l.opts.MaxAttempts {
			attempts = append(attempts, record)
			l.finish(jobID, question, started, attempts, model.JobStatusError, "", diagnostics)
			return
		}

		fixed, repairErr := l.repair(ctx, code, diagnostics)
		if repairErr != nil {
			if l.opts.RepairStrict {
				attempts = append(attempts, record)
				msg := fmt.Sprintf("script repair failed: %v (render failure: %s)", repairErr, diagnostics)
				l.finish(jobID, question, started, attempts, model.JobStatusError, "", msg)
				return
			}

			// Best effort: keep the previous script and spend the attempt
			slog.Warn("Script repair call failed, retrying with unmodified script",
				"job_id", jobID,
				"attempt", attempt,
				"error", repairErr.Error(),
			)
		} else {
			code = fixed
			record.Repaired = true
		}

		attempts = append(attempts, record)
	}
}

// repair asks the gateway for a corrected script given the failing one and
// the render diagnostics
func (l *RenderLoop) repair(ctx context.Context, code, diagnostics string) (string, error) {
	fixed, err := l.gateway.Generate(ctx, llm.Request{
		Prompt:            prompt.BuildManimFixPrompt(code, diagnostics),
		SystemInstruction: prompt.SystemPrompt,
		Temperature:       l.opts.Temperature,
		MaxTokens:         l.opts.RepairMaxTokens,
		JSONMode:          false,
	})
	if err != nil {
		return "", err
	}

	stripped := strings.TrimSpace(extract.StripFences(fixed))
	if stripped == "" {
		return "", fmt.Errorf("repair call returned an empty script")
	}

	return stripped, nil
}

// finish writes the terminal job status and archives the outcome
func (l *RenderLoop) finish(
	jobID, question string,
	started time.Time,
	attempts []model.RenderAttemptRecord,
	status, url, errMsg string,
) {
	switch status {
	case model.JobStatusDone:
		l.jobs.Done(jobID, url)
		slog.Info("Render loop completed",
			"job_id", jobID,
			"attempts", len(attempts),
			"url", url,
		)
	default:
		l.jobs.Fail(jobID, errMsg)
		slog.Warn("Render loop failed",
			"job_id", jobID,
			"attempts", len(attempts),
			"error", model.TruncateError(errMsg),
		)
	}

	if l.archive == nil {
		return
	}

	record := &model.RenderRecord{
		JobID:       jobID,
		Question:    question,
		Status:      status,
		VideoURL:    url,
		Error:       model.TruncateError(errMsg),
		Attempts:    attempts,
		StartedAt:   started,
		CompletedAt: time.Now().UTC(),
	}

	archiveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := l.archive.Create(archiveCtx, record); err != nil {
		slog.Error("Failed to archive render outcome",
			"job_id", jobID,
			"error", err.Error(),
		)
	}
}
