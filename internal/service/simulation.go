package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dandantas/physicsai/internal/extract"
	"github.com/dandantas/physicsai/internal/llm"
	"github.com/dandantas/physicsai/internal/model"
	"github.com/dandantas/physicsai/internal/prompt"
)

// SimulationOptions configures generation calls
type SimulationOptions struct {
	Temperature float64
	MaxTokens   int
}

// SimulationService turns a natural-language physics question into a
// structured result and a render job, and repairs visualization scripts on
// client-reported errors.
type SimulationService struct {
	gateway llm.Gateway
	jobs    *model.JobStore
	loop    *RenderLoop
	opts    SimulationOptions
}

// NewSimulationService creates the generation orchestrator
func NewSimulationService(gateway llm.Gateway, jobs *model.JobStore, loop *RenderLoop, opts SimulationOptions) *SimulationService {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 8000
	}

	return &SimulationService{
		gateway: gateway,
		jobs:    jobs,
		loop:    loop,
		opts:    opts,
	}
}

// Simulate runs one question through the gateway, validates the structured
// result, registers a pending render job and spawns the render loop. The
// caller gets the full result plus the job id without waiting for rendering.
func (s *SimulationService) Simulate(ctx context.Context, question string) (*model.SimulationResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &ValidationError{Message: "question cannot be empty"}
	}

	slog.Info("Starting simulation", "question", question)

	raw, err := s.gateway.Generate(ctx, llm.Request{
		Prompt:            prompt.BuildUserPrompt(question),
		SystemInstruction: prompt.SystemPrompt,
		Temperature:       s.opts.Temperature,
		MaxTokens:         s.opts.MaxTokens,
		JSONMode:          true,
	})
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	rawJSON, err := extract.JSON(raw)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	missing, err := extract.MissingFields(rawJSON, model.RequiredResultFields)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	var result model.SimulationResult
	if err := json.Unmarshal(rawJSON, &result); err != nil {
		return nil, &ParseError{Err: err}
	}

	jobID := uuid.New().String()
	s.jobs.Create(jobID)

	// Detached: the loop owns the job from here, the client polls for it
	go s.loop.Run(context.Background(), jobID, result.ManimCode, question)

	slog.Info("Simulation generated, render job scheduled",
		"job_id", jobID,
		"problem_type", result.ProblemType,
	)

	return &model.SimulationResponse{SimulationResult: result, JobID: jobID}, nil
}

// FixScript makes a single free-text repair call for a script that threw at
// runtime in the browser. No job is created; the cleaned script is returned
// directly.
func (s *SimulationService) FixScript(ctx context.Context, req model.FixRequest) (string, error) {
	var fixPrompt string
	if strings.EqualFold(req.CodeType, "manim") {
		fixPrompt = prompt.BuildManimFixPrompt(req.Code, req.Error)
	} else {
		fixPrompt = prompt.BuildP5JSFixPrompt(req.Code, req.Error)
	}

	fixed, err := s.gateway.Generate(ctx, llm.Request{
		Prompt:            fixPrompt,
		SystemInstruction: prompt.SystemPrompt,
		Temperature:       s.opts.Temperature,
		MaxTokens:         4000,
		JSONMode:          false,
	})
	if err != nil {
		return "", &UpstreamError{Err: err}
	}

	return strings.TrimSpace(extract.StripFences(fixed)), nil
}

// JobStatus reads the current status of a render job
func (s *SimulationService) JobStatus(jobID string) (model.JobStatus, bool) {
	return s.jobs.Get(jobID)
}
