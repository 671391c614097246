package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// SceneName is the scene class every generated animation script must define
const SceneName = "PhysicsScene"

// stderrTailLen bounds the diagnostic text kept from the tool's stderr. The
// tail is kept because build and runtime errors surface at the end of output.
const stderrTailLen = 2000

// Error is a classified rendering failure: the tool exited nonzero, timed
// out, was not installed, or produced no output file. Only these failures are
// worth feeding back to the LLM for a script repair; anything else is an
// orchestration bug, not a fixable animation bug.
type Error struct {
	Stage       string
	Diagnostics string
}

func (e *Error) Error() string {
	if e.Diagnostics == "" {
		return fmt.Sprintf("render failed (%s)", e.Stage)
	}
	return fmt.Sprintf("render failed (%s): %s", e.Stage, e.Diagnostics)
}

// ManimRunner renders animation scripts through the manim CLI, one isolated
// work directory per job.
type ManimRunner struct {
	binary   string
	workRoot string
	timeout  time.Duration
}

// NewManimRunner creates a manim runner. An empty workRoot falls back to a
// directory under the system temp dir.
func NewManimRunner(workRoot string, timeout time.Duration) *ManimRunner {
	if workRoot == "" {
		workRoot = filepath.Join(os.TempDir(), "physicsai")
	}
	return &ManimRunner{
		binary:   "manim",
		workRoot: workRoot,
		timeout:  timeout,
	}
}

// WorkRoot returns the directory under which per-job work directories live
func (r *ManimRunner) WorkRoot() string {
	return r.workRoot
}

// Render writes the script into a per-job work directory, invokes manim under
// a hard deadline and returns the path of the produced video file. Tool
// failures come back as *Error carrying the stderr tail.
func (r *ManimRunner) Render(ctx context.Context, script, jobID string) (string, error) {
	workDir := filepath.Join(r.workRoot, "job_"+jobID)
	mediaDir := filepath.Join(workDir, "media")
	scriptPath := filepath.Join(workDir, "scene.py")

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("write animation script: %w", err)
	}

	slog.Info("Starting manim render",
		"job_id", jobID,
		"work_dir", workDir,
		"script_bytes", len(script),
	)

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.binary,
		"-ql",
		"--media_dir", mediaDir,
		"--disable_caching",
		scriptPath,
		SceneName,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return "", &Error{
			Stage:       "timeout",
			Diagnostics: fmt.Sprintf("rendering timed out after %s", r.timeout),
		}
	}

	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", &Error{
				Stage:       "spawn",
				Diagnostics: "manim command not found; is Manim installed?",
			}
		}

		diagnostics := Tail(stderr.String(), stderrTailLen)
		if diagnostics == "" {
			diagnostics = err.Error()
		}

		slog.Warn("Manim render failed",
			"job_id", jobID,
			"error", err.Error(),
		)

		return "", &Error{Stage: "render", Diagnostics: diagnostics}
	}

	videoPath, found := findVideo(mediaDir)
	if !found {
		return "", &Error{
			Stage:       "output",
			Diagnostics: fmt.Sprintf("render succeeded but no MP4 was produced under %s", mediaDir),
		}
	}

	slog.Info("Manim render completed",
		"job_id", jobID,
		"video_path", videoPath,
	)

	return videoPath, nil
}

// findVideo walks the media directory for the first rendered MP4
func findVideo(mediaDir string) (string, bool) {
	var videoPath string

	filepath.WalkDir(mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".mp4") {
			videoPath = path
			return filepath.SkipAll
		}
		return nil
	})

	return videoPath, videoPath != ""
}

// Tail returns the last max characters of s, cut on a rune boundary so
// multibyte runes in formatted tool output are never split.
func Tail(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[len(runes)-max:])
}
