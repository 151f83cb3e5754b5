// Package llamacpp provides an adapter for a locally spawned llama.cpp
// runner process. The assembled prompt is written to a uniquely named temp
// file, the runner is invoked with parameter flags and an output file path,
// and both files are deleted on every exit path so repeated failures never
// leak disk space.
package llamacpp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
)

// Adapter implements the domain.Adapter interface for the local runner.
type Adapter struct {
	cfg    domain.ProviderConfig
	table  *ProcessTable
	tmpDir string
}

// NewAdapter creates a new llama.cpp adapter from the backend's configuration.
// Spawned processes are registered in the shared table for shutdown handling.
func NewAdapter(cfg domain.ProviderConfig, table *ProcessTable) *Adapter {
	return &Adapter{
		cfg:    cfg,
		table:  table,
		tmpDir: os.TempDir(),
	}
}

// Backend returns the backend identifier this adapter serves.
func (a *Adapter) Backend() domain.Backend {
	return domain.BackendLlamaCpp
}

// Complete runs the local model runner to completion and returns the
// normalized response. The runner reports no token accounting, so usage is
// zero-filled.
func (a *Adapter) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	prompt, err := req.Transcript()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	promptPath := filepath.Join(a.tmpDir, "hearth-"+id+".prompt")
	outputPath := filepath.Join(a.tmpDir, "hearth-"+id+".out")

	// Unconditional cleanup: success, non-zero exit, and spawn failure.
	defer func() {
		_ = os.Remove(promptPath)
		_ = os.Remove(outputPath)
	}()

	if err := os.WriteFile(promptPath, []byte(prompt), 0o600); err != nil {
		return nil, &domain.ProcessError{Backend: domain.BackendLlamaCpp, Err: fmt.Errorf("write prompt file: %w", err)}
	}

	logger := observability.FromContext(ctx)
	logger.Debug("spawning local runner",
		observability.String("bin", a.cfg.Command),
		observability.String("model", a.cfg.Model),
	)

	cmd := exec.CommandContext(ctx, a.cfg.Command, a.buildArgs(req, promptPath, outputPath)...)
	if err := cmd.Start(); err != nil {
		return nil, &domain.ProcessError{Backend: domain.BackendLlamaCpp, Err: fmt.Errorf("spawn runner: %w", err)}
	}

	a.table.Track(id, cmd.Process)
	defer a.table.Release(id)

	if err := cmd.Wait(); err != nil {
		logger.Error("local runner failed", observability.Error(err))
		return nil, &domain.ProcessError{Backend: domain.BackendLlamaCpp, Err: err}
	}

	raw, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, &domain.ProcessError{Backend: domain.BackendLlamaCpp, Err: fmt.Errorf("read output file: %w", err)}
	}

	return &domain.CompletionResponse{
		Text:         strings.TrimSpace(string(raw)),
		Provider:     domain.BackendLlamaCpp,
		Model:        a.cfg.Model,
		Usage:        domain.Usage{},
		FinishReason: domain.FinishReasonStop,
	}, nil
}

func (a *Adapter) buildArgs(req *domain.CompletionRequest, promptPath, outputPath string) []string {
	maxTokens := a.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	temperature := a.cfg.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	args := []string{
		"-m", a.cfg.Model,
		"-f", promptPath,
		"-o", outputPath,
		"-n", strconv.Itoa(maxTokens),
		"--temp", strconv.FormatFloat(temperature, 'f', -1, 64),
	}

	if req.TopP > 0 {
		args = append(args, "--top-p", strconv.FormatFloat(req.TopP, 'f', -1, 64))
	}
	for _, stop := range req.Stop {
		args = append(args, "-r", stop)
	}

	return args
}
