// cmd/okta-export/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"oktaexport/internal/action"
	"oktaexport/internal/runner"
	"oktaexport/pkg/config"
	"oktaexport/pkg/errs"
	"oktaexport/pkg/httpx"
	"oktaexport/pkg/logger"
)

func main() {
	cfg, cfgErr := config.Load()
	env := "dev"
	if cfgErr == nil {
		env = cfg.Env
	}
	log, runID := logger.New(env)
	if cfgErr != nil {
		log.Fatalw("configuration", "err", cfgErr)
	}

	raw, err := loadInput()
	if err != nil {
		log.Fatalw("input", "err", err)
	}
	desc, err := action.Parse(raw)
	if err != nil {
		log.Fatalw("export failed", "stage", "validate", "err", err)
	}
	log.Infow("starting export", "action", desc.Action, "run", runID)

	ctx := context.Background()
	httpc := httpx.New(cfg.HTTPTimeout)
	defer httpx.Shutdown(ctx)

	r := &runner.Runner{Cfg: cfg, Log: log, HTTP: httpc}
	if err := r.Run(ctx, desc); err != nil {
		httpx.Shutdown(ctx)
		log.Fatalw("export failed", "stage", stage(err), "err", err)
	}
	log.Infow("export complete", "archive", cfg.ArchivePath)
}

// loadInput reads the action descriptor from INPUT_JSON, falling back
// to an input.json file next to the binary.
func loadInput() ([]byte, error) {
	if v := os.Getenv("INPUT_JSON"); v != "" {
		return []byte(v), nil
	}
	if b, err := os.ReadFile("input.json"); err == nil {
		return b, nil
	}
	return nil, fmt.Errorf("no action descriptor: set INPUT_JSON or provide input.json")
}

// stage names the pipeline step a failure belongs to, for the final
// diagnostic line.
func stage(err error) string {
	var (
		ia  *errs.InvalidActionError
		ae  *errs.AuthenticationError
		nf  *errs.NotFoundError
		api *errs.APIError
		ioe *errs.IOError
	)
	switch {
	case errors.As(err, &ia):
		return "validate"
	case errors.As(err, &ae):
		return "authenticate " + ae.System
	case errors.As(err, &nf):
		if nf.Kind == "issue" {
			return "upload"
		}
		return "fetch"
	case errors.As(err, &api):
		if api.System == "jira" {
			return "upload"
		}
		return "fetch"
	case errors.As(err, &ioe):
		return ioe.Op
	}
	return "run"
}
