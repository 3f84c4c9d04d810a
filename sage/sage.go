// Package sage runs the Sage lattice-estimator as an lwe.Estimator.
//
// Each estimate starts one interpreter process (by default "sage -python"),
// hands it the parameter set as JSON on stdin and reads the attack table back
// from stdout. The estimator package must be importable by that interpreter,
// either installed or located under Config.Path.
//
// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause
package sage

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/op/go-logging"

	"github.com/luxfi/lwe"
)

var log = logging.MustGetLogger("lwe/sage")

//go:embed estimate.py
var script string

// DefaultCommand is the interpreter used when Config.Command is empty.
var DefaultCommand = []string{"sage", "-python"}

// Config holds estimator process settings.
type Config struct {
	// Command is the interpreter and its leading arguments; "-c <script>"
	// is appended.
	Command []string
	// Path is prepended to sys.path, typically a lattice-estimator checkout.
	Path string
	// Env is added to the process environment.
	Env []string
	// Progress, if set, receives the estimator's own output as it runs.
	Progress io.Writer
}

// Estimator implements lwe.Estimator on top of the Sage lattice-estimator.
type Estimator struct {
	cfg Config
}

var _ lwe.Estimator = (*Estimator)(nil)

// New creates an estimator.
func New(cfg Config) *Estimator {
	if len(cfg.Command) == 0 {
		cfg.Command = DefaultCommand
	}
	return &Estimator{cfg: cfg}
}

type request struct {
	Params lwe.Parameters `json:"params"`
	Mode   lwe.Mode       `json:"mode"`
	Path   string         `json:"path,omitempty"`
}

type response struct {
	Attacks []lwe.AttackCost `json:"attacks"`
}

// Estimate runs one estimator process for params. The process is killed if
// ctx is cancelled; there is no other time limit.
func (e *Estimator) Estimate(ctx context.Context, params lwe.Parameters, mode lwe.Mode) (*lwe.Estimate, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	req, err := json.Marshal(request{Params: params, Mode: mode, Path: e.cfg.Path})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	args := append(append([]string(nil), e.cfg.Command[1:]...), "-c", script)
	cmd := exec.CommandContext(ctx, e.cfg.Command[0], args...)
	cmd.Stdin = bytes.NewReader(req)
	cmd.Env = append(os.Environ(), e.cfg.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if e.cfg.Progress != nil {
		cmd.Stderr = io.MultiWriter(&stderr, e.cfg.Progress)
	}

	log.Debugf("running %s for %s (%s)", strings.Join(e.cfg.Command, " "), params, mode)
	start := time.Now()

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("estimate %s: %w", params, ctxErr)
		}
		if stderr.Len() > 0 {
			log.Debugf("estimator stderr:\n%s", stderr.String())
		}
		return nil, failure(params, mode, err, stderr.Bytes())
	}

	log.Debugf("estimator finished in %s", time.Since(start).Round(time.Millisecond))

	var resp response
	if err := json.Unmarshal(lastLine(stdout.Bytes()), &resp); err != nil {
		return nil, failure(params, mode, fmt.Errorf("decode output: %w", err), stderr.Bytes())
	}

	est, err := lwe.NewEstimate(mode, resp.Attacks)
	if err != nil {
		return nil, fmt.Errorf("estimate %s (%s): %w", params, mode, err)
	}
	return est, nil
}

func failure(params lwe.Parameters, mode lwe.Mode, err error, stderr []byte) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		err = fmt.Errorf("exit status %d", exitErr.ExitCode())
	}
	if msg := lastLine(stderr); len(msg) > 0 {
		return fmt.Errorf("estimate %s (%s): %w: %v: %s", params, mode, lwe.ErrEstimator, err, msg)
	}
	return fmt.Errorf("estimate %s (%s): %w: %v", params, mode, lwe.ErrEstimator, err)
}

// lastLine returns the last non-blank line of b.
func lastLine(b []byte) []byte {
	b = bytes.TrimRight(b, " \t\r\n")
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		b = b[i+1:]
	}
	return bytes.TrimSpace(b)
}
