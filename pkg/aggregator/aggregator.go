package aggregator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storagefacts/pkg/config"
	"storagefacts/pkg/facts"
	"storagefacts/pkg/playbook"
	"storagefacts/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEngineFailed  = errors.New("playbook execution failed")
	ErrOutputMissing = errors.New("output file not found")
	ErrOutputInvalid = errors.New("output file is not valid JSON")
)

// Result describes a successful aggregation run.
type Result struct {
	RunID      string
	Mode       config.Mode
	OutputFile string
	Categories int
	Size       int64
	Duration   time.Duration
	// Validation is the structural report of the written document.
	Validation *facts.ValidationReport
}

// Aggregator drives one fact gathering run through the automation engine.
type Aggregator struct {
	cfg     *config.Config
	runner  Runner
	logger  *zap.Logger
	modules []playbook.Module
	workDir string
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithModules replaces the default module table.
func WithModules(modules []playbook.Module) Option {
	return func(a *Aggregator) { a.modules = modules }
}

// WithWorkDir sets where temporary playbooks are written. Relative
// vars_files entries are resolved by the engine against this directory.
func WithWorkDir(dir string) Option {
	return func(a *Aggregator) { a.workDir = dir }
}

func New(cfg *config.Config, runner Runner, logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		cfg:     cfg,
		runner:  runner,
		logger:  logger,
		modules: playbook.Modules,
		workDir: ".",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Playbook renders the playbook used in generate mode.
func (a *Aggregator) Playbook() ([]byte, error) {
	varsFile, err := a.varsFile()
	if err != nil {
		return nil, err
	}
	return playbook.Generate(playbook.Options{
		VarsFile:   varsFile,
		OutputFile: a.cfg.OutputFile,
		Modules:    a.modules,
	})
}

// varsFile returns the vars_files entry for the playbook. The engine resolves
// relative entries against the playbook's directory, so a relative path is
// made absolute against the cwd when the playbook lives elsewhere.
func (a *Aggregator) varsFile() (string, error) {
	path := a.cfg.VarsFile
	if path == "" {
		path = playbook.DefaultVarsFile
	}
	if filepath.IsAbs(path) || filepath.Clean(a.workDir) == "." {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve vars file %s: %w", path, err)
	}
	return abs, nil
}

// Args builds the engine arguments for the given playbook path.
func (a *Aggregator) Args(playbookPath string) []string {
	args := []string{playbookPath}
	if a.cfg.Mode == config.ModeRole {
		args = append(args, "-e", playbook.RoleOutputVar+"="+a.cfg.OutputFile)
	}
	if a.cfg.VaultPasswordFile != "" {
		args = append(args, "--vault-password-file", a.cfg.VaultPasswordFile)
	}
	return args
}

// Run executes the configured mode and verifies the output document.
func (a *Aggregator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := a.logger.With(
		zap.String("run_id", runID),
		zap.String("mode", string(a.cfg.Mode)),
		zap.String("output_file", a.cfg.OutputFile))

	var err error
	if a.cfg.Mode == config.ModeRole {
		err = a.runRole(ctx, logger)
	} else {
		err = a.runGenerated(ctx, logger)
	}
	if err != nil {
		return nil, err
	}

	doc, err := a.verifyOutput()
	if err != nil {
		logger.Error("Output verification failed", zap.Error(err))
		return nil, err
	}

	result := &Result{
		RunID:      runID,
		Mode:       a.cfg.Mode,
		OutputFile: a.cfg.OutputFile,
		Categories: len(doc.Categories),
		Size:       doc.Size,
		Duration:   time.Since(start),
		Validation: doc.Validate(),
	}

	logger.Info("Facts gathered",
		zap.Int("categories", result.Categories),
		zap.String("size", utils.FormatDataSize(result.Size)),
		zap.Int("warnings", len(result.Validation.Warnings)),
		zap.Duration("duration", result.Duration))
	for _, w := range result.Validation.Warnings {
		logger.Debug("Structural warning", zap.String("warning", w))
	}

	return result, nil
}

func (a *Aggregator) runGenerated(ctx context.Context, logger *zap.Logger) error {
	a.checkVars(logger)

	content, err := a.Playbook()
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(a.workDir, "gather_facts_*.yml")
	if err != nil {
		return fmt.Errorf("failed to create playbook: %w", err)
	}
	playbookPath := f.Name()
	if !a.cfg.KeepPlaybook {
		defer func() {
			if err := os.Remove(playbookPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.Warn("Failed to remove playbook", zap.String("playbook", playbookPath), zap.Error(err))
			}
		}()
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("failed to write playbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write playbook: %w", err)
	}

	logger.Info("Generated playbook",
		zap.String("playbook", playbookPath),
		zap.Int("modules", len(a.modules)),
		zap.Bool("keep", a.cfg.KeepPlaybook))

	return a.execute(ctx, logger, playbookPath)
}

func (a *Aggregator) runRole(ctx context.Context, logger *zap.Logger) error {
	return a.execute(ctx, logger, a.cfg.RolePlaybook)
}

func (a *Aggregator) execute(ctx context.Context, logger *zap.Logger, playbookPath string) error {
	args := a.Args(playbookPath)
	logger.Info("Running playbook",
		zap.String("command", a.cfg.AnsiblePlaybook+" "+strings.Join(args, " ")))

	if err := a.runner.Run(ctx, a.cfg.AnsiblePlaybook, args...); err != nil {
		code := exitCode(err)
		logger.Error("Playbook execution failed", zap.Int("exit_code", code), zap.Error(err))
		if code >= 0 {
			return fmt.Errorf("%w with return code: %d", ErrEngineFailed, code)
		}
		return fmt.Errorf("%w: %v", ErrEngineFailed, err)
	}
	return nil
}

// checkVars logs problems with the vars file. The engine is the authority on
// the file, so nothing here stops the run.
func (a *Aggregator) checkVars(logger *zap.Logger) {
	info, err := config.InspectVars(a.cfg.VarsFile)
	if err != nil {
		logger.Warn("Could not inspect vars file", zap.String("vars_file", a.cfg.VarsFile), zap.Error(err))
		return
	}

	switch info.State {
	case config.VarsMissing:
		logger.Warn("Vars file not found", zap.String("vars_file", info.Path))
	case config.VarsEncrypted:
		if a.cfg.VaultPasswordFile == "" {
			logger.Debug("Vars file is vault encrypted and no password file was given; the engine will prompt",
				zap.String("vars_file", info.Path))
		}
	case config.VarsPlaintext:
		if len(info.MissingKeys) > 0 {
			logger.Warn("Vars file lacks connection variables",
				zap.String("vars_file", info.Path),
				zap.Strings("missing", info.MissingKeys))
		}
	}
}

func (a *Aggregator) verifyOutput() (*facts.Document, error) {
	doc, err := facts.Load(a.cfg.OutputFile)
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, facts.ErrFileNotFound):
		return nil, fmt.Errorf("%w: %s", ErrOutputMissing, a.cfg.OutputFile)
	case errors.Is(err, facts.ErrInvalidJSON):
		return nil, fmt.Errorf("%w: %s", ErrOutputInvalid, a.cfg.OutputFile)
	default:
		return nil, err
	}
}
