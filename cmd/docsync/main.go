// docsync pulls documentation content from external repositories into the
// local documentation tree and verifies the site setup before deployment.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsync/internal/config"
	"git.home.luguber.info/inful/docsync/internal/git"
	"git.home.luguber.info/inful/docsync/internal/logfields"
	"git.home.luguber.info/inful/docsync/internal/sync"
	"git.home.luguber.info/inful/docsync/internal/verify"
	"git.home.luguber.info/inful/docsync/internal/workspace"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.json"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Pull struct {
		DocsDir string `short:"d" help:"Destination documentation directory (overrides config)"`
	} `cmd:"" help:"Pull content from the configured external repositories"`

	Verify struct {
		BaseDir string `short:"b" help:"Repository base directory" default:"."`
	} `cmd:"" help:"Verify the documentation setup is ready for deployment"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "pull":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", logfields.Error(err))
			os.Exit(1)
		}
		if CLI.Pull.DocsDir != "" {
			cfg.DocsDir = CLI.Pull.DocsDir
		}
		if err := runPull(cfg); err != nil {
			slog.Error("Pull failed", logfields.Error(err))
			os.Exit(1)
		}
	case "verify":
		if err := runVerify(CLI.Verify.BaseDir); err != nil {
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", logfields.Error(err))
			os.Exit(1)
		}
		slog.Info("Configuration file created", logfields.Path(CLI.Config))
	}
}

// runPull drives one synchronization run: fetch every in-scope repository,
// synchronize its content, and report a summary. A zero-copy run is a warning,
// not a failure; only configuration and unrecoverable clone errors exit
// non-zero.
func runPull(cfg *config.Config) error {
	runID := uuid.NewString()
	trigger := config.TriggerFromEnv()

	slog.Info("Starting content pull",
		logfields.RunID(runID),
		slog.Int("repositories", len(cfg.Repositories)),
		slog.String("trigger", trigger.Repository))

	wsManager := workspace.NewManager(cfg.TempDir)
	if err := wsManager.Create(); err != nil {
		return err
	}
	defer func() {
		if err := wsManager.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup workspace", logfields.Error(err))
		}
	}()

	gitClient := git.NewClient(wsManager.GetPath())
	syncer := sync.NewSyncer(cfg.DocsDir, cfg.ExcludePatterns)

	totalCopied := 0
	for _, repo := range cfg.Repositories {
		if !trigger.Selects(repo.Name, cfg.Repositories) {
			slog.Info("Skipping repository (not named by trigger)", logfields.Repository(repo.Name), logfields.RunID(runID))
			continue
		}

		// Revision scope only applies to the repository that caused the run.
		commitSHA := ""
		var changed []string
		if trigger.Names(repo.Name) {
			commitSHA = trigger.CommitSHA
			changed = trigger.ChangedFiles
		}

		slog.Info("Processing repository", logfields.Repository(repo.Name), logfields.URL(repo.URL), logfields.RunID(runID))
		repoPath, err := gitClient.Fetch(repo, commitSHA)
		if err != nil {
			var authErr *git.AuthError
			if errors.As(err, &authErr) {
				fmt.Fprintln(os.Stderr, authErr.Hint())
			}
			return fmt.Errorf("fetch %s: %w", repo.Name, err)
		}

		var copied int
		if commitSHA != "" && len(changed) > 0 {
			copied, err = syncer.SyncChanged(repoPath, repo, changed)
		} else {
			copied, err = syncer.Sync(repoPath, repo)
		}
		if err != nil {
			return fmt.Errorf("sync %s: %w", repo.Name, err)
		}
		totalCopied += copied
		slog.Info("Repository synchronized", logfields.Repository(repo.Name), logfields.Count(copied))
	}

	stats := syncer.Stats()
	slog.Info("Pull completed",
		logfields.RunID(runID),
		slog.Int("copied", stats.Copied),
		slog.Int("rendered", stats.Rendered),
		slog.Int("skipped", stats.Skipped),
		slog.Int("failed", stats.Failed))

	if totalCopied == 0 {
		slog.Warn("No files were copied, check your configuration", logfields.RunID(runID))
	}
	return nil
}

// runVerify executes the setup checklist and prints a human-readable report.
// It returns an error iff any check failed so the process exits 1.
func runVerify(baseDir string) error {
	summary := verify.NewVerifier(baseDir).Run()

	for _, r := range summary.Results {
		status := "OK"
		if !r.Passed {
			status = "FAIL"
		}
		if r.Detail != "" {
			fmt.Printf("[%s] %s: %s\n", status, r.Name, r.Detail)
		} else {
			fmt.Printf("[%s] %s\n", status, r.Name)
		}
	}
	fmt.Printf("Passed: %d/%d checks\n", summary.Passed(), summary.Total())

	if !summary.AllPassed() {
		return fmt.Errorf("%d check(s) failed", summary.Total()-summary.Passed())
	}
	return nil
}
