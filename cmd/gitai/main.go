package main

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/JakeFAU/gitai/internal/config"
	"github.com/JakeFAU/gitai/internal/confirm"
	"github.com/JakeFAU/gitai/internal/erruser"
	"github.com/JakeFAU/gitai/internal/gitrepo"
	"github.com/JakeFAU/gitai/internal/openai"
	"github.com/JakeFAU/gitai/internal/pipeline"
	"github.com/JakeFAU/gitai/internal/tokens"
	"github.com/JakeFAU/gitai/internal/version"
)

// errExit is an error that carries an exit code for the CLI. Use errors.As to detect it.
type errExit int

func (e errExit) Error() string {
	return "exit " + strconv.Itoa(int(e))
}

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(args []string) int {
	// A .env in the working directory may carry GITAI_AI__API_KEY; absence
	// is not an error.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "gitai",
		Short:   "Write git commit messages with an AI",
		Version: version.String(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
		},
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Settings file (default ~/.gitai/settings.toml)")
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newModelsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		var exitErr errExit
		if errors.As(err, &exitErr) {
			return int(exitErr)
		}
		fmt.Fprintln(os.Stderr, err)
		if u := errors.Unwrap(err); u != nil {
			fmt.Fprintf(os.Stderr, "Details: %v\n", u)
		}
		return 1
	}
	return 0
}

func setupLogging(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Generate a commit message for the staged changes and commit",
		RunE:  runCommit,
	}
	cmd.Flags().String("repo", "", "Path to the git repository (default: current directory)")
	cmd.Flags().String("model", "", "Completion model to use")
	cmd.Flags().String("ai-api-url", "", "Base URL of the completion service")
	cmd.Flags().String("ai-api-token", "", "API token (overrides config, env, and keyring)")
	cmd.Flags().StringP("programming-language", "l", "", "Main language of the diff, named in the prompt")
	cmd.Flags().IntP("num-tries", "n", 0, "Number of candidate messages to request (1-5)")
	cmd.Flags().Bool("stochastic", false, "Sample a different prompt persona per try")
	cmd.Flags().Bool("auto-ai", false, "Commit the first candidate without asking")
	cmd.Flags().Bool("auto-add", false, "Stage all changes before diffing")
	return cmd
}

// overridesFromFlags returns the flag values the operator actually set;
// unset flags must not mask file or env configuration.
func overridesFromFlags(cmd *cobra.Command) *config.Overrides {
	o := &config.Overrides{}
	changed := false
	if f := cmd.Flags().Lookup("repo"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetString("repo")
		o.RepoPath = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("model"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetString("model")
		o.Model = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("ai-api-url"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetString("ai-api-url")
		o.APIURL = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("ai-api-token"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetString("ai-api-token")
		o.APIKey = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("programming-language"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetString("programming-language")
		o.Language = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("num-tries"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetInt("num-tries")
		o.NumTries = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("stochastic"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool("stochastic")
		o.Stochastic = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("auto-ai"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool("auto-ai")
		o.AutoAI = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("auto-add"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool("auto-add")
		o.AutoAdd = &v
		changed = true
	}
	if !changed {
		return nil
	}
	return o
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path, overridesFromFlags(cmd))
}

func runCommit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.AI.APIKey == "" {
		fmt.Fprintln(os.Stderr, "No API key found. Set GITAI_AI__API_KEY, api_key in settings, or the system keyring.")
		return errExit(1)
	}

	repo, err := gitrepo.Open(cfg.Git.LocalPath, gitrepo.Options{
		UserName:       cfg.Git.UserName,
		UserEmail:      cfg.Git.UserEmail,
		SignCommits:    cfg.Git.SignCommits,
		SigningKeyPath: cfg.Git.SigningKeyPath,
	})
	if err != nil {
		return err
	}
	if cfg.Git.AutoAdd {
		if err := repo.StageAll(); err != nil {
			return err
		}
	}

	client := openai.NewClient(cfg.AI.APIURL, cfg.AI.APIKey, &http.Client{Timeout: cfg.TimeoutDuration()})
	opts := pipeline.Options{
		Client:     client,
		Diffs:      repo,
		Committer:  repo,
		Gate:       confirm.Gate{In: os.Stdin, Out: os.Stdout, AutoAccept: cfg.AI.AutoAI},
		Model:      cfg.AI.Model,
		Language:   cfg.AI.Language,
		NumTries:   cfg.AI.NumTries,
		Stochastic: cfg.AI.Stochastic,
		Budget:     tokens.Budget{Divisor: cfg.AI.BudgetDivisor, Ceiling: cfg.AI.MaxTokens},
		Sampling: pipeline.Sampling{
			Temperature:      cfg.AI.Temperature,
			TopP:             cfg.AI.TopP,
			Stop:             cfg.AI.Stop,
			PresencePenalty:  cfg.AI.PresencePenalty,
			FrequencyPenalty: cfg.AI.FrequencyPenalty,
			BestOf:           cfg.AI.BestOf,
		},
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		Out:  os.Stdout,
	}

	out, err := opts.Run(cmd.Context())
	if err != nil {
		if errors.Is(err, gitrepo.ErrNothingStaged) {
			fmt.Fprintln(os.Stderr, "Nothing staged. Stage your changes or pass --auto-add.")
			return errExit(1)
		}
		if errors.Is(err, gitrepo.ErrNoHead) {
			fmt.Fprintln(os.Stderr, "Repository has no commits yet; make the first commit by hand.")
			return errExit(1)
		}
		var statusErr *openai.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			fmt.Fprintln(os.Stderr, "The completion service rejected the API key.")
			fmt.Fprintf(os.Stderr, "Details: %v\n", err)
			return errExit(2)
		}
		return err
	}
	if out.State == pipeline.Committed {
		fmt.Fprintf(os.Stdout, "Committed %s\n", out.CommitID)
	}
	return nil
}

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models the completion service offers (connectivity check)",
		RunE:  runModels,
	}
	cmd.Flags().String("ai-api-url", "", "Base URL of the completion service")
	cmd.Flags().String("ai-api-token", "", "API token (overrides config, env, and keyring)")
	return cmd
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client := openai.NewClient(cfg.AI.APIURL, cfg.AI.APIKey, &http.Client{Timeout: cfg.TimeoutDuration()})
	models, err := client.Models(cmd.Context())
	if err != nil {
		var transportErr *openai.TransportError
		if errors.As(err, &transportErr) {
			fmt.Fprintf(os.Stderr, "Completion service unreachable at %s.\n", cfg.AI.APIURL)
			fmt.Fprintf(os.Stderr, "Details: %v\n", err)
			return errExit(2)
		}
		return err
	}
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(os.Stdout, name)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write an annotated settings file to ~/.gitai/settings.toml",
		RunE:  runConfigInit,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE:  runConfigShow,
	})
	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return erruser.New("Could not determine the settings path.", errors.New("home directory unknown"))
	}
	if err := config.Init(path); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	key := "(unset)"
	if cfg.AI.APIKey != "" {
		key = "(set)"
	}
	fmt.Fprintf(os.Stdout, "ai.api_url: %s\n", cfg.AI.APIURL)
	fmt.Fprintf(os.Stdout, "ai.api_key: %s\n", key)
	fmt.Fprintf(os.Stdout, "ai.model: %s\n", cfg.AI.Model)
	fmt.Fprintf(os.Stdout, "ai.max_tokens: %d\n", cfg.AI.MaxTokens)
	fmt.Fprintf(os.Stdout, "ai.budget_divisor: %d\n", cfg.AI.BudgetDivisor)
	fmt.Fprintf(os.Stdout, "ai.temperature: %g\n", cfg.AI.Temperature)
	fmt.Fprintf(os.Stdout, "ai.top_p: %g\n", cfg.AI.TopP)
	fmt.Fprintf(os.Stdout, "ai.num_tries: %d\n", cfg.AI.NumTries)
	fmt.Fprintf(os.Stdout, "ai.stochastic: %t\n", cfg.AI.Stochastic)
	fmt.Fprintf(os.Stdout, "ai.auto_ai: %t\n", cfg.AI.AutoAI)
	fmt.Fprintf(os.Stdout, "ai.language: %s\n", cfg.AI.Language)
	fmt.Fprintf(os.Stdout, "ai.timeout: %s\n", cfg.AI.Timeout)
	fmt.Fprintf(os.Stdout, "git.local_path: %s\n", cfg.Git.LocalPath)
	fmt.Fprintf(os.Stdout, "git.auto_add: %t\n", cfg.Git.AutoAdd)
	fmt.Fprintf(os.Stdout, "git.sign_commits: %t\n", cfg.Git.SignCommits)
	return nil
}
