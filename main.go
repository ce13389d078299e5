// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	siteDir string
	verbose bool
	dryRun  bool
	cfg     *Config
)

var rootCmd = &cobra.Command{
	Use:   "blogbot",
	Short: "Generate a blog post with an AI model and publish it to the static site",
	Long: `blogbot runs once per scheduled trigger. It asks the configured model for a
post, renders it into the reference article template, writes blog/<slug>.html,
prepends a card to blogs.json and appends the URL to sitemap.xml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and publish one article",
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, closeGen, err := NewGenerator(cmd.Context(), cfg.Generation)
		if err != nil {
			return err
		}
		defer closeGen()

		res, err := NewPipeline(cfg, gen).Run(cmd.Context(), dryRun)
		if err != nil {
			return err
		}
		if res.DryRun {
			fmt.Fprint(cmd.OutOrStdout(), res.Article.HTML)
		}
		return nil
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the composed prompt without calling the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		instructions, err := LoadInstructions(cfg.SitePath(cfg.PromptFile))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ComposePrompt(instructions, defaultDirectives).String())
		return nil
	},
}

var checkTemplateCmd = &cobra.Command{
	Use:   "check-template",
	Short: "Verify the reference template can be split at its markers",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.SitePath(cfg.TemplateFile)
		tpl, err := LoadTemplate(path, cfg.Markers)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: header %d bytes, footer %d bytes\n", path, len(tpl.Header), len(tpl.Footer))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./blogbot.yaml)")
	rootCmd.PersistentFlags().StringVar(&siteDir, "site-dir", "", "site root containing blog/, blogs.json and sitemap.xml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "render and print the article without writing any file")

	rootCmd.AddCommand(generateCmd, promptCmd, checkTemplateCmd)
}

func initConfig() error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	loaded, err := LoadConfig(cfgFile)
	if err != nil {
		return &PreconditionError{Message: "loading config", Err: err}
	}
	if siteDir != "" {
		loaded.SiteDir = siteDir
	}
	cfg = loaded
	return nil
}

func reportError(err error) {
	slog.Error("run failed", "stage", StageOf(err), "error", err)

	var pe *ParseError
	if errors.As(err, &pe) {
		fmt.Fprintf(os.Stderr, "raw model response:\n%s\n", pe.Raw)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}
