package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/agentdeckhq/agentdeck/pkg/presenter"
	"github.com/agentdeckhq/agentdeck/pkg/project"
	"github.com/agentdeckhq/agentdeck/pkg/ranker"
	"github.com/agentdeckhq/agentdeck/pkg/suggest"
	"github.com/agentdeckhq/agentdeck/pkg/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a project and refresh suggestions when it changes",
	Long: `Watch scans the project immediately, prints the top suggestions, and
then re-scans whenever a profile-relevant file (manifests, Dockerfile,
CI workflows) changes. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		debounce, _ := cmd.Flags().GetDuration("debounce")
		top, _ := cmd.Flags().GetInt("top")

		if err := runWatch(cmd.Context(), dir, debounce, top); err != nil {
			presenter.Error(err, "Watch failed")
			os.Exit(1)
		}
	},
}

func init() {
	watchCmd.Flags().Duration("debounce", watcher.DefaultDebounce, "Quiet period after the last change before re-scanning")
	watchCmd.Flags().IntP("top", "n", suggest.DefaultLimit, "Number of suggestions to show per refresh")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, dir string, debounce time.Duration, top int) error {
	cat, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	scanner, err := project.NewScanner()
	if err != nil {
		return err
	}

	onProfile := func(ctx context.Context, profile *project.Profile) {
		presenter.Separator()
		presenter.Section("Suggestions refreshed at " + time.Now().Format("15:04:05"))
		results := suggest.Filter(ranker.Rank(cat.Items(), profile), suggest.Request{Limit: top})
		printSuggestions(results, profile)
	}

	w := watcher.New(scanner, dir, onProfile, watcher.WithDebounce(debounce))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
