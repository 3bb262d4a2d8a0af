package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/application"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Exit codes of the dispatch command, for external schedulers.
const (
	exitProcessed = 0
	exitFailure   = 1
	exitNothing   = 3
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run a single dispatch cycle and exit",
	Long: `Runs one dispatch cycle and prints the result as JSON.
Exit status: 0 when posts were processed, 3 when nothing was due, 1 on error.`,
	Run: runDispatch,
}

func init() {
	rootCmd.AddCommand(dispatchCmd)
}

func runDispatch(_ *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := mustApp(ctx)

	code := dispatchOnce(ctx, app)

	app.Close()
	stop()
	os.Exit(code)
}

func dispatchOnce(ctx context.Context, app *appContainer) int {
	result, err := app.dispatcher.RunOnce(ctx)
	if err != nil {
		logrus.WithError(err).Error("[DISPATCHER] cycle failed")
		return exitFailure
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)

	if result.Outcome == application.CycleIdle {
		return exitNothing
	}
	return exitProcessed
}
