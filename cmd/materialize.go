package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Extend the horizon of every active automation once",
	Run:   runMaterialize,
}

func init() {
	rootCmd.AddCommand(materializeCmd)
}

func runMaterialize(_ *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := mustApp(ctx)
	defer app.Close()

	report, err := app.service.ExtendHorizons(ctx)
	if err != nil {
		logrus.WithError(err).Error("[MATERIALIZER] horizon extension failed")
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}
