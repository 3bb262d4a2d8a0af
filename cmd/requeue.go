package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var requeueCmd = &cobra.Command{
	Use:   "requeue",
	Short: "Return claims older than CLAIM_TTL to pending",
	Run:   runRequeue,
}

func init() {
	rootCmd.AddCommand(requeueCmd)
}

func runRequeue(_ *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := mustApp(ctx)
	defer app.Close()

	n, err := app.dispatcher.RequeueStale(ctx)
	if err != nil {
		logrus.WithError(err).Error("[DISPATCHER] requeue failed")
		return
	}
	logrus.Infof("[DISPATCHER] %d stale claims requeued", n)
}
