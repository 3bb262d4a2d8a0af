package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the periodic dispatch, horizon and requeue jobs",
	Run:   runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := mustApp(ctx)
	defer app.Close()

	scheduler, err := newScheduler(ctx, app)
	if err != nil {
		logrus.Fatalf("[CRON] %v", err)
	}

	// catch up right away instead of waiting for the first tick
	runRequeueJob(ctx, app)
	runHorizonJob(ctx, app)

	scheduler.Start()
	logrus.Infof("[CRON] worker %s started", app.runnerID)

	<-ctx.Done()
	logrus.Info("[CRON] termination signal received, waiting for running jobs...")
	<-scheduler.Stop().Done()
}
