package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	coreconfig "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/core/config"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/ui/rest"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the automation API over http",
	Long:  `Serves the REST API. With SCHEDULER_ENABLED=true the dispatch, horizon and requeue jobs run in the same process.`,
	Run:   restServer,
}

func init() {
	restCmd.Flags().String("basic-auth", "", "Basic auth for API (format: user:pass,user2:pass2)")
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) {
	cfg := coreconfig.Global

	// Override basic auth if flag is provided
	if baFlag, _ := cmd.Flags().GetString("basic-auth"); baFlag != "" {
		cfg.App.BasicAuth = strings.Split(baFlag, ",")
	}

	if len(cfg.App.BasicAuth) == 0 {
		logrus.Fatalln("APP_BASIC_AUTH is required. Nothing should be public; please set APP_BASIC_AUTH=<user>:<secret>[,<user2>:<secret2>] and restart.")
	}
	account := make(map[string]string)
	for _, basicAuth := range cfg.App.BasicAuth {
		ba := strings.SplitN(basicAuth, ":", 2)
		if len(ba) != 2 || ba[0] == "" {
			logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
		}
		account[ba[0]] = ba[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := mustApp(ctx)
	defer app.Close()

	server := rest.NewApp(rest.Options{
		AppName:        "Poster Automation Engine",
		Version:        cfg.App.Version,
		BasePath:       cfg.App.BasePath,
		Debug:          cfg.App.Debug,
		TrustedProxies: cfg.App.TrustedProxies,
		Users:          account,
		RateLimit:      1000,
		Automations:    app.service,
		Dispatcher:     app.dispatcher,
		HealthChecks:   app.healthChecks(),
	})

	var scheduler *cron.Cron
	if cfg.Scheduler.Enabled {
		s, err := newScheduler(ctx, app)
		if err != nil {
			logrus.Fatalf("[CRON] %v", err)
		}
		scheduler = s
		scheduler.Start()
	}

	// Graceful shutdown handler
	go func() {
		<-ctx.Done()
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		if err := server.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
	}()

	logrus.Infof("[REST] listening on :%s", cfg.App.Port)
	if err := server.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}
