package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"robotorder/internal/browser"
	"robotorder/internal/components/chrono"
	"robotorder/internal/components/telemetry"
	"robotorder/internal/notify"
	"robotorder/internal/orders"
	"robotorder/internal/pipeline"
	"robotorder/internal/runlog"
	"robotorder/internal/submitter"
	libtelemetry "robotorder/lib/telemetry"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const configEnv = "ROBOTORDER_CONFIG"

// app is the state shared by every command, it is filled in before a command runs.
type app struct {
	configPath string
	cfg        Config
	tel        telemetry.API
	otel       libtelemetry.Telemetry
}

func NewRootCmd() *cobra.Command {
	a := &app{tel: telemetry.SlogAPI{}}

	cmd := &cobra.Command{
		Use:   "robotorder",
		Short: "Orders every robot in the RobotSpareBin order feed and archives the receipts.",
		Long: `robotorder opens the RobotSpareBin Industries site, downloads the order feed and
submits every order through the web form. Each receipt is saved as a pdf with a
screenshot of the ordered robot, and all receipts are bundled into a zip archive.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			_ = godotenv.Load()
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "robotorder.json5", "The config file to read, "+configEnv+" is used if the flag is not given.")

	cmd.AddCommand(newCleanCmd(a))
	cmd.AddCommand(newRunsCmd(a))

	cobra.OnFinalize(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := a.otel.Shutdown(ctx)
		if err != nil {
			slog.Warn("shutdown telemetry", "err", err)
		}
	})

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("config") {
		if path, ok := os.LookupEnv(configEnv); ok {
			a.configPath = path
		}
	}

	cfg, err := ReadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	libtelemetry.InitSlog(cfg.Verbose)
	slog.Debug("config loaded", "path", a.configPath, "output", cfg.OutputDir)

	a.otel, err = libtelemetry.SetupFromEnv(cmd.Context(), "robotorder")
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	if a.otel.MeterProvider != nil {
		libtelemetry.InstrumentPerfStats(cmd.Context())
	}
	return nil
}

func (a *app) openRunLog(ctx context.Context) (runlog.Log, error) {
	database, err := a.cfg.RunLog.OpenDB()
	if err != nil {
		return runlog.Log{}, fmt.Errorf("open run log: %w", err)
	}
	log, err := runlog.New(ctx, database, chrono.NewStandardImpl())
	if err != nil {
		database.Close()
		return runlog.Log{}, err
	}
	return log, nil
}

func (a *app) run(ctx context.Context) error {
	log, err := a.openRunLog(ctx)
	if err != nil {
		return err
	}
	defer log.Close()

	session, err := browser.Launch(a.cfg.BrowserOptions(), a.tel)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer session.Close()

	p := pipeline.New(pipeline.Params{
		SiteUrl:   a.cfg.SiteUrl,
		Paths:     a.cfg.Paths(),
		Session:   session,
		Feed:      orders.NewLoader(a.cfg.FeedUrl, a.cfg.FeedPath, a.tel),
		Submitter: submitter.New(a.cfg.SubmitterOptions(), a.tel),
		Log:       log,
	}, a.tel)

	start := time.Now()
	summary, err := p.Run(ctx)
	if a.cfg.Notify.Enabled() {
		notifyErr := notify.NewMailer(a.cfg.Notify, a.tel).Send(ctx, summary, err)
		if notifyErr != nil {
			slog.Warn("failed to mail run summary", "run_id", summary.RunID, "err", notifyErr)
		}
	}
	if err != nil {
		slog.Error("run aborted", "run_id", summary.RunID, "processed", len(summary.Orders), "err", err)
		return err
	}
	slog.Info(
		"run finished",
		"run_id", summary.RunID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"archive", summary.Archive,
		"seconds", time.Since(start).Seconds(),
	)
	return nil
}
