package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cosmico/webinar/internal/api"
	"github.com/cosmico/webinar/internal/app"
	"github.com/cosmico/webinar/internal/discovery"
	"github.com/cosmico/webinar/internal/engine"
	"github.com/cosmico/webinar/internal/eventbrite"
	"github.com/cosmico/webinar/internal/infra/httpclient"
	"github.com/cosmico/webinar/internal/progress"
	"github.com/cosmico/webinar/internal/store"
	"github.com/cosmico/webinar/internal/streamyard"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var downloadBindings = map[string]string{
	"download.out_dir":        "output",
	"download.workers":        "threads",
	"eventbrite.page_size":    "pagesize",
	"eventbrite.org_id":       "org-id",
	"registration.email":      "email",
	"registration.first_name": "first-name",
	"registration.last_name":  "last-name",
	"status.addr":             "status-addr",
}

var steps = []string{
	"Retrieving list of files...",
	"Getting valid StreamYard URLs...",
	"Getting valid VOD URLs...",
	"Downloading VODs...",
}

func newDownloadCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download all webinars from EventBrite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(cmd, opts, downloadBindings)
			if err != nil {
				return err
			}
			if err := a.Config.RequireRegistration(); err != nil {
				return err
			}
			return runDownload(ctx, a, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("output", "output", "output directory")
	f.Int("threads", 2, "number of download workers")
	f.Int("pagesize", 20, "number of events to fetch per page")
	f.String("org-id", "", "EventBrite organizer id")
	f.String("email", "", "email to use for registration")
	f.String("first-name", "", "first name to use for registration")
	f.String("last-name", "", "last name to use for registration")
	f.String("status-addr", "", "serve the status API and /metrics on this address (e.g. 127.0.0.1:8090)")

	return cmd
}

func runDownload(ctx context.Context, a *app.Context, out io.Writer) error {
	cfg := a.Config
	log := a.Logger

	reporters := progress.Multi{
		a.Board,
		progress.NewMetrics(a.Registry),
		progress.NewTerminal(out),
	}

	if cfg.Store.Enabled {
		s, err := store.Open(cfg.Store)
		if err != nil {
			return fmt.Errorf("history store: %w", err)
		}
		defer s.Close()
		a.History = s
		reporters = append(reporters, store.NewRecorder(s, log))
	}

	if cfg.Status.Addr != "" {
		srv := api.NewServer(cfg.Status.Addr, a)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("status API: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Warn("Status API shutdown: %v", err)
			}
		}()
	}

	ebClient, err := httpclient.NewAPI(cfg.HTTP)
	if err != nil {
		return err
	}
	syClient, err := httpclient.NewAPI(cfg.HTTP)
	if err != nil {
		return err
	}
	mediaClient, err := httpclient.NewMedia(cfg.HTTP)
	if err != nil {
		return err
	}

	eb := eventbrite.New(cfg.EventBrite.BaseURL, app.UserAgent(), ebClient)
	sy := streamyard.New(cfg.StreamYard, syClient)
	resolver := discovery.NewResolver(eb, sy, streamyard.Registrant{
		Email:     cfg.Registration.Email,
		FirstName: cfg.Registration.FirstName,
		LastName:  cfg.Registration.LastName,
	}, cfg.Download.Workers, log)

	// Step 1
	announce(log.Info, 0)
	events, err := eb.GetAllEvents(ctx, cfg.EventBrite.OrgID, cfg.EventBrite.PageSize)
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}
	log.Info("Found %d events.", len(events))

	// Step 2
	announce(log.Info, 1)
	bar := stepBar(out, len(events), steps[1])
	resolver.OnAdvance = func() { _ = bar.Add(1) }
	urls, err := resolver.WebinarURLs(ctx, events)
	_ = bar.Finish()
	if err != nil {
		return interrupted(err)
	}
	log.Info("Found %d urls.", len(urls))

	// Step 3
	announce(log.Info, 2)
	bar = stepBar(out, len(urls), steps[2])
	resolver.OnAdvance = func() { _ = bar.Add(1) }
	jobs, err := resolver.ResolveJobs(ctx, urls)
	_ = bar.Finish()
	if err != nil {
		return interrupted(err)
	}
	log.Info("Found %d VODs.", len(jobs))

	// Step 4
	announce(log.Info, 3)
	pipeline := engine.NewPipeline(cfg.Download, mediaClient, reporters, log)
	sum, err := pipeline.Run(ctx, jobs)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d downloaded, %d skipped, %d failed, %d cancelled (%s written)\n",
		sum.Succeeded, sum.Skipped, sum.Failed, sum.Cancelled, humanize.IBytes(uint64(sum.BytesWritten)))
	if n := sum.Remaining(); n > 0 {
		log.Warn("%d jobs were never processed", n)
	}
	if a.History != nil {
		log.Info("Run %s recorded; see `%s history %s`", sum.RunID, app.Name, sum.RunID)
	}

	return nil
}

func announce(logf func(string, ...interface{}), step int) {
	logf("%s (%d/%d)", steps[step], step+1, len(steps))
}

func stepBar(out io.Writer, total int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}

func interrupted(err error) error {
	if errors.Is(err, context.Canceled) {
		return errors.New("interrupted")
	}
	return err
}
