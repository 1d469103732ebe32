package discovery

import (
	"context"
	"fmt"

	"github.com/cosmico/webinar/internal/domain"
	"github.com/cosmico/webinar/internal/eventbrite"
	"github.com/cosmico/webinar/internal/infra/logger"
	"github.com/cosmico/webinar/internal/streamyard"
	"golang.org/x/sync/errgroup"
)

type ContentSource interface {
	GetStructuredContent(ctx context.Context, eventID string) (*eventbrite.StructuredContent, error)
}

type WebinarSource interface {
	GetWebinarInfo(ctx context.Context, webinarURL string) (*streamyard.WebinarInfo, error)
	Register(ctx context.Context, webinarURL string, info *streamyard.WebinarInfo, who streamyard.Registrant) (map[string]any, error)
}

// Resolver turns events into download jobs. Per-item failures are logged and
// skipped; only context cancellation is returned.
type Resolver struct {
	content     ContentSource
	webinars    WebinarSource
	registrant  streamyard.Registrant
	concurrency int
	log         *logger.Logger

	// OnAdvance, when set, is called once per event or URL handled
	OnAdvance func()
}

func NewResolver(content ContentSource, webinars WebinarSource, who streamyard.Registrant, concurrency int, log *logger.Logger) *Resolver {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Resolver{
		content:     content,
		webinars:    webinars,
		registrant:  who,
		concurrency: concurrency,
		log:         log,
	}
}

// WebinarURLs collects the webinar links of every event, in event order.
func (r *Resolver) WebinarURLs(ctx context.Context, events []eventbrite.Event) ([]string, error) {
	found := make([][]string, len(events))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, ev := range events {
		g.Go(func() error {
			defer r.advance()
			if gctx.Err() != nil {
				return gctx.Err()
			}

			id := string(ev.ID)
			r.log.Debug("Fetching event %s - %s", id, ev.Name.Text)

			sc, err := r.content.GetStructuredContent(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r.log.Error("Error while fetching event %s: %v", id, err)
				return nil
			}

			urls, err := sc.WebinarURLs()
			if err != nil {
				r.log.Error("Error while fetching event %s: %v", id, err)
			}
			found[i] = urls
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var urls []string
	for _, u := range found {
		urls = append(urls, u...)
	}
	return urls, nil
}

// ResolveJobs looks up each webinar, registering first when the webinar asks
// for it, and keeps the ones with a live VOD. Output follows input order.
func (r *Resolver) ResolveJobs(ctx context.Context, urls []string) ([]domain.DownloadJob, error) {
	jobs := make([]*domain.DownloadJob, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			defer r.advance()
			if gctx.Err() != nil {
				return gctx.Err()
			}

			job, err := r.resolve(gctx, u)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r.log.Error("Error: %v for %s", err, u)
				return nil
			}
			jobs[i] = &job
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.DownloadJob, 0, len(jobs))
	for _, j := range jobs {
		if j != nil {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *Resolver) resolve(ctx context.Context, webinarURL string) (domain.DownloadJob, error) {
	info, err := r.webinars.GetWebinarInfo(ctx, webinarURL)
	if err != nil {
		return domain.DownloadJob{}, err
	}

	if info.IsRegistrationEnabled {
		r.log.Debug("Registering for %s", webinarURL)
		if _, err := r.webinars.Register(ctx, webinarURL, info, r.registrant); err != nil {
			return domain.DownloadJob{}, fmt.Errorf("registration failed: %w", err)
		}

		info, err = r.webinars.GetWebinarInfo(ctx, webinarURL)
		if err != nil {
			return domain.DownloadJob{}, err
		}
	}

	if info.VODURL == nil {
		return domain.DownloadJob{}, domain.ErrVODNotFound
	}
	if info.IsVodMediaDeleted {
		return domain.DownloadJob{}, domain.ErrVODMediaDeleted
	}

	return domain.NewDownloadJob(info.Title, *info.VODURL, info.VODPosterURL), nil
}

func (r *Resolver) advance() {
	if r.OnAdvance != nil {
		r.OnAdvance()
	}
}
