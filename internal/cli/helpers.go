package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cosmico/webinar/internal/app"
	"github.com/cosmico/webinar/internal/discovery"
	"github.com/cosmico/webinar/internal/eventbrite"
	"github.com/cosmico/webinar/internal/infra/httpclient"
	"github.com/cosmico/webinar/internal/streamyard"
	"github.com/spf13/cobra"
)

func newHelpersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "helpers",
		Short: "Helper commands",
	}
	cmd.AddCommand(newGetEventsCmd(opts), newGetStreamYardLinksCmd(opts))
	return cmd
}

func newGetEventsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-events ORG_ID",
		Short: "Print every event of an organizer as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, map[string]string{"eventbrite.page_size": "pagesize"})
			if err != nil {
				return err
			}
			eb, err := newEventBrite(a)
			if err != nil {
				return err
			}

			events, err := eb.GetAllEvents(cmd.Context(), args[0], a.Config.EventBrite.PageSize)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), events)
		},
	}
	cmd.Flags().Int("pagesize", 20, "number of events to fetch per page")
	return cmd
}

func newGetStreamYardLinksCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get-streamyard-links EVENTS_FILE",
		Short: "Print the StreamYard links found in a get-events dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, nil)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var events []eventbrite.Event
			if err := json.Unmarshal(raw, &events); err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			eb, err := newEventBrite(a)
			if err != nil {
				return err
			}
			resolver := discovery.NewResolver(eb, nil, streamyard.Registrant{}, a.Config.Download.Workers, a.Logger)

			urls, err := resolver.WebinarURLs(cmd.Context(), events)
			if err != nil {
				return err
			}
			if urls == nil {
				urls = []string{}
			}
			return printJSON(cmd.OutOrStdout(), urls)
		},
	}
}

func newEventBrite(a *app.Context) (*eventbrite.Client, error) {
	client, err := httpclient.NewAPI(a.Config.HTTP)
	if err != nil {
		return nil, err
	}
	return eventbrite.New(a.Config.EventBrite.BaseURL, app.UserAgent(), client), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
