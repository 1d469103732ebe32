package eventbrite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cosmico/webinar/internal/infra/httpclient"
)

type Client struct {
	BaseURL   string
	userAgent string
	http      *http.Client
}

func New(baseURL, userAgent string, client *http.Client) *Client {
	return &Client{BaseURL: baseURL, userAgent: userAgent, http: client}
}

// GetShowMore fetches one page of the organizer's events.
func (c *Client) GetShowMore(ctx context.Context, orgID string, page, pageSize int, kind EventKind) ([]Event, bool, error) {
	q := url.Values{}
	q.Set("page_size", strconv.Itoa(pageSize))
	q.Set("type", string(kind))
	q.Set("page", strconv.Itoa(page))
	u := fmt.Sprintf("%s/org/%s/showmore/?%s", c.BaseURL, url.PathEscape(orgID), q.Encode())

	var out showMoreResponse
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, false, err
	}
	return out.Data.Events, out.Data.HasNextPage, nil
}

// GetEvents walks every page of one kind.
func (c *Client) GetEvents(ctx context.Context, orgID string, kind EventKind, pageSize int) ([]Event, error) {
	var events []Event
	for page, more := 1, true; more; page++ {
		batch, next, err := c.GetShowMore(ctx, orgID, page, pageSize, kind)
		if err != nil {
			return nil, fmt.Errorf("listing %s events, page %d: %w", kind, page, err)
		}
		events = append(events, batch...)
		more = next
	}
	return events, nil
}

// GetAllEvents returns the future events followed by the past ones.
func (c *Client) GetAllEvents(ctx context.Context, orgID string, pageSize int) ([]Event, error) {
	future, err := c.GetEvents(ctx, orgID, Future, pageSize)
	if err != nil {
		return nil, err
	}
	past, err := c.GetEvents(ctx, orgID, Past, pageSize)
	if err != nil {
		return nil, err
	}
	return append(future, past...), nil
}

func (c *Client) GetStructuredContent(ctx context.Context, eventID string) (*StructuredContent, error) {
	u := fmt.Sprintf("%s/api/v3/events/%s/structured_content/?purpose=digital_content", c.BaseURL, url.PathEscape(eventID))

	var sc StructuredContent
	if err := c.getJSON(ctx, u, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := httpclient.CheckStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", u, err)
	}
	return nil
}
