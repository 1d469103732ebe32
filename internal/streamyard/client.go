package streamyard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cosmico/webinar/internal/domain"
	"github.com/cosmico/webinar/internal/infra/config"
	"github.com/cosmico/webinar/internal/infra/httpclient"
)

const tokenCookie = "jwtOnAir"

type Client struct {
	BaseURL  string
	APIURL   string
	TimeZone string
	http     *http.Client
}

// New expects a client with a cookie jar; the session token lives there.
func New(cfg config.StreamYardConfig, client *http.Client) *Client {
	return &Client{
		BaseURL:  cfg.BaseURL,
		APIURL:   cfg.APIURL,
		TimeZone: cfg.TimeZone,
		http:     client,
	}
}

// WebinarID is the last path segment of a webinar URL.
func WebinarID(webinarURL string) string {
	return webinarURL[strings.LastIndex(webinarURL, "/")+1:]
}

// GetWebinarInfo loads the public record of a webinar. The first call of a
// session visits the webinar page to pick up the token cookie.
func (c *Client) GetWebinarInfo(ctx context.Context, webinarURL string) (*WebinarInfo, error) {
	if !c.hasToken(webinarURL) {
		resp, err := c.do(ctx, http.MethodGet, webinarURL, nil)
		if err != nil {
			return nil, fmt.Errorf("fetching webinar page: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	u := fmt.Sprintf("%s/api/public/webinars/%s", c.APIURL, url.PathEscape(WebinarID(webinarURL)))
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info WebinarInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding webinar info: %w", err)
	}
	return &info, nil
}

// Register fills the required fields of the webinar's first registration
// form by type and submits it. The decoded response is returned as is.
func (c *Client) Register(ctx context.Context, webinarURL string, info *WebinarInfo, who Registrant) (map[string]any, error) {
	if len(info.RegistrationFieldDefinitions) == 0 {
		return nil, domain.ErrNoRegistrationFields
	}
	def := info.RegistrationFieldDefinitions[0]

	values := make(map[string]string)
	for _, f := range def.Fields.Data {
		if !f.IsRequired {
			continue
		}
		switch f.Type {
		case "email":
			values[f.ID] = who.Email
		case "firstName":
			values[f.ID] = who.FirstName
		case "lastName":
			values[f.ID] = who.LastName
		}
	}

	body, err := json.Marshal(registrationRequest{
		Email:     who.Email,
		FirstName: who.FirstName,
		LastName:  who.LastName,
		Fields: registrationFields{
			DefinitionID: def.ID,
			Values:       values,
		},
		TimeZone: c.TimeZone,
	})
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/api/public/webinars/%s/registrations", c.APIURL, url.PathEscape(WebinarID(webinarURL)))
	resp, err := c.do(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}
	defer resp.Body.Close()

	out := make(map[string]any)
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding registration: %w", err)
	}
	return out, nil
}

func (c *Client) hasToken(webinarURL string) bool {
	if c.http.Jar == nil {
		return false
	}
	for _, raw := range []string{webinarURL, c.APIURL} {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		for _, ck := range c.http.Jar.Cookies(u) {
			if ck.Name == tokenCookie {
				return true
			}
		}
	}
	return false
}

// do sends a request with the browser headers and fails on non-2xx.
func (c *Client) do(ctx context.Context, method, u string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", config.BrowserUserAgent)
	req.Header.Set("Referer", c.BaseURL+"/")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Csrf-Protection", "true")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if err := httpclient.CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}
