package eventbrite

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cosmico/webinar/internal/domain"
)

// EventKind selects which side of the organizer's calendar to list.
type EventKind string

const (
	Future EventKind = "future"
	Past   EventKind = "past"
)

// EventID accepts both the string and numeric forms EventBrite uses.
type EventID string

func (id *EventID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = EventID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	*id = EventID(n.String())
	return nil
}

// Event is one entry of the showmore listing. The full object is kept so the
// helpers can print it back unchanged.
type Event struct {
	ID   EventID `json:"id"`
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	URL string `json:"url"`

	raw json.RawMessage
}

func (e *Event) UnmarshalJSON(b []byte) error {
	type plain Event
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = Event(p)
	e.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	if len(e.raw) > 0 {
		return e.raw, nil
	}
	type plain Event
	return json.Marshal(plain(e))
}

type showMoreResponse struct {
	Data struct {
		Events      []Event `json:"events"`
		HasNextPage bool    `json:"has_next_page"`
	} `json:"data"`
}

// Module is one block of an event's structured content.
type Module struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type StructuredContent struct {
	Modules []Module `json:"modules"`
}

type webinarData struct {
	WebinarURL *struct {
		URL *string `json:"url"`
	} `json:"webinar_url"`
}

// WebinarURLs returns the webinar link of every "webinar" module in order.
// A webinar module without a link stops the scan with ErrNoWebinarURL; the
// links found before it are still returned.
func (sc *StructuredContent) WebinarURLs() ([]string, error) {
	var urls []string
	for _, m := range sc.Modules {
		if m.Type != "webinar" {
			continue
		}

		var data webinarData
		if len(bytes.TrimSpace(m.Data)) > 0 {
			if err := json.Unmarshal(m.Data, &data); err != nil {
				return urls, fmt.Errorf("decoding webinar module: %w", err)
			}
		}
		if data.WebinarURL == nil || data.WebinarURL.URL == nil {
			return urls, domain.ErrNoWebinarURL
		}
		urls = append(urls, *data.WebinarURL.URL)
	}
	return urls, nil
}
