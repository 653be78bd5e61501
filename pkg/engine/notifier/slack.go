// Package notifier posts burst alerts to Slack.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DrSkyle/aquagrid/pkg/network"
)

// BurstAlert is the content of one escalated failure.
type BurstAlert struct {
	RunID           string
	Segment         network.Segment
	DryNodes        []string
	Impact          network.Impact
	Recommendations []network.Recommendation
	Rules           []string
	At              time.Time
}

// SlackClient handles Slack notifications.
type SlackClient struct {
	WebhookURL string
	Channel    string // Optional: Override default channel
	HTTPClient *http.Client
}

// NewSlackClient initializes the Slack integration.
func NewSlackClient(webhookURL, channel string, timeout time.Duration) *SlackClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SlackClient{
		WebhookURL: webhookURL,
		Channel:    channel,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a webhook is configured.
func (s *SlackClient) Enabled() bool {
	return s != nil && s.WebhookURL != ""
}

// SendBurstAlert posts the alert. It is a no-op without a webhook.
func (s *SlackClient) SendBurstAlert(ctx context.Context, alert BurstAlert) error {
	if !s.Enabled() {
		return nil
	}
	return s.send(ctx, s.constructPayload(alert))
}

// constructPayload builds the message blocks.
func (s *SlackClient) constructPayload(a BurstAlert) map[string]any {
	statusIcon := "🟢"
	if a.Impact.EstimatedPopulation > 0 {
		statusIcon = "🔴"
	} else if a.Impact.AffectedNodes > 0 {
		statusIcon = "🟡"
	}

	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{
				"type": "plain_text",
				"text": fmt.Sprintf("%s Pipe Burst: %s", statusIcon, a.Segment.ID),
			},
		},
		{
			"type": "context",
			"elements": []map[string]any{
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Time:* %s | *Run:* %s | *Rules:* %s", a.At.UTC().Format(time.RFC3339), a.RunID, strings.Join(a.Rules, ", ")),
				},
			},
		},
		{
			"type": "divider",
		},
		{
			"type": "section",
			"fields": []map[string]any{
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Segment:*\n%s %dmm %s (%d)", a.Segment.Class, a.Segment.Diameter, a.Segment.Material, a.Segment.InstalledYear),
				},
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Nodes Without Water:*\n%d", a.Impact.AffectedNodes),
				},
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Estimated Population:*\n%d", a.Impact.EstimatedPopulation),
				},
			},
		},
	}

	var steps []string
	for _, r := range a.Recommendations {
		steps = append(steps, fmt.Sprintf("• *%s* (%s): %s", r.Title, r.Severity, r.Action))
	}
	if len(steps) > 0 {
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": strings.Join(steps, "\n"),
			},
		})
	}

	payload := map[string]any{
		"text":   fmt.Sprintf("Pipe burst on %s: %d nodes dry", a.Segment.ID, a.Impact.AffectedNodes),
		"blocks": blocks,
	}

	if s.Channel != "" {
		payload["channel"] = s.Channel
	}

	return payload
}

func (s *SlackClient) send(ctx context.Context, payload map[string]any) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		// The webhook URL is a credential; keep it out of the error.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-200 status from slack: %d", resp.StatusCode)
	}

	return nil
}
