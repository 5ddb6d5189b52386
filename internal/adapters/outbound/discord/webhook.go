package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charleschow/footy-advisor/internal/core/notify"
	"github.com/charleschow/footy-advisor/internal/telemetry"
)

// Sink delivers notifications to a Discord webhook as embeds.
type Sink struct {
	webhookURL  string
	minSeverity notify.Severity
	httpClient  *http.Client
}

func NewSink(webhookURL string, minSeverity notify.Severity) *Sink {
	return &Sink{
		webhookURL:  webhookURL,
		minSeverity: minSeverity,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Sink) Name() string                 { return "discord" }
func (s *Sink) MinSeverity() notify.Severity { return s.minSeverity }
func (s *Sink) Enabled() bool                { return s.webhookURL != "" }

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

const (
	ColorGreen  = 0x2ECC71
	ColorRed    = 0xE74C3C
	ColorYellow = 0xF1C40F
	ColorBlue   = 0x3498DB
)

func severityColor(sev notify.Severity) int {
	switch sev {
	case notify.SeverityCritical:
		return ColorRed
	case notify.SeverityWarning:
		return ColorYellow
	default:
		return ColorBlue
	}
}

// Send renders the message as an embed and posts it to the webhook.
func (s *Sink) Send(ctx context.Context, msg notify.Message) error {
	embed := Embed{
		Title:     fmt.Sprintf("Advisory: %s", msg.Kind),
		Color:     severityColor(msg.Severity),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields: []Field{
			{Name: "Fixture", Value: fixtureLabel(msg), Inline: true},
			{Name: "Severity", Value: msg.Severity.String(), Inline: true},
		},
	}
	if msg.Kind == notify.KindPrediction {
		embed.Color = ColorGreen
		if msg.Discriminator != "" {
			embed.Fields = append(embed.Fields, Field{Name: "Selection", Value: msg.Discriminator, Inline: true})
		}
		if c := msg.Criteria; c != nil {
			embed.Fields = append(embed.Fields,
				Field{Name: "EV", Value: fmt.Sprintf("%+.2f", c.ExpectedValue), Inline: true},
				Field{Name: "Confidence", Value: fmt.Sprintf("%.0f%%", c.Confidence*100), Inline: true},
			)
		}
	}
	return s.send(ctx, webhookPayload{Embeds: []Embed{embed}})
}

func fixtureLabel(msg notify.Message) string {
	if msg.HomeTeam != "" && msg.AwayTeam != "" {
		return fmt.Sprintf("%s vs %s", msg.HomeTeam, msg.AwayTeam)
	}
	if msg.FixtureID != "" {
		return msg.FixtureID
	}
	return "unknown"
}

func (s *Sink) send(ctx context.Context, payload webhookPayload) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		telemetry.Warnf("discord: rate limited")
		return fmt.Errorf("discord rate limited")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook: status=%d", resp.StatusCode)
	}

	return nil
}
