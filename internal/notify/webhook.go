// Package notify posts finished match results to a Discord webhook.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"matchbot/internal/config"
	"matchbot/internal/constants"
	"matchbot/internal/domain"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/valyala/fasthttp"
)

const (
	colorGreen  = 5763719
	colorOrange = 15105570

	maxRetries = 3
)

type Payload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title     string       `json:"title,omitempty"`
	Color     int          `json:"color,omitempty"`
	Fields    []EmbedField `json:"fields,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// RateLimit is the webhook bucket state reported by the last response.
type RateLimit struct {
	Bucket    string    `json:"bucket"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

type ResultsWebhook struct {
	url    string
	client *fasthttp.Client
	logger zerolog.Logger

	rateLimitMu sync.RWMutex
	rateLimit   RateLimit
}

func NewResultsWebhook(cfg *config.Config, logger zerolog.Logger) *ResultsWebhook {
	return &ResultsWebhook{
		url: cfg.ResultsWebhookURL,
		client: &fasthttp.Client{
			ReadTimeout:         constants.WebhookTimeout,
			WriteTimeout:        constants.WebhookTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
		rateLimit: RateLimit{
			Limit:     5,
			Remaining: 5,
		},
	}
}

func (w *ResultsWebhook) RateLimit() RateLimit {
	w.rateLimitMu.RLock()
	defer w.rateLimitMu.RUnlock()
	return w.rateLimit
}

func (w *ResultsWebhook) updateRateLimit(resp *fasthttp.Response) {
	w.rateLimitMu.Lock()
	defer w.rateLimitMu.Unlock()

	if bucket := string(resp.Header.Peek("X-RateLimit-Bucket")); bucket != "" {
		w.rateLimit.Bucket = bucket
	}
	if limit := string(resp.Header.Peek("X-RateLimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			w.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-RateLimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			w.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-RateLimit-Reset-After")); reset != "" {
		if secs, err := strconv.ParseFloat(reset, 64); err == nil {
			w.rateLimit.ResetAt = time.Now().Add(time.Duration(secs * float64(time.Second)))
		}
	}
}

// waitForBucket blocks until the bucket has room again.
func (w *ResultsWebhook) waitForBucket(ctx context.Context) error {
	rl := w.RateLimit()
	if rl.Remaining > 0 {
		return nil
	}
	wait := time.Until(rl.ResetAt)
	if wait <= 0 {
		return nil
	}
	w.logger.Debug().Str("bucket", rl.Bucket).Dur("wait", wait).Msg("webhook bucket exhausted")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// ResultPayload renders the final scoreboard of a match.
func ResultPayload(m *domain.Match, players []domain.Player, stats []domain.MatchPlayerStats) Payload {
	byUser := lo.KeyBy(stats, func(s domain.MatchPlayerStats) string { return s.UserID })

	teamField := func(team domain.Team) EmbedField {
		var lines []string
		for _, p := range players {
			if p.Team != team {
				continue
			}
			line := fmt.Sprintf("<@%s>", p.UserID)
			if s, ok := byUser[p.UserID]; ok {
				line += fmt.Sprintf(" %d/%d/%d", s.Kills, s.Deaths, s.Assists)
				if s.MMRChange != nil {
					line += fmt.Sprintf(" (%+d)", *s.MMRChange)
				}
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			lines = []string{"-"}
		}
		return EmbedField{
			Name:   fmt.Sprintf("Team %s (%s)", team, m.SideOf(team)),
			Value:  strings.Join(lines, "\n"),
			Inline: true,
		}
	}

	title := fmt.Sprintf("Match %s finished", m.MatchID)
	color := colorGreen
	if m.Abandoned {
		title = fmt.Sprintf("Match %s abandoned", m.MatchID)
		color = colorOrange
	}

	return Payload{
		Embeds: []Embed{{
			Title: title,
			Color: color,
			Fields: []EmbedField{
				{Name: "Map", Value: m.Map, Inline: true},
				{Name: "Score", Value: fmt.Sprintf("A %d - %d B", m.AScore, m.BScore), Inline: true},
				teamField(domain.TeamA),
				teamField(domain.TeamB),
			},
			Timestamp: m.UpdatedAt.UTC().Format(time.RFC3339),
		}},
	}
}

// PostResult sends the result embed. It does nothing when no webhook is configured.
func (w *ResultsWebhook) PostResult(ctx context.Context, m *domain.Match, players []domain.Player, stats []domain.MatchPlayerStats) error {
	if w.url == "" {
		return nil
	}
	if err := w.send(ctx, ResultPayload(m, players, stats)); err != nil {
		w.logger.Warn().Err(err).Str("match_id", m.MatchID).Msg("failed to post match result")
		return err
	}
	w.logger.Debug().Str("match_id", m.MatchID).Msg("match result posted")
	return nil
}

func (w *ResultsWebhook) send(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := w.waitForBucket(ctx); err != nil {
			return err
		}
		status, retryAfter, err := w.post(ctx, body)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		switch {
		case status == fasthttp.StatusOK || status == fasthttp.StatusNoContent:
			return nil
		case status == fasthttp.StatusTooManyRequests:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfter):
				continue
			}
		default:
			return fmt.Errorf("webhook request failed with status %d", status)
		}
	}

	return fmt.Errorf("webhook request failed after %d retries", maxRetries)
}

func (w *ResultsWebhook) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(w.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.WebhookTimeout)
	}
	if err := w.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, 0, err
	}
	w.updateRateLimit(resp)

	retryAfter := time.Second
	if v := string(resp.Header.Peek("Retry-After")); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			retryAfter = time.Duration(secs * float64(time.Second))
		}
	}
	return resp.StatusCode(), retryAfter, nil
}
