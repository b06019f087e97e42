// Package natsbus publishes session outcomes to a NATS subject.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/randomtoy/memory-match/internal/domain"
)

// SubjectFinished receives one message per finished play-through.
const SubjectFinished = "memory.session.finished"

// FinishedEvent is the JSON payload published on SubjectFinished.
type FinishedEvent struct {
	SessionID    string `json:"session_id"`
	Outcome      string `json:"outcome"`
	Elapsed      int    `json:"elapsed"`
	Moves        int    `json:"moves"`
	MatchedPairs int    `json:"matched_pairs"`
	TotalPairs   int    `json:"total_pairs"`
	Score        int    `json:"score"`
	NewBest      bool   `json:"new_best"`
	FinishedAt   string `json:"finished_at"`
}

// Encode renders res as a FinishedEvent payload.
func Encode(res domain.Result) ([]byte, error) {
	return json.Marshal(FinishedEvent{
		SessionID:    res.SessionID,
		Outcome:      string(res.Phase),
		Elapsed:      res.Elapsed,
		Moves:        res.Moves,
		MatchedPairs: res.MatchedPairs,
		TotalPairs:   res.TotalPairs,
		Score:        res.Score,
		NewBest:      res.NewBest,
		FinishedAt:   res.FinishedAt.UTC().Format(time.RFC3339),
	})
}

// Publisher implements ports.EventPublisher over a NATS connection.
type Publisher struct {
	nc *nats.Conn
}

// Connect dials the broker at url.
func Connect(url, name string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(5),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Publisher{nc: nc}, nil
}

func (p *Publisher) PublishFinished(_ context.Context, res domain.Result) error {
	data, err := Encode(res)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.nc.Publish(SubjectFinished, data); err != nil {
		return fmt.Errorf("publish %s: %w", SubjectFinished, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}
