package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"simkas/internal/model"
	"simkas/internal/pkg"
	"simkas/internal/repository/database"

	"github.com/robfig/cron/v3"
)

// Sink delivers one outbox event somewhere outside the database.
type Sink func(ctx context.Context, ev *model.OutboxEvent) error

// OutboxRelayer drains pending outbox rows into its sinks.
type OutboxRelayer struct {
	repo      *database.OutboxRepository
	sinks     []Sink
	batchSize int
	interval  time.Duration
	log       *log.Logger
}

func NewOutboxRelayer(repo *database.OutboxRepository, batchSize int, interval time.Duration, logger *log.Logger, sinks ...Sink) *OutboxRelayer {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OutboxRelayer{repo: repo, sinks: sinks, batchSize: batchSize, interval: interval, log: logger}
}

// Run blocks until ctx is cancelled.
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce relays one batch and returns how many events were sent.
// An event counts as sent only when every sink accepted it.
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		r.log.Printf("outbox query err: %v", err)
		return 0
	}
	sent := 0
	for i := range rows {
		ev := &rows[i]
		if err := r.deliver(ctx, ev); err != nil {
			r.log.Printf("outbox %d (%s) send err: %v", ev.ID, ev.EventType, err)
			if err := r.repo.MarkFailed(ctx, ev.ID); err != nil {
				r.log.Printf("outbox %d mark failed err: %v", ev.ID, err)
			}
			continue
		}
		if err := r.repo.MarkSent(ctx, ev.ID); err != nil {
			r.log.Printf("outbox %d mark sent err: %v", ev.ID, err)
			continue
		}
		sent++
	}
	return sent
}

func (r *OutboxRelayer) deliver(ctx context.Context, ev *model.OutboxEvent) error {
	var errs []error
	for _, sink := range r.sinks {
		if err := sink(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StartOutboxRetry schedules the job that puts failed events back in the
// queue while they have retries left. The scheduler stops with ctx.
func StartOutboxRetry(ctx context.Context, repo *database.OutboxRepository, schedule string, maxRetries int, logger *log.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = log.Default()
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))))
	_, err := c.AddFunc(schedule, func() {
		n, err := repo.Requeue(ctx, maxRetries)
		if err != nil {
			logger.Printf("outbox requeue err: %v", err)
			return
		}
		if n > 0 {
			logger.Printf("outbox requeued %d failed events", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("outbox retry schedule %q: %w", schedule, err)
	}
	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}

// LogSink only prints the event.
func LogSink(logger *log.Logger) Sink {
	return func(ctx context.Context, ev *model.OutboxEvent) error {
		logger.Printf("relay event id=%d type=%s aggregate=%d payload=%s", ev.ID, ev.EventType, ev.AggregateID, ev.Payload)
		return nil
	}
}

// Publisher is the part of pkg.EventProducer the sink needs.
type Publisher interface {
	Publish(ctx context.Context, m pkg.EventMessage) error
}

func KafkaSink(p Publisher) Sink {
	return func(ctx context.Context, ev *model.OutboxEvent) error {
		return p.Publish(ctx, pkg.EventMessage{
			AggregateID: ev.AggregateID,
			OutboxID:    ev.ID,
			Type:        ev.EventType,
			Payload:     []byte(ev.Payload),
			OccurredAt:  ev.CreatedAt,
		})
	}
}

// DecisionMailer e-mails the submitter when a submission is approved or rejected.
type DecisionMailer struct {
	subs      *database.SubmissionRepository
	users     *database.UserRepository
	campaigns *database.CampaignRepository
	send      func(to, subject, html string) error
}

func NewDecisionMailer(subs *database.SubmissionRepository, users *database.UserRepository, campaigns *database.CampaignRepository, cfg pkg.SMTPConfig) *DecisionMailer {
	return &DecisionMailer{
		subs:      subs,
		users:     users,
		campaigns: campaigns,
		send: func(to, subject, html string) error {
			return pkg.SendEmail(cfg, to, subject, html)
		},
	}
}

func (m *DecisionMailer) Sink(ctx context.Context, ev *model.OutboxEvent) error {
	var approved bool
	switch ev.EventType {
	case model.EventSubmissionApproved:
		approved = true
	case model.EventSubmissionRejected:
	default:
		return nil
	}
	var body struct {
		SubmissionID uint64 `json:"submission_id"`
		Note         string `json:"note"`
	}
	if err := json.Unmarshal([]byte(ev.Payload), &body); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	sub, err := m.subs.FindByID(ctx, body.SubmissionID)
	if err != nil {
		return fmt.Errorf("find submission %d: %w", body.SubmissionID, err)
	}
	user, err := m.users.FindByID(ctx, sub.SubmitterID)
	if err != nil {
		return fmt.Errorf("find submitter %d: %w", sub.SubmitterID, err)
	}
	c, err := m.campaigns.FindByID(ctx, sub.CampaignID)
	if err != nil {
		return fmt.Errorf("find campaign %d: %w", sub.CampaignID, err)
	}
	subject := "Pembayaran ditolak"
	if approved {
		subject = "Pembayaran divalidasi"
	}
	html := pkg.DecisionHTML(user.Name, c.Name, sub.Amount.StringFixed(2), approved, body.Note)
	return m.send(user.Email, subject+" - "+c.Name, html)
}
