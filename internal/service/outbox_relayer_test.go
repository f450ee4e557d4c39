package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"simkas/internal/model"
	"simkas/internal/pkg"

	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
	fail bool
}

func (p *fakePublisher) Publish(_ context.Context, m pkg.EventMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	if !json.Valid(m.Payload) || m.Type == "" || m.OutboxID == 0 {
		return errors.New("bad message")
	}
	p.keys = append(p.keys, pkg.FormatID(m.AggregateID))
	return nil
}

func statuses(t *testing.T, f *fixture) map[int]int64 {
	t.Helper()
	var rows []model.OutboxEvent
	require.NoError(t, f.db.Find(&rows).Error)
	out := map[int]int64{}
	for _, r := range rows {
		out[r.Status]++
	}
	return out
}

func TestRelayerMarksSentAndFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.classCampaign(t, "Kas Oktober")
	sub := f.submit(t, f.member, c.ID, "10000")
	f.submit(t, f.member2, c.ID, "10000")

	pub := &fakePublisher{fail: true}
	relayer := NewOutboxRelayer(f.outbox, 10, 0, f.submissionSvc.log, KafkaSink(pub))

	require.Equal(t, 0, relayer.DrainOnce(ctx))
	require.Equal(t, map[int]int64{model.OutboxFailed: 2}, statuses(t, f))

	n, err := f.outbox.Requeue(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	pub.fail = false
	require.Equal(t, 2, relayer.DrainOnce(ctx))
	require.Equal(t, map[int]int64{model.OutboxSent: 2}, statuses(t, f))
	require.Contains(t, pub.keys, "1")
	require.Equal(t, 0, relayer.DrainOnce(ctx))

	_, err = f.validationSvc.Approve(ctx, f.treasurer, sub.ID)
	require.NoError(t, err)
	require.Equal(t, 1, relayer.DrainOnce(ctx))
}

func TestRequeueStopsAtMaxRetries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.classCampaign(t, "Kas Oktober")
	f.submit(t, f.member, c.ID, "10000")

	relayer := NewOutboxRelayer(f.outbox, 10, 0, f.submissionSvc.log, KafkaSink(&fakePublisher{fail: true}))
	for i := 0; i < 2; i++ {
		relayer.DrainOnce(ctx)
		_, err := f.outbox.Requeue(ctx, 2)
		require.NoError(t, err)
	}
	n, err := f.outbox.Requeue(ctx, 2)
	require.NoError(t, err)
	require.Zero(t, n)

	var ev model.OutboxEvent
	require.NoError(t, f.db.First(&ev).Error)
	require.Equal(t, model.OutboxFailed, ev.Status)
	require.Equal(t, 2, ev.RetryCount)
}

func TestDecisionMailerSendsOnlyDecisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.classCampaign(t, "Kas Oktober")
	sub := f.submit(t, f.member, c.ID, "10000")
	_, err := f.validationSvc.Reject(ctx, f.treasurer, sub.ID, "nominal kurang")
	require.NoError(t, err)

	type mail struct{ to, subject, body string }
	var sent []mail
	mailer := &DecisionMailer{
		subs:      f.subs,
		users:     f.users,
		campaigns: f.campaigns,
		send: func(to, subject, html string) error {
			sent = append(sent, mail{to, subject, html})
			return nil
		},
	}
	relayer := NewOutboxRelayer(f.outbox, 10, 0, f.submissionSvc.log, mailer.Sink)
	require.Equal(t, 2, relayer.DrainOnce(ctx))

	require.Len(t, sent, 1)
	submitter, err := f.users.FindByID(ctx, f.member.ID)
	require.NoError(t, err)
	require.Equal(t, submitter.Email, sent[0].to)
	require.Contains(t, sent[0].subject, "ditolak")
	require.True(t, strings.Contains(sent[0].body, "nominal kurang"))
}
