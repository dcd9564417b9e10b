package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/config"
	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
)

type recordingRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (r *recordingRepo) FetchUnpublishedForPublish(*gorm.DB, int, int) ([]models.OutboxEvent, error) {
	return r.events, nil
}

func (r *recordingRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	r.published = append(r.published, id)
	return nil
}

func (r *recordingRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	r.failed = append(r.failed, id)
	return nil
}

func (r *recordingRepo) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, _ int) error {
	r.terminal = append(r.terminal, id)
	return nil
}

type passthroughDB struct{}

func (passthroughDB) Ping(context.Context) error { return nil }

func (passthroughDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type noopPubSub struct{}

func (noopPubSub) Ping(context.Context) error { return nil }

func (noopPubSub) DomainPublisher() *gcppubsub.Publisher { return nil }

// capturePublisher records every message and answers with the scripted
// results in order.
type capturePublisher struct {
	results  []publishResult
	messages []*gcppubsub.Message
}

func (p *capturePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	if len(p.results) == 0 {
		return nil
	}
	next := p.results[0]
	p.results = p.results[1:]
	return next
}

type scriptedResult struct {
	err error
}

func (r scriptedResult) Get(context.Context) (string, error) {
	return "", r.err
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher, outboxCfg *config.OutboxConfig) *Service {
	t.Helper()
	cfg := &config.Config{
		Outbox: config.OutboxConfig{BatchSize: 2, PollIntervalMS: 100, MaxAttempts: 5},
	}
	if outboxCfg != nil {
		cfg.Outbox = *outboxCfg
	}
	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "outbox-publisher-test", Output: io.Discard}),
		DB:         passthroughDB{},
		PubSub:     noopPubSub{},
		Repository: repo,
		Publisher:  pub,
	})
	require.NoError(t, err)
	return service
}

func envelopePayload(tb testing.TB, eventID string) json.RawMessage {
	tb.Helper()
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	})
	require.NoError(tb, err)
	return payload
}

func orderEvent(tb testing.TB, eventID string) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrderItem,
		AggregateID:   uuid.New(),
		Payload:       envelopePayload(tb, eventID),
	}
}

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &recordingRepo{
		events: []models.OutboxEvent{orderEvent(t, "event-one"), orderEvent(t, "event-two")},
	}
	pub := &capturePublisher{
		results: []publishResult{scriptedResult{err: errors.New("transient")}, scriptedResult{}},
	}
	service := newTestService(t, repo, pub, nil)

	processed, err := service.processBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	require.Len(t, repo.failed, 1)
	require.Len(t, repo.published, 1)
	assert.Equal(t, repo.events[0].ID, repo.failed[0])
	assert.Equal(t, repo.events[1].ID, repo.published[0])
}

func TestServiceProcessBatchMarksTerminalOnMaxAttempts(t *testing.T) {
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPriceDropped,
		AggregateType: enums.AggregateSupplierOffer,
		AggregateID:   uuid.New(),
		Payload:       envelopePayload(t, "max-attempts"),
		AttemptCount:  1,
	}
	repo := &recordingRepo{events: []models.OutboxEvent{event}}
	pub := &capturePublisher{results: []publishResult{scriptedResult{err: errors.New("transient")}}}
	service := newTestService(t, repo, pub, &config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	processed, err := service.processBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	require.Len(t, repo.terminal, 1)
	assert.Equal(t, event.ID, repo.terminal[0])
	assert.Empty(t, repo.failed, "terminal event must not also be marked retryable")
}

func TestServicePublishSetsAttributes(t *testing.T) {
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPaymentRecorded,
		AggregateType: enums.AggregatePayment,
		AggregateID:   uuid.New(),
		Payload:       envelopePayload(t, "attr-check"),
		CreatedAt:     time.Now(),
	}
	repo := &recordingRepo{events: []models.OutboxEvent{event}}
	pub := &capturePublisher{results: []publishResult{scriptedResult{}}}
	service := newTestService(t, repo, pub, nil)

	_, err := service.processBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, pub.messages, 1)

	attrs := pub.messages[0].Attributes
	assert.Equal(t, string(enums.EventPaymentRecorded), attrs["event_type"])
	assert.Equal(t, event.AggregateID.String(), attrs["aggregate_id"])
	assert.Equal(t, "attr-check", attrs["event_id"])
}

func TestServiceProcessBatchEmptyReportsIdle(t *testing.T) {
	service := newTestService(t, &recordingRepo{}, &capturePublisher{}, nil)

	processed, err := service.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}
