// Package store is the durable, indexed event store. Persisting an event
// applies replaceable semantics and the credential/schema index
// side-effects atomically; accepted events are announced on redis for the
// live subscription fan-out.
package store

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/poorbengunn/nostr-dojo/core"
)

var tracer = otel.Tracer("store")

// EventChannel is the redis pubsub channel accepted events are announced on.
const EventChannel = "relay:events"

type Service interface {
	Commit(ctx context.Context, ev core.Event) (core.Event, error)
	Announce(ctx context.Context, ev core.Event) error
	GetByID(ctx context.Context, id string) (core.Event, error)
	Query(ctx context.Context, filter core.Filter) ([]core.Event, error)
	CountEvents(ctx context.Context) (int64, error)
	CountCredentials(ctx context.Context) (int64, error)
}

type service struct {
	repository Repository
	rdb        *redis.Client
}

func NewService(repository Repository, rdb *redis.Client) Service {
	return &service{repository, rdb}
}

// Commit persists the event and announces it. Duplicate and superseded
// events propagate their typed errors for the front-end to present.
func (s *service) Commit(ctx context.Context, ev core.Event) (core.Event, error) {
	ctx, span := tracer.Start(ctx, "Store.Service.Commit")
	defer span.End()

	created, err := s.repository.Save(ctx, ev)
	if err != nil {
		span.RecordError(err)
		return core.Event{}, err
	}

	payload, err := json.Marshal(created)
	if err == nil {
		err = s.rdb.Publish(ctx, EventChannel, payload).Err()
	}
	if err != nil {
		// delivery to live subscribers is best-effort; the store is committed
		span.RecordError(err)
		slog.ErrorContext(ctx, "failed to announce event",
			slog.String("id", created.ID), slog.String("error", err.Error()))
	}

	return created, nil
}

// Announce publishes an event to live subscribers without persisting it.
// Used for ephemeral kinds.
func (s *service) Announce(ctx context.Context, ev core.Event) error {
	ctx, span := tracer.Start(ctx, "Store.Service.Announce")
	defer span.End()

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return s.rdb.Publish(ctx, EventChannel, payload).Err()
}

func (s *service) GetByID(ctx context.Context, id string) (core.Event, error) {
	ctx, span := tracer.Start(ctx, "Store.Service.GetByID")
	defer span.End()

	return s.repository.GetByID(ctx, id)
}

func (s *service) Query(ctx context.Context, filter core.Filter) ([]core.Event, error) {
	ctx, span := tracer.Start(ctx, "Store.Service.Query")
	defer span.End()

	return s.repository.Query(ctx, filter)
}

func (s *service) CountEvents(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Store.Service.CountEvents")
	defer span.End()

	return s.repository.CountEvents(ctx)
}

func (s *service) CountCredentials(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Store.Service.CountCredentials")
	defer span.End()

	return s.repository.CountCredentials(ctx)
}
