// Package relay carries the wire protocol: admission of inbound events
// through the validator pipeline, stored queries, and live subscription
// delivery.
package relay

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/poorbengunn/nostr-dojo/core"
	"github.com/poorbengunn/nostr-dojo/x/credential"
	"github.com/poorbengunn/nostr-dojo/x/event"
	"github.com/poorbengunn/nostr-dojo/x/schema"
	"github.com/poorbengunn/nostr-dojo/x/store"
	"github.com/poorbengunn/nostr-dojo/x/util"
)

var tracer = otel.Tracer("relay")

type Service interface {
	Submit(ctx context.Context, ev core.Event) (bool, string)
	Query(ctx context.Context, filters []core.Filter) ([]core.Event, error)
}

type service struct {
	validator  event.Service
	schema     schema.Service
	credential credential.Service
	store      store.Service
	config     util.Config
}

func NewService(
	validator event.Service,
	schemaService schema.Service,
	credentialService credential.Service,
	storeService store.Service,
	config util.Config,
) Service {
	return &service{validator, schemaService, credentialService, storeService, config}
}

func renderRejection(err error) string {
	rejection, ok := err.(core.Rejection)
	if !ok {
		return "error: could not save event"
	}
	if rejection.Class == core.RejectTransport {
		return "error: " + rejection.Reason
	}
	return "invalid: " + rejection.Reason
}

// Submit runs the admission pipeline for one inbound event and returns the
// OK verdict: accepted plus the wire reason string.
func (s *service) Submit(ctx context.Context, ev core.Event) (bool, string) {
	ctx, span := tracer.Start(ctx, "Relay.Service.Submit")
	defer span.End()

	err := s.validator.Validate(ctx, ev)
	if err != nil {
		span.RecordError(err)
		return false, renderRejection(err)
	}

	switch ev.Kind {
	case s.config.Kinds.SchemaDefinition:
		err = s.schema.Validate(ctx, ev)
		if err != nil {
			span.RecordError(err)
			return false, renderRejection(err)
		}

	case s.config.Kinds.CredentialGrant:
		err = s.credential.ValidateGrant(ctx, ev)
		if err != nil {
			span.RecordError(err)
			return false, renderRejection(err)
		}

		// the store must not ingest grants whose chains cannot verify
		result, err := s.credential.Verify(ctx, ev, time.Now())
		if err != nil {
			span.RecordError(err)
			return false, "error: could not save event"
		}
		if result.Status != core.VerifyStatusValid {
			return false, "invalid: credential verification failed - " + string(result.Status)
		}

	case s.config.Kinds.Revocation:
		err = s.credential.ValidateRevocation(ctx, ev)
		if err != nil {
			span.RecordError(err)
			return false, renderRejection(err)
		}

	case s.config.Kinds.Renewal:
		err = s.credential.ValidateRenewal(ctx, ev)
		if err != nil {
			span.RecordError(err)
			return false, renderRejection(err)
		}
	}

	if core.IsEphemeralKind(ev.Kind) {
		err = s.store.Announce(ctx, ev)
		if err != nil {
			span.RecordError(err)
			return false, "error: could not save event"
		}
		return true, ""
	}

	_, err = s.store.Commit(ctx, ev)
	if err != nil {
		switch err.(type) {
		case core.ErrorAlreadyExists:
			return true, "duplicate: already have this event"
		case core.ErrorSuperseded:
			return true, "duplicate: have a newer event"
		default:
			span.RecordError(err)
			slog.ErrorContext(ctx, "failed to save event",
				slog.String("id", ev.ID), slog.String("error", err.Error()))
			return false, "error: could not save event"
		}
	}

	return true, ""
}

// Query resolves a REQ's filters against the store: union of the per-filter
// results, deduplicated, newest first.
func (s *service) Query(ctx context.Context, filters []core.Filter) ([]core.Event, error) {
	ctx, span := tracer.Start(ctx, "Relay.Service.Query")
	defer span.End()

	seen := make(map[string]bool)
	var merged []core.Event

	for _, filter := range filters {
		events, err := s.store.Query(ctx, filter)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		for _, ev := range events {
			if seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
			merged = append(merged, ev)
		}
	}

	slices.SortFunc(merged, func(a, b core.Event) int {
		if a.CreatedAt != b.CreatedAt {
			return int(b.CreatedAt - a.CreatedAt)
		}
		return strings.Compare(a.ID, b.ID)
	})

	return merged, nil
}
