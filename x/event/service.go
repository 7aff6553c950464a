// Package event implements the structural and cryptographic admission
// check every inbound event passes before kind-specific validation.
package event

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/poorbengunn/nostr-dojo/core"
)

var tracer = otel.Tracer("event")

type Service interface {
	Validate(ctx context.Context, ev core.Event) error
}

type service struct {
}

func NewService() Service {
	return &service{}
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')) {
			return false
		}
	}
	return true
}

// Validate checks field shapes, recomputes the identifier and verifies the
// schnorr signature. Returns a typed rejection with a human-readable reason.
func (s *service) Validate(ctx context.Context, ev core.Event) error {
	ctx, span := tracer.Start(ctx, "Event.Service.Validate")
	defer span.End()

	if len(ev.ID) != 64 || !isHex(ev.ID) {
		return core.NewRejection(core.RejectStructural, "id must be a 64 character hex string")
	}

	if len(ev.Pubkey) != 64 || !isHex(ev.Pubkey) {
		return core.NewRejection(core.RejectStructural, "pubkey must be a 64 character hex string")
	}

	if len(ev.Sig) != 128 || !isHex(ev.Sig) {
		return core.NewRejection(core.RejectStructural, "sig must be a 128 character hex string")
	}

	if ev.CreatedAt < 0 {
		return core.NewRejection(core.RejectStructural, "created_at must be a non-negative integer")
	}

	if ev.Kind < 0 {
		return core.NewRejection(core.RejectStructural, "kind must be a non-negative integer")
	}

	computed, err := core.GetEventID(ev)
	if err != nil {
		span.RecordError(err)
		return core.NewRejection(core.RejectStructural, "event is not serializable")
	}

	if computed != ev.ID {
		return core.NewRejection(core.RejectCryptographic,
			fmt.Sprintf("event id does not match: expected %s", computed))
	}

	err = core.VerifySignature(ev.ID, ev.Sig, ev.Pubkey)
	if err != nil {
		span.RecordError(err)
		return core.NewRejection(core.RejectCryptographic, "signature verification failed")
	}

	return nil
}
