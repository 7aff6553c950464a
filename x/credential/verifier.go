package credential

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/poorbengunn/nostr-dojo/core"
)

// maxChainDepth bounds the number of upstream grants one verification may
// read. Deeper chains are rejected outright.
const maxChainDepth = 5

// Verify decides VALID, INVALID, EXPIRED or REVOKED for a credential grant
// at the given instant. The chain walk is iterative and depth-bounded; a
// visited set cuts adversarial cycles before the depth bound does.
//
// Authority is evaluated at the moment of issuance: an upstream credential
// that lapsed after the downstream grant was issued does not invalidate it.
// Revocation of an upstream only cascades when the schema opts in and the
// revocation is no later than the downstream's issuance.
func (s *service) Verify(ctx context.Context, ev core.Event, now time.Time) (core.VerifyResult, error) {
	ctx, span := tracer.Start(ctx, "Credential.Service.Verify")
	defer span.End()

	if ev.Kind != s.config.Kinds.CredentialGrant {
		return core.VerifyInvalid(fmt.Sprintf("kind %d is not a credential grant", ev.Kind)), nil
	}

	schemaAddr, hasA := ev.TagValue("a")
	classID, hasClass := ev.TagValue("class")
	issuedStr, hasIssued := ev.TagValue("issued")
	if !hasA || !hasClass || !hasIssued {
		return core.VerifyInvalid("missing required tags"), nil
	}

	issued, err := strconv.ParseInt(issuedStr, 10, 64)
	if err != nil {
		return core.VerifyInvalid("issued tag is not an integer"), nil
	}

	dTag, _ := ev.TagValue("d")

	// revocation and renewals live on the index row for the grant's address
	var indexed *core.Credential
	row, err := s.repository.GetByIssuerDTag(ctx, ev.Pubkey, dTag)
	if err == nil {
		indexed = &row
	} else if _, ok := err.(core.ErrorNotFound); !ok {
		span.RecordError(err)
		return core.VerifyResult{}, err
	}

	if indexed != nil && indexed.Revoked {
		revokedAt := int64(0)
		if indexed.RevokedAt != nil {
			revokedAt = *indexed.RevokedAt
		}
		return core.VerifyRevoked(revokedAt, indexed.RevokeReason), nil
	}

	effectiveExpires := grantExpiry(ev)
	if indexed != nil {
		effectiveExpires = indexed.ExpiresAt
	}
	if effectiveExpires != nil && *effectiveExpires < now.Unix() {
		return core.VerifyExpired(*effectiveExpires), nil
	}

	doc, err := s.schema.Resolve(ctx, schemaAddr)
	if err != nil {
		span.RecordError(err)
		return core.VerifyInvalid("schema not found: " + schemaAddr), nil
	}

	class, ok := doc.Classes[classID]
	if !ok {
		return core.VerifyInvalid(fmt.Sprintf("class %s not found in schema", classID)), nil
	}

	address, err := core.ParseAddress(schemaAddr)
	if err != nil {
		return core.VerifyInvalid("malformed schema address"), nil
	}
	root := address.Pubkey

	if class.IsIssuedBy(core.IssuedByRoot) && ev.Pubkey == root {
		return core.VerifyValid(0), nil
	}

	chainRef, ok := ev.TagValue("chain")
	if !ok {
		return core.VerifyInvalid("non-root issuer without chain reference"), nil
	}

	walk := chainWalk{
		issuer:         ev.Pubkey,
		childIssued:    issued,
		childClass:     classID,
		allowedIssuers: class.IssuedBy,
		chainRef:       chainRef,
		schemaAddr:     schemaAddr,
	}

	return s.walkChain(ctx, walk, doc, root)
}

type chainWalk struct {
	issuer         string
	childIssued    int64
	childClass     string
	allowedIssuers []string
	chainRef       string
	schemaAddr     string
}

func (s *service) walkChain(ctx context.Context, walk chainWalk, doc core.SchemaDocument, root string) (core.VerifyResult, error) {
	ctx, span := tracer.Start(ctx, "Credential.Service.WalkChain")
	defer span.End()

	visited := map[string]bool{}

	for depth := 1; ; depth++ {
		if depth > maxChainDepth {
			return core.VerifyInvalid("chain too deep"), nil
		}

		ref, err := core.ParseAddress(walk.chainRef)
		if err != nil || ref.Kind != s.config.Kinds.CredentialGrant {
			return core.VerifyInvalid("invalid chain reference: " + walk.chainRef), nil
		}

		if visited[ref.Pubkey+"\x00"+ref.DTag] {
			return core.VerifyInvalid("credential chain contains a cycle"), nil
		}
		visited[ref.Pubkey+"\x00"+ref.DTag] = true

		upstream, err := s.repository.GetByIssuerDTag(ctx, ref.Pubkey, ref.DTag)
		if err != nil {
			if _, ok := err.(core.ErrorNotFound); ok {
				return core.VerifyInvalid("issuer credential not found: " + walk.chainRef), nil
			}
			span.RecordError(err)
			return core.VerifyResult{}, err
		}

		if upstream.Recipient != walk.issuer {
			return core.VerifyInvalid("chain pubkey mismatch"), nil
		}

		if upstream.SchemaAddr != walk.schemaAddr {
			return core.VerifyInvalid("credential chain crosses schemas"), nil
		}

		if upstream.Class == "" {
			return core.VerifyInvalid("issuer credential has no class"), nil
		}

		if !slices.Contains(walk.allowedIssuers, upstream.Class) {
			return core.VerifyInvalid(fmt.Sprintf(
				"class %s is not authorized to issue %s", upstream.Class, walk.childClass)), nil
		}

		upstreamClass, ok := doc.Classes[upstream.Class]
		if !ok {
			return core.VerifyInvalid(fmt.Sprintf(
				"class %s not found in schema", upstream.Class)), nil
		}
		if !upstreamClass.HasScope(walk.childClass) {
			return core.VerifyInvalid(fmt.Sprintf(
				"class %s lacks scope for %s", upstream.Class, walk.childClass)), nil
		}

		// authority at the moment of issuance
		if upstream.IssuedAt > walk.childIssued {
			return core.VerifyInvalid("issuer credential issued after downstream"), nil
		}
		if upstream.ExpiresAt != nil && *upstream.ExpiresAt < walk.childIssued {
			return core.VerifyInvalid("issuer credential expired at issuance"), nil
		}

		if upstream.Revoked && upstreamClass.CascadeRevoke &&
			upstream.RevokedAt != nil && *upstream.RevokedAt <= walk.childIssued {
			return core.VerifyInvalid("issuer credential revoked (cascade)"), nil
		}

		if upstreamClass.IsIssuedBy(core.IssuedByRoot) && upstream.Issuer == root {
			return core.VerifyValid(depth), nil
		}

		if upstream.ChainRef == "" {
			return core.VerifyInvalid("non-root issuer without chain reference"), nil
		}

		walk = chainWalk{
			issuer:         upstream.Issuer,
			childIssued:    upstream.IssuedAt,
			childClass:     upstream.Class,
			allowedIssuers: upstreamClass.IssuedBy,
			chainRef:       upstream.ChainRef,
			schemaAddr:     walk.schemaAddr,
		}
	}
}

func grantExpiry(ev core.Event) *int64 {
	expiresStr, ok := ev.TagValue("expires")
	if !ok || expiresStr == core.ExpiresPerpetual {
		return nil
	}
	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return nil
	}
	return &expires
}
