// Package credential validates credential grants, revocations and renewals
// at admission, and verifies grant chains against the schema authority.
package credential

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/poorbengunn/nostr-dojo/core"
	"github.com/poorbengunn/nostr-dojo/x/schema"
	"github.com/poorbengunn/nostr-dojo/x/util"
)

const secondsPerDay = 86400

type Service interface {
	ValidateGrant(ctx context.Context, ev core.Event) error
	ValidateRevocation(ctx context.Context, ev core.Event) error
	ValidateRenewal(ctx context.Context, ev core.Event) error
	Verify(ctx context.Context, ev core.Event, now time.Time) (core.VerifyResult, error)
	GetByEventID(ctx context.Context, eventID string) (core.Credential, error)
	GetByRecipient(ctx context.Context, recipient string) ([]core.Credential, error)
	GetByIssuer(ctx context.Context, issuer string) ([]core.Credential, error)
	GetBySchema(ctx context.Context, schemaAddr string) ([]core.Credential, error)
	GetByClass(ctx context.Context, schemaAddr string, class string) ([]core.Credential, error)
}

type service struct {
	repository Repository
	schema     schema.Service
	config     util.Config
}

func NewService(repository Repository, schema schema.Service, config util.Config) Service {
	return &service{repository, schema, config}
}

// ValidateGrant is the admission check of §grant semantics: required tags,
// resolvable schema and class, and the per-class expiry bound. Chain
// authority is the verifier's concern.
func (s *service) ValidateGrant(ctx context.Context, ev core.Event) error {
	ctx, span := tracer.Start(ctx, "Credential.Service.ValidateGrant")
	defer span.End()

	for _, required := range []string{"d", "p", "a", "class", "issued", "expires"} {
		if _, ok := ev.TagValue(required); !ok {
			return core.NewRejection(core.RejectStructural,
				fmt.Sprintf("grant is missing %s tag", required))
		}
	}

	schemaAddr, _ := ev.TagValue("a")
	classID, _ := ev.TagValue("class")

	doc, err := s.schema.Resolve(ctx, schemaAddr)
	if err != nil {
		span.RecordError(err)
		return core.NewRejection(core.RejectSchema, "schema not found: "+schemaAddr)
	}

	class, ok := doc.Classes[classID]
	if !ok {
		return core.NewRejection(core.RejectSchema,
			fmt.Sprintf("class %s not found in schema", classID))
	}

	issuedStr, _ := ev.TagValue("issued")
	issued, err := strconv.ParseInt(issuedStr, 10, 64)
	if err != nil {
		return core.NewRejection(core.RejectStructural, "issued tag is not an integer")
	}

	expiresStr, _ := ev.TagValue("expires")
	if expiresStr == core.ExpiresPerpetual {
		if class.Expiry.MaxDays != nil {
			return core.NewRejection(core.RejectSchema,
				fmt.Sprintf("class %s does not allow perpetual grants", classID))
		}
	} else {
		expires, err := strconv.ParseInt(expiresStr, 10, 64)
		if err != nil {
			return core.NewRejection(core.RejectStructural, "expires tag is not an integer")
		}
		if class.Expiry.MaxDays != nil && expires-issued > *class.Expiry.MaxDays*secondsPerDay {
			return core.NewRejection(core.RejectSchema,
				fmt.Sprintf("expiry exceeds maximum of %d days for class %s", *class.Expiry.MaxDays, classID))
		}
	}

	address, err := core.ParseAddress(schemaAddr)
	if err != nil {
		return core.NewRejection(core.RejectStructural, "malformed schema address")
	}

	_, hasChain := ev.TagValue("chain")
	isRoot := class.IsIssuedBy(core.IssuedByRoot) && ev.Pubkey == address.Pubkey
	if isRoot && hasChain {
		return core.NewRejection(core.RejectStructural, "root issuance must not carry a chain reference")
	}
	if !isRoot && !hasChain {
		return core.NewRejection(core.RejectStructural, "non-root issuer without chain reference")
	}

	return nil
}

// ValidateRevocation checks required tags and that the revoking author holds
// authority over the referenced grant: its issuer, an issuer further up its
// chain, or the schema authority.
func (s *service) ValidateRevocation(ctx context.Context, ev core.Event) error {
	ctx, span := tracer.Start(ctx, "Credential.Service.ValidateRevocation")
	defer span.End()

	target, ok := ev.TagValue("a")
	if !ok {
		return core.NewRejection(core.RejectStructural, "revocation is missing a tag")
	}
	if _, ok := ev.TagValue("reason"); !ok {
		return core.NewRejection(core.RejectStructural, "revocation is missing reason tag")
	}

	address, err := core.ParseAddress(target)
	if err != nil || address.Kind != s.config.Kinds.CredentialGrant {
		return core.NewRejection(core.RejectStructural, "revocation does not reference a credential grant")
	}

	grant, err := s.repository.GetByIssuerDTag(ctx, address.Pubkey, address.DTag)
	if err != nil {
		span.RecordError(err)
		return core.NewRejection(core.RejectSchema, "referenced grant not found")
	}

	authorized, err := s.holdsRevocationAuthority(ctx, ev.Pubkey, grant)
	if err != nil {
		span.RecordError(err)
		return core.NewRejection(core.RejectAuthority, "failed to evaluate revocation authority")
	}
	if !authorized {
		return core.NewRejection(core.RejectAuthority,
			fmt.Sprintf("%s has no authority to revoke this grant", ev.Pubkey))
	}

	return nil
}

// holdsRevocationAuthority walks the grant's stored chain. The revoker
// qualifies as the grant's issuer, any upstream issuer, or the schema root.
func (s *service) holdsRevocationAuthority(ctx context.Context, revoker string, grant core.Credential) (bool, error) {
	if revoker == grant.Issuer {
		return true, nil
	}

	address, err := core.ParseAddress(grant.SchemaAddr)
	if err == nil && revoker == address.Pubkey {
		return true, nil
	}

	current := grant
	for depth := 0; depth < maxChainDepth; depth++ {
		if current.ChainRef == "" {
			return false, nil
		}
		ref, err := core.ParseAddress(current.ChainRef)
		if err != nil {
			return false, nil
		}
		upstream, err := s.repository.GetByIssuerDTag(ctx, ref.Pubkey, ref.DTag)
		if err != nil {
			if _, ok := err.(core.ErrorNotFound); ok {
				return false, nil
			}
			return false, err
		}
		if upstream.Issuer == revoker {
			return true, nil
		}
		current = upstream
	}

	return false, nil
}

// ValidateRenewal checks required tags, that the referenced grant exists and
// is not revoked, and that its class permits renewal.
func (s *service) ValidateRenewal(ctx context.Context, ev core.Event) error {
	ctx, span := tracer.Start(ctx, "Credential.Service.ValidateRenewal")
	defer span.End()

	target, ok := ev.TagValue("a")
	if !ok {
		return core.NewRejection(core.RejectStructural, "renewal is missing a tag")
	}
	expiresStr, ok := ev.TagValue("expires")
	if !ok {
		return core.NewRejection(core.RejectStructural, "renewal is missing expires tag")
	}
	if expiresStr != core.ExpiresPerpetual {
		if _, err := strconv.ParseInt(expiresStr, 10, 64); err != nil {
			return core.NewRejection(core.RejectStructural, "expires tag is not an integer")
		}
	}

	address, err := core.ParseAddress(target)
	if err != nil || address.Kind != s.config.Kinds.CredentialGrant {
		return core.NewRejection(core.RejectStructural, "renewal does not reference a credential grant")
	}

	grant, err := s.repository.GetByIssuerDTag(ctx, address.Pubkey, address.DTag)
	if err != nil {
		span.RecordError(err)
		return core.NewRejection(core.RejectSchema, "referenced grant not found")
	}

	if grant.Revoked {
		return core.NewRejection(core.RejectRevocation, "grant is revoked")
	}

	doc, err := s.schema.Resolve(ctx, grant.SchemaAddr)
	if err != nil {
		span.RecordError(err)
		return core.NewRejection(core.RejectSchema, "schema not found: "+grant.SchemaAddr)
	}

	class, ok := doc.Classes[grant.Class]
	if !ok {
		return core.NewRejection(core.RejectSchema,
			fmt.Sprintf("class %s not found in schema", grant.Class))
	}
	if !class.Expiry.Renewable {
		return core.NewRejection(core.RejectSchema,
			fmt.Sprintf("class %s is not renewable", grant.Class))
	}

	return nil
}

func (s *service) GetByEventID(ctx context.Context, eventID string) (core.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credential.Service.GetByEventID")
	defer span.End()

	return s.repository.GetByEventID(ctx, eventID)
}

func (s *service) GetByRecipient(ctx context.Context, recipient string) ([]core.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credential.Service.GetByRecipient")
	defer span.End()

	return s.repository.GetByRecipient(ctx, recipient)
}

func (s *service) GetByIssuer(ctx context.Context, issuer string) ([]core.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credential.Service.GetByIssuer")
	defer span.End()

	return s.repository.GetByIssuer(ctx, issuer)
}

func (s *service) GetBySchema(ctx context.Context, schemaAddr string) ([]core.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credential.Service.GetBySchema")
	defer span.End()

	return s.repository.GetBySchema(ctx, schemaAddr)
}

func (s *service) GetByClass(ctx context.Context, schemaAddr string, class string) ([]core.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credential.Service.GetByClass")
	defer span.End()

	return s.repository.GetByClass(ctx, schemaAddr, class)
}
