// Package schema validates schema definition events and resolves admitted
// schema documents by composite address.
package schema

import (
	"context"
	"fmt"

	"github.com/poorbengunn/nostr-dojo/core"
)

type Service interface {
	Validate(ctx context.Context, ev core.Event) error
	Resolve(ctx context.Context, address string) (core.SchemaDocument, error)
}

type service struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &service{repository}
}

// Validate checks a schema definition event for internal consistency:
// required tags, a non-empty class table, and closed scope/issued_by
// references.
func (s *service) Validate(ctx context.Context, ev core.Event) error {
	ctx, span := tracer.Start(ctx, "Schema.Service.Validate")
	defer span.End()

	if _, ok := ev.TagValue("d"); !ok {
		return core.NewRejection(core.RejectStructural, "schema definition is missing d tag")
	}
	if _, ok := ev.TagValue("name"); !ok {
		return core.NewRejection(core.RejectStructural, "schema definition is missing name tag")
	}

	doc, err := core.ParseSchemaDocument(ev.Content)
	if err != nil {
		span.RecordError(err)
		return core.NewRejection(core.RejectSchema, "schema document is not a valid JSON object")
	}

	if len(doc.Classes) == 0 {
		return core.NewRejection(core.RejectSchema, "schema document has no classes")
	}

	for classID, class := range doc.Classes {
		if class.Name == "" {
			return core.NewRejection(core.RejectSchema,
				fmt.Sprintf("class %s is missing name", classID))
		}
		if class.IssuedBy == nil {
			return core.NewRejection(core.RejectSchema,
				fmt.Sprintf("class %s is missing issued_by", classID))
		}
		if class.Scope == nil {
			return core.NewRejection(core.RejectSchema,
				fmt.Sprintf("class %s is missing scope", classID))
		}
		if class.Expiry.MaxDays != nil && *class.Expiry.MaxDays < 0 {
			return core.NewRejection(core.RejectSchema,
				fmt.Sprintf("class %s has negative max_days", classID))
		}

		for _, member := range class.Scope {
			if _, ok := doc.Classes[member]; !ok {
				return core.NewRejection(core.RejectSchema,
					fmt.Sprintf("class %s scope references unknown class %s", classID, member))
			}
		}
		for _, issuer := range class.IssuedBy {
			if issuer == core.IssuedByRoot {
				continue
			}
			if _, ok := doc.Classes[issuer]; !ok {
				return core.NewRejection(core.RejectSchema,
					fmt.Sprintf("class %s issued_by references unknown class %s", classID, issuer))
			}
		}
	}

	return nil
}

// Resolve returns the parsed schema document for a composite address,
// consulting the hot cache before the store.
func (s *service) Resolve(ctx context.Context, address string) (core.SchemaDocument, error) {
	ctx, span := tracer.Start(ctx, "Schema.Service.Resolve")
	defer span.End()

	cached, err := s.repository.GetDocumentCache(ctx, address)
	if err == nil {
		doc, err := core.ParseSchemaDocument(cached)
		if err == nil {
			return doc, nil
		}
	}

	record, err := s.repository.Get(ctx, address)
	if err != nil {
		span.RecordError(err)
		return core.SchemaDocument{}, err
	}

	doc, err := core.ParseSchemaDocument(record.Document)
	if err != nil {
		span.RecordError(err)
		return core.SchemaDocument{}, err
	}

	s.repository.SetDocumentCache(ctx, address, record.Document)

	return doc, nil
}
