package schema

import (
	"context"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/poorbengunn/nostr-dojo/core"
)

var tracer = otel.Tracer("schema")

type Repository interface {
	Get(ctx context.Context, address string) (core.SchemaRecord, error)
	GetDocumentCache(ctx context.Context, address string) (string, error)
	SetDocumentCache(ctx context.Context, address string, document string) error
}

type repository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewRepository(db *gorm.DB, mc *memcache.Client) Repository {
	return &repository{db, mc}
}

func (r *repository) Get(ctx context.Context, address string) (core.SchemaRecord, error) {
	ctx, span := tracer.Start(ctx, "Schema.Repository.Get")
	defer span.End()

	var record core.SchemaRecord
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.SchemaRecord{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.SchemaRecord{}, err
	}

	return record, nil
}

func (r *repository) GetDocumentCache(ctx context.Context, address string) (string, error) {
	ctx, span := tracer.Start(ctx, "Schema.Repository.GetDocumentCache")
	defer span.End()

	item, err := r.mc.Get("schema:" + address)
	if err != nil {
		return "", err
	}

	return string(item.Value), nil
}

func (r *repository) SetDocumentCache(ctx context.Context, address string, document string) error {
	ctx, span := tracer.Start(ctx, "Schema.Repository.SetDocumentCache")
	defer span.End()

	// TTL 10 minutes
	return r.mc.Set(&memcache.Item{
		Key:        "schema:" + address,
		Value:      []byte(document),
		Expiration: 600,
	})
}
