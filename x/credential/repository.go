package credential

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/poorbengunn/nostr-dojo/core"
)

var tracer = otel.Tracer("credential")

type Repository interface {
	GetByEventID(ctx context.Context, eventID string) (core.Credential, error)
	GetByIssuerDTag(ctx context.Context, issuer string, dTag string) (core.Credential, error)
	GetByRecipient(ctx context.Context, recipient string) ([]core.Credential, error)
	GetByIssuer(ctx context.Context, issuer string) ([]core.Credential, error)
	GetBySchema(ctx context.Context, schemaAddr string) ([]core.Credential, error)
	GetByClass(ctx context.Context, schemaAddr string, class string) ([]core.Credential, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) GetByEventID(ctx context.Context, eventID string) (core.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credential.Repository.GetByEventID")
	defer span.End()

	var credential core.Credential
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&credential).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Credential{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Credential{}, err
	}

	return credential, nil
}

func (r *repository) GetByIssuerDTag(ctx context.Context, issuer string, dTag string) (core.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credential.Repository.GetByIssuerDTag")
	defer span.End()

	var credential core.Credential
	err := r.db.WithContext(ctx).Where("issuer = ? AND d_tag = ?", issuer, dTag).First(&credential).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Credential{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Credential{}, err
	}

	return credential, nil
}

func (r *repository) GetByRecipient(ctx context.Context, recipient string) ([]core.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credential.Repository.GetByRecipient")
	defer span.End()

	var credentials []core.Credential
	err := r.db.WithContext(ctx).Where("recipient = ?", recipient).Find(&credentials).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return credentials, nil
}

func (r *repository) GetByIssuer(ctx context.Context, issuer string) ([]core.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credential.Repository.GetByIssuer")
	defer span.End()

	var credentials []core.Credential
	err := r.db.WithContext(ctx).Where("issuer = ?", issuer).Find(&credentials).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return credentials, nil
}

func (r *repository) GetBySchema(ctx context.Context, schemaAddr string) ([]core.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credential.Repository.GetBySchema")
	defer span.End()

	var credentials []core.Credential
	err := r.db.WithContext(ctx).Where("schema_addr = ?", schemaAddr).Find(&credentials).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return credentials, nil
}

func (r *repository) GetByClass(ctx context.Context, schemaAddr string, class string) ([]core.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credential.Repository.GetByClass")
	defer span.End()

	var credentials []core.Credential
	err := r.db.WithContext(ctx).Where("schema_addr = ? AND class = ?", schemaAddr, class).Find(&credentials).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return credentials, nil
}
