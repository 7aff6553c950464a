package store

import (
	"context"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/poorbengunn/nostr-dojo/core"
	"github.com/poorbengunn/nostr-dojo/x/util"
)

type Repository interface {
	Save(ctx context.Context, ev core.Event) (core.Event, error)
	GetByID(ctx context.Context, id string) (core.Event, error)
	Query(ctx context.Context, filter core.Filter) ([]core.Event, error)
	CountEvents(ctx context.Context) (int64, error)
	CountCredentials(ctx context.Context) (int64, error)
}

type repository struct {
	db     *gorm.DB
	mc     *memcache.Client
	config util.Config
}

func NewRepository(db *gorm.DB, mc *memcache.Client, config util.Config) Repository {
	return &repository{db, mc, config}
}

func schemaCacheKey(address string) string {
	return "schema:" + address
}

// Save persists one event and applies its index side-effects in a single
// transaction. Returns ErrorAlreadyExists for a known id and ErrorSuperseded
// when a newer replaceable event for the same key is already stored.
func (r *repository) Save(ctx context.Context, ev core.Event) (core.Event, error) {
	ctx, span := tracer.Start(ctx, "Store.Repository.Save")
	defer span.End()

	if d, ok := ev.TagValue("d"); ok {
		ev.DTag = d
	}
	if a, ok := ev.TagValue("a"); ok {
		ev.ATag = a
	}
	ev.TagValues = ev.FlattenTags()
	if exp, ok := ev.TagValue("expiration"); ok {
		if n, err := strconv.ParseInt(exp, 10, 64); err == nil {
			ev.ExpiresAt = &n
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing core.Event
		err := tx.Where("id = ?", ev.ID).First(&existing).Error
		if err == nil {
			return core.NewErrorAlreadyExists()
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if core.IsReplaceableKind(ev.Kind) {
			err = r.replace(tx, ev, false)
		} else if core.IsParameterizedReplaceableKind(ev.Kind) && ev.DTag != "" {
			err = r.replace(tx, ev, true)
		}
		if err != nil {
			return err
		}

		err = tx.Create(&ev).Error
		if err != nil {
			return err
		}

		switch ev.Kind {
		case r.config.Kinds.CredentialGrant:
			return r.indexGrant(tx, ev)
		case r.config.Kinds.SchemaDefinition:
			return r.indexSchema(tx, ev)
		case r.config.Kinds.Revocation:
			return r.applyRevocation(tx, ev)
		case r.config.Kinds.Renewal:
			return r.applyRenewal(tx, ev)
		case core.KindDeletion:
			return r.applyDeletion(tx, ev)
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		return core.Event{}, err
	}

	if ev.Kind == r.config.Kinds.SchemaDefinition {
		address := core.Address{Kind: ev.Kind, Pubkey: ev.Pubkey, DTag: ev.DTag}.String()
		r.mc.Set(&memcache.Item{
			Key:        schemaCacheKey(address),
			Value:      []byte(ev.Content),
			Expiration: 600,
		})
	}

	return ev, nil
}

// replace removes stored events superseded by the incoming one, or reports
// ErrorSuperseded when the store already holds a strictly greater
// (created_at, id) for the same key. Smaller id wins a created_at tie.
func (r *repository) replace(tx *gorm.DB, ev core.Event, parameterized bool) error {
	newer := tx.Model(&core.Event{}).
		Where("kind = ? AND pubkey = ?", ev.Kind, ev.Pubkey).
		Where("(created_at > ? OR (created_at = ? AND id < ?))", ev.CreatedAt, ev.CreatedAt, ev.ID)
	older := tx.
		Where("kind = ? AND pubkey = ?", ev.Kind, ev.Pubkey).
		Where("(created_at < ? OR (created_at = ? AND id > ?))", ev.CreatedAt, ev.CreatedAt, ev.ID)

	if parameterized {
		newer = newer.Where("d_tag = ?", ev.DTag)
		older = older.Where("d_tag = ?", ev.DTag)
	}

	var count int64
	err := newer.Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return core.NewErrorSuperseded()
	}

	return older.Delete(&core.Event{}).Error
}

func (r *repository) indexGrant(tx *gorm.DB, ev core.Event) error {
	credential, err := grantToCredential(ev)
	if err != nil {
		return err
	}

	// A re-issued grant supersedes the previous row for the same address,
	// but an address-level revocation survives the re-issue.
	var previous core.Credential
	err = tx.Where("issuer = ? AND d_tag = ?", ev.Pubkey, ev.DTag).First(&previous).Error
	if err == nil {
		if previous.Revoked {
			credential.Revoked = true
			credential.RevokedAt = previous.RevokedAt
			credential.RevokeReason = previous.RevokeReason
		}
		err = tx.Delete(&previous).Error
		if err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.Create(&credential).Error
}

func grantToCredential(ev core.Event) (core.Credential, error) {
	schemaAddr, ok := ev.TagValue("a")
	if !ok {
		return core.Credential{}, errors.New("grant is missing a tag")
	}
	class, ok := ev.TagValue("class")
	if !ok {
		return core.Credential{}, errors.New("grant is missing class tag")
	}
	issuedStr, ok := ev.TagValue("issued")
	if !ok {
		return core.Credential{}, errors.New("grant is missing issued tag")
	}
	issued, err := strconv.ParseInt(issuedStr, 10, 64)
	if err != nil {
		return core.Credential{}, errors.Wrap(err, "grant issued tag is not an integer")
	}

	var expires *int64
	expiresStr, ok := ev.TagValue("expires")
	if !ok {
		return core.Credential{}, errors.New("grant is missing expires tag")
	}
	if expiresStr != core.ExpiresPerpetual {
		n, err := strconv.ParseInt(expiresStr, 10, 64)
		if err != nil {
			return core.Credential{}, errors.Wrap(err, "grant expires tag is not an integer")
		}
		expires = &n
	}

	recipient, _ := ev.TagValue("p")
	chain, _ := ev.TagValue("chain")

	return core.Credential{
		EventID:    ev.ID,
		DTag:       ev.DTag,
		Issuer:     ev.Pubkey,
		Recipient:  recipient,
		SchemaAddr: schemaAddr,
		Class:      class,
		IssuedAt:   issued,
		ExpiresAt:  expires,
		ChainRef:   chain,
	}, nil
}

func (r *repository) indexSchema(tx *gorm.DB, ev core.Event) error {
	name, _ := ev.TagValue("name")
	address := core.Address{Kind: ev.Kind, Pubkey: ev.Pubkey, DTag: ev.DTag}.String()

	record := core.SchemaRecord{
		Address:   address,
		Author:    ev.Pubkey,
		DTag:      ev.DTag,
		Name:      name,
		EventID:   ev.ID,
		Document:  ev.Content,
		CreatedAt: ev.CreatedAt,
	}

	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error
}

func (r *repository) applyRevocation(tx *gorm.DB, ev core.Event) error {
	target, ok := ev.TagValue("a")
	if !ok {
		return nil
	}
	address, err := core.ParseAddress(target)
	if err != nil || address.Kind != r.config.Kinds.CredentialGrant {
		return nil
	}

	reason, _ := ev.TagValue("reason")

	// monotonic: the first revocation sticks
	return tx.Model(&core.Credential{}).
		Where("issuer = ? AND d_tag = ? AND revoked = ?", address.Pubkey, address.DTag, false).
		Updates(map[string]any{
			"revoked":       true,
			"revoked_at":    ev.CreatedAt,
			"revoke_reason": reason,
		}).Error
}

func (r *repository) applyRenewal(tx *gorm.DB, ev core.Event) error {
	target, ok := ev.TagValue("a")
	if !ok {
		return nil
	}
	address, err := core.ParseAddress(target)
	if err != nil || address.Kind != r.config.Kinds.CredentialGrant {
		return nil
	}

	expiresStr, ok := ev.TagValue("expires")
	if !ok || expiresStr == core.ExpiresPerpetual {
		return nil
	}
	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return nil
	}

	// renewal never touches a revoked grant
	return tx.Model(&core.Credential{}).
		Where("issuer = ? AND d_tag = ? AND revoked = ?", address.Pubkey, address.DTag, false).
		Update("expires_at", expires).Error
}

func (r *repository) applyDeletion(tx *gorm.DB, ev core.Event) error {
	for _, tag := range ev.Tags {
		if len(tag) < 2 || tag[0] != "e" {
			continue
		}
		err := tx.Where("id = ? AND pubkey = ?", tag[1], ev.Pubkey).Delete(&core.Event{}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (core.Event, error) {
	ctx, span := tracer.Start(ctx, "Store.Repository.GetByID")
	defer span.End()

	var ev core.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Event{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Event{}, err
	}

	return ev, nil
}

// Query returns stored events matching the filter, newest first, with
// expired events omitted. #a/#d match on projected columns; #e/#p match by
// array overlap on the flattened tag values.
func (r *repository) Query(ctx context.Context, filter core.Filter) ([]core.Event, error) {
	ctx, span := tracer.Start(ctx, "Store.Repository.Query")
	defer span.End()

	q := r.db.WithContext(ctx).Model(&core.Event{})

	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}
	if len(filter.Authors) > 0 {
		q = q.Where("pubkey IN ?", filter.Authors)
	}
	if len(filter.Kinds) > 0 {
		q = q.Where("kind IN ?", filter.Kinds)
	}
	if len(filter.TagA) > 0 {
		q = q.Where("a_tag IN ?", filter.TagA)
	}
	if len(filter.TagD) > 0 {
		q = q.Where("d_tag IN ?", filter.TagD)
	}
	if len(filter.TagE) > 0 {
		q = q.Where("tag_values && ?", tagMatchValues("e", filter.TagE))
	}
	if len(filter.TagP) > 0 {
		q = q.Where("tag_values && ?", tagMatchValues("p", filter.TagP))
	}
	if filter.Since != nil {
		q = q.Where("created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		q = q.Where("created_at <= ?", *filter.Until)
	}

	q = q.Where("(expires_at IS NULL OR expires_at > ?)", time.Now().Unix())

	limit := filter.Limit
	if limit <= 0 || limit > core.DefaultQueryLimit {
		limit = core.DefaultQueryLimit
	}

	var events []core.Event
	err := q.Order("created_at DESC, id ASC").Limit(limit).Find(&events).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return events, nil
}

func tagMatchValues(name string, values []string) pq.StringArray {
	prefixed := make(pq.StringArray, 0, len(values))
	for _, v := range values {
		prefixed = append(prefixed, name+":"+v)
	}
	return prefixed
}

func (r *repository) CountEvents(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Store.Repository.CountEvents")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&core.Event{}).Count(&count).Error
	return count, err
}

func (r *repository) CountCredentials(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Store.Repository.CountCredentials")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&core.Credential{}).Count(&count).Error
	return count, err
}
