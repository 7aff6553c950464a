package credential

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/poorbengunn/nostr-dojo/core"
	mock_credential "github.com/poorbengunn/nostr-dojo/x/credential/mock"
	mock_schema "github.com/poorbengunn/nostr-dojo/x/schema/mock"
	"github.com/poorbengunn/nostr-dojo/x/util"
)

const day = int64(86400)

func pubkey(seed byte) string {
	b := make([]byte, 32)
	for i := range b {
		b[i] = seed
	}
	return hex.EncodeToString(b)
}

func eventID(seed byte) string {
	return pubkey(seed ^ 0xff)
}

func intPtr(v int64) *int64 {
	return &v
}

// fixture wires the verifier against an in-memory credential index and
// schema table.
type fixture struct {
	t           *testing.T
	config      util.Config
	credentials map[string]core.Credential
	schemas     map[string]core.SchemaDocument
	service     Service
}

func newFixture(t *testing.T) *fixture {
	config := util.Config{}
	config.ApplyDefaults()

	f := &fixture{
		t:           t,
		config:      config,
		credentials: make(map[string]core.Credential),
		schemas:     make(map[string]core.SchemaDocument),
	}

	ctrl := gomock.NewController(t)

	repo := mock_credential.NewMockRepository(ctrl)
	repo.EXPECT().GetByIssuerDTag(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, issuer, dTag string) (core.Credential, error) {
			row, ok := f.credentials[issuer+"/"+dTag]
			if !ok {
				return core.Credential{}, core.NewErrorNotFound()
			}
			return row, nil
		},
	).AnyTimes()

	schemaService := mock_schema.NewMockService(ctrl)
	schemaService.EXPECT().Resolve(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, address string) (core.SchemaDocument, error) {
			doc, ok := f.schemas[address]
			if !ok {
				return core.SchemaDocument{}, core.NewErrorNotFound()
			}
			return doc, nil
		},
	).AnyTimes()

	f.service = NewService(repo, schemaService, config)

	return f
}

func (f *fixture) addSchema(address string, doc core.SchemaDocument) {
	f.schemas[address] = doc
}

func (f *fixture) addCredential(row core.Credential) {
	f.credentials[row.Issuer+"/"+row.DTag] = row
}

func (f *fixture) grantEvent(issuer, d, recipient, schemaAddr, class string, issued int64, expires string, chain string) core.Event {
	tags := core.TagList{
		{"d", d},
		{"p", recipient},
		{"a", schemaAddr},
		{"class", class},
		{"issued", strconv.FormatInt(issued, 10)},
		{"expires", expires},
	}
	if chain != "" {
		tags = append(tags, []string{"chain", chain})
	}
	return core.Event{
		ID:        eventID(issuer[0] ^ d[0]),
		Pubkey:    issuer,
		CreatedAt: issued,
		Kind:      f.config.Kinds.CredentialGrant,
		Tags:      tags,
		Content:   "",
	}
}

// dojoSchema is the running example: a root-anchored three-level hierarchy.
func dojoSchema() core.SchemaDocument {
	return core.SchemaDocument{
		Classes: map[string]core.ClassDefinition{
			"director": {
				Name:     "Director",
				Scope:    []string{"instructor"},
				IssuedBy: []string{core.IssuedByRoot},
				Expiry:   core.ExpiryPolicy{MaxDays: intPtr(365), Renewable: true},
			},
			"instructor": {
				Name:     "Instructor",
				Scope:    []string{"trainee"},
				IssuedBy: []string{"director"},
				Expiry:   core.ExpiryPolicy{MaxDays: intPtr(180), Renewable: true},
			},
			"trainee": {
				Name:     "Trainee",
				Scope:    []string{},
				IssuedBy: []string{"instructor"},
				Expiry:   core.ExpiryPolicy{MaxDays: intPtr(90), Renewable: false},
			},
		},
	}
}

func TestVerifyRootIssued(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)
	ev := f.grantEvent(root, "dir-d", director, schemaAddr, "director",
		issued, strconv.FormatInt(issued+365*day, 10), "")

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusValid, result.Status)
	assert.Equal(t, 0, result.ChainDepth)
}

func TestVerifyTwoHopChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	instructor := pubkey(0x03)
	trainee := pubkey(0x04)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)
	grantKind := f.config.Kinds.CredentialGrant

	f.addCredential(core.Credential{
		EventID: eventID(0x11), DTag: "dir-d", Issuer: root, Recipient: director,
		SchemaAddr: schemaAddr, Class: "director", IssuedAt: issued,
		ExpiresAt: intPtr(issued + 365*day),
	})
	f.addCredential(core.Credential{
		EventID: eventID(0x12), DTag: "inst-a", Issuer: director, Recipient: instructor,
		SchemaAddr: schemaAddr, Class: "instructor", IssuedAt: issued + day,
		ExpiresAt: intPtr(issued + 180*day),
		ChainRef:  fmt.Sprintf("%d:%s:dir-d", grantKind, root),
	})

	ev := f.grantEvent(instructor, "trainee-b", trainee, schemaAddr, "trainee",
		issued+2*day, strconv.FormatInt(issued+90*day, 10),
		fmt.Sprintf("%d:%s:inst-a", grantKind, director))

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+3*day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusValid, result.Status)
	assert.Equal(t, 2, result.ChainDepth)
}

func TestVerifyIssuerClassNotAuthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	instructor := pubkey(0x03)
	trainee := pubkey(0x04)
	other := pubkey(0x05)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)
	grantKind := f.config.Kinds.CredentialGrant

	f.addCredential(core.Credential{
		EventID: eventID(0x13), DTag: "trainee-b", Issuer: instructor, Recipient: trainee,
		SchemaAddr: schemaAddr, Class: "trainee", IssuedAt: issued,
		ExpiresAt: intPtr(issued + 90*day),
	})

	// a trainee holds no issuing authority at all
	ev := f.grantEvent(trainee, "trainee-c", other, schemaAddr, "trainee",
		issued+day, strconv.FormatInt(issued+90*day, 10),
		fmt.Sprintf("%d:%s:trainee-b", grantKind, instructor))

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+2*day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusInvalid, result.Status)
	assert.Contains(t, result.Reason, "not authorized")
}

func TestVerifyScopeViolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	instructor := pubkey(0x03)
	other := pubkey(0x05)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)

	// mentor may be issued by instructors per issued_by, but instructor's
	// scope does not include it
	doc := dojoSchema()
	doc.Classes["mentor"] = core.ClassDefinition{
		Name:     "Mentor",
		Scope:    []string{},
		IssuedBy: []string{"instructor"},
		Expiry:   core.ExpiryPolicy{MaxDays: intPtr(90)},
	}
	f.addSchema(schemaAddr, doc)

	issued := int64(1700000000)
	grantKind := f.config.Kinds.CredentialGrant

	f.addCredential(core.Credential{
		EventID: eventID(0x12), DTag: "inst-a", Issuer: director, Recipient: instructor,
		SchemaAddr: schemaAddr, Class: "instructor", IssuedAt: issued,
		ExpiresAt: intPtr(issued + 180*day),
	})

	ev := f.grantEvent(instructor, "mentor-m", other, schemaAddr, "mentor",
		issued+day, strconv.FormatInt(issued+90*day, 10),
		fmt.Sprintf("%d:%s:inst-a", grantKind, director))

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+2*day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusInvalid, result.Status)
	assert.Contains(t, result.Reason, "scope")
}

func TestVerifyIssuerExpiredAtIssuance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	instructor := pubkey(0x03)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)
	grantKind := f.config.Kinds.CredentialGrant

	// the director credential lapsed after 30 days
	f.addCredential(core.Credential{
		EventID: eventID(0x11), DTag: "dir-d", Issuer: root, Recipient: director,
		SchemaAddr: schemaAddr, Class: "director", IssuedAt: issued,
		ExpiresAt: intPtr(issued + 30*day),
	})

	// 60 days later the director still signs a grant
	ev := f.grantEvent(director, "inst-a", instructor, schemaAddr, "instructor",
		issued+60*day, strconv.FormatInt(issued+120*day, 10),
		fmt.Sprintf("%d:%s:dir-d", grantKind, root))

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+61*day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusInvalid, result.Status)
	assert.Contains(t, result.Reason, "expired at issuance")
}

func TestVerifyRevoked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)

	ev := f.grantEvent(root, "dir-d", director, schemaAddr, "director",
		issued, strconv.FormatInt(issued+365*day, 10), "")

	f.addCredential(core.Credential{
		EventID: ev.ID, DTag: "dir-d", Issuer: root, Recipient: director,
		SchemaAddr: schemaAddr, Class: "director", IssuedAt: issued,
		ExpiresAt: intPtr(issued + 365*day),
		Revoked:   true, RevokedAt: intPtr(issued + 10*day), RevokeReason: "misconduct",
	})

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+20*day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusRevoked, result.Status)
	assert.Equal(t, issued+10*day, result.RevokedAt)
	assert.Equal(t, "misconduct", result.Reason)
}

func TestVerifyExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)
	expires := issued + 30*day

	ev := f.grantEvent(root, "dir-d", director, schemaAddr, "director",
		issued, strconv.FormatInt(expires, 10), "")

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+60*day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusExpired, result.Status)
	assert.Equal(t, expires, result.ExpiredAt)
}

func TestVerifyRenewalResurrects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)
	now := issued + 60*day

	// the grant event itself carries an expiry 30 days in the past, but a
	// renewal pushed the indexed expiry a year out
	ev := f.grantEvent(root, "dir-d", director, schemaAddr, "director",
		issued, strconv.FormatInt(issued+30*day, 10), "")

	f.addCredential(core.Credential{
		EventID: ev.ID, DTag: "dir-d", Issuer: root, Recipient: director,
		SchemaAddr: schemaAddr, Class: "director", IssuedAt: issued,
		ExpiresAt: intPtr(now + 365*day),
	})

	result, err := f.service.Verify(ctx, ev, time.Unix(now, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusValid, result.Status)
}

func TestVerifyCascadeSemantics(t *testing.T) {
	issued := int64(1700000000)

	cases := []struct {
		name      string
		cascade   bool
		revokedAt int64
		expect    core.VerifyStatus
	}{
		{"cascade off, revoked after downstream", false, issued + 10*day, core.VerifyStatusValid},
		{"cascade on, revoked after downstream", true, issued + 10*day, core.VerifyStatusValid},
		{"cascade on, revoked before downstream", true, issued + day, core.VerifyStatusInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			root := pubkey(0x01)
			director := pubkey(0x02)
			instructor := pubkey(0x03)
			schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)

			doc := dojoSchema()
			class := doc.Classes["director"]
			class.CascadeRevoke = tc.cascade
			doc.Classes["director"] = class
			f.addSchema(schemaAddr, doc)

			grantKind := f.config.Kinds.CredentialGrant

			f.addCredential(core.Credential{
				EventID: eventID(0x11), DTag: "dir-d", Issuer: root, Recipient: director,
				SchemaAddr: schemaAddr, Class: "director", IssuedAt: issued,
				ExpiresAt: intPtr(issued + 365*day),
				Revoked:   true, RevokedAt: intPtr(tc.revokedAt), RevokeReason: "misconduct",
			})

			// downstream issued on day 5
			ev := f.grantEvent(director, "inst-a", instructor, schemaAddr, "instructor",
				issued+5*day, strconv.FormatInt(issued+100*day, 10),
				fmt.Sprintf("%d:%s:dir-d", grantKind, root))

			result, err := f.service.Verify(ctx, ev, time.Unix(issued+20*day, 0))
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, result.Status)
			if tc.expect == core.VerifyStatusInvalid {
				assert.Contains(t, result.Reason, "cascade")
			}
		})
	}
}

func TestVerifyCrossSchemaForgery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	instructor := pubkey(0x03)
	schemaOne := fmt.Sprintf("%d:%s:dojo-one", f.config.Kinds.SchemaDefinition, root)
	schemaTwo := fmt.Sprintf("%d:%s:dojo-two", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaOne, dojoSchema())
	f.addSchema(schemaTwo, dojoSchema())

	issued := int64(1700000000)
	grantKind := f.config.Kinds.CredentialGrant

	// the issuer's credential lives under schema one
	f.addCredential(core.Credential{
		EventID: eventID(0x11), DTag: "dir-d", Issuer: root, Recipient: director,
		SchemaAddr: schemaOne, Class: "director", IssuedAt: issued,
		ExpiresAt: intPtr(issued + 365*day),
	})

	// but the downstream grant cites schema two
	ev := f.grantEvent(director, "inst-a", instructor, schemaTwo, "instructor",
		issued+day, strconv.FormatInt(issued+100*day, 10),
		fmt.Sprintf("%d:%s:dir-d", grantKind, root))

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+2*day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusInvalid, result.Status)
	assert.Contains(t, result.Reason, "crosses schemas")
}

func TestVerifyChainTooDeep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	schemaAddr := fmt.Sprintf("%d:%s:officers", f.config.Kinds.SchemaDefinition, root)

	// officers may appoint officers, anchored at the root
	f.addSchema(schemaAddr, core.SchemaDocument{
		Classes: map[string]core.ClassDefinition{
			"officer": {
				Name:     "Officer",
				Scope:    []string{"officer"},
				IssuedBy: []string{core.IssuedByRoot, "officer"},
				Expiry:   core.ExpiryPolicy{MaxDays: nil, Renewable: false},
			},
		},
	})

	issued := int64(1700000000)
	grantKind := f.config.Kinds.CredentialGrant

	// root -> p8 -> p7 -> ... -> p1, eight hops from the leaf
	members := make([]string, 10)
	for i := 1; i <= 9; i++ {
		members[i] = pubkey(byte(0x10 + i))
	}

	f.addCredential(core.Credential{
		EventID: eventID(0x28), DTag: "officer-8", Issuer: root, Recipient: members[8],
		SchemaAddr: schemaAddr, Class: "officer", IssuedAt: issued,
	})
	for i := 7; i >= 1; i-- {
		author := members[i+2]
		if i == 7 {
			author = root
		}
		f.addCredential(core.Credential{
			EventID: eventID(byte(0x20 + i)), DTag: fmt.Sprintf("officer-%d", i),
			Issuer: members[i+1], Recipient: members[i],
			SchemaAddr: schemaAddr, Class: "officer", IssuedAt: issued + int64(8-i)*day,
			ChainRef: fmt.Sprintf("%d:%s:officer-%d", grantKind, author, i+1),
		})
	}

	ev := f.grantEvent(members[1], "officer-0", members[8], schemaAddr, "officer",
		issued+10*day, core.ExpiresPerpetual,
		fmt.Sprintf("%d:%s:officer-1", grantKind, members[2]))

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+11*day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusInvalid, result.Status)
	assert.Contains(t, result.Reason, "chain too deep")
}

func TestVerifyChainCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	alice := pubkey(0x0a)
	bob := pubkey(0x0b)
	schemaAddr := fmt.Sprintf("%d:%s:officers", f.config.Kinds.SchemaDefinition, root)

	f.addSchema(schemaAddr, core.SchemaDocument{
		Classes: map[string]core.ClassDefinition{
			"officer": {
				Name:     "Officer",
				Scope:    []string{"officer"},
				IssuedBy: []string{core.IssuedByRoot, "officer"},
				Expiry:   core.ExpiryPolicy{MaxDays: nil},
			},
		},
	})

	issued := int64(1700000000)
	grantKind := f.config.Kinds.CredentialGrant

	// alice and bob appoint each other
	f.addCredential(core.Credential{
		EventID: eventID(0x31), DTag: "officer-a", Issuer: bob, Recipient: alice,
		SchemaAddr: schemaAddr, Class: "officer", IssuedAt: issued,
		ChainRef: fmt.Sprintf("%d:%s:officer-b", grantKind, alice),
	})
	f.addCredential(core.Credential{
		EventID: eventID(0x32), DTag: "officer-b", Issuer: alice, Recipient: bob,
		SchemaAddr: schemaAddr, Class: "officer", IssuedAt: issued,
		ChainRef: fmt.Sprintf("%d:%s:officer-a", grantKind, bob),
	})

	ev := f.grantEvent(alice, "officer-c", pubkey(0x0c), schemaAddr, "officer",
		issued+day, core.ExpiresPerpetual,
		fmt.Sprintf("%d:%s:officer-a", grantKind, bob))

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+2*day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusInvalid, result.Status)
	assert.Contains(t, result.Reason, "cycle")
}

func TestVerifyMissingChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	instructor := pubkey(0x03)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)

	ev := f.grantEvent(director, "inst-a", instructor, schemaAddr, "instructor",
		issued, strconv.FormatInt(issued+100*day, 10), "")

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusInvalid, result.Status)
	assert.Contains(t, result.Reason, "without chain reference")
}

func TestVerifyChainPubkeyMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	instructor := pubkey(0x03)
	impostor := pubkey(0x06)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)
	grantKind := f.config.Kinds.CredentialGrant

	f.addCredential(core.Credential{
		EventID: eventID(0x11), DTag: "dir-d", Issuer: root, Recipient: director,
		SchemaAddr: schemaAddr, Class: "director", IssuedAt: issued,
		ExpiresAt: intPtr(issued + 365*day),
	})

	// the impostor cites the director's credential as their own
	ev := f.grantEvent(impostor, "inst-a", instructor, schemaAddr, "instructor",
		issued+day, strconv.FormatInt(issued+100*day, 10),
		fmt.Sprintf("%d:%s:dir-d", grantKind, root))

	result, err := f.service.Verify(ctx, ev, time.Unix(issued+2*day, 0))
	assert.NoError(t, err)
	assert.Equal(t, core.VerifyStatusInvalid, result.Status)
	assert.Contains(t, result.Reason, "pubkey mismatch")
}

func TestValidateGrant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)

	ok := f.grantEvent(root, "dir-d", director, schemaAddr, "director",
		issued, strconv.FormatInt(issued+365*day, 10), "")
	assert.NoError(t, f.service.ValidateGrant(ctx, ok))

	// missing required tag
	missing := ok
	missing.Tags = core.TagList{{"d", "dir-d"}}
	err := f.service.ValidateGrant(ctx, missing)
	assert.Error(t, err)

	// unknown schema
	unknown := f.grantEvent(root, "dir-d", director,
		fmt.Sprintf("%d:%s:nope", f.config.Kinds.SchemaDefinition, root),
		"director", issued, strconv.FormatInt(issued+day, 10), "")
	err = f.service.ValidateGrant(ctx, unknown)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "schema not found")
	}

	// unknown class
	badClass := f.grantEvent(root, "dir-d", director, schemaAddr, "shogun",
		issued, strconv.FormatInt(issued+day, 10), "")
	err = f.service.ValidateGrant(ctx, badClass)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "not found in schema")
	}

	// expiry beyond the class bound
	tooLong := f.grantEvent(root, "dir-d", director, schemaAddr, "director",
		issued, strconv.FormatInt(issued+366*day, 10), "")
	err = f.service.ValidateGrant(ctx, tooLong)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "exceeds maximum")
	}

	// perpetual grant against a bounded class
	perpetual := f.grantEvent(root, "dir-d", director, schemaAddr, "director",
		issued, core.ExpiresPerpetual, "")
	err = f.service.ValidateGrant(ctx, perpetual)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "perpetual")
	}

	// non-root issuer without a chain reference
	chainless := f.grantEvent(director, "inst-a", pubkey(0x03), schemaAddr, "instructor",
		issued, strconv.FormatInt(issued+day, 10), "")
	err = f.service.ValidateGrant(ctx, chainless)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "chain")
	}
}

func TestValidateRevocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	instructor := pubkey(0x03)
	stranger := pubkey(0x07)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)
	grantKind := f.config.Kinds.CredentialGrant

	f.addCredential(core.Credential{
		EventID: eventID(0x11), DTag: "dir-d", Issuer: root, Recipient: director,
		SchemaAddr: schemaAddr, Class: "director", IssuedAt: issued,
	})
	f.addCredential(core.Credential{
		EventID: eventID(0x12), DTag: "inst-a", Issuer: director, Recipient: instructor,
		SchemaAddr: schemaAddr, Class: "instructor", IssuedAt: issued + day,
		ChainRef: fmt.Sprintf("%d:%s:dir-d", grantKind, root),
	})

	revocation := func(author string) core.Event {
		return core.Event{
			ID: eventID(0x40), Pubkey: author, CreatedAt: issued + 10*day,
			Kind: f.config.Kinds.Revocation,
			Tags: core.TagList{
				{"a", fmt.Sprintf("%d:%s:inst-a", grantKind, director)},
				{"reason", "misconduct"},
			},
		}
	}

	// the issuer, an upstream issuer, and the schema authority may revoke
	assert.NoError(t, f.service.ValidateRevocation(ctx, revocation(director)))
	assert.NoError(t, f.service.ValidateRevocation(ctx, revocation(root)))

	err := f.service.ValidateRevocation(ctx, revocation(stranger))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "no authority")
	}
}

func TestValidateRenewal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := pubkey(0x01)
	director := pubkey(0x02)
	instructor := pubkey(0x03)
	trainee := pubkey(0x04)
	schemaAddr := fmt.Sprintf("%d:%s:dojo", f.config.Kinds.SchemaDefinition, root)
	f.addSchema(schemaAddr, dojoSchema())

	issued := int64(1700000000)
	grantKind := f.config.Kinds.CredentialGrant

	f.addCredential(core.Credential{
		EventID: eventID(0x11), DTag: "dir-d", Issuer: root, Recipient: director,
		SchemaAddr: schemaAddr, Class: "director", IssuedAt: issued,
	})
	f.addCredential(core.Credential{
		EventID: eventID(0x13), DTag: "trainee-b", Issuer: instructor, Recipient: trainee,
		SchemaAddr: schemaAddr, Class: "trainee", IssuedAt: issued,
	})
	f.addCredential(core.Credential{
		EventID: eventID(0x14), DTag: "dir-r", Issuer: root, Recipient: pubkey(0x08),
		SchemaAddr: schemaAddr, Class: "director", IssuedAt: issued,
		Revoked: true, RevokedAt: intPtr(issued + day), RevokeReason: "misconduct",
	})

	renewal := func(target string) core.Event {
		return core.Event{
			ID: eventID(0x41), Pubkey: root, CreatedAt: issued + 10*day,
			Kind: f.config.Kinds.Renewal,
			Tags: core.TagList{
				{"a", target},
				{"expires", strconv.FormatInt(issued+400*day, 10)},
			},
		}
	}

	assert.NoError(t, f.service.ValidateRenewal(ctx,
		renewal(fmt.Sprintf("%d:%s:dir-d", grantKind, root))))

	// trainee is marked non-renewable in the schema
	err := f.service.ValidateRenewal(ctx,
		renewal(fmt.Sprintf("%d:%s:trainee-b", grantKind, instructor)))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "not renewable")
	}

	// revoked grants cannot be renewed
	err = f.service.ValidateRenewal(ctx,
		renewal(fmt.Sprintf("%d:%s:dir-r", grantKind, root)))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "revoked")
	}
}
