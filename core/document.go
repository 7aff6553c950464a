package core

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ExpiresPerpetual is the sentinel value of the expires tag for grants
// without an expiry. Only allowed when the class has no max_days bound.
const ExpiresPerpetual = "perpetual"

// IssuedByRoot marks a class issuable directly by the schema authority.
const IssuedByRoot = "root"

// SchemaDocument is the content of a schema definition event.
type SchemaDocument struct {
	Classes map[string]ClassDefinition `json:"classes"`
}

type ClassDefinition struct {
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Scope         []string       `json:"scope"`
	IssuedBy      []string       `json:"issued_by"`
	Expiry        ExpiryPolicy   `json:"expiry"`
	CascadeRevoke bool           `json:"cascade_revoke"`
	Constraints   map[string]any `json:"constraints,omitempty"`
}

type ExpiryPolicy struct {
	MaxDays   *int64 `json:"max_days"`
	Renewable bool   `json:"renewable"`
}

func (c ClassDefinition) HasScope(classID string) bool {
	for _, s := range c.Scope {
		if s == classID {
			return true
		}
	}
	return false
}

func (c ClassDefinition) IsIssuedBy(classID string) bool {
	for _, s := range c.IssuedBy {
		if s == classID {
			return true
		}
	}
	return false
}

func ParseSchemaDocument(content string) (SchemaDocument, error) {
	var doc SchemaDocument
	err := json.Unmarshal([]byte(content), &doc)
	if err != nil {
		return SchemaDocument{}, errors.Wrap(err, "failed to parse schema document")
	}
	return doc, nil
}

// VerifyStatus is the outcome class of a chain verification.
type VerifyStatus string

const (
	VerifyStatusValid   VerifyStatus = "VALID"
	VerifyStatusInvalid VerifyStatus = "INVALID"
	VerifyStatusExpired VerifyStatus = "EXPIRED"
	VerifyStatusRevoked VerifyStatus = "REVOKED"
)

type VerifyResult struct {
	Status     VerifyStatus `json:"status"`
	ChainDepth int          `json:"chainDepth"`
	Reason     string       `json:"reason,omitempty"`
	ExpiredAt  int64        `json:"expiredAt,omitempty"`
	RevokedAt  int64        `json:"revokedAt,omitempty"`
}

func VerifyValid(depth int) VerifyResult {
	return VerifyResult{Status: VerifyStatusValid, ChainDepth: depth}
}

func VerifyInvalid(reason string) VerifyResult {
	return VerifyResult{Status: VerifyStatusInvalid, Reason: reason}
}

func VerifyExpired(expiredAt int64) VerifyResult {
	return VerifyResult{Status: VerifyStatusExpired, ExpiredAt: expiredAt}
}

func VerifyRevoked(revokedAt int64, reason string) VerifyResult {
	return VerifyResult{Status: VerifyStatusRevoked, RevokedAt: revokedAt, Reason: reason}
}
