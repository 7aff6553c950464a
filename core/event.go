package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// TagList is the ordered tag matrix of an event. Stored as json.
type TagList [][]string

func (t TagList) Value() (driver.Value, error) {
	return json.Marshal(t)
}

func (t *TagList) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported tag column type %T", value)
	}
}

// Event is the protocol base object
// immutable
type Event struct {
	ID        string  `json:"id" gorm:"primaryKey;type:char(64)"`
	Pubkey    string  `json:"pubkey" gorm:"type:char(64);index"`
	CreatedAt int64   `json:"created_at" gorm:"index"`
	Kind      int     `json:"kind" gorm:"index"`
	Tags      TagList `json:"tags" gorm:"type:json"`
	Content   string  `json:"content" gorm:"type:text"`
	Sig       string  `json:"sig" gorm:"type:char(128)"`

	// projected columns, maintained on insert
	DTag      string         `json:"-" gorm:"type:text;index"`
	ATag      string         `json:"-" gorm:"type:text;index"`
	TagValues pq.StringArray `json:"-" gorm:"type:text[];index:,type:gin"`
	ExpiresAt *int64         `json:"-" gorm:"index"`
}

// FlattenTags projects "name:value" pairs for the indexable single-letter
// tags so queries can match with an array overlap.
func (e Event) FlattenTags() pq.StringArray {
	var values pq.StringArray
	for _, tag := range e.Tags {
		if len(tag) >= 2 && len(tag[0]) == 1 {
			values = append(values, tag[0]+":"+tag[1])
		}
	}
	return values
}

// Tag returns the first tag with the given name, or nil.
func (e Event) Tag(name string) []string {
	for _, tag := range e.Tags {
		if len(tag) > 0 && tag[0] == name {
			return tag
		}
	}
	return nil
}

// TagValue returns the value of the first tag with the given name.
func (e Event) TagValue(name string) (string, bool) {
	tag := e.Tag(name)
	if len(tag) < 2 {
		return "", false
	}
	return tag[1], true
}

const (
	KindProfile  = 0
	KindFollows  = 3
	KindDeletion = 5
)

func IsReplaceableKind(kind int) bool {
	return kind == KindProfile || kind == KindFollows || (10000 <= kind && kind < 20000)
}

func IsEphemeralKind(kind int) bool {
	return 20000 <= kind && kind < 30000
}

func IsParameterizedReplaceableKind(kind int) bool {
	return 30000 <= kind && kind < 40000
}

// Address is the composite cross-event reference "<kind>:<pubkey>:<d-tag>".
// The d-tag component may itself contain colons and is taken verbatim.
type Address struct {
	Kind   int
	Pubkey string
	DTag   string
}

func ParseAddress(s string) (Address, error) {
	split := strings.SplitN(s, ":", 3)
	if len(split) != 3 {
		return Address{}, errors.New("malformed address: " + s)
	}

	kind, err := strconv.Atoi(split[0])
	if err != nil {
		return Address{}, errors.Wrap(err, "malformed address kind")
	}

	return Address{
		Kind:   kind,
		Pubkey: split[1],
		DTag:   split[2],
	}, nil
}

func (a Address) String() string {
	return fmt.Sprintf("%d:%s:%s", a.Kind, a.Pubkey, a.DTag)
}
