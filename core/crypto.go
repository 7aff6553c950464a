package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/pkg/errors"
)

// SerializeEvent produces the canonical form an event id is computed over:
// the JSON array [0, pubkey, created_at, kind, tags, content] with minimal
// whitespace and tag order preserved.
func SerializeEvent(ev Event) ([]byte, error) {
	tags := ev.Tags
	if tags == nil {
		tags = TagList{}
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode([]any{0, ev.Pubkey, ev.CreatedAt, ev.Kind, tags, ev.Content})
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize event")
	}

	// Encode appends a newline
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// GetEventID computes the event identifier: lowercase hex SHA-256 of the
// canonical serialization.
func GetEventID(ev Event) (string, error) {
	serialized, err := SerializeEvent(ev)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(serialized)
	return hex.EncodeToString(hash[:]), nil
}

// VerifySignature checks a BIP-340 schnorr signature over the 32 byte event
// id against an x-only public key. Any decoding failure counts as invalid.
func VerifySignature(id string, signature string, pubkey string) error {
	idBytes, err := hex.DecodeString(id)
	if err != nil {
		return errors.Wrap(err, "failed to decode event id")
	}

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return errors.Wrap(err, "failed to decode signature")
	}

	pubkeyBytes, err := hex.DecodeString(pubkey)
	if err != nil {
		return errors.Wrap(err, "failed to decode public key")
	}

	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return errors.Wrap(err, "failed to parse signature")
	}

	pk, err := schnorr.ParsePubKey(pubkeyBytes)
	if err != nil {
		return errors.Wrap(err, "failed to parse public key")
	}

	if !sig.Verify(idBytes, pk) {
		return errors.New("signature is not matched with pubkey")
	}

	return nil
}

// SignEvent fills in Pubkey, ID and Sig from the given private key.
// Used by tests; the relay itself only verifies.
func SignEvent(ev *Event, privatekey string) error {
	keyBytes, err := hex.DecodeString(privatekey)
	if err != nil {
		return errors.Wrap(err, "failed to decode private key")
	}

	priv, _ := btcec.PrivKeyFromBytes(keyBytes)
	ev.Pubkey = hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey()))

	id, err := GetEventID(*ev)
	if err != nil {
		return err
	}
	ev.ID = id

	idBytes, err := hex.DecodeString(id)
	if err != nil {
		return errors.Wrap(err, "failed to decode event id")
	}

	sig, err := schnorr.Sign(priv, idBytes)
	if err != nil {
		return errors.Wrap(err, "failed to sign event")
	}
	ev.Sig = hex.EncodeToString(sig.Serialize())

	return nil
}
