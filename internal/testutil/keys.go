package testutil

import (
	"encoding/hex"
	"log"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// GenerateKeyPair returns a fresh (privatekey, pubkey) hex pair for
// signing test events.
func GenerateKeyPair() (string, string) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		log.Fatalf("Could not generate key: %s", err)
	}

	privHex := hex.EncodeToString(priv.Serialize())
	pubHex := hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey()))

	return privHex, pubHex
}
