// Package minerkey is the "wallet/signer" collaborator named in
// spec.md §6.1's external-interfaces list: it owns the miner's keypair
// and hands the block template builder an opaque public-key byte
// string to stamp into a candidate header's Miner field. It sits
// outside the consensus trust boundary entirely — nothing here
// validates a block or derives a consensus field. Grounded on the
// teacher's domain/txscript/sign.go and cmd/txsigner's use of
// go-secp256k1 (GeneratePrivateKey, SchnorrPublicKey,
// SerializeCompressed) for exactly this key-to-bytes step.
package minerkey

import (
	"encoding/hex"

	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

// Key holds a miner's Schnorr keypair and its serialized public key,
// the byte string a DomainCoinbaseData.ScriptPublicKey carries.
type Key struct {
	private          *secp256k1.PrivateKey
	serializedPublic []byte
}

// Generate creates a fresh miner keypair.
func Generate() (*Key, error) {
	private, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generating miner private key")
	}
	return fromPrivateKey(private)
}

// Load reconstructs a miner's keypair from a hex-encoded private key,
// the format cmd/consensusd's --miner-key flag accepts.
func Load(privateKeyHex string) (*Key, error) {
	privateKeyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, errors.Wrapf(err, "%q is not valid hex", privateKeyHex)
	}
	private, err := secp256k1.DeserializePrivateKeyFromSlice(privateKeyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "deserializing miner private key")
	}
	return fromPrivateKey(private)
}

func fromPrivateKey(private *secp256k1.PrivateKey) (*Key, error) {
	public, err := private.SchnorrPublicKey()
	if err != nil {
		return nil, errors.Wrap(err, "deriving miner public key")
	}
	serialized, err := public.SerializeCompressed()
	if err != nil {
		return nil, errors.Wrap(err, "serializing miner public key")
	}
	return &Key{private: private, serializedPublic: serialized}, nil
}

// ScriptPublicKey returns the opaque bytes a block template builder
// stamps into a candidate header's Miner field. Consensus code never
// interprets these bytes; it only carries them.
func (k *Key) ScriptPublicKey() []byte {
	return append([]byte(nil), k.serializedPublic...)
}
