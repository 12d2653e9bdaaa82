package crypto

import (
	"errors"
	"fmt"
	"os"

	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	"github.com/cometbft/cometbft/privval"
)

var ErrInvalidSignature = errors.New("invalid signature")

// PV is the node key signing outbound envelopes.
type PV struct {
	privateKey crypto.PrivKey
	publicKey  crypto.PubKey
}

func NewPV(priv crypto.PrivKey) *PV {
	return &PV{
		privateKey: priv,
		publicKey:  priv.PubKey(),
	}
}

// GenPV creates a fresh ed25519 node key.
func GenPV() *PV {
	return NewPV(ed25519.GenPrivKey())
}

func LoadFilePV(keyFilePath string) (*PV, error) {
	keyJSONBytes, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, err
	}
	pvKey := privval.FilePVKey{}
	err = cmtjson.Unmarshal(keyJSONBytes, &pvKey)
	if err != nil {
		return nil, fmt.Errorf("error reading node key from %v: %w", keyFilePath, err)
	}

	return &PV{
		privateKey: pvKey.PrivKey,
		publicKey:  pvKey.PubKey,
	}, nil
}

// Save writes the key in the privval key file format.
func (k *PV) Save(keyFilePath string) error {
	pvKey := privval.FilePVKey{
		Address: k.publicKey.Address(),
		PubKey:  k.publicKey,
		PrivKey: k.privateKey,
	}
	dat, err := cmtjson.MarshalIndent(pvKey, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(keyFilePath, dat, 0o600)
}

func (k *PV) PublicKey() []byte {
	return k.publicKey.Bytes()
}

func (k *PV) Address() string {
	return k.publicKey.Address().String()
}

func (k *PV) Sign(data []byte) ([]byte, error) {
	return k.privateKey.Sign(data)
}

// Verify checks sig against an ed25519 public key.
func Verify(pubkey []byte, data []byte, sig []byte) error {
	if len(pubkey) != ed25519.PubKeySize {
		return ErrInvalidSignature
	}
	if !ed25519.PubKey(pubkey).VerifySignature(data, sig) {
		return ErrInvalidSignature
	}
	return nil
}
