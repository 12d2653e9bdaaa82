package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/calehh/hac-market/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidWalletName = errors.New("invalid wallet name")

const (
	keySuffix     = ".key"
	stealthSubdir = "stealth"
)

// KeyWallet is a file backed development wallet. Every address gets a fresh
// secp256k1 key written to <dir>/<wallet>/.
type KeyWallet struct {
	mtx    sync.Mutex
	dir    string
	logger cmtlog.Logger
}

var _ Wallet = &KeyWallet{}

func NewKeyWallet(dir string, logger cmtlog.Logger) (w *KeyWallet, err error) {
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create directory %q: %w", dir, err)
	}
	w = &KeyWallet{
		dir:    dir,
		logger: logger.With("module", "keywallet"),
	}
	return
}

func (w *KeyWallet) NewAddress(ctx context.Context, wallet string) (string, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}
	addr := crypto.PubkeyToAddress(priv.PublicKey).Hex()
	if err := w.save(wallet, "", addr, hex.EncodeToString(crypto.FromECDSA(priv))); err != nil {
		return "", err
	}
	return addr, nil
}

// NewStealthAddress returns the compressed scan and spend public keys,
// concatenated and hex encoded.
func (w *KeyWallet) NewStealthAddress(ctx context.Context, wallet string) (addr types.PaymentAddress, err error) {
	scan, err := crypto.GenerateKey()
	if err != nil {
		return
	}
	spend, err := crypto.GenerateKey()
	if err != nil {
		return
	}
	pub := append(crypto.CompressPubkey(&scan.PublicKey), crypto.CompressPubkey(&spend.PublicKey)...)
	a := hexutil.Encode(pub)
	body := hex.EncodeToString(crypto.FromECDSA(scan)) + "\n" + hex.EncodeToString(crypto.FromECDSA(spend))
	if err = w.save(wallet, stealthSubdir, a, body); err != nil {
		return
	}
	addr = types.PaymentAddress{Address: a, Type: types.AddressTypeStealth}
	return
}

func (w *KeyWallet) walletDir(wallet string, sub string) (string, error) {
	if wallet == "" || wallet != filepath.Base(wallet) || strings.HasPrefix(wallet, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidWalletName, wallet)
	}
	return filepath.Join(w.dir, wallet, sub), nil
}

func (w *KeyWallet) save(wallet string, sub string, addr string, body string) error {
	dir, err := w.walletDir(wallet, sub)
	if err != nil {
		return err
	}
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create directory %q: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, addr+keySuffix), []byte(body), 0o600); err != nil {
		return err
	}
	w.logger.Info("new key", "wallet", wallet, "address", addr)
	return nil
}
