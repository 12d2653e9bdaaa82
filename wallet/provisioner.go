package wallet

import (
	"context"

	"github.com/calehh/hac-market/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// Wallet is the node capability deriving fresh receive addresses.
type Wallet interface {
	NewAddress(ctx context.Context, wallet string) (string, error)
	NewStealthAddress(ctx context.Context, wallet string) (types.PaymentAddress, error)
}

// Provisioner produces the payment address an escrow scheme requires.
type Provisioner struct {
	logger cmtlog.Logger
	wallet Wallet
}

func NewProvisioner(w Wallet, logger cmtlog.Logger) (p *Provisioner) {
	p = &Provisioner{
		logger: logger.With("module", "provisioner"),
		wallet: w,
	}
	return
}

// Provision makes exactly one wallet call for the supported schemes. Wallet
// errors are returned as is.
func (p *Provisioner) Provision(ctx context.Context, wallet string, scheme types.EscrowScheme) (addr types.PaymentAddress, err error) {
	switch scheme {
	case types.EscrowMultisig:
		var a string
		a, err = p.wallet.NewAddress(ctx, wallet)
		if err != nil {
			p.logger.Error("new address fail", "wallet", wallet, "err", err)
			return
		}
		addr = types.PaymentAddress{Address: a, Type: types.AddressTypeNormal}
	case types.EscrowConfidential:
		addr, err = p.wallet.NewStealthAddress(ctx, wallet)
		if err != nil {
			p.logger.Error("new stealth address fail", "wallet", wallet, "err", err)
			return
		}
	default:
		err = &types.NotImplementedError{Scheme: string(scheme)}
		return
	}
	p.logger.Debug("payment address provisioned", "wallet", wallet, "scheme", scheme, "type", addr.Type)
	return
}
