package types

type EscrowScheme string

const (
	EscrowMultisig EscrowScheme = "MULTISIG"
	// EscrowConfidential is the MAD_CT scheme, paid to a stealth address.
	EscrowConfidential EscrowScheme = "MAD_CT"
	EscrowMAD          EscrowScheme = "MAD"
	EscrowFE           EscrowScheme = "FE"
)

type EscrowReleaseType string

const (
	EscrowReleaseAnon  EscrowReleaseType = "ANON"
	EscrowReleaseBlind EscrowReleaseType = "BLIND"
)

type SaleType string

const SaleTypeSale SaleType = "SALE"

type Cryptocurrency string

const CryptocurrencyPART Cryptocurrency = "PART"

type AddressType string

const (
	AddressTypeNormal  AddressType = "NORMAL"
	AddressTypeStealth AddressType = "STEALTH"
)

// PaymentAddress is owned by the ItemPrice of a draft.
type PaymentAddress struct {
	Address string      `json:"address"`
	Type    AddressType `json:"type"`
}

func (a *PaymentAddress) Empty() bool {
	return a == nil || a.Address == ""
}
