package types

type MarketType string

const (
	// MarketTypeMarketplace uses the same key for receive and publish.
	MarketTypeMarketplace MarketType = "MARKETPLACE"
	// MarketTypeStorefront receives with the private key and publishes with the public key.
	MarketTypeStorefront MarketType = "STOREFRONT"
	// MarketTypeStorefrontAdmin uses different receive and publish keys.
	MarketTypeStorefrontAdmin MarketType = "STOREFRONT_ADMIN"
)

type Identity struct {
	ID      uint64 `json:"id"`
	Wallet  string `json:"wallet"`
	Address string `json:"address"`
}

// Market is the venue a message is published to.
type Market struct {
	ID             uint64     `json:"id"`
	Name           string     `json:"name"`
	Type           MarketType `json:"type"`
	ReceiveAddress string     `json:"receiveAddress"`
	PublishAddress string     `json:"publishAddress"`
	Identity       *Identity  `json:"identity"`
}

// Route returns the from/to pair for a message posted to the market. Every
// market type posts from the publish address to the receive address.
func (m *Market) Route() (from string, to string) {
	return m.PublishAddress, m.ReceiveAddress
}

// Profile owns listing templates.
type Profile struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
