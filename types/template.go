package types

import "time"

// ListingTemplate is the local, mutable draft of a listing. Once Hash is set the
// hashable fields must not change anymore.
type ListingTemplate struct {
	ID          uint64              `json:"id"`
	ProfileID   uint64              `json:"profileId"`
	Hash        string              `json:"hash"`
	Information *ItemInformation    `json:"itemInformation"`
	Payment     *PaymentInformation `json:"paymentInformation"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type ItemInformation struct {
	Title            string        `json:"title"`
	ShortDescription string        `json:"shortDescription"`
	LongDescription  string        `json:"longDescription"`
	Category         *ItemCategory `json:"itemCategory"`
	Images           []Image       `json:"images"`
}

type ItemCategory struct {
	Key  string   `json:"key"`
	Name string   `json:"name"`
	Path []string `json:"path"`
}

type Image struct {
	ID   uint64    `json:"id"`
	Hash string    `json:"hash"`
	Data ImageData `json:"data"`
}

type ImageProtocol string

const (
	ImageProtocolLocal   ImageProtocol = "LOCAL"
	ImageProtocolRequest ImageProtocol = "REQUEST"
	ImageProtocolSmsg    ImageProtocol = "SMSG"
	ImageProtocolURL     ImageProtocol = "URL"
)

type ImageData struct {
	Protocol ImageProtocol `json:"protocol"`
	Encoding string        `json:"encoding"`
	Data     string        `json:"data"`
}

type PaymentInformation struct {
	Type      SaleType   `json:"type"`
	Escrow    *Escrow    `json:"escrow"`
	ItemPrice *ItemPrice `json:"itemPrice"`
}

type Escrow struct {
	Type        EscrowScheme      `json:"type"`
	Ratio       EscrowRatio       `json:"ratio"`
	ReleaseType EscrowReleaseType `json:"releaseType"`
}

type EscrowRatio struct {
	Buyer  float64 `json:"buyer"`
	Seller float64 `json:"seller"`
}

type ItemPrice struct {
	Currency       Cryptocurrency  `json:"currency"`
	BasePrice      float64         `json:"basePrice"`
	ShippingPrice  ShippingPrice   `json:"shippingPrice"`
	PaymentAddress *PaymentAddress `json:"cryptocurrencyAddress"`
}

type ShippingPrice struct {
	Domestic      float64 `json:"domestic"`
	International float64 `json:"international"`
}

func (t *ListingTemplate) Frozen() bool {
	return t.Hash != ""
}

// PaymentAddress returns the attached payment address or nil.
func (t *ListingTemplate) PaymentAddress() *PaymentAddress {
	if t.Payment == nil || t.Payment.ItemPrice == nil || t.Payment.ItemPrice.PaymentAddress.Empty() {
		return nil
	}
	return t.Payment.ItemPrice.PaymentAddress
}

// EscrowScheme returns the configured escrow scheme, MAD_CT when unset.
func (t *ListingTemplate) EscrowScheme() EscrowScheme {
	if t.Payment == nil || t.Payment.Escrow == nil || t.Payment.Escrow.Type == "" {
		return EscrowConfidential
	}
	return t.Payment.Escrow.Type
}

func (t *ListingTemplate) Images() []Image {
	if t.Information == nil {
		return nil
	}
	return t.Information.Images
}

// CheckComplete reports the first required sub-entity missing for a post.
func (t *ListingTemplate) CheckComplete() error {
	switch {
	case t.Payment == nil:
		return &ModelNotFoundError{Model: "PaymentInformation"}
	case t.Payment.ItemPrice == nil:
		return &ModelNotFoundError{Model: "ItemPrice"}
	case t.Information == nil || t.Information.Category == nil || t.Information.Category.Key == "":
		return &ModelNotFoundError{Model: "ItemCategory"}
	}
	return nil
}
