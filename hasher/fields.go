package hasher

import (
	"strconv"
	"strings"

	"github.com/calehh/hac-market/types"
)

const (
	FieldTitle                 = "item.title"
	FieldShortDescription      = "item.shortDescription"
	FieldLongDescription       = "item.longDescription"
	FieldCategory              = "item.category"
	FieldSaleType              = "payment.type"
	FieldEscrowType            = "payment.escrow.type"
	FieldEscrowRatioBuyer      = "payment.escrow.ratio.buyer"
	FieldEscrowRatioSeller     = "payment.escrow.ratio.seller"
	FieldEscrowReleaseType     = "payment.escrow.releaseType"
	FieldCurrency              = "payment.price.currency"
	FieldBasePrice             = "payment.price.basePrice"
	FieldShippingDomestic      = "payment.price.shipping.domestic"
	FieldShippingInternational = "payment.price.shipping.international"
	FieldPaymentAddress        = "payment.address"
	FieldPaymentAddressType    = "payment.address.type"

	FieldProposalSubmitter   = "proposal.submitter"
	FieldProposalCategory    = "proposal.category"
	FieldProposalTitle       = "proposal.title"
	FieldProposalDescription = "proposal.description"
	FieldProposalTarget      = "proposal.target"
	FieldProposalOptions     = "proposal.options"
	FieldProposalMarket      = "proposal.market"

	FieldOptionID           = "proposalOption.optionId"
	FieldOptionDescription  = "proposalOption.description"
	FieldOptionProposalHash = "proposalOption.proposalHash"

	FieldImageProtocol = "image.protocol"
	FieldImageEncoding = "image.encoding"
	FieldImageData     = "image.data"
)

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ListingTemplateFields extracts the semantic fields of a draft. Ids,
// timestamps, the hash itself and the images are not part of it.
func ListingTemplateFields(t *types.ListingTemplate) Fields {
	f := Fields{
		FieldTitle:                 "",
		FieldShortDescription:      "",
		FieldLongDescription:       "",
		FieldCategory:              "",
		FieldSaleType:              "",
		FieldEscrowType:            "",
		FieldEscrowRatioBuyer:      "",
		FieldEscrowRatioSeller:     "",
		FieldEscrowReleaseType:     "",
		FieldCurrency:              "",
		FieldBasePrice:             "",
		FieldShippingDomestic:      "",
		FieldShippingInternational: "",
		FieldPaymentAddress:        "",
		FieldPaymentAddressType:    "",
	}
	if info := t.Information; info != nil {
		f[FieldTitle] = info.Title
		f[FieldShortDescription] = info.ShortDescription
		f[FieldLongDescription] = info.LongDescription
		if info.Category != nil {
			f[FieldCategory] = info.Category.Key
		}
	}
	if pay := t.Payment; pay != nil {
		f[FieldSaleType] = string(pay.Type)
		if e := pay.Escrow; e != nil {
			f[FieldEscrowType] = string(e.Type)
			f[FieldEscrowRatioBuyer] = number(e.Ratio.Buyer)
			f[FieldEscrowRatioSeller] = number(e.Ratio.Seller)
			f[FieldEscrowReleaseType] = string(e.ReleaseType)
		}
		if p := pay.ItemPrice; p != nil {
			f[FieldCurrency] = string(p.Currency)
			f[FieldBasePrice] = number(p.BasePrice)
			f[FieldShippingDomestic] = number(p.ShippingPrice.Domestic)
			f[FieldShippingInternational] = number(p.ShippingPrice.International)
			if !p.PaymentAddress.Empty() {
				f[FieldPaymentAddress] = p.PaymentAddress.Address
				f[FieldPaymentAddressType] = string(p.PaymentAddress.Type)
			}
		}
	}
	return f
}

// ListingTemplateHash is the freeze hash of a draft.
func ListingTemplateHash(t *types.ListingTemplate) string {
	return Hash(ListingTemplateFields(t))
}

// ProposalAddFields excludes the options and the market; both are supplied
// as overrides by the message builder.
func ProposalAddFields(m *types.ProposalAddMessage) Fields {
	return Fields{
		FieldProposalSubmitter:   m.Submitter,
		FieldProposalCategory:    string(m.Category),
		FieldProposalTitle:       m.Title,
		FieldProposalDescription: m.Description,
		FieldProposalTarget:      m.Target,
	}
}

func ProposalOptionFields(o *types.ProposalOption) Fields {
	return Fields{
		FieldOptionID:          strconv.Itoa(o.OptionID),
		FieldOptionDescription: o.Description,
	}
}

// ProposalOptionsValue flattens options into "<id>:<description>:" segments.
func ProposalOptionsValue(options []types.ProposalOption) string {
	var sb strings.Builder
	for _, o := range options {
		sb.WriteString(strconv.Itoa(o.OptionID))
		sb.WriteString(":")
		sb.WriteString(o.Description)
		sb.WriteString(":")
	}
	return sb.String()
}

func ImageFields(d types.ImageData) Fields {
	return Fields{
		FieldImageProtocol: string(d.Protocol),
		FieldImageEncoding: d.Encoding,
		FieldImageData:     d.Data,
	}
}

// ImageHash content-addresses image data.
func ImageHash(d types.ImageData) string {
	return Hash(ImageFields(d))
}
