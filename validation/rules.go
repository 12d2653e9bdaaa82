package validation

import "github.com/calehh/hac-market/types"

// Shipping address keys a bid must carry when it does not reference a stored
// address.
var ShippingAddressKeys = []string{
	"shippingAddress.firstName",
	"shippingAddress.lastName",
	"shippingAddress.addressLine1",
	"shippingAddress.city",
	"shippingAddress.state",
	"shippingAddress.zipCode",
	"shippingAddress.country",
}

func idRule(name string, required bool, lookup ModelLookup) *IDRule {
	return &IDRule{
		BaseRule: BaseRule{Name: name, Required: required, Type: KindNumber},
		Lookup:   lookup,
	}
}

func ListingItemTemplateID(required bool, lookup ModelLookup) *IDRule {
	return idRule("listingItemTemplateId", required, lookup)
}

func ListingItemID(required bool, lookup ModelLookup) *IDRule {
	return idRule("listingItemId", required, lookup)
}

func MarketID(required bool, lookup ModelLookup) *IDRule {
	return idRule("marketId", required, lookup)
}

func ProfileID(required bool, lookup ModelLookup) *IDRule {
	return idRule("profileId", required, lookup)
}

func IdentityID(required bool, lookup ModelLookup) *IDRule {
	return idRule("identityId", required, lookup)
}

func CategoryID(required bool, lookup ModelLookup) *IDRule {
	return idRule("categoryId", required, lookup)
}

// ID is a generic id parameter, used where the referenced model depends on
// another parameter.
func ID(name string, required bool) *IDRule {
	return idRule(name, required, nil)
}

func String(name string, required bool) *BaseRule {
	return &BaseRule{Name: name, Required: required, Type: KindString}
}

func NonEmptyString(name string, required bool) *NonEmptyStringRule {
	return &NonEmptyStringRule{BaseRule{Name: name, Required: required, Type: KindString}}
}

func Bool(name string, required bool, def bool) *BaseRule {
	return &BaseRule{Name: name, Required: required, Type: KindBoolean, Default: def}
}

func Title(required bool) *BaseRule            { return String("title", required) }
func ShortDescription(required bool) *BaseRule { return String("shortDescription", required) }
func LongDescription(required bool) *BaseRule  { return String("longDescription", required) }

func nonNegative(name string, required bool, def float64) *NonNegativeRule {
	return &NonNegativeRule{BaseRule{Name: name, Required: required, Type: KindNumber, Default: def}}
}

func BasePrice(required bool) *NonNegativeRule { return nonNegative("basePrice", required, 0) }

func DomesticShippingPrice(required bool) *NonNegativeRule {
	return nonNegative("domesticShippingPrice", required, 0)
}

func InternationalShippingPrice(required bool) *NonNegativeRule {
	return nonNegative("internationalShippingPrice", required, 0)
}

func BuyerRatio(required bool) *NonNegativeRule  { return nonNegative("buyerRatio", required, 100) }
func SellerRatio(required bool) *NonNegativeRule { return nonNegative("sellerRatio", required, 100) }

// DaysRetention bounds the retention of a paid message. An absent value
// defaults to the maximum.
func DaysRetention(required bool, maxDays int) *RangeRule {
	return &RangeRule{
		BaseRule: BaseRule{Name: "daysRetention", Required: required, Type: KindNumber, Default: float64(maxDays)},
		Min:      0,
		Max:      float64(maxDays),
	}
}

func EstimateFee() *BaseRule { return Bool("estimateFee", false, false) }

func enumRule(name, enumName string, required bool, def any, values ...string) *EnumRule {
	return &EnumRule{
		BaseRule: BaseRule{Name: name, Required: required, Type: KindString, Default: def},
		EnumName: enumName,
		Values:   values,
	}
}

func SaleType(required bool) *EnumRule {
	return enumRule("saleType", "SaleType", required, string(types.SaleTypeSale), string(types.SaleTypeSale))
}

func Currency(required bool) *EnumRule {
	return enumRule("currency", "Cryptocurrency", required, string(types.CryptocurrencyPART), string(types.CryptocurrencyPART))
}

// EscrowType only admits the provisionable schemes.
func EscrowType(required bool) *EnumRule {
	return enumRule("escrowType", "EscrowType", required, string(types.EscrowConfidential),
		string(types.EscrowConfidential), string(types.EscrowMultisig))
}

func EscrowReleaseType(required bool) *EnumRule {
	return enumRule("escrowReleaseType", "EscrowReleaseType", required, string(types.EscrowReleaseAnon),
		string(types.EscrowReleaseAnon), string(types.EscrowReleaseBlind))
}

func CommentType(required bool) *EnumRule {
	return enumRule("commentType", "CommentType", required, nil,
		"LISTINGITEM_QUESTION_AND_ANSWERS", "PROPOSAL_QUESTION_AND_ANSWERS", "MARKETPLACE_COMMENT", "PRIVATE_MESSAGE")
}

func ProposalCategory(required bool) *EnumRule {
	return enumRule("category", "ProposalCategory", required, string(types.ProposalCategoryPublicVote),
		string(types.ProposalCategoryPublicVote), string(types.ProposalCategoryItemVote), string(types.ProposalCategoryMarketVote))
}

func ImageProtocol(required bool) *EnumRule {
	return enumRule("protocol", "ProtocolDSN", required, string(types.ImageProtocolRequest),
		string(types.ImageProtocolLocal), string(types.ImageProtocolRequest), string(types.ImageProtocolSmsg), string(types.ImageProtocolURL))
}

func AddressOrAddressID(required bool) *AddressOrAddressIDRule {
	return &AddressOrAddressIDRule{
		BaseRule: BaseRule{Name: "address|addressId", Required: required},
		Keys:     ShippingAddressKeys,
	}
}
