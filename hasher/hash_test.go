package hasher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calehh/hac-market/types"
)

func testTemplate() *types.ListingTemplate {
	return &types.ListingTemplate{
		ID:        7,
		ProfileID: 1,
		Information: &types.ItemInformation{
			Title:            "bike",
			ShortDescription: "red bike",
			LongDescription:  "a red bike, barely used",
			Category:         &types.ItemCategory{Key: "cat_vehicles"},
			Images:           []types.Image{{ID: 1, Data: types.ImageData{Protocol: types.ImageProtocolLocal, Encoding: "BASE64", Data: "aGVsbG8="}}},
		},
		Payment: &types.PaymentInformation{
			Type: types.SaleTypeSale,
			Escrow: &types.Escrow{
				Type:        types.EscrowMultisig,
				Ratio:       types.EscrowRatio{Buyer: 100, Seller: 100},
				ReleaseType: types.EscrowReleaseAnon,
			},
			ItemPrice: &types.ItemPrice{
				Currency:      types.CryptocurrencyPART,
				BasePrice:     12.5,
				ShippingPrice: types.ShippingPrice{Domestic: 1, International: 2},
				PaymentAddress: &types.PaymentAddress{
					Address: "0xabc",
					Type:    types.AddressTypeNormal,
				},
			},
		},
		CreatedAt: time.Unix(100, 0),
	}
}

func TestHashDeterministic(t *testing.T) {
	fields := Fields{"a": "1", "b": "2", "c": "3"}
	same := Fields{"c": "3", "a": "1", "b": "2"}
	overrides := []Override{{To: "b", Value: "x"}}

	h1 := Hash(fields, overrides...)
	h2 := Hash(same, overrides...)
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)

	// input is left untouched
	assert.Equal(t, "2", fields["b"])
}

func TestHashOverridesApplyInOrder(t *testing.T) {
	fields := Fields{"a": "1"}
	h := Hash(fields, Override{To: "a", Value: "first"}, Override{To: "a", Value: "second"})
	assert.Equal(t, Hash(Fields{"a": "second"}), h)
	assert.NotEqual(t, Hash(fields), h)
}

func TestHashOverrideAddsField(t *testing.T) {
	h := Hash(Fields{"a": "1"}, Override{To: "market", Value: "pabc"})
	assert.Equal(t, Hash(Fields{"a": "1", "market": "pabc"}), h)
}

func TestListingTemplateHashSemanticFields(t *testing.T) {
	base := ListingTemplateHash(testTemplate())

	tests := []struct {
		name    string
		mutate  func(*types.ListingTemplate)
		changes bool
	}{
		{"title", func(l *types.ListingTemplate) { l.Information.Title = "car" }, true},
		{"base price", func(l *types.ListingTemplate) { l.Payment.ItemPrice.BasePrice = 13 }, true},
		{"payment address", func(l *types.ListingTemplate) { l.Payment.ItemPrice.PaymentAddress.Address = "0xdef" }, true},
		{"escrow ratio", func(l *types.ListingTemplate) { l.Payment.Escrow.Ratio.Seller = 50 }, true},
		{"category", func(l *types.ListingTemplate) { l.Information.Category.Key = "cat_other" }, true},
		{"id", func(l *types.ListingTemplate) { l.ID = 99 }, false},
		{"profile", func(l *types.ListingTemplate) { l.ProfileID = 2 }, false},
		{"timestamps", func(l *types.ListingTemplate) { l.CreatedAt = time.Now(); l.UpdatedAt = time.Now() }, false},
		{"images", func(l *types.ListingTemplate) { l.Information.Images = nil }, false},
		{"existing hash", func(l *types.ListingTemplate) { l.Hash = "ff" }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tmpl := testTemplate()
			tc.mutate(tmpl)
			if tc.changes {
				assert.NotEqual(t, base, ListingTemplateHash(tmpl))
			} else {
				assert.Equal(t, base, ListingTemplateHash(tmpl))
			}
		})
	}
}

func TestListingTemplateHashPartialDraft(t *testing.T) {
	tmpl := &types.ListingTemplate{Information: &types.ItemInformation{Title: "x"}}
	assert.NotPanics(t, func() { ListingTemplateHash(tmpl) })
}

func TestChildChain(t *testing.T) {
	opt := &types.ProposalOption{OptionID: 0, Description: "yes"}
	fields := ProposalOptionFields(opt)

	h1 := HashChild(fields, FieldOptionProposalHash, "parent-1")
	h2 := HashChild(fields, FieldOptionProposalHash, "parent-2")
	require.NotEqual(t, h1, h2)

	assert.True(t, VerifyChild(fields, FieldOptionProposalHash, "parent-1", h1))
	assert.False(t, VerifyChild(fields, FieldOptionProposalHash, "parent-2", h1))
	assert.False(t, VerifyChild(fields, FieldOptionProposalHash, "parent-1", ""))
}

func TestProposalOptionsValue(t *testing.T) {
	v := ProposalOptionsValue([]types.ProposalOption{
		{OptionID: 0, Description: "yes"},
		{OptionID: 1, Description: "no"},
	})
	assert.Equal(t, "0:yes:1:no:", v)
}

func TestImageHash(t *testing.T) {
	d := types.ImageData{Protocol: types.ImageProtocolLocal, Encoding: "BASE64", Data: "aGVsbG8="}
	assert.Equal(t, ImageHash(d), ImageHash(d))
	d2 := d
	d2.Data = "d29ybGQ="
	assert.NotEqual(t, ImageHash(d), ImageHash(d2))
}
