package command

import (
	"context"

	"github.com/calehh/hac-market/types"
	"github.com/calehh/hac-market/validation"
)

const (
	MethodTemplateAdd    = "template add"
	MethodTemplatePost   = "template post"
	MethodTemplateUpdate = "template update"
	MethodImageAdd       = "image add"
)

// TemplateAddCommand creates a draft with its item information and pricing.
type TemplateAddCommand struct {
	store Store
	rules *validation.RuleSet
}

func NewTemplateAddCommand(store Store) *TemplateAddCommand {
	return &TemplateAddCommand{
		store: store,
		rules: validation.NewRuleSet(append([]validation.Rule{validation.ProfileID(true, store.ProfileLookup())}, contentRules()...)...),
	}
}

func (c *TemplateAddCommand) Name() string               { return MethodTemplateAdd }
func (c *TemplateAddCommand) Rules() *validation.RuleSet { return c.rules }

func (c *TemplateAddCommand) Execute(ctx context.Context, args []any) (any, error) {
	return c.store.AddTemplate(templateFromArgs(args[0].(uint64), args[1:]))
}

// templateFromArgs builds a draft from the validated content arguments,
// starting at the title.
func templateFromArgs(profileID uint64, args []any) *types.ListingTemplate {
	t := &types.ListingTemplate{
		ProfileID: profileID,
		Information: &types.ItemInformation{
			Title:            args[0].(string),
			ShortDescription: args[1].(string),
			LongDescription:  args[2].(string),
		},
		Payment: &types.PaymentInformation{
			Type: types.SaleType(args[4].(string)),
			Escrow: &types.Escrow{
				Type:        types.EscrowScheme(args[9].(string)),
				Ratio:       types.EscrowRatio{Buyer: optFloat(args[10]), Seller: optFloat(args[11])},
				ReleaseType: types.EscrowReleaseType(args[12].(string)),
			},
			ItemPrice: &types.ItemPrice{
				Currency:  types.Cryptocurrency(args[5].(string)),
				BasePrice: optFloat(args[6]),
				ShippingPrice: types.ShippingPrice{
					Domestic:      optFloat(args[7]),
					International: optFloat(args[8]),
				},
			},
		},
	}
	if key := optString(args[3]); key != "" {
		t.Information.Category = &types.ItemCategory{Key: key}
	}
	return t
}

func contentRules() []validation.Rule {
	return []validation.Rule{
		validation.Title(true),
		validation.ShortDescription(true),
		validation.LongDescription(true),
		validation.String("categoryKey", false),
		validation.SaleType(false),
		validation.Currency(false),
		validation.BasePrice(false),
		validation.DomesticShippingPrice(false),
		validation.InternationalShippingPrice(false),
		validation.EscrowType(false),
		validation.BuyerRatio(false),
		validation.SellerRatio(false),
		validation.EscrowReleaseType(false),
	}
}

// TemplateUpdateCommand replaces the content of a draft that is not frozen
// yet. Images and an attached payment address are kept.
type TemplateUpdateCommand struct {
	store Store
	rules *validation.RuleSet
}

func NewTemplateUpdateCommand(store Store) *TemplateUpdateCommand {
	rules := append([]validation.Rule{validation.ListingItemTemplateID(true, store.TemplateLookup())}, contentRules()...)
	return &TemplateUpdateCommand{
		store: store,
		rules: validation.NewRuleSet(rules...),
	}
}

func (c *TemplateUpdateCommand) Name() string               { return MethodTemplateUpdate }
func (c *TemplateUpdateCommand) Rules() *validation.RuleSet { return c.rules }

func (c *TemplateUpdateCommand) Execute(ctx context.Context, args []any) (any, error) {
	cur, err := c.store.FindTemplate(args[0].(uint64))
	if err != nil {
		return nil, err
	}
	t := templateFromArgs(cur.ProfileID, args[1:])
	t.ID = cur.ID
	return c.store.UpdateTemplate(t)
}

// TemplatePostCommand freezes a draft and posts it to a market.
type TemplatePostCommand struct {
	store     Store
	publisher Publisher
	rules     *validation.RuleSet
}

func NewTemplatePostCommand(store Store, publisher Publisher, maxRetentionDays int) *TemplatePostCommand {
	return &TemplatePostCommand{
		store:     store,
		publisher: publisher,
		rules: validation.NewRuleSet(
			validation.ListingItemTemplateID(true, store.TemplateLookup()),
			validation.DaysRetention(false, maxRetentionDays),
			validation.MarketID(true, store.MarketLookup()),
			validation.EstimateFee(),
		),
	}
}

func (c *TemplatePostCommand) Name() string               { return MethodTemplatePost }
func (c *TemplatePostCommand) Rules() *validation.RuleSet { return c.rules }

func (c *TemplatePostCommand) Execute(ctx context.Context, args []any) (any, error) {
	t, err := c.store.FindTemplate(args[0].(uint64))
	if err != nil {
		return nil, err
	}
	if err = t.CheckComplete(); err != nil {
		return nil, err
	}
	m, err := c.store.FindMarket(args[2].(uint64))
	if err != nil {
		return nil, err
	}
	return c.publisher.FinalizeAndPost(ctx, t, m, int(args[1].(float64)), args[3].(bool))
}

// ImageAddCommand attaches an image to a draft that is not frozen yet.
type ImageAddCommand struct {
	store Store
	rules *validation.RuleSet
}

func NewImageAddCommand(store Store) *ImageAddCommand {
	return &ImageAddCommand{
		store: store,
		rules: validation.NewRuleSet(
			&validation.EnumRule{
				BaseRule: validation.BaseRule{Name: "template|market", Required: true, Type: validation.KindString},
				EnumName: "ImageTarget",
				Values:   []string{"template"},
			},
			validation.ID("id", true),
			validation.ImageProtocol(true),
			validation.NonEmptyString("data", true),
			&validation.BaseRule{Name: "encoding", Type: validation.KindString, Default: "BASE64"},
		),
	}
}

func (c *ImageAddCommand) Name() string               { return MethodImageAdd }
func (c *ImageAddCommand) Rules() *validation.RuleSet { return c.rules }

func (c *ImageAddCommand) Execute(ctx context.Context, args []any) (any, error) {
	return c.store.AddImage(args[1].(uint64), types.ImageData{
		Protocol: types.ImageProtocol(args[2].(string)),
		Data:     args[3].(string),
		Encoding: args[4].(string),
	})
}
