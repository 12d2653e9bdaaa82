package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/calehh/hac-market/types"
	"github.com/calehh/hac-market/validation"
)

const MethodProposalPost = "proposal post"

const minProposalOptions = 2

// ProposalPostCommand posts a public vote to a market. Option descriptions
// follow the fixed parameters.
type ProposalPostCommand struct {
	store     Store
	publisher Publisher
	rules     *validation.RuleSet
}

func NewProposalPostCommand(store Store, publisher Publisher, maxRetentionDays int) *ProposalPostCommand {
	return &ProposalPostCommand{
		store:     store,
		publisher: publisher,
		rules: validation.NewRuleSet(
			validation.MarketID(true, store.MarketLookup()),
			validation.NonEmptyString("proposalTitle", true),
			validation.String("proposalDescription", true),
			validation.DaysRetention(false, maxRetentionDays),
			validation.EstimateFee(),
		),
	}
}

func (c *ProposalPostCommand) Name() string               { return MethodProposalPost }
func (c *ProposalPostCommand) Rules() *validation.RuleSet { return c.rules }

func (c *ProposalPostCommand) Execute(ctx context.Context, args []any) (any, error) {
	fixed := c.rules.Len()
	options := make([]string, 0, len(args)-fixed)
	for i, v := range args[fixed:] {
		name := fmt.Sprintf("option%dDescription", i+1)
		s, ok := v.(string)
		if !ok {
			return nil, &types.InvalidParamError{Name: name, Expected: "string"}
		}
		if strings.TrimSpace(s) == "" {
			return nil, &types.MissingParamError{Name: name}
		}
		options = append(options, s)
	}
	if len(options) < minProposalOptions {
		return nil, &types.MissingParamError{Name: fmt.Sprintf("option%dDescription", len(options)+1)}
	}
	m, err := c.store.FindMarket(args[0].(uint64))
	if err != nil {
		return nil, err
	}
	draft := &types.ProposalDraft{
		Title:       args[1].(string),
		Description: args[2].(string),
		Options:     options,
		Category:    types.ProposalCategoryPublicVote,
		Market:      m,
	}
	if m.Identity != nil {
		draft.Submitter = m.Identity.Address
	}
	return c.publisher.PostProposal(ctx, draft, int(args[3].(float64)), args[4].(bool))
}
