package publish

import (
	"context"

	"github.com/google/uuid"

	"github.com/calehh/hac-market/hasher"
	"github.com/calehh/hac-market/smsg"
	"github.com/calehh/hac-market/types"
)

// BuildProposalMessage composes a content addressed proposal. Options are
// numbered from 0 in the given order; the proposal hash covers the flattened
// options and the market receive address, and every option hash is chained
// to the proposal hash.
func BuildProposalMessage(draft *types.ProposalDraft) (*types.ProposalAddMessage, error) {
	if draft.Category == "" {
		return nil, &types.MissingParamError{Name: "category"}
	}
	msg := &types.ProposalAddMessage{
		Type:        types.ActionProposalAdd,
		Submitter:   draft.Submitter,
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Target:      draft.Target,
		Options:     make([]types.ProposalOption, len(draft.Options)),
	}
	for i, d := range draft.Options {
		msg.Options[i] = types.ProposalOption{OptionID: i, Description: d}
	}
	var receive string
	if draft.Market != nil {
		receive = draft.Market.ReceiveAddress
	}
	msg.Hash = hasher.Hash(hasher.ProposalAddFields(msg),
		hasher.Override{To: hasher.FieldProposalOptions, Value: hasher.ProposalOptionsValue(msg.Options)},
		hasher.Override{To: hasher.FieldProposalMarket, Value: receive},
	)
	for i := range msg.Options {
		o := &msg.Options[i]
		o.Hash = hasher.HashChild(hasher.ProposalOptionFields(o), hasher.FieldOptionProposalHash, msg.Hash)
	}
	return msg, nil
}

// VerifyProposalMessage checks that every option is chained to the proposal.
func VerifyProposalMessage(msg *types.ProposalAddMessage) bool {
	for i := range msg.Options {
		o := &msg.Options[i]
		if !hasher.VerifyChild(hasher.ProposalOptionFields(o), hasher.FieldOptionProposalHash, msg.Hash, o.Hash) {
			return false
		}
	}
	return true
}

// PostProposal sends a proposal from the market publish address to its
// receive address. Proposals have no dependent messages.
func (s *Service) PostProposal(ctx context.Context, draft *types.ProposalDraft, daysRetention int, estimateFee bool) (*types.SendResult, error) {
	if draft.Market == nil {
		return nil, &types.ModelNotFoundError{Model: "Market"}
	}
	msg, err := BuildProposalMessage(draft)
	if err != nil {
		return nil, err
	}
	from, to := draft.Market.Route()
	params := types.SendParameters{
		FromAddress:   from,
		ToAddress:     to,
		PaidMessage:   true,
		DaysRetention: s.Retention(daysRetention),
		EstimateFee:   estimateFee,
	}
	if draft.Market.Identity != nil {
		params.Wallet = draft.Market.Identity.Wallet
	}
	size, err := s.sizer.MessageSize(params, msg)
	if err != nil {
		return nil, err
	}
	if limit := s.sizer.MaxMessageSize(); size > limit {
		s.metrics.SizeRejections.Inc()
		return nil, &types.MessageTooLargeError{Size: size, Max: limit}
	}
	if estimateFee {
		s.metrics.Estimates.Inc()
		return &types.SendResult{Result: ResultEstimated, MsgIDs: []string{}, Fee: smsg.EstimateFee(size, params, s.cfg.FeePerKBDay), Hash: msg.Hash}, nil
	}

	opID := uuid.NewString()
	res, err := s.sender.Send(ctx, params, msg)
	s.metrics.PrimarySends.WithLabelValues(string(msg.Type), outcome(err)).Inc()
	s.record(ctx, types.PostOutcome{
		OperationID: opID,
		Type:        msg.Type,
		Kind:        types.PostKindPrimary,
		MsgID:       res.MsgID,
		Hash:        msg.Hash,
		Paid:        true,
	}, err)
	if err != nil {
		s.logger.Error("send proposal fail", "hash", msg.Hash, "err", err)
		return nil, asSendError(msg.Type, err)
	}
	s.logger.Info("proposal posted", "hash", msg.Hash, "msgid", res.MsgID, "options", len(msg.Options))
	result := &types.SendResult{
		Result:      res.Result,
		OperationID: opID,
		MsgID:       res.MsgID,
		MsgIDs:      []string{},
		Fee:         res.Fee,
		Hash:        msg.Hash,
	}
	if result.Result == "" {
		result.Result = ResultSent
	}
	return result, nil
}
