// Package publish freezes drafts and posts them to a market.
package publish

import (
	"context"
	"errors"
	"fmt"
	"slices"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/calehh/hac-market/hasher"
	"github.com/calehh/hac-market/smsg"
	"github.com/calehh/hac-market/types"
)

const (
	ResultEstimated = "Estimated."
	ResultSent      = "Sent."
)

// Store is the draft storage the service freezes and reads.
type Store interface {
	FindTemplate(id uint64) (*types.ListingTemplate, error)
	AttachPaymentAddress(id uint64, addr types.PaymentAddress, replace bool) (*types.ListingTemplate, error)
	UpdateHash(id uint64, hash string) (*types.ListingTemplate, error)
}

type Provisioner interface {
	Provision(ctx context.Context, wallet string, scheme types.EscrowScheme) (types.PaymentAddress, error)
}

// Recorder keeps the outcome of every send. Recording errors are logged and
// never fail a post.
type Recorder interface {
	Record(ctx context.Context, o types.PostOutcome) error
}

type Config struct {
	MaxRetentionDays int
	FeePerKBDay      uint64
}

type Service struct {
	logger      cmtlog.Logger
	store       Store
	provisioner Provisioner
	sender      smsg.Sender
	sizer       smsg.SizeOracle
	recorder    Recorder
	metrics     *Metrics
	cfg         Config

	flights singleflight.Group
}

func NewService(store Store, provisioner Provisioner, sender smsg.Sender, sizer smsg.SizeOracle, cfg Config, logger cmtlog.Logger) (s *Service) {
	s = &Service{
		logger:      logger.With("module", "publish"),
		store:       store,
		provisioner: provisioner,
		sender:      sender,
		sizer:       sizer,
		metrics:     NewMetrics(nil),
		cfg:         cfg,
	}
	return
}

func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

func (s *Service) SetMetrics(m *Metrics) {
	s.metrics = m
}

// Retention bounds a requested retention: 0 and values above the maximum
// yield the maximum.
func (s *Service) Retention(days int) int {
	if days <= 0 || days > s.cfg.MaxRetentionDays {
		return s.cfg.MaxRetentionDays
	}
	return days
}

// FinalizeAndPost completes, freezes and posts a listing draft with its
// images. Concurrent posts of the same draft join one execution and share
// its result. The shared execution is detached from the caller's
// cancellation so a leader that gives up does not fail the others.
// Estimates have no side effects and never join a post.
func (s *Service) FinalizeAndPost(ctx context.Context, draft *types.ListingTemplate, market *types.Market, daysRetention int, estimateFee bool) (*types.SendResult, error) {
	if estimateFee {
		return s.finalizeAndPost(ctx, draft.ID, market, daysRetention, true)
	}
	key := fmt.Sprintf("template/%d", draft.ID)
	v, err, shared := s.flights.Do(key, func() (any, error) {
		return s.finalizeAndPost(context.WithoutCancel(ctx), draft.ID, market, daysRetention, false)
	})
	if shared {
		s.logger.Info("joined in-flight post", "template", draft.ID)
	}
	if err != nil {
		return nil, err
	}
	res := *v.(*types.SendResult)
	res.MsgIDs = slices.Clone(res.MsgIDs)
	return &res, nil
}

func (s *Service) finalizeAndPost(ctx context.Context, id uint64, market *types.Market, daysRetention int, estimateFee bool) (*types.SendResult, error) {
	t, err := s.store.FindTemplate(id)
	if err != nil {
		return nil, err
	}
	if err = t.CheckComplete(); err != nil {
		return nil, err
	}
	if market == nil {
		return nil, &types.ModelNotFoundError{Model: "Market"}
	}
	if market.Identity == nil {
		return nil, &types.ModelNotFoundError{Model: "Identity"}
	}

	if t.PaymentAddress() == nil && !estimateFee {
		addr, err := s.provisioner.Provision(ctx, market.Identity.Wallet, t.EscrowScheme())
		if err != nil {
			return nil, err
		}
		if t, err = s.store.AttachPaymentAddress(id, addr, false); err != nil {
			s.logger.Error("attach payment address fail", "template", id, "err", err)
			return nil, err
		}
	}

	from, to := market.Route()
	params := types.SendParameters{
		Wallet:        market.Identity.Wallet,
		FromAddress:   from,
		ToAddress:     to,
		PaidMessage:   true,
		DaysRetention: s.Retention(daysRetention),
		EstimateFee:   estimateFee,
	}

	msg := types.NewListingItemAddMessage(t, market.Identity.Address)
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
		return &types.SendResult{
			Result: ResultEstimated,
			MsgIDs: []string{},
			Fee:    smsg.EstimateFee(size, params, s.cfg.FeePerKBDay),
			Hash:   t.Hash,
		}, nil
	}

	if t, err = s.freeze(t); err != nil {
		return nil, err
	}
	msg.Hash = t.Hash

	opID := uuid.NewString()
	primary, err := s.sender.Send(ctx, params, msg)
	s.metrics.PrimarySends.WithLabelValues(string(msg.Type), outcome(err)).Inc()
	s.record(ctx, types.PostOutcome{
		OperationID: opID,
		DraftID:     id,
		Type:        msg.Type,
		Kind:        types.PostKindPrimary,
		MsgID:       primary.MsgID,
		Hash:        t.Hash,
		Paid:        params.PaidMessage,
	}, err)
	if err != nil {
		s.logger.Error("send listing fail", "template", id, "hash", t.Hash, "err", err)
		return nil, asSendError(msg.Type, err)
	}

	res := &types.SendResult{
		Result:      primary.Result,
		OperationID: opID,
		MsgID:       primary.MsgID,
		MsgIDs:      make([]string, 0, len(t.Images())),
		Fee:         primary.Fee,
		Hash:        t.Hash,
	}
	if res.Result == "" {
		res.Result = ResultSent
	}
	// images go out one at a time, in draft order
	imageParams := params.Unpaid()
	for i, img := range t.Images() {
		imsg := &types.ImageAddMessage{
			Type:   types.ActionImageAdd,
			Hash:   img.Hash,
			Target: t.Hash,
			Data:   img.Data,
		}
		if imsg.Hash == "" {
			imsg.Hash = hasher.ImageHash(img.Data)
		}
		ires, err := s.sender.Send(ctx, imageParams, imsg)
		s.metrics.DependentSends.WithLabelValues(string(imsg.Type), outcome(err)).Inc()
		s.record(ctx, types.PostOutcome{
			OperationID: opID,
			DraftID:     id,
			Type:        imsg.Type,
			Kind:        types.PostKindDependent,
			Index:       i,
			MsgID:       ires.MsgID,
			Hash:        imsg.Hash,
			Paid:        imageParams.PaidMessage,
		}, err)
		if err != nil {
			s.logger.Error("send image fail", "template", id, "index", i, "err", err)
			res.MsgIDs = append(res.MsgIDs, "")
			continue
		}
		res.MsgIDs = append(res.MsgIDs, ires.MsgID)
		res.Fee += ires.Fee
	}
	s.logger.Info("listing posted", "template", id, "hash", t.Hash, "msgid", res.MsgID,
		"images", len(res.MsgIDs), "failed", res.FailedChildren())
	return res, nil
}

// freeze assigns the content hash once. A draft frozen concurrently keeps the
// hash it already has.
func (s *Service) freeze(t *types.ListingTemplate) (*types.ListingTemplate, error) {
	if t.Frozen() {
		return t, nil
	}
	ft, err := s.store.UpdateHash(t.ID, hasher.ListingTemplateHash(t))
	if errors.Is(err, types.ErrModelNotModifiable) {
		return s.store.FindTemplate(t.ID)
	}
	if err != nil {
		s.logger.Error("update hash fail", "template", t.ID, "err", err)
		return nil, err
	}
	s.metrics.Freezes.Inc()
	s.logger.Debug("template frozen", "template", t.ID, "hash", ft.Hash)
	return ft, nil
}

func (s *Service) record(ctx context.Context, o types.PostOutcome, sendErr error) {
	if s.recorder == nil {
		return
	}
	if sendErr != nil {
		o.Error = sendErr.Error()
	}
	if err := s.recorder.Record(ctx, o); err != nil {
		s.logger.Error("record post fail", "operation", o.OperationID, "err", err)
	}
}

func asSendError(tp types.ActionType, err error) error {
	if errors.Is(err, types.ErrSendFailed) {
		return err
	}
	return &types.SendError{Type: tp, Err: err}
}
