package smsg

import (
	"context"
	"fmt"
	"sync"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"

	"github.com/calehh/hac-market/crypto"
	"github.com/calehh/hac-market/types"
)

// CometClient is the part of the cometbft rpc client used for sending.
type CometClient interface {
	Genesis(ctx context.Context) (*coretypes.ResultGenesis, error)
	BroadcastTxSync(ctx context.Context, tx cmttypes.Tx) (*coretypes.ResultBroadcastTx, error)
}

// CometSender broadcasts signed envelopes as transactions.
type CometSender struct {
	logger      cmtlog.Logger
	cli         CometClient
	pv          *crypto.PV
	feePerKBDay uint64

	mtx     sync.Mutex
	chainID string
}

var _ Sender = &CometSender{}

func NewCometSender(url string, pv *crypto.PV, feePerKBDay uint64, logger cmtlog.Logger) (s *CometSender, err error) {
	cli, err := comethttp.New(url, "/websocket")
	if err != nil {
		return nil, err
	}
	s = NewCometSenderWithClient(cli, pv, feePerKBDay, logger)
	return
}

func NewCometSenderWithClient(cli CometClient, pv *crypto.PV, feePerKBDay uint64, logger cmtlog.Logger) (s *CometSender) {
	s = &CometSender{
		logger:      logger.With("module", "cometsender"),
		cli:         cli,
		pv:          pv,
		feePerKBDay: feePerKBDay,
	}
	return
}

func (s *CometSender) getChainID(ctx context.Context) (string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.chainID != "" {
		return s.chainID, nil
	}
	gres, err := s.cli.Genesis(ctx)
	if err != nil {
		return "", err
	}
	s.chainID = gres.Genesis.ChainID
	return s.chainID, nil
}

func (s *CometSender) Send(ctx context.Context, params types.SendParameters, msg types.ActionMessage) (res SendResponse, err error) {
	defer func() {
		if err != nil {
			err = &types.SendError{Type: msg.ActionType(), Err: err}
		}
	}()
	env, err := NewEnvelope(params, msg)
	if err != nil {
		return
	}
	chainID, err := s.getChainID(ctx)
	if err != nil {
		s.logger.Error("get chain genesis fail", "err", err)
		return
	}
	dat, err := env.SigData([]byte(chainID))
	if err != nil {
		return
	}
	sig, err := s.pv.Sign(dat)
	if err != nil {
		return
	}
	env.Pubkey = s.pv.PublicKey()
	env.Sig = sig
	tx, err := MarshalEnvelope(env)
	if err != nil {
		return
	}
	bres, err := s.cli.BroadcastTxSync(ctx, tx)
	if err != nil {
		s.logger.Error("broadcast tx fail", "type", env.Type, "err", err)
		return
	}
	if bres.Code != abcitypes.CodeTypeOK {
		err = fmt.Errorf("check tx code %d: %s", bres.Code, bres.Log)
		s.logger.Error("broadcast tx rejected", "type", env.Type, "code", bres.Code, "log", bres.Log)
		return
	}
	res = SendResponse{
		Result: "Sent.",
		MsgID:  bres.Hash.String(),
		Fee:    EstimateFee(len(tx), params, s.feePerKBDay),
	}
	s.logger.Debug("broadcast tx", "type", env.Type, "hash", res.MsgID, "paid", params.PaidMessage)
	return
}
