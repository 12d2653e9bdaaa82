package smsg

import (
	"context"
	"errors"
	"strings"
	"testing"

	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calehh/hac-market/crypto"
	"github.com/calehh/hac-market/types"
)

func testParams() types.SendParameters {
	return types.SendParameters{
		Wallet:        "market",
		FromAddress:   "pub",
		ToAddress:     "recv",
		PaidMessage:   true,
		DaysRetention: 4,
	}
}

func testImage() *types.ImageAddMessage {
	return &types.ImageAddMessage{
		Type:   types.ActionImageAdd,
		Hash:   "abc",
		Target: "def",
		Data:   types.ImageData{Protocol: types.ImageProtocolLocal, Encoding: "BASE64", Data: "aGk="},
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(testParams(), testImage())
	require.NoError(t, err)
	env.Pubkey = []byte{9}
	env.Sig = []byte{1, 2, 3}

	dat, err := MarshalEnvelope(env)
	require.NoError(t, err)
	decoded, err := UnmarshalEnvelope(dat)
	require.NoError(t, err)
	assert.Equal(t, env, decoded)

	msg, err := decoded.Message()
	require.NoError(t, err)
	assert.Equal(t, testImage(), msg)
}

func TestEnvelopeUnsupportedType(t *testing.T) {
	env := &Envelope{Type: "MPA_BID", Payload: []byte("{}")}
	_, err := env.Message()
	assert.ErrorIs(t, err, ErrUnsupportedActionType)

	_, err = UnmarshalEnvelope([]byte{0xff})
	assert.ErrorIs(t, err, ErrInvalidEnvelope)
}

func TestSigDataIgnoresSignature(t *testing.T) {
	env, err := NewEnvelope(testParams(), testImage())
	require.NoError(t, err)
	a, err := env.SigData([]byte("chain"))
	require.NoError(t, err)
	env.Sig = []byte("sig")
	env.Pubkey = []byte("pk")
	b, err := env.SigData([]byte("chain"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	c, err := env.SigData([]byte("other"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestEstimateFee(t *testing.T) {
	p := testParams()
	assert.Equal(t, uint64(4*10), EstimateFee(1, p, 10))
	assert.Equal(t, uint64(4*10), EstimateFee(1024, p, 10))
	assert.Equal(t, uint64(2*4*10), EstimateFee(1025, p, 10))
	assert.Zero(t, EstimateFee(1025, p.Unpaid(), 10))
	assert.Zero(t, EstimateFee(0, p, 10))
}

func TestLimitsMessageSize(t *testing.T) {
	l := Limits{MaxSize: 100}
	params := testParams()
	msg := testImage()

	size, err := l.MessageSize(params, msg)
	require.NoError(t, err)
	assert.Equal(t, 100, l.MaxMessageSize())

	// the size is the signed wire form, not the payload alone
	env, err := NewEnvelope(params, msg)
	require.NoError(t, err)
	payload := len(env.Payload)
	env.Pubkey = crypto.GenPV().PublicKey()
	env.Sig = make([]byte, 64)
	wire, err := MarshalEnvelope(env)
	require.NoError(t, err)
	assert.Equal(t, len(wire), size)
	assert.Greater(t, size, payload)

	unhashed := testImage()
	unhashed.Hash = ""
	usize, err := l.MessageSize(params, unhashed)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, usize, size-len(msg.Hash)+hashLen)

	// a longer route grows the envelope without touching the payload
	long := params
	long.FromAddress = strings.Repeat("f", 200)
	lsize, err := l.MessageSize(long, msg)
	require.NoError(t, err)
	assert.Greater(t, lsize, size+150)
}

type fakeComet struct {
	txs  []cmttypes.Tx
	code uint32
	err  error
}

func (f *fakeComet) Genesis(ctx context.Context) (*coretypes.ResultGenesis, error) {
	return &coretypes.ResultGenesis{Genesis: &cmttypes.GenesisDoc{ChainID: "market-test"}}, nil
}

func (f *fakeComet) BroadcastTxSync(ctx context.Context, tx cmttypes.Tx) (*coretypes.ResultBroadcastTx, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.txs = append(f.txs, tx)
	return &coretypes.ResultBroadcastTx{Code: f.code, Log: "rejected", Hash: cmtbytes.HexBytes(tx.Hash())}, nil
}

func TestCometSenderSignsAndBroadcasts(t *testing.T) {
	cli := &fakeComet{}
	pv := crypto.GenPV()
	s := NewCometSenderWithClient(cli, pv, 5, cmtlog.NewNopLogger())

	res, err := s.Send(context.Background(), testParams(), testImage())
	require.NoError(t, err)
	require.Len(t, cli.txs, 1)
	assert.Equal(t, cmtbytes.HexBytes(cli.txs[0].Hash()).String(), res.MsgID)
	assert.Equal(t, uint64(4*5), res.Fee)

	env, err := UnmarshalEnvelope(cli.txs[0])
	require.NoError(t, err)
	dat, err := env.SigData([]byte("market-test"))
	require.NoError(t, err)
	assert.NoError(t, crypto.Verify(env.Pubkey, dat, env.Sig))
}

func TestCometSenderRejected(t *testing.T) {
	s := NewCometSenderWithClient(&fakeComet{code: 7}, crypto.GenPV(), 5, cmtlog.NewNopLogger())
	_, err := s.Send(context.Background(), testParams(), testImage())
	assert.ErrorIs(t, err, types.ErrSendFailed)

	boom := errors.New("connection refused")
	s = NewCometSenderWithClient(&fakeComet{err: boom}, crypto.GenPV(), 5, cmtlog.NewNopLogger())
	_, err = s.Send(context.Background(), testParams(), testImage())
	assert.ErrorIs(t, err, types.ErrSendFailed)
	assert.ErrorIs(t, err, boom)
}

type fakePublisher struct {
	msgs    []*nats.Msg
	pubErr  error
	flushes int
}

func (f *fakePublisher) PublishMsg(m *nats.Msg) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakePublisher) FlushWithContext(ctx context.Context) error {
	f.flushes++
	return nil
}

func TestNatsSenderPublishes(t *testing.T) {
	pub := &fakePublisher{}
	s := NewNatsSenderWithConn(pub, "market", 5, cmtlog.NewNopLogger())

	res, err := s.Send(context.Background(), testParams().Unpaid(), testImage())
	require.NoError(t, err)
	require.Len(t, pub.msgs, 1)
	m := pub.msgs[0]
	assert.Equal(t, "market.recv", m.Subject)
	assert.Equal(t, "false", m.Header.Get(HeaderPaid))
	assert.Equal(t, "4", m.Header.Get(HeaderDaysRetention))
	assert.Equal(t, string(types.ActionImageAdd), m.Header.Get(HeaderType))
	assert.Equal(t, res.MsgID, m.Header.Get(HeaderMsgID))
	assert.Zero(t, res.Fee)
	assert.Equal(t, 1, pub.flushes)

	env, err := UnmarshalEnvelope(m.Data)
	require.NoError(t, err)
	id, err := env.ID()
	require.NoError(t, err)
	assert.Equal(t, res.MsgID, id)
}

func TestNatsSenderPublishError(t *testing.T) {
	pub := &fakePublisher{pubErr: nats.ErrConnectionClosed}
	s := NewNatsSenderWithConn(pub, "market", 5, cmtlog.NewNopLogger())
	_, err := s.Send(context.Background(), testParams(), testImage())
	assert.ErrorIs(t, err, types.ErrSendFailed)
	assert.ErrorIs(t, err, nats.ErrConnectionClosed)
	assert.Zero(t, pub.flushes)
}

type countSender struct {
	n int
}

func (c *countSender) Send(ctx context.Context, params types.SendParameters, msg types.ActionMessage) (SendResponse, error) {
	c.n++
	return SendResponse{MsgID: "m"}, nil
}

func TestThrottledSender(t *testing.T) {
	next := &countSender{}
	assert.Same(t, Sender(next), NewThrottledSender(next, 0, 1))

	s := NewThrottledSender(next, 0.001, 1)
	_, err := s.Send(context.Background(), testParams(), testImage())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Send(ctx, testParams(), testImage())
	assert.Error(t, err)
	assert.Equal(t, 1, next.n)
}
