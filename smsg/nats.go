package smsg

import (
	"context"
	"strconv"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/nats-io/nats.go"

	"github.com/calehh/hac-market/types"
)

const (
	HeaderType          = "Market-Type"
	HeaderPaid          = "Market-Paid"
	HeaderDaysRetention = "Market-Days-Retention"
	HeaderMsgID         = nats.MsgIdHdr
)

// Publisher is the part of a nats connection used for sending.
type Publisher interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

// NatsSender publishes envelopes on <prefix>.<toAddress>.
type NatsSender struct {
	logger      cmtlog.Logger
	conn        Publisher
	prefix      string
	feePerKBDay uint64
}

var _ Sender = &NatsSender{}

func NewNatsSender(url string, prefix string, feePerKBDay uint64, logger cmtlog.Logger) (s *NatsSender, nc *nats.Conn, err error) {
	logger = logger.With("module", "natssender")
	nc, err = nats.Connect(url,
		nats.Name("hac-market"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Error("nats disconnected", "err", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	s = NewNatsSenderWithConn(nc, prefix, feePerKBDay, logger)
	return
}

func NewNatsSenderWithConn(conn Publisher, prefix string, feePerKBDay uint64, logger cmtlog.Logger) (s *NatsSender) {
	s = &NatsSender{
		logger:      logger.With("module", "natssender"),
		conn:        conn,
		prefix:      prefix,
		feePerKBDay: feePerKBDay,
	}
	return
}

func (s *NatsSender) Subject(to string) string {
	return s.prefix + "." + to
}

func (s *NatsSender) Send(ctx context.Context, params types.SendParameters, msg types.ActionMessage) (res SendResponse, err error) {
	defer func() {
		if err != nil {
			err = &types.SendError{Type: msg.ActionType(), Err: err}
		}
	}()
	env, err := NewEnvelope(params, msg)
	if err != nil {
		return
	}
	id, err := env.ID()
	if err != nil {
		return
	}
	dat, err := MarshalEnvelope(env)
	if err != nil {
		return
	}
	m := nats.NewMsg(s.Subject(params.ToAddress))
	m.Data = dat
	m.Header.Set(HeaderType, env.Type)
	m.Header.Set(HeaderPaid, strconv.FormatBool(params.PaidMessage))
	m.Header.Set(HeaderDaysRetention, strconv.Itoa(params.DaysRetention))
	m.Header.Set(HeaderMsgID, id)
	if err = s.conn.PublishMsg(m); err != nil {
		s.logger.Error("publish fail", "subject", m.Subject, "err", err)
		return
	}
	if err = s.conn.FlushWithContext(ctx); err != nil {
		s.logger.Error("flush fail", "subject", m.Subject, "err", err)
		return
	}
	res = SendResponse{
		Result: "Sent.",
		MsgID:  id,
		Fee:    EstimateFee(len(dat), params, s.feePerKBDay),
	}
	return
}
