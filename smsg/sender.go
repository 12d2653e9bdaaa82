// Package smsg moves action messages over the network.
package smsg

import (
	"context"

	"github.com/cometbft/cometbft/crypto/ed25519"

	"github.com/calehh/hac-market/types"
)

// SendResponse is the network's answer to one send.
type SendResponse struct {
	Result string `json:"result"`
	MsgID  string `json:"msgid"`
	Fee    uint64 `json:"fee"`
}

// Sender delivers one message. Failures are returned as is; retry policy
// belongs to the transport.
type Sender interface {
	Send(ctx context.Context, params types.SendParameters, msg types.ActionMessage) (SendResponse, error)
}

// SizeOracle reports the serialized size of a message sent with params and
// the network limit.
type SizeOracle interface {
	MessageSize(params types.SendParameters, msg types.ActionMessage) (int, error)
	MaxMessageSize() int
}

// Limits is the configured SizeOracle.
type Limits struct {
	MaxSize     int
	FeePerKBDay uint64
}

var _ SizeOracle = Limits{}

// MessageSize returns the length of the signed envelope carrying msg. A
// message that has not been hashed yet is sized with a full length hash.
func (l Limits) MessageSize(params types.SendParameters, msg types.ActionMessage) (int, error) {
	env, err := NewEnvelope(params, msg)
	if err != nil {
		return 0, err
	}
	if msg.MessageHash() == "" {
		// the empty "hash" value is replaced by a hex digest of hashLen bytes
		env.Payload = append(env.Payload, make([]byte, hashLen)...)
	}
	env.Pubkey = make([]byte, ed25519.PubKeySize)
	env.Sig = make([]byte, ed25519.SignatureSize)
	dat, err := MarshalEnvelope(env)
	if err != nil {
		return 0, err
	}
	return len(dat), nil
}

func (l Limits) MaxMessageSize() int {
	return l.MaxSize
}

// hex encoded Keccak-256 digest
const hashLen = 64

// EstimateFee prices a message: paid messages cost per started kilobyte and
// retention day, free messages cost nothing.
func EstimateFee(size int, params types.SendParameters, feePerKBDay uint64) uint64 {
	if !params.PaidMessage || size <= 0 || params.DaysRetention <= 0 {
		return 0
	}
	kb := uint64((size + 1023) / 1024)
	return kb * uint64(params.DaysRetention) * feePerKBDay
}
