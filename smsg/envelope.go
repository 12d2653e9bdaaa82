package smsg

import (
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/calehh/hac-market/types"
)

const (
	EnvelopeVersion0 uint8 = 0
	EnvelopeVersion1 uint8 = 1
)

var (
	ErrInvalidEnvelope       = errors.New("invalid envelope")
	ErrUnsupportedActionType = errors.New("unsupported action type")
	ErrUnsupportedVersion    = errors.New("unsupported envelope version")
)

// Envelope is the wire form of a market message. Payload carries the JSON
// encoded action message.
type Envelope struct {
	Version       uint8
	Type          string
	From          string
	To            string
	Paid          bool
	DaysRetention uint64
	Payload       []byte
	Pubkey        []byte
	Sig           []byte
}

func NewEnvelope(params types.SendParameters, msg types.ActionMessage) (env *Envelope, err error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	days := params.DaysRetention
	if days < 0 {
		days = 0
	}
	env = &Envelope{
		Version:       EnvelopeVersion1,
		Type:          string(msg.ActionType()),
		From:          params.FromAddress,
		To:            params.ToAddress,
		Paid:          params.PaidMessage,
		DaysRetention: uint64(days),
		Payload:       payload,
	}
	return
}

// SigData is the byte string signed by the sender. ext binds the signature to
// a network, usually the chain id.
func (env *Envelope) SigData(ext []byte) (dat []byte, err error) {
	nenv := *env
	nenv.Pubkey = nil
	nenv.Sig = ext
	dat, err = rlp.EncodeToBytes(&nenv)
	return
}

// ID is the Keccak-256 of the encoded envelope.
func (env *Envelope) ID() (string, error) {
	dat, err := MarshalEnvelope(env)
	if err != nil {
		return "", err
	}
	return crypto.Keccak256Hash(dat).Hex(), nil
}

func MarshalEnvelope(env *Envelope) ([]byte, error) {
	return rlp.EncodeToBytes(env)
}

func UnmarshalEnvelope(dat []byte) (env *Envelope, err error) {
	env = new(Envelope)
	if err = rlp.DecodeBytes(dat, env); err != nil {
		return nil, errors.Join(ErrInvalidEnvelope, err)
	}
	if env.Version > EnvelopeVersion1 {
		return nil, ErrUnsupportedVersion
	}
	return
}

func decodeMessage[M any, PM interface {
	*M
	types.ActionMessage
}](dat []byte) (types.ActionMessage, error) {
	var m M
	if err := json.Unmarshal(dat, &m); err != nil {
		return nil, err
	}
	return PM(&m), nil
}

// Message decodes the payload into its typed action message.
func (env *Envelope) Message() (msg types.ActionMessage, err error) {
	switch types.ActionType(env.Type) {
	case types.ActionListingItemAdd:
		msg, err = decodeMessage[types.ListingItemAddMessage](env.Payload)
	case types.ActionProposalAdd:
		msg, err = decodeMessage[types.ProposalAddMessage](env.Payload)
	case types.ActionImageAdd:
		msg, err = decodeMessage[types.ImageAddMessage](env.Payload)
	default:
		err = ErrUnsupportedActionType
		return
	}
	if err == nil && msg.ActionType() != types.ActionType(env.Type) {
		err = ErrInvalidEnvelope
	}
	return
}
