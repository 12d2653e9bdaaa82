package types

// SendParameters are built once per post and shared by the primary and the
// dependent messages; dependents only differ in PaidMessage.
type SendParameters struct {
	Wallet        string `json:"wallet"`
	FromAddress   string `json:"fromAddress"`
	ToAddress     string `json:"toAddress"`
	PaidMessage   bool   `json:"paidMessage"`
	DaysRetention int    `json:"daysRetention"`
	EstimateFee   bool   `json:"estimateFee"`
}

// Unpaid returns a copy with PaidMessage cleared.
func (p SendParameters) Unpaid() SendParameters {
	p.PaidMessage = false
	return p
}

// SendResult aggregates one post. MsgIDs holds one entry per attempted
// dependent send, empty when that send failed.
type SendResult struct {
	Result      string   `json:"result"`
	OperationID string   `json:"operationId,omitempty"`
	MsgID       string   `json:"msgid,omitempty"`
	MsgIDs      []string `json:"msgids"`
	Fee         uint64   `json:"fee,omitempty"`
	Hash        string   `json:"hash,omitempty"`
}

// FailedChildren counts dependent sends that produced no message id.
func (r *SendResult) FailedChildren() int {
	n := 0
	for _, id := range r.MsgIDs {
		if id == "" {
			n++
		}
	}
	return n
}

type PostKind string

const (
	PostKindPrimary   PostKind = "primary"
	PostKindDependent PostKind = "dependent"
)

// PostOutcome is the record of one network send within a post.
type PostOutcome struct {
	OperationID string     `json:"operationId"`
	DraftID     uint64     `json:"draftId"`
	Type        ActionType `json:"type"`
	Kind        PostKind   `json:"kind"`
	Index       int        `json:"index"`
	MsgID       string     `json:"msgid"`
	Hash        string     `json:"hash"`
	Paid        bool       `json:"paid"`
	Error       string     `json:"error,omitempty"`
}
