package types

type ActionType string

const (
	ActionListingItemAdd ActionType = "MPA_LISTING_ADD"
	ActionProposalAdd    ActionType = "MPA_PROPOSAL_ADD"
	ActionImageAdd       ActionType = "MPA_IMAGE_ADD"
)

// ActionMessage is a frozen payload broadcast over the messaging layer.
type ActionMessage interface {
	ActionType() ActionType
	MessageHash() string
}

var (
	_ ActionMessage = &ListingItemAddMessage{}
	_ ActionMessage = &ProposalAddMessage{}
	_ ActionMessage = &ImageAddMessage{}
)

type ListingItemAddMessage struct {
	Type        ActionType          `json:"type"`
	Hash        string              `json:"hash"`
	Seller      string              `json:"seller"`
	Information *ItemInformation    `json:"information"`
	Payment     *PaymentInformation `json:"payment"`
}

func (m *ListingItemAddMessage) ActionType() ActionType { return m.Type }
func (m *ListingItemAddMessage) MessageHash() string    { return m.Hash }

// NewListingItemAddMessage composes the outbound message from a draft. Images
// travel as separate dependent messages and are stripped here.
func NewListingItemAddMessage(t *ListingTemplate, seller string) *ListingItemAddMessage {
	msg := &ListingItemAddMessage{
		Type:    ActionListingItemAdd,
		Hash:    t.Hash,
		Seller:  seller,
		Payment: t.Payment,
	}
	if t.Information != nil {
		info := *t.Information
		info.Images = nil
		msg.Information = &info
	}
	return msg
}

type ProposalAddMessage struct {
	Type        ActionType       `json:"type"`
	Hash        string           `json:"hash"`
	Submitter   string           `json:"submitter"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    ProposalCategory `json:"category"`
	Target      string           `json:"target"`
	Options     []ProposalOption `json:"options"`
}

func (m *ProposalAddMessage) ActionType() ActionType { return m.Type }
func (m *ProposalAddMessage) MessageHash() string    { return m.Hash }

type ImageAddMessage struct {
	Type   ActionType `json:"type"`
	Hash   string     `json:"hash"`
	Target string     `json:"target"`
	Data   ImageData  `json:"data"`
}

func (m *ImageAddMessage) ActionType() ActionType { return m.Type }
func (m *ImageAddMessage) MessageHash() string    { return m.Hash }
