package types

type ProposalCategory string

const (
	ProposalCategoryPublicVote ProposalCategory = "PUBLIC_VOTE"
	ProposalCategoryItemVote   ProposalCategory = "ITEM_VOTE"
	ProposalCategoryMarketVote ProposalCategory = "MARKET_VOTE"
)

// ProposalDraft is the validated input of a governance proposal post.
type ProposalDraft struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Options     []string         `json:"options"`
	Category    ProposalCategory `json:"category"`
	Target      string           `json:"target"`
	Submitter   string           `json:"submitter"`
	Market      *Market          `json:"market"`
}

type ProposalOption struct {
	OptionID    int    `json:"optionId"`
	Description string `json:"description"`
	Hash        string `json:"hash"`
}
