package indexer

// sqlite models

type PostRecord struct {
	Id          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OperationId string `gorm:"index" json:"operation_id"`
	DraftId     uint64 `gorm:"index" json:"draft_id"`
	Type        string `json:"type"`
	Kind        string `json:"kind"`
	ItemIndex   int    `json:"item_index"`
	MsgId       string `json:"msg_id"`
	Hash        string `gorm:"index" json:"hash"`
	Paid        bool   `json:"paid"`
	Failed      bool   `json:"failed"`
	Error       string `json:"error"`
	Timestamp   int64  `json:"timestamp"`
}
