// Package indexer keeps a queryable sqlite ledger of every message sent.
package indexer

import (
	"context"
	"time"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/calehh/hac-market/types"
)

const maxPageSize = 1000

type PostIndexer struct {
	logger cmtlog.Logger
	db     *gorm.DB
	now    func() time.Time
}

func NewPostIndexer(logger cmtlog.Logger, dbPath string) (*PostIndexer, error) {
	logger = logger.With("module", "indexer")
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		logger.Error("open sqlite fail", "path", dbPath, "err", err)
		return nil, err
	}
	if err := db.AutoMigrate(&PostRecord{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	return &PostIndexer{
		logger: logger,
		db:     db,
		now:    time.Now,
	}, nil
}

func (c *PostIndexer) Close() error {
	return c.db.Close()
}

// Record stores the outcome of one send.
func (c *PostIndexer) Record(ctx context.Context, o types.PostOutcome) error {
	rec := PostRecord{
		OperationId: o.OperationID,
		DraftId:     o.DraftID,
		Type:        string(o.Type),
		Kind:        string(o.Kind),
		ItemIndex:   o.Index,
		MsgId:       o.MsgID,
		Hash:        o.Hash,
		Paid:        o.Paid,
		Failed:      o.Error != "",
		Error:       o.Error,
		Timestamp:   c.now().Unix(),
	}
	if err := c.db.Create(&rec).Error; err != nil {
		c.logger.Error("save post record fail", "operation", o.OperationID, "err", err)
		return err
	}
	return nil
}

func pageSize(size int) int {
	if size <= 0 || size > maxPageSize {
		return maxPageSize
	}
	return size
}

// PostsByDraft returns the records of a draft, newest first.
func (c *PostIndexer) PostsByDraft(draftId uint64, page int, size int) ([]PostRecord, uint64, error) {
	var records []PostRecord
	size = pageSize(size)
	err := c.db.Where("draft_id = ?", draftId).Order("id desc").Offset(page * size).Limit(size).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&PostRecord{}).Where("draft_id = ?", draftId).Count(&total).Error
	return records, total, err
}

// PostsByOperation returns the records of one post in send order.
func (c *PostIndexer) PostsByOperation(operationId string) ([]PostRecord, error) {
	var records []PostRecord
	err := c.db.Where("operation_id = ?", operationId).Order("id asc").Find(&records).Error
	return records, err
}

// PostsByHash returns every send of a content hash, newest first.
func (c *PostIndexer) PostsByHash(hash string, page int, size int) ([]PostRecord, uint64, error) {
	var records []PostRecord
	size = pageSize(size)
	err := c.db.Where("hash = ?", hash).Order("id desc").Offset(page * size).Limit(size).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&PostRecord{}).Where("hash = ?", hash).Count(&total).Error
	return records, total, err
}

// FailedDependents lists dependent sends of a draft that produced no message.
func (c *PostIndexer) FailedDependents(draftId uint64) ([]PostRecord, error) {
	var records []PostRecord
	err := c.db.Where("draft_id = ? AND kind = ? AND failed = ?", draftId, string(types.PostKindDependent), true).
		Order("id asc").Find(&records).Error
	return records, err
}
