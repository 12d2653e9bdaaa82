package indexer

import (
	"context"
	"path/filepath"
	"testing"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calehh/hac-market/types"
)

func newTestIndexer(t *testing.T) *PostIndexer {
	idx, err := NewPostIndexer(cmtlog.NewNopLogger(), filepath.Join(t.TempDir(), "posts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func record(t *testing.T, idx *PostIndexer, op string, draft uint64, kind types.PostKind, i int, msgid string, errStr string) {
	require.NoError(t, idx.Record(context.Background(), types.PostOutcome{
		OperationID: op,
		DraftID:     draft,
		Type:        types.ActionImageAdd,
		Kind:        kind,
		Index:       i,
		MsgID:       msgid,
		Hash:        "h" + op,
		Error:       errStr,
	}))
}

func TestRecordAndQuery(t *testing.T) {
	idx := newTestIndexer(t)
	record(t, idx, "op1", 1, types.PostKindPrimary, 0, "m0", "")
	record(t, idx, "op1", 1, types.PostKindDependent, 0, "m1", "")
	record(t, idx, "op1", 1, types.PostKindDependent, 1, "", "rejected")
	record(t, idx, "op2", 2, types.PostKindPrimary, 0, "n0", "")

	recs, err := idx.PostsByOperation("op1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "m0", recs[0].MsgId)
	assert.Equal(t, "primary", recs[0].Kind)
	assert.True(t, recs[2].Failed)
	assert.Equal(t, "rejected", recs[2].Error)

	recs, total, err := idx.PostsByDraft(1, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, recs, 2)
	assert.Greater(t, recs[0].Id, recs[1].Id)

	recs, total, err = idx.PostsByHash("hop2", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	assert.Equal(t, uint64(2), recs[0].DraftId)

	failed, err := idx.FailedDependents(1)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].ItemIndex)
}
