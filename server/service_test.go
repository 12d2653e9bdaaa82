package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calehh/hac-market/command"
	"github.com/calehh/hac-market/indexer"
	"github.com/calehh/hac-market/types"
)

type fakeDispatcher struct {
	method string
	params []any
	res    any
	err    error
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, method string, params []any) (any, error) {
	d.method = method
	d.params = params
	return d.res, d.err
}

func newTestService(t *testing.T, d Dispatcher) (*Service, *indexer.PostIndexer) {
	idx, err := indexer.NewPostIndexer(cmtlog.NewNopLogger(), filepath.Join(t.TempDir(), "posts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "market_test_total"})
	reg.MustRegister(c)
	c.Inc()
	return NewService(cmtlog.NewNopLogger(), ":0", d, idx, reg), idx
}

func post(t *testing.T, s *Service, path string, body any) *httptest.ResponseRecorder {
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestRPC(t *testing.T) {
	d := &fakeDispatcher{res: &types.SendResult{Result: "Sent.", MsgID: "m1", MsgIDs: []string{}}}
	s, _ := newTestService(t, d)

	w := post(t, s, "/rpc", RPCReq{Method: "template post", Params: []any{1, 4, 1}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "template post", d.method)
	assert.Equal(t, []any{float64(1), float64(4), float64(1)}, d.params)

	var resp struct {
		Result types.SendResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "m1", resp.Result.MsgID)

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader("{"))
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRPCErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: bid", command.ErrUnknownCommand), http.StatusNotFound},
		{&types.MissingParamError{Name: "marketId"}, http.StatusNotFound},
		{&types.InvalidParamError{Name: "daysRetention", Expected: "number"}, http.StatusBadRequest},
		{&types.ModelNotFoundError{Model: "Market"}, http.StatusNotFound},
		{&types.ModelNotModifiableError{Model: "ListingItemTemplate"}, http.StatusConflict},
		{&types.MessageTooLargeError{Size: 10, Max: 1}, http.StatusRequestEntityTooLarge},
		{&types.NotImplementedError{Scheme: "MAD"}, http.StatusNotImplemented},
		{&types.SendError{Type: types.ActionListingItemAdd, Err: errors.New("down")}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		d := &fakeDispatcher{err: tc.err}
		s, _ := newTestService(t, d)
		w := post(t, s, "/rpc", RPCReq{Method: "x"})
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
		assert.Contains(t, w.Body.String(), "error")
	}
}

func TestGetPosts(t *testing.T) {
	s, idx := newTestService(t, &fakeDispatcher{})
	ctx := context.Background()
	for i, msgid := range []string{"m0", "m1"} {
		kind := types.PostKindDependent
		if i == 0 {
			kind = types.PostKindPrimary
		}
		require.NoError(t, idx.Record(ctx, types.PostOutcome{OperationID: "op", DraftID: 3, Kind: kind, Index: i, MsgID: msgid, Hash: "h"}))
	}

	w := post(t, s, "/getPosts", GetPostsReq{DraftId: 3})
	require.Equal(t, http.StatusOK, w.Code)
	var resp GetPostsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(2), resp.Total)
	assert.Equal(t, "m1", resp.Posts[0].MsgId)

	w = post(t, s, "/getPosts", GetPostsReq{OperationId: "op"})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "m0", resp.Posts[0].MsgId)

	w = post(t, s, "/getPosts", GetPostsReq{DraftId: 9})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Posts)
	assert.NotNil(t, resp.Posts)

	w = post(t, s, "/getPosts", GetPostsReq{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPostsFailedOnly(t *testing.T) {
	s, idx := newTestService(t, &fakeDispatcher{})
	ctx := context.Background()
	require.NoError(t, idx.Record(ctx, types.PostOutcome{OperationID: "op", DraftID: 5, Kind: types.PostKindPrimary, MsgID: "m0", Hash: "h"}))
	require.NoError(t, idx.Record(ctx, types.PostOutcome{OperationID: "op", DraftID: 5, Kind: types.PostKindDependent, Index: 1, MsgID: "m1", Hash: "h"}))
	require.NoError(t, idx.Record(ctx, types.PostOutcome{OperationID: "op", DraftID: 5, Kind: types.PostKindDependent, Index: 2, Hash: "h", Error: "broken pipe"}))

	w := post(t, s, "/getPosts", GetPostsReq{DraftId: 5, FailedOnly: true})
	require.Equal(t, http.StatusOK, w.Code)
	var resp GetPostsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, uint64(1), resp.Total)
	assert.Equal(t, 2, resp.Posts[0].ItemIndex)
	assert.True(t, resp.Posts[0].Failed)

	w = post(t, s, "/getPosts", GetPostsReq{OperationId: "op", FailedOnly: true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetrics(t *testing.T) {
	s, _ := newTestService(t, &fakeDispatcher{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "market_test_total 1")
}

func TestClient(t *testing.T) {
	d := &fakeDispatcher{res: &types.SendResult{Result: "Estimated.", Fee: 12, MsgIDs: []string{}}}
	s, idx := newTestService(t, d)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	cli := NewClient(ts.URL)
	ctx := context.Background()

	raw, err := cli.Call(ctx, "template post", 1, 4, 1, true)
	require.NoError(t, err)
	var res types.SendResult
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, uint64(12), res.Fee)
	assert.Equal(t, []any{float64(1), float64(4), float64(1), true}, d.params)

	d.err = &types.ModelNotFoundError{Model: "Market"}
	_, err = cli.Call(ctx, "template post", 1, 4, 9)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "Entity with name Market cannot be found.", se.Message)

	require.NoError(t, idx.Record(ctx, types.PostOutcome{OperationID: "op", DraftID: 1, Kind: types.PostKindPrimary, MsgID: "m"}))
	posts, err := cli.GetPosts(ctx, GetPostsReq{OperationId: "op"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), posts.Total)
}
