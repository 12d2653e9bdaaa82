// Package server exposes the command dispatcher and the post ledger over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calehh/hac-market/command"
	"github.com/calehh/hac-market/indexer"
	"github.com/calehh/hac-market/types"
)

// Dispatcher runs a named command.
type Dispatcher interface {
	Dispatch(ctx context.Context, method string, params []any) (any, error)
}

// Ledger answers post history queries.
type Ledger interface {
	PostsByDraft(draftId uint64, page int, size int) ([]indexer.PostRecord, uint64, error)
	PostsByOperation(operationId string) ([]indexer.PostRecord, error)
	PostsByHash(hash string, page int, size int) ([]indexer.PostRecord, uint64, error)
	FailedDependents(draftId uint64) ([]indexer.PostRecord, error)
}

type Service struct {
	logger     cmtlog.Logger
	engine     *gin.Engine
	dispatcher Dispatcher
	ledger     Ledger
	listenAddr string
	srv        *http.Server
}

// NewService builds the router. A nil gatherer leaves /metrics unregistered.
func NewService(logger cmtlog.Logger, listenAddr string, dispatcher Dispatcher, ledger Ledger, gatherer prometheus.Gatherer) *Service {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	s := &Service{
		logger:     logger.With("module", "server"),
		engine:     r,
		dispatcher: dispatcher,
		ledger:     ledger,
		listenAddr: listenAddr,
	}
	s.engine.POST("/rpc", s.handleRPC)
	s.engine.POST("/getPosts", s.handleGetPosts)
	if gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

func (s *Service) Handler() http.Handler {
	return s.engine
}

func (s *Service) Start() error {
	s.srv = &http.Server{Addr: s.listenAddr, Handler: s.engine}
	s.logger.Info("http server listening", "addr", s.listenAddr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("http server fail", "err", err)
		return err
	}
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

type RPCReq struct {
	Method string `json:"method" binding:"required"`
	Params []any  `json:"params"`
}

type RPCResponse struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Service) handleRPC(c *gin.Context) {
	var req RPCReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, RPCResponse{Error: err.Error()})
		return
	}
	res, err := s.dispatcher.Dispatch(c.Request.Context(), req.Method, req.Params)
	if err != nil {
		c.JSON(StatusFor(err), RPCResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, RPCResponse{Result: res})
}

// StatusFor maps a command error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, command.ErrUnknownCommand):
		return http.StatusNotFound
	case errors.Is(err, types.ErrMissingParam):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidParam):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrModelNotModifiable):
		return http.StatusConflict
	case errors.Is(err, types.ErrMessageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, types.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, types.ErrSendFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

type GetPostsReq struct {
	DraftId     uint64 `json:"draftId"`
	OperationId string `json:"operationId"`
	Hash        string `json:"hash"`
	Page        int    `json:"page"`
	PageSize    int    `json:"pageSize"`
	// FailedOnly lists the failed image sends of DraftId.
	FailedOnly bool `json:"failedOnly"`
}

type GetPostsResponse struct {
	Posts []indexer.PostRecord `json:"posts"`
	Total uint64               `json:"total"`
}

func (s *Service) handleGetPosts(c *gin.Context) {
	var req GetPostsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var (
		posts []indexer.PostRecord
		total uint64
		err   error
	)
	switch {
	case req.FailedOnly:
		if req.DraftId == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failedOnly requires draftId"})
			return
		}
		posts, err = s.ledger.FailedDependents(req.DraftId)
		total = uint64(len(posts))
	case req.OperationId != "":
		posts, err = s.ledger.PostsByOperation(req.OperationId)
		total = uint64(len(posts))
	case req.Hash != "":
		posts, total, err = s.ledger.PostsByHash(req.Hash, req.Page, req.PageSize)
	case req.DraftId != 0:
		posts, total, err = s.ledger.PostsByDraft(req.DraftId, req.Page, req.PageSize)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "one of draftId, operationId, hash is required"})
		return
	}
	if err != nil {
		s.logger.Error("query posts fail", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if posts == nil {
		posts = make([]indexer.PostRecord, 0)
	}
	c.JSON(http.StatusOK, GetPostsResponse{Posts: posts, Total: total})
}
