package smsg

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/calehh/hac-market/types"
)

// ThrottledSender spaces sends to the wrapped Sender. Waiting honours the
// context, so a cancelled post stops before reaching the network.
type ThrottledSender struct {
	next    Sender
	limiter *rate.Limiter
}

// NewThrottledSender allows perSecond sends with the given burst. A
// non-positive rate returns next unchanged.
func NewThrottledSender(next Sender, perSecond float64, burst int) Sender {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &ThrottledSender{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (s *ThrottledSender) Send(ctx context.Context, params types.SendParameters, msg types.ActionMessage) (SendResponse, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return SendResponse{}, err
	}
	return s.next.Send(ctx, params, msg)
}
