// Package command exposes market operations as positional rpc commands.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	cmtlog "github.com/cometbft/cometbft/libs/log"

	"github.com/calehh/hac-market/types"
	"github.com/calehh/hac-market/validation"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is one rpc method. Execute receives the arguments checked by Rules.
type Command interface {
	Name() string
	Rules() *validation.RuleSet
	Execute(ctx context.Context, args []any) (any, error)
}

// Store is the model access the commands need.
type Store interface {
	AddTemplate(t *types.ListingTemplate) (*types.ListingTemplate, error)
	FindTemplate(id uint64) (*types.ListingTemplate, error)
	UpdateTemplate(t *types.ListingTemplate) (*types.ListingTemplate, error)
	AddImage(templateID uint64, data types.ImageData) (types.Image, error)
	FindMarket(id uint64) (*types.Market, error)
	TemplateLookup() validation.LookupFunc
	MarketLookup() validation.LookupFunc
	ProfileLookup() validation.LookupFunc
}

// Publisher posts frozen messages.
type Publisher interface {
	FinalizeAndPost(ctx context.Context, draft *types.ListingTemplate, market *types.Market, daysRetention int, estimateFee bool) (*types.SendResult, error)
	PostProposal(ctx context.Context, draft *types.ProposalDraft, daysRetention int, estimateFee bool) (*types.SendResult, error)
}

// Dispatcher routes a method name to its command, validating the arguments
// first.
type Dispatcher struct {
	logger   cmtlog.Logger
	commands map[string]Command
}

func NewDispatcher(logger cmtlog.Logger, cmds ...Command) (d *Dispatcher) {
	d = &Dispatcher{
		logger:   logger.With("module", "command"),
		commands: make(map[string]Command),
	}
	for _, c := range cmds {
		d.Register(c)
	}
	return
}

func (d *Dispatcher) Register(c Command) {
	if _, ok := d.commands[c.Name()]; ok {
		panic(fmt.Sprintf("duplicate command %q", c.Name()))
	}
	d.commands[c.Name()] = c
}

// Names lists the registered methods.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.commands))
	for n := range d.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) Dispatch(ctx context.Context, method string, params []any) (any, error) {
	c, ok := d.commands[strings.TrimSpace(method)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, method)
	}
	args, err := c.Rules().Validate(ctx, params)
	if err != nil {
		d.logger.Debug("invalid params", "method", method, "err", err)
		return nil, err
	}
	res, err := c.Execute(ctx, args)
	if err != nil {
		d.logger.Error("command fail", "method", method, "err", err)
		return nil, err
	}
	return res, nil
}

func optString(v any) string {
	s, _ := v.(string)
	return s
}

func optFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}
