package state

import (
	cosmoslog "cosmossdk.io/log"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// treeLogger lets the iavl tree log through the node logger.
type treeLogger struct {
	cmtlog.Logger
}

var _ cosmoslog.Logger = treeLogger{}

func Cometbft2CosmosLogger(lg cmtlog.Logger) cosmoslog.Logger {
	return treeLogger{Logger: lg.With("component", "iavl")}
}

// Warn has no cometbft counterpart and is logged as info.
func (l treeLogger) Warn(msg string, keyVals ...any) {
	l.Logger.Info(msg, keyVals...)
}

func (l treeLogger) With(keyVals ...any) cosmoslog.Logger {
	return treeLogger{Logger: l.Logger.With(keyVals...)}
}

func (l treeLogger) Impl() any {
	return l.Logger
}
