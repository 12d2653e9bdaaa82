package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmtconfig "github.com/cometbft/cometbft/config"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/calehh/hac-market/command"
	"github.com/calehh/hac-market/config"
	"github.com/calehh/hac-market/crypto"
	"github.com/calehh/hac-market/indexer"
	"github.com/calehh/hac-market/publish"
	"github.com/calehh/hac-market/server"
	"github.com/calehh/hac-market/smsg"
	"github.com/calehh/hac-market/state"
	"github.com/calehh/hac-market/wallet"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the market service",
	Args:  cobra.ExactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func newSender(cfg *config.Config, logger cmtlog.Logger) (sender smsg.Sender, closer func(), err error) {
	switch cfg.Network.Transport {
	case config.TransportNats:
		s, nc, err := smsg.NewNatsSender(cfg.Network.NatsURL, cfg.Network.SubjectPrefix, cfg.Network.FeePerKBDay, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, nc.Close, nil
	case config.TransportComet:
		pv, err := crypto.LoadFilePV(cfg.KeyFile())
		if err != nil {
			return nil, nil, err
		}
		s, err := smsg.NewCometSender(cfg.Network.CometURL, pv, cfg.Network.FeePerKBDay, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown transport %q", cfg.Network.Transport)
}

func run(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadConfig(home())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout))
	logger, err = cmtflags.ParseLogLevel(cfg.LogLevel, logger, cmtconfig.DefaultLogLevel)
	if err != nil {
		log.Fatalf("failed to parse log level: %v", err)
	}

	db, err := state.NewStateDB(cfg.StoreDir(), logger)
	if err != nil {
		log.Fatalf("open store err %s", err.Error())
	}
	defer db.Close()

	w, err := wallet.NewKeyWallet(cfg.WalletDir(), logger)
	if err != nil {
		log.Fatalf("open wallet err %s", err.Error())
	}

	sender, closeSender, err := newSender(cfg, logger)
	if err != nil {
		log.Fatalf("new sender err %s", err.Error())
	}
	defer closeSender()
	sender = smsg.NewThrottledSender(sender, cfg.Network.SendsPerSecond, cfg.Network.SendBurst)

	idx, err := indexer.NewPostIndexer(logger, cfg.IndexerDBPath())
	if err != nil {
		log.Fatalf("new post indexer err %s", err.Error())
	}
	defer idx.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	limits := smsg.Limits{MaxSize: cfg.Network.MaxMessageSize, FeePerKBDay: cfg.Network.FeePerKBDay}
	svc := publish.NewService(db, wallet.NewProvisioner(w, logger), sender, limits, publish.Config{
		MaxRetentionDays: cfg.Market.MaxRetentionDays,
		FeePerKBDay:      cfg.Network.FeePerKBDay,
	}, logger)
	svc.SetRecorder(idx)
	svc.SetMetrics(publish.NewMetrics(reg))

	dispatcher := command.NewDispatcher(logger,
		command.NewTemplateAddCommand(db),
		command.NewTemplateUpdateCommand(db),
		command.NewTemplatePostCommand(db, svc, cfg.Market.MaxRetentionDays),
		command.NewImageAddCommand(db),
		command.NewProposalPostCommand(db, svc, cfg.Market.MaxRetentionDays),
	)

	srv := server.NewService(logger, cfg.Server.ListenAddr, dispatcher, idx, reg)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("http server err %s", err.Error())
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("shut done...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("stop http server fail", "err", err)
	}
}
