package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"

	"github.com/calehh/hac-market/config"
	"github.com/calehh/hac-market/crypto"
	"github.com/calehh/hac-market/state"
	"github.com/calehh/hac-market/types"
	"github.com/calehh/hac-market/wallet"
)

const marketWallet = "market"

type initArguments struct {
	Overwrite      bool
	Transport      string
	MarketName     string
	ReceiveAddress string
	ProfileName    string
}

var initArgs initArguments

type printInfo struct {
	Home        string `json:"home"`
	NodeAddress string `json:"node_address"`
	MarketID    uint64 `json:"market_id"`
	ProfileID   uint64 `json:"profile_id"`
	Identity    string `json:"identity"`
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration, the node key and the default market",
	Args:  cobra.ExactArgs(0),
	RunE:  initRun,
}

func init() {
	initCmd.Flags().BoolVarP(&initArgs.Overwrite, "overwrite", "o", false, "overwrite an existing config.toml")
	initCmd.Flags().StringVar(&initArgs.Transport, "transport", config.TransportComet, "network transport, comet or nats")
	initCmd.Flags().StringVar(&initArgs.MarketName, "market", "DEFAULT", "default market name")
	initCmd.Flags().StringVar(&initArgs.ReceiveAddress, "receive-address", "", "market receive address, generated when empty")
	initCmd.Flags().StringVar(&initArgs.ProfileName, "profile", "DEFAULT", "default profile name")
}

func initRun(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig(home())
	cfg.Network.Transport = initArgs.Transport
	if err := cfg.ValidateBasic(); err != nil {
		return err
	}
	if _, err := os.Stat(cfg.ConfigFile()); err == nil && !initArgs.Overwrite {
		return fmt.Errorf("%s already exists, use --overwrite", cfg.ConfigFile())
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}
	if err := config.WriteConfigFile(cfg.ConfigFile(), cfg); err != nil {
		return err
	}

	pv, err := crypto.LoadFilePV(cfg.KeyFile())
	if err != nil {
		pv = crypto.GenPV()
		if err := pv.Save(cfg.KeyFile()); err != nil {
			return err
		}
	}

	logger := cmtlog.NewNopLogger()
	w, err := wallet.NewKeyWallet(cfg.WalletDir(), logger)
	if err != nil {
		return err
	}
	identity, err := w.NewAddress(context.Background(), marketWallet)
	if err != nil {
		return err
	}
	receive := initArgs.ReceiveAddress
	if receive == "" {
		receive = identity
	}

	db, err := state.NewStateDB(cfg.StoreDir(), logger)
	if err != nil {
		return err
	}
	defer db.Close()
	profileID, err := db.AddProfile(&types.Profile{Name: initArgs.ProfileName})
	if err != nil {
		return err
	}
	marketID, err := db.AddMarket(&types.Market{
		Name:           initArgs.MarketName,
		Type:           types.MarketTypeMarketplace,
		ReceiveAddress: receive,
		PublishAddress: receive,
		Identity:       &types.Identity{ID: profileID, Wallet: marketWallet, Address: identity},
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(printInfo{
		Home:        cfg.Home,
		NodeAddress: pv.Address(),
		MarketID:    marketID,
		ProfileID:   profileID,
		Identity:    identity,
	}, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)
	return err
}
