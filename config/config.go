package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cmtconfig "github.com/cometbft/cometbft/config"
)

const (
	TransportComet = "comet"
	TransportNats  = "nats"

	DefaultMaxRetentionDays = 90
	DefaultMaxMessageSize   = 512 * 1024
	DefaultFeePerKBDay      = 1000
)

type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

type StoreConfig struct {
	Dir string `mapstructure:"dir"`
}

type IndexerConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type NetworkConfig struct {
	Transport      string  `mapstructure:"transport"`
	CometURL       string  `mapstructure:"comet_url"`
	NatsURL        string  `mapstructure:"nats_url"`
	SubjectPrefix  string  `mapstructure:"subject_prefix"`
	MaxMessageSize int     `mapstructure:"max_message_size"`
	FeePerKBDay    uint64  `mapstructure:"fee_per_kb_day"`
	KeyFile        string  `mapstructure:"key_file"`
	SendsPerSecond float64 `mapstructure:"sends_per_second"`
	SendBurst      int     `mapstructure:"send_burst"`
}

type MarketConfig struct {
	MaxRetentionDays int `mapstructure:"max_retention_days"`
}

type WalletConfig struct {
	KeyDir string `mapstructure:"key_dir"`
}

type Config struct {
	Home     string         `mapstructure:"-"`
	LogLevel string         `mapstructure:"log_level"`
	Server   *ServerConfig  `mapstructure:"server"`
	Store    *StoreConfig   `mapstructure:"store"`
	Indexer  *IndexerConfig `mapstructure:"indexer"`
	Network  *NetworkConfig `mapstructure:"network"`
	Market   *MarketConfig  `mapstructure:"market"`
	Wallet   *WalletConfig  `mapstructure:"wallet"`
}

func DefaultHome() string {
	return os.ExpandEnv("$HOME/.market")
}

// DefaultConfig returns a config with paths relative to home.
func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = DefaultHome()
	}
	return &Config{
		Home:     home,
		LogLevel: cmtconfig.DefaultLogLevel,
		Server:   &ServerConfig{ListenAddr: "127.0.0.1:3100"},
		Store:    &StoreConfig{Dir: "data"},
		Indexer:  &IndexerConfig{DBPath: "data/posts.db"},
		Network: &NetworkConfig{
			Transport:      TransportComet,
			CometURL:       "http://127.0.0.1:26657",
			NatsURL:        "nats://127.0.0.1:4222",
			SubjectPrefix:  "market",
			MaxMessageSize: DefaultMaxMessageSize,
			FeePerKBDay:    DefaultFeePerKBDay,
			KeyFile:        "config/node_key.json",
			SendBurst:      1,
		},
		Market: &MarketConfig{MaxRetentionDays: DefaultMaxRetentionDays},
		Wallet: &WalletConfig{KeyDir: "wallets"},
	}
}

func (c *Config) ConfigFile() string {
	return filepath.Join(c.Home, "config", "config.toml")
}

func (c *Config) rootify(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Home, p)
}

func (c *Config) StoreDir() string      { return c.rootify(c.Store.Dir) }
func (c *Config) IndexerDBPath() string { return c.rootify(c.Indexer.DBPath) }
func (c *Config) KeyFile() string       { return c.rootify(c.Network.KeyFile) }
func (c *Config) WalletDir() string     { return c.rootify(c.Wallet.KeyDir) }

// EnsureDirs creates the directories the node writes into.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{
		filepath.Join(c.Home, "config"),
		c.StoreDir(),
		filepath.Dir(c.IndexerDBPath()),
		filepath.Dir(c.KeyFile()),
		c.WalletDir(),
	} {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return fmt.Errorf("could not create directory %q: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) ValidateBasic() error {
	if c.Server == nil || c.Store == nil || c.Indexer == nil || c.Network == nil || c.Market == nil || c.Wallet == nil {
		return errors.New("incomplete configuration")
	}
	if c.Server.ListenAddr == "" {
		return errors.New("server.listen_addr is empty")
	}
	switch c.Network.Transport {
	case TransportComet:
		if c.Network.CometURL == "" {
			return errors.New("network.comet_url is empty")
		}
	case TransportNats:
		if c.Network.NatsURL == "" {
			return errors.New("network.nats_url is empty")
		}
		if c.Network.SubjectPrefix == "" {
			return errors.New("network.subject_prefix is empty")
		}
	default:
		return fmt.Errorf("unknown network.transport %q", c.Network.Transport)
	}
	if c.Network.MaxMessageSize <= 0 {
		return errors.New("network.max_message_size must be positive")
	}
	if c.Market.MaxRetentionDays <= 0 {
		return errors.New("market.max_retention_days must be positive")
	}
	return nil
}
