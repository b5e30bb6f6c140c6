package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Chaincode configures the chaincode process. When Address is set the
// chaincode runs as an external service the peer connects to; otherwise the
// peer launches it and it dials back.
type Chaincode struct {
	Address          string `env:"CHAINCODE_SERVER_ADDRESS"`
	CCID             string `env:"CHAINCODE_ID"`
	TLSDisabled      bool   `env:"CHAINCODE_TLS_DISABLED" envDefault:"true"`
	TLSKeyFile       string `env:"CHAINCODE_TLS_KEY"`
	TLSCertFile      string `env:"CHAINCODE_TLS_CERT"`
	ClientCACertFile string `env:"CHAINCODE_CLIENT_CA_CERT"`
	LogMode          string `env:"ASSET_LOG_MODE" envDefault:"development"`
}

func (c Chaincode) AsService() bool { return c.Address != "" }

func (c Chaincode) Validate() error {
	if !c.AsService() {
		return nil
	}
	if c.CCID == "" {
		return errors.New("CHAINCODE_ID is required with CHAINCODE_SERVER_ADDRESS")
	}
	if !c.TLSDisabled && (c.TLSKeyFile == "" || c.TLSCertFile == "") {
		return errors.New("CHAINCODE_TLS_KEY and CHAINCODE_TLS_CERT are required when TLS is enabled")
	}
	return nil
}

// Local configures assetctl when it runs transactions against its own
// leveldb world state.
type Local struct {
	DBPath  string `env:"ASSET_DB_PATH" envDefault:"./assetdb"`
	LogMode string `env:"ASSET_LOG_MODE" envDefault:"development"`
}

// Peer holds what the peer CLI needs to reach a channel with two endorsing
// organisations.
type Peer struct {
	Binary                 string        `env:"PEER_BINARY" envDefault:"peer"`
	ChannelName            string        `env:"CHANNEL_NAME" envDefault:"mychannel"`
	ChaincodeName          string        `env:"CHAINCODE_NAME" envDefault:"asset"`
	PeerAddress            string        `env:"PEER_ADDRESS" envDefault:"peer0.org1.example.com:7051"`
	Peer2Address           string        `env:"PEER2_ADDRESS" envDefault:"peer0.org2.example.com:9051"`
	OrdererAddress         string        `env:"ORDERER_ADDRESS" envDefault:"orderer.example.com:7050"`
	OrgMSP                 string        `env:"ORG_MSP" envDefault:"Org1MSP"`
	MSPConfigPath          string        `env:"MSP_CONFIG_PATH"`
	TLSCertFile            string        `env:"PEER_TLS_ROOTCERT_FILE"`
	Peer2TLSCertFile       string        `env:"PEER2_TLS_ROOTCERT_FILE"`
	OrdererTLSRootCertFile string        `env:"ORDERER_TLS_ROOTCERT_FILE"`
	FabricCfgPath          string        `env:"FABRIC_CFG_PATH"`
	Timeout                time.Duration `env:"PEER_TIMEOUT" envDefault:"60s"`
}
