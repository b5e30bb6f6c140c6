package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"asset-registry/internal/config"
	"asset-registry/internal/contract"
	"asset-registry/internal/logger"
)

func main() {
	var cfg config.Chaincode
	if err := config.ParseEnv(&cfg); err != nil {
		log.Panicf("Error loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Panicf("Invalid config: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Panicf("Error creating logger: %v", err)
	}
	defer lg.Sync()

	chaincode, err := contractapi.NewChaincode(contract.New(lg))
	if err != nil {
		log.Panicf("Error creating chaincode: %v", err)
	}

	chaincode.Info.Title = "asset-transfer"
	chaincode.Info.Version = "1.0"

	if !cfg.AsService() {
		if err := chaincode.Start(); err != nil {
			log.Panicf("Error starting chaincode: %v", err)
		}
		return
	}

	tlsProps, err := tlsProperties(cfg)
	if err != nil {
		log.Panicf("Error loading TLS material: %v", err)
	}
	server := &shim.ChaincodeServer{
		CCID:     cfg.CCID,
		Address:  cfg.Address,
		CC:       chaincode,
		TLSProps: tlsProps,
	}
	lg.Info("starting chaincode server", "address", cfg.Address, "ccid", cfg.CCID, "tls", !cfg.TLSDisabled)
	if err := server.Start(); err != nil {
		log.Panicf("Error starting chaincode server: %v", err)
	}
}

func tlsProperties(cfg config.Chaincode) (shim.TLSProperties, error) {
	if cfg.TLSDisabled {
		return shim.TLSProperties{Disabled: true}, nil
	}

	key, err := os.ReadFile(cfg.TLSKeyFile)
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("read key: %w", err)
	}
	cert, err := os.ReadFile(cfg.TLSCertFile)
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("read cert: %w", err)
	}

	props := shim.TLSProperties{Key: key, Cert: cert}
	if cfg.ClientCACertFile != "" {
		ca, err := os.ReadFile(cfg.ClientCACertFile)
		if err != nil {
			return shim.TLSProperties{}, fmt.Errorf("read client ca cert: %w", err)
		}
		props.ClientCACerts = ca
	}
	return props, nil
}
