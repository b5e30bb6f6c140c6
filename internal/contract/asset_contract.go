package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-contract-api-go/metadata"

	"asset-registry/internal/logger"
	"asset-registry/internal/registry"
)

// AssetContract exposes the registry operations as chaincode transactions.
// The transaction stub is the world state each call runs against.
type AssetContract struct {
	contractapi.Contract
	registry *registry.Registry
}

func New(log *logger.Logger) *AssetContract {
	c := &AssetContract{registry: registry.New(log)}
	c.Info = metadata.InfoMetadata{
		Title:       "AssetTransfer",
		Description: "Smart contract for trading assets",
		Version:     "1.0",
	}
	return c
}

// GetEvaluateTransactions marks the read-only transactions so clients
// evaluate them instead of submitting them for ordering.
func (c *AssetContract) GetEvaluateTransactions() []string {
	return registry.ReadOnlyNames()
}

func (c *AssetContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	return c.registry.InitLedger(ctx.GetStub())
}

func (c *AssetContract) CreateAsset(ctx contractapi.TransactionContextInterface, id string, color string, size int, owner string, appraisedValue int) error {
	return c.registry.CreateAsset(ctx.GetStub(), id, color, size, owner, appraisedValue)
}

func (c *AssetContract) ReadAsset(ctx contractapi.TransactionContextInterface, id string) (string, error) {
	return c.registry.ReadAsset(ctx.GetStub(), id)
}

func (c *AssetContract) UpdateAsset(ctx contractapi.TransactionContextInterface, id string, color string, size int, owner string, appraisedValue int) error {
	return c.registry.UpdateAsset(ctx.GetStub(), id, color, size, owner, appraisedValue)
}

func (c *AssetContract) DeleteAsset(ctx contractapi.TransactionContextInterface, id string) error {
	return c.registry.DeleteAsset(ctx.GetStub(), id)
}

func (c *AssetContract) AssetExists(ctx contractapi.TransactionContextInterface, id string) (bool, error) {
	return c.registry.AssetExists(ctx.GetStub(), id)
}

func (c *AssetContract) TransferAsset(ctx contractapi.TransactionContextInterface, id string, newOwner string) (string, error) {
	return c.registry.TransferAsset(ctx.GetStub(), id, newOwner)
}

func (c *AssetContract) GetAllAssets(ctx contractapi.TransactionContextInterface) (string, error) {
	return c.registry.GetAllAssets(ctx.GetStub())
}
