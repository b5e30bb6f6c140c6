package registry

import "github.com/hyperledger/fabric-chaincode-go/shim"

//go:generate mockgen -source=store.go -destination=mocks/store.go -package=mocks

// StateStore is the slice of the world state a registry operation touches.
// A Fabric shim.ChaincodeStubInterface satisfies it as is.
type StateStore interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	DelState(key string) error
	// GetStateByRange iterates [startKey, endKey); empty bounds are open.
	GetStateByRange(startKey, endKey string) (shim.StateQueryIteratorInterface, error)
	SetEvent(name string, payload []byte) error
}
