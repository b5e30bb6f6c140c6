// Package registry implements the asset operations against a StateStore.
//
// Every operation receives the store explicitly and keeps nothing between
// calls. Mutating operations emit an event named after the operation before
// writing, and all writes are speculative until the host commits the
// enclosing transaction.
package registry

import (
	"fmt"
	"strings"

	"asset-registry/internal/asset"
	"asset-registry/internal/canonical"
	"asset-registry/internal/logger"
)

const (
	OpInitLedger    = "InitLedger"
	OpCreateAsset   = "CreateAsset"
	OpReadAsset     = "ReadAsset"
	OpUpdateAsset   = "UpdateAsset"
	OpDeleteAsset   = "DeleteAsset"
	OpAssetExists   = "AssetExists"
	OpTransferAsset = "TransferAsset"
	OpGetAllAssets  = "GetAllAssets"
)

type Registry struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{log: log}
}

// InitLedger overwrites the seed assets unconditionally.
func (r *Registry) InitLedger(store StateStore) error {
	for _, a := range asset.Seed() {
		b, err := canonical.Marshal(a)
		if err != nil {
			return newError(OpInitLedger, a.ID, err)
		}
		if err := store.PutState(a.ID, b); err != nil {
			return newError(OpInitLedger, a.ID, fmt.Errorf("put state: %w", err))
		}
		r.log.Info("asset initialized", "id", a.ID)
	}
	return nil
}

func (r *Registry) CreateAsset(store StateStore, id, color string, size int, owner string, appraisedValue int) error {
	if err := validateAsset(id, size, appraisedValue); err != nil {
		return newError(OpCreateAsset, id, err)
	}

	exists, err := assetExists(store, id)
	if err != nil {
		return newError(OpCreateAsset, id, err)
	}
	if exists {
		return newError(OpCreateAsset, id, ErrAlreadyExists)
	}

	return write(store, OpCreateAsset, id, asset.New(id, color, size, owner, appraisedValue))
}

// ReadAsset returns the stored record text as is.
func (r *Registry) ReadAsset(store StateStore, id string) (string, error) {
	b, err := readAsset(store, id)
	if err != nil {
		return "", newError(OpReadAsset, id, err)
	}
	return string(b), nil
}

// UpdateAsset replaces the whole record; nothing from the previous value
// is carried over.
func (r *Registry) UpdateAsset(store StateStore, id, color string, size int, owner string, appraisedValue int) error {
	if err := validateAsset(id, size, appraisedValue); err != nil {
		return newError(OpUpdateAsset, id, err)
	}

	exists, err := assetExists(store, id)
	if err != nil {
		return newError(OpUpdateAsset, id, err)
	}
	if !exists {
		return newError(OpUpdateAsset, id, ErrNotFound)
	}

	return write(store, OpUpdateAsset, id, asset.New(id, color, size, owner, appraisedValue))
}

// DeleteAsset removes the record. The event payload is the stored text
// encoded as a JSON string, which existing event consumers depend on.
func (r *Registry) DeleteAsset(store StateStore, id string) error {
	b, err := readAsset(store, id)
	if err != nil {
		return newError(OpDeleteAsset, id, err)
	}

	payload, err := canonical.Marshal(string(b))
	if err != nil {
		return newError(OpDeleteAsset, id, err)
	}
	if err := store.SetEvent(OpDeleteAsset, payload); err != nil {
		return newError(OpDeleteAsset, id, fmt.Errorf("set event: %w", err))
	}
	if err := store.DelState(id); err != nil {
		return newError(OpDeleteAsset, id, fmt.Errorf("delete state: %w", err))
	}
	return nil
}

func (r *Registry) AssetExists(store StateStore, id string) (bool, error) {
	exists, err := assetExists(store, id)
	if err != nil {
		return false, newError(OpAssetExists, id, err)
	}
	return exists, nil
}

// TransferAsset changes the owner and returns the previous one. Every other
// field of the stored record, including ones this package does not know
// about, is written back unchanged.
func (r *Registry) TransferAsset(store StateStore, id, newOwner string) (string, error) {
	b, err := readAsset(store, id)
	if err != nil {
		return "", newError(OpTransferAsset, id, err)
	}

	tree, err := canonical.Decode(b)
	if err != nil {
		return "", newError(OpTransferAsset, id, malformed("%v", err))
	}
	record, ok := tree.(map[string]any)
	if !ok {
		return "", newError(OpTransferAsset, id, malformed("stored value is not an object"))
	}

	var oldOwner string
	if v, present := record["Owner"]; present {
		s, ok := v.(string)
		if !ok {
			return "", newError(OpTransferAsset, id, malformed("Owner is not a string"))
		}
		oldOwner = s
	}
	record["Owner"] = newOwner

	if err := write(store, OpTransferAsset, id, record); err != nil {
		return "", err
	}
	return oldOwner, nil
}

// GetAllAssets scans the whole namespace and returns the records as one JSON
// array in store order. A value that does not parse is kept as a JSON string
// rather than failing the scan.
func (r *Registry) GetAllAssets(store StateStore) (string, error) {
	iter, err := store.GetStateByRange("", "")
	if err != nil {
		return "", newError(OpGetAllAssets, "", fmt.Errorf("range query: %w", err))
	}
	defer iter.Close()

	records := make([]any, 0)
	for iter.HasNext() {
		kv, err := iter.Next()
		if err != nil {
			return "", newError(OpGetAllAssets, "", fmt.Errorf("iter next: %w", err))
		}
		record, err := canonical.Decode(kv.Value)
		if err != nil {
			r.log.Warn("keeping unparsable record as text", "key", kv.Key, "error", err)
			record = string(kv.Value)
		}
		records = append(records, record)
	}

	out, err := canonical.Marshal(records)
	if err != nil {
		return "", newError(OpGetAllAssets, "", err)
	}
	return string(out), nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id is required")
	}
	return nil
}

func validateAsset(id string, size, appraisedValue int) error {
	if err := validateID(id); err != nil {
		return err
	}
	if size <= 0 {
		return invalid("size must be > 0, got %d", size)
	}
	if appraisedValue < 0 {
		return invalid("appraised value must be >= 0, got %d", appraisedValue)
	}
	return nil
}

// readAsset fetches the stored value, treating an empty value as absent.
// The empty key cannot hold a value, so it is absent without a store read.
func readAsset(store StateStore, id string) ([]byte, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	b, err := store.GetState(id)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	if len(b) == 0 {
		return nil, ErrNotFound
	}
	return b, nil
}

// assetExists reports whether a non-empty value is stored under id.
func assetExists(store StateStore, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	b, err := store.GetState(id)
	if err != nil {
		return false, fmt.Errorf("get state: %w", err)
	}
	return len(b) > 0, nil
}

// write encodes v canonically, emits it as the op's event and stores it.
func write(store StateStore, op, id string, v any) error {
	b, err := canonical.Marshal(v)
	if err != nil {
		return newError(op, id, err)
	}
	if err := store.SetEvent(op, b); err != nil {
		return newError(op, id, fmt.Errorf("set event: %w", err))
	}
	if err := store.PutState(id, b); err != nil {
		return newError(op, id, fmt.Errorf("put state: %w", err))
	}
	return nil
}
