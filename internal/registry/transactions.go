package registry

import (
	"strconv"
)

// Result kinds a transaction returns, as published in contract metadata.
const (
	ReturnsNothing = ""
	ReturnsString  = "string"
	ReturnsBoolean = "boolean"
)

// Handler runs one transaction from its positional string arguments and
// returns the textual result.
type Handler func(r *Registry, store StateStore, args []string) (string, error)

// Transaction describes one entry of the operation table. ReadOnly entries
// are evaluated and never submitted for ordering.
type Transaction struct {
	Name        string
	Description string
	Params      []string
	ReadOnly    bool
	Returns     string
	Handler     Handler
}

var transactions = []Transaction{
	{
		Name:        OpInitLedger,
		Description: "Write the six seed assets, overwriting existing values",
		Handler: func(r *Registry, store StateStore, _ []string) (string, error) {
			return "", r.InitLedger(store)
		},
	},
	{
		Name:        OpCreateAsset,
		Description: "Create a new asset",
		Params:      []string{"id", "color", "size", "owner", "appraisedValue"},
		Handler: func(r *Registry, store StateStore, args []string) (string, error) {
			size, value, err := parseSizeAndValue(OpCreateAsset, args)
			if err != nil {
				return "", err
			}
			return "", r.CreateAsset(store, args[0], args[1], size, args[3], value)
		},
	},
	{
		Name:        OpReadAsset,
		Description: "Return the stored asset JSON",
		Params:      []string{"id"},
		ReadOnly:    true,
		Returns:     ReturnsString,
		Handler: func(r *Registry, store StateStore, args []string) (string, error) {
			return r.ReadAsset(store, args[0])
		},
	},
	{
		Name:        OpUpdateAsset,
		Description: "Replace every field of an existing asset",
		Params:      []string{"id", "color", "size", "owner", "appraisedValue"},
		Handler: func(r *Registry, store StateStore, args []string) (string, error) {
			size, value, err := parseSizeAndValue(OpUpdateAsset, args)
			if err != nil {
				return "", err
			}
			return "", r.UpdateAsset(store, args[0], args[1], size, args[3], value)
		},
	},
	{
		Name:        OpDeleteAsset,
		Description: "Delete an asset",
		Params:      []string{"id"},
		Handler: func(r *Registry, store StateStore, args []string) (string, error) {
			return "", r.DeleteAsset(store, args[0])
		},
	},
	{
		Name:        OpAssetExists,
		Description: "Report whether an asset exists",
		Params:      []string{"id"},
		ReadOnly:    true,
		Returns:     ReturnsBoolean,
		Handler: func(r *Registry, store StateStore, args []string) (string, error) {
			exists, err := r.AssetExists(store, args[0])
			if err != nil {
				return "", err
			}
			return strconv.FormatBool(exists), nil
		},
	},
	{
		Name:        OpTransferAsset,
		Description: "Change the owner of an asset and return the previous owner",
		Params:      []string{"id", "newOwner"},
		Returns:     ReturnsString,
		Handler: func(r *Registry, store StateStore, args []string) (string, error) {
			return r.TransferAsset(store, args[0], args[1])
		},
	},
	{
		Name:        OpGetAllAssets,
		Description: "Return every record in the namespace as a JSON array",
		ReadOnly:    true,
		Returns:     ReturnsString,
		Handler: func(r *Registry, store StateStore, _ []string) (string, error) {
			return r.GetAllAssets(store)
		},
	},
}

// Transactions returns the operation table in declaration order.
func Transactions() []Transaction {
	out := make([]Transaction, len(transactions))
	copy(out, transactions)
	return out
}

func Lookup(name string) (Transaction, bool) {
	for _, tx := range transactions {
		if tx.Name == name {
			return tx, true
		}
	}
	return Transaction{}, false
}

// ReadOnlyNames lists the transactions that only read the world state.
func ReadOnlyNames() []string {
	var names []string
	for _, tx := range transactions {
		if tx.ReadOnly {
			names = append(names, tx.Name)
		}
	}
	return names
}

// CheckArgs verifies the argument count for the named transaction.
func CheckArgs(name string, args []string) (Transaction, error) {
	tx, ok := Lookup(name)
	if !ok {
		return Transaction{}, newError(name, "", invalid("unknown transaction"))
	}
	if len(args) != len(tx.Params) {
		return Transaction{}, newError(name, "", invalid("expected %d arguments %v, got %d", len(tx.Params), tx.Params, len(args)))
	}
	return tx, nil
}

// Invoke dispatches a transaction by name with string arguments, the shape in
// which the ledger delivers them.
func (r *Registry) Invoke(store StateStore, name string, args []string) (string, error) {
	tx, err := CheckArgs(name, args)
	if err != nil {
		return "", err
	}
	return tx.Handler(r, store, args)
}

func parseSizeAndValue(op string, args []string) (int, int, error) {
	size, err := strconv.Atoi(args[2])
	if err != nil {
		return 0, 0, newError(op, args[0], invalid("size %q is not an integer", args[2]))
	}
	value, err := strconv.Atoi(args[4])
	if err != nil {
		return 0, 0, newError(op, args[0], invalid("appraised value %q is not an integer", args[4]))
	}
	return size, value, nil
}
