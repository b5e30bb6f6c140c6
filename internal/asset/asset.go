package asset

// DocType discriminates asset records from other record types that may share
// the keyspace.
const DocType = "asset"

// Asset is the record stored under its ID. Fields are declared in the order
// of their JSON names so the plain encoding is already key-sorted.
type Asset struct {
	AppraisedValue int    `json:"AppraisedValue"`
	Color          string `json:"Color"`
	ID             string `json:"ID"`
	Owner          string `json:"Owner"`
	Size           int    `json:"Size"`
	DocType        string `json:"docType"`
}

func New(id, color string, size int, owner string, appraisedValue int) Asset {
	return Asset{
		AppraisedValue: appraisedValue,
		Color:          color,
		ID:             id,
		Owner:          owner,
		Size:           size,
		DocType:        DocType,
	}
}

// Seed returns the fixed set written by InitLedger.
func Seed() []Asset {
	return []Asset{
		New("asset1", "blue", 5, "Tomoko", 300),
		New("asset2", "red", 5, "Brad", 400),
		New("asset3", "green", 10, "Jin Soo", 500),
		New("asset4", "yellow", 10, "Max", 600),
		New("asset5", "black", 15, "Adriana", 700),
		New("asset6", "white", 15, "Michel", 800),
	}
}
