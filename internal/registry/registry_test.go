package registry_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-registry/internal/asset"
	"asset-registry/internal/registry"
	"asset-registry/internal/registry/mocks"
	"asset-registry/internal/statestore"
)

func readParsed(t *testing.T, r *registry.Registry, store registry.StateStore, id string) asset.Asset {
	t.Helper()
	text, err := r.ReadAsset(store, id)
	require.NoError(t, err)
	var a asset.Asset
	require.NoError(t, json.Unmarshal([]byte(text), &a))
	return a
}

func TestCreateThenRead(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()

	require.NoError(t, r.CreateAsset(store, "asset7", "orange", 3, "Ana", 900))

	text, err := r.ReadAsset(store, "asset7")
	require.NoError(t, err)
	assert.Equal(t, `{"AppraisedValue":900,"Color":"orange","ID":"asset7","Owner":"Ana","Size":3,"docType":"asset"}`, text)
	assert.Equal(t, asset.New("asset7", "orange", 3, "Ana", 900), readParsed(t, r, store, "asset7"))

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "CreateAsset", events[0].Name)
	assert.Equal(t, text, string(events[0].Payload))
}

func TestCreateTwiceFails(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()

	require.NoError(t, r.CreateAsset(store, "asset7", "orange", 3, "Ana", 900))
	err := r.CreateAsset(store, "asset7", "blue", 4, "Bob", 1)
	assert.ErrorIs(t, err, registry.ErrAlreadyExists)
	assert.EqualError(t, err, `CreateAsset: asset "asset7": already exists`)

	assert.Equal(t, "orange", readParsed(t, r, store, "asset7").Color)
	assert.Len(t, store.Events(), 1)
}

func TestCreateExistingDoesNotWrite(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	store := mocks.NewMockStateStore(ctl)

	store.EXPECT().GetState("asset1").Return([]byte(`{"ID":"asset1"}`), nil).Times(1)
	store.EXPECT().PutState(gomock.Any(), gomock.Any()).Times(0)
	store.EXPECT().SetEvent(gomock.Any(), gomock.Any()).Times(0)

	err := registry.New(nil).CreateAsset(store, "asset1", "blue", 5, "Tomoko", 300)
	assert.ErrorIs(t, err, registry.ErrAlreadyExists)
}

func TestCreateEmitsEventBeforePut(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	store := mocks.NewMockStateStore(ctl)

	want := []byte(`{"AppraisedValue":1,"Color":"c","ID":"x","Owner":"o","Size":2,"docType":"asset"}`)
	gomock.InOrder(
		store.EXPECT().GetState("x").Return(nil, nil),
		store.EXPECT().SetEvent("CreateAsset", want).Return(nil),
		store.EXPECT().PutState("x", want).Return(nil),
	)

	require.NoError(t, registry.New(nil).CreateAsset(store, "x", "c", 2, "o", 1))
}

func TestStoreErrorsPropagate(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	store := mocks.NewMockStateStore(ctl)
	boom := errors.New("peer unavailable")

	store.EXPECT().GetState("x").Return(nil, boom).Times(2)
	store.EXPECT().GetStateByRange("", "").Return(nil, boom)

	r := registry.New(nil)
	_, err := r.ReadAsset(store, "x")
	assert.ErrorIs(t, err, boom)
	_, err = r.AssetExists(store, "x")
	assert.ErrorIs(t, err, boom)
	_, err = r.GetAllAssets(store)
	assert.ErrorIs(t, err, boom)
}

func TestCreateValidation(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()

	cases := []struct {
		name  string
		id    string
		size  int
		value int
	}{
		{"blank id", "  ", 1, 1},
		{"zero size", "a", 0, 1},
		{"negative size", "a", -5, 1},
		{"negative value", "a", 1, -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := r.CreateAsset(store, c.id, "blue", c.size, "o", c.value)
			assert.ErrorIs(t, err, registry.ErrInvalidArgument)
		})
	}
	assert.Equal(t, 0, store.Len())

	require.NoError(t, r.CreateAsset(store, "free", "blue", 1, "o", 0), "zero appraised value is allowed")
}

func TestMissingAsset(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()

	_, err := r.ReadAsset(store, "nope")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.EqualError(t, err, `ReadAsset: asset "nope": does not exist`)

	err = r.UpdateAsset(store, "nope", "blue", 1, "o", 1)
	assert.ErrorIs(t, err, registry.ErrNotFound)

	err = r.DeleteAsset(store, "nope")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.EqualError(t, err, `DeleteAsset: asset "nope": does not exist`)

	_, err = r.TransferAsset(store, "nope", "Bob")
	assert.ErrorIs(t, err, registry.ErrNotFound)

	var regErr *registry.Error
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, "TransferAsset", regErr.Op)
	assert.Equal(t, "nope", regErr.ID)

	assert.Empty(t, store.Events())
}

func TestEmptyValueIsAbsent(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()
	require.NoError(t, store.PutState("hollow", []byte{}))

	exists, err := r.AssetExists(store, "hollow")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = r.ReadAsset(store, "hollow")
	assert.ErrorIs(t, err, registry.ErrNotFound)

	require.NoError(t, r.CreateAsset(store, "hollow", "blue", 1, "o", 1))
}

func TestUpdateReplacesWholeRecord(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()

	require.NoError(t, store.PutState("asset1", []byte(`{"AppraisedValue":1,"Color":"blue","Extra":"gone","ID":"asset1","Owner":"A","Size":1,"docType":"asset"}`)))
	require.NoError(t, r.UpdateAsset(store, "asset1", "red", 9, "B", 99))

	text, err := r.ReadAsset(store, "asset1")
	require.NoError(t, err)
	assert.Equal(t, `{"AppraisedValue":99,"Color":"red","ID":"asset1","Owner":"B","Size":9,"docType":"asset"}`, text)

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "UpdateAsset", events[0].Name)
}

func TestExistsLifecycle(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()

	exists, err := r.AssetExists(store, "asset7")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, r.CreateAsset(store, "asset7", "orange", 3, "Ana", 900))
	exists, err = r.AssetExists(store, "asset7")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, r.DeleteAsset(store, "asset7"))
	exists, err = r.AssetExists(store, "asset7")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = r.AssetExists(store, "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteEventIsStringEncoded(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()

	require.NoError(t, r.CreateAsset(store, "asset7", "orange", 3, "Ana", 900))
	require.NoError(t, r.DeleteAsset(store, "asset7"))

	events := store.Events()
	require.Len(t, events, 2)
	del := events[1]
	assert.Equal(t, "DeleteAsset", del.Name)

	var inner string
	require.NoError(t, json.Unmarshal(del.Payload, &inner), "payload is a JSON string")
	assert.Equal(t, string(events[0].Payload), inner)
}

func TestTransferAsset(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()
	require.NoError(t, r.CreateAsset(store, "asset7", "orange", 3, "Ana", 900))

	old, err := r.TransferAsset(store, "asset7", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "Ana", old)

	want := asset.New("asset7", "orange", 3, "Bob", 900)
	assert.Equal(t, want, readParsed(t, r, store, "asset7"))

	old, err = r.TransferAsset(store, "asset7", "Cy")
	require.NoError(t, err)
	assert.Equal(t, "Bob", old)

	events := store.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "TransferAsset", events[2].Name)
}

func TestTransferPreservesOtherFields(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()
	require.NoError(t, store.PutState("legacy", []byte(`{"docType":"asset","ID":"legacy","Owner":"A","AppraisedValue":1.50,"Size":12345678901234567890,"Notes":{"z":1,"a":2}}`)))

	old, err := r.TransferAsset(store, "legacy", "B")
	require.NoError(t, err)
	assert.Equal(t, "A", old)

	text, err := r.ReadAsset(store, "legacy")
	require.NoError(t, err)
	assert.Equal(t, `{"AppraisedValue":1.50,"ID":"legacy","Notes":{"a":2,"z":1},"Owner":"B","Size":12345678901234567890,"docType":"asset"}`, text)
}

func TestTransferMalformedRecord(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()
	require.NoError(t, store.PutState("bad", []byte(`not json`)))
	require.NoError(t, store.PutState("list", []byte(`[1,2]`)))
	require.NoError(t, store.PutState("owner", []byte(`{"Owner":7}`)))

	for _, id := range []string{"bad", "list", "owner"} {
		_, err := r.TransferAsset(store, id, "B")
		assert.ErrorIs(t, err, registry.ErrMalformed, id)
	}
	assert.Empty(t, store.Events())
}

func TestTransferAcceptsAnyOwner(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()

	_, err := r.TransferAsset(store, "missing", "")
	assert.ErrorIs(t, err, registry.ErrNotFound)

	require.NoError(t, r.CreateAsset(store, "asset7", "orange", 3, "", 900))
	old, err := r.TransferAsset(store, "asset7", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "", old)

	old, err = r.TransferAsset(store, "asset7", "")
	require.NoError(t, err)
	assert.Equal(t, "Ana", old)
	assert.Equal(t, "", readParsed(t, r, store, "asset7").Owner)
}

func TestWhitespaceKeyIsVisible(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()
	require.NoError(t, store.PutState(" ", []byte(`{"ID":" ","Owner":"A"}`)))

	exists, err := r.AssetExists(store, " ")
	require.NoError(t, err)
	assert.True(t, exists)

	text, err := r.ReadAsset(store, " ")
	require.NoError(t, err)
	assert.Equal(t, `{"ID":" ","Owner":"A"}`, text)

	old, err := r.TransferAsset(store, " ", "B")
	require.NoError(t, err)
	assert.Equal(t, "A", old)

	require.NoError(t, r.DeleteAsset(store, " "))
	exists, err = r.AssetExists(store, " ")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = r.ReadAsset(store, "  ")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	_, err = r.ReadAsset(store, "")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	err = r.DeleteAsset(store, "")
	assert.ErrorIs(t, err, registry.ErrNotFound)

	err = r.CreateAsset(store, " ", "blue", 1, "o", 1)
	assert.ErrorIs(t, err, registry.ErrInvalidArgument, "new records still need a real id")
}

func TestGetAllAssetsSortsStoredKeys(t *testing.T) {
	store := statestore.NewMemory()
	require.NoError(t, store.PutState("raw", []byte(`{"Owner":"A", "ID":"raw"}`)))

	text, err := registry.New(nil).GetAllAssets(store)
	require.NoError(t, err)
	assert.Equal(t, `[{"ID":"raw","Owner":"A"}]`, text)
}

func TestInitLedgerAndGetAll(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()

	require.NoError(t, store.PutState("asset1", []byte(`{"ID":"asset1","Owner":"someone else"}`)))
	require.NoError(t, r.InitLedger(store))
	require.NoError(t, r.InitLedger(store))
	assert.Empty(t, store.Events(), "InitLedger emits no events")

	text, err := r.GetAllAssets(store)
	require.NoError(t, err)

	var all []asset.Asset
	require.NoError(t, json.Unmarshal([]byte(text), &all))
	assert.Equal(t, asset.Seed(), all)
	assert.Equal(t, 0, store.OpenIterators())
}

func TestGetAllAssetsEmpty(t *testing.T) {
	store := statestore.NewMemory()
	text, err := registry.New(nil).GetAllAssets(store)
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	assert.Equal(t, 0, store.OpenIterators())
}

func TestGetAllAssetsKeepsUnparsableRecords(t *testing.T) {
	r := registry.New(nil)
	store := statestore.NewMemory()
	require.NoError(t, r.CreateAsset(store, "a", "blue", 1, "o", 1))
	require.NoError(t, store.PutState("b", []byte(`{broken`)))
	require.NoError(t, r.CreateAsset(store, "c", "red", 2, "p", 2))

	text, err := r.GetAllAssets(store)
	require.NoError(t, err)
	assert.Equal(t, `[{"AppraisedValue":1,"Color":"blue","ID":"a","Owner":"o","Size":1,"docType":"asset"},"{broken",{"AppraisedValue":2,"Color":"red","ID":"c","Owner":"p","Size":2,"docType":"asset"}]`, text)
}
