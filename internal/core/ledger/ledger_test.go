package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
)

func testKeylet(b byte) keylet.Keylet {
	var owner [20]byte
	owner[0] = b
	return keylet.Account(owner)
}

func TestLedgerViewOperations(t *testing.T) {
	l := NewOpen(1, amount.SWP(1000), [32]byte{}, 0)
	k := testKeylet(1)

	exists, err := l.Exists(k)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = l.Read(k)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	require.NoError(t, l.Insert(k, []byte{1, 2, 3}))
	assert.ErrorIs(t, l.Insert(k, []byte{9}), ErrEntryExists)

	exists, err = l.Exists(k)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := l.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	// Mutating the returned slice must not touch ledger state.
	data[0] = 0xFF
	again, err := l.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again)

	require.NoError(t, l.Update(k, []byte{4, 5}))
	data, err = l.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5}, data)

	assert.ErrorIs(t, l.Update(testKeylet(2), []byte{1}), ErrEntryNotFound)
	assert.ErrorIs(t, l.Erase(testKeylet(2)), ErrEntryNotFound)

	require.NoError(t, l.Erase(k))
	exists, err = l.Exists(k)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLedgerClose(t *testing.T) {
	l := NewOpen(5, amount.SWP(1000), [32]byte{7}, 100)
	require.NoError(t, l.Insert(testKeylet(1), []byte{1}))

	l.DestroyUnits(amount.New(25))

	require.NoError(t, l.Close(200))
	assert.True(t, l.Closed())

	h := l.Header()
	assert.Equal(t, uint32(5), h.Sequence)
	assert.Equal(t, amount.SWP(1000)-amount.New(25), h.TotalSupply)
	assert.Equal(t, uint32(200), h.CloseTime)
	assert.Equal(t, uint32(100), h.ParentCloseTime)
	assert.NotEqual(t, [32]byte{}, h.AccountHash)
	assert.Equal(t, [32]byte{}, h.TxHash)
	assert.NotEqual(t, [32]byte{}, h.Hash)

	// Sealed ledgers reject every write.
	assert.ErrorIs(t, l.Close(300), ErrClosed)
	assert.ErrorIs(t, l.Insert(testKeylet(2), []byte{1}), ErrClosed)
	assert.ErrorIs(t, l.Update(testKeylet(1), []byte{2}), ErrClosed)
	assert.ErrorIs(t, l.Erase(testKeylet(1)), ErrClosed)
	assert.ErrorIs(t, l.RecordTx([32]byte{1}, nil, nil), ErrClosed)

	// Reads still work.
	data, err := l.Read(testKeylet(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)
}

func TestLedgerCloseDeterministic(t *testing.T) {
	build := func() *Ledger {
		l := NewOpen(3, amount.SWP(50), [32]byte{9}, 10)
		require.NoError(t, l.Insert(testKeylet(2), []byte{2}))
		require.NoError(t, l.Insert(testKeylet(1), []byte{1}))
		require.NoError(t, l.Close(20))
		return l
	}

	a, b := build(), build()
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, a.Header().AccountHash, b.Header().AccountHash)
}

func TestLedgerRecordTx(t *testing.T) {
	l := NewOpen(2, amount.SWP(100), [32]byte{}, 0)

	require.NoError(t, l.RecordTx([32]byte{1}, []byte("tx1"), []byte("meta1")))
	require.NoError(t, l.RecordTx([32]byte{2}, []byte("tx2"), []byte("meta2")))
	assert.Equal(t, 2, l.TxCount())

	txs := l.Txs()
	require.Len(t, txs, 2)
	assert.Equal(t, [32]byte{1}, txs[0].Hash)
	assert.Equal(t, [32]byte{2}, txs[1].Hash)

	require.NoError(t, l.Close(50))
	assert.NotEqual(t, [32]byte{}, l.Header().TxHash)
}

func TestLedgerNewFrom(t *testing.T) {
	parent := NewOpen(1, amount.SWP(100), [32]byte{}, 0)
	require.NoError(t, parent.Insert(testKeylet(1), []byte{1}))

	_, err := NewFrom(parent)
	require.Error(t, err, "open parent cannot seed a child")

	require.NoError(t, parent.Close(40))

	child, err := NewFrom(parent)
	require.NoError(t, err)

	assert.Equal(t, uint32(2), child.Sequence())
	assert.False(t, child.Closed())

	h := child.Header()
	assert.Equal(t, parent.Hash(), h.ParentHash)
	assert.Equal(t, uint32(40), h.ParentCloseTime)
	assert.Equal(t, parent.Header().TotalSupply, h.TotalSupply)

	// State carries over and is independent of the parent.
	data, err := child.Read(testKeylet(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)

	require.NoError(t, child.Update(testKeylet(1), []byte{9}))
	parentData, err := parent.Read(testKeylet(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, parentData)
}

func TestLedgerForEach(t *testing.T) {
	l := NewOpen(1, amount.SWP(10), [32]byte{}, 0)
	require.NoError(t, l.Insert(testKeylet(1), []byte{1}))
	require.NoError(t, l.Insert(testKeylet(2), []byte{2}))
	require.NoError(t, l.Insert(testKeylet(3), []byte{3}))

	seen := 0
	require.NoError(t, l.ForEach(func(key [32]byte, data []byte) bool {
		seen++
		return true
	}))
	assert.Equal(t, 3, seen)
	assert.Equal(t, 3, l.EntryCount())

	// Early stop.
	seen = 0
	require.NoError(t, l.ForEach(func(key [32]byte, data []byte) bool {
		seen++
		return false
	}))
	assert.Equal(t, 1, seen)
}
