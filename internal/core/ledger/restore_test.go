package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
)

func closedFixture(t *testing.T) *Ledger {
	t.Helper()
	l := NewOpen(7, amount.SWP(500), [32]byte{3}, 60)
	require.NoError(t, l.Insert(testKeylet(1), []byte{0xA}))
	require.NoError(t, l.Insert(testKeylet(2), []byte{0xB, 0xC}))
	require.NoError(t, l.RecordTx([32]byte{0xD}, []byte("tx"), []byte("meta")))
	l.DestroyUnits(amount.New(10))
	require.NoError(t, l.Close(70))
	return l
}

func TestRestoreRoundTrip(t *testing.T) {
	orig := closedFixture(t)

	state := make(map[[32]byte][]byte)
	require.NoError(t, orig.ForEach(func(key [32]byte, data []byte) bool {
		state[key] = data
		return true
	}))

	restored, err := Restore(orig.Header(), state, orig.Txs())
	require.NoError(t, err)

	assert.True(t, restored.Closed())
	assert.Equal(t, orig.Hash(), restored.Hash())
	assert.Equal(t, orig.Header(), restored.Header())
	assert.Equal(t, orig.EntryCount(), restored.EntryCount())
	assert.Equal(t, orig.Txs(), restored.Txs())

	data, err := restored.Read(testKeylet(2))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xB, 0xC}, data)

	// A restored ledger is sealed.
	assert.ErrorIs(t, restored.Insert(testKeylet(3), []byte{1}), ErrClosed)

	// And it can seed the next open ledger.
	child, err := NewFrom(restored)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), child.Sequence())
	assert.Equal(t, orig.Hash(), child.Header().ParentHash)
}

func TestRestoreRejectsTamperedState(t *testing.T) {
	orig := closedFixture(t)

	state := make(map[[32]byte][]byte)
	require.NoError(t, orig.ForEach(func(key [32]byte, data []byte) bool {
		state[key] = data
		return true
	}))

	// Flip a byte in one entry.
	k := testKeylet(1).Key
	state[k] = []byte{0xFF}

	_, err := Restore(orig.Header(), state, orig.Txs())
	assert.ErrorIs(t, err, ErrSnapshotMismatch)
}

func TestRestoreRejectsMissingTxs(t *testing.T) {
	orig := closedFixture(t)

	state := make(map[[32]byte][]byte)
	require.NoError(t, orig.ForEach(func(key [32]byte, data []byte) bool {
		state[key] = data
		return true
	}))

	_, err := Restore(orig.Header(), state, nil)
	assert.ErrorIs(t, err, ErrSnapshotMismatch)
}

func TestRestoreRejectsTamperedHeader(t *testing.T) {
	orig := closedFixture(t)

	state := make(map[[32]byte][]byte)
	require.NoError(t, orig.ForEach(func(key [32]byte, data []byte) bool {
		state[key] = data
		return true
	}))

	h := orig.Header()
	h.Hash[0] ^= 0x01

	_, err := Restore(h, state, orig.Txs())
	assert.ErrorIs(t, err, ErrSnapshotMismatch)
}
