package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
)

func sampleHeader() Header {
	return Header{
		Sequence:            7,
		TotalSupply:         amount.SWP(12345),
		ParentHash:          [32]byte{1, 2},
		TxHash:              [32]byte{3, 4},
		AccountHash:         [32]byte{5, 6},
		ParentCloseTime:     100,
		CloseTime:           110,
		CloseTimeResolution: DefaultCloseTimeResolution,
	}
}

func TestHeaderSerializeRoundTrip(t *testing.T) {
	h := sampleHeader()
	h.Hash = CalculateHash(h)

	data := h.Serialize()
	require.Len(t, data, SerializedLen)

	back, err := Deserialize(data)
	require.NoError(t, err)

	assert.Equal(t, h.Sequence, back.Sequence)
	assert.Equal(t, h.TotalSupply, back.TotalSupply)
	assert.Equal(t, h.ParentHash, back.ParentHash)
	assert.Equal(t, h.TxHash, back.TxHash)
	assert.Equal(t, h.AccountHash, back.AccountHash)
	assert.Equal(t, h.ParentCloseTime, back.ParentCloseTime)
	assert.Equal(t, h.CloseTime, back.CloseTime)
	assert.Equal(t, h.CloseTimeResolution, back.CloseTimeResolution)
	assert.True(t, back.Closed)
	assert.Equal(t, h.Hash, back.Hash, "deserialized header must rehash to the same value")

	_, err = Deserialize(data[:SerializedLen-1])
	assert.ErrorIs(t, err, ErrShortHeader)
}

func TestHeaderHashCoversEveryField(t *testing.T) {
	base := CalculateHash(sampleHeader())

	mutations := map[string]func(*Header){
		"sequence":     func(h *Header) { h.Sequence++ },
		"supply":       func(h *Header) { h.TotalSupply++ },
		"parent hash":  func(h *Header) { h.ParentHash[31]++ },
		"tx hash":      func(h *Header) { h.TxHash[0]++ },
		"account hash": func(h *Header) { h.AccountHash[0]++ },
		"parent close": func(h *Header) { h.ParentCloseTime++ },
		"close time":   func(h *Header) { h.CloseTime++ },
		"resolution":   func(h *Header) { h.CloseTimeResolution++ },
		"close flags":  func(h *Header) { h.CloseFlags++ },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			h := sampleHeader()
			mutate(&h)
			assert.NotEqual(t, base, CalculateHash(h))
		})
	}
}

func TestNetworkTime(t *testing.T) {
	epoch := time.Unix(NetworkEpoch, 0).UTC()
	assert.Equal(t, uint32(0), ToNetworkTime(epoch))
	assert.Equal(t, uint32(0), ToNetworkTime(epoch.Add(-time.Hour)))
	assert.Equal(t, uint32(3600), ToNetworkTime(epoch.Add(time.Hour)))

	at := epoch.Add(42 * time.Second)
	assert.Equal(t, at, FromNetworkTime(ToNetworkTime(at)))
}
