package keylet

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

func testMaker() [20]byte {
	var maker [20]byte
	for i := range maker {
		maker[i] = byte(i + 1)
	}
	return maker
}

func testToken() record.AssetRef {
	var id [32]byte
	for i := range id {
		id[i] = 0x22
	}
	return record.TokenAsset(id)
}

func keyHex(k Keylet) string {
	return strings.ToUpper(hex.EncodeToString(k.Key[:]))
}

func TestFindOffer(t *testing.T) {
	maker := testMaker()
	native := record.NativeAsset()
	token := testToken()

	t.Run("canonical derivation is deterministic", func(t *testing.T) {
		k1, salt1, err := FindOffer(maker, native, token)
		require.NoError(t, err)
		k2, salt2, err := FindOffer(maker, native, token)
		require.NoError(t, err)

		assert.Equal(t, k1, k2)
		assert.Equal(t, salt1, salt2)
		assert.Equal(t, record.TypeOffer, k1.Type)
		assert.False(t, Ownable(k1.Key))
	})

	t.Run("known tuple", func(t *testing.T) {
		k, salt, err := FindOffer(maker, native, token)
		require.NoError(t, err)

		// Salt 255 derives an ownable key for this tuple, so the search
		// settles one below it.
		assert.Equal(t, uint8(254), salt)
		assert.Equal(t,
			"080DD72E02836473C0D18D63A36D0C2DF8288AEC231D4D492114B7DC8D7AFC70",
			keyHex(k))
		assert.True(t, Ownable(Offer(maker, native, token, 255).Key))
	})

	t.Run("tuple order matters", func(t *testing.T) {
		forward, _, err := FindOffer(maker, native, token)
		require.NoError(t, err)
		flipped, salt, err := FindOffer(maker, token, native)
		require.NoError(t, err)

		assert.NotEqual(t, forward.Key, flipped.Key)
		assert.Equal(t, uint8(254), salt)
		assert.Equal(t,
			"8652DDAA1882CF8DDAA0A5C476D8EBECEE7749D32AD6C3133A19131AF12A4F79",
			keyHex(flipped))
	})

	t.Run("explicit salt recomputes the claimed key", func(t *testing.T) {
		k, salt, err := FindOffer(maker, native, token)
		require.NoError(t, err)

		assert.Equal(t, k, Offer(maker, native, token, salt))
		assert.NotEqual(t, k, Offer(maker, native, token, salt-1))
	})

	t.Run("distinct makers never collide", func(t *testing.T) {
		other := testMaker()
		other[0] ^= 0xff

		k1, _, err := FindOffer(maker, native, token)
		require.NoError(t, err)
		k2, _, err := FindOffer(other, native, token)
		require.NoError(t, err)
		assert.NotEqual(t, k1.Key, k2.Key)
	})
}

func TestStateKeys(t *testing.T) {
	maker := testMaker()

	acct := Account(maker)
	assert.Equal(t, record.TypeAccountRoot, acct.Type)
	assert.Equal(t,
		"9420AA7C8AC45322197E4A315DAEA281935491D8869F2476734699F1FB7E5AB5",
		keyHex(acct))

	fees := Fees()
	assert.Equal(t, record.TypeFeeSettings, fees.Type)
	assert.Equal(t,
		"4BC50C9B0D8515D3EAAE1E74B29A95804346C491EE1A95BF25E4AAB854A6A651",
		keyHex(fees))

	code, err := record.CodeFromString("USD")
	require.NoError(t, err)
	asset := Asset(maker, code)
	assert.Equal(t, record.TypeAsset, asset.Type)
	assert.Equal(t,
		"AC3D94180504D565B496467F5B22250D57A11D61FD9C5EA6ECD91CC7764E6E32",
		keyHex(asset))

	holding := Holding(maker, asset.Key)
	assert.Equal(t, record.TypeHolding, holding.Type)
	assert.Equal(t,
		"56AEF5DF65684AC8DF5529CDFC537ACE7788C16BDDF227D41D464A7B4876D46C",
		keyHex(holding))

	// Same material under different spaces lands on different keys.
	assert.NotEqual(t, acct.Key, Holding(maker, [32]byte{}).Key)
}
