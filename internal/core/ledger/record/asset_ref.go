package record

import (
	"errors"
	"fmt"
)

// AssetKind discriminates the two currency forms a trade leg can name.
type AssetKind uint8

const (
	AssetNative AssetKind = iota
	AssetToken
)

// AssetRef names the currency of one trade leg: either the ledger's
// native unit or a registered token identified by its 32-byte asset key.
// The kind tag is explicit; no key value is reserved as a sentinel.
type AssetRef struct {
	Kind AssetKind
	ID   [32]byte // token asset key, set only when Kind is AssetToken
}

// NativeAsset returns the reference to the native unit.
func NativeAsset() AssetRef {
	return AssetRef{Kind: AssetNative}
}

// TokenAsset returns the reference to the token with the given asset key.
func TokenAsset(id [32]byte) AssetRef {
	return AssetRef{Kind: AssetToken, ID: id}
}

// IsNative reports whether the reference names the native unit.
func (a AssetRef) IsNative() bool {
	return a.Kind == AssetNative
}

// Equal reports whether two references name the same currency.
func (a AssetRef) Equal(b AssetRef) bool {
	if a.Kind != b.Kind {
		return false
	}
	return a.Kind == AssetNative || a.ID == b.ID
}

// Validate rejects out-of-range kinds and token references with a zero key.
func (a AssetRef) Validate() error {
	switch a.Kind {
	case AssetNative:
		return nil
	case AssetToken:
		if a.ID == [32]byte{} {
			return errors.New("token asset key is required")
		}
		return nil
	default:
		return fmt.Errorf("invalid asset kind %d", a.Kind)
	}
}

// String renders "native" or the token key in hex.
func (a AssetRef) String() string {
	if a.IsNative() {
		return "native"
	}
	return hexUpper(a.ID[:])
}

// Encode returns the reference in its wire form: the kind tag followed
// by the asset key for tokens. The same bytes serve as derivation seed
// material.
func (a AssetRef) Encode() []byte {
	if a.Kind == AssetToken {
		return append([]byte{1}, a.ID[:]...)
	}
	return []byte{0}
}

func (w *writer) assetRef(a AssetRef) {
	w.raw(a.Encode())
}

func (r *reader) assetRef() AssetRef {
	switch v := r.u8(); v {
	case 0:
		return NativeAsset()
	case 1:
		return TokenAsset(r.array32())
	default:
		r.fail(fmt.Errorf("record: invalid asset kind tag %#02x", v))
		return AssetRef{}
	}
}

// assetRefLen is the worst-case encoded size of an AssetRef.
const assetRefLen = 1 + 32
