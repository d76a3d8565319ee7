package tx

import "fmt"

// Type represents a transaction type code.
type Type uint16

const (
	TypeInvalid Type = 0xFFFF // Invalid/unknown type

	TypePayment      Type = 0
	TypeOfferCreate  Type = 1
	TypeOfferAccept  Type = 2
	TypeOfferCounter Type = 3
	TypeOfferCancel  Type = 4
	TypeAssetCreate  Type = 5
	TypeAssetIssue   Type = 6
)

// String returns the string name of the transaction type.
func (t Type) String() string {
	switch t {
	case TypePayment:
		return "Payment"
	case TypeOfferCreate:
		return "OfferCreate"
	case TypeOfferAccept:
		return "OfferAccept"
	case TypeOfferCounter:
		return "OfferCounter"
	case TypeOfferCancel:
		return "OfferCancel"
	case TypeAssetCreate:
		return "AssetCreate"
	case TypeAssetIssue:
		return "AssetIssue"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(t))
	}
}

// typeNameMap maps transaction type names to their codes.
var typeNameMap = map[string]Type{
	"Payment":      TypePayment,
	"OfferCreate":  TypeOfferCreate,
	"OfferAccept":  TypeOfferAccept,
	"OfferCounter": TypeOfferCounter,
	"OfferCancel":  TypeOfferCancel,
	"AssetCreate":  TypeAssetCreate,
	"AssetIssue":   TypeAssetIssue,
}

// TypeFromName returns the transaction type for a given name.
func TypeFromName(name string) (Type, bool) {
	t, ok := typeNameMap[name]
	return t, ok
}
