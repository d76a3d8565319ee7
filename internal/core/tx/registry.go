package tx

import (
	"encoding/json"
	"errors"
)

// ErrUnknownTransactionType is returned when a transaction type is unknown.
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// FromJSON creates a Transaction from a JSON object.
func FromJSON(data []byte) (Transaction, error) {
	var raw struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	txType, ok := TypeFromName(raw.TransactionType)
	if !ok {
		return nil, ErrUnknownTransactionType
	}

	t, err := NewFromType(txType)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}

// FromFlat rebuilds a Transaction from a flattened field map, as
// produced by Flatten or DecodeCanonical.
func FromFlat(flat map[string]any) (Transaction, error) {
	data, err := json.Marshal(flat)
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}

// FromBlob rebuilds a Transaction from its canonical wire form.
func FromBlob(blob []byte) (Transaction, error) {
	flat, err := DecodeCanonical(blob)
	if err != nil {
		return nil, err
	}
	return FromFlat(flat)
}

// NewFromType creates a new transaction of the given type.
func NewFromType(txType Type) (Transaction, error) {
	switch txType {
	case TypePayment:
		return &Payment{BaseTx: *NewBaseTx(TypePayment, "")}, nil
	case TypeOfferCreate:
		return &OfferCreate{BaseTx: *NewBaseTx(TypeOfferCreate, "")}, nil
	case TypeOfferAccept:
		return &OfferAccept{BaseTx: *NewBaseTx(TypeOfferAccept, "")}, nil
	case TypeOfferCounter:
		return &OfferCounter{BaseTx: *NewBaseTx(TypeOfferCounter, "")}, nil
	case TypeOfferCancel:
		return &OfferCancel{BaseTx: *NewBaseTx(TypeOfferCancel, "")}, nil
	case TypeAssetCreate:
		return &AssetCreate{BaseTx: *NewBaseTx(TypeAssetCreate, "")}, nil
	case TypeAssetIssue:
		return &AssetIssue{BaseTx: *NewBaseTx(TypeAssetIssue, "")}, nil
	default:
		return nil, ErrUnknownTransactionType
	}
}

// ToJSON converts a Transaction to JSON.
func ToJSON(t Transaction) ([]byte, error) {
	flat, err := t.Flatten()
	if err != nil {
		return nil, err
	}
	return json.Marshal(flat)
}

// SupportedTypes returns all supported transaction types.
func SupportedTypes() []Type {
	return []Type{
		TypePayment,
		TypeOfferCreate,
		TypeOfferAccept,
		TypeOfferCounter,
		TypeOfferCancel,
		TypeAssetCreate,
		TypeAssetIssue,
	}
}
