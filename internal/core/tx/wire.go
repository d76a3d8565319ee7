package tx

import (
	"errors"

	"github.com/ugorji/go/codec"

	crypto "github.com/LeJamon/goswapd/internal/crypto/common"
)

// cborHandle is the shared canonical CBOR handle. Canonical mode sorts
// map keys, so equal transaction maps always encode to equal bytes;
// hashes and signatures are stable regardless of field order.
var cborHandle = func() *codec.CborHandle {
	h := new(codec.CborHandle)
	h.Canonical = true
	return h
}()

// ErrNotSerializable is returned when a transaction cannot be flattened.
var ErrNotSerializable = errors.New("transaction cannot be serialized")

// EncodeCanonical serializes a flattened transaction to canonical CBOR.
func EncodeCanonical(flat map[string]any) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, cborHandle)
	if err := enc.Encode(flat); err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeCanonical parses a canonical CBOR transaction blob back into a
// flat map. Unsigned integers come back as uint64.
func DecodeCanonical(data []byte) (map[string]any, error) {
	var flat map[string]any
	dec := codec.NewDecoderBytes(data, cborHandle)
	if err := dec.Decode(&flat); err != nil {
		return nil, err
	}
	return flat, nil
}

// Serialize returns the full canonical wire form of a transaction,
// signature included.
func Serialize(t Transaction) ([]byte, error) {
	flat, err := t.Flatten()
	if err != nil {
		return nil, err
	}
	return EncodeCanonical(flat)
}

// SigningPayload returns the bytes a signer commits to: the signing
// prefix followed by the canonical encoding of the transaction with
// the signature field removed.
func SigningPayload(t Transaction) ([]byte, error) {
	flat, err := t.Flatten()
	if err != nil {
		return nil, err
	}
	delete(flat, "TxnSignature")

	body, err := EncodeCanonical(flat)
	if err != nil {
		return nil, err
	}
	return append(crypto.HashPrefixTxSign.Bytes(), body...), nil
}

// ComputeHash returns the transaction ID: the half-SHA512 of the
// transaction-ID prefix followed by the full canonical wire form.
func ComputeHash(t Transaction) ([32]byte, error) {
	data, err := Serialize(t)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Sha512Half(crypto.HashPrefixTransactionID.Bytes(), data), nil
}

// HashFromBlob computes the transaction ID of an already serialized
// wire blob.
func HashFromBlob(blob []byte) [32]byte {
	return crypto.Sha512Half(crypto.HashPrefixTransactionID.Bytes(), blob)
}
