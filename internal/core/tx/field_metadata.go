package tx

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

// Field metadata flags deciding where a record field surfaces in
// transaction metadata.
const (
	// sMD_Never excludes a field from metadata entirely.
	sMD_Never uint8 = 0x00
	// sMD_ChangeOrig surfaces the original value of a changed field in
	// PreviousFields.
	sMD_ChangeOrig uint8 = 0x01
	// sMD_ChangeNew surfaces the new value in FinalFields.
	sMD_ChangeNew uint8 = 0x02
	// sMD_DeleteFinal surfaces the final value when the node is deleted.
	sMD_DeleteFinal uint8 = 0x04
	// sMD_Create surfaces the value in NewFields for created nodes.
	sMD_Create uint8 = 0x08
	// sMD_Always surfaces the value whenever the node is affected.
	sMD_Always uint8 = 0x10
	// sMD_Default is the treatment for most fields.
	sMD_Default uint8 = sMD_ChangeOrig | sMD_ChangeNew | sMD_DeleteFinal | sMD_Create
)

// fieldMetadata overrides the default treatment per field name. The
// entry type and threading markers are node-level attributes and never
// appear among the field maps, except that the threading markers of a
// deleted record are preserved in its FinalFields.
var fieldMetadata = map[string]uint8{
	"LedgerEntryType":   sMD_Never,
	"PreviousTxnID":     sMD_DeleteFinal,
	"PreviousTxnLgrSeq": sMD_DeleteFinal,
}

func getFieldMetadata(fieldName string) uint8 {
	if flags, ok := fieldMetadata[fieldName]; ok {
		return flags
	}
	return sMD_Default
}

func shouldIncludeInPreviousFields(fieldName string) bool {
	return getFieldMetadata(fieldName)&sMD_ChangeOrig != 0
}

func shouldIncludeInFinalFields(fieldName string) bool {
	return getFieldMetadata(fieldName)&(sMD_Always|sMD_ChangeNew) != 0
}

func shouldIncludeInCreate(fieldName string) bool {
	return getFieldMetadata(fieldName)&(sMD_Create|sMD_Always) != 0
}

func shouldIncludeInDeleteFinal(fieldName string) bool {
	return getFieldMetadata(fieldName)&(sMD_Always|sMD_DeleteFinal) != 0
}

// recordFields parses a serialized record and renders it as field name
// to value for metadata assembly.
func recordFields(data []byte) (map[string]any, error) {
	rec, err := record.Parse(data)
	if err != nil {
		return nil, err
	}
	return rec.Flatten(), nil
}

// recordEntryType names the record kind behind a serialized entry.
func recordEntryType(data []byte) string {
	rec, err := record.Parse(data)
	if err != nil {
		return "Unknown"
	}
	return rec.Type().String()
}

// isDefaultValue reports whether a field value carries no information
// beyond its type's zero. Created nodes omit such fields.
func isDefaultValue(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case bool:
		return !v
	case int:
		return v == 0
	case int64:
		return v == 0
	case uint32:
		return v == 0
	case uint64:
		return v == 0
	case string:
		return v == "" || v == "0"
	default:
		return false
	}
}

// fieldsEqual compares two flattened field values.
func fieldsEqual(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// buildCreatedNode renders metadata for a record created by the
// transaction.
func buildCreatedNode(key [32]byte, data []byte) (AffectedNode, error) {
	node := AffectedNode{
		NodeType:        "CreatedNode",
		LedgerEntryType: recordEntryType(data),
		LedgerIndex:     strings.ToUpper(hex.EncodeToString(key[:])),
		NewFields:       make(map[string]any),
	}

	fields, err := recordFields(data)
	if err != nil {
		return node, err
	}
	for name, value := range fields {
		if shouldIncludeInCreate(name) && !isDefaultValue(value) {
			node.NewFields[name] = value
		}
	}
	return node, nil
}

// buildModifiedNode renders metadata for a rewritten record: the fields
// that changed with their prior values, and the record's final state.
func buildModifiedNode(key [32]byte, original, current []byte) (AffectedNode, error) {
	node := AffectedNode{
		NodeType:        "ModifiedNode",
		LedgerEntryType: recordEntryType(current),
		LedgerIndex:     strings.ToUpper(hex.EncodeToString(key[:])),
		FinalFields:     make(map[string]any),
		PreviousFields:  make(map[string]any),
	}

	origFields, err := recordFields(original)
	if err != nil {
		return node, err
	}
	currFields, err := recordFields(current)
	if err != nil {
		return node, err
	}

	if prevTxnID, ok := origFields["PreviousTxnID"].(string); ok {
		node.PreviousTxnID = prevTxnID
	}
	if prevTxnLgrSeq, ok := origFields["PreviousTxnLgrSeq"].(uint32); ok {
		node.PreviousTxnLgrSeq = prevTxnLgrSeq
	}

	for name, origValue := range origFields {
		if !shouldIncludeInPreviousFields(name) {
			continue
		}
		if currValue, exists := currFields[name]; exists {
			if !fieldsEqual(origValue, currValue) {
				node.PreviousFields[name] = origValue
			}
		} else {
			node.PreviousFields[name] = origValue
		}
	}
	for name, currValue := range currFields {
		if shouldIncludeInFinalFields(name) {
			node.FinalFields[name] = currValue
		}
	}

	if len(node.PreviousFields) == 0 {
		node.PreviousFields = nil
	}
	if len(node.FinalFields) == 0 {
		node.FinalFields = nil
	}
	return node, nil
}

// buildDeletedNode renders metadata for a removed record. Original is
// the state when the transaction first saw the record and current the
// state just before removal, so in-transaction changes still surface
// in PreviousFields.
func buildDeletedNode(key [32]byte, original, current []byte) (AffectedNode, error) {
	node := AffectedNode{
		NodeType:        "DeletedNode",
		LedgerEntryType: recordEntryType(current),
		LedgerIndex:     strings.ToUpper(hex.EncodeToString(key[:])),
		FinalFields:     make(map[string]any),
		PreviousFields:  make(map[string]any),
	}

	origFields, err := recordFields(original)
	if err != nil {
		return node, err
	}
	currFields, err := recordFields(current)
	if err != nil {
		return node, err
	}

	if prevTxnID, ok := origFields["PreviousTxnID"].(string); ok {
		node.PreviousTxnID = prevTxnID
	}
	if prevTxnLgrSeq, ok := origFields["PreviousTxnLgrSeq"].(uint32); ok {
		node.PreviousTxnLgrSeq = prevTxnLgrSeq
	}

	for name, origValue := range origFields {
		if !shouldIncludeInPreviousFields(name) {
			continue
		}
		if currValue, exists := currFields[name]; exists {
			if !fieldsEqual(origValue, currValue) {
				node.PreviousFields[name] = origValue
			}
		} else {
			node.PreviousFields[name] = origValue
		}
	}
	for name, value := range currFields {
		if shouldIncludeInDeleteFinal(name) {
			node.FinalFields[name] = value
		}
	}

	if len(node.PreviousFields) == 0 {
		node.PreviousFields = nil
	}
	if len(node.FinalFields) == 0 {
		node.FinalFields = nil
	}
	return node, nil
}
