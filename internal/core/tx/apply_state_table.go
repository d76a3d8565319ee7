package tx

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

// Action classifies how a tracked entry differs from the base view.
type Action int

const (
	// ActionCache marks an entry that was read but never written.
	ActionCache Action = iota
	// ActionInsert marks an entry created by this transaction.
	ActionInsert
	// ActionModify marks an existing entry rewritten by this transaction.
	ActionModify
	// ActionErase marks an entry removed by this transaction.
	ActionErase
)

// TrackedEntry is one ledger entry the state table has touched.
// Original is nil for inserts; Current holds the last state written,
// which for erased entries is the state just before removal.
type TrackedEntry struct {
	Action   Action
	Original []byte
	Current  []byte
}

// ApplyStateTable buffers a transaction's reads and writes on top of a
// base view. Nothing reaches the base until Apply, so a transactor that
// fails partway leaves the ledger untouched, and the table can emit
// complete change metadata from its tracked before/after states.
type ApplyStateTable struct {
	base      LedgerView
	items     map[[32]byte]*TrackedEntry
	destroyed amount.Amount
	txHash    [32]byte
	txSeq     uint32
}

// NewApplyStateTable returns an empty table over base. The transaction
// hash and ledger sequence are stamped onto every touched record when
// the table applies.
func NewApplyStateTable(base LedgerView, txHash [32]byte, txSeq uint32) *ApplyStateTable {
	return &ApplyStateTable{
		base:   base,
		items:  make(map[[32]byte]*TrackedEntry),
		txHash: txHash,
		txSeq:  txSeq,
	}
}

// Read returns the entry at k, consulting tracked state first.
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if entry, ok := t.items[k.Key]; ok {
		if entry.Action == ActionErase {
			return nil, fmt.Errorf("entry %s deleted in this transaction", k)
		}
		return append([]byte(nil), entry.Current...), nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}
	t.items[k.Key] = &TrackedEntry{
		Action:   ActionCache,
		Original: data,
		Current:  data,
	}
	return append([]byte(nil), data...), nil
}

// Exists reports whether an entry exists at k.
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if entry, ok := t.items[k.Key]; ok {
		return entry.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry at k. Re-inserting a key erased earlier in
// the same transaction collapses to a modify of the base entry.
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if entry, ok := t.items[k.Key]; ok {
		if entry.Action != ActionErase {
			return fmt.Errorf("entry %s already exists", k)
		}
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry %s already exists", k)
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update rewrites the entry at k, which must exist.
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if entry, ok := t.items[k.Key]; ok {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry %s deleted in this transaction", k)
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes the entry at k. An entry inserted earlier in the same
// transaction simply vanishes from tracking; an entry from the base is
// tracked as erased with its last written state kept for metadata.
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if entry, ok := t.items[k.Key]; ok {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry %s already deleted", k)
		}
		if entry.Action == ActionInsert {
			delete(t.items, k.Key)
			return nil
		}
		entry.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// DestroyUnits accumulates native units removed from circulation.
func (t *ApplyStateTable) DestroyUnits(a amount.Amount) {
	t.destroyed += a
}

// ForEach visits every entry in the combined view: base entries overlaid
// with tracked writes, plus tracked inserts. Erased entries are skipped.
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	stopped := false
	err := t.base.ForEach(func(key [32]byte, data []byte) bool {
		if entry, ok := t.items[key]; ok {
			if entry.Action == ActionErase {
				return true
			}
			data = entry.Current
		}
		if !fn(key, data) {
			stopped = true
			return false
		}
		return true
	})
	if err != nil || stopped {
		return err
	}
	for key, entry := range t.items {
		if entry.Action != ActionInsert {
			continue
		}
		if !fn(key, entry.Current) {
			return nil
		}
	}
	return nil
}

// Apply stamps threading onto every touched record, pushes all tracked
// changes to the base view and returns the metadata describing them.
// Writes happen in key order so repeated applications of the same
// transaction produce identical base mutations and metadata.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	t.applyThreading()

	keys := make([][32]byte, 0, len(t.items))
	for key := range t.items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	metadata := &Metadata{
		AffectedNodes: make([]AffectedNode, 0, len(keys)),
	}
	for _, key := range keys {
		entry := t.items[key]
		switch entry.Action {
		case ActionCache:
			continue

		case ActionInsert:
			node, err := buildCreatedNode(key, entry.Current)
			if err != nil {
				return nil, err
			}
			metadata.AffectedNodes = append(metadata.AffectedNodes, node)
			if err := t.base.Insert(keylet.Keylet{Key: key}, entry.Current); err != nil {
				return nil, err
			}

		case ActionModify:
			if bytes.Equal(entry.Original, entry.Current) {
				continue
			}
			node, err := buildModifiedNode(key, entry.Original, entry.Current)
			if err != nil {
				return nil, err
			}
			metadata.AffectedNodes = append(metadata.AffectedNodes, node)
			if err := t.base.Update(keylet.Keylet{Key: key}, entry.Current); err != nil {
				return nil, err
			}

		case ActionErase:
			node, err := buildDeletedNode(key, entry.Original, entry.Current)
			if err != nil {
				return nil, err
			}
			metadata.AffectedNodes = append(metadata.AffectedNodes, node)
			if err := t.base.Erase(keylet.Keylet{Key: key}); err != nil {
				return nil, err
			}
		}
	}

	if !t.destroyed.IsZero() {
		t.base.DestroyUnits(t.destroyed)
	}
	return metadata, nil
}

// applyThreading stamps the transaction hash and ledger sequence onto
// every created or rewritten record, and onto the account roots that
// own a record being created or removed.
func (t *ApplyStateTable) applyThreading() {
	type threadWork struct {
		entry *TrackedEntry
	}
	var work []threadWork
	for _, entry := range t.items {
		if entry.Action == ActionCache {
			continue
		}
		work = append(work, threadWork{entry})
	}

	for _, w := range work {
		switch w.entry.Action {
		case ActionInsert, ActionModify:
			if data, changed := t.threadRecord(w.entry.Current); changed {
				w.entry.Current = data
			}
			if w.entry.Action == ActionInsert {
				t.threadOwners(w.entry.Current)
			}
		case ActionErase:
			t.threadOwners(w.entry.Current)
		}
	}
}

// threadRecord rewrites a record's last-touched markers to this
// transaction. FeeSettings belongs to the network rather than any
// account and keeps its markers.
func (t *ApplyStateTable) threadRecord(data []byte) ([]byte, bool) {
	rec, err := record.Parse(data)
	if err != nil {
		return data, false
	}
	if rec.Type() == record.TypeFeeSettings {
		return data, false
	}
	base := rec.Base()
	if base.PreviousTxnID == t.txHash && base.PreviousTxnLgrSeq == t.txSeq {
		return data, false
	}
	base.PreviousTxnID = t.txHash
	base.PreviousTxnLgrSeq = t.txSeq
	out, err := record.Serialize(rec)
	if err != nil {
		return data, false
	}
	return out, true
}

// threadOwners stamps the account roots owning a record, marking them
// modified so the touch lands in metadata and the base view.
func (t *ApplyStateTable) threadOwners(data []byte) {
	for _, ownerID := range ownerAccounts(data) {
		ownerKey := keylet.Account(ownerID)

		if entry, ok := t.items[ownerKey.Key]; ok {
			if entry.Action == ActionErase {
				continue
			}
			if newData, changed := t.threadRecord(entry.Current); changed {
				entry.Current = newData
				if entry.Action == ActionCache {
					entry.Action = ActionModify
				}
			}
			continue
		}

		ownerData, err := t.base.Read(ownerKey)
		if err != nil {
			continue
		}
		if newData, changed := t.threadRecord(ownerData); changed {
			t.items[ownerKey.Key] = &TrackedEntry{
				Action:   ActionModify,
				Original: ownerData,
				Current:  newData,
			}
		}
	}
}

// ownerAccounts returns the account IDs whose roots should be stamped
// when the given record is created or removed.
func ownerAccounts(data []byte) [][20]byte {
	rec, err := record.Parse(data)
	if err != nil {
		return nil
	}
	switch r := rec.(type) {
	case *record.Offer:
		owners := [][20]byte{r.Maker}
		if r.Taker != nil {
			owners = append(owners, *r.Taker)
		}
		return owners
	case *record.Holding:
		return [][20]byte{r.Owner}
	case *record.Asset:
		return [][20]byte{r.Issuer}
	default:
		return nil
	}
}

// DestroyedUnits returns the native units this table has marked
// destroyed so far.
func (t *ApplyStateTable) DestroyedUnits() amount.Amount {
	return t.destroyed
}
