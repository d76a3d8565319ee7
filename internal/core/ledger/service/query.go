package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/ledger"
	"github.com/LeJamon/goswapd/internal/core/ledger/header"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	"github.com/LeJamon/goswapd/internal/storage/ledgerstore"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
)

var (
	// ErrInvalidLedgerSpec is returned for an unparseable ledger
	// specifier.
	ErrInvalidLedgerSpec = errors.New("service: invalid ledger specifier")

	// ErrInvalidAddress is returned for an undecodable account address.
	ErrInvalidAddress = errors.New("service: invalid address")

	// ErrInvalidOfferID is returned for a malformed offer identifier.
	ErrInvalidOfferID = errors.New("service: invalid offer id")

	// ErrAccountNotFound is returned when the account has no ledger
	// entry.
	ErrAccountNotFound = errors.New("service: account not found")

	// ErrOfferNotFound is returned when no offer lives at the given
	// identifier.
	ErrOfferNotFound = errors.New("service: offer not found")

	// ErrTxNotFound is returned when the transaction is neither in a
	// held ledger nor in the journal.
	ErrTxNotFound = errors.New("service: transaction not found")

	// ErrNoJournal is returned for queries that need a journal on a
	// node running without one.
	ErrNoJournal = errors.New("service: no journal configured")
)

// ResolveLedger resolves a ledger specifier: "current" (or empty),
// "closed" and "validated" name the tips, a decimal number names a
// sequence, and a 64-character hex string names a header hash.
func (s *Service) ResolveLedger(ctx context.Context, spec string) (*ledger.Ledger, error) {
	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "", "current", "open":
		if l := s.OpenLedger(); l != nil {
			return l, nil
		}
		return nil, ErrNotStarted
	case "closed":
		if l := s.ClosedLedger(); l != nil {
			return l, nil
		}
		return nil, ErrNotStarted
	case "validated":
		if l := s.ValidatedLedger(); l != nil {
			return l, nil
		}
		return nil, ErrNotStarted
	}

	if seq, err := strconv.ParseUint(spec, 10, 32); err == nil {
		return s.LedgerBySeq(ctx, uint32(seq))
	}
	if raw, err := hex.DecodeString(spec); err == nil && len(raw) == 32 {
		var h [32]byte
		copy(h[:], raw)
		return s.LedgerByHash(ctx, h)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidLedgerSpec, spec)
}

// LedgerBySeq returns the ledger with the given sequence, consulting
// the in-memory tip first and the archive behind it.
func (s *Service) LedgerBySeq(ctx context.Context, seq uint32) (*ledger.Ledger, error) {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return nil, ErrNotStarted
	}
	for _, l := range []*ledger.Ledger{s.open, s.validated, s.genesis} {
		if l != nil && l.Sequence() == seq {
			s.mu.RUnlock()
			return l, nil
		}
	}
	if l, ok := s.history[seq]; ok {
		s.mu.RUnlock()
		return l, nil
	}
	store := s.cfg.Store
	s.mu.RUnlock()

	if store != nil {
		l, err := store.LoadLedger(ctx, seq)
		if err != nil {
			if errors.Is(err, ledgerstore.ErrLedgerNotFound) {
				return nil, fmt.Errorf("%w: sequence %d", ErrLedgerNotFound, seq)
			}
			return nil, err
		}
		l.SetValidated()
		return l, nil
	}
	return nil, fmt.Errorf("%w: sequence %d", ErrLedgerNotFound, seq)
}

// LedgerByHash returns the closed ledger with the given header hash.
func (s *Service) LedgerByHash(ctx context.Context, hash [32]byte) (*ledger.Ledger, error) {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return nil, ErrNotStarted
	}
	for _, l := range []*ledger.Ledger{s.validated, s.genesis} {
		if l != nil && l.Hash() == hash {
			s.mu.RUnlock()
			return l, nil
		}
	}
	for _, l := range s.history {
		if l.Hash() == hash {
			s.mu.RUnlock()
			return l, nil
		}
	}
	store := s.cfg.Store
	s.mu.RUnlock()

	if store != nil {
		l, err := store.LoadLedgerByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, ledgerstore.ErrLedgerNotFound) {
				return nil, fmt.Errorf("%w: hash %x", ErrLedgerNotFound, hash)
			}
			return nil, err
		}
		l.SetValidated()
		return l, nil
	}
	return nil, fmt.Errorf("%w: hash %x", ErrLedgerNotFound, hash)
}

// AccountResult is one account's state in one ledger.
type AccountResult struct {
	Address        string
	Root           *record.AccountRoot
	LedgerSequence uint32
	Validated      bool
}

// AccountInfo returns the account's root entry in the specified
// ledger.
func (s *Service) AccountInfo(ctx context.Context, address, ledgerSpec string) (*AccountResult, error) {
	id, err := decodeAccountID(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	l, err := s.ResolveLedger(ctx, ledgerSpec)
	if err != nil {
		return nil, err
	}

	data, err := l.Read(keylet.Account(id))
	if err != nil {
		if errors.Is(err, ledger.ErrEntryNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
		}
		return nil, err
	}
	root, err := record.ParseAccountRoot(data)
	if err != nil {
		return nil, fmt.Errorf("parse account root: %w", err)
	}

	h := l.Header()
	return &AccountResult{
		Address:        address,
		Root:           root,
		LedgerSequence: h.Sequence,
		Validated:      h.Validated,
	}, nil
}

// OfferResult is one offer's state in one ledger.
type OfferResult struct {
	OfferID        string
	Offer          *record.Offer
	LedgerSequence uint32
	Validated      bool
}

// Offer returns the offer entry at the given identifier in the
// specified ledger.
func (s *Service) Offer(ctx context.Context, offerID, ledgerSpec string) (*OfferResult, error) {
	key, err := parseEntryKey(offerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOfferID, offerID)
	}

	l, err := s.ResolveLedger(ctx, ledgerSpec)
	if err != nil {
		return nil, err
	}

	data, err := l.Read(keylet.Keylet{Type: record.TypeOffer, Key: key})
	if err != nil {
		if errors.Is(err, ledger.ErrEntryNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOfferNotFound, offerID)
		}
		return nil, err
	}
	offer, err := record.ParseOffer(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s holds another entry type", ErrOfferNotFound, offerID)
	}

	h := l.Header()
	return &OfferResult{
		OfferID:        strings.ToUpper(offerID),
		Offer:          offer,
		LedgerSequence: h.Sequence,
		Validated:      h.Validated,
	}, nil
}

// AccountOffer pairs an offer with its identifier.
type AccountOffer struct {
	OfferID string
	Offer   *record.Offer
}

// AccountOffersResult lists the offers an account participates in.
type AccountOffersResult struct {
	Address        string
	Offers         []AccountOffer
	LedgerSequence uint32
	Validated      bool
}

// AccountOffers returns every offer the account makes or is named
// taker of in the specified ledger, ordered by offer identifier.
func (s *Service) AccountOffers(ctx context.Context, address, ledgerSpec string) (*AccountOffersResult, error) {
	id, err := decodeAccountID(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	l, err := s.ResolveLedger(ctx, ledgerSpec)
	if err != nil {
		return nil, err
	}

	var offers []AccountOffer
	err = l.ForEach(func(key [32]byte, data []byte) bool {
		rec, err := record.Parse(data)
		if err != nil {
			return true
		}
		offer, ok := rec.(*record.Offer)
		if !ok {
			return true
		}
		if offer.Maker != id && (offer.Taker == nil || *offer.Taker != id) {
			return true
		}
		offers = append(offers, AccountOffer{
			OfferID: strings.ToUpper(hex.EncodeToString(key[:])),
			Offer:   offer,
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(offers, func(i, j int) bool {
		return offers[i].OfferID < offers[j].OfferID
	})

	h := l.Header()
	return &AccountOffersResult{
		Address:        address,
		Offers:         offers,
		LedgerSequence: h.Sequence,
		Validated:      h.Validated,
	}, nil
}

// TxLookup is one applied transaction located by hash. Blob is the
// canonical wire form and MetaJSON the metadata as recorded.
type TxLookup struct {
	Hash           [32]byte
	LedgerSequence uint32
	Validated      bool
	CloseTime      uint32
	Blob           []byte
	MetaJSON       []byte
}

// Tx locates an applied transaction by hash, in a held ledger first
// and through the journal behind it. Transactions still in the open
// ledger report Validated false.
func (s *Service) Tx(ctx context.Context, hash [32]byte) (*TxLookup, error) {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return nil, ErrNotStarted
	}
	seq, ok := s.txSeq[hash]
	s.mu.RUnlock()

	if ok {
		if l, err := s.LedgerBySeq(ctx, seq); err == nil {
			for _, rec := range l.Txs() {
				if rec.Hash != hash {
					continue
				}
				h := l.Header()
				return &TxLookup{
					Hash:           hash,
					LedgerSequence: h.Sequence,
					Validated:      h.Validated,
					CloseTime:      h.CloseTime,
					Blob:           rec.Tx,
					MetaJSON:       rec.Meta,
				}, nil
			}
		}
	}

	if s.cfg.Journal != nil {
		info, err := s.cfg.Journal.TxByHash(ctx, relationaldb.Hash(hash))
		switch {
		case err == nil:
			lookup := &TxLookup{
				Hash:           hash,
				LedgerSequence: uint32(info.LedgerSeq),
				Validated:      true,
				Blob:           info.RawTxn,
				MetaJSON:       info.TxnMeta,
			}
			if li, err := s.cfg.Journal.LedgerBySeq(ctx, info.LedgerSeq); err == nil {
				lookup.CloseTime = header.ToNetworkTime(li.CloseTime)
			}
			return lookup, nil
		case errors.Is(err, relationaldb.ErrNotFound):
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %x", ErrTxNotFound, hash)
}

// AccountTxs returns an account's journaled transactions. Requires a
// journal.
func (s *Service) AccountTxs(ctx context.Context, q relationaldb.AccountTxQuery) ([]relationaldb.TxInfo, error) {
	if s.cfg.Journal == nil {
		return nil, ErrNoJournal
	}
	return s.cfg.Journal.AccountTxs(ctx, q)
}

// decodeAccountID decodes a classic address into an account ID.
func decodeAccountID(address string) ([20]byte, error) {
	_, idBytes, err := addresscodec.DecodeClassicAddressToAccountID(address)
	if err != nil {
		return [20]byte{}, err
	}
	var id [20]byte
	copy(id[:], idBytes)
	return id, nil
}

// parseEntryKey parses a 64-character hex ledger entry key.
func parseEntryKey(s string) ([32]byte, error) {
	var key [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return key, err
	}
	if len(raw) != 32 {
		return key, fmt.Errorf("entry key must be 32 bytes, got %d", len(raw))
	}
	copy(key[:], raw)
	return key, nil
}
