// Package service drives a standalone swap node. The service owns the
// open ledger transactions apply to and the chain of closed ledgers
// behind it; AcceptLedger seals the open ledger, archives it and
// starts the next one. Query methods resolve ledgers, accounts, offers
// and transactions across the in-memory tip, the archive and the
// journal.
package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger"
	"github.com/LeJamon/goswapd/internal/core/ledger/genesis"
	"github.com/LeJamon/goswapd/internal/core/ledger/header"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/storage/ledgerstore"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
)

var (
	// ErrNotStarted is returned when using a service before Start.
	ErrNotStarted = errors.New("service: not started")

	// ErrAlreadyStarted is returned when starting a running service.
	ErrAlreadyStarted = errors.New("service: already started")

	// ErrNotStandalone is returned when manually closing a ledger on a
	// node not running in standalone mode.
	ErrNotStandalone = errors.New("service: manual close requires standalone mode")

	// ErrLedgerNotFound is returned when the requested ledger is
	// neither in memory nor in the archive.
	ErrLedgerNotFound = errors.New("service: ledger not found")
)

// Config assembles a Service.
type Config struct {
	// Standalone enables manual ledger closing. The engine relaxes
	// retry semantics accordingly.
	Standalone bool

	// Genesis parameterizes the first ledger when no archived history
	// exists. A zero CloseTime closes genesis at the current clock.
	Genesis genesis.Config

	// NetworkID guards transactions against cross-network replay.
	NetworkID uint32

	// VerifySignatures requires a valid signature on every submitted
	// transaction. Standalone development nodes usually leave it off.
	VerifySignatures bool

	// Store archives closed ledgers. Without one, history lives in
	// memory only.
	Store *ledgerstore.Store

	// Journal records closed ledgers and transactions for account and
	// hash queries. Optional.
	Journal relationaldb.Journal

	// Logger receives structured service events. Nil means silent.
	Logger *zap.SugaredLogger

	// Clock supplies the current time. Nil means time.Now.
	Clock func() time.Time
}

// Service is the node core. All methods are safe for concurrent use.
type Service struct {
	mu    sync.RWMutex
	cfg   Config
	log   *zap.SugaredLogger
	clock func() time.Time

	open      *ledger.Ledger
	closed    *ledger.Ledger
	validated *ledger.Ledger
	genesis   *ledger.Ledger

	// history archives closed ledgers by sequence when no store is
	// configured.
	history map[uint32]*ledger.Ledger

	// txSeq maps applied transaction hashes to the sequence of the
	// ledger holding them.
	txSeq map[[32]byte]uint32

	// pending buffers transactions applied to the open ledger, for
	// journaling and event delivery at close.
	pending []appliedTx

	complete  SeqRanges
	hooks     Hooks
	started   bool
	startTime time.Time
}

// appliedTx is one transaction applied to the open ledger, carrying
// everything the close path needs without re-decoding the blob.
type appliedTx struct {
	hash     [32]byte
	blob     []byte
	txJSON   []byte
	metaJSON []byte
	account  string
	txType   string
	result   tx.Result
	offers   []OfferEvent
}

// New creates a service from cfg. Call Start before use.
func New(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		cfg:     cfg,
		log:     log,
		clock:   clock,
		history: make(map[uint32]*ledger.Ledger),
		txSeq:   make(map[[32]byte]uint32),
	}
}

// SetHooks installs event hooks. Must be called before Start.
func (s *Service) SetHooks(h Hooks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = h
}

// Start brings the node to a usable state: archived history is resumed
// when the store has any, otherwise a fresh genesis ledger is created.
// Either way an open ledger is left on top of the validated tip.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	if s.cfg.Store != nil {
		latest, err := s.cfg.Store.LatestSeq(ctx)
		switch {
		case err == nil:
			return s.resumeLocked(ctx, latest)
		case errors.Is(err, ledgerstore.ErrLedgerNotFound):
		default:
			return fmt.Errorf("probe ledger archive: %w", err)
		}
	}
	return s.bootstrapLocked(ctx)
}

// bootstrapLocked creates genesis and opens the second ledger.
func (s *Service) bootstrapLocked(ctx context.Context) error {
	cfg := s.cfg.Genesis
	if cfg.CloseTime == 0 {
		cfg.CloseTime = header.ToNetworkTime(s.clock())
	}

	gen, err := genesis.Create(cfg)
	if err != nil {
		return fmt.Errorf("create genesis: %w", err)
	}
	gen.SetValidated()

	open, err := ledger.NewFrom(gen)
	if err != nil {
		return fmt.Errorf("open ledger from genesis: %w", err)
	}

	s.genesis = gen
	s.closed = gen
	s.validated = gen
	s.open = open
	if s.cfg.Store == nil {
		s.history[gen.Sequence()] = gen
	}
	s.complete.Add(gen.Sequence())

	if err := s.persistLocked(ctx, gen, nil); err != nil {
		return fmt.Errorf("persist genesis: %w", err)
	}

	s.started = true
	s.startTime = s.clock()
	s.log.Infow("node_bootstrapped",
		"genesis_seq", gen.Sequence(),
		"open_seq", open.Sequence(),
		"network_id", s.cfg.NetworkID,
		"supply", gen.Header().TotalSupply.String(),
	)
	return nil
}

// resumeLocked restores the chain tip from the archive and opens the
// next ledger on top of it.
func (s *Service) resumeLocked(ctx context.Context, latest uint32) error {
	tip, err := s.cfg.Store.LoadLedger(ctx, latest)
	if err != nil {
		return fmt.Errorf("load ledger %d: %w", latest, err)
	}
	tip.SetValidated()

	// Probe downward for the contiguous stretch of archived history
	// ending at the tip.
	floor := latest
	for floor > genesis.GenesisLedgerSequence {
		ok, err := s.cfg.Store.HasLedger(ctx, floor-1)
		if err != nil {
			return fmt.Errorf("probe ledger %d: %w", floor-1, err)
		}
		if !ok {
			break
		}
		floor--
	}
	s.complete.AddRange(floor, latest)

	if floor == genesis.GenesisLedgerSequence {
		gen, err := s.cfg.Store.LoadLedger(ctx, genesis.GenesisLedgerSequence)
		if err != nil {
			return fmt.Errorf("load genesis: %w", err)
		}
		gen.SetValidated()
		s.genesis = gen
	}

	open, err := ledger.NewFrom(tip)
	if err != nil {
		return fmt.Errorf("open ledger from archive tip: %w", err)
	}

	s.closed = tip
	s.validated = tip
	s.open = open

	s.started = true
	s.startTime = s.clock()
	s.log.Infow("node_resumed",
		"validated_seq", latest,
		"open_seq", open.Sequence(),
		"complete_ledgers", s.complete.String(),
	)
	return nil
}

// AcceptLedger seals the open ledger, validates and archives it, and
// opens the next one. Only standalone nodes close manually. Returns
// the sequence of the ledger just closed.
//
// The in-memory chain always advances; a persistence failure is
// reported after the fact with the close already done.
func (s *Service) AcceptLedger(ctx context.Context) (uint32, error) {
	s.mu.Lock()

	if !s.started {
		s.mu.Unlock()
		return 0, ErrNotStarted
	}
	if !s.cfg.Standalone {
		s.mu.Unlock()
		return 0, ErrNotStandalone
	}

	closing := s.open

	// Close times are strictly increasing along the chain.
	closeTime := header.ToNetworkTime(s.clock())
	if parent := s.closed.Header().CloseTime; closeTime <= parent {
		closeTime = parent + 1
	}

	if err := closing.Close(closeTime); err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("close ledger %d: %w", closing.Sequence(), err)
	}
	closing.SetValidated()

	next, err := ledger.NewFrom(closing)
	if err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("open next ledger: %w", err)
	}

	seq := closing.Sequence()
	s.closed = closing
	s.validated = closing
	s.open = next
	if s.cfg.Store == nil {
		s.history[seq] = closing
	}
	s.complete.Add(seq)

	applied := s.pending
	s.pending = nil
	persistErr := s.persistLocked(ctx, closing, applied)

	hooks := s.hooks
	complete := s.complete.String()
	s.mu.Unlock()

	h := closing.Header()
	s.emitCloseEvents(hooks, h, applied, complete)

	s.log.Infow("ledger_closed",
		"seq", seq,
		"hash", hex.EncodeToString(h.Hash[:8]),
		"txs", len(applied),
		"close_time", closeTime,
	)
	if persistErr != nil {
		s.log.Errorw("ledger_persist_failed", "seq", seq, "err", persistErr)
		return seq, persistErr
	}
	return seq, nil
}

// emitCloseEvents delivers the close notification and the per
// transaction and per offer events for one sealed ledger.
func (s *Service) emitCloseEvents(hooks Hooks, h header.Header, applied []appliedTx, complete string) {
	if hooks.OnLedgerClosed != nil {
		hooks.OnLedgerClosed(LedgerClosedEvent{
			Sequence:        h.Sequence,
			Hash:            h.Hash,
			CloseTime:       h.CloseTime,
			TxCount:         len(applied),
			TotalSupply:     h.TotalSupply,
			CompleteLedgers: complete,
		})
	}

	for _, p := range applied {
		if hooks.OnTransaction != nil {
			hooks.OnTransaction(TransactionEvent{
				Hash:            p.hash,
				Result:          p.result,
				Account:         p.account,
				TransactionType: p.txType,
				LedgerSequence:  h.Sequence,
				LedgerHash:      h.Hash,
				CloseTime:       h.CloseTime,
				TxJSON:          p.txJSON,
				MetaJSON:        p.metaJSON,
			})
		}
		if hooks.OnOffer != nil {
			for _, ev := range p.offers {
				ev.LedgerSequence = h.Sequence
				ev.LedgerHash = h.Hash
				ev.CloseTime = h.CloseTime
				hooks.OnOffer(ev)
			}
		}
	}
}

// OpenLedger returns the current open ledger, or nil before Start.
func (s *Service) OpenLedger() *ledger.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// ClosedLedger returns the most recently closed ledger.
func (s *Service) ClosedLedger() *ledger.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// ValidatedLedger returns the most recently validated ledger.
func (s *Service) ValidatedLedger() *ledger.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validated
}

// GenesisLedger returns the genesis ledger, or nil when the node
// resumed from an archive that no longer reaches back to it.
func (s *Service) GenesisLedger() *ledger.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.genesis
}

// Fees returns the fee schedule the open ledger runs under.
func (s *Service) Fees() amount.Fees {
	s.mu.RLock()
	open := s.open
	s.mu.RUnlock()

	if open == nil {
		return amount.DefaultFees()
	}
	return open.Fees()
}

// Standalone reports whether the node closes ledgers manually.
func (s *Service) Standalone() bool {
	return s.cfg.Standalone
}

// NetworkID returns the node's network identifier.
func (s *Service) NetworkID() uint32 {
	return s.cfg.NetworkID
}

// Info is a point-in-time summary of the node.
type Info struct {
	NetworkID          uint32
	Standalone         bool
	CompleteLedgers    string
	OpenSequence       uint32
	OpenTxCount        int
	ValidatedSequence  uint32
	ValidatedHash      [32]byte
	ValidatedCloseTime uint32
	TotalSupply        amount.Amount
	Fees               amount.Fees
	Uptime             time.Duration
}

// Info summarizes the node state for server_info style queries.
func (s *Service) Info() (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return Info{}, ErrNotStarted
	}

	vh := s.validated.Header()
	return Info{
		NetworkID:          s.cfg.NetworkID,
		Standalone:         s.cfg.Standalone,
		CompleteLedgers:    s.complete.String(),
		OpenSequence:       s.open.Sequence(),
		OpenTxCount:        s.open.TxCount(),
		ValidatedSequence:  vh.Sequence,
		ValidatedHash:      vh.Hash,
		ValidatedCloseTime: vh.CloseTime,
		TotalSupply:        vh.TotalSupply,
		Fees:               s.open.Fees(),
		Uptime:             s.clock().Sub(s.startTime),
	}, nil
}
