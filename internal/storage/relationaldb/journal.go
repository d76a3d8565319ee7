package relationaldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// sqlJournal implements Journal over database/sql. Queries are written
// with ? placeholders and rebound for PostgreSQL; the schema differs
// only in column types.
type sqlJournal struct {
	db  *sql.DB
	cfg *Config
}

// OpenJournal opens the journal described by cfg. The matching driver
// package (sqlite or postgres) must be linked in; OpenJournal itself
// only speaks database/sql.
func OpenJournal(ctx context.Context, cfg *Config) (Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "journal config")
	}

	dsn, err := cfg.BuildConnectionString()
	if err != nil {
		return nil, errors.Wrap(err, "journal config")
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s journal", cfg.Driver)
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == DriverSQLite && cfg.Path == ":memory:" {
		// Every new connection would get its own empty in-memory
		// database.
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	j := &sqlJournal{db: db, cfg: cfg}

	opCtx, cancel := context.WithTimeout(ctx, cfg.DefaultTimeout)
	defer cancel()

	if err := db.PingContext(opCtx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping %s journal", cfg.Driver)
	}
	if err := j.initSchema(opCtx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init journal schema")
	}
	return j, nil
}

func (j *sqlJournal) initSchema(ctx context.Context) error {
	blob, bigint := "BLOB", "INTEGER"
	if j.cfg.Driver == DriverPostgres {
		blob, bigint = "BYTEA", "BIGINT"
	}

	queries := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ledgers (
			ledger_seq %[2]s PRIMARY KEY,
			ledger_hash %[1]s UNIQUE NOT NULL,
			parent_hash %[1]s NOT NULL,
			account_hash %[1]s NOT NULL,
			tx_hash %[1]s NOT NULL,
			total_supply %[2]s NOT NULL,
			close_time %[2]s NOT NULL,
			parent_close_time %[2]s NOT NULL,
			close_time_res %[2]s NOT NULL
		)`, blob, bigint),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS transactions (
			tx_hash %[1]s PRIMARY KEY,
			ledger_seq %[2]s NOT NULL,
			txn_seq %[2]s NOT NULL,
			account TEXT NOT NULL,
			tx_type TEXT NOT NULL,
			result TEXT NOT NULL,
			raw_txn %[1]s NOT NULL,
			txn_meta %[1]s NOT NULL
		)`, blob, bigint),
		`CREATE INDEX IF NOT EXISTS idx_tx_ledger_seq ON transactions (ledger_seq, txn_seq)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_account ON transactions (account, ledger_seq, txn_seq)`,
	}

	for _, q := range queries {
		if _, err := j.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (j *sqlJournal) rebind(query string) string {
	if j.cfg.Driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (j *sqlJournal) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, j.cfg.DefaultTimeout)
}

func (j *sqlJournal) Ping(ctx context.Context) error {
	if j.db == nil {
		return ErrJournalClosed
	}
	ctx, cancel := j.opContext(ctx)
	defer cancel()
	return errors.Wrap(j.db.PingContext(ctx), "ping journal")
}

func (j *sqlJournal) Close(ctx context.Context) error {
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return errors.Wrap(err, "close journal")
}

func (j *sqlJournal) SaveLedger(ctx context.Context, info *LedgerInfo, txs []TxInfo) error {
	if j.db == nil {
		return ErrJournalClosed
	}
	ctx, cancel := j.opContext(ctx)
	defer cancel()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin journal tx")
	}
	defer tx.Rollback()

	// Replace any previous journaling of this sequence.
	if _, err := tx.ExecContext(ctx,
		j.rebind(`DELETE FROM transactions WHERE ledger_seq = ?`), int64(info.Sequence)); err != nil {
		return errors.Wrap(err, "clear journal txs")
	}
	if _, err := tx.ExecContext(ctx,
		j.rebind(`DELETE FROM ledgers WHERE ledger_seq = ?`), int64(info.Sequence)); err != nil {
		return errors.Wrap(err, "clear journal ledger")
	}

	if _, err := tx.ExecContext(ctx, j.rebind(`INSERT INTO ledgers
		(ledger_seq, ledger_hash, parent_hash, account_hash, tx_hash,
		 total_supply, close_time, parent_close_time, close_time_res)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		int64(info.Sequence), info.Hash[:], info.ParentHash[:], info.AccountHash[:],
		info.TxHash[:], int64(info.TotalSupply), info.CloseTime.Unix(),
		info.ParentCloseTime.Unix(), info.CloseTimeRes); err != nil {
		return errors.Wrapf(err, "journal ledger %d", info.Sequence)
	}

	for _, txi := range txs {
		if _, err := tx.ExecContext(ctx, j.rebind(`INSERT INTO transactions
			(tx_hash, ledger_seq, txn_seq, account, tx_type, result, raw_txn, txn_meta)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			txi.Hash[:], int64(txi.LedgerSeq), int64(txi.TxnSeq), txi.Account,
			txi.TxType, txi.Result, txi.RawTxn, txi.TxnMeta); err != nil {
			return errors.Wrapf(err, "journal tx %s", txi.Hash)
		}
	}

	return errors.Wrap(tx.Commit(), "commit journal tx")
}

const ledgerColumns = `ledger_seq, ledger_hash, parent_hash, account_hash, tx_hash,
	total_supply, close_time, parent_close_time, close_time_res`

func scanLedger(row *sql.Row) (*LedgerInfo, error) {
	var info LedgerInfo
	var seq, supply, closeTime, parentClose int64
	var hash, parentHash, accountHash, txSetHash []byte

	err := row.Scan(&seq, &hash, &parentHash, &accountHash, &txSetHash,
		&supply, &closeTime, &parentClose, &info.CloseTimeRes)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan journal ledger")
	}

	info.Sequence = LedgerIndex(seq)
	copy(info.Hash[:], hash)
	copy(info.ParentHash[:], parentHash)
	copy(info.AccountHash[:], accountHash)
	copy(info.TxHash[:], txSetHash)
	info.TotalSupply = uint64(supply)
	info.CloseTime = time.Unix(closeTime, 0).UTC()
	info.ParentCloseTime = time.Unix(parentClose, 0).UTC()
	return &info, nil
}

func (j *sqlJournal) LedgerBySeq(ctx context.Context, seq LedgerIndex) (*LedgerInfo, error) {
	if j.db == nil {
		return nil, ErrJournalClosed
	}
	ctx, cancel := j.opContext(ctx)
	defer cancel()

	row := j.db.QueryRowContext(ctx, j.rebind(
		`SELECT `+ledgerColumns+` FROM ledgers WHERE ledger_seq = ?`), int64(seq))
	return scanLedger(row)
}

func (j *sqlJournal) LedgerByHash(ctx context.Context, hash Hash) (*LedgerInfo, error) {
	if j.db == nil {
		return nil, ErrJournalClosed
	}
	ctx, cancel := j.opContext(ctx)
	defer cancel()

	row := j.db.QueryRowContext(ctx, j.rebind(
		`SELECT `+ledgerColumns+` FROM ledgers WHERE ledger_hash = ?`), hash[:])
	return scanLedger(row)
}

func (j *sqlJournal) NewestLedger(ctx context.Context) (*LedgerInfo, error) {
	if j.db == nil {
		return nil, ErrJournalClosed
	}
	ctx, cancel := j.opContext(ctx)
	defer cancel()

	row := j.db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers ORDER BY ledger_seq DESC LIMIT 1`)
	return scanLedger(row)
}

func (j *sqlJournal) SeqRange(ctx context.Context) (*LedgerRange, error) {
	if j.db == nil {
		return nil, ErrJournalClosed
	}
	ctx, cancel := j.opContext(ctx)
	defer cancel()

	var minSeq, maxSeq sql.NullInt64
	err := j.db.QueryRowContext(ctx,
		`SELECT MIN(ledger_seq), MAX(ledger_seq) FROM ledgers`).Scan(&minSeq, &maxSeq)
	if err != nil {
		return nil, errors.Wrap(err, "journal seq range")
	}
	if !minSeq.Valid {
		return nil, ErrNotFound
	}
	return &LedgerRange{
		Min: LedgerIndex(minSeq.Int64),
		Max: LedgerIndex(maxSeq.Int64),
	}, nil
}

const txColumns = `tx_hash, ledger_seq, txn_seq, account, tx_type, result, raw_txn, txn_meta`

func scanTxRow(scan func(dest ...any) error) (*TxInfo, error) {
	var info TxInfo
	var hash []byte
	var seq, tseq int64

	err := scan(&hash, &seq, &tseq, &info.Account, &info.TxType,
		&info.Result, &info.RawTxn, &info.TxnMeta)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan journal tx")
	}
	copy(info.Hash[:], hash)
	info.LedgerSeq = LedgerIndex(seq)
	info.TxnSeq = uint32(tseq)
	return &info, nil
}

func (j *sqlJournal) TxByHash(ctx context.Context, hash Hash) (*TxInfo, error) {
	if j.db == nil {
		return nil, ErrJournalClosed
	}
	ctx, cancel := j.opContext(ctx)
	defer cancel()

	row := j.db.QueryRowContext(ctx, j.rebind(
		`SELECT `+txColumns+` FROM transactions WHERE tx_hash = ?`), hash[:])
	return scanTxRow(row.Scan)
}

func (j *sqlJournal) AccountTxs(ctx context.Context, q AccountTxQuery) ([]TxInfo, error) {
	if j.db == nil {
		return nil, ErrJournalClosed
	}
	ctx, cancel := j.opContext(ctx)
	defer cancel()

	maxLedger := q.MaxLedger
	if maxLedger == 0 {
		maxLedger = LedgerIndex(^uint32(0))
	}
	limit := q.Limit
	if limit == 0 {
		limit = 200
	}
	order := "DESC"
	if q.OldestFirst {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions
		WHERE account = ? AND ledger_seq >= ? AND ledger_seq <= ?
		ORDER BY ledger_seq %s, txn_seq %s LIMIT ?`, txColumns, order, order)

	rows, err := j.db.QueryContext(ctx, j.rebind(query),
		q.Account, int64(q.MinLedger), int64(maxLedger), int64(limit))
	if err != nil {
		return nil, errors.Wrap(err, "journal account txs")
	}
	defer rows.Close()

	var out []TxInfo
	for rows.Next() {
		info, err := scanTxRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *info)
	}
	return out, errors.Wrap(rows.Err(), "journal account txs")
}

func (j *sqlJournal) TxCount(ctx context.Context) (int64, error) {
	if j.db == nil {
		return 0, ErrJournalClosed
	}
	ctx, cancel := j.opContext(ctx)
	defer cancel()

	var count int64
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	return count, errors.Wrap(err, "journal tx count")
}

func (j *sqlJournal) DeleteBefore(ctx context.Context, seq LedgerIndex) error {
	if j.db == nil {
		return ErrJournalClosed
	}
	ctx, cancel := j.opContext(ctx)
	defer cancel()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin journal tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		j.rebind(`DELETE FROM transactions WHERE ledger_seq < ?`), int64(seq)); err != nil {
		return errors.Wrap(err, "prune journal txs")
	}
	if _, err := tx.ExecContext(ctx,
		j.rebind(`DELETE FROM ledgers WHERE ledger_seq < ?`), int64(seq)); err != nil {
		return errors.Wrap(err, "prune journal ledgers")
	}
	return errors.Wrap(tx.Commit(), "commit journal tx")
}
