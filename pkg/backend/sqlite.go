package backend

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // database/sql driver
	"go.uber.org/zap"

	"github.com/xrplwatch/feedhub/pkg/errors"
	"github.com/xrplwatch/feedhub/pkg/logging"
	"github.com/xrplwatch/feedhub/pkg/xrpl"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledgers (
	sequence     INTEGER PRIMARY KEY,
	hash         TEXT NOT NULL,
	parent_hash  TEXT NOT NULL DEFAULT '',
	tx_hash      TEXT NOT NULL DEFAULT '',
	account_hash TEXT NOT NULL DEFAULT '',
	total_drops  INTEGER NOT NULL DEFAULT 0,
	close_time   INTEGER NOT NULL DEFAULT 0,
	close_time_resolution INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS objects (
	key      TEXT NOT NULL,
	sequence INTEGER NOT NULL,
	data     BLOB,
	PRIMARY KEY (key, sequence)
);
`

// SQLiteBackend serves ledger headers and objects from a local SQLite file.
// It is the replica-side store: an upstream loader writes, the feed engine
// reads.
type SQLiteBackend struct {
	db     *sql.DB
	logger *logging.ColoredLogger
}

// NewSQLiteBackend opens (creating if needed) the database at path.
func NewSQLiteBackend(path string, logger *logging.ColoredLogger) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite backend %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	logger.ComponentInfo(logging.ComponentBackend, "sqlite backend ready", zap.String("path", path))
	return &SQLiteBackend{db: db, logger: logger}, nil
}

// Range returns the min and max ledger sequence on hand.
func (b *SQLiteBackend) Range(ctx context.Context) (xrpl.LedgerRange, error) {
	var min, max sql.NullInt64
	row := b.db.QueryRowContext(ctx, `SELECT MIN(sequence), MAX(sequence) FROM ledgers`)
	if err := row.Scan(&min, &max); err != nil {
		return xrpl.LedgerRange{}, errors.NewStorageError("range", err)
	}
	if !min.Valid || !max.Valid {
		return xrpl.LedgerRange{}, fmt.Errorf("ledger range: %w", errors.ErrNotFound)
	}
	return xrpl.LedgerRange{Min: uint32(min.Int64), Max: uint32(max.Int64)}, nil
}

// FetchLedgerBySequence returns one ledger header.
func (b *SQLiteBackend) FetchLedgerBySequence(ctx context.Context, seq uint32) (*xrpl.LedgerHeader, error) {
	row := b.db.QueryRowContext(ctx, `
		SELECT sequence, hash, parent_hash, tx_hash, account_hash, total_drops, close_time, close_time_resolution
		FROM ledgers WHERE sequence = ?`, seq)

	var h xrpl.LedgerHeader
	err := row.Scan(&h.Sequence, &h.Hash, &h.ParentHash, &h.TxHash, &h.AccountHash,
		&h.TotalDrops, &h.CloseTime, &h.CloseTimeResolution)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ledger %d: %w", seq, errors.ErrNotFound)
	}
	if err != nil {
		return nil, errors.NewStorageError("fetch ledger", err)
	}
	return &h, nil
}

// FetchLedgerObject returns the raw bytes of one ledger object as of seq,
// taking the newest version at or below it.
func (b *SQLiteBackend) FetchLedgerObject(ctx context.Context, key string, seq uint32) ([]byte, error) {
	row := b.db.QueryRowContext(ctx, `
		SELECT data FROM objects WHERE key = ? AND sequence <= ?
		ORDER BY sequence DESC LIMIT 1`, key, seq)

	var data []byte
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("object %s@%d: %w", key, seq, errors.ErrNotFound)
	}
	if err != nil {
		return nil, errors.NewStorageError("fetch object", err)
	}
	return data, nil
}

// SaveLedger stores a ledger header; used by the loader and by tests.
func (b *SQLiteBackend) SaveLedger(ctx context.Context, h *xrpl.LedgerHeader) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO ledgers
		(sequence, hash, parent_hash, tx_hash, account_hash, total_drops, close_time, close_time_resolution)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.Sequence, h.Hash, h.ParentHash, h.TxHash, h.AccountHash, h.TotalDrops, h.CloseTime, h.CloseTimeResolution)
	if err != nil {
		return errors.NewStorageError("save ledger", err)
	}
	return nil
}

// SaveLedgerObject stores one ledger object version.
func (b *SQLiteBackend) SaveLedgerObject(ctx context.Context, key string, seq uint32, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO objects (key, sequence, data) VALUES (?, ?, ?)`, key, seq, data)
	if err != nil {
		return errors.NewStorageError("save object", err)
	}
	return nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
