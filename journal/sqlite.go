package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/ledger"
	"github.com/rustyeddy/stockledger/market"
)

// SQLite is the ledger.Store backed by a single SQLite connection.
type SQLite struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLite)(nil)

// NewSQLite opens (creating if needed) the database at path and seeds the
// fee schedule with the default rates when it has none. Use ":memory:" for
// a throwaway store.
func NewSQLite(path string) (*SQLite, error) {
	return NewSQLiteWithRates(path, fee.DefaultRates())
}

// NewSQLiteWithRates is NewSQLite with explicit seed rates. Seed rates only
// apply to a database that has no schedule yet.
func NewSQLiteWithRates(path string, seed fee.Rates) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, err
	}
	// One connection: the ledger is single-writer and :memory: databases
	// are per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(seedSchedule, fee.DefaultScheduleName,
		seed.Commission, seed.Tax, seed.Regulatory, seed.Brokerage, seed.Transfer); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed fee schedule: %w", err)
	}

	return &SQLite{db: db}, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ledger.ErrStorage, err)
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, ledger.ErrNotFound)
}

// expectOne maps a zero-row write to ErrNotFound.
func expectOne(res sql.Result, op, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(op, err)
	}
	if n == 0 {
		return notFound(what, id)
	}
	return nil
}

func (j *SQLite) CreateInstrument(ctx context.Context, in ledger.Instrument) (int64, error) {
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO instruments
		(name, segment, commission_rate, status, sort_index, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Segment, in.CommissionRate, in.Status, in.SortIndex, in.CreatedAt, in.UpdatedAt,
	)
	if err != nil {
		return 0, storageErr("create instrument", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("create instrument", err)
	}
	return id, nil
}

func (j *SQLite) SetInstrumentStatus(ctx context.Context, id int64, s market.Status, at time.Time) error {
	res, err := j.db.ExecContext(ctx,
		`UPDATE instruments SET status = ?, updated_at = ? WHERE id = ?`, s, at, id)
	if err != nil {
		return storageErr("set instrument status", err)
	}
	return expectOne(res, "set instrument status", "instrument", id)
}

func (j *SQLite) SetSortOrder(ctx context.Context, ids []int64) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("set sort order", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		res, err := tx.ExecContext(ctx, `UPDATE instruments SET sort_index = ? WHERE id = ?`, i+1, id)
		if err != nil {
			return storageErr("set sort order", err)
		}
		if err := expectOne(res, "set sort order", "instrument", id); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("set sort order", err)
	}
	return nil
}

func (j *SQLite) DeleteInstrument(ctx context.Context, id int64) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM instruments WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete instrument", err)
	}
	return expectOne(res, "delete instrument", "instrument", id)
}

func (j *SQLite) AppendEntry(ctx context.Context, e ledger.Entry) (int64, error) {
	var actionTime sql.NullTime
	if !e.ActionTime.IsZero() {
		actionTime = sql.NullTime{Time: e.ActionTime, Valid: true}
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO entries
		(ref, instrument_id, current_price, cost, position, total_fee, trade_price, trade_size,
		 commission_fee, tax_fee, regulatory_fee, brokerage_fee, transfer_fee,
		 action, profit, profit_rate, note, action_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Ref, e.InstrumentID, e.CurrentPrice, e.Cost, e.Position, e.TotalFee, e.TradePrice, e.TradeSize,
		e.Fees.Commission, e.Fees.Tax, e.Fees.Regulatory, e.Fees.Brokerage, e.Fees.Transfer,
		e.Action, e.Profit, e.ProfitRate, e.Note, actionTime, e.CreatedAt,
	)
	if err != nil {
		return 0, storageErr("append entry", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("append entry", err)
	}
	return id, nil
}

func (j *SQLite) DeleteEntry(ctx context.Context, id int64) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete entry", err)
	}
	return expectOne(res, "delete entry", "entry", id)
}

func (j *SQLite) AnnotateEntry(ctx context.Context, id int64, actionTime time.Time, note string) error {
	var at sql.NullTime
	if !actionTime.IsZero() {
		at = sql.NullTime{Time: actionTime, Valid: true}
	}
	res, err := j.db.ExecContext(ctx,
		`UPDATE entries SET action_time = ?, note = ? WHERE id = ?`, at, note, id)
	if err != nil {
		return storageErr("annotate entry", err)
	}
	return expectOne(res, "annotate entry", "entry", id)
}

func (j *SQLite) FeeSchedule(ctx context.Context) (fee.Schedule, error) {
	var s fee.Schedule
	err := j.db.QueryRowContext(ctx, `
		SELECT name, commission_rate, tax_rate, regulatory_rate, brokerage_rate, transfer_rate
		FROM fee_schedule WHERE id = 1`).Scan(
		&s.Name,
		&s.Defaults.Commission,
		&s.Defaults.Tax,
		&s.Defaults.Regulatory,
		&s.Defaults.Brokerage,
		&s.Defaults.Transfer,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fee.Schedule{}, storageErr("fee schedule", errors.New("schedule row missing"))
		}
		return fee.Schedule{}, storageErr("fee schedule", err)
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT segment, commission_rate, tax_rate, regulatory_rate, brokerage_rate, transfer_rate
		FROM fee_segment_rates ORDER BY segment`)
	if err != nil {
		return fee.Schedule{}, storageErr("fee schedule", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seg market.Segment
		var r fee.Rates
		if err := rows.Scan(&seg, &r.Commission, &r.Tax, &r.Regulatory, &r.Brokerage, &r.Transfer); err != nil {
			return fee.Schedule{}, storageErr("fee schedule", err)
		}
		if s.Segments == nil {
			s.Segments = make(map[market.Segment]fee.Rates)
		}
		s.Segments[seg] = r
	}
	if err := rows.Err(); err != nil {
		return fee.Schedule{}, storageErr("fee schedule", err)
	}
	return s, nil
}

func (j *SQLite) UpdateFeeRates(ctx context.Context, r fee.Rates) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE fee_schedule
		SET commission_rate = ?, tax_rate = ?, regulatory_rate = ?, brokerage_rate = ?, transfer_rate = ?
		WHERE id = 1`,
		r.Commission, r.Tax, r.Regulatory, r.Brokerage, r.Transfer,
	)
	if err != nil {
		return storageErr("update fee rates", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("update fee rates", err)
	}
	if n == 0 {
		return storageErr("update fee rates", errors.New("schedule row missing"))
	}
	return nil
}

func (j *SQLite) UpdateSegmentRates(ctx context.Context, seg market.Segment, r fee.Rates) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO fee_segment_rates
		(segment, commission_rate, tax_rate, regulatory_rate, brokerage_rate, transfer_rate)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(segment) DO UPDATE SET
			commission_rate = excluded.commission_rate,
			tax_rate = excluded.tax_rate,
			regulatory_rate = excluded.regulatory_rate,
			brokerage_rate = excluded.brokerage_rate,
			transfer_rate = excluded.transfer_rate`,
		seg, r.Commission, r.Tax, r.Regulatory, r.Brokerage, r.Transfer,
	)
	if err != nil {
		return storageErr("update segment rates", err)
	}
	return nil
}
