package journal

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rustyeddy/stockledger/ledger"
)

const instrumentColumns = `id, name, segment, commission_rate, status, sort_index, created_at, updated_at`

const entryColumns = `id, ref, instrument_id, current_price, cost, position, total_fee, trade_price, trade_size,
	commission_fee, tax_fee, regulatory_fee, brokerage_fee, transfer_fee,
	action, profit, profit_rate, note, action_time, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanInstrument(s scanner) (ledger.Instrument, error) {
	var in ledger.Instrument
	err := s.Scan(
		&in.ID,
		&in.Name,
		&in.Segment,
		&in.CommissionRate,
		&in.Status,
		&in.SortIndex,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	return in, err
}

func scanEntry(s scanner) (ledger.Entry, error) {
	var (
		e          ledger.Entry
		actionTime sql.NullTime
	)
	err := s.Scan(
		&e.ID,
		&e.Ref,
		&e.InstrumentID,
		&e.CurrentPrice,
		&e.Cost,
		&e.Position,
		&e.TotalFee,
		&e.TradePrice,
		&e.TradeSize,
		&e.Fees.Commission,
		&e.Fees.Tax,
		&e.Fees.Regulatory,
		&e.Fees.Brokerage,
		&e.Fees.Transfer,
		&e.Action,
		&e.Profit,
		&e.ProfitRate,
		&e.Note,
		&actionTime,
		&e.CreatedAt,
	)
	if actionTime.Valid {
		e.ActionTime = actionTime.Time
	}
	return e, err
}

// GetInstrument returns a single instrument by id.
func (j *SQLite) GetInstrument(ctx context.Context, id int64) (ledger.Instrument, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+instrumentColumns+` FROM instruments WHERE id = ?`, id)
	in, err := scanInstrument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Instrument{}, notFound("instrument", id)
		}
		return ledger.Instrument{}, storageErr("get instrument", err)
	}
	return in, nil
}

// ListInstruments returns instruments in user sort order. Instruments that
// were never sorted (index 0) come first, newest first.
func (j *SQLite) ListInstruments(ctx context.Context) ([]ledger.Instrument, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+instrumentColumns+`
		FROM instruments
		ORDER BY sort_index ASC, id DESC`)
	if err != nil {
		return nil, storageErr("list instruments", err)
	}
	defer rows.Close()

	var out []ledger.Instrument
	for rows.Next() {
		in, err := scanInstrument(rows)
		if err != nil {
			return nil, storageErr("list instruments", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list instruments", err)
	}
	return out, nil
}

// LatestEntry returns the current state of an instrument.
func (j *SQLite) LatestEntry(ctx context.Context, instrumentID int64) (ledger.Entry, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE instrument_id = ?
		ORDER BY id DESC
		LIMIT 1`, instrumentID)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Entry{}, notFound("latest entry of instrument", instrumentID)
		}
		return ledger.Entry{}, storageErr("latest entry", err)
	}
	return e, nil
}

// ListEntries returns an instrument's entries, oldest first.
func (j *SQLite) ListEntries(ctx context.Context, instrumentID int64) ([]ledger.Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE instrument_id = ?
		ORDER BY id ASC`, instrumentID)
	if err != nil {
		return nil, storageErr("list entries", err)
	}
	defer rows.Close()

	var out []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, storageErr("list entries", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list entries", err)
	}
	return out, nil
}

// GetEntry returns a single entry by id.
func (j *SQLite) GetEntry(ctx context.Context, id int64) (ledger.Entry, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Entry{}, notFound("entry", id)
		}
		return ledger.Entry{}, storageErr("get entry", err)
	}
	return e, nil
}
