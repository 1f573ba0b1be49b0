// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS instruments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL CHECK (name <> ''),
	segment INTEGER NOT NULL,
	commission_rate REAL NOT NULL DEFAULT 0,
	status INTEGER NOT NULL DEFAULT 1,
	sort_index INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ref TEXT NOT NULL UNIQUE,
	instrument_id INTEGER NOT NULL REFERENCES instruments(id) ON DELETE CASCADE,
	current_price REAL NOT NULL,
	cost REAL NOT NULL,
	position REAL NOT NULL CHECK (position >= 0),
	total_fee REAL NOT NULL,
	trade_price REAL NOT NULL,
	trade_size REAL NOT NULL,
	commission_fee REAL NOT NULL DEFAULT 0,
	tax_fee REAL NOT NULL DEFAULT 0,
	regulatory_fee REAL NOT NULL DEFAULT 0,
	brokerage_fee REAL NOT NULL DEFAULT 0,
	transfer_fee REAL NOT NULL DEFAULT 0,
	action INTEGER NOT NULL,
	profit REAL NOT NULL DEFAULT 0,
	profit_rate REAL NOT NULL DEFAULT 0,
	note TEXT NOT NULL DEFAULT '',
	action_time DATETIME,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_instrument ON entries(instrument_id, id);

CREATE TABLE IF NOT EXISTS fee_schedule (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	name TEXT NOT NULL,
	commission_rate REAL NOT NULL,
	tax_rate REAL NOT NULL,
	regulatory_rate REAL NOT NULL,
	brokerage_rate REAL NOT NULL,
	transfer_rate REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS fee_segment_rates (
	segment INTEGER PRIMARY KEY,
	commission_rate REAL NOT NULL,
	tax_rate REAL NOT NULL,
	regulatory_rate REAL NOT NULL,
	brokerage_rate REAL NOT NULL,
	transfer_rate REAL NOT NULL
);
`

const seedSchedule = `
INSERT OR IGNORE INTO fee_schedule
(id, name, commission_rate, tax_rate, regulatory_rate, brokerage_rate, transfer_rate)
VALUES (1, ?, ?, ?, ?, ?, ?)`
