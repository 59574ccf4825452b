package journal

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	timestamp DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	units INTEGER NOT NULL,
	price REAL NOT NULL,
	balance REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(timestamp);
CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);

CREATE TABLE IF NOT EXISTS equity (
	timestamp DATETIME NOT NULL,
	balance REAL NOT NULL,
	equity REAL NOT NULL,
	pnl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(timestamp);
`
