package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// Deliberately no ON DELETE CASCADE anywhere: parent deletion enumerates and
// deletes children explicitly inside the same transaction, so the cascade
// behavior is visible in the store code and portable across engines. The
// unique constraints below are the source of truth for the engine's
// duplicate/position errors.
const schema = `
CREATE TABLE IF NOT EXISTS clients (
    client_id INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT UNIQUE,
    phone TEXT,
    address TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    group_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT,
    max_cycles INTEGER NOT NULL CHECK (max_cycles > 0),
    status TEXT NOT NULL DEFAULT 'pending',
    current_cycle INTEGER,
    created_at INTEGER NOT NULL,
    status_changed_at INTEGER
);

CREATE TABLE IF NOT EXISTS memberships (
    member_id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id INTEGER NOT NULL REFERENCES groups(group_id),
    client_id INTEGER NOT NULL REFERENCES clients(client_id),
    position INTEGER NOT NULL CHECK (position >= 1),
    joined_at INTEGER NOT NULL,
    UNIQUE (group_id, position)
);

CREATE TABLE IF NOT EXISTS cycles (
    cycle_id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id INTEGER NOT NULL REFERENCES groups(group_id),
    cycle_number INTEGER NOT NULL CHECK (cycle_number >= 1),
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    UNIQUE (group_id, cycle_number)
);

CREATE TABLE IF NOT EXISTS contributions (
    contribution_id INTEGER PRIMARY KEY AUTOINCREMENT,
    cycle_id INTEGER NOT NULL REFERENCES cycles(cycle_id),
    member_id INTEGER NOT NULL REFERENCES memberships(member_id),
    amount REAL NOT NULL CHECK (amount >= 0),
    status TEXT NOT NULL DEFAULT 'pending',
    paid_at INTEGER,
    notes TEXT,
    UNIQUE (cycle_id, member_id)
);

CREATE TABLE IF NOT EXISTS payouts (
    payout_id INTEGER PRIMARY KEY AUTOINCREMENT,
    cycle_id INTEGER NOT NULL REFERENCES cycles(cycle_id),
    member_id INTEGER NOT NULL REFERENCES memberships(member_id),
    amount REAL NOT NULL CHECK (amount >= 0),
    status TEXT NOT NULL DEFAULT 'scheduled',
    paid_at INTEGER,
    UNIQUE (cycle_id, member_id)
);

CREATE TABLE IF NOT EXISTS group_terminations (
    termination_id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id INTEGER NOT NULL REFERENCES groups(group_id),
    reason TEXT,
    terminated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memberships_group_id ON memberships(group_id);
CREATE INDEX IF NOT EXISTS idx_memberships_client_id ON memberships(client_id);
CREATE INDEX IF NOT EXISTS idx_cycles_group_id ON cycles(group_id);
CREATE INDEX IF NOT EXISTS idx_contributions_cycle_id ON contributions(cycle_id);
CREATE INDEX IF NOT EXISTS idx_contributions_member_id ON contributions(member_id);
CREATE INDEX IF NOT EXISTS idx_payouts_cycle_id ON payouts(cycle_id);
CREATE INDEX IF NOT EXISTS idx_payouts_member_id ON payouts(member_id);
CREATE INDEX IF NOT EXISTS idx_payouts_status ON payouts(status);
CREATE INDEX IF NOT EXISTS idx_group_terminations_group_id ON group_terminations(group_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
