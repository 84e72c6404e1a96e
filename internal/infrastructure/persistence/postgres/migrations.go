package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_participants",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_partnerships",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_study_log",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS participants (
	id UUID PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	level TEXT NOT NULL,
	style TEXT NOT NULL DEFAULT '',
	institution TEXT NOT NULL DEFAULT '',
	major TEXT NOT NULL DEFAULT '',
	year INTEGER NOT NULL DEFAULT 0,
	timezone TEXT NOT NULL DEFAULT '',
	region TEXT NOT NULL DEFAULT '',
	subjects JSONB NOT NULL DEFAULT '[]',
	availability JSONB NOT NULL DEFAULT '[]',
	completed_sessions INTEGER NOT NULL DEFAULT 0,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	last_active_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_participants_active ON participants(active);
CREATE INDEX IF NOT EXISTS idx_participants_level ON participants(level);
CREATE INDEX IF NOT EXISTS idx_participants_subjects ON participants USING GIN (subjects jsonb_path_ops);
`

const migration001Down = `
DROP TABLE IF EXISTS participants;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS partnerships (
	participant_id UUID NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
	partner_id UUID NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (participant_id, partner_id),
	CHECK (participant_id <> partner_id)
);

CREATE INDEX IF NOT EXISTS idx_partnerships_partner ON partnerships(partner_id);
`

const migration002Down = `
DROP TABLE IF EXISTS partnerships;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS study_log (
	participant_id UUID NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
	study_date DATE NOT NULL,
	hours DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (participant_id, study_date)
);
`

const migration003Down = `
DROP TABLE IF EXISTS study_log;
`
