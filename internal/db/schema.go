package db

// Schema creates the bookings table used by the postgres store. Ids are
// assigned by the store (max + 1) rather than a sequence so they stay gapless
// when an insert is rolled back.
const Schema = `
CREATE TABLE IF NOT EXISTS bookings (
	id            INTEGER PRIMARY KEY,
	doctor_id     INTEGER NOT NULL CHECK (doctor_id > 0),
	date          TEXT NOT NULL,
	slot          TEXT NOT NULL,
	patient_name  TEXT NOT NULL,
	patient_phone TEXT NOT NULL DEFAULT '',
	notes         TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS bookings_slot_idx ON bookings (doctor_id, date, slot);
`
