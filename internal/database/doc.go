// Package database stores the inspection history of webwaiter in SQLite
// (modernc.org/sqlite, no cgo).
//
// Every inspection is saved as its full JSON report next to a small summary
// of counts, so `webwaiter history` can list past runs without decoding
// whole reports. Downloaded images are recorded with their SHA3-256 digest.
// The schema is versioned with golang-migrate using the SQL files embedded
// from migrations/.
package database
