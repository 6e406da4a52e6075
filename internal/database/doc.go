// Package database opens the SQLite files used by the subscriber and schedule
// stores and provides busy-retry helpers for their writes.
//
// Stores embed their own schema SQL and call InitSchema once after Open.
package database
