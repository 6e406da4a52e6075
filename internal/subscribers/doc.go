// Package subscribers stores mailing-list subscribers in SQLite.
//
// Email is the logical key for updates and deletes but is not unique; both
// operations touch every matching row. Databases created by earlier releases
// with a TEXT level column are migrated to INTEGER levels on open.
package subscribers
