// Package export ships audit events out of the version store for
// long-term retention. Events can be written as JSON Lines to any writer,
// archived into a standalone SQLite database, or both on a cron schedule.
package export
