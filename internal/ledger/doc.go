// Package ledger persists the album cache and the upload ledger in a
// single SQLite database.
//
// The album cache is the only source of truth for which remote albums
// exist: the remote service cannot list albums created by other client
// identities, so losing the cache means the next run recreates every
// album. The upload ledger records one row per organized file so that
// interrupted runs resume without re-uploading finished work.
package ledger
