// Package photoslib speaks to the remote photo-library service.
//
// The capability surface is deliberately tiny: create an album, upload
// bytes, link uploaded media into an album. The service cannot reliably
// list albums created by other client identities, which is why the
// ledger package, not this one, answers "does this album exist".
package photoslib
