// Package store provides persistent storage for the console using SQLite.
//
// The console holds almost no state of its own: every tenant, knowledge item,
// and conversation lives in the backend API. The one durable record kept here
// is the browser session — the backend bearer token plus the plan flags that
// gate the UI between requests.
//
// SQLiteStore is the production implementation; MockStore backs tests. Both
// treat a session past its expiry as missing so callers never observe a dead
// login.
package store
