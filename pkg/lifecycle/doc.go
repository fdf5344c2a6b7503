// Package lifecycle manages one user's invitation links from the client side.
//
// A Manager sits between a caller (a CLI, a web handler, a UI binding) and a
// remote LinkStore. It keeps the last fetched snapshot of the user's links,
// annotates every link with its expiry computed from the creation time, and
// enforces the quota and naming rules before anything reaches the store.
//
// The store stays authoritative. The quota check performed by CreateLink is
// advisory: another session for the same user may race it, so a quota
// rejection from the store is always surfaced as ErrQuotaExceeded even when
// the local check passed.
//
// A Manager expects sequential use (one request in flight at a time). It
// still tolerates callers that abandon a request and issue another: a
// response that belongs to a superseded request is never applied to the
// cache.
package lifecycle
