// Package preflight provides readiness checks for the queue store.
//
// The CLI "gearqueue check" command runs RunAll; each Result carries a short
// human readable detail. Filesystem checks never create anything. The store
// check opens the adapter, which bootstraps the table when it is missing.
package preflight
