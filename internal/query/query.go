// Package query holds the read side. Services delegate to the cache-fronted
// read repositories and never open a unit of work.
package query

import "time"

var now = func() time.Time { return time.Now().UTC() }
