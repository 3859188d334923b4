package domain

import "errors"

// ErrFetchTimeout marks a per-sender fetch that exceeded its wall-clock
// budget. It is always recovered inside the card assembler; the affected
// sender degrades to its fallback fields.
var ErrFetchTimeout = errors.New("fetch timeout")
