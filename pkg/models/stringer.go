package models

// String methods for the named string types, so fmt and TOON encoders
// print the bare value.

// EventKind
func (k EventKind) String() string { return string(k) }

// PayerFilter
func (p PayerFilter) String() string { return string(p) }

// Metric
func (m Metric) String() string { return string(m) }
