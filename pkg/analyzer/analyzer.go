// Package analyzer defines the contract shared by the economy analyzers.
package analyzer

import "context"

// RowAnalyzer summarizes extracted rows into a report.
// Implementations are stateless between calls; the context is checked for
// cancellation before work starts.
type RowAnalyzer[R, T any] interface {
	Analyze(ctx context.Context, rows []R) (T, error)
}
