// Package cli implements the command-line interface for city-events.
//
// The cli package provides the Cobra-based CLI: serve runs the REST API,
// scrape runs one reconciliation and prints its report, events lists stored
// events through the same filter as the REST query, and token mints operator
// tokens. It wires configuration, storage, the pipeline and the HTTP layer.
package cli
