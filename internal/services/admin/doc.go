// Package admin serves the yard management console.
//
// It renders master list and form pages for yard reference data and relays
// the writes to the upstream REST API through the gateway package.
package admin
