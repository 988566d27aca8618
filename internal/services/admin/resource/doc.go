// Package resource declares the yard master-data entities the console edits:
// their upstream collections, form schemas, form inputs, list columns and the
// option sources behind reference fields.
package resource
