// Package workflow drives the two interaction loops every master-data page
// shares: editing one record through a form, and deleting a row from a list.
//
// Controllers are transport-agnostic. They talk to the upstream API through
// Store and Deleter, report outcomes through Notifier, and leave the browser
// transition to Navigator and Scheduler so the HTTP layer can decide how the
// delayed redirect is delivered.
package workflow
