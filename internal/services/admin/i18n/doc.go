// Package i18n resolves the console locale and builds message printers.
//
// Console URLs carry the locale as their first path segment
// (/{locale}/yard-management-system/...). A cookie remembers the last choice
// so bare URLs redirect to it.
package i18n
