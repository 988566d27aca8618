// Package devapi is a development stand-in for the yard management REST
// backend. It keeps JSON records per collection in SQLite and answers with the
// same {data, message, logId} envelope the console expects.
package devapi
