// Package gateway forwards console writes to the upstream REST API and
// normalizes its failure payloads into message lists.
//
// The same Service backs the server-rendered forms and the JSON routes under
// /yard-management-system/api/.
package gateway
