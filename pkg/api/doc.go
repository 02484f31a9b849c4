// Package api defines the request and response messages of the MoneySplit
// RPC services. Messages travel as JSON with camelCase field names; the
// Connect wiring lives in package apiconnect.
//
// Amounts are decimal currency units (e.g. 12.34). Dates are YYYY-MM-DD.
// Timestamps are Unix seconds.
package api
