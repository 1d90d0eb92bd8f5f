// Package api defines wire-format types and converters for the HTTP API
// layer. It translates internal settings models into transport-friendly
// DTOs so consumers never couple to sheet internals.
//
// DTOs use snake_case JSON tags to match the protocol existing clients
// already speak. Partial updates keep raw JSON per field so an absent key
// (leave alone) and an explicit null (clear, inherit the default) remain
// distinguishable after decoding.
package api
