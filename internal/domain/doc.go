// Package domain contains the gateway's transport-independent types: the
// request forwarded upstream, the response relayed back, aggregate results,
// and the sentinel and validation errors shared by every layer.
package domain
