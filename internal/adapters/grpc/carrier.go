// Package grpc provides the gRPC adapter: the inbound server with request
// metadata capture, outbound client interceptors that inject the bound
// metadata, and a health checker for a gRPC upstream.
package grpc

import (
	"go.opentelemetry.io/otel/propagation"
	"google.golang.org/grpc/metadata"
)

var _ propagation.TextMapCarrier = MetadataCarrier(nil)

// MetadataCarrier adapts gRPC metadata to propagation.TextMapCarrier.
// gRPC lowercases keys, so lookups are case-insensitive.
type MetadataCarrier metadata.MD

// Get returns the first value for key, or "" if there is none.
func (c MetadataCarrier) Get(key string) string {
	vs := metadata.MD(c).Get(key)
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Set replaces the values for key.
func (c MetadataCarrier) Set(key, value string) {
	metadata.MD(c).Set(key, value)
}

// Delete removes key exactly as stored. MD values built from a literal can
// hold keys that are not lowercase.
func (c MetadataCarrier) Delete(key string) {
	delete(c, key)
}

// Keys lists the keys present in the metadata.
func (c MetadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
