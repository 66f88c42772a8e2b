package config

import "time"

// defaults is the lowest configuration layer. Every key the gateway reads
// appears here so that APP_* variables can set keys no YAML file mentions.
func defaults() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"host":          "0.0.0.0",
			"port":          8080,
			"read_timeout":  5 * time.Second,
			"write_timeout": 10 * time.Second,
			"idle_timeout":  2 * time.Minute,
		},
		"grpc": map[string]any{
			"enabled": false,
			"host":    "0.0.0.0",
			"port":    9090,
		},
		"log": map[string]any{
			"level":  "info",
			"format": "json",
		},
		"client": map[string]any{
			"base_url":    "http://localhost:8081",
			"grpc_target": "",
			"timeout":     30 * time.Second,
			"retry": map[string]any{
				"max_attempts":     3,
				"initial_interval": 100 * time.Millisecond,
				"max_interval":     10 * time.Second,
				"multiplier":       2.0,
			},
			"circuit_breaker": map[string]any{
				"max_failures":    5,
				"timeout":         30 * time.Second,
				"half_open_limit": 1,
			},
			"rate_limit": map[string]any{
				"requests_per_second": 0.0,
				"burst_size":          0,
			},
		},
		"gateway": map[string]any{
			"max_fanout":          4,
			"max_aggregate_paths": 16,
			"max_body_bytes":      1 << 20,
		},
		"telemetry": map[string]any{
			"enabled":      false,
			"exporter":     "stdout",
			"endpoint":     "",
			"service_name": "tmx-edge-gateway",
		},
	}
}
