// Package config handles configuration loading for ragchat-console.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion,
// then RAGCHAT_* environment variables are applied on top so a container
// deployment can run without editing the file. The package provides validation
// and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	backend:
//	  base_url: "${RAGCHAT_API_URL}"
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	backend:
//	  timeout: "30s"
//	session:
//	  duration: "168h"
//
// # Configuration Sections
//
//	server:    console HTTP listener and external base URL
//	backend:   external RAG API base URL and per-request timeout
//	database:  SQLite path for the session store
//	session:   browser session lifetime
//	trial:     free trial length in days
//	logging:   level (debug/info/warn/error) and format (text/json)
//	metrics:   Prometheus endpoint toggle and path
package config
