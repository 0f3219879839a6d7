package ratelimit

import (
	"strings"
)

// unlimited is returned for routes that are never limited.
var unlimited = &EndpointConfig{Path: "/health", Method: "GET"}

// MatchEndpoint returns the configuration for path and method, or nil when no route matches.
// Exact patterns win over trailing-slash prefixes.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return unlimited
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && matchSegments(c.Path, path) {
			return c
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && matchPrefix(c.Path, path) {
			return c
		}
	}

	return nil
}

func matchSegments(pattern, path string) bool {
	if pattern == path {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	return segmentsEqual(ps, xs)
}

func matchPrefix(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(xs) <= len(ps) {
		return false
	}
	return segmentsEqual(ps, xs[:len(ps)])
}

func segmentsEqual(pattern, path []string) bool {
	for i, p := range pattern {
		if p == "*" {
			if path[i] == "" {
				return false
			}
			continue
		}
		if p != path[i] {
			return false
		}
	}
	return true
}
