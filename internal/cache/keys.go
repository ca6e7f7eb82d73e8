package cache

import (
	"fmt"
	"strings"
)

// Aggregate endpoints whose responses the front door may cache, relative to
// the API prefix.
var aggregatePaths = []string{
	"/analyses/stats/",
	"/analyses/summary/",
	"/analyses/recent/",
}

// AggregateKey is the cache key for a proxied aggregate GET.
func AggregateKey(path string) string {
	return fmt.Sprintf("dic:aggregate:%s", path)
}

// AggregateKeys returns the keys of every cacheable aggregate under prefix.
func AggregateKeys(prefix string) []string {
	prefix = "/" + strings.Trim(prefix, "/")
	keys := make([]string, len(aggregatePaths))
	for i, p := range aggregatePaths {
		keys[i] = AggregateKey(prefix + p)
	}
	return keys
}

// IsAggregatePath reports whether path is a cacheable aggregate under prefix.
func IsAggregatePath(prefix, path string) bool {
	prefix = "/" + strings.Trim(prefix, "/")
	for _, p := range aggregatePaths {
		if path == prefix+p {
			return true
		}
	}
	return false
}

func RateLimitKey(clientID string) string {
	return fmt.Sprintf("dic:ratelimit:%s", clientID)
}
