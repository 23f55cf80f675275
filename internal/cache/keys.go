package cache

import "strings"

const (
	GlobalKeyPrefix = "ieltsprep"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// UsageKey is the hash holding one user's usage counters for one UTC day.
func UsageKey(userID, date string) string {
	return GenerateCacheKey("quota", "usage", userID, date)
}

// PresetListKey caches the published presets of a module.
func PresetListKey(module string) string {
	return GenerateCacheKey("preset", "list", module)
}
