package cache

import "strings"

// GlobalKeyPrefix namespaces every key this application writes, so the Redis
// database can be shared.
const GlobalKeyPrefix = "quizbox"

// Namespaces of the keys in use, as service and object type.
const (
	sessionService    = "session"
	sessionObject     = "data"
	randomPlayService = "randomplay"
	randomPlayObject  = "answered"
)

// GenerateCacheKey joins the prefix, service name, object type and
// identifier with ":".
func GenerateCacheKey(serviceName, objectType, identifier string) string {
	return strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
}

// KeyPattern returns a SCAN pattern matching every key GenerateCacheKey
// produces for serviceName and objectType.
func KeyPattern(serviceName, objectType string) string {
	return GenerateCacheKey(serviceName, objectType, "*")
}

// SessionKey is where the fiber session with the given id is stored.
func SessionKey(sessionID string) string {
	return GenerateCacheKey(sessionService, sessionObject, sessionID)
}

// SessionKeyPattern matches every stored session.
func SessionKeyPattern() string {
	return KeyPattern(sessionService, sessionObject)
}

// RandomPlayKey is where the random play progress of a session is stored.
func RandomPlayKey(sessionID string) string {
	return GenerateCacheKey(randomPlayService, randomPlayObject, sessionID)
}
