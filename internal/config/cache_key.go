package config

import "fmt"

// CacheKeyStruct centralizes Redis key construction so keys never drift
// between writers and readers.
type CacheKeyStruct struct{}

// CacheKey is the shared key builder instance.
var CacheKey = &CacheKeyStruct{}

// AdminSessionKey returns the key holding an admin's active session JTI.
func (k *CacheKeyStruct) AdminSessionKey(adminID int) string {
	return fmt.Sprintf("admin:%d:session", adminID)
}

// PublicTranslationsKey returns the cache key for the public translation
// map of a language and key prefix.
func (k *CacheKeyStruct) PublicTranslationsKey(lang, prefix string) string {
	return fmt.Sprintf("translations:%s:%s", lang, prefix)
}

// PublicTranslationsPattern matches every cached translation map for a
// language, used for invalidation after admin writes.
func (k *CacheKeyStruct) PublicTranslationsPattern(lang string) string {
	return fmt.Sprintf("translations:%s:*", lang)
}

// PinFeedChannel is the pub/sub channel new pins are announced on.
func (k *CacheKeyStruct) PinFeedChannel() string {
	return "pins:feed"
}
