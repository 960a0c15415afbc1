package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// FormParsedKey returns the cache key for a parsed form, keyed by the SHA-1 of its URL.
func (r *CacheKeyStruct) FormParsedKey(urlHash string) string {
	return fmt.Sprintf("form:%s:parsed", urlHash)
}

// TelegramWrongCountKey returns the cache key for a chat's deliberate-miss count.
func (r *CacheKeyStruct) TelegramWrongCountKey(chatID int64) string {
	return fmt.Sprintf("tg:%d:wrong", chatID)
}

// TelegramLastFormKey returns the cache key for the last form parsed in a chat.
func (r *CacheKeyStruct) TelegramLastFormKey(chatID int64) string {
	return fmt.Sprintf("tg:%d:last_form", chatID)
}

var CacheKey = NewCacheKeyStruct()
