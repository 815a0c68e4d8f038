package fix

import (
	"fmt"

	"github.com/golang/groupcache/lru"
	"github.com/mitchellh/hashstructure/v2"
)

// NewDedupeLRUFunc returns a predicate that is true the first time it
// sees a fix and false for repeats, using an LRU of structural hashes.
func NewDedupeLRUFunc(size int) func(Fix) bool {
	var dedupeCache = lru.New(size)
	return func(f Fix) bool {
		hash, err := hashstructure.Hash(f, hashstructure.FormatV2, nil)
		if err != nil {
			return false
		}
		key := fmt.Sprintf("%d", hash)
		_, ok := dedupeCache.Get(key)
		if ok {
			return false
		}
		dedupeCache.Add(key, true)
		return true
	}
}
