package cache

import (
	"fmt"

	"github.com/golang/groupcache/lru"
	"github.com/jellydator/ttlcache/v3"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/fix"
)

// LastPushTTLCache remembers the most recent populate batch per trajectory.
var LastPushTTLCache = ttlcache.New[string, []*fix.Fix](
	ttlcache.WithTTL[string, []*fix.Fix](params.CacheLastPushTTL))

// LastKnownTTLCache remembers the most recent classified fix per trajectory.
var LastKnownTTLCache = ttlcache.New[string, *fix.Fix](
	ttlcache.WithTTL[string, *fix.Fix](params.CacheLastKnownTTL))

func SetLastPushTTL(tid conceptual.TrajectoryID, fixes []*fix.Fix) {
	LastPushTTLCache.Set(tid.String(), fixes, ttlcache.DefaultTTL)
}

func SetLastKnownTTL(tid conceptual.TrajectoryID, f *fix.Fix) {
	LastKnownTTLCache.Set(tid.String(), f, ttlcache.DefaultTTL)
}

// LastKnown returns the freshest classified fix for a trajectory, or nil.
func LastKnown(tid conceptual.TrajectoryID) *fix.Fix {
	item := LastKnownTTLCache.Get(tid.String())
	if item == nil {
		return nil
	}
	return item.Value()
}

var PopulateDedupeCache = lru.New(10_000)

// DedupePassLRU returns true if the fix is not a duplicate
// using a Least Recently Used (LRU) cache.
// This is the process-wide populate gate; pipelines wanting their own
// window should use fix.NewDedupeLRUFunc instead.
func DedupePassLRU(f *fix.Fix) bool {
	// The hash of the feature is used to deduplicate points.
	hash, err := hashstructure.Hash(f, hashstructure.FormatV2, nil)
	if err != nil {
		return false
	}

	key := fmt.Sprintf("%d", hash)
	_, ok := PopulateDedupeCache.Get(key)
	if ok {
		return false
	}
	PopulateDedupeCache.Add(key, true)
	return true
}
