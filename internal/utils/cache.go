package utils

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// NewMembershipCache caches positive "user is an active participant" lookups.
func NewMembershipCache() *cache.Cache { return cache.New(time.Minute*5, time.Second*30) }

const authCacheTTL = time.Minute * 5

// NewAuthCache caches validated token claims keyed by the raw token.
func NewAuthCache() *cache.Cache { return cache.New(authCacheTTL, time.Minute) }

// AuthCacheTTL is how long claims may stay cached: the cache default, cut
// short by the token's own expiry. A result <= 0 means do not cache.
func AuthCacheTTL(claims *Claims) time.Duration {
	ttl := authCacheTTL
	if claims.ExpiresAt != nil {
		ttl = min(ttl, time.Until(claims.ExpiresAt.Time))
	}
	return ttl
}

func MembershipKey(userID, meetupID uint) string {
	return fmt.Sprintf("membership:%d:%d", userID, meetupID)
}
