// File: utils/constants.go
package utils

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// RevokedTokenPrefix marks a revoked token hash under the auth cache.
const RevokedTokenPrefix = AuthCachePrefix + "revoked:"

