package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	metaKey      = "response_meta"
	metaStartKey = "response_meta_start"
)

// ResponseMeta collects envelope metadata for a single request.
type ResponseMeta map[string]interface{}

// WithResponseMeta prepares per-request envelope metadata and stamps the
// request start so handlers can report server-side latency.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaStartKey, time.Now())
		c.Set(metaKey, ResponseMeta{})
		c.Next()
	}
}

// SetCacheHit records whether a cached read model served the request and
// mirrors it in the X-Cache header.
func SetCacheHit(c *gin.Context, hit bool) {
	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	SetMeta(c, "cache_hit", hit)
}

// SetMeta stores a single metadata value for the response envelope.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	meta, ok := metaFrom(c)
	if !ok {
		meta = ResponseMeta{}
		c.Set(metaKey, meta)
	}
	meta[key] = value
}

// ExtractMeta returns the collected metadata, or nil when no handler set any.
// processing_time_ms is computed at extraction, just before the envelope is written.
func ExtractMeta(c *gin.Context) ResponseMeta {
	if c == nil {
		return nil
	}
	meta, ok := metaFrom(c)
	if !ok || len(meta) == 0 {
		return nil
	}
	if start, ok := c.Get(metaStartKey); ok {
		if ts, ok := start.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(ts).Milliseconds()
		}
	}
	return meta
}

func metaFrom(c *gin.Context) (ResponseMeta, bool) {
	raw, exists := c.Get(metaKey)
	if !exists {
		return nil, false
	}
	meta, ok := raw.(ResponseMeta)
	return meta, ok
}
