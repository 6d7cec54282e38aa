package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const responseMetaKey = "response_meta"

// ResponseMeta accumulates the diagnostic fields the gateway reports in the
// envelope's meta block: whether the payload came from the dashboard cache
// and how long the gateway spent producing the response.
type ResponseMeta struct {
	CacheHit *bool

	started time.Time
}

// WithResponseMeta stamps each request with a ResponseMeta so handlers can
// report cache utilisation and processing time.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &ResponseMeta{started: time.Now()})
		c.Next()
	}
}

// SetCacheHit records whether the response payload was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c).CacheHit = &hit
}

// ExtractMeta renders the accumulated meta for the response envelope, or nil
// when the request carries none.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	meta := metaOf(c)
	if meta == nil {
		return nil
	}
	out := map[string]interface{}{
		"processing_time_ms": time.Since(meta.started).Milliseconds(),
	}
	if meta.CacheHit != nil {
		out["cache_hit"] = *meta.CacheHit
	}
	return out
}

func metaOf(c *gin.Context) *ResponseMeta {
	if c == nil {
		return nil
	}
	if value, exists := c.Get(responseMetaKey); exists {
		if meta, ok := value.(*ResponseMeta); ok {
			return meta
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) *ResponseMeta {
	if meta := metaOf(c); meta != nil {
		return meta
	}
	meta := &ResponseMeta{started: time.Now()}
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
