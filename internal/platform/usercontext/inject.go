package usercontext

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/propagation"
)

// Inject writes every present field of the metadata bound to ctx into the
// outbound carrier under its well-known key. Absent fields are not written.
// It returns the number of keys written, and ErrNoContextBound when ctx has
// no live binding; in that case the carrier is left untouched.
func Inject(ctx context.Context, carrier propagation.TextMapCarrier) (int, error) {
	md, err := Current(ctx)
	if err != nil {
		return 0, err
	}
	return InjectValues(md.Snapshot(), carrier), nil
}

// InjectValues writes the present fields of v into carrier. A bound value
// replaces whatever the carrier already held under any casing of its key, so
// a caller-supplied variant such as "TMX-USER-ID" never travels next to it.
// Case variants are removed for MapCarrier, HeaderCarrier and any carrier
// with a Delete(key) method; other carriers must canonicalize keys in Set.
func InjectValues(v Values, carrier propagation.TextMapCarrier) int {
	if carrier == nil {
		return 0
	}
	n := 0
	for _, f := range Fields() {
		s, ok := v.Get(f)
		if !ok {
			continue
		}
		dropVariants(carrier, f.Header())
		carrier.Set(f.Header(), s)
		n++
	}
	return n
}

type keyDeleter interface {
	Delete(key string)
}

// dropVariants removes every key equal to key ignoring case, other than the
// exact form Set is about to write.
func dropVariants(carrier propagation.TextMapCarrier, key string) {
	switch c := carrier.(type) {
	case propagation.MapCarrier:
		for k := range c {
			if k != key && strings.EqualFold(k, key) {
				delete(c, k)
			}
		}
	case propagation.HeaderCarrier:
		canonical := http.CanonicalHeaderKey(key)
		for k := range c {
			if k != canonical && strings.EqualFold(k, key) {
				delete(c, k)
			}
		}
	case keyDeleter:
		for _, k := range carrier.Keys() {
			if k != key && strings.EqualFold(k, key) {
				c.Delete(k)
			}
		}
	}
}

// Strip removes the four well-known keys from h so that only bound values
// reach the downstream service.
func Strip(h http.Header) {
	for _, f := range Fields() {
		h.Del(f.Header())
	}
}
