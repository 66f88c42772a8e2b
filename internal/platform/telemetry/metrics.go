package telemetry

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

const meterName = "github.com/jsamuelsen11/tmx-edge-gateway"

// Metric label keys shared by the server middleware, the outbound client and
// the request metadata store.
var (
	AttrHTTPMethod    = attribute.Key("http.method")
	AttrHTTPStatus    = attribute.Key("http.status_code")
	AttrHTTPRoute     = attribute.Key("http.route")
	AttrPeerService   = attribute.Key("peer.service")
	AttrResult        = attribute.Key("result")
	AttrFieldsPresent = attribute.Key("usercontext.fields_present")
	AttrCarrier       = attribute.Key("usercontext.carrier")
)

// Metrics is the gateway's instrument set. A nil *Metrics is accepted
// wherever one is taken and disables recording.
type Metrics struct {
	ServerRequestDuration metric.Float64Histogram
	ServerRequestTotal    metric.Int64Counter
	ClientRequestDuration metric.Float64Histogram
	ClientRequestTotal    metric.Int64Counter

	// UserContextCaptures is labelled with how many tmx-* fields arrived.
	UserContextCaptures   metric.Int64Counter
	UserContextInjections metric.Int64Counter
	// UserContextActive is the number of bindings not yet released.
	UserContextActive metric.Int64UpDownCounter
}

// NewMetrics registers every instrument on mp. All registration failures are
// reported together.
func NewMetrics(mp metric.MeterProvider, serviceName string) (*Metrics, error) {
	r := registrar{meter: mp.Meter(meterName,
		metric.WithInstrumentationAttributes(semconv.ServiceName(serviceName)))}

	m := &Metrics{
		ServerRequestDuration: r.seconds("http.server.request.duration", "Time to serve an inbound request"),
		ServerRequestTotal:    r.count("http.server.request.total", "Inbound requests served", "{request}"),
		ClientRequestDuration: r.seconds("http.client.request.duration", "Time spent on an upstream call, retries included"),
		ClientRequestTotal:    r.count("http.client.request.total", "Upstream calls made", "{request}"),
		UserContextCaptures:   r.count("gateway.usercontext.captures", "Inbound requests whose metadata was captured", "{request}"),
		UserContextInjections: r.count("gateway.usercontext.injections", "Outbound calls that carried request metadata", "{call}"),
		UserContextActive:     r.gauge("gateway.usercontext.active", "Request metadata bindings not yet released", "{binding}"),
	}
	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// registrar collects instrument errors so NewMetrics can build the struct in
// one literal.
type registrar struct {
	meter metric.Meter
	errs  []error
}

func (r *registrar) fail(name string, err error) {
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("instrument %s: %w", name, err))
	}
}

func (r *registrar) seconds(name, desc string) metric.Float64Histogram {
	h, err := r.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	r.fail(name, err)
	return h
}

func (r *registrar) count(name, desc, unit string) metric.Int64Counter {
	c, err := r.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	r.fail(name, err)
	return c
}

func (r *registrar) gauge(name, desc, unit string) metric.Int64UpDownCounter {
	g, err := r.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	r.fail(name, err)
	return g
}
