package domain

// AggregatePart is the outcome of one upstream GET within an aggregate
// request. Err is set when the upstream could not be reached; an upstream
// error status is not an Err.
type AggregatePart struct {
	Path       string
	StatusCode int
	Body       []byte
	Err        error
}

// AggregateResult holds the parts in request order.
type AggregateResult struct {
	Parts []AggregatePart
}

// Failed returns how many parts could not be fetched.
func (r *AggregateResult) Failed() int {
	n := 0
	for _, p := range r.Parts {
		if p.Err != nil {
			n++
		}
	}
	return n
}
