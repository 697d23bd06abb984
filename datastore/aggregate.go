package datastore

// Method names one of the reduction functions the fetch path can apply
// to a bucket of raw samples.
type Method string

const (
	MethodMean Method = "mean"
	MethodSum  Method = "sum"
	MethodMax  Method = "max"
	MethodMin  Method = "min"
	MethodRaw  Method = "raw"
)

// aggregate reduces values under method. ok is false when the bucket has
// no reduced value to report (mean/max/min on an empty list) and the
// caller should leave the point as a bare placeholder rather than a
// number.
func aggregate(method Method, values []float64) (result interface{}, ok bool) {
	switch method {
	case MethodSum:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum, true

	case MethodMean:
		if len(values) == 0 {
			return nil, false
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values)), true

	case MethodMax:
		if len(values) == 0 {
			return nil, false
		}
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max, true

	case MethodMin:
		if len(values) == 0 {
			return nil, false
		}
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min, true

	case MethodRaw:
		out := make([]float64, len(values))
		copy(out, values)
		return out, true

	default:
		return nil, false
	}
}

// mean is the reduction the ingest worker applies to finest-tier points
// when computing a coarser-tier rollup value. An empty window produces
// no write at all (see ingest.go), so ok reports that distinctly from a
// valid-but-zero mean.
func mean(values []float64) (v float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, x := range values {
		sum += x
	}
	return sum / float64(len(values)), true
}
