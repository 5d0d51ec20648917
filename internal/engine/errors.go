package engine

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigurationError reports an invalid factor set: duplicate keys, negative
// weights, zero scales, or a weight sum off the configured budget. It is
// fatal to the computation; the engine never corrects a bad set silently.
type ConfigurationError struct {
	// Keys names the offending factors, when the problem is per-factor.
	Keys   []string
	Reason string
	// Detail carries numeric context, e.g. the actual weight sum and budget.
	Detail map[string]float64
}

func (e *ConfigurationError) Error() string {
	msg := "factor configuration invalid: " + e.Reason
	if len(e.Keys) > 0 {
		msg += " (" + strings.Join(e.Keys, ", ") + ")"
	}
	if len(e.Detail) > 0 {
		names := make([]string, 0, len(e.Detail))
		for k := range e.Detail {
			names = append(names, k)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, k := range names {
			parts = append(parts, fmt.Sprintf("%s=%g", k, e.Detail[k]))
		}
		msg += " [" + strings.Join(parts, " ") + "]"
	}
	return msg
}
