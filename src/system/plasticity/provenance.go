package plasticity

import (
	"fmt"
)

// ProvenanceItem is one diagnostic value of a generated rule. Names is the
// path under which the value is reported.
type ProvenanceItem struct {
	Names   []string
	Value   int64
	Report  bool
	Message string
}

const lutMessage = "The last entry in the STDP exponential lookup table for the %s parameter of the %s between %s and %s was %d rather than 0, " +
	"indicating that the lookup table was not big enough at this timestep and value. " +
	"Try reducing the parameter value, or increasing the timestep"

func lutProvenance(pre, post, rule string, entries []LastEntry) []ProvenanceItem {
	items := make([]ProvenanceItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, ProvenanceItem{
			Names:   []string{pre + "_" + post + "_STDP_" + rule, entry.Parameter + "_last_entry"},
			Value:   int64(entry.Value),
			Report:  0 < entry.Value,
			Message: fmt.Sprintf(lutMessage, entry.Parameter, rule, pre, post, entry.Value),
		})
	}
	return items
}
