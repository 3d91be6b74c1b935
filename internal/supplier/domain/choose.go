package domain

import "sort"

// Choose picks the supplier an order should be routed to: the active
// supplier with the highest priority, ties broken by lowest id so the
// result is stable across calls. Returns nil when no supplier is
// eligible.
func Choose(suppliers []Supplier) *Supplier {
	var eligible []Supplier
	for _, s := range suppliers {
		if s.Active {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Priority != eligible[j].Priority {
			return eligible[i].Priority > eligible[j].Priority
		}
		return eligible[i].ID < eligible[j].ID
	})

	return &eligible[0]
}
