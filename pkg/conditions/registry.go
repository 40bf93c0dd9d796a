package conditions

// Condition is a reportable health condition and the number of days back
// from the test date within which an encounter counts as an exposure.
type Condition struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	LookbackDays int    `json:"lookback_days"`
}

// DefaultLookbackDays is used for unrecognized condition ids. Unknown ids do
// not fail the run: over-notifying is safer than silently dropping contacts.
const DefaultLookbackDays = 30

var registry = []Condition{
	{ID: "chlamydia", Label: "Chlamydia", LookbackDays: 30},
	{ID: "gonorrhea", Label: "Gonorrhea", LookbackDays: 30},
	{ID: "herpes", Label: "Herpes", LookbackDays: 30},
	{ID: "syphilis", Label: "Syphilis", LookbackDays: 90},
	{ID: "hiv", Label: "HIV", LookbackDays: 90},
	{ID: "hpv", Label: "HPV", LookbackDays: 90},
	{ID: "mpox", Label: "Mpox", LookbackDays: 21},
	{ID: "other", Label: "an STI", LookbackDays: 30},
}

var byID = func() map[string]Condition {
	m := make(map[string]Condition, len(registry))
	for _, c := range registry {
		m[c.ID] = c
	}
	return m
}()

// Lookup returns the condition for id, falling back to a generic entry with
// the default window when the id is unknown.
func Lookup(id string) Condition {
	if c, ok := byID[id]; ok {
		return c
	}
	return Condition{ID: id, Label: "an STI", LookbackDays: DefaultLookbackDays}
}

// All returns the registry in its fixed display order.
func All() []Condition {
	out := make([]Condition, len(registry))
	copy(out, registry)
	return out
}
