package ranking

// ChannelBoost is a named channel with its score multiplier, used both
// for the process-wide defaults and for per-run caller overrides.
type ChannelBoost struct {
	Name  string  `json:"name"`
	Boost float64 `json:"boost"`
}

// defaultChannelSuggestions are the channels preferred when a run does
// not supply its own boost map.
var defaultChannelSuggestions = []ChannelBoost{
	{Name: "freeCodeCamp.org", Boost: 1.10},
	{Name: "Tech With Tim", Boost: 1.10},
	{Name: "TechWithTim", Boost: 1.10},
	{Name: "IBM Technology", Boost: 1.10},
}

// DefaultChannelBoostMap returns the lowercase boost map used when no
// per-run overrides exist.
func DefaultChannelBoostMap() map[string]float64 {
	return sanitizeBoosts(channelListToMap(defaultChannelSuggestions))
}

// DefaultChannelList returns a copy of the default channel suggestions
// so callers can mutate without touching package state.
func DefaultChannelList() []ChannelBoost {
	out := make([]ChannelBoost, len(defaultChannelSuggestions))
	copy(out, defaultChannelSuggestions)
	return out
}

func channelListToMap(entries []ChannelBoost) map[string]float64 {
	m := make(map[string]float64, len(entries))
	for _, entry := range entries {
		m[entry.Name] = entry.Boost
	}
	return m
}
