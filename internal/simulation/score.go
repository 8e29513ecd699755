package simulation

import "math"

// Category weights. They sum to 100, so a perfect input scores 100.
const (
	PlatformWeight   = 30
	EntryTimeWeight  = 25
	TicketTypeWeight = 25
	NetworkWeight    = 20
)

// Suggestion texts returned to clients.
const (
	SuggestKeepGoing    = "您的設定非常好！繼續保持！"
	SuggestCheapestTier = "建議改搶 3800 區"
	SuggestTopPlatform  = "建議改用 ibon 平台"
	SuggestFasterNet    = "建議改用更快的網路"
	SuggestEnterEarlier = "建議提早進場"
	SuggestAll          = "建議改搶 3800 區並提早進場，使用快速網路"
)

var (
	platformScores = map[string]float64{
		"ibon":  1.0,
		"KKTIX": 0.8,
		"拓元":    0.7,
		"other": 0.7,
	}
	entryTimeScores = map[string]float64{
		"early":  1.0,
		"ontime": 0.8,
		"late":   0.6,
	}
	ticketTypeScores = map[string]float64{
		"3800": 1.0,
		"4800": 0.8,
		"6800": 0.6,
	}
	networkScores = map[string]float64{
		"fast":   1.0,
		"normal": 0.8,
		"slow":   0.6,
	}
)

// Input is the set of choices a user simulates.
type Input struct {
	Platform   string
	EntryTime  string
	TicketType string
	Network    string
}

// Result is the outcome of Score. The sub-scores are weight × value before
// summation.
type Result struct {
	Platform    float64
	EntryTime   float64
	TicketType  float64
	Network     float64
	SuccessRate int
	Suggestion  string
}

// Score computes the success rate and suggestion for in. It is pure.
func Score(in Input) Result {
	// float64() forces rounding of each product so the compiler cannot fuse
	// it into the following addition; results must match IEEE mul-then-add.
	r := Result{
		Platform:   float64(platformScores[in.Platform] * PlatformWeight),
		EntryTime:  float64(entryTimeScores[in.EntryTime] * EntryTimeWeight),
		TicketType: float64(ticketTypeScores[in.TicketType] * TicketTypeWeight),
		Network:    float64(networkScores[in.Network] * NetworkWeight),
	}

	sum := float64(float64(float64(r.Platform+r.EntryTime)+r.TicketType) + r.Network)
	r.SuccessRate = int(math.Floor(sum + 0.5))
	r.Suggestion = suggest(r)
	return r
}

// suggest picks the advice for r. In the middle band the first failing check
// wins, not the weakest category.
func suggest(r Result) string {
	switch {
	case r.SuccessRate >= 80:
		return SuggestKeepGoing
	case r.SuccessRate >= 60:
		switch {
		case r.TicketType < TicketTypeWeight:
			return SuggestCheapestTier
		case r.Platform < PlatformWeight:
			return SuggestTopPlatform
		case r.Network < NetworkWeight:
			return SuggestFasterNet
		default:
			return SuggestEnterEarlier
		}
	default:
		return SuggestAll
	}
}
