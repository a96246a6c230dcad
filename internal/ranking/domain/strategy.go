package domain

// Strategy is a named weighting policy. The set is closed; names are
// matched exactly and case-sensitively.
type Strategy string

const (
	StrategySmartBalance   Strategy = "smart_balance"
	StrategyFastestWins    Strategy = "fastest_wins"
	StrategyHighImpact     Strategy = "high_impact"
	StrategyDeadlineDriven Strategy = "deadline_driven"
)

// DefaultStrategy is used when a request names none.
const DefaultStrategy = StrategySmartBalance

var strategyExplanations = map[Strategy]string{
	StrategySmartBalance:   "Balanced prioritization considering urgency, importance, effort, and dependencies.",
	StrategyFastestWins:    "Prioritizing based on estimated effort - shorter tasks first.",
	StrategyHighImpact:     "Prioritizing based on importance rating.",
	StrategyDeadlineDriven: "Prioritizing based on deadline urgency.",
}

// Strategies returns every known strategy in a stable order.
func Strategies() []Strategy {
	return []Strategy{
		StrategySmartBalance,
		StrategyFastestWins,
		StrategyHighImpact,
		StrategyDeadlineDriven,
	}
}

// ParseStrategy resolves a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	strategy := Strategy(s)
	if !strategy.Valid() {
		return strategy, &StrategyError{Name: s}
	}
	return strategy, nil
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	_, ok := strategyExplanations[s]
	return ok
}

// Explanation is the fixed rationale for the strategy, or "" when unknown.
func (s Strategy) Explanation() string {
	return strategyExplanations[s]
}

func (s Strategy) String() string {
	return string(s)
}
