package model

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Default optimization levers, matching the mixed and sleep scenarios.
const (
	DefaultSleepModeReduction = 0.30
	DefaultPartialRenewable   = 0.30
)

// BaselineParams is the reference every savings figure is computed against:
// full grid supply, no sleep mode.
var BaselineParams = ScenarioParams{SleepFrac: 0, RenewableShare: 0}

// NamedScenario binds a scenario name to its parameters.
type NamedScenario struct {
	Name   string
	Params ScenarioParams
}

// ScenarioSet is an ordered name to parameters mapping. Iteration follows
// insertion order so callers control presentation ordering.
type ScenarioSet struct {
	scenarios []NamedScenario
}

func NewScenarioSet() *ScenarioSet {
	return &ScenarioSet{scenarios: make([]NamedScenario, 0)}
}

// Add registers a scenario. Adding an existing name updates its parameters
// in place, keeping the original position.
func (set *ScenarioSet) Add(name string, params ScenarioParams) *ScenarioSet {
	for i, scenario := range set.scenarios {
		if scenario.Name == name {
			set.scenarios[i].Params = params
			return set
		}
	}
	set.scenarios = append(set.scenarios, NamedScenario{Name: name, Params: params})
	return set
}

func (set *ScenarioSet) Get(name string) (ScenarioParams, bool) {
	for _, scenario := range set.scenarios {
		if scenario.Name == name {
			return scenario.Params, true
		}
	}
	return ScenarioParams{}, false
}

// Scenarios returns the scenarios in insertion order.
func (set *ScenarioSet) Scenarios() []NamedScenario {
	scenarios := make([]NamedScenario, len(set.scenarios))
	copy(scenarios, set.scenarios)
	return scenarios
}

func (set *ScenarioSet) Len() int {
	return len(set.scenarios)
}

// Lookup fuzzy finds the best matching scenario for a user supplied name.
func (set *ScenarioSet) Lookup(name string) (NamedScenario, bool) {
	names := make([]string, 0, len(set.scenarios))
	for _, scenario := range set.scenarios {
		names = append(names, scenario.Name)
	}

	ranks := fuzzy.RankFindNormalizedFold(name, names)
	if len(ranks) == 0 {
		return NamedScenario{}, false
	}
	sort.Sort(ranks)

	return set.scenarios[ranks[0].OriginalIndex], true
}

// DefaultScenarios returns the five fixed scenarios, baseline first.
func DefaultScenarios() *ScenarioSet {
	return NewScenarioSet().
		Add("baseline", BaselineParams).
		Add("renewable", ScenarioParams{SleepFrac: 0, RenewableShare: 1}).
		Add("mixed", ScenarioParams{SleepFrac: 0, RenewableShare: DefaultPartialRenewable}).
		Add("sleep", ScenarioParams{SleepFrac: DefaultSleepModeReduction, RenewableShare: 0}).
		Add("sleep+renewable", ScenarioParams{SleepFrac: DefaultSleepModeReduction, RenewableShare: 1})
}
