package helio

import (
	"encoding/json"
	"fmt"
	"os"
)

// FlightCondition is the altitude/speed window of one flight plan stage.
// A zero bound encodes an unbounded side.
type FlightCondition struct {
	AltitudeMin float64 `json:"altitude_min"`
	AltitudeMax float64 `json:"altitude_max"`
	SpeedMin    float64 `json:"speed_min"`
	SpeedMax    float64 `json:"speed_max"`
}

// IsSatisfied returns whether the given altitude and speed fall within the
// window.
func (c FlightCondition) IsSatisfied(altitude, speed float64) bool {
	altitudeOK := (c.AltitudeMin == 0 || altitude >= c.AltitudeMin) &&
		(c.AltitudeMax == 0 || altitude <= c.AltitudeMax)
	speedOK := (c.SpeedMin == 0 || speed >= c.SpeedMin) &&
		(c.SpeedMax == 0 || speed <= c.SpeedMax)
	return altitudeOK && speedOK
}

// FlightAction sets the thrust magnitude (N) and direction for the next step.
type FlightAction struct {
	Thrust    float64   `json:"thrust"`
	Direction []float64 `json:"direction"`
}

// FlightStage pairs a condition window with its action.
type FlightStage struct {
	Condition FlightCondition `json:"condition"`
	Action    FlightAction    `json:"action"`
}

// FlightPlan is an ordered rule table dispatched by an explicit linear scan:
// the first stage whose condition is satisfied wins.
type FlightPlan struct {
	stages []FlightStage
}

// NewFlightPlan returns a flight plan from the given stages, in order.
func NewFlightPlan(stages ...FlightStage) *FlightPlan {
	return &FlightPlan{stages}
}

// LoadFlightPlan reads a flight plan from a JSON file of the form
// {"flight_plan": [{"condition": {...}, "action": {...}}, ...]}.
func LoadFlightPlan(path string) (*FlightPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open flight plan: %s", err)
	}
	var wrapper struct {
		FlightPlan []FlightStage `json:"flight_plan"`
	}
	if err = json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("could not parse flight plan %s: %s", path, err)
	}
	return &FlightPlan{wrapper.FlightPlan}, nil
}

// GetAction returns the action of the first satisfied stage, if any.
func (p *FlightPlan) GetAction(altitude, speed float64) (FlightAction, bool) {
	for _, stage := range p.stages {
		if stage.Condition.IsSatisfied(altitude, speed) {
			return stage.Action, true
		}
	}
	return FlightAction{}, false
}

// AddStage appends a stage to the plan.
func (p *FlightPlan) AddStage(stage FlightStage) {
	p.stages = append(p.stages, stage)
}

// Stages returns the ordered stages.
func (p *FlightPlan) Stages() []FlightStage {
	return p.stages
}
