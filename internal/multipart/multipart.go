// Package multipart decomposes an instruction into independent components
// and checks each one against the readback.
package multipart

import (
	"math"

	"github.com/yegors/readback-check/internal/command"
	"github.com/yegors/readback-check/internal/models"
)

// ComponentCondition is the component type of a conditional clause
const ComponentCondition command.Parameter = "condition"

// Component is one extracted element of a multi-part instruction
type Component struct {
	Type             command.Parameter `json:"type"`
	Value            string            `json:"value"`
	ExpectedReadback string            `json:"expected_readback"`
	// ActualReadback is nil when the readback carries no value for this component
	ActualReadback *string         `json:"actual_readback"`
	IsPresent      bool            `json:"is_present"`
	IsCritical     bool            `json:"is_critical"`
	Severity       models.Severity `json:"severity"`
}

// Analysis is the per-component breakdown of one exchange
type Analysis struct {
	Components           []Component `json:"components"`
	ReadbackCompleteness int         `json:"readback_completeness"`
	CriticalPartsMissing bool        `json:"critical_parts_missing"`
}

// Missing returns the components absent from the readback
func (a Analysis) Missing() []Component {
	var out []Component
	for _, c := range a.Components {
		if !c.IsPresent {
			out = append(out, c)
		}
	}
	return out
}

// componentSeverity is how serious the omission of each component is
var componentSeverity = map[command.Parameter]models.Severity{
	command.ParamAltitude:  models.SeverityCritical,
	command.ParamRunway:    models.SeverityCritical,
	command.ParamAltimeter: models.SeverityCritical,
	command.ParamHeading:   models.SeverityHigh,
	command.ParamSquawk:    models.SeverityHigh,
	command.ParamFrequency: models.SeverityHigh,
	command.ParamApproach:  models.SeverityHigh,
	ComponentCondition:     models.SeverityHigh,
	command.ParamSpeed:     models.SeverityMedium,
	command.ParamWaypoint:  models.SeverityMedium,
}

var criticalComponents = map[command.Parameter]bool{
	command.ParamAltitude:  true,
	command.ParamHeading:   true,
	command.ParamRunway:    true,
	command.ParamAltimeter: true,
	command.ParamSquawk:    true,
	ComponentCondition:     true,
}

// SeverityOf returns the omission severity of a component type
func SeverityOf(p command.Parameter) models.Severity {
	if s, ok := componentSeverity[p]; ok {
		return s
	}
	return models.SeverityMedium
}

// Analyze extracts every component of instruction and tests its presence in
// readback. The readback should already have its callsign stripped.
func Analyze(instruction, readback string) Analysis {
	return AnalyzeCommand(command.Parse(instruction), readback)
}

// AnalyzeCommand is Analyze for an instruction that has already been parsed
func AnalyzeCommand(cmd command.StructuredCommand, readback string) Analysis {
	var components []Component
	body := cmd.Body()

	for _, p := range command.ValueParameters {
		primary := p == cmd.Parameter
		value, ok := command.Extract(p, body, primary)
		if !ok {
			continue
		}
		c := Component{
			Type:             p,
			Value:            value,
			ExpectedReadback: command.Display(p, value),
			IsPresent:        command.Present(p, value, readback),
			IsCritical:       criticalComponents[p],
			Severity:         SeverityOf(p),
		}
		if actual, ok := command.Extract(p, readback, primary); ok {
			c.ActualReadback = &actual
		}
		components = append(components, c)
	}

	if cmd.Condition != nil {
		c := Component{
			Type:             ComponentCondition,
			Value:            cmd.Condition.Phrase,
			ExpectedReadback: cmd.Condition.Phrase,
			IsPresent:        cmd.Condition.MentionedIn(readback),
			IsCritical:       true,
			Severity:         SeverityOf(ComponentCondition),
		}
		if c.IsPresent {
			phrase := cmd.Condition.Phrase
			c.ActualReadback = &phrase
		}
		components = append(components, c)
	}

	return summarize(components)
}

func summarize(components []Component) Analysis {
	a := Analysis{Components: components, ReadbackCompleteness: 100}
	if len(components) == 0 {
		return a
	}
	present := 0
	for _, c := range components {
		if c.IsPresent {
			present++
		} else if c.IsCritical {
			a.CriticalPartsMissing = true
		}
	}
	a.ReadbackCompleteness = int(math.Round(100 * float64(present) / float64(len(components))))
	return a
}
