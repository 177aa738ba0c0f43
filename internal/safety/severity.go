package safety

import "github.com/yegors/readback-check/internal/models"

type severityTable map[models.ErrorType]models.Severity

var (
	critical = models.SeverityCritical
	high     = models.SeverityHigh
	medium   = models.SeverityMedium
	low      = models.SeverityLow
)

// contextual maps a coarse phase and error type onto the severity that
// finding carries in that phase
var contextual = map[models.CoarsePhase]severityTable{
	models.CoarseGround: {
		models.ErrWrongRunway:        critical,
		models.ErrRogerSubstitution:  critical,
		models.ErrMissingDesignator:  high,
		models.ErrWrongValue:         medium,
		models.ErrTransposition:      medium,
		models.ErrParameterConfusion: medium,
		models.ErrCriticalConfusion:  high,
		models.ErrConditionViolated:  critical,
		models.ErrConditionOmitted:   high,
		models.ErrMissingElement:     medium,
		models.ErrIncompleteReadback: medium,
		models.ErrConstraintMissing:  medium,
		models.ErrWrongDirection:     medium,
		models.ErrMissingCallsign:    low,
	},
	models.CoarseDeparture: {
		models.ErrWrongRunway:        critical,
		models.ErrRogerSubstitution:  critical,
		models.ErrMissingDesignator:  high,
		models.ErrWrongValue:         critical,
		models.ErrTransposition:      critical,
		models.ErrParameterConfusion: critical,
		models.ErrCriticalConfusion:  critical,
		models.ErrConditionViolated:  critical,
		models.ErrConditionOmitted:   high,
		models.ErrMissingElement:     high,
		models.ErrIncompleteReadback: high,
		models.ErrConstraintMissing:  high,
		models.ErrWrongDirection:     critical,
		models.ErrMissingCallsign:    low,
	},
	models.CoarseEnroute: {
		models.ErrWrongRunway:        medium,
		models.ErrRogerSubstitution:  high,
		models.ErrMissingDesignator:  low,
		models.ErrWrongValue:         high,
		models.ErrTransposition:      high,
		models.ErrParameterConfusion: high,
		models.ErrCriticalConfusion:  critical,
		models.ErrConditionViolated:  high,
		models.ErrConditionOmitted:   medium,
		models.ErrMissingElement:     medium,
		models.ErrIncompleteReadback: medium,
		models.ErrConstraintMissing:  medium,
		models.ErrWrongDirection:     high,
		models.ErrMissingCallsign:    low,
	},
	models.CoarseApproach: {
		models.ErrWrongRunway:        critical,
		models.ErrRogerSubstitution:  critical,
		models.ErrMissingDesignator:  high,
		models.ErrWrongValue:         critical,
		models.ErrTransposition:      critical,
		models.ErrParameterConfusion: critical,
		models.ErrCriticalConfusion:  critical,
		models.ErrConditionViolated:  critical,
		models.ErrConditionOmitted:   high,
		models.ErrMissingElement:     high,
		models.ErrIncompleteReadback: high,
		models.ErrConstraintMissing:  critical,
		models.ErrWrongDirection:     critical,
		models.ErrMissingCallsign:    low,
	},
	models.CoarseLanding: {
		models.ErrWrongRunway:        critical,
		models.ErrRogerSubstitution:  critical,
		models.ErrMissingDesignator:  critical,
		models.ErrWrongValue:         critical,
		models.ErrTransposition:      critical,
		models.ErrParameterConfusion: critical,
		models.ErrCriticalConfusion:  critical,
		models.ErrConditionViolated:  critical,
		models.ErrConditionOmitted:   critical,
		models.ErrMissingElement:     high,
		models.ErrIncompleteReadback: critical,
		models.ErrConstraintMissing:  high,
		models.ErrWrongDirection:     critical,
		models.ErrMissingCallsign:    low,
	},
}

// Lookup returns the contextual severity of an error type in phase. Types
// the table does not list keep their base severity.
func Lookup(phase models.FlightPhase, t models.ErrorType, base models.Severity) models.Severity {
	if s, ok := contextual[phase.Coarse()][t]; ok {
		return s
	}
	return base
}

// ContextualSeverity picks the most severe base error and maps it through
// the phase table. When several errors share the top base severity the one
// with the more severe contextual label wins. No errors means low.
func ContextualSeverity(phase models.FlightPhase, errs []models.ReadbackError) models.Severity {
	var top models.Severity
	for _, e := range errs {
		top = top.MoreSevere(e.Severity)
	}
	if top == "" {
		return low
	}
	var out models.Severity
	for _, e := range errs {
		if e.Severity != top {
			continue
		}
		out = out.MoreSevere(Lookup(phase, e.Type, e.Severity))
	}
	return out
}
