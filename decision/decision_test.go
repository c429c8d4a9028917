package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategicImpactRequiresMeasurables(t *testing.T) {
	cases := map[StrategicImpact]bool{
		ImpactLow:      false,
		ImpactMedium:   false,
		ImpactHigh:     true,
		ImpactCritical: true,
	}
	for impact, want := range cases {
		assert.Equal(t, want, impact.RequiresMeasurables(), "impact %s", impact)
	}
}

func TestApprovalLevelNumericRoundTrip(t *testing.T) {
	levels := []ApprovalLevel{LevelTeamLead, LevelDepartmentHead, LevelVP, LevelCLevel, LevelBoard}
	for _, l := range levels {
		n := l.Numeric()
		assert.Equal(t, l, ApprovalLevelFromNumeric(n), "round trip for %s", l)
	}
}

func TestSeverityRankOrdering(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
}
