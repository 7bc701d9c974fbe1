package needs

import "github.com/talgya/citycore/internal/entities"

// HappinessInputs collects every factor the happiness formula reads for one
// citizen, computed upstream by the systems that own each concern (traffic,
// propagators, coverage, economy) so this package stays a pure aggregator.
type HappinessInputs struct {
	UtilityCoverage float64 // 0..1, fraction of (power,water) satisfied
	ServiceCoverage float64 // 0..1, average across fire/police/health/education/parks
	HomeCongestion  float64 // 0..1 V/C near home
	WorkCongestion  float64 // 0..1 V/C near work
	Pollution       float64 // 0..1 normalised
	Noise           float64 // 0..1 normalised
	DensityFit      float64 // -1..1, negative = overcrowded for wealth tier
	CommuteLength   float64 // 0..1 normalised path length
	NIMBYOpposition float64 // 0..1
}

// weights are applied to each [-1,1]-normalised factor below; magnitudes are
// tuned so the combination spans roughly [0,100] before clamping.
const (
	wUtility   = 20.0
	wService   = 20.0
	wCongest   = -12.0
	wPollution = -10.0
	wNoise     = -8.0
	wDensity   = 10.0
	wNeeds     = 15.0
	wHealth    = 10.0
	wCommute   = -10.0
	wNIMBY     = -8.0
	baseline   = 50.0
)

// healthBonusPenalty caps the health contribution asymmetrically: penalty
// for poor health is capped at 20, bonus for great health capped at 8.
func healthBonusPenalty(health float64) float64 {
	delta := (health - 0.7) * wHealth
	if delta < -20 {
		return -20
	}
	if delta > 8 {
		return 8
	}
	return delta
}

// Compute derives a citizen's happiness score in [0,100] from its needs,
// health, and the supplied environmental inputs. Runs on the
// config.HappinessInterval cadence.
func Compute(c *entities.Citizen, in HappinessInputs) float64 {
	score := baseline
	score += in.UtilityCoverage * wUtility
	score += in.ServiceCoverage * wService
	score += (in.HomeCongestion + in.WorkCongestion) / 2 * wCongest
	score += in.Pollution * wPollution
	score += in.Noise * wNoise
	score += in.DensityFit * wDensity
	score += (c.Needs.Average()/100 - 0.5) * 2 * wNeeds
	score += healthBonusPenalty(c.Details.Health)
	score += in.CommuteLength * wCommute
	score += in.NIMBYOpposition * wNIMBY

	return clamp(score)
}
