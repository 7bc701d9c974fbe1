package zones

import (
	"log/slog"

	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/simrand"
)

// EmigrationInterval is how often (in ticks) emigration is evaluated.
const EmigrationInterval = 30

// EmigrationHappinessCeiling is the happiness level below which a citizen
// becomes an emigration candidate.
const EmigrationHappinessCeiling = 20.0

// MaxAge is the hard cap past which a citizen always dies.
const MaxAge = 100

// OldAgeMortalityOnset is the age past which death probability begins to
// rise.
const OldAgeMortalityOnset = 70

// Attractiveness bundles the inputs the immigration score is a function of.
type Attractiveness struct {
	EmploymentRate float64 // 0..1
	AvgHappiness   float64 // 0..100
	ServiceCoverage float64 // 0..1
	HousingVacancy float64 // 0..1
	TaxRate        float64 // 0..1, higher tax reduces attractiveness
}

// Score combines the attractiveness inputs into a single [0,1] immigration
// pull factor.
func (a Attractiveness) Score() float64 {
	s := a.EmploymentRate*0.3 + (a.AvgHappiness/100)*0.3 + a.ServiceCoverage*0.2 + a.HousingVacancy*0.2 - a.TaxRate*0.15
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// ImmigrationRate returns the expected number of new citizens this slow
// tick, proportional to attractiveness and available housing vacancy.
func ImmigrationRate(a Attractiveness, vacantHousing uint16) float64 {
	if vacantHousing == 0 {
		return 0
	}
	return a.Score() * float64(vacantHousing) * 0.05
}

// EmigrationProbability returns the chance an unhappy citizen emigrates this
// evaluation, linear in how far below the ceiling their happiness sits.
func EmigrationProbability(happiness float64) float64 {
	if happiness >= EmigrationHappinessCeiling {
		return 0
	}
	return (EmigrationHappinessCeiling - happiness) / 100
}

// EvaluateEmigration walks every citizen in handle order and removes those
// whose deterministic roll succeeds, freeing their home's occupancy.
func EvaluateEmigration(store *entities.Store, rng *simrand.Source, tick uint64) int {
	emigrated := 0
	for _, h := range store.SortedCitizenHandles() {
		c, _ := store.Citizen(h)
		p := EmigrationProbability(c.Details.Happiness)
		if p <= 0 {
			continue
		}
		roll := rng.Float(tick, simrand.SubsystemLifecycle, uint64(h))
		if roll < p {
			releaseFamily(store, h, c)
			vacateHome(store, c)
			store.RemoveCitizen(h)
			emigrated++
		}
	}
	return emigrated
}

func vacateHome(store *entities.Store, c *entities.Citizen) {
	if b, ok := store.Building(c.Home.Building); ok && b.Occupants > 0 {
		b.Occupants--
	}
}

// releaseFamily clears the dangling side of any reciprocal family
// reference when a citizen leaves the simulation.
func releaseFamily(store *entities.Store, h entities.CitizenHandle, c *entities.Citizen) {
	if c.Family.HasPartner() {
		if partner, ok := store.Citizen(c.Family.Partner); ok && partner.Family.Partner == h {
			partner.Family.Partner = 0
		}
	}
}

// AgeOneYear advances age for every living citizen by one year. Called once
// per 365 game-days.
func AgeOneYear(store *entities.Store) {
	for _, h := range store.SortedCitizenHandles() {
		c, _ := store.Citizen(h)
		c.Details.Age++
	}
}

// DeathProbability returns the death probability for one EvaluateDeaths
// pass from age and health:
// zero below the old-age onset and at good health, rising steeply past it,
// certain at MaxAge.
func DeathProbability(age uint16, health float64) float64 {
	if age >= MaxAge {
		return 1
	}
	p := 0.0
	if age > OldAgeMortalityOnset {
		p += float64(age-OldAgeMortalityOnset) * 0.0015
	}
	if health < 0.15 {
		p += (0.15 - health) * 0.5
	}
	if p > 1 {
		p = 1
	}
	return p
}

// EvaluateDeaths removes citizens whose deterministic roll for this pass
// falls under their death probability. The engine runs it every slow tick.
func EvaluateDeaths(store *entities.Store, rng *simrand.Source, tick uint64) int {
	died := 0
	for _, h := range store.SortedCitizenHandles() {
		c, _ := store.Citizen(h)
		p := DeathProbability(c.Details.Age, c.Details.Health)
		if p <= 0 {
			continue
		}
		roll := rng.Float(tick, simrand.SubsystemLifecycle, uint64(h)+1)
		if roll < p {
			releaseFamily(store, h, c)
			vacateHome(store, c)
			store.RemoveCitizen(h)
			died++
		}
	}
	return died
}

// Marry establishes a reciprocal partner link between two citizens,
// overwriting any prior partner link on either side.
func Marry(store *entities.Store, a, b entities.CitizenHandle) {
	ca, okA := store.Citizen(a)
	cb, okB := store.Citizen(b)
	if !okA || !okB {
		return
	}
	ca.Family.Partner = b
	cb.Family.Partner = a
}

// CheckReciprocity scans the family graph for broken reciprocal partner
// links (A.Partner == B but B.Partner != A) and self-heals them by clearing
// the dangling side, logging the repair. The spec's reciprocity invariant
// is a debug assertion in development and silent self-heal in release.
func CheckReciprocity(store *entities.Store) int {
	repaired := 0
	for _, h := range store.SortedCitizenHandles() {
		c, _ := store.Citizen(h)
		if !c.Family.HasPartner() {
			continue
		}
		partner, ok := store.Citizen(c.Family.Partner)
		if !ok || partner.Family.Partner != h {
			slog.Warn("family reciprocity violation repaired", "citizen", h, "partner", c.Family.Partner)
			c.Family.Partner = 0
			repaired++
		}
	}
	return repaired
}
