package subscription

// Plan is a pricing tier. Tiers are ordered: each one keeps every
// entitlement of the tiers below it.
type Plan string

const (
	PlanFree         Plan = "free"
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanBusiness     Plan = "business"
)

var planRanks = map[Plan]int{
	PlanFree:         0,
	PlanStarter:      1,
	PlanProfessional: 2,
	PlanBusiness:     3,
}

// legacyPlans maps retired tier names to their current equivalents.
// They can still appear in state persisted by old releases.
var legacyPlans = map[string]Plan{
	"premium":    PlanProfessional,
	"pro":        PlanBusiness,
	"enterprise": PlanBusiness,
}

// ParsePlan resolves a stored plan name, migrating legacy names. The
// second return value is false for names that are neither current nor
// legacy.
func ParsePlan(name string) (Plan, bool) {
	if _, ok := planRanks[Plan(name)]; ok {
		return Plan(name), true
	}
	if migrated, ok := legacyPlans[name]; ok {
		return migrated, true
	}
	return PlanFree, false
}

// Rank is the position of the plan in the tier ordering.
func (p Plan) Rank() int {
	return planRanks[p]
}

// Valid reports whether p is a current tier name.
func (p Plan) Valid() bool {
	_, ok := planRanks[p]
	return ok
}
