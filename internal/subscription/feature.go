package subscription

// Feature is a gated capability. The set is closed: the gate denies
// anything not listed in the entitlement table, so a misspelled name
// can never silently grant access.
type Feature string

const (
	FeatureUnlimitedGenerations Feature = "unlimitedGenerations"
	FeatureNoWatermark          Feature = "noWatermark"
	FeatureAllThemes            Feature = "allThemes"
	FeatureSaveMenus            Feature = "saveMenus"
	FeatureBeveragePairings     Feature = "beveragePairings"
	FeatureRecommendedEquipment Feature = "recommendedEquipment"
	FeatureAIChatBot            Feature = "aiChatBot"
	FeatureShareableLinks       Feature = "shareableLinks"
	FeatureFindSuppliers        Feature = "findSuppliers"
	FeatureBulkEdit             Feature = "bulkEdit"
	FeatureItemEditing          Feature = "itemEditing"
	FeatureCustomItemGeneration Feature = "customItemGeneration"
)

// minTier is the entitlement table: the lowest plan that unlocks each
// feature.
var minTier = map[Feature]Plan{
	FeatureUnlimitedGenerations: PlanStarter,
	FeatureNoWatermark:          PlanStarter,

	FeatureAllThemes:            PlanProfessional,
	FeatureSaveMenus:            PlanProfessional,
	FeatureBeveragePairings:     PlanProfessional,
	FeatureRecommendedEquipment: PlanProfessional,
	FeatureAIChatBot:            PlanProfessional,

	FeatureShareableLinks:       PlanBusiness,
	FeatureFindSuppliers:        PlanBusiness,
	FeatureBulkEdit:             PlanBusiness,
	FeatureItemEditing:          PlanBusiness,
	FeatureCustomItemGeneration: PlanBusiness,
}

// CanAccess reports whether the plan unlocks the feature. Unknown
// features are always denied.
func (p Plan) CanAccess(f Feature) bool {
	tier, ok := minTier[f]
	if !ok {
		return false
	}
	return p.Rank() >= tier.Rank()
}
