package plan

import (
	"strings"

	"go.uber.org/fx"
)

// Tier identifies a subscription plan.
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierGrowth  Tier = "growth"
	TierScale   Tier = "scale"
)

// Limits are the numeric quotas attached to a plan.
type Limits struct {
	MaxCatalogItems         int `json:"max_catalog_items"`
	MonthlyVisibilityChecks int `json:"monthly_visibility_checks"`
}

// Service resolves a tier to its quotas.
type Service interface {
	LimitsFor(tier Tier) Limits
}

var limitsByTier = map[Tier]Limits{
	TierFree:    {MaxCatalogItems: 25, MonthlyVisibilityChecks: 5},
	TierStarter: {MaxCatalogItems: 100, MonthlyVisibilityChecks: 30},
	TierGrowth:  {MaxCatalogItems: 500, MonthlyVisibilityChecks: 100},
	TierScale:   {MaxCatalogItems: 2000, MonthlyVisibilityChecks: 300},
}

type service struct{}

func New() Service {
	return service{}
}

// LimitsFor returns the quotas for a tier. Unknown tiers fall back to free.
func (service) LimitsFor(tier Tier) Limits {
	normalized := Tier(strings.ToLower(strings.TrimSpace(string(tier))))
	if limits, ok := limitsByTier[normalized]; ok {
		return limits
	}
	return limitsByTier[TierFree]
}

var Module = fx.Module("plan.service",
	fx.Provide(New),
)
