package dashboard

import (
	"context"

	"github.com/camaras-ia/licencias-cli/internal/model"
	"github.com/camaras-ia/licencias-cli/internal/resilience"
)

// GuardedLoader retries transient provider failures and stops calling a
// provider that keeps failing until its breaker cools down.
type GuardedLoader struct {
	next    DatasetLoader
	breaker *resilience.Breaker
	policy  resilience.Policy
}

// NewGuardedLoader wraps next. A nil breaker disables circuit breaking.
func NewGuardedLoader(next DatasetLoader, breaker *resilience.Breaker, policy resilience.Policy) *GuardedLoader {
	return &GuardedLoader{next: next, breaker: breaker, policy: policy}
}

func (g *GuardedLoader) LoadDataset(ctx context.Context) (*model.Dataset, error) {
	return resilience.Call(ctx, "load dataset", g.breaker, g.policy, g.next.LoadDataset)
}
