package export

import (
	"context"
	"testing"

	"github.com/Hafizh1187/apriory/pkg/apriori"
)

// knownResult mines the four-basket example with lift filtering disabled,
// giving {A}->{B}, {B}->{A}, {B}->{C} and {C}->{B}.
func knownResult(t *testing.T) *apriori.Result {
	t.Helper()
	raw := [][]string{{"A", "B"}, {"A", "B", "C"}, {"A"}, {"B", "C"}}
	opts := apriori.Options{MinSupport: 0.5, MinConfidence: 0.5, MinLift: 0, Workers: 1}
	res, err := apriori.Mine(context.Background(), raw, opts)
	if err != nil {
		t.Fatalf("Mine failed: %v", err)
	}
	if len(res.Rules) != 4 {
		t.Fatalf("expected 4 rules, got %v", res.Rules)
	}
	return res
}
