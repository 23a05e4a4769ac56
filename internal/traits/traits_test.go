package traits

import (
	"testing"

	"github.com/historica/chronicle/internal/world"
)

func TestForUnknownTraitIsNeutral(t *testing.T) {
	e := For(world.Trait("nonexistent"))
	if e != neutral {
		t.Fatalf("expected neutral effect for unknown trait, got %+v", e)
	}
}

func TestCombineMultipliesWeights(t *testing.T) {
	single := For(world.TraitAmbitious)
	combined := Combine([]world.Trait{world.TraitAmbitious, world.TraitAmbitious})
	want := single.AmbitionWeight * single.AmbitionWeight
	if combined.AmbitionWeight != want {
		t.Fatalf("expected %v, got %v", want, combined.AmbitionWeight)
	}
}

func TestCombineEmptyIsNeutral(t *testing.T) {
	if Combine(nil) != neutral {
		t.Fatalf("expected neutral for empty trait list")
	}
}
