package services

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/links"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

func TestNewSelector(t *testing.T) {
	t.Parallel()
	var _ Selector = NewSelector() //nolint:staticcheck // explicit interface compliance check
}

func TestDraw_EmptyPool(t *testing.T) {
	t.Parallel()
	_, err := NewSelector().Draw(models.NewSelectionPool(nil), nil, links.PosterCard)
	if !errors.Is(err, apperrors.ErrEmptyPool) {
		t.Errorf("err = %v, want ErrEmptyPool", err)
	}
}

func TestDraw_IndexAlwaysInRange(t *testing.T) {
	t.Parallel()
	selector := NewSelector()
	for n := 1; n <= 20; n++ {
		pool := models.NewSelectionPool(makeItems(1, n))
		for i := 0; i < 50; i++ {
			pick, err := selector.Draw(pool, nil, links.PosterStrip)
			if err != nil {
				t.Fatalf("Draw failed: %v", err)
			}
			if pick.PoolIndex < 0 || pick.PoolIndex >= n {
				t.Fatalf("PoolIndex %d out of range for pool of %d", pick.PoolIndex, n)
			}
			if pick.Item.ID != pool.At(pick.PoolIndex).ID {
				t.Fatalf("Pick item %q does not match pool index %d", pick.Item.ID, pick.PoolIndex)
			}
		}
	}
}

// TestDraw_Uniform runs a chi-squared goodness-of-fit test on a seeded source.
func TestDraw_Uniform(t *testing.T) {
	t.Parallel()
	const (
		n      = 5
		trials = 50000
		// chi-squared critical value for 4 degrees of freedom at p = 0.001
		critical = 18.467
	)

	selector := NewSelectorWithRand(rand.New(rand.NewPCG(42, 1337)))
	pool := models.NewSelectionPool(makeItems(1, n))

	counts := make([]int, n)
	for i := 0; i < trials; i++ {
		pick, err := selector.Draw(pool, nil, links.PosterStrip)
		if err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
		counts[pick.PoolIndex]++
	}

	expected := float64(trials) / n
	var chi2 float64
	for _, c := range counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	if chi2 > critical {
		t.Errorf("draws are not uniform: chi2 = %.2f > %.2f, counts = %v", chi2, critical, counts)
	}
}

func TestDraw_DerivesLinks(t *testing.T) {
	t.Parallel()
	builder, err := links.NewBuilder(models.Credentials{ServerAddress: "plex.local", AuthToken: "t"}, &models.ServerIdentity{MachineIdentifier: "m"})
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}
	pool := models.NewSelectionPool([]models.CatalogItem{{ID: "7", Key: "/library/metadata/7", PosterSourcePath: "/t/7"}})

	pick, err := NewSelector().Draw(pool, builder, links.PosterCard)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if pick.DirectPlayURL != "http://plex.local:32400/library/metadata/7" {
		t.Errorf("DirectPlayURL = %q", pick.DirectPlayURL)
	}
	if !pick.HasPoster() {
		t.Error("Expected a poster URL")
	}
}

type brokenRand struct{}

func (brokenRand) IntN(n int) int { return n }

func TestDraw_RejectsOutOfRangeSource(t *testing.T) {
	t.Parallel()
	_, err := NewSelectorWithRand(brokenRand{}).Draw(models.NewSelectionPool(makeItems(1, 3)), nil, links.PosterCard)
	if err == nil {
		t.Error("Expected an error for an out-of-range random source")
	}
}
