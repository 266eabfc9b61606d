package service

import (
	"math/rand"
	"testing"

	"makan-match/internal/domain"
)

func tallyQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Answers: []domain.Answer{
			{ID: "a", Traits: traits("energyLevel", "high")},
			{ID: "b", Traits: traits("energyLevel", "low")},
		}},
		{ID: "q2", Answers: []domain.Answer{
			{ID: "a", Traits: traits("energyLevel", "high", "socialPreference", "extrovert")},
			{ID: "b", Traits: traits("energyLevel", "medium")},
		}},
		{ID: "q3", Answers: []domain.Answer{
			{ID: "a", Traits: traits("flavorProfile", "spicy")},
			{ID: "b", Traits: traits("flavorProfile", "sweet")},
		}},
	}
}

func TestTallyCountsChosenAnswers(t *testing.T) {
	responses := domain.UserResponseSet{
		"q1":    "a",
		"q2":    "a",
		"q3":    "zz",
		"ghost": "a",
	}
	tally, coverage := TallyWithCoverage(responses, tallyQuestions())

	if got := tally[domain.DimensionEnergyLevel]["high"]; got != 2 {
		t.Fatalf("expected energy high=2, got %d", got)
	}
	if got := tally[domain.DimensionSocialPreference]["extrovert"]; got != 1 {
		t.Fatalf("expected social extrovert=1, got %d", got)
	}
	for v, c := range tally[domain.DimensionFlavorProfile] {
		if c != 0 {
			t.Fatalf("expected unknown answer to be skipped, got %s=%d", v, c)
		}
	}
	if coverage[domain.DimensionEnergyLevel] != 2 {
		t.Fatalf("expected energy coverage 2, got %d", coverage[domain.DimensionEnergyLevel])
	}
	// q2 puede etiquetar social aunque solo una respuesta lo haga.
	if coverage[domain.DimensionSocialPreference] != 1 {
		t.Fatalf("expected social coverage 1, got %d", coverage[domain.DimensionSocialPreference])
	}
	if coverage[domain.DimensionFlavorProfile] != 0 {
		t.Fatalf("expected unanswered flavor question outside coverage, got %d", coverage[domain.DimensionFlavorProfile])
	}
}

func TestTallyEmptyResponses(t *testing.T) {
	tally := Tally(nil, tallyQuestions())
	if len(tally) != len(domain.AllDimensions()) {
		t.Fatalf("expected every dimension present, got %d", len(tally))
	}
	for dim, counts := range tally {
		if len(counts) != len(domain.DimensionValues(dim)) {
			t.Fatalf("expected every value of %s present, got %v", dim, counts)
		}
		for v, c := range counts {
			if c != 0 {
				t.Fatalf("expected zero counts, got %s/%s=%d", dim, v, c)
			}
		}
	}
}

func TestTallyIgnoresUntrackedTags(t *testing.T) {
	questions := []domain.Question{
		{ID: "q1", Answers: []domain.Answer{
			{ID: "a", Traits: traits("mood", "happy", "energyLevel", "ultra", "setting", "elegant")},
		}},
	}
	tally := Tally(domain.UserResponseSet{"q1": "a"}, questions)
	if _, ok := tally["mood"]; ok {
		t.Fatalf("expected untracked dimension to be ignored")
	}
	if _, ok := tally[domain.DimensionEnergyLevel]["ultra"]; ok {
		t.Fatalf("expected invalid value to be ignored")
	}
	if tally[domain.DimensionSetting]["elegant"] != 1 {
		t.Fatalf("expected valid tag counted, got %v", tally[domain.DimensionSetting])
	}
}

func TestReduceProfileDefaultsAndTies(t *testing.T) {
	empty := ReduceProfile(Tally(nil, nil))
	for _, dim := range domain.AllDimensions() {
		if empty[dim] != domain.DefaultValue(dim) {
			t.Fatalf("expected default %q for %s, got %q", domain.DefaultValue(dim), dim, empty[dim])
		}
	}

	tally := Tally(nil, nil)
	tally[domain.DimensionEnergyLevel]["low"] = 1
	tally[domain.DimensionEnergyLevel]["medium"] = 1
	tally[domain.DimensionFlavorProfile]["balanced"] = 3
	tally[domain.DimensionFlavorProfile]["sweet"] = 2
	profile := ReduceProfile(tally)

	if profile[domain.DimensionEnergyLevel] != "medium" {
		t.Fatalf("expected tie to keep canonical order (medium), got %q", profile[domain.DimensionEnergyLevel])
	}
	if profile[domain.DimensionFlavorProfile] != "balanced" {
		t.Fatalf("expected balanced to win, got %q", profile[domain.DimensionFlavorProfile])
	}
}

func TestComputeProfileAlwaysValid(t *testing.T) {
	c := defaultCatalog(t)
	questions := c.Questions()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		responses := domain.UserResponseSet{}
		for _, q := range questions {
			// A veces se deja la pregunta sin responder.
			if rng.Intn(5) == 0 {
				continue
			}
			responses[q.ID] = q.Answers[rng.Intn(len(q.Answers))].ID
		}
		profile := ComputeProfile(responses, questions)
		if len(profile) != len(domain.AllDimensions()) {
			t.Fatalf("expected full profile, got %v", profile)
		}
		for dim, v := range profile {
			if !domain.IsValidValue(dim, v) {
				t.Fatalf("invalid value %q for %s", v, dim)
			}
		}
	}
}
