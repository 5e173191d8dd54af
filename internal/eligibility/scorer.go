package eligibility

import (
	"fmt"
	"math"

	"github.com/stemsi/admissions-backend/internal/model"
)

// Weights is the share of 100 each dimension can contribute.
type Weights struct {
	Education  int
	Skills     int
	Experience int
}

// DefaultWeights splits the score 30/40/30 between education, skills and experience.
var DefaultWeights = Weights{Education: 30, Skills: 40, Experience: 30}

// Validate requires non-negative weights summing to 100.
func (w Weights) Validate() error {
	if w.Education < 0 || w.Skills < 0 || w.Experience < 0 {
		return fmt.Errorf("match weights must not be negative: %+v", w)
	}
	if sum := w.Education + w.Skills + w.Experience; sum != 100 {
		return fmt.Errorf("match weights must sum to 100, got %d", sum)
	}
	return nil
}

// Scorer computes job match scores. It is stateless apart from its weights and safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer returns a Scorer after validating the weights.
func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

// Weights returns the configured weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score rates how well the student fits the job on a 0..100 scale.
// Each dimension is clamped to its weight before summing.
func (s *Scorer) Score(student *model.StudentRecord, req model.JobRequirement) model.MatchResult {
	b := model.MatchBreakdown{
		Education:  portion(s.weights.Education, educationRatio(student.EducationLevel, req.RequiredEducation)),
		Skills:     portion(s.weights.Skills, skillsRatio(student.Skills, req.RequiredSkills)),
		Experience: portion(s.weights.Experience, experienceRatio(student.WorkExperienceYears, req.RequiredExperienceYears)),
	}
	return model.MatchResult{
		Score:     b.Education + b.Skills + b.Experience,
		Breakdown: b,
	}
}

func educationRatio(have, want model.EducationLevel) float64 {
	if want.Rank() == 0 {
		return 1
	}
	if have.Rank() >= want.Rank() {
		return 1
	}
	return float64(have.Rank()) / float64(want.Rank())
}

func skillsRatio(have, want []string) float64 {
	required := keySet(want)
	if len(required) == 0 {
		return 1
	}
	owned := keySet(have)
	matched := 0
	for k := range required {
		if _, ok := owned[k]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

func experienceRatio(have, want float64) float64 {
	if want <= 0 {
		return 1
	}
	return math.Min(math.Max(have, 0)/want, 1)
}

// portion scales weight by ratio, rounds, and clamps to [0, weight].
func portion(weight int, ratio float64) int {
	v := int(math.Round(float64(weight) * ratio))
	if v < 0 {
		return 0
	}
	if v > weight {
		return weight
	}
	return v
}
