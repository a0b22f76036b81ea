package scenario

import (
	"math"
	"sync"
	"testing"
)

// sequenceSource replays fixed draws. Once exhausted it keeps returning 0.5.
type sequenceSource struct {
	values []float64
	calls  int
}

func (s *sequenceSource) Float64() float64 {
	s.calls++
	if s.calls > len(s.values) {
		return 0.5
	}
	return s.values[s.calls-1]
}

func fixedID() string { return "scenario-1" }

// midpointDraws puts every uniform draw at the middle of its range, zeroes
// both normal draws (u == 1), and selects the test sensitivity by the
// final draw.
func midpointDraws(choice float64) []float64 {
	return []float64{
		0.5,      // employees
		0.5,      // average age
		1, 0.5,   // joining age (u, v)
		0.5,      // salary
		0.5,      // salary increase
		0.5,      // discount rate
		0.5,      // attrition
		1, 0.5,   // duration noise (u, v)
		0.5,      // base multiplier
		0.5,      // delta_dr
		0.75,     // delta_sr
		0.25,     // alpha_sr
		choice,   // test sensitivity
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGenerateDeterministicInputs(t *testing.T) {
	src := &sequenceSource{values: midpointDraws(0.0)}
	s := NewGenerator(src, WithIDFunc(fixedID)).Generate()

	if src.calls != 15 {
		t.Errorf("Generate() consumed %d draws, want 15", src.calls)
	}
	if s.ID != "scenario-1" {
		t.Errorf("ID = %q, want scenario-1", s.ID)
	}
	if s.Employees != 12525 {
		t.Errorf("Employees = %d, want 12525", s.Employees)
	}
	if !approxEqual(s.AverageAge, 42.3) {
		t.Errorf("AverageAge = %v, want 42.3", s.AverageAge)
	}
	if !approxEqual(s.AveragePastService, 18.8) {
		t.Errorf("AveragePastService = %v, want 18.8", s.AveragePastService)
	}
	if s.AverageSalary != 57500 {
		t.Errorf("AverageSalary = %d, want 57500", s.AverageSalary)
	}
	if s.SalaryIncrease != 10 {
		t.Errorf("SalaryIncrease = %d, want 10", s.SalaryIncrease)
	}
	if !approxEqual(s.DiscountRate, 9.0) {
		t.Errorf("DiscountRate = %v, want 9", s.DiscountRate)
	}
	if s.Attrition != 16 {
		t.Errorf("Attrition = %d, want 16", s.Attrition)
	}
	if !approxEqual(s.Duration, 5.88) {
		t.Errorf("Duration = %v, want 5.88", s.Duration)
	}
	if s.BasePBO != 78576 {
		t.Errorf("BasePBO = %d, want 78576", s.BasePBO)
	}

	want := Sensitivities{DRPlus100: 73956, DRMinus100: 83196, SIPlus100: 83198, SIMinus100: 73954}
	if s.Sensitivities != want {
		t.Errorf("Sensitivities = %+v, want %+v", s.Sensitivities, want)
	}

	if s.TestSensitivity != LabelDRPlus100 {
		t.Errorf("TestSensitivity = %q, want %q", s.TestSensitivity, LabelDRPlus100)
	}
	if !approxEqual(s.InternalPctChange, -5.88) {
		t.Errorf("InternalPctChange = %v, want -5.88", s.InternalPctChange)
	}
	if s.CorrectPBO != 73956 {
		t.Errorf("CorrectPBO = %d, want 73956", s.CorrectPBO)
	}
}

func TestGenerateSIMinus50ReusesSIPlus50(t *testing.T) {
	s := NewGenerator(&sequenceSource{values: midpointDraws(0.9)}, WithIDFunc(fixedID)).Generate()

	if s.TestSensitivity != LabelSIMinus50 {
		t.Fatalf("TestSensitivity = %q, want %q", s.TestSensitivity, LabelSIMinus50)
	}
	if !approxEqual(s.InternalPctChange, 5.882673796791444) {
		t.Errorf("InternalPctChange = %v, want SI +100 change 5.882673796791444", s.InternalPctChange)
	}
	if s.CorrectPBO != 80887 {
		t.Errorf("CorrectPBO = %d, want SI +50 value 80887", s.CorrectPBO)
	}
}

func TestGenerateClampsAtBounds(t *testing.T) {
	draws := []float64{
		0.0,              // employees: minimum
		0.99999,          // average age: rounds to 59.5
		0.0, 1e-300, 0.5, // joining age: zero skipped, extreme negative tail
		0.0,              // salary
		0.0,              // salary increase
		0.0,              // discount rate
		0.0,              // attrition
		1, 0.5,           // duration noise zero
		0.0,              // base multiplier
		0.0, 0.0, 0.0,    // noise terms at -0.1
		0.3,              // DR -100
	}
	src := &sequenceSource{values: draws}
	s := NewGenerator(src, WithIDFunc(fixedID)).Generate()

	if src.calls != len(draws) {
		t.Errorf("Generate() consumed %d draws, want %d", src.calls, len(draws))
	}
	if s.Employees != EmployeesMin {
		t.Errorf("Employees = %d, want %d", s.Employees, EmployeesMin)
	}
	if !approxEqual(s.AverageAge, 59.5) {
		t.Errorf("AverageAge = %v, want 59.5", s.AverageAge)
	}
	if !approxEqual(s.AveragePastService, 58.5) {
		t.Errorf("AveragePastService = %v, want clamp to age-1 = 58.5", s.AveragePastService)
	}
	if !approxEqual(s.Duration, 1) {
		t.Errorf("Duration = %v, want floor of 1", s.Duration)
	}
	if s.BasePBO != 194 {
		t.Errorf("BasePBO = %d, want 194", s.BasePBO)
	}
	if s.TestSensitivity != LabelDRMinus100 {
		t.Errorf("TestSensitivity = %q, want %q", s.TestSensitivity, LabelDRMinus100)
	}
	if !approxEqual(s.InternalPctChange, 0.9) {
		t.Errorf("InternalPctChange = %v, want 0.9", s.InternalPctChange)
	}
	if s.CorrectPBO != 196 {
		t.Errorf("CorrectPBO = %d, want 196", s.CorrectPBO)
	}
}

func TestChoicesOrderAndFractions(t *testing.T) {
	p := sensitivityPcts{drPlus: -10, drMinus: 10, siPlus: 8, siMinus: -8}
	got := p.choices(1000)

	want := []Choice{
		{LabelDRPlus100, -10, 900},
		{LabelDRPlus50, -10, 950},
		{LabelDRMinus100, 10, 1100},
		{LabelDRMinus50, 10, 1050},
		{LabelSIPlus100, 8, 1080},
		{LabelSIPlus50, 8, 1040},
		{LabelSIMinus100, -8, 920},
		{LabelSIMinus50, 8, 1040},
	}
	if len(got) != len(want) {
		t.Fatalf("choices() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("choices()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGenerateInvariants(t *testing.T) {
	g := NewGenerator(NewSource(42))

	for i := 0; i < 5000; i++ {
		s := g.Generate()

		if s.Employees < EmployeesMin || s.Employees > EmployeesMax {
			t.Fatalf("Employees %d out of range", s.Employees)
		}
		if s.AverageAge < AgeMin || s.AverageAge > AgeMax {
			t.Fatalf("AverageAge %v out of range", s.AverageAge)
		}
		if s.AveragePastService < 1 || s.AveragePastService > s.AverageAge-1+1e-9 {
			t.Fatalf("AveragePastService %v outside [1, %v]", s.AveragePastService, s.AverageAge-1)
		}
		if s.Duration < 1 {
			t.Fatalf("Duration %v below 1", s.Duration)
		}
		if s.Duration > 1 && s.Duration > RetirementAge-s.AverageAge+0.005 {
			t.Fatalf("Duration %v exceeds time to retirement %v", s.Duration, RetirementAge-s.AverageAge)
		}
		if s.SalaryIncrease < SalaryIncreaseMin || s.SalaryIncrease > SalaryIncreaseMax {
			t.Fatalf("SalaryIncrease %d out of range", s.SalaryIncrease)
		}
		if s.DiscountRate < DiscountRateMin || s.DiscountRate > DiscountRateMax {
			t.Fatalf("DiscountRate %v out of range", s.DiscountRate)
		}
		if s.Attrition < AttritionMin || s.Attrition > AttritionMax {
			t.Fatalf("Attrition %d out of range", s.Attrition)
		}
		if s.BasePBO <= 0 {
			t.Fatalf("BasePBO %d not positive", s.BasePBO)
		}
		if s.ID == "" {
			t.Fatal("ID is empty")
		}

		// The answer key must be re-derivable from what the guesser receives.
		if shifted(s.BasePBO, s.InternalPctChange, 1) == 0 {
			t.Fatalf("derived PBO is zero for %+v", s)
		}
	}
}

func TestGenerateUniqueIDs(t *testing.T) {
	g := NewGenerator(NewSource(7))
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Generate().ID
		if seen[id] {
			t.Fatalf("duplicate scenario ID %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateConcurrent(t *testing.T) {
	g := NewGenerator(NewSource(99))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if s := g.Generate(); s.BasePBO <= 0 {
					t.Errorf("BasePBO %d not positive", s.BasePBO)
				}
			}
		}()
	}
	wg.Wait()
}

func TestPublicOmitsAnswerKey(t *testing.T) {
	s := NewGenerator(&sequenceSource{values: midpointDraws(0.0)}, WithIDFunc(fixedID)).Generate()
	p := s.Public()

	if p.ID != s.ID || p.BasePBO != s.BasePBO || p.InternalPctChange != s.InternalPctChange {
		t.Errorf("Public() = %+v does not carry the validation inputs of %+v", p, s)
	}
	if p.TestSensitivity != s.TestSensitivity || p.Sensitivities != s.Sensitivities {
		t.Errorf("Public() dropped display fields: %+v", p)
	}
}
