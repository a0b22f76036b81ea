package scenario

import (
	"math"

	"github.com/google/uuid"
)

const (
	EmployeesMin = 50
	EmployeesMax = 25000

	AgeMin = 25.0
	AgeMax = 59.5

	JoiningAgeMean   = 23.5
	JoiningAgeStdDev = 1.0

	SalaryMin = 15000
	SalaryMax = 100000

	SalaryIncreaseMin = 4
	SalaryIncreaseMax = 15

	DiscountRateMin = 6.0
	DiscountRateMax = 12.0

	AttritionMin = 1
	AttritionMax = 30

	RetirementAge = 60.0

	DurationNoiseStdDev = 0.5
	BaseMultiplierMin   = 0.45
	BaseMultiplierMax   = 0.65
	SensitivityNoise    = 0.1

	// Lakh is the currency scale Base PBO is reported in.
	Lakh = 100000
)

// Test sensitivity labels. The number is the shift in basis points.
const (
	LabelDRPlus100  = "DR +100"
	LabelDRPlus50   = "DR +50"
	LabelDRMinus100 = "DR -100"
	LabelDRMinus50  = "DR -50"
	LabelSIPlus100  = "SI +100"
	LabelSIPlus50   = "SI +50"
	LabelSIMinus100 = "SI -100"
	LabelSIMinus50  = "SI -50"
)

// Generator synthesizes quiz scenarios from a random source.
// It holds no per-scenario state; concurrent use is safe when the
// Source is.
type Generator struct {
	rand  sampler
	newID func() string
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithIDFunc replaces the scenario identifier function.
func WithIDFunc(fn func() string) GeneratorOption {
	return func(g *Generator) {
		g.newID = fn
	}
}

// NewGenerator creates a generator drawing from src
func NewGenerator(src Source, opts ...GeneratorOption) *Generator {
	g := &Generator{
		rand:  sampler{src: src},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds a new scenario. It never fails: every drawn input is
// bounded by construction.
func (g *Generator) Generate() *Scenario {
	r := g.rand

	employees := r.intBetween(EmployeesMin, EmployeesMax)
	age := roundHalfUp(r.floatBetween(AgeMin, AgeMax), 1)

	joiningAge := r.normal(JoiningAgeMean, JoiningAgeStdDev)
	pastService := roundHalfUp(clamp(age-joiningAge, 1, age-1), 1)

	salary := r.intBetween(SalaryMin, SalaryMax)
	salaryIncrease := r.intBetween(SalaryIncreaseMin, SalaryIncreaseMax)
	discountRate := roundHalfUp(r.floatBetween(DiscountRateMin, DiscountRateMax), 2)
	attrition := r.intBetween(AttritionMin, AttritionMax)

	expectedService := 1/(float64(attrition+1)/100) + r.normal(0, DurationNoiseStdDev)
	duration := roundHalfUp(math.Max(1, math.Min(RetirementAge-age, expectedService)), 2)

	horizon := math.Max(0, RetirementAge-age)
	horizonFactor := 0.0
	if horizon > 0 {
		horizonFactor = horizon / (horizon + 1)
	}

	baseMultiplier := r.floatBetween(BaseMultiplierMin, BaseMultiplierMax)
	salaryFactor := math.Pow(1+float64(salaryIncrease)/100, duration)
	discountFactor := math.Pow(1+discountRate/100, duration)

	raw := float64(salary) * pastService * float64(employees) * baseMultiplier * (salaryFactor / discountFactor)
	basePBO := roundInt(raw / Lakh)
	if basePBO < 1 {
		basePBO = 1
	}

	deltaDR := r.floatBetween(-SensitivityNoise, SensitivityNoise)
	deltaSR := r.floatBetween(-SensitivityNoise, SensitivityNoise)
	alphaSR := r.floatBetween(-SensitivityNoise, SensitivityNoise)

	pcts := sensitivityPcts{
		drPlus:  -(duration + deltaDR),
		drMinus: duration + deltaDR,
		siPlus:  duration + deltaSR + alphaSR*horizonFactor,
		siMinus: -(duration + deltaSR + alphaSR*horizonFactor),
	}

	choices := pcts.choices(basePBO)
	chosen := choices[r.intBetween(0, len(choices)-1)]

	return &Scenario{
		ID:                 g.newID(),
		Employees:          employees,
		AverageAge:         age,
		AveragePastService: pastService,
		AverageSalary:      salary,
		BasePBO:            basePBO,
		SalaryIncrease:     salaryIncrease,
		DiscountRate:       discountRate,
		Attrition:          attrition,
		Duration:           duration,
		TestSensitivity:    chosen.Label,
		CorrectPBO:         chosen.PBO,
		InternalPctChange:  chosen.PctChange,
		Sensitivities: Sensitivities{
			DRPlus100:  shifted(basePBO, pcts.drPlus, 1),
			DRMinus100: shifted(basePBO, pcts.drMinus, 1),
			SIPlus100:  shifted(basePBO, pcts.siPlus, 1),
			SIMinus100: shifted(basePBO, pcts.siMinus, 1),
		},
	}
}

// sensitivityPcts are the percentage changes in PBO for a 100 bps shift.
type sensitivityPcts struct {
	drPlus, drMinus, siPlus, siMinus float64
}

// choices lists the eight candidate test sensitivities.
// SI -50 carries the SI +50 change and value, which deployed quiz pages expect.
func (p sensitivityPcts) choices(basePBO int) []Choice {
	return []Choice{
		{LabelDRPlus100, p.drPlus, shifted(basePBO, p.drPlus, 1)},
		{LabelDRPlus50, p.drPlus, shifted(basePBO, p.drPlus, 0.5)},
		{LabelDRMinus100, p.drMinus, shifted(basePBO, p.drMinus, 1)},
		{LabelDRMinus50, p.drMinus, shifted(basePBO, p.drMinus, 0.5)},
		{LabelSIPlus100, p.siPlus, shifted(basePBO, p.siPlus, 1)},
		{LabelSIPlus50, p.siPlus, shifted(basePBO, p.siPlus, 0.5)},
		{LabelSIMinus100, p.siMinus, shifted(basePBO, p.siMinus, 1)},
		{LabelSIMinus50, p.siPlus, shifted(basePBO, p.siPlus, 0.5)},
	}
}

// shifted applies pct (scaled by fraction of a 100 bps move) to basePBO.
func shifted(basePBO int, pct, fraction float64) int {
	return roundInt(float64(basePBO) * (1 + pct*fraction/100))
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
