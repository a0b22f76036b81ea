package scenario

// Scenario is a single randomly generated quiz case.
// JSON names follow the wire format the quiz page reads.
type Scenario struct {
	ID                 string  `json:"scenario_id"`
	Employees          int     `json:"Employees"`
	AverageAge         float64 `json:"Average Age"`
	AveragePastService float64 `json:"Average Past Service"`
	AverageSalary      int     `json:"Average Salary"`
	BasePBO            int     `json:"Base PBO"`
	SalaryIncrease     int     `json:"Salary Increase (%)"`
	DiscountRate       float64 `json:"Discount Rate (%)"`
	Attrition          int     `json:"Attrition (%)"`
	Duration           float64 `json:"Duration"`

	TestSensitivity   string        `json:"Test Sensitivity"`
	CorrectPBO        int           `json:"Correct PBO Under Sensitivity"`
	InternalPctChange float64       `json:"Internal % Change"`
	Sensitivities     Sensitivities `json:"Internal Sensitivities"`
}

// Sensitivities holds the liability under each 100 bps shift.
type Sensitivities struct {
	DRPlus100  int `json:"PBO @ DR +100"`
	DRMinus100 int `json:"PBO @ DR -100"`
	SIPlus100  int `json:"PBO @ SI +100"`
	SIMinus100 int `json:"PBO @ SI -100"`
}

// PublicScenario is what the guesser receives. It omits the answer key.
type PublicScenario struct {
	ID                 string  `json:"scenario_id"`
	Employees          int     `json:"Employees"`
	AverageAge         float64 `json:"Average Age"`
	AveragePastService float64 `json:"Average Past Service"`
	AverageSalary      int     `json:"Average Salary"`
	BasePBO            int     `json:"Base PBO"`
	SalaryIncrease     int     `json:"Salary Increase (%)"`
	DiscountRate       float64 `json:"Discount Rate (%)"`
	Attrition          int     `json:"Attrition (%)"`
	Duration           float64 `json:"Duration"`

	TestSensitivity   string        `json:"Test Sensitivity"`
	InternalPctChange float64       `json:"Internal % Change"`
	Sensitivities     Sensitivities `json:"Internal Sensitivities"`
}

// Public strips the correct liability value from s.
func (s *Scenario) Public() PublicScenario {
	return PublicScenario{
		ID:                 s.ID,
		Employees:          s.Employees,
		AverageAge:         s.AverageAge,
		AveragePastService: s.AveragePastService,
		AverageSalary:      s.AverageSalary,
		BasePBO:            s.BasePBO,
		SalaryIncrease:     s.SalaryIncrease,
		DiscountRate:       s.DiscountRate,
		Attrition:          s.Attrition,
		Duration:           s.Duration,
		TestSensitivity:    s.TestSensitivity,
		InternalPctChange:  s.InternalPctChange,
		Sensitivities:      s.Sensitivities,
	}
}

// Choice is one of the eight sensitivities a quiz can ask about.
type Choice struct {
	Label     string
	PctChange float64
	PBO       int
}

// Classification is the outcome of a guess.
type Classification string

const (
	Correct   Classification = "Correct"
	Incorrect Classification = "Incorrect"
)

// ValidationResult contains the outcome of checking a guess
type ValidationResult struct {
	Result               Classification `json:"result"`
	CorrectPBO           int            `json:"correct_pbo"`
	PercentageDifference float64        `json:"percentage_difference"`
}
