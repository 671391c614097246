package model

// SimulationRequest is the body of POST /api/simulate
type SimulationRequest struct {
	Question string `json:"question"`
}

// FixRequest is the body of POST /api/fix-p5js: a script plus the runtime
// error the browser reported while executing it.
type FixRequest struct {
	Code     string `json:"code"`
	Error    string `json:"error"`
	CodeType string `json:"code_type"`
}

// FixResponse carries the repaired script back to the client
type FixResponse struct {
	P5JSCode string `json:"p5js_code"`
}

// Parameter is one named input quantity of the physics problem
type Parameter struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Symbol string  `json:"symbol"`
}

// Equation is one governing equation with a human-readable label
type Equation struct {
	Label   string `json:"label"`
	Formula string `json:"formula"`
}

// ExplanationStep is one numbered step of the worked solution
type ExplanationStep struct {
	Step int    `json:"step"`
	Text string `json:"text"`
}

// KeyResult is one named output quantity of the solution
type KeyResult struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// SimulationResult is the structured physics answer extracted from the model
// output. All seven fields are required; extraction fails rather than
// defaulting any of them. The two script fields seed the render loop and the
// browser visualization respectively.
type SimulationResult struct {
	ProblemType string               `json:"problem_type"`
	Parameters  map[string]Parameter `json:"parameters"`
	Equations   []Equation           `json:"equations"`
	Explanation []ExplanationStep    `json:"explanation"`
	KeyResults  map[string]KeyResult `json:"key_results"`
	P5JSCode    string               `json:"p5js_code"`
	ManimCode   string               `json:"manim_code"`
}

// RequiredResultFields lists the top-level JSON fields a model response must
// contain for a SimulationResult to be accepted.
var RequiredResultFields = []string{
	"problem_type",
	"parameters",
	"equations",
	"explanation",
	"key_results",
	"p5js_code",
	"manim_code",
}

// SimulationResponse is the body of a successful POST /api/simulate
type SimulationResponse struct {
	SimulationResult
	JobID string `json:"job_id"`
}
