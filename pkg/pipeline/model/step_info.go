package model

type StepType string

const (
	InputStepType     StepType = "input"
	TransformStepType StepType = "transform"
	OutputStepType    StepType = "output"
)

// Keys is the data contract of a step.
type Keys struct {
	// Reads must be present before the step runs.
	Reads []string
	// Optional are read when present.
	Optional []string
	// Writes must be present once the step returns.
	Writes []string
}

type StepInfo struct {
	Type  StepType
	Name  string
	Keys  Keys
	Index int
}

var (
	StartStep = &StepInfo{Type: InputStepType, Name: "start", Index: -1}
	EndStep   = &StepInfo{Type: OutputStepType, Name: "end", Index: -1}
)

// Link is a key flowing from the step that last wrote it to a step that reads it.
// Keys provided by the pipeline input come from StartStep.
type Link struct {
	From string
	To   string
	Key  string
}
