package protocol

// Protocol API keys.
const (
	SimulatePipelineKey = 0
	APIVersionsKey      = 1
)
