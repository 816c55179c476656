package protocol

// Supported versions.

const (
	SimulatePipelineMaxVersion = 1
	SimulatePipelineMinVersion = 0

	// SimulatePipelineContentTypeVersion is the first version that tags the
	// source with its content type and sends verbose with a presence byte.
	// Older peers only ever send JSON.
	SimulatePipelineContentTypeVersion = 1

	APIVersionsMaxVersion = 0
	APIVersionsMinVersion = 0
)
