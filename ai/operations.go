package ai

// Operation identifies a distinct AI workload. Each operation can be
// assigned its own model and system prompt, overridable per project
// and per user.
type Operation string

const (
	OperationAnalysis   Operation = "analysis"
	OperationStructure  Operation = "structure"
	OperationExtraction Operation = "extraction"
	OperationDrafting   Operation = "drafting"
	OperationFeedback   Operation = "feedback"
	OperationCompliance Operation = "compliance"
	OperationChat       Operation = "chat"
	OperationEmbedding  Operation = "embedding"
)

// Operations lists every defined operation, in pipeline order.
var Operations = []Operation{
	OperationAnalysis,
	OperationStructure,
	OperationExtraction,
	OperationDrafting,
	OperationFeedback,
	OperationCompliance,
	OperationChat,
	OperationEmbedding,
}
