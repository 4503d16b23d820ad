package model

// Severity ranks how urgently an issue needs attention.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// unknownSeverityRank sorts unrecognized severities after LOW.
const unknownSeverityRank = 99

// Rank returns the sort position of the severity: CRITICAL is 0, LOW is 3.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return unknownSeverityRank
	}
}

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	return s.Rank() != unknownSeverityRank
}

// Category classifies the kind of defect an issue describes.
type Category string

const (
	CategoryLogic         Category = "LOGIC"
	CategorySecurity      Category = "SECURITY"
	CategoryAccessControl Category = "ACCESS_CONTROL"
	CategoryPerformance   Category = "PERFORMANCE"
	CategoryQuality       Category = "QUALITY"
	CategorySideEffects   Category = "SIDE_EFFECTS"
	CategoryTesting       Category = "TESTING"
	CategoryDocumentation Category = "DOCUMENTATION"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryLogic, CategorySecurity, CategoryAccessControl, CategoryPerformance,
		CategoryQuality, CategorySideEffects, CategoryTesting, CategoryDocumentation:
		return true
	}
	return false
}

// SummaryAction records what PublishSummary did with the summary comment.
type SummaryAction string

const (
	SummaryCreated SummaryAction = "created"
	SummaryUpdated SummaryAction = "updated"
)

// PublishTier identifies which strategy delivered a batch of line comments.
type PublishTier string

const (
	PublishTierNone       PublishTier = "none"       // Nothing to publish.
	PublishTierBatch      PublishTier = "batch"      // Single review submission succeeded.
	PublishTierIndividual PublishTier = "individual" // Batch failed; comments posted one at a time.
)
