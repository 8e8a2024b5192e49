package decompose

import (
	"strings"

	"github.com/slicekit/slicer/internal/prd"
)

// Strategy tags for slicing a roadmap item.
const (
	StrategyVerticalSlice      = "vertical-slice"
	StrategyStoryMapping       = "story-mapping"
	StrategyRuleVariation      = "rule-variation"
	StrategyInterfaceVariation = "interface-variation"
	StrategyDataVariation      = "data-variation"
)

// SlicingStrategy defines one decomposition approach and the guidance the
// draft generator receives when it is selected.
type SlicingStrategy struct {
	Strategy    string // Unique identifier for the strategy
	Description string // Human-readable description
	Prompt      string // Guidance appended to the generation prompt
}

// SlicingStrategies lists every supported strategy. Each offers a distinct
// way to cut an item into independently deliverable units.
var SlicingStrategies = []SlicingStrategy{
	{
		Strategy:    StrategyVerticalSlice,
		Description: "Slice through all technical layers per unit",
		Prompt: `## Strategic Focus: Vertical Slices

Cut the item so every unit delivers a thin, complete path through the
system:

1. **End to End**: Each unit touches whatever UI, API, and data work its
   capability needs. Never slice by technical layer.

2. **Demoable**: A stakeholder should be able to see each unit working on
   its own.

3. **Thinnest First**: The first unit is the narrowest path that proves
   the feature; later units widen it.`,
	},
	{
		Strategy:    StrategyStoryMapping,
		Description: "Walk the user journey and slice by activity",
		Prompt: `## Strategic Focus: Story Mapping

Lay out the user journey and slice along it:

1. **Backbone First**: Identify the activities a user walks through, in
   order, and make each unit one step of that walk.

2. **Walking Skeleton**: The combined first units should form a minimal
   but complete journey.

3. **Depth Later**: Variations and polish on a step are separate units
   that depend on the skeleton step.`,
	},
	{
		Strategy:    StrategyRuleVariation,
		Description: "Slice by business rule complexity",
		Prompt: `## Strategic Focus: Rule Variation

Separate the simple rule from its elaborations:

1. **Simplest Rule First**: The first unit implements the capability
   under the most permissive business rule.

2. **One Rule Per Unit**: Each further unit adds exactly one rule,
   condition, or policy.

3. **Rules Are Independent**: A rule unit depends only on the base
   capability, not on sibling rules, unless the rules genuinely interact.`,
	},
	{
		Strategy:    StrategyInterfaceVariation,
		Description: "Slice by interaction path or channel",
		Prompt: `## Strategic Focus: Interface Variation

The item serves multiple interaction paths; slice along them:

1. **One Path End to End**: The first unit delivers one complete path or
   channel, including its error handling.

2. **Paths Are Peers**: Additional paths are separate units depending on
   the first, never on each other.

3. **Shared Work Stays Hidden**: Do not make shared plumbing its own
   unit; fold it into the first path that needs it.`,
	},
	{
		Strategy:    StrategyDataVariation,
		Description: "Slice by data type or format",
		Prompt: `## Strategic Focus: Data Variation

The item handles several data kinds; slice by kind:

1. **One Kind First**: The first unit handles the most common data type
   or format completely.

2. **Kind Per Unit**: Each further unit extends the capability to one
   additional type or format.

3. **No Field-Level Splits**: A unit covers a whole data kind, never a
   single field of one.`,
	},
}

// StrategyNames returns the list of available strategy tags.
func StrategyNames() []string {
	names := make([]string, len(SlicingStrategies))
	for i, s := range SlicingStrategies {
		names[i] = s.Strategy
	}
	return names
}

// GetStrategy returns the SlicingStrategy for a tag, or nil if not found.
func GetStrategy(name string) *SlicingStrategy {
	for i := range SlicingStrategies {
		if SlicingStrategies[i].Strategy == name {
			return &SlicingStrategies[i]
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Selection
// -----------------------------------------------------------------------------

// Marker tables for the selection chain. Matching is substring-based over
// the lowercased item text.
var (
	alternativePathMarkers = []string{
		"either", " or ", "alternatively", "instead of", "fallback",
		"web", "mobile", "desktop",
	}
	ruleMarkers = []string{
		"if ", "when ", "unless", "only if", "depending on", "based on",
		"policy", "rule", "eligib", "threshold", "limit",
	}
	dataVariationMarkers = []string{
		"types of", "kinds of", "formats", "categories", "variants",
		"csv", "json", "xml", "pdf",
	}
)

const (
	alternativePathFloor = 2
	ruleDensityFloor     = 3
	dataVariationFloor   = 2
)

// SelectStrategy picks one strategy for an item via a fixed priority
// chain. Deterministic: the same item text always selects the same
// strategy. No side effects.
func SelectStrategy(item prd.RoadmapItem) *SlicingStrategy {
	text := strings.ToLower(item.Title + "\n" + item.Description)

	switch {
	case item.Type == prd.ItemEpic || item.Type == prd.ItemInitiative:
		return GetStrategy(StrategyStoryMapping)
	case countMarkers(text, alternativePathMarkers) >= alternativePathFloor:
		return GetStrategy(StrategyInterfaceVariation)
	case countMarkers(text, ruleMarkers) >= ruleDensityFloor:
		return GetStrategy(StrategyRuleVariation)
	case countMarkers(text, dataVariationMarkers) >= dataVariationFloor:
		return GetStrategy(StrategyDataVariation)
	default:
		return GetStrategy(StrategyVerticalSlice)
	}
}

// countMarkers counts how many distinct markers appear in the text.
func countMarkers(text string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(text, m) {
			n++
		}
	}
	return n
}
