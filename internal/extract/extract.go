// Package extract derives lightweight structural features from unit text.
//
// It is the leaf of the validation pipeline: a pure function over text with
// no state and no imports from the scoring or graph packages. Detection is
// driven by declarative rule tables (keyword lists and compiled patterns)
// so individual rules can be tuned without touching control flow.
package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Layer buckets for layer-keyword hits.
type Layer string

const (
	LayerUI   Layer = "ui"
	LayerAPI  Layer = "api"
	LayerData Layer = "data"
)

// Features is the bag of structural signals detected in a unit's text.
// All counts refer to occurrences in the scanned text.
type Features struct {
	// DependencyKeywords counts hits of dependency phrasing such as
	// "depends on" or "blocked by".
	DependencyKeywords int

	// LayerHits counts layer-keyword hits per bucket.
	LayerHits map[Layer]int

	// HasRole is true when an "As a(n) <role>" pattern was found.
	HasRole bool

	// Role is the captured role text, lowercased, when HasRole is true.
	Role string

	// HasOutcome is true when a "so that" outcome clause was found.
	HasOutcome bool

	// ActionVerbs counts hits from the fixed action-verb list.
	ActionVerbs int

	// Measurables counts numeric-plus-unit tokens ("200 ms", "95%").
	Measurables int

	// Creates and Uses are entity-name sets inferred from noun phrases
	// adjacent to create/read/update/delete verbs, sorted and deduplicated.
	Creates []string
	Uses    []string

	// TechTermDensity is tech-term hits divided by word count.
	TechTermDensity float64

	// AmbiguousTerms counts vague phrasing hits ("some", "as needed").
	AmbiguousTerms int

	// UnresolvedMarkers counts open-question markers ("TBD", "???").
	UnresolvedMarkers int

	// ScopeUnbounded is true when the text declares an explicitly
	// open-ended scope ("and more", "unlimited", trailing "etc").
	ScopeUnbounded bool

	// PrescriptiveMandate is true when the text mandates a specific
	// implementation ("must use", "implement with").
	PrescriptiveMandate bool

	// TestVocab counts test-style vocabulary hits (given/when/then/verify).
	TestVocab int

	// HappyPathLanguage is true when success-path phrasing was found.
	HappyPathLanguage bool

	// ErrorVocab is true when error/exception phrasing was found.
	ErrorVocab bool

	// CoreVocab counts core/base/foundation vocabulary hits.
	CoreVocab int

	// SetupAction is true when the text is anchored on a setup or
	// navigation action ("log in", "navigate to").
	SetupAction bool

	// Platforms lists platform keywords found (web, mobile, desktop).
	Platforms []string

	// CRUDVerbs lists the distinct CRUD verbs found, canonicalized to
	// create/read/update/delete.
	CRUDVerbs []string

	// WordCount is the number of whitespace-separated tokens scanned.
	WordCount int
}

// -----------------------------------------------------------------------------
// Rule tables
// -----------------------------------------------------------------------------

var dependencyKeywords = []string{
	"depends on",
	"requires",
	"after",
	"blocked by",
}

var layerKeywords = map[Layer][]string{
	LayerUI:   {"ui", "frontend", "screen", "page", "button", "form", "view", "css", "layout", "component"},
	LayerAPI:  {"api", "endpoint", "backend", "service", "controller", "route", "handler", "middleware"},
	LayerData: {"database", "schema", "table", "migration", "query", "index", "storage", "repository"},
}

var actionVerbs = []string{
	"create", "view", "edit", "delete", "search", "filter", "submit",
	"upload", "download", "share", "export", "import", "configure",
	"register", "browse", "manage", "track", "review", "approve",
}

var techTerms = []string{
	"database", "api", "endpoint", "cache", "queue", "thread", "docker",
	"kubernetes", "microservice", "schema", "refactor", "middleware",
	"framework", "backend", "frontend", "orm", "sdk", "runtime", "daemon",
}

var ambiguousTerms = []string{
	"some", "various", "several", "appropriate", "as needed", "somehow",
	"fast", "flexible", "scalable", "user-friendly", "robust", "intuitive",
}

var unresolvedMarkers = []string{
	"tbd", "todo", "to be determined", "to be decided", "???", "open question",
}

var scopeUnboundedMarkers = []string{
	"and more", "unlimited", "open-ended", "no limit", "etc", "and so on",
}

var happyPathTerms = []string{
	"successfully", "happy path", "valid input", "correctly",
}

var errorVocab = []string{
	"error", "fail", "invalid", "exception", "timeout", "reject",
	"retry", "edge case", "unavailable", "denied",
}

var coreVocab = []string{
	"core", "base", "foundation", "foundational", "infrastructure", "underlying",
}

var setupActions = []string{
	"log in", "login", "sign in", "navigate", "open the", "set up", "launch",
}

var platformKeywords = []string{"web", "mobile", "desktop"}

// crudSynonyms canonicalizes verb variants to the four CRUD verbs.
var crudSynonyms = map[string]string{
	"create": "create", "add": "create", "generate": "create", "produce": "create",
	"read": "read", "view": "read", "list": "read", "display": "read", "fetch": "read",
	"update": "update", "edit": "update", "modify": "update", "change": "update",
	"delete": "delete", "remove": "delete", "archive": "delete",
}

var (
	rolePattern       = regexp.MustCompile(`(?i)\bas an? ([a-z][a-z -]{1,40}?)\s*[,.]`)
	outcomePattern    = regexp.MustCompile(`(?i)\bso that\b`)
	measurablePattern = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:%|(?:percent|ms|milliseconds?|s|seconds?|minutes?|hours?|days?|users?|items?|records?|requests?|mb|gb)\b)`)
	mandatePattern    = regexp.MustCompile(`(?i)\bmust (?:use|be (?:implemented|built|written) (?:with|in|using))\b|\bimplement(?:ed)? (?:with|using)\b`)
	testVocabPattern  = regexp.MustCompile(`(?i)\b(?:given|when|then|verify|assert)\b`)
	structuredACRe    = regexp.MustCompile(`(?i)^\s*(?:given|when|then)\b|\bshould\b|\bverify\b`)

	// createsPattern and usesPattern capture the noun phrase following a
	// producing or consuming verb, up to two words.
	createsPattern = regexp.MustCompile(`(?i)\b(?:creates?|generates?|produces?|adds?|registers?)\s+(?:a|an|the|new)?\s*([a-z][a-z-]*(?:\s[a-z][a-z-]*)?)`)
	usesPattern    = regexp.MustCompile(`(?i)\b(?:uses?|reads?|updates?|deletes?|displays?|fetch(?:es)?|lists?|requires?)\s+(?:a|an|the|all|existing)?\s*([a-z][a-z-]*(?:\s[a-z][a-z-]*)?)`)
)

// nounStopwords excludes captures that are not entity names.
var nounStopwords = map[string]bool{
	"user": true, "users": true, "it": true, "them": true, "this": true,
	"that": true, "data": true, "new": true, "able": true,
}

// -----------------------------------------------------------------------------
// Scanning
// -----------------------------------------------------------------------------

// Scan derives the feature bag from a block of text. It is a pure function:
// identical text always yields an identical bag.
func Scan(text string) Features {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)

	f := Features{
		LayerHits: make(map[Layer]int),
		WordCount: len(words),
	}

	for _, kw := range dependencyKeywords {
		if strings.Contains(kw, " ") {
			f.DependencyKeywords += strings.Count(lower, kw)
		} else {
			f.DependencyKeywords += countWord(words, kw)
		}
	}

	for layer, keywords := range layerKeywords {
		for _, kw := range keywords {
			f.LayerHits[layer] += countWord(words, kw)
		}
	}

	if m := rolePattern.FindStringSubmatch(text); m != nil {
		f.HasRole = true
		f.Role = strings.TrimSpace(strings.ToLower(m[1]))
	}
	f.HasOutcome = outcomePattern.MatchString(text)

	for _, v := range actionVerbs {
		f.ActionVerbs += countWord(words, v)
	}

	f.Measurables = len(measurablePattern.FindAllString(text, -1))

	f.Creates = captureEntities(createsPattern, text)
	f.Uses = captureEntities(usesPattern, text)

	if len(words) > 0 {
		hits := 0
		for _, t := range techTerms {
			hits += countWord(words, t)
		}
		f.TechTermDensity = float64(hits) / float64(len(words))
	}

	for _, t := range ambiguousTerms {
		f.AmbiguousTerms += strings.Count(lower, t)
	}
	for _, m := range unresolvedMarkers {
		f.UnresolvedMarkers += strings.Count(lower, m)
	}
	for _, m := range scopeUnboundedMarkers {
		if strings.Contains(lower, m) {
			f.ScopeUnbounded = true
			break
		}
	}

	f.PrescriptiveMandate = mandatePattern.MatchString(text)
	f.TestVocab = len(testVocabPattern.FindAllString(text, -1))

	for _, t := range happyPathTerms {
		if strings.Contains(lower, t) {
			f.HappyPathLanguage = true
			break
		}
	}
	for _, t := range errorVocab {
		if strings.Contains(lower, t) {
			f.ErrorVocab = true
			break
		}
	}

	for _, t := range coreVocab {
		f.CoreVocab += countWord(words, t)
	}

	for _, a := range setupActions {
		if strings.Contains(lower, a) {
			f.SetupAction = true
			break
		}
	}

	for _, p := range platformKeywords {
		if countWord(words, p) > 0 {
			f.Platforms = append(f.Platforms, p)
		}
	}

	seen := make(map[string]bool)
	for _, w := range words {
		w = strings.Trim(w, ".,:;()\"'")
		if canon, ok := crudSynonyms[w]; ok && !seen[canon] {
			seen[canon] = true
			f.CRUDVerbs = append(f.CRUDVerbs, canon)
		}
	}
	sort.Strings(f.CRUDVerbs)

	return f
}

// IsStructuredCriterion reports whether an acceptance criterion follows a
// Given/When/Then, should, or verify shape.
func IsStructuredCriterion(criterion string) bool {
	return structuredACRe.MatchString(criterion)
}

// DominantLayer returns the single layer bucket holding all layer hits,
// or "" when hits are absent or spread across buckets.
func (f Features) DominantLayer() Layer {
	var dominant Layer
	buckets := 0
	for layer, n := range f.LayerHits {
		if n > 0 {
			buckets++
			dominant = layer
		}
	}
	if buckets == 1 {
		return dominant
	}
	return ""
}

// TotalLayerHits returns the sum of hits across all layer buckets.
func (f Features) TotalLayerHits() int {
	total := 0
	for _, n := range f.LayerHits {
		total += n
	}
	return total
}

// countWord counts exact word matches after trimming punctuation.
func countWord(words []string, target string) int {
	n := 0
	for _, w := range words {
		if strings.Trim(w, ".,:;()\"'") == target {
			n++
		}
	}
	return n
}

// captureEntities collects deduplicated, sorted noun-phrase captures.
func captureEntities(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	set := make(map[string]bool)
	for _, m := range matches {
		name := strings.TrimSpace(strings.ToLower(m[1]))
		if name == "" || nounStopwords[name] {
			continue
		}
		set[name] = true
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the sorted intersection of two entity sets.
func Intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	var out []string
	for _, s := range b {
		if set[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
