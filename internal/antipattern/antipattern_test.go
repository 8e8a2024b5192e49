package antipattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicekit/slicer/internal/extract"
	"github.com/slicekit/slicer/internal/prd"
)

func scanAll(units []prd.Unit) map[string]extract.Features {
	features := make(map[string]extract.Features, len(units))
	for i := range units {
		features[units[i].ID] = extract.Scan(units[i].Text())
	}
	return features
}

func detect(t *testing.T, units []prd.Unit) []prd.AntiPatternWarning {
	t.Helper()
	return Detect(units, scanAll(units), prd.NewDependencyGraph())
}

func findWarning(warnings []prd.AntiPatternWarning, kind prd.AntiPatternKind) *prd.AntiPatternWarning {
	for i := range warnings {
		if warnings[i].Pattern == kind {
			return &warnings[i]
		}
	}
	return nil
}

func TestDetect_HorizontalSlice(t *testing.T) {
	units := []prd.Unit{{
		ID:    "u1",
		Title: "Database schema migration",
		Body:  "Design the database schema and migration scripts",
	}}

	w := findWarning(detect(t, units), prd.PatternHorizontalSlice)
	require.NotNil(t, w)
	assert.Equal(t, prd.SeverityHigh, w.Severity)
	assert.Equal(t, []string{"u1"}, w.UnitIDs)
}

func TestDetect_HappyPathOnly(t *testing.T) {
	units := []prd.Unit{{
		ID:    "u1",
		Title: "Photo upload",
		Body:  "The photo is successfully stored and shown to the user",
	}}

	w := findWarning(detect(t, units), prd.PatternHappyPathOnly)
	require.NotNil(t, w)
	assert.Equal(t, prd.SeverityHigh, w.Severity)
}

func TestDetect_HappyPathWithErrorHandling(t *testing.T) {
	units := []prd.Unit{{
		ID:    "u1",
		Title: "Photo upload",
		Body:  "The photo is successfully stored; invalid files are rejected with an error",
	}}

	assert.Nil(t, findWarning(detect(t, units), prd.PatternHappyPathOnly))
}

func TestDetect_CoreFirst(t *testing.T) {
	units := []prd.Unit{{
		ID:    "u1",
		Title: "Build authentication core",
		Body:  "Build the foundation for authentication",
	}}

	w := findWarning(detect(t, units), prd.PatternCoreFirst)
	require.NotNil(t, w)
	assert.Equal(t, prd.SeverityHigh, w.Severity)
	assert.Equal(t, []string{"u1"}, w.UnitIDs)
}

func TestDetect_CRUDSplit(t *testing.T) {
	units := []prd.Unit{
		{ID: "u1", Title: "Create task"},
		{ID: "u2", Title: "Read task"},
		{ID: "u3", Title: "Update task"},
	}

	w := findWarning(detect(t, units), prd.PatternCRUDSplit)
	require.NotNil(t, w)
	assert.Equal(t, prd.SeverityMedium, w.Severity)
	assert.Equal(t, []string{"u1", "u2", "u3"}, w.UnitIDs)
}

func TestDetect_CRUDSplit_DifferentEntities(t *testing.T) {
	units := []prd.Unit{
		{ID: "u1", Title: "Create task"},
		{ID: "u2", Title: "Delete project"},
	}

	assert.Nil(t, findWarning(detect(t, units), prd.PatternCRUDSplit))
}

func TestDetect_TrivialDataSplit(t *testing.T) {
	units := []prd.Unit{
		{ID: "u1", Title: "Validate username field"},
		{ID: "u2", Title: "Validate password field"},
	}

	w := findWarning(detect(t, units), prd.PatternTrivialDataSplit)
	require.NotNil(t, w)
	assert.Equal(t, []string{"u1", "u2"}, w.UnitIDs)
}

func TestDetect_InterfaceSplit(t *testing.T) {
	units := []prd.Unit{
		{ID: "u1", Title: "Search products on web"},
		{ID: "u2", Title: "Search products on mobile"},
	}

	w := findWarning(detect(t, units), prd.PatternInterfaceSplit)
	require.NotNil(t, w)
	assert.Equal(t, prd.SeverityMedium, w.Severity)
	assert.Equal(t, []string{"u1", "u2"}, w.UnitIDs)
}

func TestDetect_ProcessStepSplit(t *testing.T) {
	units := []prd.Unit{{
		ID:    "u1",
		Title: "Open settings",
		Body:  "Navigate to the settings page and configure alerts",
	}}

	warnings := detect(t, units)
	assert.NotNil(t, findWarning(warnings, prd.PatternProcessStepSplit))
	assert.Nil(t, findWarning(warnings, prd.PatternBadConjunctionSplit),
		"a step with a real action is not a pure setup unit")
}

func TestDetect_BadConjunctionSplit(t *testing.T) {
	units := []prd.Unit{{
		ID:    "u1",
		Title: "Portal access",
		Body:  "Log in to the portal",
	}}

	w := findWarning(detect(t, units), prd.PatternBadConjunctionSplit)
	require.NotNil(t, w)
	assert.Equal(t, prd.SeverityMedium, w.Severity)
}

func TestDetect_RoleSplit(t *testing.T) {
	units := []prd.Unit{
		{
			ID:    "u1",
			Title: "Report export for admins",
			Story: prd.UserStory{Role: "admin", Goal: "to export reports", Benefit: "I can share them"},
		},
		{
			ID:    "u2",
			Title: "Report export for managers",
			Story: prd.UserStory{Role: "manager", Goal: "to export reports", Benefit: "I can share them"},
		},
	}

	w := findWarning(detect(t, units), prd.PatternRoleSplit)
	require.NotNil(t, w)
	assert.Equal(t, []string{"u1", "u2"}, w.UnitIDs)
}

func TestDetect_CriteriaAsUnit(t *testing.T) {
	units := []prd.Unit{{
		ID:    "u1",
		Title: "Submission check",
		Body:  "Given a logged-in user when they submit the form then verify the result",
	}}

	w := findWarning(detect(t, units), prd.PatternCriteriaAsUnit)
	require.NotNil(t, w)
	assert.Equal(t, prd.SeverityMedium, w.Severity)
}

func TestDetect_CleanUnitSet(t *testing.T) {
	units := []prd.Unit{{
		ID:    "u1",
		Title: "Photo sharing",
		Body:  "Registered users upload photos and share them with a team. Rejects invalid file types with a clear error.",
		Story: prd.UserStory{Role: "registered user", Goal: "to share photos", Benefit: "my team sees my work"},
	}}

	assert.Empty(t, detect(t, units))
}

func TestDetect_OrderInsensitive(t *testing.T) {
	units := []prd.Unit{
		{ID: "u1", Title: "Create invoice"},
		{ID: "u2", Title: "Update invoice"},
		{ID: "u3", Title: "Build billing core", Body: "Billing foundation work"},
	}
	reversed := []prd.Unit{units[2], units[1], units[0]}

	a := Detect(units, scanAll(units), prd.NewDependencyGraph())
	b := Detect(reversed, scanAll(reversed), prd.NewDependencyGraph())

	assert.Equal(t, a, b)
}

func TestDetect_AccumulatesMultipleWarnings(t *testing.T) {
	units := []prd.Unit{
		{ID: "u1", Title: "Create order"},
		{ID: "u2", Title: "Delete order"},
		{
			ID:    "u3",
			Title: "Build order core",
			Body:  "Foundation layer, happy path works successfully",
		},
	}

	warnings := detect(t, units)
	assert.NotNil(t, findWarning(warnings, prd.PatternCRUDSplit))
	assert.NotNil(t, findWarning(warnings, prd.PatternCoreFirst))
	assert.NotNil(t, findWarning(warnings, prd.PatternHappyPathOnly))
}
