package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaitanyakcs/survey-engine-sub004/internal/survey"
)

func TestLoad_EmbeddedTable(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, reg.Definitions())

	def, ok := reg.Lookup("Brand_Awareness_Unaided")
	require.True(t, ok)
	assert.Equal(t, CategoryBrand, def.Category)
	assert.True(t, def.Mandatory)
	assert.Contains(t, def.Detection.NegativeKeywords, "following")

	_, ok = reg.Lookup("No_Such_Label")
	assert.False(t, ok)
}

func TestParse_RejectsBadTables(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"empty", "labels: []"},
		{"missing name", "labels:\n  - category: brand"},
		{"duplicate", "labels:\n  - name: A\n    category: brand\n  - name: A\n    category: brand"},
		{"unknown category", "labels:\n  - name: A\n    category: nonsense"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestZoneForSection(t *testing.T) {
	cases := []struct {
		id   int
		zone Category
		ok   bool
	}{
		{survey.PlanSectionID, "", false},
		{2, CategoryScreening, true},
		{3, CategoryBrand, true},
		{4, CategoryConcept, true},
		{5, CategoryMethodology, true},
		{6, CategoryAdditional, true},
		{42, CategoryAdditional, true},
	}
	for _, tc := range cases {
		zone, ok := ZoneForSection(tc.id)
		assert.Equal(t, tc.ok, ok, "section %d", tc.id)
		assert.Equal(t, tc.zone, zone, "section %d", tc.id)
	}
}

func TestRequiredLabels_PlanSectionHasNone(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)
	assert.Nil(t, reg.RequiredLabels(survey.PlanSectionID, nil, ""))
}

func TestRequiredLabels_ScreeningZone(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	names := labelNames(reg.RequiredLabels(2, nil, ""))
	assert.ElementsMatch(t, []string{"Screening_Criteria", "Demographics_Basic"}, names)
}

func TestRequiredLabels_MethodologyContextFiltering(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	// Without methodology tags no methodology-scoped label is required.
	assert.Empty(t, reg.RequiredLabels(5, nil, ""))

	names := labelNames(reg.RequiredLabels(5, []string{"van_westendorp"}, ""))
	assert.ElementsMatch(t, VanWestendorpLabels, names)

	names = labelNames(reg.RequiredLabels(5, []string{"gabor_granger"}, ""))
	assert.ElementsMatch(t, []string{GaborGrangerAcceptance}, names)

	names = labelNames(reg.RequiredLabels(5, []string{"van_westendorp", "maxdiff"}, ""))
	assert.Len(t, names, 5)
	assert.Contains(t, names, "MaxDiff_Exercise")
}

func TestAppliesToContext(t *testing.T) {
	def := LabelDefinition{AppliesTo: []string{"van_westendorp"}}
	assert.True(t, def.AppliesToContext([]string{"Van_Westendorp"}, ""))
	assert.True(t, def.AppliesToContext(nil, "van_westendorp"))
	assert.False(t, def.AppliesToContext([]string{"gabor_granger"}, "retail"))

	universal := LabelDefinition{}
	assert.True(t, universal.AppliesToContext(nil, ""))
}

func TestCriticalAndRecoverableSets(t *testing.T) {
	assert.True(t, IsCritical("Screening_Criteria"))
	assert.True(t, IsCritical("Demographics_Basic"))
	assert.True(t, IsCritical("Purchase_Intent"))
	assert.False(t, IsCritical("Open_Feedback"))

	assert.True(t, IsRecoverableMandatory("Brand_Awareness_Funnel"))
	assert.True(t, IsRecoverableMandatory("Product_Satisfaction"))
	assert.False(t, IsRecoverableMandatory("Screening_Criteria"))

	assert.True(t, IsVanWestendorpAnchor(VWTooCheap))
	assert.False(t, IsVanWestendorpAnchor(GaborGrangerAcceptance))
}

func TestMatchTheme(t *testing.T) {
	assert.Equal(t, "demographics", MatchTheme("", "What is your age?"))
	assert.Equal(t, "demographics", MatchTheme("demographic profile", "Anything"))
	assert.Equal(t, "pricing", MatchTheme("", "How much would you pay?"))
	assert.Equal(t, "feedback", MatchTheme("", "Any other feedback for us?"))
	assert.Equal(t, "", MatchTheme("", "Name one color."))
}

func TestThemeTitle(t *testing.T) {
	assert.Equal(t, "Pricing & Value", ThemeTitle("pricing"))
	assert.Equal(t, DefaultThemeTitle, ThemeTitle("unknown"))
}

func labelNames(defs []LabelDefinition) []string {
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}
