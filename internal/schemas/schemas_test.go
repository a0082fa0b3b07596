package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AlignmentAnalysis(t *testing.T) {
	valid := `{
		"companyName": ["Acme"],
		"jobTitle": ["Platform Engineer"],
		"hardSkills": ["Go", "Kubernetes"],
		"softSkills": ["Communication"],
		"criticalRequirements": ["5+ years backend experience"]
	}`
	assert.NoError(t, Validate(AlignmentAnalysis, []byte(valid)))

	missingField := `{
		"companyName": ["Acme"],
		"jobTitle": ["Platform Engineer"],
		"hardSkills": ["Go"]
	}`
	err := Validate(AlignmentAnalysis, []byte(missingField))
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, AlignmentAnalysis, ve.Schema)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidate_CVScore(t *testing.T) {
	valid := `{
		"overallScore": 68,
		"hardSkillsScore": 60,
		"softSkillsScore": 80,
		"criticalReqScore": null,
		"matchedHardSkills": ["Go"],
		"missingHardSkills": ["Kubernetes"],
		"strengths": ["Strong backend track record"],
		"weaknesses": ["No container orchestration"]
	}`
	assert.NoError(t, Validate(CVScore, []byte(valid)))

	outOfRange := `{
		"overallScore": 140,
		"hardSkillsScore": 60,
		"softSkillsScore": 80,
		"matchedHardSkills": [],
		"missingHardSkills": [],
		"strengths": [],
		"weaknesses": []
	}`
	err := Validate(CVScore, []byte(outOfRange))
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "overallScore")
}

func TestValidate_CVScore_WrongType(t *testing.T) {
	wrongType := `{
		"overallScore": "sixty-eight",
		"hardSkillsScore": 60,
		"softSkillsScore": 80,
		"matchedHardSkills": [],
		"missingHardSkills": [],
		"strengths": [],
		"weaknesses": []
	}`
	assert.Error(t, Validate(CVScore, []byte(wrongType)))
}

func TestValidate_ImprovementPlan(t *testing.T) {
	valid := `{
		"reformulations": [
			{"original": "Did backend work", "improved": "Built Go services at scale", "reason": "quantify"}
		],
		"removals": [
			{"text": "Typing speed: 90wpm", "reason": "irrelevant", "alternative": ""}
		],
		"additions": [
			{"section": "Skills", "content": "Kubernetes", "reason": "required by the role"}
		]
	}`
	assert.NoError(t, Validate(ImprovementPlan, []byte(valid)))

	emptyPlan := `{"reformulations": [], "removals": [], "additions": []}`
	assert.NoError(t, Validate(ImprovementPlan, []byte(emptyPlan)))

	badItem := `{
		"reformulations": [{"original": "x"}],
		"removals": [],
		"additions": []
	}`
	assert.Error(t, Validate(ImprovementPlan, []byte(badItem)))
}

func TestValidate_MvpProjects(t *testing.T) {
	valid := `[
		{
			"tutorialTitle": "Deploy Go on Kubernetes",
			"tutorialUrl": "https://youtube.com/watch?v=abc",
			"skillsCombined": ["Go", "Kubernetes"],
			"personalizationTip": "Swap the sample app for your own API",
			"cvBlurb": "Deployed a Go API to Kubernetes with CI/CD",
			"estimatedBuildTime": "2 weekends",
			"roleFitNote": "Directly covers the orchestration requirement"
		}
	]`
	assert.NoError(t, Validate(MvpProjects, []byte(valid)))

	emptyList := `[]`
	assert.NoError(t, Validate(MvpProjects, []byte(emptyList)))

	notAList := `{"tutorialTitle": "x"}`
	assert.Error(t, Validate(MvpProjects, []byte(notAList)))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("no_such_schema", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_schema")
}
