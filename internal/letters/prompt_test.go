package letters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cover-letter-studio/internal/db"
)

func testProfile() *db.Profile {
	title := "Staff Engineer"
	years := 8
	bio := "Backend engineer focused on data-heavy products."
	start := time.Date(2021, 4, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC)
	return &db.Profile{
		FullName:          "Ada Lovelace",
		CurrentJobTitle:   &title,
		YearsOfExperience: &years,
		Bio:               &bio,
		Skills:            []string{"Go", "PostgreSQL", "Kubernetes"},
		Achievements:      []string{"Cut p99 latency by 40%"},
		WorkExperience: []db.WorkExperience{
			{Title: "Staff Engineer", Company: "Initech", StartDate: start, EndDate: &end, Summary: "Led the platform team."},
			{Title: "Engineer", Company: "Hooli", StartDate: start, Summary: "Built billing."},
		},
	}
}

func TestComposePromptContainsPostingAndProfile(t *testing.T) {
	prompt, err := ComposePrompt(GenerateInput{
		JobTitle:       "Senior Backend Engineer",
		CompanyName:    "Globex",
		JobDescription: "Build and operate Go services.",
	}, testProfile())
	require.NoError(t, err)

	assert.Contains(t, prompt, "Dear Hiring Manager,")
	assert.Contains(t, prompt, "Senior Backend Engineer")
	assert.Contains(t, prompt, "Globex")
	assert.Contains(t, prompt, "Build and operate Go services.")
	assert.Contains(t, prompt, "Go, PostgreSQL, Kubernetes")
	assert.Contains(t, prompt, "Cut p99 latency by 40%")
}

func TestComposePromptFormatsWorkExperience(t *testing.T) {
	prompt, err := ComposePrompt(GenerateInput{
		JobTitle:       "Engineer",
		CompanyName:    "Globex",
		JobDescription: "Anything at all here.",
	}, testProfile())
	require.NoError(t, err)

	assert.Contains(t, prompt, "- Staff Engineer at Initech (4/5/2021 - 11/30/2023): Led the platform team.")
	assert.Contains(t, prompt, "- Engineer at Hooli (4/5/2021 - Present): Built billing.")
}

func TestComposePromptInstructions(t *testing.T) {
	instructions := "Mention my open-source work."

	withInstructions, err := ComposePrompt(GenerateInput{
		JobTitle:               "Engineer",
		CompanyName:            "Globex",
		JobDescription:         "Anything at all here.",
		AdditionalInstructions: &instructions,
	}, testProfile())
	require.NoError(t, err)
	assert.Contains(t, withInstructions, "Mention my open-source work.")

	blank := "   "
	withBlank, err := ComposePrompt(GenerateInput{
		JobTitle:               "Engineer",
		CompanyName:            "Globex",
		JobDescription:         "Anything at all here.",
		AdditionalInstructions: &blank,
	}, testProfile())
	require.NoError(t, err)
	assert.NotContains(t, withBlank, "Additional instructions")
}
