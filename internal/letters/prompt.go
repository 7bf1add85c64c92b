package letters

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/db"
	"github.com/jonathan/cover-letter-studio/internal/prompts"
)

const dateLayout = "1/2/2006"

// ComposePrompt renders the generation prompt from the posting details
// and the saved profile. A nil profile omits the profile section.
func ComposePrompt(input GenerateInput, profile *db.Profile) (string, error) {
	template, err := prompts.Get("cover_letter.json", "generate")
	if err != nil {
		return "", fmt.Errorf("failed to load cover letter prompt: %w", err)
	}
	return prompts.Format(template, map[string]string{
		"JobTitle":            input.JobTitle,
		"CompanyName":         input.CompanyName,
		"JobDescription":      input.JobDescription,
		"ProfileSection":      profileSection(profile),
		"InstructionsSection": instructionsSection(input.AdditionalInstructions),
	}), nil
}

func profileSection(p *db.Profile) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("CANDIDATE PROFILE:\n")
	fmt.Fprintf(&b, "Name: %s\n", p.FullName)
	if p.CurrentJobTitle != nil && *p.CurrentJobTitle != "" {
		fmt.Fprintf(&b, "Current role: %s\n", *p.CurrentJobTitle)
	}
	if p.Location != nil && *p.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", *p.Location)
	}
	if p.YearsOfExperience != nil {
		fmt.Fprintf(&b, "Years of experience: %d\n", *p.YearsOfExperience)
	}
	fmt.Fprintf(&b, "Skills: %s\n", strings.Join(p.Skills, ", "))
	if len(p.Achievements) > 0 {
		fmt.Fprintf(&b, "Achievements: %s\n", strings.Join(p.Achievements, ", "))
	}
	if len(p.WorkExperience) > 0 {
		b.WriteString("Work experience:\n")
		for _, exp := range p.WorkExperience {
			fmt.Fprintf(&b, "- %s at %s (%s - %s): %s\n",
				exp.Title, exp.Company,
				exp.StartDate.Format(dateLayout), endDate(exp.EndDate),
				exp.Summary)
		}
	}
	if p.Bio != nil && *p.Bio != "" {
		fmt.Fprintf(&b, "About: %s\n", *p.Bio)
	}
	return strings.TrimRight(b.String(), "\n") + "\n\n"
}

func instructionsSection(instructions *string) string {
	if instructions == nil || strings.TrimSpace(*instructions) == "" {
		return ""
	}
	return "Additional instructions from the candidate:\n" + strings.TrimSpace(*instructions) + "\n\n"
}

func endDate(end *time.Time) string {
	if end == nil {
		return "Present"
	}
	return end.Format(dateLayout)
}
