package letters

// GenerateInput is the job posting a letter is written against.
type GenerateInput struct {
	JobTitle               string  `json:"jobTitle" validate:"required,min=2"`
	CompanyName            string  `json:"companyName" validate:"required,min=2"`
	JobDescription         string  `json:"jobDescription" validate:"required,min=10"`
	AdditionalInstructions *string `json:"additionalInstructions,omitempty"`
}

// EditInput carries the revised posting details for an existing
// letter. Editing regenerates the letter from the revised inputs
// rather than patching its text.
type EditInput struct {
	JobTitle               string  `json:"jobTitle" validate:"required,min=2"`
	CompanyName            string  `json:"companyName" validate:"required,min=2"`
	JobDescription         string  `json:"jobDescription" validate:"required,min=10"`
	AdditionalInstructions *string `json:"additionalInstructions,omitempty"`
}
