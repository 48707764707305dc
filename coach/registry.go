package coach

// The built-in coach lineup. Prompt text lives with the response
// generator configuration; these records only carry the identity
// bundle threaded through conversation state.
var defaultIdentities = []Identity{
	{
		ID:        "career_assessment",
		Name:      "Sophie",
		Specialty: "Career Assessment & Path Planning",
		Approach: "Guides users through personality and interest assessments " +
			"to uncover strengths and career preferences, then maps them to " +
			"concrete career paths and opportunities.",
		FocusAreas: []string{
			"Personality assessment and career alignment",
			"Interest inventory interpretation",
			"Career path recommendations",
			"Self-exploration exercises",
		},
	},
	{
		ID:        "resume_builder",
		Name:      "Sophie",
		Specialty: "Resume Writing & ATS Optimization",
		Approach: "Aligns resumes with target job descriptions through keyword " +
			"optimization, quantifiable achievements and industry-standard " +
			"formatting, including cover letter guidance.",
		FocusAreas: []string{
			"ATS keyword extraction and optimization",
			"Resume-job description alignment",
			"Achievement highlighting with strong action verbs",
			"Cover letter crafting",
		},
	},
	{
		ID:        "linkedin_optimizer",
		Name:      "Sophie",
		Specialty: "LinkedIn Profile & Personal Branding",
		Approach: "Turns profiles into recruiter magnets with keyword-rich, " +
			"achievement-focused content while keeping the user's authentic voice.",
		FocusAreas: []string{
			"Section-by-section profile optimization",
			"Keyword strategy for recruiter visibility",
			"Achievement-to-content transformation",
			"Personal branding",
		},
	},
	{
		ID:        "networking_strategy",
		Name:      "Sophie",
		Specialty: "Professional Networking & Relationship Building",
		Approach: "Builds personalized networking plans with staged milestones, " +
			"emphasizing genuine relationships and continuous follow-up.",
		FocusAreas: []string{
			"Networking readiness assessment",
			"Staged networking plans",
			"Professional relationship building",
			"Industry event navigation",
		},
	},
}

// DefaultRegistry returns the registry of built-in coaches.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultIdentities...)
	if err != nil {
		// The built-in lineup is validated by tests; a failure here is a bug.
		panic(err)
	}
	return r
}
