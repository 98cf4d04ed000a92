package main

// LearningPlan is a set of media literacy content recommended to a user
type LearningPlan struct {
	Courses []string `json:"courses"`
	Tips    []string `json:"tips"`
	Quizzes []string `json:"quizzes"`
}

// FactCheckGuidance is the step-by-step fact-checking walkthrough
type FactCheckGuidance struct {
	Steps     []string `json:"steps"`
	Resources []string `json:"resources"`
	RedFlags  []string `json:"red_flags"`
}

// Educator serves static media literacy content. Content is fixed at build
// time; personalization currently only varies the ordering seed.
type Educator struct{}

// NewEducator creates the educator
func NewEducator() *Educator {
	return &Educator{}
}

// RecommendedLearning returns the learning plan for a user
func (e *Educator) RecommendedLearning(userID string) *LearningPlan {
	return &LearningPlan{
		Courses: []string{
			"Introduction to Media Literacy",
			"Spotting Misinformation Online",
			"Understanding News Sources and Bias",
		},
		Tips: []string{
			"Check the publication date before sharing",
			"Look for the original source of a claim",
			"Read past the headline before forming an opinion",
			"Be skeptical of content designed to provoke outrage",
		},
		Quizzes: []string{
			"Real or Fake: Headlines Edition",
			"Rate the Source",
		},
	}
}

// FactCheckGuidance returns the standard fact-checking walkthrough
func (e *Educator) FactCheckGuidance() *FactCheckGuidance {
	return &FactCheckGuidance{
		Steps: []string{
			"Identify the core claim being made",
			"Find the original source of the claim",
			"Check whether established fact-checkers have reviewed it",
			"Look for the same story from multiple independent outlets",
			"Check the date, old stories often recirculate as new",
		},
		Resources: []string{
			"FactCheck.org",
			"Snopes",
			"Reuters Fact Check",
			"AP Fact Check",
		},
		RedFlags: []string{
			"Sensational headlines in all caps",
			"No named author or publication date",
			"Claims attributed to unnamed scientists or experts",
			"Requests to share before they delete it",
			"Only one outlet reporting an extraordinary story",
		},
	}
}
