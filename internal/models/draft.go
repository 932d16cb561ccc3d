package models

// Draft is a candidate chapter produced by the writer.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Summary string `json:"summary"`
}

// Scores holds the per-axis review scores, each in [0,1].
type Scores struct {
	Consistency float64 `json:"consistency"`
	Logic       float64 `json:"logic"`
	Character   float64 `json:"character"`
	Plot        float64 `json:"plot"`
	Quality     float64 `json:"quality"`
}

// Mean returns the arithmetic mean of the five axes.
func (s Scores) Mean() float64 {
	return (s.Consistency + s.Logic + s.Character + s.Plot + s.Quality) / 5
}

// ReviewResult is the reviewer's verdict on a draft.
type ReviewResult struct {
	Approved     bool     `json:"approved"`
	OverallScore float64  `json:"overall_score"`
	Scores       Scores   `json:"detailed_scores"`
	Feedback     string   `json:"feedback"`
	Issues       []string `json:"issues"`
}

// ConsistencyAnalysis is the result of one whole-novel consistency check.
type ConsistencyAnalysis struct {
	Issues  []string `json:"issues"`
	Score   float64  `json:"score"`
	Details string   `json:"details"`
}

// ConsistencyReport aggregates the whole-novel consistency checks.
type ConsistencyReport struct {
	Character     ConsistencyAnalysis `json:"character_consistency"`
	Timeline      ConsistencyAnalysis `json:"timeline_consistency"`
	Worldview     ConsistencyAnalysis `json:"worldview_consistency"`
	OverallRating string              `json:"overall_rating"`
}
