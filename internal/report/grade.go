package report

// Grade is a letter grade derived from the score.
type Grade string

const (
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeDPlus  Grade = "D+"
	GradeD      Grade = "D"
	GradeDMinus Grade = "D-"
	GradeF      Grade = "F"
)

type gradeBand struct {
	min   int
	grade Grade
	label string
}

// Ordered from best to worst; the first band whose minimum the score reaches
// wins.
var gradeBands = []gradeBand{
	{95, GradeA, "Excellent"},
	{90, GradeAMinus, "Excellent"},
	{87, GradeBPlus, "Great"},
	{83, GradeB, "Good"},
	{80, GradeBMinus, "Good"},
	{77, GradeCPlus, "Average"},
	{73, GradeC, "Average"},
	{70, GradeCMinus, "Average"},
	{67, GradeDPlus, "Below Average"},
	{63, GradeD, "Poor"},
	{60, GradeDMinus, "Poor"},
	{0, GradeF, "Failing"},
}

// GradeFor maps a 0-100 score to a letter grade.
func GradeFor(score int) Grade {
	for _, b := range gradeBands {
		if score >= b.min {
			return b.grade
		}
	}
	return GradeF
}

// Label is the human readable band name for the grade.
func (g Grade) Label() string {
	for _, b := range gradeBands {
		if b.grade == g {
			return b.label
		}
	}
	return ""
}
