package scoring

import "github.com/okian/autograder/internal/domain/model"

// Lower bounds of each letter band, inclusive.
const (
	gradeABound = 90.0
	gradeBBound = 80.0
	gradeCBound = 70.0
	gradeDBound = 60.0
)

// Grade maps a 0-100 score to a letter. It is total: anything below 60,
// including NaN and negative input, is an F.
func Grade(score float64) model.Grade {
	switch {
	case score >= gradeABound:
		return model.GradeA
	case score >= gradeBBound:
		return model.GradeB
	case score >= gradeCBound:
		return model.GradeC
	case score >= gradeDBound:
		return model.GradeD
	default:
		return model.GradeF
	}
}
