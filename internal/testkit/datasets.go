package testkit

// ExamScores is the ten-student exam sample used in the descriptive statistics lesson.
func ExamScores() []float64 {
	return []float64{78, 85, 92, 67, 88, 91, 73, 84, 79, 86}
}

// StudyHours returns the study-hours (x) vs exam score (y) dataset from the regression lesson.
func StudyHours() (hours, scores []float64) {
	hours = []float64{2, 3, 5, 1, 4, 6, 7, 3.5, 8, 5.5, 2.5, 6.5}
	scores = []float64{62, 68, 75, 55, 72, 80, 86, 70, 91, 78, 64, 83}
	return hours, scores
}

// PollCounts is the 1000-voter poll: 520 for candidate A.
func PollCounts() (successes, n int) {
	return 520, 1000
}
