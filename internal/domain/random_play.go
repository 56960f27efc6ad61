package domain

// RandomPlaySession is the per-user progress of a random play run: the ids of
// quizzes answered correctly, in the order they were answered.
type RandomPlaySession struct {
	AnsweredIDs []string `json:"answered_ids"`
}

// NewRandomPlaySession returns an empty run.
func NewRandomPlaySession() *RandomPlaySession {
	return &RandomPlaySession{AnsweredIDs: []string{}}
}

// Score is the number of quizzes answered correctly so far.
func (s *RandomPlaySession) Score() int {
	return len(s.AnsweredIDs)
}

// Answered reports whether quizID is already part of the run.
func (s *RandomPlaySession) Answered(quizID string) bool {
	for _, id := range s.AnsweredIDs {
		if id == quizID {
			return true
		}
	}
	return false
}

// Record appends quizID to the run. Recording an id twice is a no-op, so a
// resubmitted correct answer cannot inflate the score.
func (s *RandomPlaySession) Record(quizID string) bool {
	if s.Answered(quizID) {
		return false
	}
	s.AnsweredIDs = append(s.AnsweredIDs, quizID)
	return true
}

// Reset empties the run.
func (s *RandomPlaySession) Reset() {
	s.AnsweredIDs = []string{}
}
