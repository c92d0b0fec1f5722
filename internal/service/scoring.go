package service

// Score deltas applied by dialogue transitions.
const (
	AcceptScore                = 20
	ConcludeBaseScore          = 10
	ChallengeSuccessRivalScore = 30
	ChallengeSuccessOwnScore   = 10
	ChallengeDefeatedScore     = 5
)
