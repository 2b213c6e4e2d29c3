package response

import "github.com/Guyuepp/placevote/domain"

type Vote struct {
	VoteCount int64   `json:"vote_count"`
	VoteScore float64 `json:"vote_score"`
	YourVote  *string `json:"your_vote"`
}

// FromDomain: Domain -> Response
func NewVoteFromDomain(r domain.VoteResult) Vote {
	res := Vote{
		VoteCount: r.VoteCount,
		VoteScore: r.VoteScore.Float64(),
	}
	if r.YourVote != nil {
		s := r.YourVote.String()
		res.YourVote = &s
	}
	return res
}
