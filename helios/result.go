package helios

import (
	"fmt"
	"sort"
)

// Winners returns the winning answer indexes of one question.
//
// With max > 1 the top max answers win. Otherwise an absolute question needs
// a strict majority of the votes cast, and a relative one just the most votes.
// Ties rank the later answer first.
func Winners(q *Question, counts []uint64, numCast uint64) []int {
	if len(counts) == 0 {
		return nil
	}
	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ca, cb := counts[order[a]], counts[order[b]]
		if ca != cb {
			return ca > cb
		}
		return order[a] > order[b]
	})

	if q.Max != nil && *q.Max > 1 {
		n := *q.Max
		if n > len(order) {
			n = len(order)
		}
		return order[:n]
	}
	switch q.ResultType {
	case ResultRelative:
		return order[:1]
	default:
		if counts[order[0]] >= numCast/2+1 {
			return order[:1]
		}
		return []int{}
	}
}

type AnswerResult struct {
	Answer string `json:"answer"`
	Count  uint64 `json:"count"`
	Winner bool   `json:"winner"`
}

type QuestionResult struct {
	Question string          `json:"question"`
	Answers  []*AnswerResult `json:"answers"`
}

// PrettyResult labels the decrypted counts and marks the winners.
func (e *Election) PrettyResult(result [][]uint64, numCast uint64) ([]*QuestionResult, error) {
	if !shapeMatches(len(result), func(i int) int { return len(result[i]) }, e.shape()) {
		return nil, fmt.Errorf("%w: result does not match the election's questions", ErrTallyShape)
	}
	out := make([]*QuestionResult, len(e.Questions))
	for i, q := range e.Questions {
		winners := map[int]bool{}
		for _, w := range Winners(q, result[i], numCast) {
			winners[w] = true
		}
		qr := &QuestionResult{Question: q.ShortName, Answers: make([]*AnswerResult, len(q.Answers))}
		for j, a := range q.Answers {
			qr.Answers[j] = &AnswerResult{Answer: a, Count: result[i][j], Winner: winners[j]}
		}
		out[i] = qr
	}
	return out, nil
}
