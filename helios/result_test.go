package helios

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWinners(t *testing.T) {
	absolute := yesNo()
	relative := yesNo()
	relative.ResultType = ResultRelative
	board := pickTwo()

	cases := []struct {
		name    string
		q       *Question
		counts  []uint64
		numCast uint64
		winners []int
	}{
		{"absolute majority", absolute, []uint64{6, 4}, 10, []int{0}},
		{"absolute needs more than half", absolute, []uint64{5, 5}, 10, []int{}},
		{"absolute counts abstentions", absolute, []uint64{5, 3}, 10, []int{}},
		{"absolute odd turnout", absolute, []uint64{5, 4}, 9, []int{0}},
		{"absolute short of majority", absolute, []uint64{4, 3}, 10, []int{}},
		{"relative plurality", relative, []uint64{4, 3}, 10, []int{0}},
		{"relative tie goes late", relative, []uint64{3, 3}, 10, []int{1}},
		{"top max", board, []uint64{1, 7, 3, 5}, 10, []int{1, 3}},
		{"approval is single winner", approval(), []uint64{2, 9, 4}, 10, []int{1}},
		{"no answers", absolute, nil, 0, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.winners, Winners(c.q, c.counts, c.numCast))
		})
	}
}

func TestPrettyResult(t *testing.T) {
	e := &Election{Questions: []*Question{yesNo(), pickTwo()}}
	pretty, err := e.PrettyResult([][]uint64{{1, 2}, {0, 3, 2, 1}}, 3)
	assert.NoError(t, err)
	assert.Len(t, pretty, 2)
	assert.Equal(t, &AnswerResult{Answer: "no", Count: 2, Winner: true}, pretty[0].Answers[1])
	assert.Equal(t, "board", pretty[1].Question)
	var won []string
	for _, a := range pretty[1].Answers {
		if a.Winner {
			won = append(won, a.Answer)
		}
	}
	assert.Equal(t, []string{"bob", "carol"}, won)

	_, err = e.PrettyResult([][]uint64{{1, 2}}, 3)
	assert.True(t, errors.Is(err, ErrTallyShape))
}
