// Package cmdutil holds what the sub-commands share: reading and writing
// election objects, progress output and selection parsing.
package cmdutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fxamacker/cbor/v2"
	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-helios/crypto/random"
	"github.com/thechriswalker/go-helios/helios"
)

// Stdio is the path meaning stdin or stdout.
const Stdio = "-"

func isCBOR(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".cbor")
}

// ReadFile decodes path into v, as CBOR when the extension is .cbor and JSON
// otherwise. "-" reads JSON from stdin.
func ReadFile(path string, v interface{}) error {
	var b []byte
	var err error
	if path == Stdio {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return err
	}
	if isCBOR(path) {
		err = cbor.Unmarshal(b, v)
	} else {
		err = json.Unmarshal(b, v)
	}
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// WriteFile encodes v to path, the inverse of ReadFile. "-" writes indented
// JSON to stdout.
func WriteFile(path string, v interface{}) error {
	if path == Stdio || path == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	var b []byte
	var err error
	if isCBOR(path) {
		b, err = cbor.Marshal(v)
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(filepath.Clean(path), b, 0o600)
}

// ReadList reads a comma separated list of files into fresh values from mk.
func ReadList[T any](paths string, mk func() T) ([]T, error) {
	var out []T
	for _, p := range strings.Split(paths, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v := mk()
		if err := ReadFile(p, v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type maybeProgress struct {
	bar *pb.ProgressBar
}

// MaybeProgress only shows a bar for work large enough to want one.
func MaybeProgress(n int) *maybeProgress {
	mp := &maybeProgress{}
	if n > 50 {
		mp.bar = pb.ProgressBarTemplate(`{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{speed . }} {{etime . }}`).New(n)
		mp.bar.SetRefreshRate(time.Second)
	}
	return mp
}

func (mp *maybeProgress) Start() {
	if mp.bar != nil {
		mp.bar.Start()
	}
}

func (mp *maybeProgress) Increment() {
	if mp.bar != nil {
		mp.bar.Increment()
	}
}

// Add is safe to call from several goroutines, it fits helios.WithProgress.
func (mp *maybeProgress) Add(n int) {
	if mp.bar != nil {
		mp.bar.Add(n)
	}
}

func (mp *maybeProgress) Finish() {
	if mp.bar != nil {
		mp.bar.Finish()
	}
}

// ParseSelections reads "0;1,2;" as question 0 answer 0, question 1 answers 1
// and 2, question 2 blank.
func ParseSelections(s string) ([][]int, error) {
	parts := strings.Split(s, ";")
	out := make([][]int, len(parts))
	for i, p := range parts {
		out[i] = []int{}
		for _, a := range strings.Split(p, ",") {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			n, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("question %d: %w", i, err)
			}
			out[i] = append(out[i], n)
		}
	}
	return out, nil
}

const abstainScale = 1000000

// RandomSelections picks a valid random ballot, leaving questions with no
// minimum blank with probability abstain.
func RandomSelections(src io.Reader, e *helios.Election, abstain float64) [][]int {
	out := make([][]int, len(e.Questions))
	for i, q := range e.Questions {
		out[i] = []int{}
		if q.Min == 0 && float64(random.Int(src, big.NewInt(abstainScale)).Int64()) < abstain*abstainScale {
			continue
		}
		lo := q.Min
		if lo < 1 {
			lo = 1
		}
		n := lo + int(random.Int(src, big.NewInt(int64(q.MaxSelections()-lo+1))).Int64())
		// partial Fisher-Yates
		idx := make([]int, len(q.Answers))
		for j := range idx {
			idx[j] = j
		}
		for j := 0; j < n; j++ {
			k := j + int(random.Int(src, big.NewInt(int64(len(idx)-j))).Int64())
			idx[j], idx[k] = idx[k], idx[j]
		}
		out[i] = append(out[i], idx[:n]...)
	}
	return out
}
