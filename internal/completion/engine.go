//revive:disable:exported
package completion

import (
	"strings"
)

// Completion is a single suggestion for the path input.
type Completion struct {
	Text    string         // full replacement for the input, earlier segments included
	Display string         // the candidate path alone
	Kind    CompletionKind // field or index
	Score   int            // higher sorts first
}

// CompletionKind indicates what the candidate path ends in.
type CompletionKind int

const (
	CompletionField CompletionKind = iota // Object field/key
	CompletionIndex                       // Array index
)

const (
	scorePrefix    = 2
	scoreSubstring = 1
)

//revive:enable:exported

// Engine suggests paths from a fixed candidate list.
type Engine struct {
	candidates []string
}

// NewEngine dedupes candidates, keeping first occurrences in order.
func NewEngine(candidates []string) *Engine {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return &Engine{candidates: out}
}

// Candidates returns the deduplicated candidate list.
func (e *Engine) Candidates() []string { return append([]string(nil), e.candidates...) }

// Suggest matches the last comma-separated segment of input against the
// candidates. Prefix matches (case-insensitive) come first, then substring
// matches, each group in candidate order. Paths already named by an earlier
// segment are skipped. limit <= 0 means no limit.
func (e *Engine) Suggest(input string, limit int) []Completion {
	head, term := splitInput(input)
	needle := strings.ToLower(strings.TrimSpace(term))
	lead := term[:len(term)-len(strings.TrimLeft(term, " \t"))]

	used := make(map[string]struct{})
	if head != "" {
		for _, p := range strings.Split(head[:len(head)-1], ",") {
			used[strings.TrimSpace(p)] = struct{}{}
		}
	}

	var prefix, substr []Completion
	for _, c := range e.candidates {
		if _, ok := used[c]; ok {
			continue
		}
		lc := strings.ToLower(c)
		switch {
		case strings.HasPrefix(lc, needle):
			prefix = append(prefix, e.completion(head+lead, c, scorePrefix))
		case strings.Contains(lc, needle):
			substr = append(substr, e.completion(head+lead, c, scoreSubstring))
		}
	}

	out := append(prefix, substr...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (e *Engine) completion(head, path string, score int) Completion {
	kind := CompletionField
	if strings.HasSuffix(path, "]") {
		kind = CompletionIndex
	}
	return Completion{Text: head + path, Display: path, Kind: kind, Score: score}
}

// Suggest is a one-shot helper around NewEngine(paths).Suggest.
func Suggest(paths []string, input string, limit int) []Completion {
	return NewEngine(paths).Suggest(input, limit)
}

// splitInput returns everything up to and including the last comma, and the
// segment being typed after it.
func splitInput(input string) (head, term string) {
	i := strings.LastIndexByte(input, ',')
	if i < 0 {
		return "", input
	}
	return input[:i+1], input[i+1:]
}
