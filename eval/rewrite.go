package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dirschema/dirschema-go/pathnorm"
)

// rewritePath implements the "Rewrite semantics" paragraph of §4.5: resolve
// captures (falling back to an implicit "(.*)" match over the slice if no
// ancestor match ever fired), substitute numeric backreferences in
// template, and splice the rewritten slice back into the full segment
// sequence at [effStart:effStop].
func (e *Evaluator) rewritePath(segments []string, effStart, effStop int, template, slice string, captures []string, hasMatched bool) (string, error) {
	effectiveCaptures := captures
	if !hasMatched {
		re, err := e.compileRegex("(.*)")
		if err != nil {
			return "", err
		}
		effectiveCaptures = re.FindStringSubmatch(slice)
	}

	rewritten, err := substituteBackreferences(template, effectiveCaptures)
	if err != nil {
		return "", err
	}

	out := make([]string, 0, len(segments))
	out = append(out, segments[:effStart]...)
	if rewritten != "" {
		out = append(out, pathnorm.Split(rewritten)...)
	}
	out = append(out, segments[effStop:]...)
	return pathnorm.Join(out), nil
}

// substituteBackreferences replaces "\N" (N numeric) occurrences in
// template with captures[N], per "Substitute backreferences (numeric
// only...)". A literal backslash not followed by digits is passed through
// unchanged.
func substituteBackreferences(template string, captures []string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '\\' || i+1 >= len(template) {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(template) && template[j] >= '0' && template[j] <= '9' {
			j++
		}
		if j == i+1 {
			// Not a digit run: emit the backslash literally.
			b.WriteByte(c)
			continue
		}
		n, err := strconv.Atoi(template[i+1 : j])
		if err != nil {
			return "", fmt.Errorf("eval: malformed backreference in rewrite template %q", template)
		}
		if n < 0 || n >= len(captures) {
			return "", fmt.Errorf("eval: rewrite template %q references capture group %d, only %d available", template, n, len(captures)-1)
		}
		b.WriteString(captures[n])
		i = j - 1
	}
	return b.String(), nil
}
