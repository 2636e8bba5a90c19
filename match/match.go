// Package match defines MatchState, the captures-plus-slice context threaded
// through the Evaluator's recursion (§3, §4.5). A State value is immutable
// by construction: every mutation produces a new State rather than updating
// one in place, so sibling rule nodes can never observe each other's
// captures -- the sibling-isolation requirement from §9.
package match

// State is the captures/slice-window context passed down the recursive
// evaluation. Start/Stop follow the signed-index convention from §4.1:
// negative indices count from the end of the path's segment list, and a
// Stop of 0 means "to end".
type State struct {
	Captures []string
	Start    int
	Stop     int
}

// Initial returns the root MatchState for wholePath: a single capture (the
// whole path), and a window spanning the entire segment list.
func Initial(wholePath string) State {
	return State{
		Captures: []string{wholePath},
		Start:    0,
		Stop:     0,
	}
}

// WithCaptures returns a copy of s with Captures replaced. The receiver is
// left untouched.
func (s State) WithCaptures(captures []string) State {
	s.Captures = captures
	return s
}

// WithWindow returns a copy of s with Start/Stop replaced. The receiver is
// left untouched.
func (s State) WithWindow(start, stop int) State {
	s.Start = start
	s.Stop = stop
	return s
}

// ResolveWindow converts a (start, stop) pair using the signed-index
// semantics of §4.1/§4.5 into concrete, clamped slice bounds over a segment
// list of the given length: negative indices count from the end, and a
// stop of 0 means "to end". Per the §9 open question, start > effective
// stop collapses to an empty window rather than an error.
func ResolveWindow(start, stop, length int) (effStart, effStop int) {
	effStart = resolveIndex(start, length)
	if stop == 0 {
		effStop = length
	} else {
		effStop = resolveIndex(stop, length)
	}

	if effStart < 0 {
		effStart = 0
	}
	if effStart > length {
		effStart = length
	}
	if effStop < 0 {
		effStop = 0
	}
	if effStop > length {
		effStop = length
	}
	if effStart > effStop {
		effStart = effStop
	}
	return effStart, effStop
}

func resolveIndex(idx, length int) int {
	if idx < 0 {
		return length + idx
	}
	return idx
}
