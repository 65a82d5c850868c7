package compiler

import "strings"

// Optimize applies two peepholes to generated instruction text:
// adjacent +/- and >/< runs are coalesced so opposing pairs cancel, and
// consecutive identical clear-loops collapse to one (clearing an already
// cleared cell is a no-op). Program behavior is unchanged.
func Optimize(code string) string {
	return collapseClearLoopRuns(coalesceRuns(code))
}

// coalesceRuns folds each maximal run of +/- (or >/<) into its net
// effect.
func coalesceRuns(code string) string {
	var out strings.Builder
	out.Grow(len(code))
	i := 0
	for i < len(code) {
		switch c := code[i]; c {
		case '+', '-':
			delta := 0
			for i < len(code) && (code[i] == '+' || code[i] == '-') {
				if code[i] == '+' {
					delta++
				} else {
					delta--
				}
				i++
			}
			if delta > 0 {
				out.WriteString(strings.Repeat("+", delta))
			} else if delta < 0 {
				out.WriteString(strings.Repeat("-", -delta))
			}
		case '>', '<':
			delta := 0
			for i < len(code) && (code[i] == '>' || code[i] == '<') {
				if code[i] == '>' {
					delta++
				} else {
					delta--
				}
				i++
			}
			if delta > 0 {
				out.WriteString(strings.Repeat(">", delta))
			} else if delta < 0 {
				out.WriteString(strings.Repeat("<", -delta))
			}
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// collapseClearLoopRuns repeatedly removes duplicated adjacent
// clear-loops until a fixed point.
func collapseClearLoopRuns(code string) string {
	for {
		next, changed := collapseClearLoopRunsOnce(code)
		if !changed {
			return next
		}
		code = next
	}
}

func collapseClearLoopRunsOnce(code string) (string, bool) {
	jumps, ok := bracketPairs(code)
	if !ok {
		return code, false
	}

	var out strings.Builder
	out.Grow(len(code))
	changed := false
	i := 0
	for i < len(code) {
		c := code[i]
		if c != '[' {
			out.WriteByte(c)
			i++
			continue
		}
		end := jumps[i]
		loop := code[i : end+1]
		body := code[i+1 : end]
		if !isClearLoop(body) {
			out.WriteString(loop)
			i = end + 1
			continue
		}
		next := end + 1
		for next <= len(code)-len(loop) && code[next:next+len(loop)] == loop {
			changed = true
			next += len(loop)
		}
		out.WriteString(loop)
		i = next
	}
	return out.String(), changed
}

// bracketPairs maps each '[' index to its matching ']' index. Returns
// ok=false on imbalance, in which case the caller leaves code untouched
// (imbalance is diagnosed later at program construction).
func bracketPairs(code string) (map[int]int, bool) {
	pairs := make(map[int]int)
	var stack []int
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '[':
			stack = append(stack, i)
		case ']':
			if len(stack) == 0 {
				return nil, false
			}
			pairs[stack[len(stack)-1]] = i
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return nil, false
	}
	return pairs, true
}

// isClearLoop reports whether body only moves the pointer (net zero) and
// decrements the loop's home cell, i.e. the loop drains one cell to zero
// with no other effect.
func isClearLoop(body string) bool {
	if body == "" {
		return false
	}
	pointer := 0
	homeDecrements := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '>':
			pointer++
		case '<':
			pointer--
		case '+':
			if pointer == 0 {
				return false
			}
		case '-':
			if pointer == 0 {
				homeDecrements++
			}
		default:
			return false
		}
	}
	return pointer == 0 && homeDecrements > 0
}
