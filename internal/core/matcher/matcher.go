package matcher

// Match is one rule hit over tokens[Start:End].
type Match struct {
	Rule  *Rule
	Start int
	End   int
}

// Window returns the matched tokens.
func (m Match) Window(tokens []Token) []Token {
	return tokens[m.Start:m.End]
}

// FindAll runs every rule at every start position. The result is ordered by
// start, then by rule order.
func FindAll(rules []Rule, tokens []Token) []Match {
	var out []Match
	for start := range tokens {
		for i := range rules {
			if end, ok := rules[i].MatchAt(tokens, start); ok {
				out = append(out, Match{Rule: &rules[i], Start: start, End: end})
			}
		}
	}
	return out
}
