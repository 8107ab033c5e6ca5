package detector

// Match describes one family that matched the inspected content.
type Match struct {
	Type        Family `json:"type"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Verdict is the aggregate detection result for one input. Matches are
// ordered by the fixed family iteration order, one entry per matched family.
type Verdict struct {
	Detected bool    `json:"detected"`
	Matches  []Match `json:"attacks"`
}

// Matcher classifies content against the ordered signature list of a single
// attack family.
type Matcher struct {
	family     Family
	category   string
	severity   string
	signatures []Signature
}

// Classify reports whether content matches any signature of this family and
// returns the description of the first matching signature in list order.
// Empty content never matches.
func (m *Matcher) Classify(content string) (bool, string) {
	if content == "" {
		return false, ""
	}
	for _, s := range m.signatures {
		if s.Pattern.MatchString(content) {
			return true, s.Description
		}
	}
	return false, ""
}

// Family returns the attack family this matcher covers.
func (m *Matcher) Family() Family { return m.family }

// Engine runs every family matcher against the same input and aggregates the
// result. Adding a family means appending a Matcher here; the engine itself
// holds no other state.
type Engine struct {
	matchers []*Matcher
}

// NewEngine builds the canonical engine with one matcher per attack family,
// iterated in fixed order: xss, sqli, cmdi, path_traversal.
func NewEngine() *Engine {
	return &Engine{
		matchers: []*Matcher{
			{family: FamilyXSS, category: "injection", severity: "high", signatures: xssSignatures},
			{family: FamilySQLi, category: "injection", severity: "critical", signatures: sqliSignatures},
			{family: FamilyCmdi, category: "injection", severity: "critical", signatures: cmdiSignatures},
			{family: FamilyPathTraversal, category: "access_control", severity: "high", signatures: pathTraversalSignatures},
		},
	}
}

// DetectAll classifies content against every family. A single input may match
// several families at once; every match is included. The verdict is a pure
// function of the input and the static signature lists.
func (e *Engine) DetectAll(content string) Verdict {
	v := Verdict{Matches: []Match{}}
	for _, m := range e.matchers {
		matched, description := m.Classify(content)
		if !matched {
			continue
		}
		v.Detected = true
		v.Matches = append(v.Matches, Match{
			Type:        m.family,
			Category:    m.category,
			Severity:    m.severity,
			Description: description,
		})
	}
	return v
}
