package research

// RunState is the mutable accumulator threaded through one product's run.
// It is created once per request, folded into by stage deltas, read by the
// finalizer and then discarded; nothing is shared across requests.
type RunState struct {
	Query      ProductQuery
	Plan       []SearchAttempt
	SearchType string // "barcode" or "sku"

	// Search stage: raw result of the current attempt, replaced each
	// iteration. AttemptIndex only ever increases.
	AttemptIndex  int
	CurrentResult string
	SearchOK      bool

	// Filter stage: replaced wholesale each iteration, never accumulated.
	FilteredURLs []string

	// Validation stage accumulators. Pages append-merge, invalid URLs merge
	// by URL with first-writer-wins, counters are additive.
	ValidatedPages []ValidatedPage
	InvalidURLs    []InvalidURL
	TotalImages    int
	TotalChecked   int

	// Image checker output: written once, replaces the raw lists wholesale
	// for the finalizer. cleanedSet distinguishes "ran, found nothing" from
	// "never ran".
	CleanedPages      []ValidatedPage
	CleanedImageCount int
	cleanedSet        bool

	seenInvalid map[string]bool
}

// NewRunState builds the initial accumulator for a normalized query.
func NewRunState(q ProductQuery) *RunState {
	return &RunState{
		Query:       q,
		Plan:        BuildPlan(q),
		SearchType:  SearchType(q),
		seenInvalid: make(map[string]bool),
	}
}

// Delta is one stage's contribution to the run state. Each field carries its
// own merge rule, applied uniformly by Apply; stages never poke at RunState
// directly.
type Delta struct {
	// AdvanceAttempt increments the attempt index (additive, only forward).
	AdvanceAttempt int

	// SetSearch replaces the current search result and success flag.
	SetSearch     bool
	CurrentResult string
	SearchOK      bool

	// SetFiltered replaces the filtered URL list wholesale.
	SetFiltered  bool
	FilteredURLs []string

	// Pages append-merge into the accumulated validated pages.
	Pages []ValidatedPage

	// Invalid merges by URL; the first reasoning recorded for a URL wins.
	Invalid []InvalidURL

	// Images and Checked add into the run counters.
	Images  int
	Checked int
}

// Apply folds a stage delta into the accumulator using the per-field merge
// rules declared on Delta.
func (s *RunState) Apply(d Delta) {
	s.AttemptIndex += d.AdvanceAttempt

	if d.SetSearch {
		s.CurrentResult = d.CurrentResult
		s.SearchOK = d.SearchOK
	}

	if d.SetFiltered {
		s.FilteredURLs = d.FilteredURLs
	}

	s.ValidatedPages = append(s.ValidatedPages, d.Pages...)

	for _, inv := range d.Invalid {
		if inv.URL == "" || s.seenInvalid[inv.URL] {
			continue
		}
		s.seenInvalid[inv.URL] = true
		s.InvalidURLs = append(s.InvalidURLs, inv)
	}

	s.TotalImages += d.Images
	s.TotalChecked += d.Checked
}

// SetCleaned records the image checker's output. Called at most once, after
// the loop is done.
func (s *RunState) SetCleaned(pages []ValidatedPage, imageCount int) {
	s.CleanedPages = pages
	s.CleanedImageCount = imageCount
	s.cleanedSet = true
}

// Exhausted reports whether every attempt in the plan has been consumed.
func (s *RunState) Exhausted() bool {
	return s.AttemptIndex >= len(s.Plan)
}

// Done is the loop continuation decision: stop once any image is confirmed
// or the plan is exhausted. The loop has no other exit path.
func (s *RunState) Done() bool {
	return s.TotalImages >= 1 || s.Exhausted()
}
