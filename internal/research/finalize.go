package research

// Finalize assembles the public result from a completed run. If the image
// checker ran, its cleaned lists replace the raw validation output. A zero
// image count with non-empty pages is recomputed from the pages themselves
// so the count always matches what the caller can see.
func Finalize(st *RunState) *FinalResult {
	pages := st.ValidatedPages
	total := st.TotalImages
	if st.cleanedSet {
		pages = st.CleanedPages
		total = st.CleanedImageCount
	}

	if total == 0 {
		for _, p := range pages {
			total += len(p.ImageURLs)
		}
	}

	if pages == nil {
		pages = []ValidatedPage{}
	}
	invalid := st.InvalidURLs
	if invalid == nil {
		invalid = []InvalidURL{}
	}

	return &FinalResult{
		Product:              st.Query,
		SearchType:           st.SearchType,
		TotalChecked:         st.TotalChecked,
		TotalValidatedImages: total,
		ValidatedPages:       pages,
		InvalidURLs:          invalid,
	}
}
