package services

// AnalyzeImageLocal is the fallback draft used when the vision service is
// disabled or failing, so the listing form still gets pre-filled and the
// seller just edits instead of starting blank.
func AnalyzeImageLocal() *ListingDraft {
	return &ListingDraft{
		Title:       "Second-hand item",
		Description: "Used item in good condition. Please edit this description with details about the item, its age, and any visible wear.",
	}
}
