package models

import "time"

// Clip is a generated clip record pulled from the user's Airtable base.
// StorageKey, when present, locates the rendered file in object storage.
type Clip struct {
	ID            string
	Name          string
	Status        string
	Duration      string
	Size          string
	ViralityScore float64
	StorageKey    string
	CreatedAt     time.Time
}

// ClipAnalysis is the LLM-generated repurposing suggestion for a clip.
type ClipAnalysis struct {
	ClipID     string
	Suggestion string
	Model      string
}
