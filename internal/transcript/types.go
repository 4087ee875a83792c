package transcript

import "time"

// Sentence is one utterance inside a segment. Start/End are millisecond
// offsets from the beginning of the call; nil means the exporter omitted
// the offset and it is treated as zero for ordering.
type Sentence struct {
	Start *int64 `json:"start"`
	End   *int64 `json:"end"`
	Text  string `json:"text"`
}

// Segment is a contiguous block of sentences attributed to one speaker and
// one topic label, as delimited by the export itself. A new segment begins
// whenever the source marks a new speaker/topic unit, even if the same
// speaker keeps talking.
type Segment struct {
	SpeakerID string     `json:"speaker_id"`
	Topic     string     `json:"topic"`
	Sentences []Sentence `json:"sentences"`
}

// RawCall is one recorded conversation as exported
type RawCall struct {
	CallID   string    `json:"call_id"`
	Segments []Segment `json:"segments"`
}

// Profile is a user directory entry. The directory may hold several
// historical entries per id; the newest CreatedAt wins for display.
type Profile struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Export is the full bulk export file: calls plus the user directory
type Export struct {
	Calls []RawCall `json:"calls"`
	Users []Profile `json:"users"`
}

// NormalizedCall is the denormalized, analytics-ready record per call
type NormalizedCall struct {
	CallID          string
	Transcript      string
	StartSeconds    int64
	EndSeconds      int64
	DurationMinutes float64
	SpeakerCount    int
	SentenceCount   int
	Participants    string
	Emails          string
	CustomerEmails  string
	Topics          string
	Domains         string
}

// SkippedCall records a call excluded from the output and why, so absence
// of a row is never silent.
type SkippedCall struct {
	CallID string
	Reason string
}

// Report summarizes one normalization run
type Report struct {
	CallsIn  int
	CallsOut int
	Skipped  []SkippedCall
}
