package transcript

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(v int64) *int64 { return &v }

func profile(id, first, last, email, title string, created time.Time) Profile {
	return Profile{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Email:     email,
		Title:     title,
		CreatedAt: created,
	}
}

var testDirectory = []Profile{
	profile("s1", "Alice", "Adams", "alice@acme.com", "Account Executive", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
	profile("s2", "Bob", "Brown", "bob@org.com", "CTO", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
}

func TestNormalizeTwoSegmentScenario(t *testing.T) {
	calls := []RawCall{
		{
			CallID: "call-1",
			Segments: []Segment{
				{
					SpeakerID: "s1",
					Topic:     "Introduction",
					Sentences: []Sentence{
						{Start: ms(0), End: ms(2000), Text: "Hello there."},
						{Start: ms(2000), End: ms(4000), Text: "How are you?"},
					},
				},
				{
					SpeakerID: "s2",
					Topic:     "Introduction",
					Sentences: []Sentence{
						{Start: ms(4000), End: ms(6000), Text: "I am well."},
					},
				},
			},
		},
	}

	out, report, err := Normalize(calls, testDirectory, Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, report.Skipped)

	call := out[0]
	assert.Equal(t, "call-1", call.CallID)
	assert.Equal(t,
		"[00:00] Alice Adams: Hello there. How are you?\n\n[00:04] Bob Brown: I am well.",
		call.Transcript)
	assert.Equal(t, int64(0), call.StartSeconds)
	assert.Equal(t, int64(6), call.EndSeconds)
	assert.Equal(t, 0.1, call.DurationMinutes)
	assert.Equal(t, 2, call.SpeakerCount)
	assert.Equal(t, 3, call.SentenceCount)
	assert.Equal(t, "Alice Adams (Account Executive), Bob Brown (CTO)", call.Participants)
	assert.Equal(t, "alice@acme.com; bob@org.com", call.Emails)
	assert.Equal(t, "Introduction", call.Topics)
	assert.Equal(t, "acme.com, org.com", call.Domains)
}

func TestNormalizeSegmentOrderedByTimestamp(t *testing.T) {
	// Input array order is [A@5000, B@1000, C@9000]; rendering must follow
	// the timestamps, not the array.
	calls := []RawCall{
		{
			CallID: "call-1",
			Segments: []Segment{
				{SpeakerID: "a", Sentences: []Sentence{{Start: ms(5000), End: ms(6000), Text: "second"}}},
				{SpeakerID: "b", Sentences: []Sentence{{Start: ms(1000), End: ms(2000), Text: "first"}}},
				{SpeakerID: "c", Sentences: []Sentence{{Start: ms(9000), End: ms(9500), Text: "third"}}},
			},
		},
	}

	out, _, err := Normalize(calls, nil, Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t,
		"[00:01] Unknown: first\n\n[00:05] Unknown: second\n\n[00:09] Unknown: third",
		out[0].Transcript)
	assert.Equal(t, 3, out[0].SpeakerCount)
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00"},
		{4000, "00:04"},
		{88000, "01:28"},
		{59999, "00:59"},
		{60000, "01:00"},
		{3900000, "65:00"}, // minutes may exceed 59, no hour component
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatOffset(tt.ms))
		})
	}
}

func TestNormalizeLatestProfileWins(t *testing.T) {
	directory := []Profile{
		profile("s1", "Alice", "Adams", "alice@old.example", "Analyst", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		profile("s1", "Alice", "Adams-Lee", "alice@acme.com", "VP Sales", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	}

	calls := []RawCall{
		{
			CallID: "call-1",
			Segments: []Segment{
				{SpeakerID: "s1", Sentences: []Sentence{{Start: ms(0), End: ms(1000), Text: "Hi."}}},
			},
		},
	}

	out, _, err := Normalize(calls, directory, Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Contains(t, out[0].Transcript, "Alice Adams-Lee:")
	assert.Equal(t, "Alice Adams-Lee (VP Sales)", out[0].Participants)
	assert.Equal(t, "alice@acme.com", out[0].Emails)
}

func TestNormalizeUnknownSpeaker(t *testing.T) {
	calls := []RawCall{
		{
			CallID: "call-1",
			Segments: []Segment{
				{SpeakerID: "nobody", Sentences: []Sentence{{Start: ms(0), End: ms(1000), Text: "Hi."}}},
			},
		},
	}

	out, _, err := Normalize(calls, testDirectory, Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "[00:00] Unknown: Hi.", out[0].Transcript)
	assert.Equal(t, "Unknown", out[0].Participants)
	assert.Empty(t, out[0].Emails)
	assert.Empty(t, out[0].Domains)
}

func TestNormalizeCustomerEmailExclusion(t *testing.T) {
	calls := []RawCall{
		{
			CallID: "call-1",
			Segments: []Segment{
				{SpeakerID: "s1", Sentences: []Sentence{{Start: ms(0), End: ms(1000), Text: "Hello."}}},
				{SpeakerID: "s2", Sentences: []Sentence{{Start: ms(1000), End: ms(2000), Text: "Hi."}}},
			},
		},
	}

	out, _, err := Normalize(calls, testDirectory, Options{InternalDomains: []string{"org.com"}})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "alice@acme.com; bob@org.com", out[0].Emails)
	assert.Equal(t, "alice@acme.com", out[0].CustomerEmails)
}

func TestNormalizeSkipsCallsWithoutSegments(t *testing.T) {
	calls := []RawCall{
		{CallID: "empty-call"},
		{
			CallID: "good-call",
			Segments: []Segment{
				{SpeakerID: "s1", Sentences: []Sentence{{Start: ms(0), End: ms(1000), Text: "Hi."}}},
			},
		},
		{CallID: "hollow-call", Segments: []Segment{{SpeakerID: "s1"}}},
	}

	out, report, err := Normalize(calls, testDirectory, Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "good-call", out[0].CallID)

	assert.Equal(t, 3, report.CallsIn)
	assert.Equal(t, 1, report.CallsOut)
	require.Len(t, report.Skipped, 2)

	skipped := map[string]string{}
	for _, s := range report.Skipped {
		skipped[s.CallID] = s.Reason
	}
	assert.Contains(t, skipped, "empty-call")
	assert.Contains(t, skipped, "hollow-call")
}

func TestNormalizeMissingCallIDFailsBatch(t *testing.T) {
	calls := []RawCall{
		{
			CallID: "good-call",
			Segments: []Segment{
				{SpeakerID: "s1", Sentences: []Sentence{{Start: ms(0), End: ms(1000), Text: "Hi."}}},
			},
		},
		{CallID: ""},
	}

	out, report, err := Normalize(calls, testDirectory, Options{})
	assert.Error(t, err)
	assert.Nil(t, out)
	assert.Nil(t, report)
}

func TestNormalizeMissingOffsetsTreatedAsZero(t *testing.T) {
	calls := []RawCall{
		{
			CallID: "call-1",
			Segments: []Segment{
				{
					SpeakerID: "s1",
					Sentences: []Sentence{
						{Start: ms(3000), End: ms(4000), Text: "after"},
						{Text: "before"}, // no offsets, sorts to the front
					},
				},
			},
		},
	}

	out, _, err := Normalize(calls, testDirectory, Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "[00:00] Alice Adams: before after", out[0].Transcript)
	assert.Equal(t, int64(0), out[0].StartSeconds)
	assert.Equal(t, int64(4), out[0].EndSeconds)
}

func TestNormalizeIdempotent(t *testing.T) {
	calls := []RawCall{
		{
			CallID: "call-2",
			Segments: []Segment{
				{SpeakerID: "s2", Topic: "Pricing", Sentences: []Sentence{{Start: ms(60000), End: ms(65000), Text: "What does it cost?"}}},
			},
		},
		{
			CallID: "call-1",
			Segments: []Segment{
				{SpeakerID: "s1", Topic: "Demo", Sentences: []Sentence{{Start: ms(0), End: ms(5000), Text: "Let me show you."}}},
			},
		},
	}

	first, _, err := Normalize(calls, testDirectory, Options{InternalDomains: []string{"org.com"}})
	require.NoError(t, err)
	second, _, err := Normalize(calls, testDirectory, Options{InternalDomains: []string{"org.com"}})
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// Output is ordered by call id regardless of input order
	require.Len(t, first, 2)
	assert.Equal(t, "call-1", first[0].CallID)
	assert.Equal(t, "call-2", first[1].CallID)
}

func TestNormalizeMergesDuplicateCallIDs(t *testing.T) {
	calls := []RawCall{
		{
			CallID: "call-1",
			Segments: []Segment{
				{SpeakerID: "s1", Sentences: []Sentence{{Start: ms(0), End: ms(1000), Text: "Part one."}}},
			},
		},
		{
			CallID: "call-1",
			Segments: []Segment{
				{SpeakerID: "s2", Sentences: []Sentence{{Start: ms(2000), End: ms(3000), Text: "Part two."}}},
			},
		},
	}

	out, report, err := Normalize(calls, testDirectory, Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, report.CallsIn)
	assert.Equal(t, 2, out[0].SpeakerCount)
}

func TestNormalizeEndNotBeforeStart(t *testing.T) {
	for i := 0; i < 5; i++ {
		calls := []RawCall{
			{
				CallID: fmt.Sprintf("call-%d", i),
				Segments: []Segment{
					{SpeakerID: "s1", Sentences: []Sentence{
						{Start: ms(int64(i * 10000)), End: ms(int64(i*10000 + 500)), Text: "Hi."},
					}},
				},
			},
		}
		out, _, err := Normalize(calls, testDirectory, Options{})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.GreaterOrEqual(t, out[0].EndSeconds, out[0].StartSeconds)
	}
}

func TestNormalizeTopicsAndSentenceCount(t *testing.T) {
	calls := []RawCall{
		{
			CallID: "call-1",
			Segments: []Segment{
				{SpeakerID: "s1", Topic: "Discovery", Sentences: []Sentence{
					{Start: ms(0), End: ms(1000), Text: "Tell me about your stack. We run mostly on-prem."},
				}},
				{SpeakerID: "s2", Topic: "Pricing", Sentences: []Sentence{
					{Start: ms(2000), End: ms(3000), Text: "Pricing depends on seats."},
				}},
				{SpeakerID: "s1", Topic: "Discovery", Sentences: []Sentence{
					{Start: ms(4000), End: ms(5000), Text: "Understood."},
				}},
			},
		},
	}

	out, _, err := Normalize(calls, testDirectory, Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "Discovery, Pricing", out[0].Topics)
	// "Tell me about your stack. We run mostly on-prem." splits into 2,
	// the  other two segments into 1 each
	assert.Equal(t, 4, out[0].SentenceCount)
	// Same speaker in two authored segments stays two transcript lines
	assert.Len(t, strings.Split(out[0].Transcript, "\n\n"), 3)
}
