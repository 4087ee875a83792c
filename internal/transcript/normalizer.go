package transcript

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"callsight/pkg/errors"
)

// Options controls normalization behavior
type Options struct {
	// InternalDomains are email domains excluded from the customer email list
	InternalDomains []string
}

// Normalize transforms raw per-call nested speaker/sentence data plus the
// user directory into one NormalizedCall per call. The whole batch either
// succeeds or fails; calls without renderable segments are skipped and
// listed in the report rather than dropped silently. Output is ordered by
// call id so reruns on unchanged input are byte-identical.
func Normalize(calls []RawCall, directory []Profile, opts Options) ([]NormalizedCall, *Report, error) {
	for i, call := range calls {
		if call.CallID == "" {
			return nil, nil, errors.New(errors.ErrCodeCallMissingID,
				fmt.Sprintf("Call at index %d has no call id", i)).
				WithContext("index", i)
		}
	}

	speakers := latestProfiles(directory)
	merged := mergeByCallID(calls)

	report := &Report{CallsIn: len(merged)}
	out := make([]NormalizedCall, 0, len(merged))

	for _, call := range merged {
		nc, skip := normalizeCall(call, speakers, opts)
		if skip != "" {
			report.Skipped = append(report.Skipped, SkippedCall{CallID: call.CallID, Reason: skip})
			continue
		}
		out = append(out, nc)
	}

	report.CallsOut = len(out)
	return out, report, nil
}

// latestProfiles reduces the directory to one profile per speaker id,
// picking the entry with the most recent creation timestamp.
func latestProfiles(directory []Profile) map[string]Profile {
	latest := make(map[string]Profile, len(directory))
	for _, p := range directory {
		if cur, ok := latest[p.ID]; !ok || p.CreatedAt.After(cur.CreatedAt) {
			latest[p.ID] = p
		}
	}
	return latest
}

// mergeByCallID groups segments of duplicate call ids, mirroring an
// aggregation keyed on call id, and returns calls sorted by id.
func mergeByCallID(calls []RawCall) []RawCall {
	byID := make(map[string]*RawCall)
	ids := make([]string, 0, len(calls))
	for _, call := range calls {
		if existing, ok := byID[call.CallID]; ok {
			existing.Segments = append(existing.Segments, call.Segments...)
			continue
		}
		c := call
		byID[call.CallID] = &c
		ids = append(ids, call.CallID)
	}

	sort.Strings(ids)
	out := make([]RawCall, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id])
	}
	return out
}

// renderedSegment is one segment with its sentences flattened
type renderedSegment struct {
	startMS   int64
	endMS     int64
	speakerID string
	topic     string
	text      string
}

func normalizeCall(call RawCall, speakers map[string]Profile, opts Options) (NormalizedCall, string) {
	segments := flattenSegments(call.Segments)
	if len(segments) == 0 {
		return NormalizedCall{}, "no segments with sentences"
	}

	// Segments are rendered in chronological order of their first sentence,
	// regardless of their position in the export.
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].startMS < segments[j].startMS
	})

	var (
		lines            []string
		startMS          = segments[0].startMS
		endMS            int64
		sentenceCount    int
		speakerIDs       = map[string]bool{}
		participantsSeen = map[string]bool{}
		participants     []string
		emailsSeen       = map[string]bool{}
		emails           []string
		topicsSeen       = map[string]bool{}
		topics           []string
		domainsSeen      = map[string]bool{}
		domains          []string
	)

	for _, seg := range segments {
		if seg.endMS > endMS {
			endMS = seg.endMS
		}

		profile, known := speakers[seg.speakerID]
		name := displayName(profile, known)

		lines = append(lines, fmt.Sprintf("[%s] %s: %s", formatOffset(seg.startMS), name, seg.text))

		// Approximate sentence count, split on ". " kept verbatim for
		// compatibility with downstream consumers.
		sentenceCount += len(strings.Split(seg.text, ". "))

		speakerIDs[seg.speakerID] = true

		participant := name
		if known && profile.Title != "" {
			participant = fmt.Sprintf("%s (%s)", name, profile.Title)
		}
		if !participantsSeen[participant] {
			participantsSeen[participant] = true
			participants = append(participants, participant)
		}

		if known && profile.Email != "" && !emailsSeen[profile.Email] {
			emailsSeen[profile.Email] = true
			emails = append(emails, profile.Email)

			if d := emailDomain(profile.Email); d != "" && !domainsSeen[d] {
				domainsSeen[d] = true
				domains = append(domains, d)
			}
		}

		if seg.topic != "" && !topicsSeen[seg.topic] {
			topicsSeen[seg.topic] = true
			topics = append(topics, seg.topic)
		}
	}

	customerEmails := make([]string, 0, len(emails))
	for _, email := range emails {
		if !isInternal(email, opts.InternalDomains) {
			customerEmails = append(customerEmails, email)
		}
	}

	durationMinutes := math.Round(float64(endMS-startMS)/1000/60*100) / 100

	return NormalizedCall{
		CallID:          call.CallID,
		Transcript:      strings.Join(lines, "\n\n"),
		StartSeconds:    startMS / 1000,
		EndSeconds:      endMS / 1000,
		DurationMinutes: durationMinutes,
		SpeakerCount:    len(speakerIDs),
		SentenceCount:   sentenceCount,
		Participants:    strings.Join(participants, ", "),
		Emails:          strings.Join(emails, "; "),
		CustomerEmails:  strings.Join(customerEmails, "; "),
		Topics:          strings.Join(topics, ", "),
		Domains:         strings.Join(domains, ", "),
	}, ""
}

// flattenSegments orders each segment's sentences by start offset and joins
// their texts with single spaces. Segments without sentences are dropped;
// they carry no ordering key and nothing to render.
func flattenSegments(segments []Segment) []renderedSegment {
	out := make([]renderedSegment, 0, len(segments))
	for _, seg := range segments {
		if len(seg.Sentences) == 0 {
			continue
		}

		sentences := make([]Sentence, len(seg.Sentences))
		copy(sentences, seg.Sentences)
		sort.SliceStable(sentences, func(i, j int) bool {
			return offsetOrZero(sentences[i].Start) < offsetOrZero(sentences[j].Start)
		})

		texts := make([]string, 0, len(sentences))
		startMS := offsetOrZero(sentences[0].Start)
		var endMS int64
		for _, s := range sentences {
			texts = append(texts, s.Text)
			if end := offsetOrZero(s.End); end > endMS {
				endMS = end
			}
		}

		out = append(out, renderedSegment{
			startMS:   startMS,
			endMS:     endMS,
			speakerID: seg.SpeakerID,
			topic:     seg.Topic,
			text:      strings.Join(texts, " "),
		})
	}
	return out
}

// offsetOrZero treats a missing offset as zero so ordering stays deterministic
func offsetOrZero(ms *int64) int64 {
	if ms == nil {
		return 0
	}
	return *ms
}

// formatOffset renders a millisecond offset as MM:SS. There is no hour
// component; minutes may exceed 59.
func formatOffset(ms int64) string {
	totalSeconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}

func displayName(p Profile, known bool) string {
	if !known {
		return "Unknown"
	}
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name == "" {
		return "Unknown"
	}
	return name
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}

func isInternal(email string, internalDomains []string) bool {
	domain := emailDomain(email)
	for _, d := range internalDomains {
		if strings.EqualFold(domain, d) {
			return true
		}
	}
	return false
}
