// Package stats aggregates per-speaker message statistics and turns the
// leaders into superlative trivia questions.
package stats

import (
	"sort"
	"strings"

	"github.com/henzelabs/chattrivia/internal/chatdb"
)

// SpeakerStats is the per-speaker tally built in a single pass.
type SpeakerStats struct {
	Messages       int
	Chars          int
	Emojis         int
	CurseWords     int
	LateNight      int // messages sent before 06:00, judged on the UTC-anchored timestamp
	ReactionsGiven int
}

// Report holds the aggregated statistics for one batch of messages.
type Report struct {
	BySpeaker map[string]*SpeakerStats
	TopicHits map[string]map[string]int // topic -> speaker -> hits
}

var curseWords = []string{"fuck", "shit", "ass", "bitch", "damn"}

// DefaultTopics are the keyword groups tracked per speaker. Callers can pass
// their own set to Analyze.
var DefaultTopics = map[string][]string{
	"laughter": {"lmao", "lmfao", "haha"},
	"games":    {"pool", "farkle", "trivia"},
	"drinks":   {"drunk", "wasted", "passed out"},
}

// Analyze tallies messages and reactions per speaker. Topics may be nil.
func Analyze(msgs []chatdb.Message, reactions []chatdb.Reaction, topics map[string][]string) *Report {
	r := &Report{
		BySpeaker: make(map[string]*SpeakerStats),
		TopicHits: make(map[string]map[string]int),
	}

	for _, m := range msgs {
		s := r.speaker(m.SpeakerName)
		s.Messages++
		s.Chars += len(m.Text)
		s.Emojis += countEmojis(m.Text)

		lower := strings.ToLower(m.Text)
		for _, w := range curseWords {
			s.CurseWords += strings.Count(lower, w)
		}

		if !m.Timestamp.IsZero() && m.Timestamp.Hour() < 6 {
			s.LateNight++
		}

		for topic, keywords := range topics {
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					if r.TopicHits[topic] == nil {
						r.TopicHits[topic] = make(map[string]int)
					}
					r.TopicHits[topic][m.SpeakerName]++
					break
				}
			}
		}
	}

	for _, reaction := range reactions {
		r.speaker(reaction.ReactorName).ReactionsGiven++
	}

	return r
}

func (r *Report) speaker(name string) *SpeakerStats {
	s, ok := r.BySpeaker[name]
	if !ok {
		s = &SpeakerStats{}
		r.BySpeaker[name] = s
	}
	return s
}

// Leader returns the speaker with the highest value of the given metric and
// that value. Ties break alphabetically so repeated runs agree. ok is false
// when no speaker has a positive value.
func (r *Report) Leader(metric func(*SpeakerStats) int) (name string, count int, ok bool) {
	names := make([]string, 0, len(r.BySpeaker))
	for n := range r.BySpeaker {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		if v := metric(r.BySpeaker[n]); v > count {
			name, count = n, v
		}
	}
	return name, count, count > 0
}

// TopicLeader returns the speaker with the most hits for a topic.
func (r *Report) TopicLeader(topic string) (name string, count int, ok bool) {
	hits := r.TopicHits[topic]
	names := make([]string, 0, len(hits))
	for n := range hits {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		if hits[n] > count {
			name, count = n, hits[n]
		}
	}
	return name, count, count > 0
}

// emojiRanges are the unicode blocks counted as emoji, mirroring the usual
// emoticon / pictograph / transport / supplemental ranges.
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F300, 0x1F5FF}, // symbols & pictographs
	{0x1F680, 0x1F6FF}, // transport & map
	{0x1F1E6, 0x1F1FF}, // regional indicators
	{0x1F900, 0x1F9FF}, // supplemental
	{0x1FA00, 0x1FAFF}, // extended-A
	{0x2702, 0x27B0},   // dingbats
}

func countEmojis(text string) int {
	n := 0
	for _, r := range text {
		for _, br := range emojiRanges {
			if r >= br[0] && r <= br[1] {
				n++
				break
			}
		}
	}
	return n
}
