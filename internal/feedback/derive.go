package feedback

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// estimatedWPM converts a word count into a duration estimate when no timing is known.
	estimatedWPM = 150
	// defaultWPM stands in for the word count when the transcript is empty.
	defaultWPM = 180

	optimalMinSeconds = 60
	optimalMaxSeconds = 120

	paceSlowBelow = 130
	paceFastAbove = 160
)

// Metrics are the transcript-derived numbers shared by Derive and Validate.
type Metrics struct {
	TotalWords int     `json:"totalWords"`
	Seconds    int     `json:"seconds"`
	WPM        float64 `json:"wpm"`
}

// CountWords counts whitespace-delimited tokens.
func CountWords(transcript string) int {
	return len(strings.Fields(transcript))
}

// Derive fills the timing fields the model left out, using the transcript. Values the model
// supplied are kept; running Derive twice gives the same document.
func Derive(doc *Document, transcript string) Metrics {
	words := CountWords(transcript)
	l := &doc.Length

	if l.Seconds <= 0 {
		secs, ok := parseDuration(l.Duration)
		if !ok || secs <= 0 {
			secs = int(math.Round(float64(words) / estimatedWPM * 60))
		}
		l.Seconds = Count(secs)
		l.Duration = formatDuration(secs)
		l.OptimalRange = InOptimalRange(secs)
		l.Summary = lengthSummary(secs)
	} else if secs, ok := parseDuration(l.Duration); !ok || secs != int(l.Seconds) {
		l.Duration = formatDuration(int(l.Seconds))
	}

	p := &doc.PaceOfSpeech
	if p.WPM <= 0 {
		n := float64(words)
		if words == 0 {
			n = defaultWPM
		}
		minutes := float64(l.Seconds) / 60
		if minutes <= 0 {
			minutes = 1
		}
		p.WPM = math.Round(n / minutes)
		p.Summary = paceSummary(p.WPM)
	}

	return Metrics{TotalWords: words, Seconds: int(l.Seconds), WPM: p.WPM}
}

// InOptimalRange reports whether an answer length falls in the recommended window.
func InOptimalRange(seconds int) bool {
	return seconds >= optimalMinSeconds && seconds <= optimalMaxSeconds
}

func formatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// parseDuration reads "m:ss". ok is false for anything else.
func parseDuration(s string) (int, bool) {
	m, sec, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.Atoi(sec)
	if err != nil || seconds < 0 || seconds > 59 || len(sec) != 2 {
		return 0, false
	}
	return minutes*60 + seconds, true
}

func lengthSummary(seconds int) string {
	d := formatDuration(seconds)
	switch {
	case seconds < optimalMinSeconds:
		return fmt.Sprintf("Your answer ran %s, shorter than the recommended one to two minutes.", d)
	case seconds > optimalMaxSeconds:
		return fmt.Sprintf("Your answer ran %s, longer than the recommended one to two minutes.", d)
	default:
		return fmt.Sprintf("Your answer ran %s, within the recommended one to two minutes.", d)
	}
}

func paceSummary(wpm float64) string {
	switch {
	case wpm < paceSlowBelow:
		return fmt.Sprintf("You spoke at about %.0f words per minute, slower than a conversational pace.", wpm)
	case wpm > paceFastAbove:
		return fmt.Sprintf("You spoke at about %.0f words per minute, faster than a conversational pace.", wpm)
	default:
		return fmt.Sprintf("You spoke at about %.0f words per minute, a comfortable conversational pace.", wpm)
	}
}
