package lyrics

import (
	"bufio"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	stampRe  = regexp.MustCompile(`^\[(\d{1,2}):(\d{2})(?:\.(\d{1,3}))?\]`)
	wordRe   = regexp.MustCompile(`<(\d{1,2}):(\d{2})(?:\.(\d{1,3}))?>`)
	idTagRe  = regexp.MustCompile(`^\[([a-zA-Z#]+):(.*)\]$`)
	creditRe = regexp.MustCompile(`^[^:：]{1,24}[:：]\s*\S`)
)

// creditScanLines is how many leading lines are checked against the
// credit heuristic. Credits embedded as lyrics ("作词 : ...",
// "Lyricist: ...") sit at the top of the file.
const creditScanLines = 8

// Parse reads LRC text into a Document. It accepts plain line-synced
// LRC (`[mm:ss.xx]text`, multiple stamps per line) and enhanced LRC
// with inline word marks (`<mm:ss.xx>`). ID tags are collected into
// Tags; an `[offset:±ms]` tag shifts every timestamp. Lines come back
// sorted ascending by time, input order preserved for equal times.
func Parse(src string) Document {
	doc := Document{Tags: map[string]string{}}
	var offset float64

	scanner := bufio.NewScanner(strings.NewReader(src))
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		stamps, rest := leadingStamps(raw)
		if len(stamps) == 0 {
			if m := idTagRe.FindStringSubmatch(raw); m != nil {
				key := strings.ToLower(strings.TrimSpace(m[1]))
				val := strings.TrimSpace(m[2])
				if key == "offset" {
					ms, err := strconv.ParseFloat(val, 64)
					if err == nil {
						offset = ms / 1000
					}
					continue
				}
				doc.Tags[key] = val
			}
			continue
		}

		text, words := parseWords(rest)
		if text == "" {
			continue
		}
		for _, at := range stamps {
			ln := Line{Time: at, Text: text}
			if len(words) > 0 {
				// Repeated stamps must not alias one word slice:
				// closeWordRuns writes a different End per copy.
				ln.Words = append([]Word(nil), words...)
			}
			doc.Lines = append(doc.Lines, ln)
		}
	}

	if offset != 0 {
		for i := range doc.Lines {
			doc.Lines[i].Time += offset
			doc.Lines[i].Words = shiftWords(doc.Lines[i].Words, offset)
		}
	}

	sort.SliceStable(doc.Lines, func(i, j int) bool {
		return doc.Lines[i].Time < doc.Lines[j].Time
	})
	closeWordRuns(doc.Lines)
	markCredits(doc.Lines)
	return doc
}

// leadingStamps strips every `[mm:ss.xx]` prefix off a line and
// returns the timestamps plus the remaining text. Multiple stamps mean
// the same text repeats at each time (choruses).
func leadingStamps(s string) ([]float64, string) {
	var stamps []float64
	for {
		m := stampRe.FindStringSubmatch(s)
		if m == nil {
			break
		}
		stamps = append(stamps, stampSeconds(m[1], m[2], m[3]))
		s = s[len(m[0]):]
	}
	return stamps, s
}

// parseWords splits enhanced-LRC text on `<mm:ss.xx>` marks. Each mark
// starts one word running until the next mark; End is filled in later
// (next word's start, or the following line's time for the last word).
// Text without marks comes back with nil words.
func parseWords(s string) (string, []Word) {
	marks := wordRe.FindAllStringSubmatchIndex(s, -1)
	if len(marks) == 0 {
		return strings.TrimSpace(s), nil
	}

	var words []Word
	var text strings.Builder
	text.WriteString(s[:marks[0][0]])
	for i, m := range marks {
		end := len(s)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		seg := s[m[1]:end]
		if strings.TrimSpace(seg) == "" {
			continue
		}
		words = append(words, Word{
			Text:  seg,
			Start: stampSeconds(group(s, m, 1), group(s, m, 2), group(s, m, 3)),
		})
		text.WriteString(seg)
	}
	return strings.TrimSpace(text.String()), words
}

func group(s string, idx []int, n int) string {
	from, to := idx[2*n], idx[2*n+1]
	if from < 0 {
		return ""
	}
	return s[from:to]
}

// stampSeconds converts mm, ss and a fractional part to seconds. The
// fraction's digit count decides its unit: ".4" is 400ms, ".49" is
// 490ms, ".490" is 490ms.
func stampSeconds(mm, ss, frac string) float64 {
	min, _ := strconv.Atoi(mm)
	sec, _ := strconv.Atoi(ss)
	ms := 0
	if frac != "" {
		ms, _ = strconv.Atoi(frac)
		switch len(frac) {
		case 1:
			ms *= 100
		case 2:
			ms *= 10
		}
	}
	return float64(min*60+sec) + float64(ms)/1000
}

func shiftWords(words []Word, delta float64) []Word {
	if delta == 0 || len(words) == 0 {
		return words
	}
	out := make([]Word, len(words))
	for i, w := range words {
		w.Start += delta
		w.End += delta
		out[i] = w
	}
	return out
}

// closeWordRuns fills each word's End: the next word's start within
// the line, and for the last word the next line's time. A last line's
// final word gets a fixed run-out. Source data with out-of-order marks
// yields End < Start here; the karaoke progress math clamps that.
func closeWordRuns(lines []Line) {
	const lastWordRunOut = 2.0
	for i := range lines {
		words := lines[i].Words
		if len(words) == 0 {
			continue
		}
		for j := range words[:len(words)-1] {
			words[j].End = words[j+1].Start
		}
		last := &words[len(words)-1]
		switch {
		case i+1 < len(lines):
			last.End = lines[i+1].Time
		default:
			last.End = last.Start + lastWordRunOut
		}
		if last.End < last.Start {
			last.End = last.Start
		}
	}
}

// markCredits flags early "key: value" lines as metadata so credits
// shipped inside the lyric body never become the active line.
func markCredits(lines []Line) {
	head := lines
	if len(head) > creditScanLines {
		head = head[:creditScanLines]
	}
	for i := range head {
		if len(head[i].Words) == 0 && creditRe.MatchString(head[i].Text) {
			head[i].Metadata = true
		}
	}
}
