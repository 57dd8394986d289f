package inference

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
	"github.com/CamiloThisPunk/PlanUnsch/internal/validation"
)

const maxTitleLength = 120

var (
	isoDateRegex     = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	numericDateRegex = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDateRegex   = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)

	titleTrimChars = " \t:-–—,;.|()[]"
)

// keyed by the first three letters of the month name
var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// keyword order matters: the first matching rule wins
var keywordRules = []struct {
	kind     models.EventType
	keywords []string
}{
	{models.EventTypeProject, []string{"project", "proyecto", "presentation", "capstone"}},
	{models.EventTypeExam, []string{"exam", "midterm", "final", "quiz", "test", "examen", "parcial"}},
	{models.EventTypeAssignment, []string{"assignment", "homework", "problem set", "hw", "essay", "paper", "report", "lab", "tarea", "entrega"}},
	{models.EventTypeReading, []string{"reading", "read", "chapter", "lectura", "capítulo"}},
}

// Heuristic finds dated lines without calling a model. It is the offline fallback.
type Heuristic struct {
	validator *validation.Validator
	now       func() time.Time
}

func NewHeuristic(v *validation.Validator, now func() time.Time) *Heuristic {
	if now == nil {
		now = time.Now
	}
	return &Heuristic{validator: v, now: now}
}

// Infer returns one candidate per line that carries a recognisable date.
func (h *Heuristic) Infer(ctx context.Context, text string) ([]models.Candidate, error) {
	year := h.now().Year()

	var raw []models.Candidate
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		date, span, ok := findDate(line, year)
		if !ok {
			continue
		}
		title := strings.Trim(line[:span[0]]+" "+line[span[1]:], titleTrimChars)
		title = strings.Join(strings.Fields(title), " ")
		if r := []rune(title); len(r) > maxTitleLength {
			title = string(r[:maxTitleLength])
		}
		raw = append(raw, models.Candidate{
			Title: title,
			Date:  date,
			Type:  classify(line),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning text: %w", err)
	}
	return Sanitize(h.validator, raw), nil
}

// findDate returns the first date on the line and its byte span.
func findDate(line string, defaultYear int) (models.Date, [2]int, bool) {
	if m := isoDateRegex.FindStringSubmatchIndex(line); m != nil {
		y, _ := strconv.Atoi(line[m[2]:m[3]])
		mo, _ := strconv.Atoi(line[m[4]:m[5]])
		d, _ := strconv.Atoi(line[m[6]:m[7]])
		return formatDate(y, mo, d), [2]int{m[0], m[1]}, true
	}
	if m := monthDateRegex.FindStringSubmatchIndex(line); m != nil {
		mo := months[strings.ToLower(line[m[2]:m[2]+3])]
		d, _ := strconv.Atoi(line[m[4]:m[5]])
		y := defaultYear
		if m[6] >= 0 {
			y, _ = strconv.Atoi(line[m[6]:m[7]])
		}
		return formatDate(y, int(mo), d), [2]int{m[0], m[1]}, true
	}
	if m := numericDateRegex.FindStringSubmatchIndex(line); m != nil {
		d, _ := strconv.Atoi(line[m[2]:m[3]])
		mo, _ := strconv.Atoi(line[m[4]:m[5]])
		y, _ := strconv.Atoi(line[m[6]:m[7]])
		return formatDate(y, mo, d), [2]int{m[0], m[1]}, true
	}
	return "", [2]int{}, false
}

// formatDate does not normalize overflow, so impossible dates fail validation later.
func formatDate(y, m, d int) models.Date {
	return models.Date(fmt.Sprintf("%04d-%02d-%02d", y, m, d))
}

func classify(line string) models.EventType {
	lower := " " + strings.ToLower(line) + " "
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if containsWord(lower, kw) {
				return rule.kind
			}
		}
	}
	return models.EventTypeOther
}

func containsWord(s, word string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], word)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(word)
		if !isLetter(s[start-1]) && (end >= len(s) || !isLetter(s[end])) {
			return true
		}
		i = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || b >= 0x80
}
