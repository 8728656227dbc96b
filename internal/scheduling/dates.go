package scheduling

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var weekdayNames = map[string]time.Weekday{
	"domingo": time.Sunday,
	"segunda": time.Monday,
	"terca":   time.Tuesday,
	"quarta":  time.Wednesday,
	"quinta":  time.Thursday,
	"sexta":   time.Friday,
	"sabado":  time.Saturday,
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var (
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{4}))?$`)
)

// NormalizeDate resolves a free-form date expression against referenceNow and
// always returns a YYYY-MM-DD string. Unrecognized input resolves to the
// reference day: returning the raw input once leaked an unparsed weekday
// string into the appointments table and the insert failed silently.
func NormalizeDate(input string, referenceNow time.Time) string {
	text := normalizeText(input)

	switch text {
	case "hoje", "today":
		return referenceNow.Format(dateLayout)
	case "amanha", "tomorrow":
		return referenceNow.AddDate(0, 0, 1).Format(dateLayout)
	case "depois de amanha":
		return referenceNow.AddDate(0, 0, 2).Format(dateLayout)
	}

	if isoDateRe.MatchString(text) {
		if _, err := time.Parse(dateLayout, text); err == nil {
			return text
		}
	}

	if m := slashDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := referenceNow.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, referenceNow.Location())
			if d.Day() == day {
				return d.Format(dateLayout)
			}
		}
	}

	if weekday, ok := matchWeekday(text); ok {
		return nextWeekday(referenceNow, weekday).Format(dateLayout)
	}

	return referenceNow.Format(dateLayout)
}

// IsBusinessHours reports whether the dealership is open at the given
// instant: Mon-Fri 08:00-17:00, Sat 08:00-13:00, closed on Sunday.
func IsBusinessHours(t time.Time) bool {
	switch t.Weekday() {
	case time.Sunday:
		return false
	case time.Saturday:
		return t.Hour() >= 8 && t.Hour() < 13
	default:
		return t.Hour() >= 8 && t.Hour() < 17
	}
}

// NextBusinessDay returns the first future day the dealership opens at all.
// Saturday counts: only Sunday is a weekly closure.
func NextBusinessDay(referenceNow time.Time) time.Time {
	next := referenceNow.AddDate(0, 0, 1)
	for next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// nextWeekday finds the next strictly-future occurrence of the weekday. A
// request for "sexta" on a Friday means next week's Friday, never today.
func nextWeekday(referenceNow time.Time, weekday time.Weekday) time.Time {
	days := (int(weekday) - int(referenceNow.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return referenceNow.AddDate(0, 0, days)
}

func matchWeekday(text string) (time.Weekday, bool) {
	// "proxima terca", "terca-feira", "na quinta" all reduce to the bare name.
	text = strings.TrimPrefix(text, "na ")
	text = strings.TrimPrefix(text, "no ")
	text = strings.TrimPrefix(text, "proxima ")
	text = strings.TrimPrefix(text, "proximo ")
	text = strings.TrimPrefix(text, "next ")
	text = strings.TrimSuffix(text, "-feira")
	text = strings.TrimSuffix(text, " feira")
	if wd, ok := weekdayNames[text]; ok {
		return wd, true
	}
	return 0, false
}

// normalizeText lowercases and strips the accented characters that show up
// in WhatsApp date expressions.
func normalizeText(input string) string {
	text := strings.ToLower(strings.TrimSpace(input))
	replacer := strings.NewReplacer(
		"á", "a", "ã", "a", "â", "a", "à", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "õ", "o", "ô", "o",
		"ú", "u", "ç", "c",
	)
	return replacer.Replace(text)
}
