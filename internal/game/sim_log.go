package game

import (
	"fmt"
	"sort"
	"strings"
)

// SimLogEntry is one recorded simulation event.
type SimLogEntry struct {
	Tick     int
	Unit     string // "U3", or "--" for scene-wide events
	Category string // spawn, asset, select, command, move, marker
	Key      string
	Value    string
	NumVal   float64
}

// String renders the entry as one fixed-width line:
//
//	[T=042] U3   command   target           slot 2 (0.75,0.75)
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Unit, e.Category, e.Key, e.Value)
}

// LogQuery selects entries. Empty strings match anything; ToTick < 0 leaves
// the tick range open-ended.
type LogQuery struct {
	Category string
	Key      string
	Unit     string
	Contains string
	FromTick int
	ToTick   int
}

func (q LogQuery) matches(e SimLogEntry) bool {
	switch {
	case q.Category != "" && e.Category != q.Category:
		return false
	case q.Key != "" && e.Key != q.Key:
		return false
	case q.Unit != "" && e.Unit != q.Unit:
		return false
	case q.Contains != "" && !strings.Contains(e.Value, q.Contains):
		return false
	case e.Tick < q.FromTick:
		return false
	case q.ToTick >= 0 && e.Tick > q.ToTick:
		return false
	}
	return true
}

func eventQuery(category, key string) LogQuery {
	return LogQuery{Category: category, Key: key, ToTick: -1}
}

// SimLog is the in-memory event record of a run. Tests, the order panel and
// the headless report read it; nothing in the pipeline depends on it.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. Verbose logs also keep per-unit spawn and
// motion detail.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records an entry.
func (sl *SimLog) Add(tick int, unit, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Unit:     unit,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose is Add for detail entries; it drops them unless verbose.
func (sl *SimLog) AddVerbose(tick int, unit, category, key, value string, numVal float64) {
	if sl.verbose {
		sl.Add(tick, unit, category, key, value, numVal)
	}
}

// Entries returns the backing slice. Callers must not modify it.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Query returns the entries matching q in record order.
func (sl *SimLog) Query(q LogQuery) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if q.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory counts entries with the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	n := 0
	q := eventQuery(category, key)
	for _, e := range sl.entries {
		if q.matches(e) {
			n++
		}
	}
	return n
}

// HasEntry reports whether an entry with category and key has a value
// containing valueSubstr.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	q := eventQuery(category, key)
	q.Contains = valueSubstr
	for _, e := range sl.entries {
		if q.matches(e) {
			return true
		}
	}
	return false
}

// Format renders the whole log, one entry per line.
func (sl *SimLog) Format() string {
	return formatEntries(sl.entries)
}

func formatEntries(entries []SimLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary is a short snapshot of the scene plus per-category event counts.
func (sl *SimLog) Summary(tick int, sc *Scene) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)

	idle, moving := 0, 0
	for _, u := range sc.Units() {
		if u.State() == UnitMoving {
			moving++
		} else {
			idle++
		}
	}
	fmt.Fprintf(&sb, "Units: %d  idle=%d  moving=%d\n", sc.UnitCount(), idle, moving)
	fmt.Fprintf(&sb, "Selected: %s\n", sc.Selection)
	fmt.Fprintf(&sb, "Markers: selection=%d  feedback=%d\n",
		sc.MarkerCount(MarkerSelection), sc.MarkerCount(MarkerMoveFeedback))
	fmt.Fprintf(&sb, "Orders: %d  arrivals: %d\n",
		sl.CountCategory("command", "move"), sl.CountCategory("move", "arrived"))

	counts := map[string]int{}
	for _, e := range sl.entries {
		counts[e.Category]++
	}
	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	sb.WriteString("Events:")
	for _, c := range cats {
		fmt.Fprintf(&sb, " %s=%d", c, counts[c])
	}
	sb.WriteByte('\n')
	return sb.String()
}
