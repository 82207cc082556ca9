package view

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Garsondee/rts-command/internal/game"
)

func TestOrderLog_RingBufferKeepsNewest(t *testing.T) {
	ol := NewOrderLog()
	for i := 0; i < logMaxEntries+5; i++ {
		ol.Add(i, "--", "command", fmt.Sprintf("msg %d", i))
	}
	recent := ol.Recent()
	if len(recent) != logMaxEntries {
		t.Fatalf("expected %d entries, got %d", logMaxEntries, len(recent))
	}
	if recent[0].Tick != 5 || recent[len(recent)-1].Tick != logMaxEntries+4 {
		t.Fatalf("expected ticks 5..%d, got %d..%d", logMaxEntries+4, recent[0].Tick, recent[len(recent)-1].Tick)
	}
}

func TestOrderLog_SyncMirrorsCommandEvents(t *testing.T) {
	ts := game.NewTestSim(game.WithUnit(-1, 0), game.WithUnit(1, 0))
	ol := NewOrderLog()

	ts.SelectAll()
	ts.CommandMove(0, 2)
	ol.Sync(ts.SimLog)

	var cats []string
	for _, e := range ol.Recent() {
		cats = append(cats, e.Category+":"+strings.Fields(e.Message)[0])
	}
	joined := strings.Join(cats, " ")
	if !strings.Contains(joined, "select:changed") || !strings.Contains(joined, "command:move") {
		t.Fatalf("expected select and move entries, got %s", joined)
	}
	if strings.Contains(joined, "command:target") {
		t.Fatalf("per-unit targets should be skipped, got %s", joined)
	}

	before := len(ol.Recent())
	ol.Sync(ts.SimLog)
	if len(ol.Recent()) != before {
		t.Fatal("a second sync with no new events should add nothing")
	}
}

func TestOrderLog_SyncAfterLogReplaced(t *testing.T) {
	ts := game.NewTestSim(game.WithUnit(0, 0))
	ol := NewOrderLog()
	ts.SelectAll()
	ol.Sync(ts.SimLog)

	ts.SetSimLog(game.NewSimLog(false))
	ts.ClickAt(5, 5)
	ol.Sync(ts.SimLog)
	last := ol.Recent()[len(ol.Recent())-1]
	if last.Category != "select" {
		t.Fatalf("expected the new log's select entry, got %+v", last)
	}
}
