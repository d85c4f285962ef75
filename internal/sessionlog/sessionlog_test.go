package sessionlog

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newLogger(hook *Hook) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.DebugLevel)
	l.AddHook(hook)
	return l
}

func TestHookRecordsInfoAndAbove(t *testing.T) {
	var buf Buffer
	var forwarded []Entry
	l := newLogger(NewHook(&buf, func(e Entry) { forwarded = append(forwarded, e) }))

	l.Debug("hidden")
	l.Info("saved")
	l.WithField("layer", "TILE-1").Error("render failed")

	entries := buf.View(Full)
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Message != "saved" || entries[0].Level != "info" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Message != "render failed layer=TILE-1" {
		t.Errorf("entry 1 message = %q", entries[1].Message)
	}
	if len(forwarded) != 2 {
		t.Errorf("forwarded %d entries", len(forwarded))
	}
}

func TestViewBriefShowsTail(t *testing.T) {
	var buf Buffer
	l := newLogger(NewHook(&buf, nil))
	for i := 0; i < BriefEntries+5; i++ {
		l.Infof("entry %d", i)
	}

	brief := buf.View(Brief)
	if len(brief) != BriefEntries {
		t.Fatalf("brief len = %d", len(brief))
	}
	if brief[0].Message != "entry 5" {
		t.Errorf("brief starts at %q", brief[0].Message)
	}
	if full := buf.View(Full); len(full) != BriefEntries+5 {
		t.Errorf("full len = %d", len(full))
	}
}

func TestViewIsACopy(t *testing.T) {
	var buf Buffer
	buf.Append(Entry{Message: "a"})
	v := buf.View(Full)
	v[0].Message = "changed"
	if buf.View(Full)[0].Message != "a" {
		t.Error("View exposed internal storage")
	}
}

func TestParseVerbosity(t *testing.T) {
	if ParseVerbosity("FULL") != Full || ParseVerbosity("brief") != Brief || ParseVerbosity("??") != Brief {
		t.Error("ParseVerbosity mismatch")
	}
	if fmt.Sprint(Full) != "full" {
		t.Errorf("String = %q", Full.String())
	}
	if !strings.Contains(Entry{Level: "warning", Message: "x"}.String(), "[WARNING] x") {
		t.Error("Entry.String format")
	}
}
