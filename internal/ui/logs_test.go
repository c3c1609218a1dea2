package ui

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/five82/hoverdeck/internal/hoverfly"
)

func TestFormatLogItem(t *testing.T) {
	oldLocal := time.Local
	time.Local = time.FixedZone("TestLocal", -5*60*60)
	defer func() {
		time.Local = oldLocal
	}()

	var item hoverfly.LogsItem
	raw := `{"time":"2023-11-14T22:13:20Z","level":"info","msg":" Proxy prepared... ","destination":".","mode":"simulate","port":"8500"}`
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := formatLogItem(item)
	want := "2023-11-14 17:13:20 INFO  Proxy prepared...  destination=. mode=simulate port=8500"
	if got != want {
		t.Fatalf("formatLogItem = %q, want %q", got, want)
	}
}

func TestFormatLogItem_NoContextAndRawTime(t *testing.T) {
	item := hoverfly.LogsItem{Time: "yesterday", Level: "warn", Msg: "odd"}
	got := formatLogItem(item)
	if !strings.HasPrefix(got, "yesterday") {
		t.Fatalf("formatLogItem = %q, want raw time prefix", got)
	}
	if !strings.HasSuffix(got, "WARN  odd") {
		t.Fatalf("formatLogItem = %q, want no trailing context", got)
	}
}
