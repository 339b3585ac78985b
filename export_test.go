package helio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStreamStatesCSV(t *testing.T) {
	name := filepath.Join(t.TempDir(), "traj")
	conf := ExportConfig{
		Filename: name,
		Epoch:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CSVAppendHdr: func() string {
			return "note"
		},
		CSVAppend: func(st State) string {
			return "ok"
		},
	}
	ch := make(chan State, 2)
	ch <- State{Elapsed: 1, Position: []float64{1, 2, 3}, Velocity: []float64{4, 5, 6}, FuelMass: 100, Launched: true, DominantBody: "earth", OrbitType: "Suborbital"}
	ch <- State{Elapsed: 2, Position: []float64{7, 8, 9}, Velocity: []float64{1, 1, 1}, FuelMass: 99, Launched: true, DominantBody: "earth", OrbitType: "Suborbital"}
	close(ch)
	StreamStates(conf, ch)

	data, err := os.ReadFile(name + ".csv")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, expected header plus two rows", len(lines))
	}
	if lines[0] != "jd,elapsed,x,y,z,vx,vy,vz,fuel,launched,body,orbit,note" {
		t.Fatalf("header %q", lines[0])
	}
	for _, line := range lines[1:] {
		if !strings.HasSuffix(line, ",ok") {
			t.Fatalf("row %q misses the appended column", line)
		}
	}
	if !strings.Contains(lines[1], "1.000000,2.000000,3.000000") {
		t.Fatalf("row %q misses the position", lines[1])
	}
}

func TestStreamStatesUseless(t *testing.T) {
	if !(ExportConfig{}).IsUseless() {
		t.Fatal("an empty export config is useless")
	}
	// A useless config must still drain the channel.
	ch := make(chan State, 1)
	ch <- State{Position: []float64{0, 0, 0}, Velocity: []float64{0, 0, 0}}
	close(ch)
	StreamStates(ExportConfig{}, ch)
}
