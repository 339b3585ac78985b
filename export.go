package helio

import (
	"fmt"
	"os"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// State is one exported simulation sample.
type State struct {
	Elapsed      float64
	Position     []float64
	Velocity     []float64
	FuelMass     float64
	Launched     bool
	DominantBody string
	OrbitType    string
}

// ExportConfig configures CSV streaming of simulation states.
type ExportConfig struct {
	Filename  string
	Epoch     time.Time
	Timestamp bool
	// CSVAppendHdr and CSVAppend extend each row with caller columns.
	CSVAppendHdr func() string
	CSVAppend    func(st State) string
}

// IsUseless reports whether this configuration exports anything at all.
func (c ExportConfig) IsUseless() bool {
	return c.Filename == ""
}

// StreamStates streams every received state to a CSV file, one row per tick,
// with the epoch-relative julian date in the first column. It consumes the
// channel until it is closed, so it should run in its own goroutine. Any file
// error is a panic, there is no point in continuing without the export.
func StreamStates(conf ExportConfig, stateChan <-chan State) {
	if conf.IsUseless() {
		for range stateChan {
		}
		return
	}
	name := conf.Filename
	if conf.Timestamp {
		name = fmt.Sprintf("%s-%d", name, time.Now().Unix())
	}
	f, err := os.Create(name + ".csv")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	hdr := "jd,elapsed,x,y,z,vx,vy,vz,fuel,launched,body,orbit"
	if conf.CSVAppendHdr != nil {
		hdr += "," + conf.CSVAppendHdr()
	}
	if _, err := f.WriteString(hdr + "\n"); err != nil {
		panic(err)
	}

	for st := range stateChan {
		jd := julian.TimeToJD(conf.Epoch.Add(time.Duration(st.Elapsed * float64(time.Second))))
		row := fmt.Sprintf("%f,%f,%f,%f,%f,%f,%f,%f,%f,%v,%s,%s", jd, st.Elapsed,
			st.Position[0], st.Position[1], st.Position[2],
			st.Velocity[0], st.Velocity[1], st.Velocity[2],
			st.FuelMass, st.Launched, st.DominantBody, st.OrbitType)
		if conf.CSVAppend != nil {
			row += "," + conf.CSVAppend(st)
		}
		if _, err := f.WriteString(row + "\n"); err != nil {
			panic(err)
		}
	}
}
