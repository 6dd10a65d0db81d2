package log_test

import (
	"reflect"
	"testing"

	"github.com/clemire/liszt-in-terra/config"
	"github.com/clemire/liszt-in-terra/log"
)

// recorder is a test Outputter that records every published message
// in arrival order, standing in for a kernel-launch console or a
// ghost-channel diagnostic sink.
type recorder struct {
	messages []string
}

func (r *recorder) Output(calldepth int, s string) error {
	r.messages = append(r.messages, s)
	return nil
}

func TestLoggerTee(t *testing.T) {
	var control, compute recorder
	ctl := log.New(&control, log.InfoLevel)
	node1 := ctl.Tee(&compute, "node1: ")
	ctl.Printf("launched kernel centroid")
	node1.Error("ghost channel timeout")

	if got, want := control.messages, []string{"launched kernel centroid", "node1: ghost channel timeout"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := compute.messages, []string{"ghost channel timeout"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTeeChainsPrefixes(t *testing.T) {
	var out recorder
	root := log.New(&out, log.InfoLevel)
	root.Printf("ready")
	node1 := root.Tee(nil, "node1: ")
	node1.Printf("leased partition 0")
	worker3 := node1.Tee(nil, "worker3: ")
	worker3.Printf("done")

	want := []string{"ready", "node1: leased partition 0", "node1: worker3: done"}
	if got := out.messages; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLevelGating(t *testing.T) {
	var out recorder
	l := log.New(&out, log.ErrorLevel)
	l.Print("dropped: below ErrorLevel")
	l.Debug("dropped too")
	l.Error("partition 2 overflowed reserved capacity")
	l.Error("partition 3 overflowed reserved capacity")

	want := []string{"partition 2 overflowed reserved capacity", "partition 3 overflowed reserved capacity"}
	if got := out.messages; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	for _, level := range []log.Level{log.InfoLevel, log.DebugLevel} {
		if l.At(level) {
			t.Errorf("logger at %v, want below ErrorLevel", level)
		}
	}
	if !l.At(log.ErrorLevel) {
		t.Error("logger not at its own ErrorLevel")
	}
}

func TestMultiOutputterFansOut(t *testing.T) {
	var console, file recorder
	l := log.New(log.MultiOutputter(&console, &file), log.InfoLevel)
	l.Printf("mesh loaded: 10007 cells")
	want := []string{"mesh loaded: 10007 cells"}
	if got := console.messages; !reflect.DeepEqual(got, want) {
		t.Errorf("console: got %v, want %v", got, want)
	}
	if got := file.messages; !reflect.DeepEqual(got, want) {
		t.Errorf("file: got %v, want %v", got, want)
	}
}

func TestFromConfigGatesOnVerboseLogging(t *testing.T) {
	var out recorder
	quiet := log.FromConfig(&config.Config{VerboseLogging: false}, &out)
	quiet.Debugf("dependency dump: fields=[x y]")
	if len(out.messages) != 0 {
		t.Errorf("expected no debug output at default verbosity, got %v", out.messages)
	}

	verbose := log.FromConfig(&config.Config{VerboseLogging: true}, &out)
	verbose.Dependencies("centroid", []string{"pos(READ_ONLY)", "centroid(REDUCE)"})
	if len(out.messages) != 1 {
		t.Errorf("expected one dependency dump line, got %v", out.messages)
	}
}
