package flat

import (
	"bufio"
	"path/filepath"
	"testing"
)

func TestFlatGZWriterRoundtrip(t *testing.T) {
	root := t.TempDir()
	f := NewFlatWithRoot(root).ForTrajectory("rye")

	w, err := f.NamedGZWriter(FixesFileName, nil)
	if err != nil {
		t.Fatal(err)
	}
	lines := []string{
		`{"type":"Feature","properties":{"Trajectory":"rye"}}`,
		`{"type":"Feature","properties":{"Trajectory":"rye"}}`,
	}
	for _, l := range lines {
		if _, err := w.Writer().Write([]byte(l + "\n")); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if !f.Exists() {
		t.Fatalf("missing dir %s", f.Path())
	}

	r, err := f.NamedGZReader(FixesFileName)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got := 0
	sc := bufio.NewScanner(r.Reader())
	for sc.Scan() {
		got++
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	if got != len(lines) {
		t.Errorf("lines = %d, want %d", got, len(lines))
	}
}

func TestFlatPathJoining(t *testing.T) {
	f := NewFlatWithRoot("/tmp/motiond-test").ForTrajectory("rye")
	want := filepath.Join("/tmp/motiond-test", "trajectories", "rye")
	if f.Path() != want {
		t.Errorf("path = %s, want %s", f.Path(), want)
	}
}

func TestGZReaderMissingFile(t *testing.T) {
	f := NewFlatWithRoot(t.TempDir())
	if _, err := f.NamedGZReader(FixesFileName); err == nil {
		t.Error("expected error for missing file")
	}
}
