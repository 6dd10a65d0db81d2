package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/clemire/liszt-in-terra/errors"
)

// OFFMesh is the decoded contents of a text OFF file: vertex positions
// and, for each face, its vertex indices (triangles only, per §6).
type OFFMesh struct {
	Vertices [][3]float64
	Faces    [][3]int
}

// ReadOFF parses the OFF text format: a literal "OFF" header line, a
// "nV nF 0" count line, nV "x y z" vertex lines, then nF "3 i j k"
// triangle lines. Any other leading face-vertex count is rejected
// with errors.IO — this runtime's mesh loader only ever handles
// triangulated surfaces.
func ReadOFF(r io.Reader) (*OFFMesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	line, ok := nextOFFLine(sc)
	if !ok || line != "OFF" {
		return nil, errors.E("off", errors.IO, "missing OFF header")
	}

	line, ok = nextOFFLine(sc)
	if !ok {
		return nil, errors.E("off", errors.IO, "missing counts line")
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, errors.E("off", errors.IO, "malformed counts line")
	}
	nV, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, errors.E("off", errors.IO, err)
	}
	nF, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, errors.E("off", errors.IO, err)
	}

	m := &OFFMesh{
		Vertices: make([][3]float64, nV),
		Faces:    make([][3]int, nF),
	}

	for i := 0; i < nV; i++ {
		line, ok = nextOFFLine(sc)
		if !ok {
			return nil, errors.E("off", errors.IO, fmt.Sprintf("truncated before vertex %d", i))
		}
		fields = strings.Fields(line)
		if len(fields) < 3 {
			return nil, errors.E("off", errors.IO, fmt.Sprintf("malformed vertex %d", i))
		}
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, errors.E("off", errors.IO, err)
			}
			m.Vertices[i][j] = v
		}
	}

	for i := 0; i < nF; i++ {
		line, ok = nextOFFLine(sc)
		if !ok {
			return nil, errors.E("off", errors.IO, fmt.Sprintf("truncated before face %d", i))
		}
		fields = strings.Fields(line)
		if len(fields) < 4 {
			return nil, errors.E("off", errors.IO, fmt.Sprintf("malformed face %d", i))
		}
		if fields[0] != "3" {
			return nil, errors.E("off", errors.IO, fmt.Sprintf("face %d is not a triangle", i))
		}
		for j := 0; j < 3; j++ {
			v, err := strconv.Atoi(fields[j+1])
			if err != nil {
				return nil, errors.E("off", errors.IO, err)
			}
			m.Faces[i][j] = v
		}
	}

	if err := sc.Err(); err != nil {
		return nil, errors.E("off", errors.IO, err)
	}
	return m, nil
}

// WriteOFF writes m back out in the format ReadOFF accepts.
func WriteOFF(w io.Writer, m *OFFMesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "OFF")
	fmt.Fprintf(bw, "%d %d 0\n", len(m.Vertices), len(m.Faces))
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%g %g %g\n", v[0], v[1], v[2])
	}
	for _, f := range m.Faces {
		fmt.Fprintf(bw, "3 %d %d %d\n", f[0], f[1], f[2])
	}
	return bw.Flush()
}

func nextOFFLine(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, true
	}
	return "", false
}
