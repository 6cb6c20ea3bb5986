package assoc

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/quantgen/cisbma"
)

// loadFtrCoords reads a BED-like file (chr start end name ...) and fills
// in feature coordinates. BED starts are 0-based half-open and are stored
// 1-based inclusive. Every loaded feature must receive a coordinate.
func loadFtrCoords(path string, ftrs map[string]*Ftr) error {
	r, err := cisbma.OpenText(path)
	if err != nil {
		return err
	}
	defer r.Close()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	lineNo := 0
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo++
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return fmt.Errorf("%s line %d: expected at least 4 BED columns, got %d", path, lineNo, len(fields))
		}

		f, ok := ftrs[fields[3]]
		if !ok {
			continue
		}

		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("%s line %d: bad start %q: %v", path, lineNo, fields[1], err)
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return fmt.Errorf("%s line %d: bad end %q: %v", path, lineNo, fields[2], err)
		}

		f.Chr = fields[0]
		f.Start = start + 1
		f.End = end
	}
	if err := sc.Err(); err != nil {
		return pfx.Err(err)
	}

	for _, f := range ftrs {
		if f.Chr == "" {
			return fmt.Errorf("some features have no coordinate, eg. %s", f.Name)
		}
	}

	return nil
}
