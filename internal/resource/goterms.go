package resource

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// goColumn is the InterProScan TSV column carrying GO annotations.
const goColumn = 13

// ParseInterProScanGO collects the GO ids listed in an InterProScan TSV.
// The GO column holds "GO:0005524(InterPro)|GO:0016887(PANTHER)"; "-" means none.
func ParseInterProScanGO(r io.Reader) (map[string]struct{}, error) {
	terms := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) <= goColumn {
			continue
		}
		col := strings.TrimSpace(fields[goColumn])
		if col == "" || col == "-" {
			continue
		}
		for _, item := range strings.Split(col, "|") {
			id, _, _ := strings.Cut(item, "(")
			id = strings.TrimSpace(id)
			if strings.HasPrefix(id, "GO:") {
				terms[id] = struct{}{}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read interproscan output: %w", err)
	}
	return terms, nil
}
