package grammar

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/dhamidi/gpeg/gpeg"
)

const requiresPragma = "//gpeg:requires"

// checkRequires verifies every //gpeg:requires line of a grammar against the
// runtime version.
func checkRequires(filename string, data []byte) error {
	have, err := semver.NewVersion(gpeg.Version)
	if err != nil {
		return fmt.Errorf("gpeg version %q: %w", gpeg.Version, err)
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		expr, ok := strings.CutPrefix(text, requiresPragma)
		if !ok {
			continue
		}
		c, err := semver.NewConstraint(strings.TrimSpace(expr))
		if err != nil {
			return fmt.Errorf("%s:%d: invalid requirement: %w", filename, line, err)
		}
		if !c.Check(have) {
			return fmt.Errorf("%s:%d: grammar requires gpeg %s, have %s", filename, line, c, have)
		}
	}
	return sc.Err()
}
