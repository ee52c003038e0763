package core

import (
	"fmt"
	"strings"

	"github.com/git-pkgs/purl"
)

// ParseIdentifier resolves a batch input identifier to a registry package
// name. Plain names pass through untouched; "pkg:npm/..." package URLs are
// parsed and their full name extracted (scope preserved, version ignored).
func ParseIdentifier(id string) (string, error) {
	if !strings.HasPrefix(id, "pkg:") {
		return id, nil
	}

	p, err := purl.Parse(id)
	if err != nil {
		return "", fmt.Errorf("parsing identifier %q: %w", id, err)
	}
	if p.Type != "npm" {
		return "", fmt.Errorf("unsupported package type %q in %q", p.Type, id)
	}

	if p.Namespace != "" {
		// purl keeps the @ in the namespace, so "@babel" + "/" + "core"
		return p.Namespace + "/" + p.Name, nil
	}
	return p.Name, nil
}
