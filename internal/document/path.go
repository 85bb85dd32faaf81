package document

import (
	"fmt"
	"strings"
)

type step struct {
	local      string
	descendant bool
}

// Path is a compiled lookup expression: local names separated by "/" for a
// child step or "//" for a descendant step, e.g. "NtryDtls/TxDtls" or
// "//RltdPties//Dbtr//Nm".
type Path struct {
	raw   string
	steps []step
}

// Compile parses expr into a Path.
func Compile(expr string) (Path, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Path{}, fmt.Errorf("empty path")
	}

	p := Path{raw: expr}
	rest := expr
	for rest != "" {
		descendant := false
		switch {
		case strings.HasPrefix(rest, "//"):
			descendant = true
			rest = rest[2:]
		case strings.HasPrefix(rest, "/"):
			rest = rest[1:]
		}

		end := strings.IndexByte(rest, '/')
		if end < 0 {
			end = len(rest)
		}
		local := rest[:end]
		if local == "" {
			return Path{}, fmt.Errorf("path '%s': empty segment", expr)
		}
		if strings.ContainsAny(local, " \t:[]@*()") {
			return Path{}, fmt.Errorf("path '%s': invalid segment '%s'", expr, local)
		}
		p.steps = append(p.steps, step{local: local, descendant: descendant})
		rest = rest[end:]
	}
	return p, nil
}

// MustCompile is Compile that panics on error. Meant for built-in tables.
func MustCompile(expr string) Path {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string {
	return p.raw
}
