package qasm

import (
	"fmt"
	"strconv"
	"strings"
)

// Annotation is an `@name payload` marker attached to a statement. The
// preprocessing stage upstream guarantees annotation names use the textual
// forms below; anything else is passed through untouched.
type Annotation struct {
	Name    string `json:"name"`
	Payload string `json:"payload,omitempty"`
}

// Reserved annotation names understood by the merger core.
const (
	AnnotationInput     = "leqo.input"
	AnnotationOutput    = "leqo.output"
	AnnotationDirty     = "leqo.dirty"
	AnnotationReusable  = "leqo.reusable"
	AnnotationUncompute = "leqo.uncompute"
)

// IsLeqo reports whether the annotation belongs to the merger core.
func (a Annotation) IsLeqo() bool {
	return strings.HasPrefix(a.Name, "leqo.")
}

// Input returns an `@leqo.input idx` annotation.
func Input(idx int) Annotation {
	return Annotation{Name: AnnotationInput, Payload: strconv.Itoa(idx)}
}

// Output returns an `@leqo.output idx` annotation.
func Output(idx int) Annotation {
	return Annotation{Name: AnnotationOutput, Payload: strconv.Itoa(idx)}
}

// Dirty returns an `@leqo.dirty` annotation covering all positions.
func Dirty() Annotation {
	return Annotation{Name: AnnotationDirty}
}

// Reusable returns an `@leqo.reusable` annotation covering all positions.
func Reusable() Annotation {
	return Annotation{Name: AnnotationReusable}
}

// Uncompute returns an `@leqo.uncompute` block marker.
func Uncompute() Annotation {
	return Annotation{Name: AnnotationUncompute}
}

// ParseIOIndex parses the payload of an input/output annotation: exactly one
// non-negative integer.
func ParseIOIndex(payload string) (int, error) {
	s := strings.TrimSpace(payload)
	if s == "" {
		return 0, fmt.Errorf("missing index")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("index %q is not an integer", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("index %d is negative", n)
	}
	return n, nil
}

// ParseIndexList parses a comma/range position list such as `1,3,5-7`.
// An empty payload returns (nil, nil) and denotes all positions.
func ParseIndexList(payload string) ([]int, error) {
	s := strings.TrimSpace(payload)
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty list element in %q", payload)
		}
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			n, err := strconv.Atoi(part)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("bad position %q", part)
			}
			out = append(out, n)
			continue
		}
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || start < 0 {
			return nil, fmt.Errorf("bad range start in %q", part)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil || end < start {
			return nil, fmt.Errorf("bad range end in %q", part)
		}
		for n := start; n <= end; n++ {
			out = append(out, n)
		}
	}
	return out, nil
}

// FindAnnotation returns the first annotation with name and whether one was
// found.
func FindAnnotation(stmt *Stmt, name string) (Annotation, bool) {
	for _, a := range stmt.Annotations {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// StripLeqoAnnotations removes all merger-core annotations from stmt,
// keeping any foreign ones.
func StripLeqoAnnotations(stmt *Stmt) {
	if len(stmt.Annotations) == 0 {
		return
	}
	kept := stmt.Annotations[:0]
	for _, a := range stmt.Annotations {
		if !a.IsLeqo() {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		stmt.Annotations = nil
		return
	}
	stmt.Annotations = kept
}
