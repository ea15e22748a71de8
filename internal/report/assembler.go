package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/google/uuid"

	"github.com/Skufu/heartcheck/internal/heart"
)

// ErrUnsupportedFormat is returned for a document format with no renderer.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// WriteError means the report artifact could not be produced. No file is
// left behind when it is returned.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write report %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

var artifactName = regexp.MustCompile(`^heart-report-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.[a-z]+$`)

// Result is an assembled summary and the path of its freshly written
// document.
type Result struct {
	Summary
	Format string `json:"format"`
	Path   string `json:"-"`
}

// Assembler writes one new report file per call into dir.
type Assembler struct {
	dir       string
	renderers map[string]Renderer
}

// NewAssembler registers renderers by format. The first one is the default.
func NewAssembler(dir string, renderers ...Renderer) *Assembler {
	a := &Assembler{dir: dir, renderers: make(map[string]Renderer, len(renderers))}
	for _, r := range renderers {
		a.renderers[r.Format()] = r
	}
	return a
}

// Dir is where artifacts are written.
func (a *Assembler) Dir() string {
	return a.dir
}

// Formats lists the registered formats.
func (a *Assembler) Formats() []string {
	out := make([]string, 0, len(a.renderers))
	for f := range a.renderers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether format has a renderer.
func (a *Assembler) Supports(format string) bool {
	_, ok := a.renderers[format]
	return ok
}

// Assemble builds the summary for raw and p and writes it as a new document.
func (a *Assembler) Assemble(raw heart.RawInput, p heart.Prediction, format string) (*Result, error) {
	r, ok := a.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	s := Summarize(raw, p)
	path, err := a.write(r, s)
	if err != nil {
		return nil, err
	}
	return &Result{Summary: s, Format: format, Path: path}, nil
}

func (a *Assembler) write(r Renderer, s Summary) (path string, err error) {
	path = filepath.Join(a.dir, fmt.Sprintf("heart-report-%s.%s", uuid.NewString(), r.Format()))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := r.Render(f, s); err != nil {
		_ = f.Close()
		return "", &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}

// Lookup resolves a download name to an artifact path in dir. Names that do
// not look like generated artifacts are rejected.
func (a *Assembler) Lookup(name string) (string, bool) {
	if !artifactName.MatchString(name) {
		return "", false
	}
	path := filepath.Join(a.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
