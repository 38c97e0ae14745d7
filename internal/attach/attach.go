// internal/attach/attach.go
package attach

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
)

// Provider builds the attachment payload for one recipient. Consumed
// once per message; content generation itself is outside the dispatch
// engine.
type Provider interface {
	Build(ctx context.Context, recipient string) (filename string, data []byte, err error)
}

// MaxAttachmentSize is the largest payload the engine will hand to a
// transport. Most providers reject somewhere above this anyway.
const MaxAttachmentSize = 20 << 20

// DirProvider picks a random file from a directory per recipient, e.g.
// a ./pdfs or ./images pool.
type DirProvider struct {
	Dir      string
	Patterns []string // e.g. "*.pdf", "*.png"; empty means every file

	mu   sync.Mutex
	rand *rand.Rand
}

func NewDirProvider(dir string, patterns ...string) *DirProvider {
	return &DirProvider{
		Dir:      dir,
		Patterns: patterns,
		rand:     rand.New(rand.NewSource(int64(os.Getpid()))),
	}
}

func (p *DirProvider) Build(ctx context.Context, recipient string) (string, []byte, error) {
	files, err := p.candidates()
	if err != nil {
		return "", nil, &appErrors.AttachmentError{Err: err}
	}
	if len(files) == 0 {
		return "", nil, &appErrors.AttachmentError{Err: fmt.Errorf("no attachment files in %s", p.Dir)}
	}

	p.mu.Lock()
	pick := files[p.rand.Intn(len(files))]
	p.mu.Unlock()

	data, err := os.ReadFile(pick)
	if err != nil {
		return "", nil, &appErrors.AttachmentError{Filename: filepath.Base(pick), Err: err}
	}
	if len(data) > MaxAttachmentSize {
		return "", nil, &appErrors.AttachmentError{
			Filename: filepath.Base(pick),
			TooLarge: true,
			Err:      fmt.Errorf("%d bytes", len(data)),
		}
	}
	return filepath.Base(pick), data, nil
}

func (p *DirProvider) candidates() ([]string, error) {
	if len(p.Patterns) == 0 {
		p.Patterns = []string{"*"}
	}
	var files []string
	for _, pat := range p.Patterns {
		matches, err := filepath.Glob(filepath.Join(p.Dir, pat))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	// globs are sorted already; keep only regular files
	out := files[:0]
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// ContentType guesses the MIME type for an attachment filename.
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
