package hunspell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/logging"
)

// ErrProtocol means the speller's output did not follow the ispell pipe
// protocol.
var ErrProtocol = errors.New("hunspell: protocol error")

// Speller checks single words.
type Speller interface {
	Check(word string) (correct bool, suggestions []string, err error)
	Close() error
}

// pipe speaks the ispell-compatible pipe protocol (hunspell -a).
type pipe struct {
	mu  sync.Mutex
	w   io.Writer
	out *bufio.Reader
}

// newPipe reads the banner line from r and returns a pipe writing requests
// to w.
func newPipe(w io.Writer, r io.Reader) (*pipe, error) {
	p := &pipe{w: w, out: bufio.NewReader(r)}
	if _, err := p.out.ReadString('\n'); err != nil {
		return nil, fmt.Errorf("%w: reading banner: %v", ErrProtocol, err)
	}
	return p, nil
}

// Check sends one word and parses the response:
//
//	*                  correct
//	+ root             correct by affix rules
//	-                  correct compound
//	& w n o: s1, s2    misspelled, with suggestions
//	# w o              misspelled, no suggestions
//
// A blank line ends the response.
func (p *pipe) Check(word string) (bool, []string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// The leading ^ keeps words starting with protocol commands literal.
	if _, err := fmt.Fprintf(p.w, "^%s\n", word); err != nil {
		return false, nil, fmt.Errorf("hunspell: write %q: %w", word, err)
	}

	correct := false
	var suggest []string
	for {
		line, err := p.out.ReadString('\n')
		if err != nil {
			return false, nil, fmt.Errorf("%w: response for %q ended early: %v", ErrProtocol, word, err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return correct, suggest, nil
		}

		switch line[0] {
		case '*', '+', '-':
			correct = true
		case '&':
			idx := strings.Index(line, ": ")
			if idx < 0 {
				return false, nil, fmt.Errorf("%w: malformed line %q", ErrProtocol, line)
			}
			for _, s := range strings.Split(line[idx+2:], ", ") {
				if s = strings.TrimSpace(s); s != "" {
					suggest = append(suggest, s)
				}
			}
		case '#':
		default:
			return false, nil, fmt.Errorf("%w: unexpected line %q", ErrProtocol, line)
		}
	}
}

func (p *pipe) Close() error { return nil }

// process is a hunspell subprocess behind a pipe. Its stderr is collected
// and logged when the process ends.
type process struct {
	*pipe
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	log    logging.Logger
}

// start runs the configured hunspell binary in pipe mode.
func (c *Checker) start(ctx context.Context, cfg *config.HunspellConfig) (Speller, error) {
	dict, err := dictionaryArg(cfg.Lang, cfg.SearchDirs)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, cfg.Binary, "-a", "-i", "UTF-8", "-d", dict)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("hunspell: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("hunspell: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("hunspell: start %s: %w", cfg.Binary, err)
	}

	p, err := newPipe(stdin, stdout)
	if err != nil {
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			c.log.Errorf("hunspell: %s: %s", cfg.Binary, msg)
			return nil, fmt.Errorf("%w (stderr: %s)", err, msg)
		}
		return nil, err
	}
	return &process{pipe: p, cmd: cmd, stdin: stdin, stderr: &stderr, log: c.log}, nil
}

func (p *process) Close() error {
	if err := p.stdin.Close(); err != nil {
		return fmt.Errorf("hunspell: close stdin: %w", err)
	}
	err := p.cmd.Wait()
	if msg := strings.TrimSpace(p.stderr.String()); msg != "" {
		p.log.Warnf("hunspell: %s", msg)
	}
	return err
}

// dictionaryArg returns the -d argument: the path prefix of <lang>.aff and
// <lang>.dic in the first search directory holding both, or lang itself to
// let hunspell use its default locations.
func dictionaryArg(lang string, dirs []string) (string, error) {
	if len(dirs) == 0 {
		return lang, nil
	}
	for _, dir := range dirs {
		base := filepath.Join(dir, lang)
		if fileExists(base+".aff") && fileExists(base+".dic") {
			return base, nil
		}
	}
	return "", fmt.Errorf("hunspell: no %s.aff/%s.dic in %s", lang, lang, strings.Join(dirs, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
