package http

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	errMalformedScript = errors.New("response is not a callback invocation")
	errUnknownCallback = errors.New("response names no registered callback")
	errForeignCallback = errors.New("response names another request's callback")
)

var callbackNameRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// callbackRegistry holds the completion handlers of in-flight script
// requests, keyed by their unique callback name.
type callbackRegistry struct {
	mu       sync.Mutex
	seq      uint64
	handlers map[string]func(payload []byte)
}

func newCallbackRegistry() *callbackRegistry {
	return &callbackRegistry{handlers: make(map[string]func([]byte))}
}

func (r *callbackRegistry) register(prefix string, handler func(payload []byte)) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := fmt.Sprintf("%s_%d_%s", prefix, r.seq, suffix)
	r.handlers[name] = handler
	return name
}

func (r *callbackRegistry) deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

func (r *callbackRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}

// dispatch runs the handler named by a `name(payload);` script body. The
// body answers the request that registered want; it may not complete any
// other request's callback.
func (r *callbackRegistry) dispatch(body []byte, want string) error {
	name, payload, err := parseCallbackScript(body)
	if err != nil {
		return err
	}
	if name != want {
		return fmt.Errorf("%w: got %s, want %s", errForeignCallback, name, want)
	}

	r.mu.Lock()
	handler, ok := r.handlers[name]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownCallback, name)
	}

	handler(payload)
	return nil
}

func parseCallbackScript(body []byte) (string, []byte, error) {
	script := bytes.TrimSpace(body)
	script = bytes.TrimPrefix(script, []byte("/**/"))
	script = bytes.TrimSuffix(script, []byte(";"))
	script = bytes.TrimSpace(script)

	open := bytes.IndexByte(script, '(')
	if open <= 0 || script[len(script)-1] != ')' {
		return "", nil, errMalformedScript
	}

	name := string(bytes.TrimSpace(script[:open]))
	if !callbackNameRegex.MatchString(name) {
		return "", nil, fmt.Errorf("%w: bad callback name %q", errMalformedScript, name)
	}

	return name, script[open+1 : len(script)-1], nil
}
