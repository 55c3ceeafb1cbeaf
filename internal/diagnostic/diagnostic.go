// Package diagnostic turns a violated rule into a keyed message and hands it
// to a reporting sink.
package diagnostic

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ludo-technologies/forbidscan/internal/callsite"
	"github.com/ludo-technologies/forbidscan/internal/rules"
)

// Message keys
const (
	// KeyWithArgCount is used when the violated rule constrains the argument count
	KeyWithArgCount = "forbid.certain.methods"

	// KeyNoArgCount is used when the violated rule matches any argument count
	KeyNoArgCount = "forbid.certain.methods.noarg"
)

// Assemble builds the message key and ordered arguments for a violation.
//
//	with count constraint:    [name, namePattern, argCount, argCountPattern, reason?]
//	without count constraint: [name, namePattern, reason?]
//
// The reason is appended only when the rule has one.
func Assemble(rule *rules.Rule, id callsite.Identity) (string, []any) {
	key := KeyNoArgCount
	args := []any{id.Name, rule.NamePattern()}

	if pattern, ok := rule.ArgCountPattern(); ok {
		key = KeyWithArgCount
		args = append(args, id.ArgCountString(), pattern)
	}

	if reason, ok := rule.Reason(); ok {
		args = append(args, reason)
	}
	return key, args
}

// Sink receives diagnostics. Line is 1-based, column is 1-based.
type Sink interface {
	Report(line, column int, key string, args ...any)
}

// Diagnostic is one reported violation
type Diagnostic struct {
	Line   int
	Column int
	Key    string
	Args   []any
}

// Message renders the diagnostic with Format
func (d Diagnostic) Message() string {
	return Format(d.Key, d.Args)
}

// Collector is an in-memory Sink, safe for concurrent use
type Collector struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

// Report implements Sink
func (c *Collector) Report(line, column int, key string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Line:   line,
		Column: column,
		Key:    key,
		Args:   append([]any(nil), args...),
	})
}

// Diagnostics returns the collected diagnostics in report order
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Len returns the number of collected diagnostics
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.diagnostics)
}

// Format renders a keyed message in English. Unknown keys fall back to the
// key followed by its arguments.
func Format(key string, args []any) string {
	switch key {
	case KeyWithArgCount:
		if len(args) < 4 {
			break
		}
		msg := fmt.Sprintf("Call to '%v' with %v arguments is forbidden: name matches '%v' and argument count matches '%v'",
			args[0], args[2], args[1], args[3])
		return withReason(msg, args, 4)
	case KeyNoArgCount:
		if len(args) < 2 {
			break
		}
		msg := fmt.Sprintf("Call to '%v' is forbidden: name matches '%v'", args[0], args[1])
		return withReason(msg, args, 2)
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, key)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, " ")
}

func withReason(msg string, args []any, reasonIndex int) string {
	if len(args) > reasonIndex {
		return fmt.Sprintf("%s. Reason: %v", msg, args[reasonIndex])
	}
	return msg
}
