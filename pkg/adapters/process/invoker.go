// Package process runs steps as local processes.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"reflect"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// ErrCommandNotRegistered is returned for a step with neither a command nor a body.
var ErrCommandNotRegistered = errors.New("process: command not registered")

// Invoker is a ports.Invoker executing allow-listed commands.
//
// Arguments are passed as environment variables STEPWISE_ARG_<PARAM> and as
// one JSON object on stdin. Stdout is decoded into the step result type: JSON
// when it parses, the trimmed text otherwise. Steps without a command fall
// back to their Body.
type Invoker struct {
	commands map[string]Command
	baseDir  string
}

var _ ports.Invoker = (*Invoker)(nil)

// Option configures the invoker.
type Option func(*Invoker)

// WithCommands populates the allow-list from a loaded config.
func WithCommands(commands map[string]Command) Option {
	return func(inv *Invoker) {
		for step, c := range commands {
			inv.commands[step] = c
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) Option {
	return func(inv *Invoker) {
		inv.baseDir = dir
	}
}

// NewInvoker creates a process invoker.
func NewInvoker(opts ...Option) *Invoker {
	inv := &Invoker{commands: make(map[string]Command)}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Register binds step to a command.
func (inv *Invoker) Register(step, command string, args ...string) {
	inv.commands[step] = Command{Step: step, Command: command, Args: args}
}

func (inv *Invoker) Invoke(ctx context.Context, step *domain.Step, args []any) (any, error) {
	c, ok := inv.commands[step.Name]
	if !ok {
		if step.Body != nil {
			return step.Body(ctx, args)
		}
		return nil, fmt.Errorf("%w: %s", ErrCommandNotRegistered, step.Name)
	}

	named := make(map[string]any, len(step.Params))
	env := []string{"STEPWISE_STEP=" + step.Name}
	for i, p := range step.Params {
		if i >= len(args) {
			break
		}
		named[p.Name] = args[i]
		env = append(env, fmt.Sprintf("STEPWISE_ARG_%s=%s", strings.ToUpper(p.Name), envValue(args[i])))
	}
	for k, v := range c.Environment {
		env = append(env, k+"="+v)
	}
	stdin, err := json.Marshal(named)
	if err != nil {
		return nil, fmt.Errorf("process: encode arguments: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Dir = inv.baseDir
	cmd.Env = append(cmd.Environ(), env...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("process: %s: %w: %s", c.Command, err, strings.TrimSpace(stderr.String()))
	}
	return decodeOutput(strings.TrimSpace(stdout.String()), step.Result)
}

func envValue(v any) string {
	switch v.(type) {
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

func decodeOutput(output string, typ reflect.Type) (any, error) {
	var data any = output
	if strings.HasPrefix(output, "{") || strings.HasPrefix(output, "[") {
		var parsed any
		if err := json.Unmarshal([]byte(output), &parsed); err == nil {
			data = parsed
		}
	}
	if reflect.TypeOf(data).AssignableTo(typ) {
		return data, nil
	}

	out := reflect.New(typ)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out.Interface(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(data); err != nil {
		return nil, fmt.Errorf("process: decode %s: %w", domain.TypeName(typ), err)
	}
	return out.Elem().Interface(), nil
}
