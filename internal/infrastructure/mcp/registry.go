package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/MuratKus/burbarshop/internal/domain/shared"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Handler runs a tool with arguments that already passed schema validation
// and had their defaults applied
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Handle adapts a typed function into a Handler by decoding the arguments into T
func Handle[T any](fn func(ctx context.Context, in T) (any, error)) Handler {
	return func(ctx context.Context, args json.RawMessage) (any, error) {
		var in T
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		return fn(ctx, in)
	}
}

// Tool is a named operation with a JSON Schema for its arguments
type Tool struct {
	Name        string
	Description string
	InputSchema string
	Handler     Handler
}

type registeredTool struct {
	Tool
	schema   *jsonschema.Schema
	defaults map[string]json.RawMessage
}

// Registry holds tools in declaration order
type Registry struct {
	tools []*registeredTool
	index map[string]*registeredTool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]*registeredTool)}
}

// Register compiles the tool's schema (draft 2020-12) and adds the tool
func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("mcp: tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("mcp: tool %s has no handler", tool.Name)
	}
	if _, exists := r.index[tool.Name]; exists {
		return fmt.Errorf("mcp: tool %s registered twice", tool.Name)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	schemaURL := fmt.Sprintf("https://burbarshop.local/tools/%s.schema.json", tool.Name)
	if err := c.AddResource(schemaURL, strings.NewReader(tool.InputSchema)); err != nil {
		return fmt.Errorf("mcp: tool %s schema load failed: %w", tool.Name, err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("mcp: tool %s schema compile failed: %w", tool.Name, err)
	}

	var decl struct {
		Type       any `json:"type"`
		Properties map[string]struct {
			Default json.RawMessage `json:"default"`
		} `json:"properties"`
	}
	if err := json.Unmarshal([]byte(tool.InputSchema), &decl); err != nil {
		return fmt.Errorf("mcp: tool %s schema is not valid JSON: %w", tool.Name, err)
	}
	if decl.Type != "object" {
		return fmt.Errorf("mcp: tool %s schema must describe an object", tool.Name)
	}
	defaults := make(map[string]json.RawMessage)
	for name, prop := range decl.Properties {
		if len(prop.Default) > 0 {
			defaults[name] = prop.Default
		}
	}

	rt := &registeredTool{Tool: tool, schema: compiled, defaults: defaults}
	r.tools = append(r.tools, rt)
	r.index[tool.Name] = rt
	return nil
}

// MustRegister is Register for static catalogs; it panics on a bad schema
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	return len(r.tools)
}

func (r *Registry) lookup(name string) (*registeredTool, bool) {
	t, ok := r.index[name]
	return t, ok
}

// descriptor is the tool as announced by tools/list
func (t *registeredTool) descriptor() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: json.RawMessage(t.InputSchema),
	}
}

// prepare applies schema defaults to args, validates the result and returns
// the normalized arguments
func (t *registeredTool) prepare(args json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, shared.NewValidationError(shared.FieldViolation{Field: "arguments", Message: "must be a JSON object"})
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, shared.NewValidationError(shared.FieldViolation{Field: "arguments", Message: "must be a JSON object"})
	}

	for name, raw := range t.defaults {
		if _, present := obj[name]; present {
			continue
		}
		d := json.NewDecoder(bytes.NewReader(raw))
		d.UseNumber()
		var v any
		if err := d.Decode(&v); err == nil {
			obj[name] = v
		}
	}

	if err := t.schema.Validate(obj); err != nil {
		return nil, toValidationError(err)
	}

	normalized, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	return normalized, nil
}

// toValidationError flattens a schema validation failure into one violation
// per failing field
func toValidationError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	var leaves []*jsonschema.ValidationError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			leaves = append(leaves, e)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)

	out := &shared.ValidationError{}
	seen := make(map[string]bool)
	add := func(field, msg string) {
		key := field + "\x00" + msg
		if seen[key] {
			return
		}
		seen[key] = true
		out.Add(field, msg)
	}
	for _, leaf := range leaves {
		field := fieldName(leaf.InstanceLocation)
		if names, ok := quotedNames(leaf.Message, "missing properties: "); ok {
			for _, n := range names {
				add(joinField(field, n), "is required")
			}
			continue
		}
		add(field, leaf.Message)
	}
	sort.SliceStable(out.Fields, func(i, j int) bool {
		return out.Fields[i].Field < out.Fields[j].Field
	})
	return out
}

// fieldName turns a JSON pointer such as "/items/0/qty" into "items.0.qty"
func fieldName(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return "arguments"
	}
	return strings.ReplaceAll(pointer, "/", ".")
}

func joinField(parent, name string) string {
	if parent == "arguments" {
		return name
	}
	return parent + "." + name
}

// quotedNames extracts 'a', 'b' from a message with the given prefix
func quotedNames(msg, prefix string) ([]string, bool) {
	if !strings.HasPrefix(msg, prefix) {
		return nil, false
	}
	var names []string
	for _, part := range strings.Split(strings.TrimPrefix(msg, prefix), ",") {
		name := strings.Trim(strings.TrimSpace(part), "'")
		if name != "" {
			names = append(names, name)
		}
	}
	return names, len(names) > 0
}
