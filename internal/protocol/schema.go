package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	stateSchema    = "state.schema.json"
	commandsSchema = "commands.schema.json"
)

// Validator checks payloads against the embedded wire schemas. It only checks
// shape; enum ranges are left to the decoders so that an out-of-range
// discriminant still surfaces as E_UNKNOWN_VARIANT.
type Validator struct {
	state    *jsonschema.Schema
	commands *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for _, name := range []string{stateSchema, commandsSchema} {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(name, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}
	st, err := c.Compile(stateSchema)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", stateSchema, err)
	}
	cmds, err := c.Compile(commandsSchema)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", commandsSchema, err)
	}
	return &Validator{state: st, commands: cmds}, nil
}

func (v *Validator) ValidateState(payload []byte) error {
	return validate(v.state, "state", payload)
}

func (v *Validator) ValidateCommands(payload []byte) error {
	return validate(v.commands, "commands", payload)
}

func validate(s *jsonschema.Schema, op string, payload []byte) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Decodef(op, "malformed json: %v", err)
	}
	if err := s.Validate(doc); err != nil {
		return Decodef(op, "schema: %v", err)
	}
	return nil
}
