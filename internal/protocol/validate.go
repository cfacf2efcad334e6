package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var clientSchemas = map[string]string{
	TypeHello:  "hello.schema.json",
	TypeRecord: "record.schema.json",
	TypeDone:   "done.schema.json",
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func compileSchemas() {
	compiled = map[string]*jsonschema.Schema{}
	for typ, name := range clientSchemas {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			compileErr = err
			return
		}
		s, err := jsonschema.CompileString(name, string(b))
		if err != nil {
			compileErr = fmt.Errorf("%s: %w", name, err)
			return
		}
		compiled[typ] = s
	}
}

// Validate checks a raw client message of type typ against its schema.
func Validate(typ string, raw []byte) error {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return compileErr
	}
	s, ok := compiled[typ]
	if !ok {
		return fmt.Errorf("unknown client message type %q", typ)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	return s.Validate(doc)
}
