package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed board.schema.json
var boardSchemaJSON string

const boardSchemaURL = "https://kanboard.local/board.schema.json"

var boardSchema = mustCompileBoardSchema()

func mustCompileBoardSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(boardSchemaURL, strings.NewReader(boardSchemaJSON)); err != nil {
		panic(fmt.Sprintf("add board schema: %v", err))
	}
	schema, err := compiler.Compile(boardSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("compile board schema: %v", err))
	}
	return schema
}

// SchemaError lists every location where a stored document departs from
// the board schema.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "document does not match board schema: " + strings.Join(e.Problems, "; ")
}

// checkSchema parses data as generic JSON and validates it against the
// board schema.
func checkSchema(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	if dec.More() {
		return errors.New("parse document: trailing data")
	}

	err := boardSchema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	se := &SchemaError{}
	collectSchemaProblems(se, ve)
	return se
}

func collectSchemaProblems(se *SchemaError, ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		se.Problems = append(se.Problems, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaProblems(se, cause)
	}
}
