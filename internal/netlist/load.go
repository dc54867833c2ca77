package netlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"rtlgen/internal/ir"
)

// Format is the encoding of a design document.
type Format int

const (
	JSON Format = iota
	MsgPack
)

func (f Format) String() string {
	if f == MsgPack {
		return "msgpack"
	}
	return "json"
}

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".msgpack", ".mpk":
		return MsgPack, nil
	default:
		return JSON, fmt.Errorf("netlist: %s: unknown design file extension", path)
	}
}

// Decode parses and schema-checks a document.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case MsgPack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("netlist: decoding msgpack: %w", err)
		}
		// The schema speaks JSON; re-encode what was decoded.
		canonical, err := json.Marshal(&doc)
		if err != nil {
			return nil, fmt.Errorf("netlist: re-encoding document: %w", err)
		}
		data = canonical
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("netlist: decoding json: %w", err)
		}
	}
	schema, err := NewSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateJSON(data); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode writes doc in the given format.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case MsgPack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		enc.SetOmitEmpty(true)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("netlist: encoding msgpack: %w", err)
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("netlist: encoding json: %w", err)
		}
		return nil
	}
}

// ReadFile decodes the document stored at path.
func ReadFile(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("netlist: %w", err)
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadFile reads path and builds its design.
func LoadFile(path string) (*ir.Design, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	design, err := Build(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return design, nil
}
