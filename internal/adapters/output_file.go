package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"confmerge/internal/ports"
	"confmerge/internal/types"
)

// OutputFileAdapter writes resolved documents to files or to Stdout.
type OutputFileAdapter struct {
	Stdout io.Writer
}

func NewOutputFileAdapter(stdout io.Writer) OutputFileAdapter {
	return OutputFileAdapter{Stdout: stdout}
}

func (a OutputFileAdapter) WriteDocument(path string, node *yaml.Node, format types.OutputFormat) error {
	data, err := EncodeDocument(node, format)
	if err != nil {
		return err
	}

	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		out := a.Stdout
		if out == nil {
			out = os.Stdout
		}
		if _, err := out.Write(data); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write document to stdout").
				WithCause(err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write document: " + path).
			WithCause(err)
	}
	return nil
}

// EncodeDocument renders node as YAML or JSON. JSON output keeps mapping
// keys in document order.
func EncodeDocument(node *yaml.Node, format types.OutputFormat) ([]byte, error) {
	if node == nil {
		node = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	switch format {
	case types.OutputFormatJSON:
		var buf bytes.Buffer
		if err := writeJSON(&buf, node); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode document as json").
				WithCause(err)
		}
		var out bytes.Buffer
		if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to indent json document").
				WithCause(err)
		}
		out.WriteByte('\n')
		return out.Bytes(), nil
	case types.OutputFormatYAML, "":
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(node); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode document as yaml").
				WithCause(err)
		}
		if err := encoder.Close(); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode document as yaml").
				WithCause(err)
		}
		return buf.Bytes(), nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported output format: %s", format))
	}
}

func writeJSON(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeJSON(buf, node.Content[0])
	case yaml.AliasNode:
		return writeJSON(buf, node.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, node.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		var value any
		if err := node.Decode(&value); err != nil {
			return err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return nil
}

var _ ports.DocumentWriterPort = OutputFileAdapter{}
