// Package level parses room descriptions from XML or YAML documents.
package level

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingElement is returned when a required container is absent.
	ErrMissingElement = errors.New("missing required element")
	// ErrUnsupportedFormat is returned for documents no decoder recognises.
	ErrUnsupportedFormat = errors.New("unsupported level format")
)

// Record is one wall, spawn, cube, crest or exit entry: raw attribute values keyed by name.
type Record map[string]string

// String returns the raw attribute, or "" when absent.
func (r Record) String(name string) string {
	return r[name]
}

// Float parses the attribute as a decimal number.
//
// Postcondition: Absent or unparsable values yield 0.
func (r Record) Float(name string) float32 {
	v, ok := r[name]
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return 0
	}
	return float32(f)
}

// Int parses the attribute as a number truncated toward zero.
//
// Postcondition: Absent or unparsable values yield 0.
func (r Record) Int(name string) int {
	return int(r.Float(name))
}

// UnmarshalXML collects every attribute of the element into the record.
func (r *Record) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	rec := make(Record, len(start.Attr))
	for _, a := range start.Attr {
		rec[a.Name.Local] = a.Value
	}
	*r = rec
	return d.Skip()
}

// Description is the parsed content of one level document.
type Description struct {
	Walls  []Record
	Spawns []Record
	Cubes  []Record
	Crests []Record
	Exits  []Record
}

type xmlLevel struct {
	XMLName xml.Name   `xml:"level"`
	Walls   *xmlWalls  `xml:"walls"`
	Spawns  *xmlSpawns `xml:"spawns"`
	Cubes   *xmlCubes  `xml:"cubes"`
	Crests  *xmlCrests `xml:"crests"`
	Exits   *xmlExits  `xml:"exits"`
}

type xmlWalls struct {
	Items []Record `xml:"wall"`
}

type xmlSpawns struct {
	Items []Record `xml:"spawn"`
}

type xmlCubes struct {
	Items []Record `xml:"cube"`
}

type xmlCrests struct {
	Items []Record `xml:"crest"`
}

type xmlExits struct {
	Items []Record `xml:"exit"`
}

type yamlFile struct {
	Level *yamlLevel `yaml:"level"`
}

type yamlLevel struct {
	Walls  *[]Record `yaml:"walls"`
	Spawns []Record  `yaml:"spawns"`
	Cubes  []Record  `yaml:"cubes"`
	Crests []Record  `yaml:"crests"`
	Exits  *[]Record `yaml:"exits"`
}

// ParseXML decodes a level document in XML form.
//
// Postcondition: Returns a Description or an error wrapping ErrMissingElement
// when the walls or exits container is absent.
func ParseXML(data []byte) (*Description, error) {
	var doc xmlLevel
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing level XML: %w", err)
	}
	if doc.Walls == nil {
		return nil, fmt.Errorf("level/walls: %w", ErrMissingElement)
	}
	if doc.Exits == nil {
		return nil, fmt.Errorf("level/exits: %w", ErrMissingElement)
	}

	desc := &Description{
		Walls: doc.Walls.Items,
		Exits: doc.Exits.Items,
	}
	if doc.Spawns != nil {
		desc.Spawns = doc.Spawns.Items
	}
	if doc.Cubes != nil {
		desc.Cubes = doc.Cubes.Items
	}
	if doc.Crests != nil {
		desc.Crests = doc.Crests.Items
	}
	return desc, nil
}

// ParseYAML decodes a level document in YAML form.
//
// Postcondition: Returns a Description or an error wrapping ErrMissingElement
// when the level root, walls or exits are absent.
func ParseYAML(data []byte) (*Description, error) {
	var doc yamlFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing level YAML: %w", err)
	}
	if doc.Level == nil {
		return nil, fmt.Errorf("level: %w", ErrMissingElement)
	}
	if doc.Level.Walls == nil {
		return nil, fmt.Errorf("level/walls: %w", ErrMissingElement)
	}
	if doc.Level.Exits == nil {
		return nil, fmt.Errorf("level/exits: %w", ErrMissingElement)
	}
	return &Description{
		Walls:  *doc.Level.Walls,
		Spawns: doc.Level.Spawns,
		Cubes:  doc.Level.Cubes,
		Crests: doc.Level.Crests,
		Exits:  *doc.Level.Exits,
	}, nil
}

// EncodeYAML renders d in the YAML level form accepted by ParseYAML.
//
// Postcondition: walls and exits are always present, even when empty.
func EncodeYAML(d *Description) ([]byte, error) {
	walls := append([]Record{}, d.Walls...)
	exits := append([]Record{}, d.Exits...)
	data, err := yaml.Marshal(yamlFile{Level: &yamlLevel{
		Walls:  &walls,
		Spawns: d.Spawns,
		Cubes:  d.Cubes,
		Crests: d.Crests,
		Exits:  &exits,
	}})
	if err != nil {
		return nil, fmt.Errorf("encoding level YAML: %w", err)
	}
	return data, nil
}

// Parse selects a decoder by the extension of name. Any other extension
// (".level" and the like) is decoded as XML when the document starts with '<'.
//
// Postcondition: Documents that are neither named YAML nor look like XML yield ErrUnsupportedFormat.
func Parse(name string, data []byte) (*Description, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".xml":
		return ParseXML(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	if looksLikeXML(data) {
		return ParseXML(data)
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
}

func looksLikeXML(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) > 0 && data[0] == '<'
}

// Load reads and parses the level document at name inside fsys.
//
// Precondition: name must be a valid fs.FS path (slash separated, unrooted).
// Postcondition: Returns a Description or a non-nil error naming the file.
func Load(fsys fs.FS, name string) (*Description, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading level %s: %w", name, err)
	}
	desc, err := Parse(name, data)
	if err != nil {
		return nil, fmt.Errorf("loading level %s: %w", name, err)
	}
	return desc, nil
}
