// Package fixture implements a display gateway over a YAML document. It backs
// the tests and lets the CLI run on machines without a display server.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"displaymode/internal/display"
)

// DefaultHandlePrefix is used when the document does not name one.
const DefaultHandlePrefix = "DISPLAY"

// Document is the on-disk layout of a fixture.
type Document struct {
	HandlePrefix string    `yaml:"handle_prefix,omitempty"`
	Displays     []Display `yaml:"displays"`

	// Fault injection.
	FailEnumeration     bool  `yaml:"fail_enumeration,omitempty"`
	ApplyResult         int32 `yaml:"apply_result,omitempty"`
	IgnoreApply         bool  `yaml:"ignore_apply,omitempty"`
	FailReadsAfterApply bool  `yaml:"fail_reads_after_apply,omitempty"`
}

// Display is one fixture display.
type Display struct {
	Name      string `yaml:"name,omitempty"`
	Source    string `yaml:"source"`
	Primary   bool   `yaml:"primary,omitempty"`
	Adapter   uint64 `yaml:"adapter,omitempty"`
	Target    uint32 `yaml:"target,omitempty"`
	Current   *Mode  `yaml:"current,omitempty"`
	Persisted *Mode  `yaml:"persisted,omitempty"`
	Modes     []Mode `yaml:"modes,omitempty"`
}

// Mode is a fixture video mode. Rotation is in degrees.
type Mode struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	Hz       int `yaml:"hz"`
	Rotation int `yaml:"rotation,omitempty"`
	Bpp      int `yaml:"bpp,omitempty"`
}

func (m Mode) toDisplay() display.Mode {
	o, ok := display.OrientationFromDegrees(m.Rotation)
	if !ok {
		o = display.Landscape
	}
	return display.Mode{Width: m.Width, Height: m.Height, RefreshHz: m.Hz, Orientation: o, BitsPerPixel: m.Bpp}
}

func fromDisplay(m display.Mode) Mode {
	return Mode{Width: m.Width, Height: m.Height, Hz: m.RefreshHz, Rotation: m.Orientation.Degrees(), Bpp: m.BitsPerPixel}
}

// Gateway serves a Document. It is not safe for concurrent use.
type Gateway struct {
	doc     Document
	path    string
	log     zerolog.Logger
	applied bool
	calls   int
}

var _ display.Gateway = (*Gateway)(nil)

var (
	ErrUnknownHandle = errors.New("unknown display handle")
	ErrInjected      = errors.New("injected fixture failure")
)

// New returns an in-memory gateway over doc.
func New(doc Document) *Gateway {
	return &Gateway{doc: doc, log: zerolog.Nop()}
}

// Load reads a fixture file. Successful non-validating applies are written
// back to the same file.
func Load(path string, log zerolog.Logger) (*Gateway, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &Gateway{doc: doc, path: path, log: log}, nil
}

// Parse decodes a fixture document.
func Parse(data []byte) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode yaml: %w", err)
	}
	for i, d := range doc.Displays {
		if d.Source == "" {
			return Document{}, fmt.Errorf("display %d: source is required", i)
		}
	}
	return doc, nil
}

// Document returns a copy of the current state.
func (g *Gateway) Document() Document {
	doc := g.doc
	doc.Displays = append([]Display(nil), g.doc.Displays...)
	return doc
}

// ApplyCalls counts ApplyMode invocations, validate-only ones included.
func (g *Gateway) ApplyCalls() int { return g.calls }

func (g *Gateway) HandlePrefix() string {
	if g.doc.HandlePrefix != "" {
		return g.doc.HandlePrefix
	}
	return DefaultHandlePrefix
}

func (g *Gateway) Close() error { return nil }

func (g *Gateway) Displays() ([]display.Display, error) {
	if g.doc.FailEnumeration {
		return nil, ErrInjected
	}
	out := make([]display.Display, 0, len(g.doc.Displays))
	for _, d := range g.doc.Displays {
		out = append(out, display.Display{
			Identity:     display.Identity{Adapter: d.Adapter, Target: d.Target},
			FriendlyName: d.Name,
			SourceHandle: d.Source,
			IsPrimary:    d.Primary,
		})
	}
	return out, nil
}

func (g *Gateway) Modes(handle string) ([]display.Mode, error) {
	d, err := g.find(handle)
	if err != nil {
		return nil, err
	}
	// unrotated entries are offered at the current rotation
	out := make([]display.Mode, len(d.Modes))
	for i, m := range d.Modes {
		if m.Rotation == 0 && d.Current != nil {
			m.Rotation = d.Current.Rotation
		}
		out[i] = m.toDisplay()
	}
	return out, nil
}

func (g *Gateway) CurrentMode(handle string) (display.Mode, error) {
	if g.applied && g.doc.FailReadsAfterApply {
		return display.Mode{}, ErrInjected
	}
	d, err := g.find(handle)
	if err != nil {
		return display.Mode{}, err
	}
	if d.Current == nil {
		return display.Mode{}, fmt.Errorf("display %s has no current mode", handle)
	}
	return d.Current.toDisplay(), nil
}

// ApplyMode accepts target when it is one of the display's modes.
func (g *Gateway) ApplyMode(handle string, target display.Mode, mask display.FieldMask, flags display.ApplyFlags) (display.ResultCode, error) {
	g.calls++
	if g.doc.ApplyResult != 0 {
		return display.ResultCode(g.doc.ApplyResult), ErrInjected
	}

	d, err := g.find(handle)
	if err != nil {
		return display.ResultBadParam, err
	}
	if !d.supports(target) {
		return display.ResultBadMode, fmt.Errorf("%s does not offer %s", handle, target)
	}
	if flags.Has(display.FlagValidateOnly) {
		return display.ResultSuccessful, nil
	}

	g.applied = true
	if g.doc.IgnoreApply {
		return display.ResultSuccessful, nil
	}

	next := fromDisplay(target)
	if d.Current != nil && next.Bpp == 0 {
		next.Bpp = d.Current.Bpp
	}
	d.Current = &next
	if flags.Has(display.FlagPersist) {
		p := next
		d.Persisted = &p
	}
	g.log.Debug().Str("display", handle).Stringer("mask", mask).Stringer("mode", target).Msg("fixture mode applied")

	if err := g.save(); err != nil {
		return display.ResultNotUpdated, err
	}
	return display.ResultSuccessful, nil
}

// supports ignores rotation: every fixture display can rotate.
func (d *Display) supports(target display.Mode) bool {
	for _, m := range d.Modes {
		if m.Width == target.Width && m.Height == target.Height && m.Hz == target.RefreshHz {
			return true
		}
	}
	return false
}

func (g *Gateway) find(handle string) (*Display, error) {
	for i := range g.doc.Displays {
		if g.doc.Displays[i].Source == handle {
			return &g.doc.Displays[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
}

func (g *Gateway) save() error {
	if g.path == "" {
		return nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(g.doc); err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(g.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}
