package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"displaymode/internal/display"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// format returns the output format. --json wins over --output.
func (a *app) format() (string, error) {
	if a.v.GetBool("json") {
		return formatJSON, nil
	}
	switch f := strings.ToLower(a.v.GetString("output")); f {
	case "", formatText:
		return formatText, nil
	case formatJSON, formatYAML:
		return f, nil
	default:
		return formatText, fmt.Errorf("unknown output format %q", f)
	}
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}
}

type displayJSON struct {
	Index   int    `json:"index" yaml:"index"`
	Name    string `json:"name" yaml:"name"`
	Source  string `json:"source" yaml:"source"`
	Primary bool   `json:"primary" yaml:"primary"`
	Adapter uint64 `json:"adapter" yaml:"adapter"`
	Target  uint32 `json:"target" yaml:"target"`
}

func newDisplayJSON(d display.Display) displayJSON {
	return displayJSON{
		Index:   d.Index,
		Name:    d.FriendlyName,
		Source:  d.SourceHandle,
		Primary: d.IsPrimary,
		Adapter: d.Identity.Adapter,
		Target:  d.Identity.Target,
	}
}

type modeJSON struct {
	Width       int    `json:"w" yaml:"w"`
	Height      int    `json:"h" yaml:"h"`
	Hz          int    `json:"hz" yaml:"hz"`
	Orientation string `json:"orientation" yaml:"orientation"`
	Bpp         int    `json:"bpp" yaml:"bpp"`
}

func newModeJSON(m display.Mode) modeJSON {
	return modeJSON{
		Width:       m.Width,
		Height:      m.Height,
		Hz:          m.RefreshHz,
		Orientation: m.Orientation.String(),
		Bpp:         m.BitsPerPixel,
	}
}

type outcomeJSON struct {
	Success bool   `json:"success" yaml:"success"`
	Changed bool   `json:"changed" yaml:"changed"`
	Message string `json:"message" yaml:"message"`
	State   string `json:"state" yaml:"state"`
	Display string `json:"display" yaml:"display"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newOutcomeJSON(o display.Outcome) outcomeJSON {
	out := outcomeJSON{
		Success: o.Success,
		Changed: o.Changed,
		Message: o.Message,
		State:   o.State.String(),
		Display: o.Display.SourceHandle,
	}
	if !o.Success && o.Err != nil {
		out.Error = display.KindOf(o.Err).String()
	}
	return out
}

type failureJSON struct {
	Success bool   `json:"success" yaml:"success"`
	Error   string `json:"error" yaml:"error"`
	Message string `json:"message" yaml:"message"`
}

func newFailureJSON(err error) failureJSON {
	return failureJSON{
		Error:   display.KindOf(err).String(),
		Message: err.Error(),
	}
}
