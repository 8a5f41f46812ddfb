package display

import (
	"slices"
	"sort"

	"github.com/rs/zerolog"
)

// Catalog is the per-invocation view of the gateway's displays.
type Catalog struct {
	gw       Gateway
	log      zerolog.Logger
	snapshot []Display
}

// NewCatalog wraps gw. The first call to Displays takes the snapshot.
func NewCatalog(gw Gateway, log zerolog.Logger) *Catalog {
	return &Catalog{gw: gw, log: log}
}

// Displays returns a copy of the snapshot in gateway enumeration order.
func (c *Catalog) Displays() ([]Display, error) {
	if c.snapshot != nil {
		return slices.Clone(c.snapshot), nil
	}
	return c.Refresh()
}

// Refresh discards the snapshot and enumerates again.
func (c *Catalog) Refresh() ([]Display, error) {
	const op = "list displays"
	c.snapshot = nil

	raw, err := c.gw.Displays()
	if err != nil {
		return nil, Wrap(err, KindEnumeration, op, "display enumeration failed")
	}
	if len(raw) == 0 {
		return nil, New(KindEnumeration, op, "no active displays")
	}

	displays := make([]Display, len(raw))
	for i, d := range raw {
		d.Index = i
		displays[i] = d
	}
	c.log.Debug().Int("count", len(displays)).Msg("enumerated displays")

	c.snapshot = displays
	return slices.Clone(displays), nil
}

// Modes returns the supported-mode set of a display: de-duplicated on
// width, height, refresh and orientation, ascending.
func (c *Catalog) Modes(handle string) ([]Mode, error) {
	const op = "list modes"
	raw, err := c.gw.Modes(handle)
	if err != nil {
		return nil, Wrap(err, KindEnumeration, op, "mode enumeration failed for "+handle)
	}

	modes := UniqueModes(raw)
	if len(modes) == 0 {
		return nil, New(KindEnumeration, op, "no modes or failed to enumerate for "+handle)
	}
	c.log.Debug().Str("display", handle).Int("raw", len(raw)).Int("unique", len(modes)).Msg("enumerated modes")
	return modes, nil
}

// Resolve maps a selector onto one display. Direct handles skip enumeration.
func (c *Catalog) Resolve(selector string) (Display, error) {
	if IsHandle(selector, c.gw.HandlePrefix()) {
		return Display{SourceHandle: selector, Index: -1}, nil
	}

	displays, err := c.Displays()
	if err != nil {
		return Display{}, err
	}
	res := Resolve(selector, displays, c.gw.HandlePrefix())
	c.log.Debug().Str("selector", selector).Stringer("status", res.Status).Int("matches", len(res.Matches)).Msg("resolved selector")
	return res.Display, res.Err()
}

// UniqueModes de-duplicates modes on their Key and sorts them ascending.
// Duplicates keep the deepest color depth reported for the key.
func UniqueModes(raw []Mode) []Mode {
	seen := make(map[ModeKey]int, len(raw))
	out := make([]Mode, 0, len(raw))
	for _, m := range raw {
		k := m.Key()
		if i, ok := seen[k]; ok {
			if m.BitsPerPixel > out[i].BitsPerPixel {
				out[i].BitsPerPixel = m.BitsPerPixel
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key().Less(out[j].Key())
	})
	return out
}
