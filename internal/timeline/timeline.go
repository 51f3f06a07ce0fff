// Package timeline models the raw module → activity hierarchy handed to the
// analytics engine. Values are read-only views over the source JSON.
package timeline

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/gantry/internal/meta"
)

// ErrInvalidJSON is returned when the timeline document is not valid JSON.
var ErrInvalidJSON = errors.New("timeline: invalid JSON")

// Timeline is an ordered list of modules.
type Timeline struct {
	Modules []Module
}

// Module groups activities under a module name and a group label.
type Module struct {
	Meta       meta.Record
	Activities []meta.Record
}

var (
	moduleNameKeys = meta.Keys{"moduleName", "parentModuleCode"}
	groupKeys      = meta.Keys{"groupName", "parentGroupName", "group", "groupCode", "groupId"}
)

// Parse decodes a timeline document. The modules array may be the document
// itself or sit under a "modules" or "timeline" key.
func Parse(data []byte) (Timeline, error) {
	if !gjson.ValidBytes(data) {
		return Timeline{}, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)
	if doc.IsObject() {
		for _, key := range []string{"modules", "timeline"} {
			if v := doc.Get(key); v.IsArray() {
				doc = v
				break
			}
		}
	}
	if !doc.IsArray() {
		return Timeline{}, fmt.Errorf("%w: expected an array of modules", ErrInvalidJSON)
	}

	var tl Timeline
	for _, m := range doc.Array() {
		mod := Module{Meta: meta.FromResult(m)}
		for _, a := range m.Get("activities").Array() {
			mod.Activities = append(mod.Activities, meta.FromResult(a))
		}
		tl.Modules = append(tl.Modules, mod)
	}
	return tl, nil
}

// MustParse is Parse for fixtures; it panics on error.
func MustParse(raw string) Timeline {
	tl, err := Parse([]byte(raw))
	if err != nil {
		panic(err)
	}
	return tl
}

// Name returns the module name, defaulting to "Module".
func (m Module) Name() string {
	if s, ok := m.Meta.String(moduleNameKeys...); ok {
		return s
	}
	return "Module"
}

// Group returns the module's group label, defaulting to "Group".
func (m Module) Group() string {
	if s, ok := m.Meta.String(groupKeys...); ok {
		return s
	}
	return "Group"
}

// ActivityCount returns the number of activities across all modules.
func (tl Timeline) ActivityCount() int {
	n := 0
	for _, m := range tl.Modules {
		n += len(m.Activities)
	}
	return n
}
