// Package tasks flattens a module → activity timeline into an ordered list of
// task records.
package tasks

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/joshharrison/gantry/internal/meta"
	"github.com/joshharrison/gantry/internal/timeline"
)

// idNamespace seeds deterministic ids for activities that carry no code.
var idNamespace = uuid.MustParse("6f1c4f0e-3b8e-4a4b-9c47-5d2f7b1e9a10")

var (
	idKeys       = meta.Keys{"guicode", "code"}
	nameKeys     = meta.Keys{"activityName", "code"}
	slackKeys    = meta.Keys{"slackDays", "slack"}
	prereqKeys   = meta.Keys{"prerequisite", "prerequisites", "dependsOn", "dependencies"}
	noOwnerLabel = "—"
)

// Flatten emits one Task per activity of every module that passes the filter.
// Order is module order, then activity order, and is never re-sorted.
func Flatten(tl timeline.Timeline, f Filter) []Task {
	var out []Task
	for mi, m := range tl.Modules {
		moduleName := m.Name()
		group := m.Group()

		if f.Group != "" && f.Group != All && group != f.Group {
			continue
		}
		if f.Module != "" && f.Module != All && f.Module != Uninitialized && moduleName != f.Module {
			continue
		}

		for ai, a := range m.Activities {
			out = append(out, Task{
				ID:           taskID(a, moduleName, group, mi, ai),
				Module:       moduleName,
				Group:        group,
				Activity:     stringOr(a, "Activity", nameKeys...),
				Owner:        owner(a, m.Meta),
				PlannedStart: stringOr(a, "", "start"),
				PlannedEnd:   stringOr(a, "", "end"),
				ActualStart:  stringOr(a, "", "actualStart"),
				ActualEnd:    stringOr(a, "", "actualFinish"),
				SlackDays:    slack(a, m.Meta),
				Meta:         a,
			})
		}
	}
	return out
}

// ModuleNames lists distinct module names in first-seen order.
func ModuleNames(tl timeline.Timeline) []string {
	return lo.Uniq(lo.Map(tl.Modules, func(m timeline.Module, _ int) string { return m.Name() }))
}

// GroupNames lists distinct group labels in first-seen order.
func GroupNames(tl timeline.Timeline) []string {
	return lo.Uniq(lo.Map(tl.Modules, func(m timeline.Module, _ int) string { return m.Group() }))
}

// Prerequisites returns the activity codes a task declares it depends on.
func (t Task) Prerequisites() []string {
	v, ok := t.Meta.First(prereqKeys...)
	if !ok {
		return nil
	}
	return meta.List(v)
}

// Code returns the activity's own code, which prerequisites refer to.
func (t Task) Code() string {
	if s, ok := t.Meta.String("code"); ok && s != "" {
		return s
	}
	return t.ID
}

func taskID(a meta.Record, module, group string, mi, ai int) string {
	if s, ok := a.String(idKeys...); ok {
		return s
	}
	key := fmt.Sprintf("%s/%s/%d/%d", group, module, mi, ai)
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

func owner(a, module meta.Record) string {
	if s, ok := a.String("owner"); ok {
		return s
	}
	if s, ok := module.String("owner"); ok {
		return s
	}
	return noOwnerLabel
}

func slack(a, module meta.Record) float64 {
	if v, ok := a.First(slackKeys...); ok {
		return meta.ToNumber(v)
	}
	return module.Number(slackKeys...)
}

func stringOr(r meta.Record, def string, keys ...string) string {
	if s, ok := r.String(keys...); ok {
		return s
	}
	return def
}
