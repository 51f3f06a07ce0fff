// Package store loads project timelines and the person directory that feed
// the analytics engine.
package store

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/gantry/internal/meta"
	"github.com/joshharrison/gantry/internal/timeline"
)

// ErrNotFound is returned when a project or version does not exist.
var ErrNotFound = errors.New("not found")

// Document is one stored timeline version.
type Document struct {
	Project  string
	Version  string
	Timeline timeline.Timeline
}

// TimelineStore reads stored timelines. An empty version selects the latest.
type TimelineStore interface {
	Projects(ctx context.Context) ([]string, error)
	Versions(ctx context.Context, project string) ([]string, error)
	Timeline(ctx context.Context, project, version string) (*Document, error)
}

// PersonDirectory maps person identifiers to display labels.
type PersonDirectory interface {
	Labels(ctx context.Context) (map[string]string, error)
}

// SortVersions orders versions oldest first. Purely numeric versions compare
// as numbers; anything else compares as text after them.
func SortVersions(vs []string) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, aErr := strconv.ParseFloat(vs[i], 64)
		b, bErr := strconv.ParseFloat(vs[j], 64)
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return vs[i] < vs[j]
		}
	})
}

// Latest returns the newest version, or "" when there are none.
func Latest(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	sorted := append([]string(nil), vs...)
	SortVersions(sorted)
	return sorted[len(sorted)-1]
}

var (
	// Role lists cite people by any of these, so a label is registered under
	// every one present.
	personIDKeys    = meta.Keys{"id", "guiId", "userGuiId", "employeeId", "userId", "code", "employeeCode"}
	personLabelKeys = meta.Keys{"name", "employeeFullName", "fullName", "displayName", "email", "primaryEmail"}
)

// ParseLabels reads a person directory document: either an object mapping
// ids to labels, or an array of person records.
func ParseLabels(data []byte) (map[string]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("person directory: invalid JSON")
	}
	labels := make(map[string]string)
	doc := gjson.ParseBytes(data)
	switch {
	case doc.IsObject():
		doc.ForEach(func(k, v gjson.Result) bool {
			if s := v.String(); s != "" {
				labels[k.String()] = s
			}
			return true
		})
	case doc.IsArray():
		for _, item := range doc.Array() {
			rec := meta.FromResult(item)
			label, _ := rec.String(personLabelKeys...)
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}
			for _, key := range personIDKeys {
				if id := strings.TrimSpace(rec.Get(key).String()); id != "" {
					labels[id] = label
				}
			}
		}
	}
	return labels, nil
}
