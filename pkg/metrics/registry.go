package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Registry holds labelled counters and renders them in Prometheus text format.
type Registry struct {
	mu       sync.Mutex
	families map[string]*CounterVec
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{families: make(map[string]*CounterVec)}
}

// Counter returns the counter family registered under name, creating it on first use.
func (r *Registry) Counter(name, help string, labelNames ...string) *CounterVec {
	r.mu.Lock()
	defer r.mu.Unlock()
	if vec, ok := r.families[name]; ok {
		return vec
	}
	vec := &CounterVec{
		name:   name,
		help:   help,
		labels: append([]string(nil), labelNames...),
		values: make(map[string]uint64),
	}
	r.families[name] = vec
	return vec
}

// Render writes every family, sorted by name.
func (r *Registry) Render() string {
	r.mu.Lock()
	names := make([]string, 0, len(r.families))
	for name := range r.families {
		names = append(names, name)
	}
	r.mu.Unlock()
	sort.Strings(names)

	var buf bytes.Buffer
	for _, name := range names {
		r.mu.Lock()
		vec := r.families[name]
		r.mu.Unlock()
		vec.write(&buf)
	}
	return buf.String()
}

// Handler exposes the registry over HTTP.
func (r *Registry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, r.Render())
	}
}

// CounterVec is a counter partitioned by label values.
type CounterVec struct {
	mu     sync.Mutex
	name   string
	help   string
	labels []string
	values map[string]uint64
}

// Inc adds one to the series identified by labelValues.
// Missing values are rendered as empty strings; extras are ignored.
func (v *CounterVec) Inc(labelValues ...string) {
	v.Add(1, labelValues...)
}

// Add increases the series identified by labelValues by delta.
func (v *CounterVec) Add(delta uint64, labelValues ...string) {
	if v == nil || delta == 0 {
		return
	}
	key := v.key(labelValues)
	v.mu.Lock()
	v.values[key] += delta
	v.mu.Unlock()
}

// Value reads the current count for labelValues.
func (v *CounterVec) Value(labelValues ...string) uint64 {
	if v == nil {
		return 0
	}
	key := v.key(labelValues)
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.values[key]
}

func (v *CounterVec) key(labelValues []string) string {
	parts := make([]string, len(v.labels))
	for i := range v.labels {
		if i < len(labelValues) {
			parts[i] = labelValues[i]
		}
	}
	return strings.Join(parts, "\x1f")
}

func (v *CounterVec) write(buf *bytes.Buffer) {
	v.mu.Lock()
	keys := make([]string, 0, len(v.values))
	for key := range v.values {
		keys = append(keys, key)
	}
	snapshot := make(map[string]uint64, len(v.values))
	for key, value := range v.values {
		snapshot[key] = value
	}
	v.mu.Unlock()
	sort.Strings(keys)

	fmt.Fprintf(buf, "# HELP %s %s\n", v.name, v.help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", v.name)
	for _, key := range keys {
		fmt.Fprintf(buf, "%s%s %d\n", v.name, v.formatLabels(key), snapshot[key])
	}
}

func (v *CounterVec) formatLabels(key string) string {
	if len(v.labels) == 0 {
		return ""
	}
	values := strings.Split(key, "\x1f")
	pairs := make([]string, 0, len(v.labels))
	for i, label := range v.labels {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		pairs = append(pairs, fmt.Sprintf("%s=%q", label, value))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}
