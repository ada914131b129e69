package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStatuses(t *testing.T) {
	got := DefaultStatuses()
	require.Equal(t, []string{"TODO", "IN PROGRESS", "COMPLETE"}, got)

	// Callers may mutate the returned slice without poisoning the default.
	got[0] = "MUTATED"
	assert.Equal(t, "TODO", DefaultStatuses()[0])
}

func TestProjectFirstStatus(t *testing.T) {
	t.Run("uses first configured status", func(t *testing.T) {
		p := Project{Statuses: []string{"Backlog", "Doing", "Done"}}
		assert.Equal(t, "Backlog", p.FirstStatus())
	})

	t.Run("falls back to default when unset", func(t *testing.T) {
		p := Project{}
		assert.Equal(t, "TODO", p.FirstStatus())
	})
}

func TestProjectHasStatus(t *testing.T) {
	p := Project{Statuses: []string{"TODO", "IN PROGRESS", "COMPLETE"}}

	assert.True(t, p.HasStatus("IN PROGRESS"))
	assert.False(t, p.HasStatus("in progress"), "membership is exact-match")
	assert.False(t, p.HasStatus("BOGUS"))
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name   string
		in     []string
		expect []string
	}{
		{
			name:   "keeps order and first occurrence",
			in:     []string{"TODO", "Doing", "todo", "DOING", "Done"},
			expect: []string{"TODO", "Doing", "Done"},
		},
		{
			name:   "trims whitespace and drops empties",
			in:     []string{"  TODO ", "", "   ", "Done"},
			expect: []string{"TODO", "Done"},
		},
		{
			name:   "empty input",
			in:     nil,
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, NormalizeList(tt.in))
		})
	}
}

func TestMergeLabels(t *testing.T) {
	t.Run("appends only unseen labels", func(t *testing.T) {
		merged, added := MergeLabels([]string{"backend", "urgent"}, []string{"Urgent", "frontend"})
		assert.True(t, added)
		assert.Equal(t, []string{"backend", "urgent", "frontend"}, merged)
	})

	t.Run("no-op when everything is known", func(t *testing.T) {
		merged, added := MergeLabels([]string{"backend"}, []string{"BACKEND"})
		assert.False(t, added)
		assert.Equal(t, []string{"backend"}, merged)
	})

	t.Run("merging into empty base", func(t *testing.T) {
		merged, added := MergeLabels(nil, []string{"a", "A", "b"})
		assert.True(t, added)
		assert.Equal(t, []string{"a", "b"}, merged)
	})
}
