package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	store.Put(&Profile{ID: "u1", Name: "Ada"})
	store.Put(&Profile{ID: "u2", Name: "Grace"})

	p, err := store.GetByID(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)

	_, err = store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetManyOmitsMissing(t *testing.T) {
	store := NewMemoryStore()
	store.Put(&Profile{ID: "u1", Name: "Ada"})

	got, err := store.GetManyByID(context.Background(), []string{"u1", "ghost"})
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].ID)
}

func TestMemoryStoreListAllInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	store.Put(&Profile{ID: "u2", Name: "Grace"})
	store.Put(&Profile{ID: "u1", Name: "Ada"})
	store.Put(&Profile{ID: "u2", Name: "Grace H."}) // replace keeps position

	all, err := store.ListAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "u2", all[0].ID)
	assert.Equal(t, "Grace H.", all[0].Name)
	assert.Equal(t, "u1", all[1].ID)
}

func TestSummaryText(t *testing.T) {
	p := &Profile{
		ID: "u1", Name: "Ada", Title: "Engineer", Company: "TechCorp",
		Location:    "Berlin, Germany",
		Bio:         "Builds distributed systems.",
		Skills:      []string{"Go", "SQL"},
		Interests:   []string{"AI"},
		Preferences: Preferences{Mentor: true, Collaborate: true},
	}

	got := SummaryText(p)
	assert.Equal(t,
		"Ada, Engineer at TechCorp (Berlin, Germany). Builds distributed systems."+
			" Skills: Go, SQL. Interests: AI."+
			" Looking to: find a mentor, collaborate on projects.",
		got)
}

func TestSummaryTextSparseProfile(t *testing.T) {
	got := SummaryText(&Profile{ID: "u1", Name: "Ada"})
	assert.Equal(t, "Ada.", got)
}

func TestShortSummary(t *testing.T) {
	p := &Profile{
		ID: "u1", Name: "Ada", Title: "Engineer", Company: "TechCorp",
		Location: "Berlin, Germany",
		Skills:   []string{"Go"},
	}
	assert.Equal(t, "Ada | Engineer | TechCorp | Berlin, Germany | skills: Go", ShortSummary(p))
}
