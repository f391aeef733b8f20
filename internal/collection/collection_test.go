package collection

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasksync/internal/model"
)

func task(id, title string) model.Task {
	return model.Task{ID: id, Title: title}
}

func ids(c *Collection) []string {
	var out []string
	for _, t := range c.All() {
		out = append(out, t.ID)
	}
	return out
}

func TestSeedPreservesServerOrder(t *testing.T) {
	c := New()
	c.Seed([]model.Task{task("a", "A"), task("b", "B"), task("c", "C")})

	assert.Equal(t, []string{"a", "b", "c"}, ids(c))
	assert.Equal(t, 3, c.Len())
}

func TestSeedReplacesPreviousContents(t *testing.T) {
	c := New()
	c.Seed([]model.Task{task("a", "A"), task("b", "B")})
	c.Seed([]model.Task{task("z", "Z")})

	assert.Equal(t, []string{"z"}, ids(c))
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestSeedCollapsesDuplicateIDs(t *testing.T) {
	c := New()
	c.Seed([]model.Task{task("a", "A"), task("b", "B"), task("a", "A2"), task("", "no id")})

	assert.Equal(t, []string{"a", "b"}, ids(c))
	got, _ := c.Get("a")
	assert.Equal(t, "A2", got.Title)
}

func TestUpsertExistingKeepsPosition(t *testing.T) {
	c := New()
	c.Seed([]model.Task{task("a", "A"), task("b", "B"), task("c", "C")})

	inserted := c.Upsert(task("b", "B'"))

	assert.False(t, inserted)
	assert.Equal(t, []string{"a", "b", "c"}, ids(c))
	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, "B'", got.Title)
}

func TestUpsertNewPrepends(t *testing.T) {
	c := New()
	c.Seed([]model.Task{task("a", "A"), task("b", "B"), task("c", "C")})

	inserted := c.Upsert(task("d", "D"))

	assert.True(t, inserted)
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(c))
}

func TestUpsertIgnoresMissingID(t *testing.T) {
	c := New()
	assert.False(t, c.Upsert(task("", "nothing")))
	assert.Equal(t, 0, c.Len())
}

func TestRemoveIsIdempotent(t *testing.T) {
	c := New()
	c.Seed([]model.Task{task("a", "A"), task("b", "B"), task("c", "C")})

	assert.True(t, c.Remove("b"))
	once := c.All()

	assert.False(t, c.Remove("b"))
	assert.Equal(t, once, c.All())
	assert.Equal(t, []string{"a", "c"}, ids(c))
}

func TestRemoveAbsentOnEmpty(t *testing.T) {
	c := New()
	assert.False(t, c.Remove("nope"))
	assert.Empty(t, c.All())
}

func TestClear(t *testing.T) {
	c := New()
	c.Seed([]model.Task{task("a", "A")})
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.All())
	assert.True(t, c.Upsert(task("a", "A")))
}

func TestAllReturnsCopy(t *testing.T) {
	c := New()
	c.Seed([]model.Task{task("a", "A")})

	all := c.All()
	all[0].Title = "mutated"

	got, _ := c.Get("a")
	assert.Equal(t, "A", got.Title)
}

// TestRandomMutationsKeepIDsUnique drives random upsert/remove sequences
// and checks the collection against a reference model after every step.
func TestRandomMutationsKeepIDsUnique(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		c := New()
		var ref []string // expected order

		for step := 0; step < 200; step++ {
			id := fmt.Sprintf("t%d", rng.Intn(15))

			if rng.Intn(3) == 0 {
				c.Remove(id)
				ref = without(ref, id)
			} else {
				c.Upsert(task(id, fmt.Sprintf("v%d", step)))
				if !contains(ref, id) {
					ref = append([]string{id}, ref...)
				}
			}

			got := ids(c)
			require.Equal(t, len(ref), c.Len())
			if len(ref) == 0 {
				require.Empty(t, got)
			} else {
				require.Equal(t, ref, got)
			}

			seen := make(map[string]bool)
			for _, g := range got {
				require.False(t, seen[g], "duplicate id %s", g)
				seen[g] = true
			}
		}
	}
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func without(s []string, v string) []string {
	out := s[:0:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
