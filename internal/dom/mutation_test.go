// internal/dom/mutation_test.go
package dom

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAttributeMutations(t *testing.T) {
	d := newDoc(t)
	target := add(t, d.Node(), elem(t, d, "div"))
	obs := d.NewMutationObserver(nil)
	defer obs.Disconnect()
	require.NoError(t, obs.Observe(target, MutationObserverInit{Attributes: Bool(true)}))

	require.NoError(t, target.SetAttribute("a", "1"))
	require.NoError(t, target.SetAttribute("a", "2"))
	target.RemoveAttribute("a")

	assert.Equal(t, 3, obs.Pending())
	records := obs.TakeRecords()
	defer ReleaseRecords(records)
	require.Len(t, records, 3)
	assert.Equal(t, 0, obs.Pending())
	assert.Empty(t, obs.TakeRecords())

	for _, r := range records {
		assert.Equal(t, MutationAttributes, r.Type)
		assert.Same(t, target, r.Target)
		assert.Equal(t, "a", r.AttributeName)
		assert.False(t, r.HasOldValue, "old values were not requested")
	}
}

func TestObserveOldValuesAndFilter(t *testing.T) {
	d := newDoc(t)
	target := add(t, d.Node(), elem(t, d, "div", "keep", "old"))
	obs := d.NewMutationObserver(nil)
	defer obs.Disconnect()
	require.NoError(t, obs.Observe(target, MutationObserverInit{
		AttributeOldValue: Bool(true),
		AttributeFilter:   []string{"keep"},
	}))

	require.NoError(t, target.SetAttribute("ignored", "x"))
	require.NoError(t, target.SetAttribute("keep", "new"))
	target.RemoveAttribute("keep")
	require.NoError(t, target.SetAttribute("keep", "again"))

	records := obs.TakeRecords()
	defer ReleaseRecords(records)
	require.Len(t, records, 3)
	assert.Equal(t, "old", records[0].OldValue)
	assert.True(t, records[0].HasOldValue)
	assert.Equal(t, "new", records[1].OldValue)
	assert.False(t, records[2].HasOldValue, "the attribute did not exist before")
}

func TestObserveCharacterData(t *testing.T) {
	d := newDoc(t)
	p := add(t, d.Node(), elem(t, d, "p"))
	text := add(t, p, d.CreateTextNode("abc"))
	obs := d.NewMutationObserver(nil)
	defer obs.Disconnect()
	require.NoError(t, obs.Observe(p, MutationObserverInit{
		Subtree:               true,
		CharacterDataOldValue: Bool(true),
	}))

	require.NoError(t, text.ReplaceData(1, 1, "X"))
	text.SetData("zzz")

	records := obs.TakeRecords()
	defer ReleaseRecords(records)
	require.Len(t, records, 2)
	assert.Equal(t, MutationCharacterData, records[0].Type)
	assert.Same(t, text, records[0].Target)
	assert.Equal(t, "abc", records[0].OldValue)
	assert.Equal(t, "aXc", records[1].OldValue)
}

func TestObserveChildList(t *testing.T) {
	d := newDoc(t)
	root := add(t, d.Node(), elem(t, d, "div"))
	inner := add(t, root, elem(t, d, "section"))
	first := add(t, inner, elem(t, d, "a"))

	direct := d.NewMutationObserver(nil)
	defer direct.Disconnect()
	deep := d.NewMutationObserver(nil)
	defer deep.Disconnect()
	require.NoError(t, direct.Observe(root, MutationObserverInit{ChildList: true}))
	require.NoError(t, deep.Observe(root, MutationObserverInit{ChildList: true, Subtree: true}))

	b := elem(t, d, "b")
	_, err := inner.AppendChild(b)
	require.NoError(t, err)
	b.Release()

	assert.Equal(t, 0, direct.Pending(), "subtree=false ignores grandchildren")
	records := deep.TakeRecords()
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, MutationChildList, r.Type)
	assert.Same(t, inner, r.Target)
	assert.Equal(t, []*Node{b}, r.AddedNodes)
	assert.Same(t, first, r.PreviousSibling)
	assert.Nil(t, r.NextSibling)
	ReleaseRecords(records)

	t.Run("moving a node records the removal and the insertion", func(t *testing.T) {
		_, err := root.AppendChild(first)
		require.NoError(t, err)
		records := deep.TakeRecords()
		defer ReleaseRecords(records)
		require.Len(t, records, 2)
		assert.Equal(t, []*Node{first}, records[0].RemovedNodes)
		assert.Same(t, inner, records[0].Target)
		assert.Equal(t, []*Node{first}, records[1].AddedNodes)
		assert.Same(t, root, records[1].Target)

		direct := direct.TakeRecords()
		defer ReleaseRecords(direct)
		assert.Len(t, direct, 1)
	})

	t.Run("records keep removed nodes alive", func(t *testing.T) {
		first.Remove()
		assert.False(t, first.Destroyed())
		records := deep.TakeRecords()
		require.Len(t, records, 1)
		ReleaseRecords(records)
		assert.False(t, first.Destroyed(), "the other observer still holds a record")
		ReleaseRecords(direct.TakeRecords())
		assert.True(t, first.Destroyed())
	})
}

func TestObserveReplacesOptions(t *testing.T) {
	d := newDoc(t)
	target := add(t, d.Node(), elem(t, d, "div"))
	obs := d.NewMutationObserver(nil)
	defer obs.Disconnect()

	require.NoError(t, obs.Observe(target, MutationObserverInit{Attributes: Bool(true)}))
	require.NoError(t, obs.Observe(target, MutationObserverInit{ChildList: true}))
	require.NoError(t, target.SetAttribute("a", "b"))
	assert.Equal(t, 0, obs.Pending(), "the second observe replaced the first, it did not merge")
	assert.Len(t, d.observers[target], 1)
}

func TestObserveOptionValidation(t *testing.T) {
	d := newDoc(t)
	target := add(t, d.Node(), elem(t, d, "div"))
	obs := d.NewMutationObserver(nil)
	defer obs.Disconnect()

	tests := []struct {
		name string
		init MutationObserverInit
	}{
		{"nothing observed", MutationObserverInit{Subtree: true}},
		{"old value without attributes", MutationObserverInit{Attributes: Bool(false), AttributeOldValue: Bool(true)}},
		{"filter without attributes", MutationObserverInit{Attributes: Bool(false), AttributeFilter: []string{"a"}, ChildList: true}},
		{"character data old value without character data", MutationObserverInit{CharacterData: Bool(false), CharacterDataOldValue: Bool(true)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := obs.Observe(target, tt.init)
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
	assert.Empty(t, d.observers)
}

func TestDisconnectAndNotify(t *testing.T) {
	d := newDoc(t)
	target := add(t, d.Node(), elem(t, d, "div"))

	var delivered []MutationType
	var seen *MutationObserver
	obs := d.NewMutationObserver(func(records []*MutationRecord, o *MutationObserver) {
		seen = o
		for _, r := range records {
			delivered = append(delivered, r.Type)
		}
	})
	_, err := uuid.Parse(obs.ID())
	require.NoError(t, err)
	require.NoError(t, obs.Observe(target, MutationObserverInit{ChildList: true, Attributes: Bool(true)}))

	require.NoError(t, target.SetAttribute("x", "1"))
	add(t, target, d.CreateTextNode("t"))
	d.NotifyObservers()
	assert.Equal(t, []MutationType{MutationAttributes, MutationChildList}, delivered)
	assert.Same(t, obs, seen)
	assert.Equal(t, 0, obs.Pending())

	require.NoError(t, target.SetAttribute("x", "2"))
	obs.Disconnect()
	assert.Equal(t, 0, obs.Pending(), "disconnect discards queued records")
	require.NoError(t, target.SetAttribute("x", "3"))
	assert.Equal(t, 0, obs.Pending())
	assert.Empty(t, d.observers)
}

func TestObservedTargetDestroyed(t *testing.T) {
	d := newDoc(t)
	target := elem(t, d, "div")
	obs := d.NewMutationObserver(nil)
	defer obs.Disconnect()
	require.NoError(t, obs.Observe(target, MutationObserverInit{Attributes: Bool(true)}))

	target.Release()
	assert.True(t, target.Destroyed())
	assert.Empty(t, d.observers, "destroyed targets drop their registrations")
	assert.Empty(t, obs.targets)
}
