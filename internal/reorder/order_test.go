package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReorderWithInsert(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		dragged string
		insert  int
		want    []string
	}{
		{name: "forward compensates removal", ids: []string{"a", "b", "c"}, dragged: "a", insert: 2, want: []string{"b", "a", "c"}},
		{name: "backward to front", ids: []string{"a", "b", "c"}, dragged: "c", insert: 0, want: []string{"c", "a", "b"}},
		{name: "to end", ids: []string{"a", "b", "c"}, dragged: "a", insert: 3, want: []string{"b", "c", "a"}},
		{name: "onto itself", ids: []string{"a", "b", "c"}, dragged: "b", insert: 1, want: []string{"a", "b", "c"}},
		{name: "just after itself", ids: []string{"a", "b", "c"}, dragged: "b", insert: 2, want: []string{"a", "b", "c"}},
		{name: "clamped high", ids: []string{"a", "b", "c"}, dragged: "b", insert: 99, want: []string{"a", "c", "b"}},
		{name: "clamped low", ids: []string{"a", "b", "c"}, dragged: "c", insert: -4, want: []string{"c", "a", "b"}},
		{name: "unknown id", ids: []string{"a", "b"}, dragged: "z", insert: 0, want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReorderWithInsert(tt.ids, tt.dragged, tt.insert))
		})
	}
}

func TestReorderWithInsertLeavesInputUntouched(t *testing.T) {
	ids := []string{"a", "b", "c"}
	_ = ReorderWithInsert(ids, "a", 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestReconcileDropsRemovedAndAppendsNew(t *testing.T) {
	next, changed := Reconcile([]string{"x", "y", "z"}, []string{"w", "y", "z"})
	assert.True(t, changed)
	assert.Equal(t, []string{"y", "z", "w"}, next)
}

func TestReconcileKeepsPreviousWhenUnchanged(t *testing.T) {
	prev := []string{"b", "a"}
	next, changed := Reconcile(prev, []string{"a", "b"})
	assert.False(t, changed)
	assert.Equal(t, prev, next)

	_, changed = Reconcile(nil, nil)
	assert.False(t, changed)
}

func TestSectionItemIDsAreSectionScoped(t *testing.T) {
	entry := Entry{TaskID: "t1", CalendarItemID: "ci-9"}

	task := SectionItemID(SectionTask, entry, "2024-05-13", 0)
	deadline := SectionItemID(SectionDeadline, entry, "2024-05-13", 0)

	assert.Equal(t, "task-ci-ci-9", task)
	assert.Equal(t, "deadline-ci-ci-9", deadline)
	assert.NotEqual(t, task, deadline)
}

func TestSectionIDsForUnscheduledEntries(t *testing.T) {
	entries := []Entry{
		{TaskID: "t1"},
		{TaskID: "t2", CalendarItemID: "c2"},
		{TaskID: "t1"},
		{},
	}

	ids := SectionIDs(SectionTask, entries, "2024-05-13")
	assert.Equal(t, []string{
		"task-due-t1-2024-05-13-0",
		"task-ci-c2",
		"task-due-t1-2024-05-13-1",
		"task-due-idx-3-2024-05-13-3",
	}, ids)

	// 移除其他条目不影响未排期任务的标识
	ids = SectionIDs(SectionTask, []Entry{{TaskID: "t9"}, {TaskID: "t1"}}, "2024-05-13")
	assert.Equal(t, "task-due-t1-2024-05-13-0", ids[1])
}

func TestOrderEntriesFollowsOrderThenIncoming(t *testing.T) {
	entries := []Entry{
		{TaskID: "a", CalendarItemID: "1"},
		{TaskID: "b", CalendarItemID: "2"},
		{TaskID: "c", CalendarItemID: "3"},
		{TaskID: "d", CalendarItemID: "4"},
	}

	rows := OrderEntries(SectionTask, entries, "2024-05-13", []string{"task-ci-3", "gone", "task-ci-1"})
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"task-ci-3", "task-ci-1", "task-ci-2", "task-ci-4"}, rowIDs(rows))
	assert.Equal(t, "c", rows[0].Entry.TaskID)
}

func TestOrderEntriesShortCircuitsSmallLists(t *testing.T) {
	assert.Empty(t, OrderEntries(SectionTask, nil, "2024-05-13", []string{"x"}))

	rows := OrderEntries(SectionDeadline, []Entry{{TaskID: "a"}}, "2024-05-13", []string{"other"})
	require.Len(t, rows, 1)
	assert.Equal(t, "deadline-due-a-2024-05-13-0", rows[0].ID)
}

func TestSplitSections(t *testing.T) {
	entries := []Entry{
		{TaskID: "a", DisplayType: SectionDeadline},
		{TaskID: "b"},
		{TaskID: "c", DisplayType: SectionDeadline},
		{TaskID: "d", DisplayType: SectionTask},
	}

	deadlines, tasks := SplitSections(entries, -1)
	assert.Len(t, deadlines, 2)
	assert.Len(t, tasks, 2)

	deadlines, _ = SplitSections(entries, 1)
	require.Len(t, deadlines, 1)
	assert.Equal(t, "a", deadlines[0].TaskID)
}

func TestParseSection(t *testing.T) {
	s, err := ParseSection("deadline")
	require.NoError(t, err)
	assert.Equal(t, SectionDeadline, s)

	_, err = ParseSection("habit")
	assert.ErrorIs(t, err, ErrInvalidSection)
}

func TestPayloadWireFormat(t *testing.T) {
	p := Payload{TaskID: "t-1", Section: SectionTask, DraggedID: "task-ci-9"}

	assert.Equal(t, map[string]string{
		"text/plain":                             "task:t-1:task",
		"application/x-calendar-section-reorder": "task:task-ci-9",
	}, p.Entries())

	taskID, section, ok := ParseText(p.Text())
	require.True(t, ok)
	assert.Equal(t, "t-1", taskID)
	assert.Equal(t, SectionTask, section)

	section, dragged, ok := ParseMarker(p.Marker())
	require.True(t, ok)
	assert.Equal(t, SectionTask, section)
	assert.Equal(t, "task-ci-9", dragged)

	taskID, section, ok = ParseText("task:t-2")
	require.True(t, ok)
	assert.Equal(t, "t-2", taskID)
	assert.Empty(t, section)

	_, _, ok = ParseText("habit:1:task")
	assert.False(t, ok)
	_, _, ok = ParseText("task:")
	assert.False(t, ok)
	_, _, ok = ParseText("task:t-1:sidebar")
	assert.False(t, ok)
	_, _, ok = ParseMarker("nope")
	assert.False(t, ok)
}

func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}
