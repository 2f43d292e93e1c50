package reorder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPreview struct {
	removed int
}

func (p *countingPreview) Remove() {
	p.removed++
}

const testDay = "2024-05-13"

func sampleEntries() []Entry {
	return []Entry{
		{TaskID: "due-1", Title: "report"},
		{TaskID: "t1", CalendarItemID: "c1", Title: "write"},
		{TaskID: "t2", CalendarItemID: "c2", Title: "read"},
		{TaskID: "t3", CalendarItemID: "c3", DisplayType: SectionDeadline, Title: "taxes"},
	}
}

func newSyncedBoard(t *testing.T) *Board {
	t.Helper()
	b := NewBoard(testDay)
	require.True(t, b.Sync(testDay, sampleEntries()))
	return b
}

func TestBoardSyncBuildsBothSections(t *testing.T) {
	b := newSyncedBoard(t)

	assert.Equal(t, []string{"task-due-due-1-2024-05-13-0", "task-ci-c1", "task-ci-c2"}, b.Order(SectionTask))
	assert.Equal(t, []string{"deadline-ci-c3"}, b.Order(SectionDeadline))
	assert.False(t, b.Sync(testDay, sampleEntries()), "same entries commit nothing")
}

func TestBoardDragForwardWithinSection(t *testing.T) {
	b := newSyncedBoard(t)
	preview := &countingPreview{}

	payload, ok := b.BeginDrag(SectionTask, "task-due-due-1-2024-05-13-0", preview)
	require.True(t, ok)
	assert.Equal(t, "task:due-1:task", payload.Text())
	assert.Equal(t, "task:task-due-due-1-2024-05-13-0", payload.Marker())

	drag, ok := b.Drag()
	require.True(t, ok)
	require.NotNil(t, drag.InsertIndex)
	assert.Equal(t, 0, *drag.InsertIndex)

	// 指针在第三行的下半部分，插入到末尾
	require.True(t, b.DragOverRow(SectionTask, "task-ci-c2", 95, Rect{Top: 80, Height: 20}))
	drag, _ = b.Drag()
	assert.Equal(t, 3, *drag.InsertIndex)

	require.True(t, b.Drop(SectionTask))
	assert.Equal(t, []string{"task-ci-c1", "task-ci-c2", "task-due-due-1-2024-05-13-0"}, rowIDs(b.Rows(SectionTask)))

	_, dragging := b.Drag()
	assert.False(t, dragging)
	assert.Equal(t, 1, preview.removed)
}

func TestBoardDragOverUpperHalfInsertsBefore(t *testing.T) {
	b := newSyncedBoard(t)
	_, ok := b.BeginDrag(SectionTask, "task-ci-c2", nil)
	require.True(t, ok)

	require.True(t, b.DragOverRow(SectionTask, "task-due-due-1-2024-05-13-0", 4, Rect{Top: 0, Height: 20}))
	require.True(t, b.Drop(SectionTask))

	assert.Equal(t, []string{"task-ci-c2", "task-due-due-1-2024-05-13-0", "task-ci-c1"}, b.Order(SectionTask))
}

func TestBoardIgnoresOtherSectionsAndMisses(t *testing.T) {
	b := newSyncedBoard(t)
	before := b.Order(SectionTask)

	assert.False(t, b.DragOverRow(SectionTask, "task-ci-c1", 0, Rect{Height: 10}), "no active drag")
	assert.False(t, b.Drop(SectionTask))

	_, ok := b.BeginDrag(SectionTask, "missing", nil)
	assert.False(t, ok)

	_, ok = b.BeginDrag(SectionTask, "task-ci-c1", nil)
	require.True(t, ok)
	assert.False(t, b.DragOverRow(SectionDeadline, "deadline-ci-c3", 0, Rect{Height: 10}))
	assert.False(t, b.DragOverRow(SectionTask, "not-a-row", 0, Rect{Height: 10}))
	assert.False(t, b.DragOverSection(SectionDeadline))
	assert.False(t, b.Drop(SectionDeadline))

	assert.Equal(t, before, b.Order(SectionTask))
	_, dragging := b.Drag()
	assert.True(t, dragging, "mismatched drop keeps the drag alive")
}

func TestBoardDropWithoutInsertIndexAppends(t *testing.T) {
	b := newSyncedBoard(t)
	state := b.State()
	state.Drag = &DragState{Section: SectionTask, DraggedID: "task-ci-c1"}

	restored := RestoreBoard(state)
	restored.Sync(testDay, sampleEntries())
	require.True(t, restored.Drop(SectionTask))

	assert.Equal(t, []string{"task-due-due-1-2024-05-13-0", "task-ci-c2", "task-ci-c1"}, restored.Order(SectionTask))
}

func TestBoardDragOverEmptySection(t *testing.T) {
	b := NewBoard(testDay)
	b.Sync(testDay, []Entry{{TaskID: "t1", CalendarItemID: "c1"}})
	b.drag = &DragState{Section: SectionDeadline, DraggedID: "deadline-ci-x"}

	require.True(t, b.DragOverSection(SectionDeadline))
	drag, _ := b.Drag()
	require.NotNil(t, drag.InsertIndex)
	assert.Equal(t, 0, *drag.InsertIndex)
}

func TestBoardEndDragAndCloseRemovePreview(t *testing.T) {
	b := newSyncedBoard(t)
	first := &countingPreview{}
	second := &countingPreview{}

	_, ok := b.BeginDrag(SectionTask, "task-ci-c1", first)
	require.True(t, ok)
	_, ok = b.BeginDrag(SectionTask, "task-ci-c2", second)
	require.True(t, ok)
	assert.Equal(t, 1, first.removed, "restarting a drag drops the stale preview")

	b.EndDrag()
	assert.Equal(t, 1, second.removed)

	third := &countingPreview{}
	_, ok = b.BeginDrag(SectionDeadline, "deadline-ci-c3", third)
	require.True(t, ok)
	b.Close()
	assert.Equal(t, 1, third.removed)
	b.Close()
	assert.Equal(t, 1, third.removed)
}

func TestBoardSyncReconcilesChangedEntries(t *testing.T) {
	b := newSyncedBoard(t)
	b.orders[SectionTask] = []string{"task-ci-c2", "task-ci-c1", "task-due-due-1-2024-05-13-0"}

	entries := []Entry{
		{TaskID: "t1", CalendarItemID: "c1"},
		{TaskID: "t2", CalendarItemID: "c2"},
		{TaskID: "t4", CalendarItemID: "c4"},
	}
	require.True(t, b.Sync(testDay, entries))
	assert.Equal(t, []string{"task-ci-c2", "task-ci-c1", "task-ci-c4"}, b.Order(SectionTask))
	assert.Empty(t, b.Order(SectionDeadline))
}

func TestBoardSyncResetsOnDateChange(t *testing.T) {
	b := newSyncedBoard(t)
	preview := &countingPreview{}
	b.orders[SectionTask] = []string{"task-ci-c2", "task-ci-c1"}
	_, ok := b.BeginDrag(SectionTask, "task-ci-c1", preview)
	require.True(t, ok)

	b.Sync("2024-05-14", sampleEntries())

	assert.Equal(t, "2024-05-14", b.DateKey())
	assert.Equal(t, []string{"task-due-due-1-2024-05-14-0", "task-ci-c1", "task-ci-c2"}, b.Order(SectionTask))
	_, dragging := b.Drag()
	assert.False(t, dragging)
	assert.Equal(t, 1, preview.removed)
}

func TestBoardMaxDeadlineItems(t *testing.T) {
	b := NewBoard(testDay)
	b.SetMaxDeadlineItems(1)
	b.Sync(testDay, []Entry{
		{TaskID: "a", CalendarItemID: "1", DisplayType: SectionDeadline},
		{TaskID: "b", CalendarItemID: "2", DisplayType: SectionDeadline},
	})

	assert.Equal(t, []string{"deadline-ci-1"}, b.Order(SectionDeadline))
}

func TestBoardStateRoundTripsThroughJSON(t *testing.T) {
	b := newSyncedBoard(t)
	_, ok := b.BeginDrag(SectionTask, "task-ci-c1", nil)
	require.True(t, ok)
	require.True(t, b.DragOverRow(SectionTask, "task-ci-c2", 100, Rect{Top: 0, Height: 10}))

	raw, err := json.Marshal(b.State())
	require.NoError(t, err)

	var state State
	require.NoError(t, json.Unmarshal(raw, &state))
	restored := RestoreBoard(state)
	restored.Sync(testDay, sampleEntries())

	assert.True(t, restored.MatchesMarker("task:task-ci-c1"))
	assert.False(t, restored.MatchesMarker("deadline:task-ci-c1"))
	require.True(t, restored.Drop(SectionTask))
	assert.Equal(t, []string{"task-due-due-1-2024-05-13-0", "task-ci-c2", "task-ci-c1"}, restored.Order(SectionTask))
}
