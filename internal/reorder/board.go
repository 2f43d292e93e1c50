package reorder

import "slices"

// Rect 是行在纵向上的位置
type Rect struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// DragState 记录正在进行的拖拽；InsertIndex 为 nil 表示放到末尾
type DragState struct {
	Section     Section `json:"section"`
	DraggedID   string  `json:"dragged_id"`
	InsertIndex *int    `json:"insert_index,omitempty"`
}

// Preview 是拖拽期间显示的预览，结束时必须移除
type Preview interface {
	Remove()
}

// State 是 Board 可序列化的快照
type State struct {
	DateKey       string     `json:"date_key"`
	DeadlineOrder []string   `json:"deadline_order,omitempty"`
	TaskOrder     []string   `json:"task_order,omitempty"`
	Drag          *DragState `json:"drag,omitempty"`
}

// Board 持有某一天两个分区的排序与拖拽状态。
// 同一时刻只有一个拖拽；分区不匹配或找不到行时操作静默忽略。
type Board struct {
	dateKey     string
	maxDeadline int
	deadlines   []Entry
	tasks       []Entry
	orders      map[Section][]string
	drag        *DragState
	preview     Preview
}

// NewBoard 创建空白 Board
func NewBoard(dateKey string) *Board {
	return &Board{
		dateKey:     dateKey,
		maxDeadline: -1,
		orders:      make(map[Section][]string, 2),
	}
}

// RestoreBoard 从快照恢复 Board，条目需随后通过 Sync 提供
func RestoreBoard(state State) *Board {
	b := NewBoard(state.DateKey)
	b.orders[SectionDeadline] = slices.Clone(state.DeadlineOrder)
	b.orders[SectionTask] = slices.Clone(state.TaskOrder)
	if state.Drag != nil {
		drag := *state.Drag
		if drag.InsertIndex != nil {
			idx := *drag.InsertIndex
			drag.InsertIndex = &idx
		}
		b.drag = &drag
	}
	return b
}

// State 导出快照
func (b *Board) State() State {
	state := State{
		DateKey:       b.dateKey,
		DeadlineOrder: slices.Clone(b.orders[SectionDeadline]),
		TaskOrder:     slices.Clone(b.orders[SectionTask]),
	}
	if drag, ok := b.Drag(); ok {
		state.Drag = &drag
	}
	return state
}

// DateKey 返回 Board 对应的日期
func (b *Board) DateKey() string {
	return b.dateKey
}

// SetMaxDeadlineItems 限制 deadline 分区可见条数，负数表示不限
func (b *Board) SetMaxDeadlineItems(n int) {
	b.maxDeadline = n
}

// Sync 提供当天的条目并对账两个分区的顺序。
// 日期变化时丢弃原有顺序与拖拽状态。返回任一分区顺序是否发生变化。
func (b *Board) Sync(dateKey string, entries []Entry) bool {
	if dateKey != b.dateKey {
		b.dateKey = dateKey
		b.orders = make(map[Section][]string, 2)
		b.clearDrag()
	}

	b.deadlines, b.tasks = SplitSections(entries, b.maxDeadline)

	changed := false
	for _, section := range []Section{SectionDeadline, SectionTask} {
		next, ok := Reconcile(b.orders[section], SectionIDs(section, b.entries(section), b.dateKey))
		if ok {
			b.orders[section] = next
			changed = true
		}
	}
	return changed
}

// Rows 返回分区的展示顺序
func (b *Board) Rows(section Section) []Row {
	return OrderEntries(section, b.entries(section), b.dateKey, b.orders[section])
}

// Order 返回分区当前的顺序
func (b *Board) Order(section Section) []string {
	return slices.Clone(b.orders[section])
}

// Drag 返回当前拖拽状态
func (b *Board) Drag() (DragState, bool) {
	if b.drag == nil {
		return DragState{}, false
	}
	drag := *b.drag
	if drag.InsertIndex != nil {
		idx := *drag.InsertIndex
		drag.InsertIndex = &idx
	}
	return drag, true
}

// BeginDrag 以 rowID 为拖拽源开始拖拽，插入位置初始为其当前下标。
// preview 可为 nil；之前遗留的预览会先被移除。找不到行时返回 false。
func (b *Board) BeginDrag(section Section, rowID string, preview Preview) (Payload, bool) {
	rows := b.Rows(section)
	start := slices.IndexFunc(rows, func(r Row) bool { return r.ID == rowID })
	if start == -1 {
		return Payload{}, false
	}

	b.cleanupPreview()
	b.drag = &DragState{Section: section, DraggedID: rowID, InsertIndex: intPtr(start)}
	b.preview = preview

	return Payload{TaskID: rows[start].Entry.TaskID, Section: section, DraggedID: rowID}, true
}

// DragOverRow 根据指针相对行中线的位置更新插入点：上半部分插到行前，下半部分插到行后
func (b *Board) DragOverRow(section Section, rowID string, pointerY float64, rect Rect) bool {
	if b.drag == nil || b.drag.Section != section {
		return false
	}

	rowIndex := slices.IndexFunc(b.Rows(section), func(r Row) bool { return r.ID == rowID })
	if rowIndex == -1 {
		return false
	}

	next := rowIndex + 1
	if pointerY < rect.Top+rect.Height/2 {
		next = rowIndex
	}
	b.drag.InsertIndex = intPtr(next)
	return true
}

// DragOverSection 处理分区容器上的拖拽经过，空分区时插入点置为 0
func (b *Board) DragOverSection(section Section) bool {
	if b.drag == nil || b.drag.Section != section {
		return false
	}
	if len(b.Rows(section)) == 0 {
		b.drag.InsertIndex = intPtr(0)
	}
	return true
}

// MatchesMarker 校验分区排序标记是否属于当前拖拽
func (b *Board) MatchesMarker(marker string) bool {
	section, draggedID, ok := ParseMarker(marker)
	return ok && b.drag != nil && b.drag.Section == section && b.drag.DraggedID == draggedID
}

// Drop 完成拖拽，把新顺序写入分区
func (b *Board) Drop(section Section) bool {
	if b.drag == nil || b.drag.Section != section || b.drag.DraggedID == "" {
		return false
	}

	rows := b.Rows(section)
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	insert := len(ids)
	if b.drag.InsertIndex != nil {
		insert = *b.drag.InsertIndex
	}

	b.orders[section] = ReorderWithInsert(ids, b.drag.DraggedID, insert)
	b.clearDrag()
	return true
}

// EndDrag 结束拖拽（无论是否放置成功）
func (b *Board) EndDrag() {
	b.clearDrag()
}

// Close 释放预览，Board 不再使用时调用
func (b *Board) Close() {
	b.cleanupPreview()
}

func (b *Board) entries(section Section) []Entry {
	if section == SectionDeadline {
		return b.deadlines
	}
	return b.tasks
}

func (b *Board) clearDrag() {
	b.drag = nil
	b.cleanupPreview()
}

func (b *Board) cleanupPreview() {
	if b.preview != nil {
		b.preview.Remove()
	}
	b.preview = nil
}

func intPtr(v int) *int {
	return &v
}
