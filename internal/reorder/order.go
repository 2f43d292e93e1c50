package reorder

import "slices"

// Row 是带行标识的条目
type Row struct {
	ID    string `json:"id"`
	Entry Entry  `json:"entry"`
}

// OrderEntries 按 order 输出分区的展示顺序：先按 order 中出现的顺序，
// 再把 order 未提及的条目按原顺序追加。少于两条时直接返回原顺序。
func OrderEntries(section Section, entries []Entry, dateKey string, order []string) []Row {
	if len(entries) == 0 {
		return nil
	}

	ids := SectionIDs(section, entries, dateKey)
	rows := make([]Row, len(entries))
	for i, entry := range entries {
		rows[i] = Row{ID: ids[i], Entry: entry}
	}
	if len(rows) <= 1 {
		return rows
	}

	byID := make(map[string]Row, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	ordered := make([]Row, 0, len(rows))
	for _, id := range order {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
			delete(byID, id)
		}
	}
	for _, row := range rows {
		if _, ok := byID[row.ID]; ok {
			ordered = append(ordered, row)
		}
	}

	return ordered
}

// Reconcile 用当前行标识更新旧顺序：保留仍存在的旧标识，新标识按到达顺序追加。
// 结果与 prev 逐项相同时返回 prev 与 false。
func Reconcile(prev, current []string) ([]string, bool) {
	present := make(map[string]struct{}, len(current))
	for _, id := range current {
		present[id] = struct{}{}
	}

	next := make([]string, 0, len(current))
	kept := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		if _, ok := present[id]; ok {
			next = append(next, id)
			kept[id] = struct{}{}
		}
	}
	for _, id := range current {
		if _, ok := kept[id]; !ok {
			next = append(next, id)
		}
	}

	if slices.Equal(prev, next) {
		return prev, false
	}
	return next, true
}

// ReorderWithInsert 把 draggedID 移动到 insertIndex 之前。
// insertIndex 以移动前的列表计；原位置在 insertIndex 之前时目标减一以抵消移除带来的位移，
// 随后截断到 [0, len]。draggedID 不存在时原样返回。
func ReorderWithInsert(ids []string, draggedID string, insertIndex int) []string {
	from := slices.Index(ids, draggedID)
	if from == -1 {
		return ids
	}

	without := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != draggedID {
			without = append(without, id)
		}
	}

	target := insertIndex
	if from < insertIndex {
		target--
	}
	target = max(0, min(target, len(without)))

	return slices.Insert(without, target, draggedID)
}
