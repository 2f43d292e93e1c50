package reorder

import "strings"

const (
	// MIMEText 通用拖拽数据，其他放置目标解析 task:{taskID}:{section}
	MIMEText = "text/plain"
	// MIMESectionReorder 仅供同分区排序使用，内容为 {section}:{draggedID}
	MIMESectionReorder = "application/x-calendar-section-reorder"
)

// Payload 是一次拖拽携带的数据
type Payload struct {
	TaskID    string
	Section   Section
	DraggedID string
}

// Text 返回 text/plain 内容
func (p Payload) Text() string {
	return "task:" + p.TaskID + ":" + string(p.Section)
}

// Marker 返回分区排序标记
func (p Payload) Marker() string {
	return string(p.Section) + ":" + p.DraggedID
}

// Entries 返回按 MIME 类型组织的拖拽数据
func (p Payload) Entries() map[string]string {
	return map[string]string{
		MIMEText:           p.Text(),
		MIMESectionReorder: p.Marker(),
	}
}

// ParseText 解析 task:{taskID}:{section}，也接受不带分区的 task:{taskID}（section 为空）
func ParseText(raw string) (taskID string, section Section, ok bool) {
	rest, found := strings.CutPrefix(raw, "task:")
	if !found || rest == "" {
		return "", "", false
	}
	idx := strings.LastIndex(rest, ":")
	if idx == -1 {
		return rest, "", true
	}
	if idx == 0 {
		return "", "", false
	}
	parsed, err := ParseSection(rest[idx+1:])
	if err != nil {
		return "", "", false
	}
	return rest[:idx], parsed, true
}

// ParseMarker 解析 {section}:{draggedID}
func ParseMarker(raw string) (section Section, draggedID string, ok bool) {
	head, tail, found := strings.Cut(raw, ":")
	if !found || tail == "" {
		return "", "", false
	}
	parsed, err := ParseSection(head)
	if err != nil {
		return "", "", false
	}
	return parsed, tail, true
}
