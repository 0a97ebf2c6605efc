package annotation

import (
	"encoding/json"
	"strings"
)

// ClassInfo is a label category. Style is an opaque hint for the client
// (a color or css class).
type ClassInfo struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Style string `json:"style"`
}

func (class *ClassInfo) IsValidClass() bool {
	return class.ID >= 0 && strings.TrimSpace(class.Name) != ""
}

func (class *ClassInfo) String() string {
	b, _ := json.Marshal(class)
	return string(b)
}

// DefaultClasses is the table a new workspace starts with.
func DefaultClasses() []ClassInfo {
	return []ClassInfo{
		{ID: 0, Name: "car", Style: "red"},
		{ID: 1, Name: "bus", Style: "blue"},
		{ID: 2, Name: "truck", Style: "green"},
		{ID: 3, Name: "motorcycle", Style: "yellow"},
	}
}

// ClassTable keeps class ids unique. Deleting never renumbers the others.
type ClassTable struct {
	classes []ClassInfo
}

func NewClassTable(classes ...ClassInfo) *ClassTable {
	table := &ClassTable{}
	for _, class := range classes {
		if _, found := table.Find(class.ID); found {
			continue
		}
		table.classes = append(table.classes, class)
	}
	return table
}

func (table *ClassTable) List() []ClassInfo {
	out := make([]ClassInfo, len(table.classes))
	copy(out, table.classes)
	return out
}

func (table *ClassTable) Len() int {
	return len(table.classes)
}

func (table *ClassTable) Find(id int) (ClassInfo, bool) {
	for _, class := range table.classes {
		if class.ID == id {
			return class, true
		}
	}
	return ClassInfo{}, false
}

// Add appends a class with id max(existing)+1, or 0 on an empty table.
func (table *ClassTable) Add(name, style string) ClassInfo {
	next := 0
	for i, class := range table.classes {
		if i == 0 || class.ID >= next {
			next = class.ID + 1
		}
	}
	class := ClassInfo{ID: next, Name: name, Style: style}
	table.classes = append(table.classes, class)
	return class
}

func (table *ClassTable) Rename(id int, name string) bool {
	for i := range table.classes {
		if table.classes[i].ID == id {
			table.classes[i].Name = name
			return true
		}
	}
	return false
}

func (table *ClassTable) Delete(id int) bool {
	for i := range table.classes {
		if table.classes[i].ID == id {
			table.classes = append(table.classes[:i], table.classes[i+1:]...)
			return true
		}
	}
	return false
}
