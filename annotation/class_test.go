package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassTableAdd(t *testing.T) {
	{
		table := NewClassTable()
		class := table.Add("person", "red")
		assert.Equal(t, 0, class.ID)
	}
	{
		table := NewClassTable(DefaultClasses()...)
		class := table.Add("bike", "pink")
		assert.Equal(t, 4, class.ID)
		assert.Equal(t, 5, table.Len())
	}
	{
		table := NewClassTable(ClassInfo{ID: 7, Name: "a"}, ClassInfo{ID: 2, Name: "b"})
		assert.Equal(t, 8, table.Add("c", "").ID)
	}
}

func TestClassTableDeleteKeepsIDs(t *testing.T) {
	table := NewClassTable(DefaultClasses()...)
	assert.Equal(t, true, table.Delete(1))
	assert.Equal(t, false, table.Delete(1))

	_, found := table.Find(1)
	assert.Equal(t, false, found)
	truck, found := table.Find(2)
	assert.Equal(t, true, found)
	assert.Equal(t, "truck", truck.Name)

	assert.Equal(t, 4, table.Add("van", "").ID)
}

func TestClassTableRejectsDuplicates(t *testing.T) {
	table := NewClassTable(ClassInfo{ID: 1, Name: "a"}, ClassInfo{ID: 1, Name: "b"})
	assert.Equal(t, 1, table.Len())
}

func TestClassTableRename(t *testing.T) {
	table := NewClassTable(DefaultClasses()...)
	assert.Equal(t, true, table.Rename(0, "sedan"))
	assert.Equal(t, false, table.Rename(42, "x"))
	class, _ := table.Find(0)
	assert.Equal(t, "sedan", class.Name)
}

func TestIsValidClass(t *testing.T) {
	{
		class := ClassInfo{ID: 0, Name: "car"}
		assert.Equal(t, true, class.IsValidClass())
	}
	{
		class := ClassInfo{ID: 0, Name: "  "}
		assert.Equal(t, false, class.IsValidClass())
	}
}
