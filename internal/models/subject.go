package models

// Palette is the fixed set of subject color tokens, assigned by creation order.
var Palette = []string{
	"bg-red-200", "bg-yellow-200", "bg-green-200", "bg-blue-200", "bg-indigo-200", "bg-purple-200", "bg-pink-200",
	"border-red-500", "border-yellow-500", "border-green-500", "border-blue-500", "border-indigo-500", "border-purple-500", "border-pink-500",
}

// PaletteColor returns the color for the n-th subject (zero based).
func PaletteColor(n int) string {
	if n < 0 {
		n = -n
	}
	return Palette[n%len(Palette)]
}

// Subject is a course that owns syllabus records and, indirectly, events.
type Subject struct {
	ID      string         `json:"id" msgpack:"id"`
	Name    string         `json:"name" msgpack:"name"`
	Color   string         `json:"color" msgpack:"color"`
	Syllabi []SyllabusFile `json:"syllabi" msgpack:"syllabi"`
}

// Clone returns a deep copy of s.
func (s Subject) Clone() Subject {
	c := s
	c.Syllabi = append([]SyllabusFile(nil), s.Syllabi...)
	if c.Syllabi == nil {
		c.Syllabi = []SyllabusFile{}
	}
	return c
}

// Syllabus returns the record with the given id.
func (s Subject) Syllabus(id string) (SyllabusFile, bool) {
	for _, f := range s.Syllabi {
		if f.ID == id {
			return f, true
		}
	}
	return SyllabusFile{}, false
}
