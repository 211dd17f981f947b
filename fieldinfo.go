package termvec

import (
	"fmt"
	"sort"
)

// FieldInfo names one indexed field. Number is the dictionary-stable
// small integer stored in vector records in place of the name.
type FieldInfo struct {
	Number int32
	Name   string
}

// FieldInfos is an immutable lookup over a segment's fields, built
// once at construction and never mutated.
type FieldInfos struct {
	ordered  []FieldInfo
	byNumber map[int32]FieldInfo
	byName   map[string]FieldInfo
}

// NewFieldInfos builds a FieldInfos from infos. Numbers and names must
// be unique; numbers must be non-negative.
func NewFieldInfos(infos []FieldInfo) (*FieldInfos, error) {
	fi := &FieldInfos{
		ordered:  make([]FieldInfo, len(infos)),
		byNumber: make(map[int32]FieldInfo, len(infos)),
		byName:   make(map[string]FieldInfo, len(infos)),
	}
	copy(fi.ordered, infos)
	sort.Slice(fi.ordered, func(i, j int) bool {
		return fi.ordered[i].Number < fi.ordered[j].Number
	})
	for _, info := range fi.ordered {
		if info.Number < 0 {
			return nil, fmt.Errorf("field %q has negative number %d", info.Name, info.Number)
		}
		if _, ok := fi.byNumber[info.Number]; ok {
			return nil, fmt.Errorf("duplicate field number %d", info.Number)
		}
		if _, ok := fi.byName[info.Name]; ok {
			return nil, fmt.Errorf("duplicate field name %q", info.Name)
		}
		fi.byNumber[info.Number] = info
		fi.byName[info.Name] = info
	}
	return fi, nil
}

// Len returns the number of fields.
func (fi *FieldInfos) Len() int {
	return len(fi.ordered)
}

// ByNumber returns the field with the given number.
func (fi *FieldInfos) ByNumber(number int32) (FieldInfo, bool) {
	info, ok := fi.byNumber[number]
	return info, ok
}

// ByName returns the field with the given name.
func (fi *FieldInfos) ByName(name string) (FieldInfo, bool) {
	info, ok := fi.byName[name]
	return info, ok
}

// All returns the fields in ascending number order. The caller must
// not mutate the returned slice.
func (fi *FieldInfos) All() []FieldInfo {
	return fi.ordered
}
