package models

type Category string

const (
	CategoryBeginner     Category = "Beginner"
	CategoryIntermediate Category = "Intermediate"
	CategoryAdvanced     Category = "Advanced"
)

var Categories = []Category{CategoryBeginner, CategoryIntermediate, CategoryAdvanced}

// sectionNames lists the section names each category allows.
var sectionNames = map[Category][]string{
	CategoryBeginner:     {"Beginner", "Elementary"},
	CategoryIntermediate: {"Intermediate", "Upper Intermediate"},
	CategoryAdvanced:     {"Advanced", "Proficiency"},
}

func (c Category) IsValid() bool {
	_, ok := sectionNames[c]
	return ok
}

func (c Category) SectionNames() []string {
	return sectionNames[c]
}

func (c Category) AllowsSection(name string) bool {
	for _, n := range sectionNames[c] {
		if n == name {
			return true
		}
	}
	return false
}

type OptionType string

const (
	OptionTypeText  OptionType = "text"
	OptionTypeImage OptionType = "image"
	OptionTypeAudio OptionType = "audio"
)

func (t OptionType) IsValid() bool {
	switch t {
	case OptionTypeText, OptionTypeImage, OptionTypeAudio:
		return true
	}
	return false
}

// OptionLabels are the answer keys, one per option position.
var OptionLabels = []string{"a", "b", "c", "d"}

const OptionCount = 4

func IsValidOptionLabel(label string) bool {
	for _, l := range OptionLabels {
		if l == label {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)
