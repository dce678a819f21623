package model

// Metadata field names in display order.
const (
	FieldURL         = "url"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldKeywords    = "keywords"
	FieldRobots      = "robots"
	FieldCharset     = "charset"
	FieldGenerator   = "generator"
	FieldAuthor      = "author"
	FieldCopyright   = "copyright"
	FieldLanguage    = "language"
)

// PageMetadata is a snapshot of the named metadata of a page.
// Empty fields are omitted from every rendering.
type PageMetadata struct {
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	Robots      string `json:"robots,omitempty"`
	Charset     string `json:"charset,omitempty"`
	Generator   string `json:"generator,omitempty"`
	Author      string `json:"author,omitempty"`
	Copyright   string `json:"copyright,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Field is a single named metadata value.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Fields returns the non-empty metadata fields in display order.
func (m PageMetadata) Fields() []Field {
	all := []Field{
		{FieldURL, m.URL},
		{FieldTitle, m.Title},
		{FieldDescription, m.Description},
		{FieldKeywords, m.Keywords},
		{FieldRobots, m.Robots},
		{FieldCharset, m.Charset},
		{FieldGenerator, m.Generator},
		{FieldAuthor, m.Author},
		{FieldCopyright, m.Copyright},
		{FieldLanguage, m.Language},
	}

	fields := make([]Field, 0, len(all))
	for _, f := range all {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Get returns the value of the named field, or "" if the name is unknown.
func (m PageMetadata) Get(name string) string {
	for _, f := range m.Fields() {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// IsEmpty reports whether no field is set.
func (m PageMetadata) IsEmpty() bool {
	return len(m.Fields()) == 0
}
