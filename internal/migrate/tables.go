package migrate

// Field names a column whose representation differs between the two stores.
// Fallback replaces a value that fails to decode; it must satisfy the
// column's NOT NULL constraint where there is one.
type Field struct {
	Name     string
	Codec    Codec
	Fallback any
}

func boolField(name string) Field { return Field{Name: name, Codec: Bool, Fallback: false} }
func jsonField(name string) Field { return Field{Name: name, Codec: JSONText} }

type Table struct {
	Name   string
	Fields []Field
}

// DefaultTables lists every table in dependency order: a table only
// references tables above it. The order is the only foreign-key guard the
// runner has.
var DefaultTables = []Table{
	{Name: "categories"},
	{Name: "users", Fields: []Field{boolField("email_verified")}},
	{Name: "auth_tokens"},
	{Name: "sellers", Fields: []Field{jsonField("business_hours"), boolField("is_verified")}},
	{Name: "vehicles"},
	{Name: "parts", Fields: []Field{jsonField("images"), boolField("is_listed_on_marketplace")}},
	{Name: "analytics_events", Fields: []Field{jsonField("metadata")}},
	{Name: "activity_logs", Fields: []Field{jsonField("metadata")}},
}

// probeTable is counted on the target before a run to detect existing data.
const probeTable = "users"

func tableNames(tables []Table) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Name
	}
	return out
}

func lookupTable(tables []Table, name string) (Table, bool) {
	for _, t := range tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

func (t Table) field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
