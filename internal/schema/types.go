package schema

import "fmt"

// Model is the set of tables imported from one database schema, keyed by
// table name and kept in import order.
//
// A Model is populated once by the importer and only read afterwards, so the
// generators can walk it concurrently without locking.
type Model struct {
	// Database and Schema name where the model was read from. They are
	// informational and drive output file names.
	Database string
	Schema   string

	tables []*Table
	index  map[string]int
}

// NewModel creates an empty model
func NewModel() *Model {
	return &Model{index: make(map[string]int)}
}

// AddTable registers a new table and assigns its diagram label (n1, n2, ...).
// Adding a name that already exists replaces the table but keeps its position.
func (m *Model) AddTable(name, comment string) *Table {
	t := &Table{Name: name, Comment: comment}
	if i, ok := m.index[name]; ok {
		t.Label = m.tables[i].Label
		m.tables[i] = t
		return t
	}
	m.tables = append(m.tables, t)
	m.index[name] = len(m.tables) - 1
	t.Label = fmt.Sprintf("n%d", len(m.tables))
	return t
}

// Table looks up a table by name
func (m *Model) Table(name string) (*Table, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.tables[i], true
}

// Tables returns the tables in import order
func (m *Model) Tables() []*Table {
	return m.tables
}

// Len returns the number of tables
func (m *Model) Len() int {
	return len(m.tables)
}

// Resolve returns the table and column a handle points to.
// It returns nils when the handle is dangling.
func (m *Model) Resolve(ref ColumnRef) (*Table, *Column) {
	t, ok := m.Table(ref.Table)
	if !ok || ref.Index < 0 || ref.Index >= len(t.Columns) {
		return nil, nil
	}
	return t, t.Columns[ref.Index]
}

// Table represents a database table with its columns and constraints
type Table struct {
	Name    string
	Comment string
	Label   string // diagram node identifier

	Columns []*Column
	Uniques Constraints // UNIQUE constraints, by name
	PKs     []*Column   // primary key columns, in key position order
	FKs     Constraints // FOREIGN KEY constraints, by name

	pkPositions []int
}

// AddColumn appends a column in declaration order
func (t *Table) AddColumn(name, comment string) *Column {
	c := &Column{
		Table:    t.Name,
		Name:     name,
		Comment:  comment,
		Nullable: true,
		index:    len(t.Columns),
	}
	t.Columns = append(t.Columns, c)
	return c
}

// Column returns the first column with the given name
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// AddPrimaryKey marks a column as part of the primary key at the given
// 1-based key position. Rows may arrive in any order.
func (t *Table) AddPrimaryKey(c *Column, position int) {
	c.IsPK = true

	i := len(t.pkPositions)
	for i > 0 && t.pkPositions[i-1] > position {
		i--
	}
	t.pkPositions = append(t.pkPositions, 0)
	copy(t.pkPositions[i+1:], t.pkPositions[i:])
	t.pkPositions[i] = position

	t.PKs = append(t.PKs, nil)
	copy(t.PKs[i+1:], t.PKs[i:])
	t.PKs[i] = c
}

// HasCompositePK reports whether the primary key spans two or more columns
func (t *Table) HasCompositePK() bool {
	return len(t.PKs) >= 2
}

// IsSolePK reports whether c is the only primary key column of t
func (t *Table) IsSolePK(c *Column) bool {
	return c.IsPK && len(t.PKs) == 1
}

// Column represents a table column
type Column struct {
	Table    string // owning table name
	Name     string
	Comment  string
	Nullable bool
	DataType string // canonical lowercase type, with length or precision
	Identity bool

	IsUnique bool
	IsPK     bool
	FKOf     *ColumnRef // referenced primary key column, if this is a foreign key

	index int
}

// Ref returns a handle to this column
func (c *Column) Ref() ColumnRef {
	return ColumnRef{Table: c.Table, Index: c.index}
}

// ColumnRef is a non-owning handle to a column: the owning table's name and
// the column's position in that table's Columns.
type ColumnRef struct {
	Table string
	Index int
}

// Constraint is a named constraint with its member columns in order
type Constraint struct {
	Name    string
	Columns []*Column
}

// Constraints is an insertion-ordered map of constraint name to member
// columns. The zero value is ready to use.
type Constraints struct {
	list   []*Constraint
	byName map[string]int
}

// Add appends a column to the named constraint, creating it if needed
func (cs *Constraints) Add(name string, c *Column) {
	if cs.byName == nil {
		cs.byName = make(map[string]int)
	}
	i, ok := cs.byName[name]
	if !ok {
		cs.list = append(cs.list, &Constraint{Name: name})
		i = len(cs.list) - 1
		cs.byName[name] = i
	}
	cs.list[i].Columns = append(cs.list[i].Columns, c)
}

// Get returns the named constraint
func (cs *Constraints) Get(name string) (*Constraint, bool) {
	i, ok := cs.byName[name]
	if !ok {
		return nil, false
	}
	return cs.list[i], true
}

// All returns the constraints in insertion order
func (cs *Constraints) All() []*Constraint {
	return cs.list
}

// Len returns the number of constraints
func (cs *Constraints) Len() int {
	return len(cs.list)
}
