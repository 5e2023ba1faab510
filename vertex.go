package gridcalc

// VertexID is a dense index into the vertex store's parallel arrays,
// generalizing the teacher's Chunk-local cell slot (worksheet.go) into a
// single flat namespace shared across sheets.
type VertexID uint32

const invalidVertexID VertexID = 0xFFFFFFFF

// VertexKind distinguishes a value cell from a formula cell from a
// placeholder allocated only because something else depends on it.
type VertexKind uint8

const (
	VertexEmpty VertexKind = iota
	VertexValue
	VertexFormula
	VertexPlaceholder
)

type cellKey struct {
	sheet SheetID
	coord PackedCoord
}

// vertexStore is the structure-of-arrays vertex table: attributes live in
// parallel slices indexed by VertexID, following the teacher's chunked SoA
// cell layout (worksheet.go's Chunk) generalized off a fixed 256x256 tile
// onto a flat dense array with a coordinate-keyed index, since the
// dependency graph (not the chunk) now owns spatial compression via
// stripes.
type vertexStore struct {
	sheet    []SheetID
	coord    []PackedCoord
	kind     []VertexKind
	dirty    []bool
	volatile []bool

	values   []LiteralValue
	formulas []ASTNode
	formulaText []string

	cellToVertex map[cellKey]VertexID
	freeList     []VertexID
}

func newVertexStore() *vertexStore {
	return &vertexStore{cellToVertex: make(map[cellKey]VertexID)}
}

// lookup returns the vertex at (sheet, coord), if one has been allocated.
func (s *vertexStore) lookup(sheet SheetID, coord PackedCoord) (VertexID, bool) {
	id, ok := s.cellToVertex[cellKey{sheet, coord}]
	return id, ok
}

// getOrCreate returns the vertex at (sheet, coord), allocating an empty
// placeholder slot if none exists yet.
func (s *vertexStore) getOrCreate(sheet SheetID, coord PackedCoord) VertexID {
	if id, ok := s.lookup(sheet, coord); ok {
		return id
	}
	var id VertexID
	if n := len(s.freeList); n > 0 {
		id = s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		s.sheet[id] = sheet
		s.coord[id] = coord
		s.kind[id] = VertexEmpty
		s.dirty[id] = false
		s.volatile[id] = false
		s.values[id] = nil
		s.formulas[id] = nil
		s.formulaText[id] = ""
	} else {
		id = VertexID(len(s.sheet))
		s.sheet = append(s.sheet, sheet)
		s.coord = append(s.coord, coord)
		s.kind = append(s.kind, VertexEmpty)
		s.dirty = append(s.dirty, false)
		s.volatile = append(s.volatile, false)
		s.values = append(s.values, nil)
		s.formulas = append(s.formulas, nil)
		s.formulaText = append(s.formulaText, "")
	}
	s.cellToVertex[cellKey{sheet, coord}] = id
	return id
}

// release frees a vertex back to the pool once it has no value, formula,
// and nothing else references it by coordinate (the caller is responsible
// for checking that edges/stripe membership have already been cleared).
func (s *vertexStore) release(id VertexID) {
	key := cellKey{s.sheet[id], s.coord[id]}
	delete(s.cellToVertex, key)
	s.kind[id] = VertexEmpty
	s.values[id] = nil
	s.formulas[id] = nil
	s.formulaText[id] = ""
	s.freeList = append(s.freeList, id)
}

func (s *vertexStore) isPlaceholderAndEmpty(id VertexID) bool {
	return s.kind[id] == VertexEmpty || s.kind[id] == VertexPlaceholder
}
