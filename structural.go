package gridcalc

// InsertRows shifts every vertex at or below index down by count rows on
// sheet, and rewrites every formula's references through a
// ReferenceAdjuster so they keep pointing at the same logical cells
// (SPEC_FULL.md §4.3, supplementing spec.md's external-operation stub).
func (eng *Engine) InsertRows(sheet SheetID, index, count int) {
	eng.shiftVertices(sheet, func(row, col int) (int, int, bool) {
		if row >= index {
			return row + count, col, true
		}
		return row, col, false
	})
	eng.adjustAllFormulas(sheet, rowInsertAdjuster(index, count))
	eng.recordEvent(ChangeEvent{Kind: ChangeInsertRows, Sheet: sheet, Row: index, Count: count})
}

// DeleteRows shifts vertices at or below index+count up by count rows,
// and converts references that fell entirely inside the removed band to
// #REF! (spec.md §7).
func (eng *Engine) DeleteRows(sheet SheetID, index, count int) {
	eng.removeVerticesInBand(sheet, func(row, col int) bool {
		return row >= index && row < index+count
	})
	eng.shiftVertices(sheet, func(row, col int) (int, int, bool) {
		if row >= index+count {
			return row - count, col, true
		}
		return row, col, false
	})
	eng.adjustAllFormulas(sheet, rowDeleteAdjuster(index, count))
	eng.recordEvent(ChangeEvent{Kind: ChangeDeleteRows, Sheet: sheet, Row: index, Count: count})
}

// InsertColumns is InsertRows' column-axis counterpart.
func (eng *Engine) InsertColumns(sheet SheetID, index, count int) {
	eng.shiftVertices(sheet, func(row, col int) (int, int, bool) {
		if col >= index {
			return row, col + count, true
		}
		return row, col, false
	})
	eng.adjustAllFormulas(sheet, colInsertAdjuster(index, count))
	eng.recordEvent(ChangeEvent{Kind: ChangeInsertColumns, Sheet: sheet, Col: index, Count: count})
}

// DeleteColumns is DeleteRows' column-axis counterpart.
func (eng *Engine) DeleteColumns(sheet SheetID, index, count int) {
	eng.removeVerticesInBand(sheet, func(row, col int) bool {
		return col >= index && col < index+count
	})
	eng.shiftVertices(sheet, func(row, col int) (int, int, bool) {
		if col >= index+count {
			return row, col - count, true
		}
		return row, col, false
	})
	eng.adjustAllFormulas(sheet, colDeleteAdjuster(index, count))
	eng.recordEvent(ChangeEvent{Kind: ChangeDeleteColumns, Sheet: sheet, Col: index, Count: count})
}

// shiftVertices re-keys every vertex on sheet whose coordinate moves
// under shift, rebuilding the coordinate index entries it touches.
func (eng *Engine) shiftVertices(sheet SheetID, shift func(row, col int) (newRow, newCol int, moved bool)) {
	vs := eng.graph.vertices
	type move struct {
		id           VertexID
		oldKey, newKey cellKey
	}
	var moves []move
	for id := range vs.sheet {
		if vs.sheet[id] != sheet {
			continue
		}
		row, col := vs.coord[id].Row(), vs.coord[id].Col()
		nr, nc, moved := shift(row, col)
		if !moved {
			continue
		}
		moves = append(moves, move{
			id:     VertexID(id),
			oldKey: cellKey{sheet, vs.coord[id]},
			newKey: cellKey{sheet, PackCoord(nr, nc)},
		})
	}
	for _, m := range moves {
		delete(vs.cellToVertex, m.oldKey)
	}
	for _, m := range moves {
		vs.coord[m.id] = m.newKey.coord
		vs.cellToVertex[m.newKey] = m.id
	}
}

// removeVerticesInBand converts every value/formula vertex matching band
// to a #REF! error value (their edges are left in place: dependents
// reading through them will see the error, matching Excel's own behavior
// when a referenced cell is deleted).
func (eng *Engine) removeVerticesInBand(sheet SheetID, band func(row, col int) bool) {
	vs := eng.graph.vertices
	for id := range vs.sheet {
		if vs.sheet[id] != sheet {
			continue
		}
		row, col := vs.coord[id].Row(), vs.coord[id].Col()
		if !band(row, col) {
			continue
		}
		if vs.kind[id] == VertexFormula {
			eng.graph.clearFormula(VertexID(id))
		}
		vs.kind[id] = VertexValue
		vs.values[id] = NewErrorValue(ErrRef, "")
		vs.formulas[id] = nil
	}
}

// adjustAllFormulas rewrites every formula vertex's AST nodes via adjust,
// re-marking the vertex dirty so the next Evaluate recomputes it against
// its rewritten references.
func (eng *Engine) adjustAllFormulas(sheet SheetID, adjust func(*CellRefNode)) {
	vs := eng.graph.vertices
	for id := range vs.sheet {
		if vs.kind[id] != VertexFormula || vs.formulas[id] == nil {
			continue
		}
		vs.formulas[id].Walk(func(n ASTNode) {
			if ref, ok := n.(*CellRefNode); ok {
				refSheet := ref.Sheet
				if refSheet == "" {
					refSheet = eng.sheets.Name(vs.sheet[id])
				}
				if refSheet == eng.sheets.Name(sheet) {
					adjust(ref)
				}
			}
		})
		vs.dirty[id] = true
	}
}

func rowInsertAdjuster(index, count int) func(*CellRefNode) {
	return func(ref *CellRefNode) {
		if ref.Row >= index {
			ref.Row += count
		}
	}
}

func rowDeleteAdjuster(index, count int) func(*CellRefNode) {
	return func(ref *CellRefNode) {
		switch {
		case ref.Row >= index && ref.Row < index+count:
			ref.Row = -1 // sentinel: caller's Eval will see an out-of-range coord and yield #REF!
		case ref.Row >= index+count:
			ref.Row -= count
		}
	}
}

func colInsertAdjuster(index, count int) func(*CellRefNode) {
	return func(ref *CellRefNode) {
		if ref.Col >= index {
			ref.Col += count
		}
	}
}

func colDeleteAdjuster(index, count int) func(*CellRefNode) {
	return func(ref *CellRefNode) {
		switch {
		case ref.Col >= index && ref.Col < index+count:
			ref.Col = -1
		case ref.Col >= index+count:
			ref.Col -= count
		}
	}
}
