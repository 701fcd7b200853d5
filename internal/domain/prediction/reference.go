package prediction

// ReferenceTable is the immutable set of historical observations used for classification.
// The zero value is an empty table.
type ReferenceTable struct {
	rows []HistoricalRecord
}

var defaultRows = []HistoricalRecord{
	{Attendance: 50, MenuType: MenuVeg, WasteLevel: LevelLow},
	{Attendance: 80, MenuType: MenuVeg, WasteLevel: LevelLow},
	{Attendance: 120, MenuType: MenuVeg, WasteLevel: LevelMedium},
	{Attendance: 150, MenuType: MenuVeg, WasteLevel: LevelMedium},
	{Attendance: 200, MenuType: MenuVeg, WasteLevel: LevelHigh},
	{Attendance: 50, MenuType: MenuNonVeg, WasteLevel: LevelLow},
	{Attendance: 80, MenuType: MenuNonVeg, WasteLevel: LevelMedium},
	{Attendance: 120, MenuType: MenuNonVeg, WasteLevel: LevelMedium},
	{Attendance: 150, MenuType: MenuNonVeg, WasteLevel: LevelHigh},
	{Attendance: 200, MenuType: MenuNonVeg, WasteLevel: LevelHigh},
	{Attendance: 50, MenuType: MenuSpecial, WasteLevel: LevelMedium},
	{Attendance: 80, MenuType: MenuSpecial, WasteLevel: LevelMedium},
	{Attendance: 120, MenuType: MenuSpecial, WasteLevel: LevelHigh},
	{Attendance: 150, MenuType: MenuSpecial, WasteLevel: LevelHigh},
	{Attendance: 200, MenuType: MenuSpecial, WasteLevel: LevelHigh},
}

// DefaultReferenceTable returns the built-in fifteen row table.
func DefaultReferenceTable() ReferenceTable {
	rows := make([]HistoricalRecord, len(defaultRows))
	copy(rows, defaultRows)
	return ReferenceTable{rows: rows}
}

// NewReferenceTable keeps the valid rows in their original order and reports how many were rejected.
func NewReferenceTable(rows []HistoricalRecord) (ReferenceTable, int) {
	kept := make([]HistoricalRecord, 0, len(rows))
	for _, row := range rows {
		if !validRecord(row) {
			continue
		}
		kept = append(kept, row)
	}
	return ReferenceTable{rows: kept}, len(rows) - len(kept)
}

func validRecord(row HistoricalRecord) bool {
	if row.Attendance < 1 {
		return false
	}
	if _, ok := ParseMenuType(string(row.MenuType)); !ok {
		return false
	}
	_, ok := ParseWasteLevel(string(row.WasteLevel))
	return ok
}

// Rows returns a copy of the table.
func (t ReferenceTable) Rows() []HistoricalRecord {
	out := make([]HistoricalRecord, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of rows.
func (t ReferenceTable) Len() int {
	return len(t.rows)
}
